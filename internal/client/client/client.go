package client

import (
	"context"

	"github.com/dmitrijs2005/linksphere/internal/client/models"
)

// Client is the LinkSphere REST API as seen by the services. Methods that
// need a session take the bearer token explicitly so a caller always knows
// which session a response belongs to.
type Client interface {
	Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error)
	Register(ctx context.Context, reg models.Registration) error
	VerifyEmail(ctx context.Context, v models.EmailVerification) error
	ResendOTP(ctx context.Context, email string) error

	ListLinks(ctx context.Context, token string) ([]models.Link, error)
	CreateLink(ctx context.Context, token string, link models.NewLink) (*models.Link, error)
	DeleteLink(ctx context.Context, token string, id string) error
	IncrementClick(ctx context.Context, token string, id string) error

	UpdateUsername(ctx context.Context, token string, username string) (*models.User, error)

	Close() error
}
