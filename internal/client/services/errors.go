package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dmitrijs2005/linksphere/internal/client/client"
	"github.com/dmitrijs2005/linksphere/internal/client/validation"
)

var (
	ErrInProgress       = errors.New("another request is already in progress")
	ErrCooldown         = errors.New("please wait before requesting another code")
	ErrNotAuthenticated = errors.New("you are not logged in")
	ErrLinkNotFound     = errors.New("link not found")
	// ErrSessionChanged is returned when a logout or re-login landed while a
	// request was in flight; its result was discarded.
	ErrSessionChanged = errors.New("session changed while the request was in flight")
)

// CooldownError says how long to wait before the next OTP resend.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("please wait %ds before requesting another code", int(math.Ceil(e.Remaining.Seconds())))
}

func (e *CooldownError) Unwrap() error {
	return ErrCooldown
}

// UserMessage turns err into text fit for the terminal.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return verrs.Error()
	}

	var cd *CooldownError
	if errors.As(err, &cd) {
		return cd.Error()
	}

	switch {
	case errors.Is(err, ErrInProgress), errors.Is(err, ErrNotAuthenticated),
		errors.Is(err, ErrLinkNotFound), errors.Is(err, ErrSessionChanged):
		return capitalize(err.Error())
	case errors.Is(err, client.ErrUnavailable):
		return "Cannot reach the server. Check your connection and try again."
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out. Please try again."
	case errors.Is(err, context.Canceled):
		return "Cancelled."
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}

	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return "Your session has expired. Please log in again."
	case errors.Is(err, client.ErrNotFound):
		return "Not found."
	case errors.Is(err, client.ErrBadRequest):
		return "The server rejected the request."
	case errors.Is(err, client.ErrServer):
		return "Something went wrong on the server. Please try again later."
	}
	return err.Error()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
