// Package services holds the client-side stores behind the REPL: the session
// (AuthService), the link list (LinkService) and the theme (ThemeService).
// All remote state changes go through client.Client; the stores only keep
// what the terminal needs to render.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/linksphere/internal/client/client"
	"github.com/dmitrijs2005/linksphere/internal/client/models"
	"github.com/dmitrijs2005/linksphere/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/linksphere/internal/client/tokens"
	"github.com/dmitrijs2005/linksphere/internal/client/validation"
	"github.com/dmitrijs2005/linksphere/internal/dbx"
	"github.com/dmitrijs2005/linksphere/internal/logging"
)

// DefaultLivenessInterval is used when StartLivenessCheck gets a
// non-positive interval.
const DefaultLivenessInterval = 60 * time.Second

const (
	keyToken               = "token"
	keyUser                = "user"
	keyPendingVerification = "pendingVerificationEmail"
)

// AuthService defines the session operations the CLI relies on.
//
// Contract:
//   - Login: authenticate and persist token and user together.
//   - Register / VerifyEmail / ResendOTP: account creation flow; none of them
//     logs the user in.
//   - Logout: always succeeds and clears persisted state.
//   - StartLivenessCheck: periodic token probe; the returned func stops it.
type AuthService interface {
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, reg models.Registration) error
	VerifyEmail(ctx context.Context, email, otp string) error
	ResendOTP(ctx context.Context, email string) error
	ResendCooldownRemaining() time.Duration
	Logout(ctx context.Context)
	Restore(ctx context.Context) error
	StartLivenessCheck(ctx context.Context, interval time.Duration) (stop func())
	UpdateUsername(ctx context.Context, username string) (*models.User, error)
	Session() models.Session
	IsAuthenticated() bool
	Token() string
	PendingVerification(ctx context.Context) (models.PendingVerification, bool)
	AbandonVerification(ctx context.Context)
	HandleUnauthorized(ctx context.Context, token string)
	Close() error
}

// SessionStore is the AuthService backed by the API client, the local
// SQLite database for token/user and an in-memory slot for the pending
// verification.
type SessionStore struct {
	client         client.Client
	db             *sql.DB
	tab            metadata.Repository
	logger         logging.Logger
	resendCooldown time.Duration
	now            func() time.Time

	mu         sync.Mutex
	session    models.Session
	generation uint64
	inFlight   bool
	lastResend time.Time
	stops      []context.CancelFunc
}

// NewSessionStore wires a session store. db must already be migrated
// (see client.InitDatabase).
func NewSessionStore(c client.Client, db *sql.DB, logger logging.Logger, resendCooldown time.Duration) *SessionStore {
	if logger == nil {
		logger = logging.Nop()
	}
	return &SessionStore{
		client:         c,
		db:             db,
		tab:            metadata.NewMemoryRepository(),
		logger:         logger,
		resendCooldown: resendCooldown,
		now:            time.Now,
	}
}

func (s *SessionStore) store() metadata.Repository {
	return metadata.NewSQLiteRepository(s.db)
}

// begin takes the shared submission gate and returns the current generation.
func (s *SessionStore) begin() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return 0, ErrInProgress
	}
	s.inFlight = true
	return s.generation, nil
}

func (s *SessionStore) end() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

func (s *SessionStore) Login(ctx context.Context, email, password string) error {
	creds := models.Credentials{Email: strings.TrimSpace(email), Password: password}
	if err := validation.Struct(creds); err != nil {
		return err
	}

	gen, err := s.begin()
	if err != nil {
		return err
	}
	defer s.end()

	res, err := s.client.Login(ctx, creds)
	if err != nil {
		s.logger.Warn(ctx, "login failed", "email", creds.Email, "error", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		return ErrSessionChanged
	}

	user := res.User
	if err := s.persistSession(ctx, res.Token, &user); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	s.generation++
	s.session = models.Session{User: &user, Token: res.Token}
	s.logger.Info(ctx, "logged in", "user_id", user.ID)
	return nil
}

// persistSession writes token and user in one transaction.
func (s *SessionStore) persistSession(ctx context.Context, token string, user *models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, keyToken, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, keyUser, raw)
	})
}

func (s *SessionStore) clearPersisted(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, keyToken); err != nil {
			return err
		}
		return repo.Delete(ctx, keyUser)
	})
}

func (s *SessionStore) Register(ctx context.Context, reg models.Registration) error {
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Username = strings.TrimSpace(reg.Username)
	if err := validation.Struct(reg); err != nil {
		return err
	}

	if _, err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	if err := s.client.Register(ctx, reg); err != nil {
		s.logger.Warn(ctx, "registration failed", "email", reg.Email, "error", err)
		return err
	}

	if err := s.tab.Set(ctx, keyPendingVerification, []byte(reg.Email)); err != nil {
		return err
	}
	s.logger.Info(ctx, "registered, awaiting verification", "email", reg.Email)
	return nil
}

func (s *SessionStore) VerifyEmail(ctx context.Context, email, otp string) error {
	v := models.EmailVerification{Email: strings.TrimSpace(email), OTP: strings.TrimSpace(otp)}
	if err := validation.Struct(v); err != nil {
		return err
	}

	if _, err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	if err := s.client.VerifyEmail(ctx, v); err != nil {
		s.logger.Warn(ctx, "email verification failed", "email", v.Email, "error", err)
		return err
	}

	return s.tab.Delete(ctx, keyPendingVerification)
}

// ResendOTP asks for a fresh code. Within the cooldown it fails with a
// *CooldownError and sends nothing.
func (s *SessionStore) ResendOTP(ctx context.Context, email string) error {
	req := models.OTPRequest{Email: strings.TrimSpace(email)}
	if err := validation.Struct(req); err != nil {
		return err
	}

	s.mu.Lock()
	if remaining := s.cooldownRemainingLocked(); remaining > 0 {
		s.mu.Unlock()
		return &CooldownError{Remaining: remaining}
	}
	prev := s.lastResend
	s.lastResend = s.now()
	s.mu.Unlock()

	if err := s.client.ResendOTP(ctx, req.Email); err != nil {
		s.mu.Lock()
		s.lastResend = prev
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *SessionStore) ResendCooldownRemaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cooldownRemainingLocked()
}

func (s *SessionStore) cooldownRemainingLocked() time.Duration {
	if s.lastResend.IsZero() {
		return 0
	}
	remaining := s.lastResend.Add(s.resendCooldown).Sub(s.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Logout clears the session in memory and on disk. It is safe to call any
// number of times.
func (s *SessionStore) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logoutLocked(ctx)
}

// logoutLocked expects s.mu to be held.
func (s *SessionStore) logoutLocked(ctx context.Context) {
	s.generation++
	wasAuthenticated := s.session.IsAuthenticated()
	s.session = models.Session{}

	if err := s.clearPersisted(ctx); err != nil {
		s.logger.Error(ctx, "failed to clear persisted session", "error", err)
	}
	if wasAuthenticated {
		s.logger.Info(ctx, "logged out")
	}
}

// Restore loads a session saved by a previous run. A token without a user
// (or the reverse) is discarded.
func (s *SessionStore) Restore(ctx context.Context) error {
	repo := s.store()

	token, err := repo.Get(ctx, keyToken)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	rawUser, err := repo.Get(ctx, keyUser)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	if len(token) == 0 && len(rawUser) == 0 {
		return nil
	}

	var user models.User
	if len(token) == 0 || len(rawUser) == 0 || json.Unmarshal(rawUser, &user) != nil {
		s.logger.Warn(ctx, "discarding incomplete saved session")
		return s.clearPersisted(ctx)
	}

	s.mu.Lock()
	s.generation++
	s.session = models.Session{User: &user, Token: string(token)}
	s.mu.Unlock()
	return nil
}

// StartLivenessCheck probes the session every interval until stop is called,
// ctx is done or the store is closed.
// A non-positive interval falls back to DefaultLivenessInterval.
func (s *SessionStore) StartLivenessCheck(ctx context.Context, interval time.Duration) (stop func()) {
	if interval <= 0 {
		s.logger.Warn(ctx, "invalid liveness interval, using default", "interval", interval, "default", DefaultLivenessInterval)
		interval = DefaultLivenessInterval
	}
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.stops = append(s.stops, cancel)
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.checkLiveness(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	return cancel
}

// checkLiveness runs one probe of the current token.
func (s *SessionStore) checkLiveness(ctx context.Context) {
	s.mu.Lock()
	token := s.session.Token
	gen := s.generation
	s.mu.Unlock()

	if token == "" {
		return
	}

	if tokens.Expired(token, s.now()) {
		s.logger.Info(ctx, "session token expired")
		s.logoutIfCurrent(ctx, gen)
		return
	}

	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	_, err := s.client.ListLinks(probeCtx, token)
	cancel()

	switch {
	case err == nil:
	case errors.Is(err, client.ErrUnauthorized):
		s.logger.Info(ctx, "session rejected by server")
		s.logoutIfCurrent(ctx, gen)
	default:
		s.logger.Warn(ctx, "liveness probe failed, will retry", "error", err)
	}
}

// logoutIfCurrent logs out only if no login or logout happened since gen was
// read.
func (s *SessionStore) logoutIfCurrent(ctx context.Context, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation == gen {
		s.logoutLocked(ctx)
	}
}

func (s *SessionStore) UpdateUsername(ctx context.Context, username string) (*models.User, error) {
	change := models.UsernameChange{Username: strings.TrimSpace(username)}
	if err := validation.Struct(change); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if !s.session.IsAuthenticated() {
		s.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	token := s.session.Token
	gen := s.generation
	s.mu.Unlock()

	updated, err := s.client.UpdateUsername(ctx, token, change.Username)
	if err != nil {
		if errors.Is(err, client.ErrUnauthorized) {
			s.logger.Info(ctx, "server refused the session token")
			s.logoutIfCurrent(ctx, gen)
		}
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		return nil, ErrSessionChanged
	}

	user := *s.session.User
	user.Username = change.Username
	if updated != nil && updated.Username != "" {
		user.Username = updated.Username
	}

	if err := s.persistSession(ctx, token, &user); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.session.User = &user
	return &user, nil
}

// Session returns a copy of the current session.
func (s *SessionStore) Session() models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.session
	if out.User != nil {
		u := *out.User
		out.User = &u
	}
	return out
}

func (s *SessionStore) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.IsAuthenticated()
}

func (s *SessionStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Token
}

func (s *SessionStore) PendingVerification(ctx context.Context) (models.PendingVerification, bool) {
	email, err := s.tab.Get(ctx, keyPendingVerification)
	if err != nil || len(email) == 0 {
		return models.PendingVerification{}, false
	}
	return models.PendingVerification{Email: string(email)}, true
}

func (s *SessionStore) AbandonVerification(ctx context.Context) {
	if err := s.tab.Delete(ctx, keyPendingVerification); err != nil {
		s.logger.Warn(ctx, "failed to drop pending verification", "error", err)
	}
}

// HandleUnauthorized is called when the API refuses token. The session is
// dropped only while token is still the current one.
func (s *SessionStore) HandleUnauthorized(ctx context.Context, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == "" || s.session.Token != token {
		s.logger.Debug(ctx, "ignoring refusal of a stale token")
		return
	}
	s.logger.Info(ctx, "server refused the session token, logging out")
	s.logoutLocked(ctx)
}

// Close stops every liveness check and releases the API client.
func (s *SessionStore) Close() error {
	s.mu.Lock()
	stops := s.stops
	s.stops = nil
	s.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
	return s.client.Close()
}
