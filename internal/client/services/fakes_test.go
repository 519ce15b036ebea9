package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/linksphere/internal/client/client"
	"github.com/dmitrijs2005/linksphere/internal/client/models"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "client.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func getMeta(t *testing.T, db *sql.DB, k string) []byte {
	t.Helper()
	var v []byte
	err := db.QueryRow(`SELECT value FROM metadata WHERE key=?`, k).Scan(&v)
	if err == sql.ErrNoRows {
		return nil
	}
	require.NoError(t, err)
	return v
}

func insertMeta(t *testing.T, db *sql.DB, k string, v []byte) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO metadata(key,value) VALUES(?,?)`, k, v)
	require.NoError(t, err)
}

// ---- fake client ----

// fakeClient implements client.Client for service tests.
type fakeClient struct {
	mu sync.Mutex

	LoginRet *models.AuthResult
	LoginErr error
	// LoginHook runs before Login returns; tests use it to interleave calls.
	LoginHook func()
	// ListHook runs before ListLinks returns, outside the fake's lock.
	ListHook func(token string)

	RegisterErr    error
	VerifyErr      error
	ResendErr      error
	ListRet        []models.Link
	ListErr        error
	CreateRet      *models.Link
	CreateErr      error
	DeleteErr      error
	ClickErr       error
	UpdateUserRet  *models.User
	UpdateUserErr  error
	UpdateUserHook func()
	CloseErr       error

	LastLogin    models.Credentials
	LastRegister models.Registration
	LastVerify   models.EmailVerification
	LastToken    string
	ResendCalls  int
	ListCalls    int
	DeleteCalls  []string
	ClickCalls   []string
	CreateCalls  []models.NewLink
	Closed       bool
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	f.mu.Lock()
	f.LastLogin = creds
	hook := f.LoginHook
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	return f.LoginRet, nil
}

func (f *fakeClient) Register(ctx context.Context, reg models.Registration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastRegister = reg
	return f.RegisterErr
}

func (f *fakeClient) VerifyEmail(ctx context.Context, v models.EmailVerification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastVerify = v
	return f.VerifyErr
}

func (f *fakeClient) ResendOTP(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ResendCalls++
	return f.ResendErr
}

func (f *fakeClient) ListLinks(ctx context.Context, token string) ([]models.Link, error) {
	f.mu.Lock()
	f.ListCalls++
	f.LastToken = token
	hook := f.ListHook
	f.mu.Unlock()
	if hook != nil {
		hook(token)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]models.Link(nil), f.ListRet...), nil
}

func (f *fakeClient) CreateLink(ctx context.Context, token string, link models.NewLink) (*models.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls = append(f.CreateCalls, link)
	return f.CreateRet, f.CreateErr
}

func (f *fakeClient) DeleteLink(ctx context.Context, token string, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DeleteCalls = append(f.DeleteCalls, id)
	return f.DeleteErr
}

func (f *fakeClient) IncrementClick(ctx context.Context, token string, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ClickCalls = append(f.ClickCalls, id)
	return f.ClickErr
}

func (f *fakeClient) UpdateUsername(ctx context.Context, token string, username string) (*models.User, error) {
	if f.UpdateUserHook != nil {
		f.UpdateUserHook()
	}
	return f.UpdateUserRet, f.UpdateUserErr
}

func (f *fakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return f.CloseErr
}

// fakeSession is the slice of AuthService the link view depends on.
type fakeSession struct {
	mu           sync.Mutex
	token        string
	unauthorized int
	refused      []string
}

func (s *fakeSession) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *fakeSession) HandleUnauthorized(ctx context.Context, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refused = append(s.refused, token)
	if token == s.token {
		s.unauthorized++
		s.token = ""
	}
}

// fakeOpener records URLs instead of launching a browser.
type fakeOpener struct {
	opened []string
	err    error
}

func (o *fakeOpener) Open(url string) error {
	o.opened = append(o.opened, url)
	return o.err
}
