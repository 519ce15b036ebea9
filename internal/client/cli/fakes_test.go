package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/dmitrijs2005/linksphere/internal/client/config"
	"github.com/dmitrijs2005/linksphere/internal/client/models"
	"github.com/dmitrijs2005/linksphere/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/linksphere/internal/client/services"
	"github.com/dmitrijs2005/linksphere/internal/logging"
)

type fakeAuth struct {
	session  models.Session
	pending  *models.PendingVerification
	cooldown time.Duration

	loginErr    error
	registerErr error
	verifyErr   error
	resendErr   error
	renameErr   error

	// loginLost makes Login succeed without leaving a session behind.
	loginLost bool

	loginEmail, loginPassword string
	registered                *models.Registration
	verifiedEmail, verifyOTP  string
	resentTo                  string
	renamedTo                 string
	logouts                   int
	restored                  bool
	livenessInterval          time.Duration
	closed                    bool
}

var _ services.AuthService = (*fakeAuth)(nil)

func (f *fakeAuth) Login(_ context.Context, email, password string) error {
	f.loginEmail, f.loginPassword = email, password
	if f.loginErr != nil {
		return f.loginErr
	}
	if f.loginLost {
		f.session = models.Session{}
		return nil
	}
	f.session = models.Session{User: &models.User{ID: "u1", Email: email, Username: "alice"}, Token: "tok"}
	return nil
}

func (f *fakeAuth) Register(_ context.Context, reg models.Registration) error {
	f.registered = &reg
	if f.registerErr != nil {
		return f.registerErr
	}
	f.pending = &models.PendingVerification{Email: reg.Email}
	return nil
}

func (f *fakeAuth) VerifyEmail(_ context.Context, email, otp string) error {
	f.verifiedEmail, f.verifyOTP = email, otp
	if f.verifyErr != nil {
		return f.verifyErr
	}
	f.pending = nil
	return nil
}

func (f *fakeAuth) ResendOTP(_ context.Context, email string) error {
	f.resentTo = email
	return f.resendErr
}

func (f *fakeAuth) ResendCooldownRemaining() time.Duration { return f.cooldown }

func (f *fakeAuth) Logout(context.Context) {
	f.logouts++
	f.session = models.Session{}
}

func (f *fakeAuth) Restore(context.Context) error {
	f.restored = true
	return nil
}

func (f *fakeAuth) StartLivenessCheck(_ context.Context, interval time.Duration) func() {
	f.livenessInterval = interval
	return func() {}
}

func (f *fakeAuth) UpdateUsername(_ context.Context, username string) (*models.User, error) {
	f.renamedTo = username
	if f.renameErr != nil {
		return nil, f.renameErr
	}
	u := *f.session.User
	u.Username = username
	f.session.User = &u
	return &u, nil
}

func (f *fakeAuth) Session() models.Session { return f.session }
func (f *fakeAuth) IsAuthenticated() bool   { return f.session.IsAuthenticated() }
func (f *fakeAuth) Token() string           { return f.session.Token }

func (f *fakeAuth) PendingVerification(context.Context) (models.PendingVerification, bool) {
	if f.pending == nil {
		return models.PendingVerification{}, false
	}
	return *f.pending, true
}

func (f *fakeAuth) AbandonVerification(context.Context)  { f.pending = nil }
func (f *fakeAuth) HandleUnauthorized(ctx context.Context, token string) {
	if token == f.session.Token {
		f.Logout(ctx)
	}
}

func (f *fakeAuth) Close() error {
	f.closed = true
	return nil
}

func loggedIn() *fakeAuth {
	return &fakeAuth{session: models.Session{
		User:  &models.User{ID: "u1", Email: "a@b.io", Username: "alice", Gender: models.GenderFemale},
		Token: "tok",
	}}
}

// fakeLinkClient backs a real LinkView in cli tests.
type fakeLinkClient struct {
	links     []models.Link
	listErr   error
	deleted   []string
	clicked   []string
	created   *models.NewLink
	createErr error
}

func (c *fakeLinkClient) Login(context.Context, models.Credentials) (*models.AuthResult, error) {
	return nil, nil
}
func (c *fakeLinkClient) Register(context.Context, models.Registration) error        { return nil }
func (c *fakeLinkClient) VerifyEmail(context.Context, models.EmailVerification) error { return nil }
func (c *fakeLinkClient) ResendOTP(context.Context, string) error                     { return nil }
func (c *fakeLinkClient) ListLinks(context.Context, string) ([]models.Link, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	return append([]models.Link(nil), c.links...), nil
}
func (c *fakeLinkClient) CreateLink(_ context.Context, _ string, l models.NewLink) (*models.Link, error) {
	c.created = &l
	if c.createErr != nil {
		return nil, c.createErr
	}
	return &models.Link{ID: "new", URL: l.URL, Title: l.Title, Description: l.Description}, nil
}
func (c *fakeLinkClient) DeleteLink(_ context.Context, _ string, id string) error {
	c.deleted = append(c.deleted, id)
	return nil
}
func (c *fakeLinkClient) IncrementClick(_ context.Context, _ string, id string) error {
	c.clicked = append(c.clicked, id)
	return nil
}
func (c *fakeLinkClient) UpdateUsername(context.Context, string, string) (*models.User, error) {
	return nil, nil
}
func (c *fakeLinkClient) Close() error { return nil }

type fakeOpener struct{ opened []string }

func (o *fakeOpener) Open(url string) error {
	o.opened = append(o.opened, url)
	return nil
}

type testApp struct {
	*App
	auth   *fakeAuth
	api    *fakeLinkClient
	opener *fakeOpener
	out    *bytes.Buffer
}

var fixedNow = time.Date(2025, 4, 10, 12, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T, auth *fakeAuth, input string, links ...models.Link) *testApp {
	t.Helper()
	api := &fakeLinkClient{links: links}
	opener := &fakeOpener{}
	out := &bytes.Buffer{}

	cfg := &config.Config{PageSize: 10, LivenessCheckInterval: time.Minute, ThemeWatchInterval: time.Hour}
	lv := services.NewLinkView(api, auth, opener, logging.Nop(), cfg.PageSize)
	theme := services.NewThemeStore(metadata.NewMemoryRepository(), services.EnvPreference{Getenv: func(string) string { return "" }}, nil)

	a := newApp(cfg, logging.Nop(), auth, lv, theme, bufio.NewReader(bytesReader(input)), out)
	a.now = func() time.Time { return fixedNow }
	return &testApp{App: a, auth: auth, api: api, opener: opener, out: out}
}

func bytesReader(s string) io.Reader {
	return bytes.NewBufferString(s)
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(io.Writer) (string, error) { return pw, nil }
	t.Cleanup(func() { getPassword = orig })
}

func sampleLink(id, title, uploader string, clicks int64, daysAgo int) models.Link {
	return models.Link{
		ID:          id,
		URL:         "https://example.com/" + id,
		Title:       title,
		Description: "description of " + title,
		UserID:      "id-" + uploader,
		User:        models.LinkOwner{Username: uploader},
		ClickCount:  clicks,
		CreatedAt:   models.Timestamp{Time: fixedNow.AddDate(0, 0, -daysAgo)},
	}
}
