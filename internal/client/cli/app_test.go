package cli

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/dmitrijs2005/linksphere/internal/client/client"
	"github.com/dmitrijs2005/linksphere/internal/client/models"
	"github.com/dmitrijs2005/linksphere/internal/client/services"
	"github.com/dmitrijs2005/linksphere/internal/client/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_PromptsAndLoadsLinks(t *testing.T) {
	stubPassword(t, "Passw0rd!")
	ta := newTestApp(t, &fakeAuth{}, "a@b.io\n", sampleLink("1", "Go", "bob", 0, 1))

	require.NoError(t, ta.Login(context.Background(), nil))

	assert.Equal(t, "a@b.io", ta.auth.loginEmail)
	assert.Equal(t, "Passw0rd!", ta.auth.loginPassword)
	assert.Contains(t, ta.out.String(), "Welcome back, alice!")
	assert.Len(t, ta.linkService.Links(), 1)
}

func TestLogin_ErrorIsReturned(t *testing.T) {
	stubPassword(t, "x")
	auth := &fakeAuth{loginErr: &client.APIError{Status: 401, Message: "Invalid credentials", Err: client.ErrUnauthorized}}
	ta := newTestApp(t, auth, "a@b.io\n")

	err := ta.Login(context.Background(), nil)
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, "Invalid credentials", services.UserMessage(err))
}

func TestLogin_SessionGoneBeforeGreeting(t *testing.T) {
	stubPassword(t, "Passw0rd!")
	ta := newTestApp(t, &fakeAuth{loginLost: true}, "a@b.io\n")

	var err error
	require.NotPanics(t, func() { err = ta.Login(context.Background(), nil) })
	require.ErrorIs(t, err, services.ErrNotAuthenticated)
	assert.NotContains(t, ta.out.String(), "Welcome back")
}

func TestRegister_FullForm(t *testing.T) {
	stubPassword(t, "Passw0rd!")
	ta := newTestApp(t, &fakeAuth{}, "a@b.io\nuser_1\nFemale\n")

	require.NoError(t, ta.Register(context.Background(), nil))

	require.NotNil(t, ta.auth.registered)
	assert.Equal(t, models.Registration{Email: "a@b.io", Username: "user_1", Password: "Passw0rd!", Gender: models.GenderFemale}, *ta.auth.registered)
	assert.Contains(t, ta.out.String(), "Type 'verify'")
}

func TestRegister_RejectsBadUsernameBeforePassword(t *testing.T) {
	called := false
	orig := getPassword
	getPassword = func(io.Writer) (string, error) { called = true; return "", nil }
	t.Cleanup(func() { getPassword = orig })

	ta := newTestApp(t, &fakeAuth{}, "a@b.io\nbad name\n")
	err := ta.Register(context.Background(), nil)

	require.ErrorIs(t, err, validation.ErrInvalid)
	assert.False(t, called)
	assert.Nil(t, ta.auth.registered)
}

func TestRegister_RejectsWeakPassword(t *testing.T) {
	stubPassword(t, "password")
	ta := newTestApp(t, &fakeAuth{}, "a@b.io\nuser_1\n")

	err := ta.Register(context.Background(), nil)
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs["password"], "an upper-case letter")
	assert.Nil(t, ta.auth.registered)
}

func TestRegister_RejectsUnknownGender(t *testing.T) {
	stubPassword(t, "Passw0rd!")
	ta := newTestApp(t, &fakeAuth{}, "a@b.io\nuser_1\nrobot\n")

	err := ta.Register(context.Background(), nil)
	require.ErrorIs(t, err, validation.ErrInvalid)
}

func TestVerify_UsesPendingEmail(t *testing.T) {
	auth := &fakeAuth{pending: &models.PendingVerification{Email: "a@b.io"}}
	ta := newTestApp(t, auth, "")

	require.NoError(t, ta.Verify(context.Background(), []string{"123456"}))
	assert.Equal(t, "a@b.io", auth.verifiedEmail)
	assert.Equal(t, "123456", auth.verifyOTP)
	assert.Contains(t, ta.out.String(), "Email verified")
}

func TestVerify_PromptsWithoutPending(t *testing.T) {
	auth := &fakeAuth{}
	ta := newTestApp(t, auth, "c@d.io\n654321\n")

	require.NoError(t, ta.Verify(context.Background(), nil))
	assert.Equal(t, "c@d.io", auth.verifiedEmail)
	assert.Equal(t, "654321", auth.verifyOTP)
}

func TestResend_RespectsCooldown(t *testing.T) {
	auth := &fakeAuth{pending: &models.PendingVerification{Email: "a@b.io"}, cooldown: 12500 * time.Millisecond}
	ta := newTestApp(t, auth, "")

	require.NoError(t, ta.Resend(context.Background(), nil))
	assert.Empty(t, auth.resentTo)
	assert.Contains(t, ta.out.String(), "in 13s")

	auth.cooldown = 0
	require.NoError(t, ta.Resend(context.Background(), nil))
	assert.Equal(t, "a@b.io", auth.resentTo)
}

func TestLogout(t *testing.T) {
	ta := newTestApp(t, loggedIn(), "")
	require.NoError(t, ta.Logout(context.Background(), nil))
	assert.Equal(t, 1, ta.auth.logouts)
	assert.False(t, ta.isLoggedIn())
}

func TestHome(t *testing.T) {
	ta := newTestApp(t, &fakeAuth{}, "")
	require.NoError(t, ta.Home(context.Background(), nil))
	assert.Contains(t, ta.out.String(), "Type 'login'")

	ta = newTestApp(t, loggedIn(), "")
	require.NoError(t, ta.Home(context.Background(), nil))
	assert.Contains(t, ta.out.String(), "Logged in as alice")
}

func manySample(n int) []models.Link {
	out := make([]models.Link, n)
	for i := range out {
		out[i] = sampleLink(fmt.Sprint(i+1), fmt.Sprintf("Link %02d", i+1), "bob", int64(i), i)
	}
	return out
}

func TestList_RendersTableAndFooter(t *testing.T) {
	ta := newTestApp(t, loggedIn(), "", manySample(25)...)

	require.NoError(t, ta.List(context.Background(), nil))
	text := ta.out.String()
	assert.Contains(t, text, "Link 01")
	assert.Contains(t, text, "Link 10")
	assert.NotContains(t, text, "Link 11")
	assert.Contains(t, text, "Page 1 of 3 (25 links)")
	assert.Contains(t, text, "1 day ago")
}

func TestPage_ClampsAndValidates(t *testing.T) {
	ta := newTestApp(t, loggedIn(), "", manySample(25)...)
	require.NoError(t, ta.linkService.Refresh(context.Background()))

	require.NoError(t, ta.Page(context.Background(), []string{"5"}))
	assert.Contains(t, ta.out.String(), "Page 3 of 3")

	require.Error(t, ta.Page(context.Background(), []string{"x"}))
	require.Error(t, ta.Page(context.Background(), nil))
}

func TestSearchSortFilter(t *testing.T) {
	links := []models.Link{
		sampleLink("1", "Go tips", "alice", 0, 3),
		sampleLink("2", "Rust", "bob", 0, 1),
		sampleLink("3", "golang news", "carol", 0, 2),
	}
	ta := newTestApp(t, loggedIn(), "", links...)
	ctx := context.Background()
	require.NoError(t, ta.linkService.Refresh(ctx))

	require.NoError(t, ta.Search(ctx, []string{"GO"}))
	assert.Equal(t, "GO", ta.linkService.Query().Search)
	assert.Len(t, ta.linkService.Links(), 2)

	require.NoError(t, ta.Sort(ctx, []string{"date", "desc"}))
	got := ta.linkService.Links()
	assert.Equal(t, "3", got[0].ID)

	require.NoError(t, ta.Filter(ctx, []string{"uploader", "car"}))
	assert.Len(t, ta.linkService.Links(), 1)

	require.NoError(t, ta.Filter(ctx, []string{"clear"}))
	require.NoError(t, ta.Search(ctx, nil))
	require.NoError(t, ta.Sort(ctx, []string{"off"}))
	assert.Len(t, ta.linkService.Links(), 3)

	require.Error(t, ta.Sort(ctx, []string{"size"}))
	require.Error(t, ta.Filter(ctx, []string{"tag", "x"}))
	require.Error(t, ta.Filter(ctx, nil))
}

func TestShowOpenDelete(t *testing.T) {
	ta := newTestApp(t, loggedIn(), "n\ny\n", sampleLink("1", "Go", "bob", 2, 1))
	ctx := context.Background()
	require.NoError(t, ta.linkService.Refresh(ctx))

	require.NoError(t, ta.Show(ctx, []string{"1"}))
	assert.Contains(t, ta.out.String(), "https://example.com/1")
	require.ErrorIs(t, ta.Show(ctx, []string{"9"}), services.ErrLinkNotFound)

	require.NoError(t, ta.Open(ctx, []string{"1"}))
	assert.Equal(t, []string{"https://example.com/1"}, ta.opener.opened)
	assert.Equal(t, []string{"1"}, ta.api.clicked)

	require.NoError(t, ta.Delete(ctx, []string{"1"}))
	assert.Empty(t, ta.api.deleted, "declined confirmation")

	require.NoError(t, ta.Delete(ctx, []string{"1"}))
	assert.Equal(t, []string{"1"}, ta.api.deleted)
	assert.Empty(t, ta.linkService.Links())
}

func TestUpload(t *testing.T) {
	ta := newTestApp(t, loggedIn(), "https://go.dev\nGo\nThe Go website\nand docs\n\n")

	require.NoError(t, ta.Upload(context.Background(), nil))
	require.NotNil(t, ta.api.created)
	assert.Equal(t, "The Go website\nand docs", ta.api.created.Description)
	assert.Contains(t, ta.out.String(), "Link shared! (id new)")
}

func TestUpload_ValidationError(t *testing.T) {
	ta := newTestApp(t, loggedIn(), "go.dev\n\nshort\n\n")

	err := ta.Upload(context.Background(), nil)
	require.ErrorIs(t, err, validation.ErrInvalid)
	assert.Nil(t, ta.api.created)
}

func TestDashboardAndAdmin(t *testing.T) {
	links := []models.Link{
		sampleLink("1", "Mine", "alice", 4, 1),
		sampleLink("2", "Theirs", "bob", 7, 2),
	}
	links[0].UserID = "u1"
	ta := newTestApp(t, loggedIn(), "", links...)

	require.NoError(t, ta.Dashboard(context.Background(), nil))
	text := ta.out.String()
	assert.Contains(t, text, "Dashboard for alice")
	assert.Contains(t, text, "Your links")
	assert.Contains(t, text, "Most clicked")

	ta.out.Reset()
	require.NoError(t, ta.Admin(context.Background(), nil))
	assert.Contains(t, ta.out.String(), "All clicks")
	assert.NotContains(t, ta.out.String(), "Your links")
}

func TestAccountAndRename(t *testing.T) {
	ta := newTestApp(t, loggedIn(), "")
	ctx := context.Background()

	require.NoError(t, ta.Account(ctx, nil))
	assert.Contains(t, ta.out.String(), "a@b.io")

	require.NoError(t, ta.Rename(ctx, []string{"new_name"}))
	assert.Equal(t, "new_name", ta.auth.renamedTo)
	assert.Contains(t, ta.prompt(), "new_name")

	require.Error(t, ta.Rename(ctx, nil))
}

func TestTheme(t *testing.T) {
	ta := newTestApp(t, &fakeAuth{}, "")
	ctx := context.Background()

	require.NoError(t, ta.Theme(ctx, nil))
	assert.Contains(t, ta.out.String(), "Theme: light (mode system)")

	require.NoError(t, ta.Theme(ctx, []string{"toggle"}))
	assert.Contains(t, ta.out.String(), "Theme: dark (mode dark)")

	require.NoError(t, ta.Theme(ctx, []string{"system"}))
	assert.Equal(t, models.ThemeModeSystem, ta.themeService.Mode())

	require.Error(t, ta.Theme(ctx, []string{"sepia"}))
}

func TestRun_RestoresStartsAndCloses(t *testing.T) {
	captureOutput(t)
	ta := newTestApp(t, loggedIn(), "exit\n")

	ta.Run(context.Background())

	assert.True(t, ta.auth.restored)
	assert.True(t, ta.auth.closed)
	assert.Equal(t, ta.config.LivenessCheckInterval, ta.auth.livenessInterval)
	assert.Contains(t, ta.out.String(), "LinkSphere CLI")
}
