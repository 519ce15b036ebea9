package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/linksphere/internal/client/client"
	"github.com/dmitrijs2005/linksphere/internal/client/config"
	"github.com/dmitrijs2005/linksphere/internal/client/models"
	"github.com/dmitrijs2005/linksphere/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/linksphere/internal/client/services"
	"github.com/dmitrijs2005/linksphere/internal/logging"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	authService  services.AuthService
	linkService  services.LinkService
	themeService services.ThemeService

	reader *bufio.Reader
	out    io.Writer
	now    func() time.Time

	mu      sync.Mutex
	palette palette
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	ctx := context.Background()

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	apiClient, err := client.NewHTTPClient(c.APIBaseURL, c.RequestTimeout, client.WithLogger(logger))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	session := services.NewSessionStore(apiClient, db, logger, c.ResendCooldown)
	links := services.NewLinkView(apiClient, session, services.BrowserOpener{}, logger, c.PageSize)
	theme := services.NewThemeStore(metadata.NewSQLiteRepository(db), services.EnvPreference{}, logger)

	a := newApp(c, logger, session, links, theme, bufio.NewReader(os.Stdin), os.Stdout)
	a.db = db
	return a, nil
}

func newApp(c *config.Config, logger logging.Logger, auth services.AuthService, links services.LinkService,
	theme services.ThemeService, reader *bufio.Reader, out io.Writer) *App {
	return &App{
		config:       c,
		logger:       logger,
		authService:  auth,
		linkService:  links,
		themeService: theme,
		reader:       reader,
		out:          out,
		now:          time.Now,
		palette:      paletteFor(theme.Resolved()),
	}
}

// Run restores the previous session, starts the background checks and
// blocks in the REPL until the user leaves.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.close(ctx)

	if err := a.authService.Restore(ctx); err != nil {
		a.logger.Warn(ctx, "could not restore session", "error", err)
	}
	if err := a.themeService.Load(ctx); err != nil {
		a.logger.Warn(ctx, "could not load theme", "error", err)
	}
	a.setTheme(a.themeService.Resolved())

	unsubscribe := a.themeService.Subscribe(a.setTheme)
	defer unsubscribe()

	go a.themeService.Watch(ctx, a.config.ThemeWatchInterval)
	stop := a.authService.StartLivenessCheck(ctx, a.config.LivenessCheckInterval)
	defer stop()

	fmt.Fprintln(a.out, a.style().title.Render("LinkSphere CLI")+" (type 'help' for commands)")
	runREPL(ctx, a, a.prompt, a.reader)
}

func (a *App) close(ctx context.Context) {
	if err := a.authService.Close(); err != nil {
		a.logger.Warn(ctx, "error closing api client", "error", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn(ctx, "error closing database", "error", err)
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.authService.IsAuthenticated()
}

func (a *App) setTheme(t models.Theme) {
	a.mu.Lock()
	a.palette = paletteFor(t)
	a.mu.Unlock()
}

func (a *App) style() palette {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.palette
}

// prompt shows who is logged in, e.g. "linksphere alice> ".
func (a *App) prompt() string {
	who := "guest"
	if s := a.authService.Session(); s.IsAuthenticated() {
		who = s.User.Username
	}
	return a.style().prompt.Render("linksphere "+who+">") + " "
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) success(msg string) {
	fmt.Fprintln(a.out, a.style().success.Render(msg))
}
