package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/linksphere/internal/client/models"
)

const topLinks = 5

// refreshQuietly reloads links for the statistics pages; a failure just
// leaves the cached numbers.
func (a *App) refreshQuietly(ctx context.Context) {
	if err := a.linkService.Refresh(ctx); err != nil {
		a.logger.Warn(ctx, "could not refresh links", "error", err)
	}
}

func (a *App) Dashboard(ctx context.Context, _ []string) error {
	a.refreshQuietly(ctx)
	s := a.authService.Session()
	if !s.IsAuthenticated() {
		return nil
	}
	a.println(a.style().title.Render("Dashboard for " + s.User.Username))
	renderStats(a.out, a.linkService.Stats(*s.User, topLinks), true)
	return nil
}

func (a *App) Admin(ctx context.Context, _ []string) error {
	a.refreshQuietly(ctx)
	a.println(a.style().title.Render("Site statistics"))
	renderStats(a.out, a.linkService.Stats(models.User{}, 2*topLinks), false)
	return nil
}

func (a *App) Account(_ context.Context, _ []string) error {
	s := a.authService.Session()
	if !s.IsAuthenticated() {
		return nil
	}
	table := newTable(a.out, "Field", "Value")
	table.AppendBulk([][]string{
		{"Username", s.User.Username},
		{"Email", s.User.Email},
		{"Gender", string(s.User.Gender)},
		{"User ID", s.User.ID},
	})
	table.Render()
	return nil
}

func (a *App) Rename(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("rename <username>")
	}
	u, err := a.authService.UpdateUsername(ctx, args[0])
	if err != nil {
		return err
	}
	a.success("Username changed to " + u.Username + ".")
	return nil
}

func (a *App) Theme(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.println(fmt.Sprintf("Theme: %s (mode %s)", a.themeService.Resolved(), a.themeService.Mode()))
		return nil
	}

	if args[0] == "toggle" {
		if _, err := a.themeService.Toggle(ctx); err != nil {
			return err
		}
	} else {
		mode, err := models.ParseThemeMode(args[0])
		if err != nil {
			return err
		}
		if err := a.themeService.SetMode(ctx, mode); err != nil {
			return err
		}
	}
	a.setTheme(a.themeService.Resolved())
	a.println(fmt.Sprintf("Theme: %s (mode %s)", a.themeService.Resolved(), a.themeService.Mode()))
	return nil
}
