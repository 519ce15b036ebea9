package services

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/linksphere/internal/client/models"
	"github.com/dmitrijs2005/linksphere/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/linksphere/internal/logging"
)

const keyThemeMode = "themeMode"

// DefaultThemeWatchInterval is used when Watch gets a non-positive interval.
const DefaultThemeWatchInterval = 5 * time.Second

// PreferenceSource reports the system colour preference.
type PreferenceSource interface {
	PrefersDark() bool
}

// EnvPreference reads LINKSPHERE_PREFERS_DARK, then the terminal's
// COLORFGBG ("fg;bg"). With neither set the preference is light.
type EnvPreference struct {
	Getenv func(string) string
}

func (p EnvPreference) PrefersDark() bool {
	getenv := p.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	if v := getenv("LINKSPHERE_PREFERS_DARK"); v != "" {
		if dark, err := strconv.ParseBool(v); err == nil {
			return dark
		}
	}

	if v := getenv("COLORFGBG"); v != "" {
		parts := strings.Split(v, ";")
		bg, err := strconv.Atoi(parts[len(parts)-1])
		if err == nil {
			// ANSI colours 0-6 and 8 are dark backgrounds.
			return bg < 7 || bg == 8
		}
	}
	return false
}

type ThemeService interface {
	Load(ctx context.Context) error
	Mode() models.ThemeMode
	Resolved() models.Theme
	SetMode(ctx context.Context, mode models.ThemeMode) error
	Toggle(ctx context.Context) (models.Theme, error)
	Subscribe(fn func(models.Theme)) (unsubscribe func())
	Watch(ctx context.Context, interval time.Duration)
}

// ThemeStore persists the chosen mode and resolves "system" through a
// PreferenceSource.
type ThemeStore struct {
	repo   metadata.Repository
	source PreferenceSource
	logger logging.Logger

	mu       sync.Mutex
	mode     models.ThemeMode
	resolved models.Theme
	subs     map[int]func(models.Theme)
	nextSub  int
}

func NewThemeStore(repo metadata.Repository, source PreferenceSource, logger logging.Logger) *ThemeStore {
	if source == nil {
		source = EnvPreference{}
	}
	if logger == nil {
		logger = logging.Nop()
	}
	s := &ThemeStore{
		repo:   repo,
		source: source,
		logger: logger,
		mode:   models.ThemeModeSystem,
		subs:   make(map[int]func(models.Theme)),
	}
	s.resolved = s.resolve(s.mode)
	return s
}

func (s *ThemeStore) resolve(mode models.ThemeMode) models.Theme {
	switch mode {
	case models.ThemeModeLight:
		return models.ThemeLight
	case models.ThemeModeDark:
		return models.ThemeDark
	}
	if s.source.PrefersDark() {
		return models.ThemeDark
	}
	return models.ThemeLight
}

// Load reads the saved mode. Unknown values fall back to system.
func (s *ThemeStore) Load(ctx context.Context) error {
	raw, err := s.repo.Get(ctx, keyThemeMode)
	if err != nil {
		return err
	}

	mode := models.ThemeModeSystem
	if len(raw) > 0 {
		if m, err := models.ParseThemeMode(string(raw)); err == nil {
			mode = m
		} else {
			s.logger.Warn(ctx, "ignoring saved theme mode", "error", err)
		}
	}
	s.apply(mode)
	return nil
}

func (s *ThemeStore) Mode() models.ThemeMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *ThemeStore) Resolved() models.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolved
}

func (s *ThemeStore) SetMode(ctx context.Context, mode models.ThemeMode) error {
	if _, err := models.ParseThemeMode(string(mode)); err != nil {
		return err
	}
	if err := s.repo.Set(ctx, keyThemeMode, []byte(mode)); err != nil {
		return err
	}
	s.apply(mode)
	return nil
}

// Toggle flips the theme on screen and pins it as an explicit mode.
func (s *ThemeStore) Toggle(ctx context.Context) (models.Theme, error) {
	next := models.ThemeModeDark
	if s.Resolved() == models.ThemeDark {
		next = models.ThemeModeLight
	}
	if err := s.SetMode(ctx, next); err != nil {
		return "", err
	}
	return s.Resolved(), nil
}

// apply sets the mode and notifies subscribers if the resolved theme moved.
func (s *ThemeStore) apply(mode models.ThemeMode) {
	s.update(mode, false)
}

// update resolves mode and stores it. With onlyIfSystem set it does nothing
// unless the current mode is still system.
func (s *ThemeStore) update(mode models.ThemeMode, onlyIfSystem bool) {
	theme := s.resolve(mode)

	s.mu.Lock()
	if onlyIfSystem && s.mode != models.ThemeModeSystem {
		s.mu.Unlock()
		return
	}
	s.mode = mode
	changed := theme != s.resolved
	s.resolved = theme
	subs := s.subscribersLocked()
	s.mu.Unlock()

	if changed {
		for _, fn := range subs {
			fn(theme)
		}
	}
}

func (s *ThemeStore) subscribersLocked() []func(models.Theme) {
	out := make([]func(models.Theme), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

// Subscribe registers fn for resolved theme changes.
func (s *ThemeStore) Subscribe(fn func(models.Theme)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Watch polls the preference source until ctx is done. Changes only matter
// while the mode is system.
func (s *ThemeStore) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultThemeWatchInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.update(models.ThemeModeSystem, true)
		case <-ctx.Done():
			return
		}
	}
}
