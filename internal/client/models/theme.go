package models

import "fmt"

// ThemeMode is the persisted preference.
type ThemeMode string

const (
	ThemeModeSystem ThemeMode = "system"
	ThemeModeLight  ThemeMode = "light"
	ThemeModeDark   ThemeMode = "dark"
)

// Theme is what actually gets rendered.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func ParseThemeMode(s string) (ThemeMode, error) {
	switch m := ThemeMode(s); m {
	case ThemeModeSystem, ThemeModeLight, ThemeModeDark:
		return m, nil
	}
	return "", fmt.Errorf("unknown theme mode %q (want system, light or dark)", s)
}
