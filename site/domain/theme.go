package domain

import (
	"context"
	"errors"
	"fmt"
)

// ThemePreference is the visitor's colour scheme.
type ThemePreference string

const (
	ThemeLight ThemePreference = "light"
	ThemeDark  ThemePreference = "dark"

	DefaultTheme = ThemeDark
)

// ErrPreferenceUnavailable is returned by a PreferenceStore that cannot answer yet.
var ErrPreferenceUnavailable = errors.New("theme preference unavailable")

// ParseThemePreference accepts exactly "light" or "dark".
func ParseThemePreference(s string) (ThemePreference, error) {
	switch ThemePreference(s) {
	case ThemeLight, ThemeDark:
		return ThemePreference(s), nil
	}
	return "", fmt.Errorf("unknown theme preference %q", s)
}

// Toggle returns the other preference.
func (t ThemePreference) Toggle() ThemePreference {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

func (t ThemePreference) String() string {
	return string(t)
}

// PreferenceStore persists the theme preference outside the pipeline, in the
// visitor's browser.
type PreferenceStore interface {
	Load(ctx context.Context) (ThemePreference, error)
	Save(ctx context.Context, pref ThemePreference) error
}
