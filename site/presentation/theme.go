package presentation

import (
	"context"
	"errors"
	"fmt"

	"github.com/dfryer1193/portfolio/site/domain"
)

// ErrThemeUnresolved is returned when the toggle is used before the
// preference store has answered.
var ErrThemeUnresolved = errors.New("theme preference not resolved")

// ThemeToggle shows and flips the visitor's theme. It stays unresolved, and
// renders nothing, until the preference store answers; a nil store never does.
type ThemeToggle struct {
	store    domain.PreferenceStore
	current  domain.ThemePreference
	resolved bool
}

func NewThemeToggle(store domain.PreferenceStore) *ThemeToggle {
	return &ThemeToggle{store: store}
}

// Resolve asks the store for the preference. An unavailable preference leaves
// the toggle unresolved and is not an error.
func (t *ThemeToggle) Resolve(ctx context.Context) error {
	if t.store == nil {
		return nil
	}
	pref, err := t.store.Load(ctx)
	if errors.Is(err, domain.ErrPreferenceUnavailable) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load theme preference: %w", err)
	}
	t.current = pref
	t.resolved = true
	return nil
}

func (t *ThemeToggle) Visible() bool {
	return t.resolved
}

// Current returns the resolved preference, or false while unresolved.
func (t *ThemeToggle) Current() (domain.ThemePreference, bool) {
	return t.current, t.resolved
}

// Effective is the theme a page is drawn with: the preference once resolved,
// the default before.
func (t *ThemeToggle) Effective() domain.ThemePreference {
	if !t.resolved {
		return domain.DefaultTheme
	}
	return t.current
}

// Label names the mode a visitor is in, for the mobile menu.
func (t *ThemeToggle) Label() string {
	if t.Effective() == domain.ThemeDark {
		return "Dark Mode"
	}
	return "Light Mode"
}

// Set writes pref through the store.
func (t *ThemeToggle) Set(ctx context.Context, pref domain.ThemePreference) error {
	if t.store == nil {
		return ErrThemeUnresolved
	}
	if err := t.store.Save(ctx, pref); err != nil {
		return fmt.Errorf("failed to save theme preference: %w", err)
	}
	t.current = pref
	t.resolved = true
	return nil
}

// Toggle flips the resolved preference and writes it back.
func (t *ThemeToggle) Toggle(ctx context.Context) (domain.ThemePreference, error) {
	if !t.resolved {
		return "", ErrThemeUnresolved
	}
	next := t.current.Toggle()
	if err := t.Set(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}
