package web

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/dfryer1193/portfolio/site/domain"
	"github.com/dfryer1193/portfolio/site/presentation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	themeCookie       = "theme"
	themeCookieMaxAge = 365 * 24 * 60 * 60
)

// cookiePreferenceStore keeps the theme preference in the visitor's browser.
// A missing or unreadable cookie resolves to the default theme.
type cookiePreferenceStore struct {
	c *gin.Context
}

var _ domain.PreferenceStore = (*cookiePreferenceStore)(nil)

func newCookiePreferenceStore(c *gin.Context) *cookiePreferenceStore {
	return &cookiePreferenceStore{c: c}
}

func (s *cookiePreferenceStore) Load(ctx context.Context) (domain.ThemePreference, error) {
	raw, err := s.c.Cookie(themeCookie)
	if err != nil {
		return domain.DefaultTheme, nil
	}
	pref, err := domain.ParseThemePreference(raw)
	if err != nil {
		return domain.DefaultTheme, nil
	}
	return pref, nil
}

func (s *cookiePreferenceStore) Save(ctx context.Context, pref domain.ThemePreference) error {
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(themeCookie, pref.String(), themeCookieMaxAge, "/", "", s.c.Request.TLS != nil, true)
	return nil
}

func (s *server) toggleTheme(c *gin.Context) {
	toggle := presentation.NewThemeToggle(newCookiePreferenceStore(c))
	if err := toggle.Resolve(c.Request.Context()); err != nil {
		log.Error().Err(err).Msg("Failed to resolve theme preference")
		s.errorPage(c, http.StatusInternalServerError)
		return
	}
	pref, err := toggle.Toggle(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to toggle theme")
		s.errorPage(c, http.StatusInternalServerError)
		return
	}

	log.Debug().Str("theme", pref.String()).Msg("Theme toggled")
	c.Redirect(http.StatusSeeOther, sameSiteReturnPath(c.Request))
}

// sameSiteReturnPath is the path of a same-host Referer, or "/".
func sameSiteReturnPath(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Host != r.Host {
		return "/"
	}
	if !strings.HasPrefix(ref.Path, "/") || strings.HasPrefix(ref.Path, "//") {
		return "/"
	}
	back := &url.URL{Path: ref.Path, RawQuery: ref.RawQuery}
	return back.String()
}
