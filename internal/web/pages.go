package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dfryer1193/portfolio/site/domain"
	"github.com/dfryer1193/portfolio/site/presentation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func (s *server) requestState(c *gin.Context) presentation.RequestState {
	theme := presentation.NewThemeToggle(newCookiePreferenceStore(c))
	if err := theme.Resolve(c.Request.Context()); err != nil {
		log.Warn().Err(err).Msg("Failed to resolve theme preference")
	}
	return presentation.RequestState{
		Path:  c.Request.URL.Path,
		Menu:  presentation.NewMobileMenu(presentation.ParseMenuState(c.Query(presentation.MenuQueryParam))),
		Theme: theme,
	}
}

// renderHTML writes a page with status. A render failure falls back to the
// generic error page.
func (s *server) renderHTML(c *gin.Context, status int, render func(state presentation.RequestState) error) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := render(s.requestState(c)); err != nil {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Failed to render page")
		s.errorPage(c, http.StatusInternalServerError)
	}
}

// errorPage writes the generic error page. It is the only thing a visitor
// sees of a failure.
func (s *server) errorPage(c *gin.Context, status int) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if err := s.renderer.RenderError(c.Writer, s.requestState(c), status); err != nil {
		log.Error().Err(err).Msg("Failed to render error page")
		c.String(status, http.StatusText(status))
	}
}

func (s *server) home(c *gin.Context) {
	vm, err := s.pages.Homepage(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("document", "homepage").Msg("Failed to compose homepage")
		s.errorPage(c, http.StatusInternalServerError)
		return
	}

	s.renderHTML(c, http.StatusOK, func(state presentation.RequestState) error {
		return s.renderer.RenderHome(c.Writer, state, vm)
	})
}

func (s *server) projects(c *gin.Context) {
	projects, err := s.pages.Projects(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to load projects")
		s.errorPage(c, http.StatusInternalServerError)
		return
	}

	s.renderHTML(c, http.StatusOK, func(state presentation.RequestState) error {
		return s.renderer.RenderProjects(c.Writer, state, projects)
	})
}

// page serves every route without a handler of its own: single-segment slugs
// become markdown pages, the rest are 404.
func (s *server) page(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		s.errorPage(c, http.StatusNotFound)
		return
	}

	slug := strings.Trim(c.Request.URL.Path, "/")
	page, err := s.pages.Page(c.Request.Context(), slug)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			s.errorPage(c, http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("document", slug).Msg("Failed to compose page")
		s.errorPage(c, http.StatusInternalServerError)
		return
	}

	s.renderHTML(c, http.StatusOK, func(state presentation.RequestState) error {
		return s.renderer.RenderPage(c.Writer, state, page)
	})
}
