// Package presentation turns view-models into HTML. Components are plain
// structs built per request; templates and static assets are compiled in.
package presentation

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"time"

	"github.com/dfryer1193/portfolio/site/domain"
	"github.com/dfryer1193/portfolio/site/siteconfig"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// StaticFS serves the compiled-in assets, rooted at the static directory.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

const (
	homeTemplate     = "home"
	projectsTemplate = "projects"
	pageTemplate     = "page"
	errorTemplate    = "error"
)

// RequestState is the per-request UI state around the page body.
type RequestState struct {
	Path  string
	Menu  *MobileMenu
	Theme *ThemeToggle
	// ClientTheme leaves the theme preference to the browser: while Theme is
	// unresolved the page carries an inert toggle that site.js renders once
	// local storage answers.
	ClientTheme bool
}

type pageData struct {
	Title  string
	Theme  domain.ThemePreference
	Site   *siteconfig.SiteConfig
	Navbar *Navbar
	Footer *Footer

	Hero       *Hero
	Cards      []*ProjectCard
	Page       *domain.Page
	Status     int
	StatusText string
}

type Renderer struct {
	site      *siteconfig.SiteConfig
	now       func() time.Time
	templates map[string]*template.Template
}

// NewRenderer parses every page template against the shared layout. now feeds
// the footer's copyright year; nil means time.Now.
func NewRenderer(site *siteconfig.SiteConfig, now func() time.Time) (*Renderer, error) {
	if now == nil {
		now = time.Now
	}

	templates := make(map[string]*template.Template)
	for _, name := range []string{homeTemplate, projectsTemplate, pageTemplate, errorTemplate} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/partials.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		templates[name] = t
	}

	return &Renderer{
		site:      site,
		now:       now,
		templates: templates,
	}, nil
}

func (r *Renderer) chrome(state RequestState, title string) *pageData {
	if state.Path == "" {
		state.Path = "/"
	}
	if state.Theme == nil {
		state.Theme = NewThemeToggle(nil)
	}
	if title == "" {
		title = r.site.Name
	} else {
		title = title + " - " + r.site.Name
	}

	navbar := NewNavbar(r.site, state.Path, state.Menu, state.Theme)
	navbar.ClientTheme = state.ClientTheme && !state.Theme.Visible()

	return &pageData{
		Title:  title,
		Theme:  state.Theme.Effective(),
		Site:   r.site,
		Navbar: navbar,
		Footer: NewFooter(r.site, r.now),
	}
}

// execute renders into a buffer first so a template failure never leaves a
// half-written page behind.
func (r *Renderer) execute(w io.Writer, name string, data *pageData) error {
	var buf bytes.Buffer
	if err := r.templates[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// RenderHome draws the homepage: navbar, hero and footer.
func (r *Renderer) RenderHome(w io.Writer, state RequestState, vm *domain.HomepageViewModel) error {
	data := r.chrome(state, "")
	data.Hero = NewHero(vm)
	return r.execute(w, homeTemplate, data)
}

func (r *Renderer) RenderProjects(w io.Writer, state RequestState, projects []*domain.Project) error {
	data := r.chrome(state, "Projects")
	for _, p := range projects {
		data.Cards = append(data.Cards, NewProjectCard(p, r.site))
	}
	return r.execute(w, projectsTemplate, data)
}

func (r *Renderer) RenderPage(w io.Writer, state RequestState, page *domain.Page) error {
	data := r.chrome(state, page.Title)
	data.Page = page
	return r.execute(w, pageTemplate, data)
}

// RenderError draws the generic error page. It never describes the cause.
func (r *Renderer) RenderError(w io.Writer, state RequestState, status int) error {
	data := r.chrome(state, http.StatusText(status))
	data.Status = status
	data.StatusText = http.StatusText(status)
	return r.execute(w, errorTemplate, data)
}
