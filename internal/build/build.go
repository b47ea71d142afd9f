// Package build renders the whole site to static files.
package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dfryer1193/portfolio/site/application"
	"github.com/dfryer1193/portfolio/site/domain"
	"github.com/dfryer1193/portfolio/site/presentation"
	"github.com/dfryer1193/portfolio/site/siteconfig"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Builder writes every page of the site under OutputDir, one directory per
// route. Static builds have no theme preference store; their pages carry a
// toggle that the browser resolves from local storage. Pages written by an
// earlier build whose route is gone are removed.
type Builder struct {
	Site        *siteconfig.SiteConfig
	Pages       *application.PageService
	Renderer    *presentation.Renderer
	OutputDir   string
	Concurrency int
	// Images, when set, is copied to OutputDir/images.
	Images fs.FS
}

type Result struct {
	Pages   []string
	Skipped []string
}

type renderFunc func(w io.Writer, state presentation.RequestState) error

// Build renders the homepage, the project listing, every markdown page the
// navigation links to and the 404 page, then copies the assets. A nav target
// without a document is skipped; any other failure fails the build.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	if err := os.MkdirAll(b.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	vm, err := b.Pages.Homepage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compose homepage: %w", err)
	}
	projects, err := b.Pages.Projects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}

	routes := map[string]renderFunc{
		"/": func(w io.Writer, state presentation.RequestState) error {
			return b.Renderer.RenderHome(w, state, vm)
		},
		"/projects": func(w io.Writer, state presentation.RequestState) error {
			return b.Renderer.RenderProjects(w, state, projects)
		},
	}

	result := &Result{}
	for _, slug := range b.Site.PageSlugs("/projects") {
		page, err := b.Pages.Page(ctx, slug)
		if err != nil {
			var nf *domain.NotFoundError
			if errors.As(err, &nf) {
				log.Warn().Str("page", slug).Msg("Navigation target has no document, skipping")
				result.Skipped = append(result.Skipped, "/"+slug)
				continue
			}
			return nil, fmt.Errorf("failed to compose page %s: %w", slug, err)
		}
		routes["/"+slug] = func(w io.Writer, state presentation.RequestState) error {
			return b.Renderer.RenderPage(w, state, page)
		}
	}

	written := make([]string, 0, len(routes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(b.Concurrency, 1))
	for route, render := range routes {
		result.Pages = append(result.Pages, route)
		written = append(written, routeFile(route))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return b.writeRoute(route, render)
		})
	}
	g.Go(func() error {
		return b.writeFile("404.html", func(w io.Writer) error {
			return b.Renderer.RenderError(w, b.state("/404"), http.StatusNotFound)
		})
	})
	g.Go(func() error {
		return copyTree(presentation.StaticFS(), filepath.Join(b.OutputDir, "static"))
	})
	if b.Images != nil {
		g.Go(func() error {
			return copyTree(b.Images, filepath.Join(b.OutputDir, "images"))
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := b.prune(written); err != nil {
		return nil, err
	}

	log.Info().
		Int("pages", len(result.Pages)).
		Int("skipped", len(result.Skipped)).
		Str("output", b.OutputDir).
		Msg("Site built")
	return result, nil
}

func (b *Builder) state(route string) presentation.RequestState {
	return presentation.RequestState{
		Path:  route,
		Menu:        presentation.NewMobileMenu(presentation.MenuClosed),
		Theme:       presentation.NewThemeToggle(nil),
		ClientTheme: true,
	}
}

func routeFile(route string) string {
	if route == "/" {
		return "index.html"
	}
	return path.Join(route, "index.html")[1:]
}

func (b *Builder) writeRoute(route string, render renderFunc) error {
	return b.writeFile(routeFile(route), func(w io.Writer) error {
		return render(w, b.state(route))
	})
}

// manifestName lists the page files of the last successful build.
const manifestName = ".pages"

// prune deletes the pages the previous build wrote that this one did not,
// then records the current set.
func (b *Builder) prune(current []string) error {
	manifest := filepath.Join(b.OutputDir, manifestName)
	previous, err := os.ReadFile(manifest)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to read page manifest: %w", err)
	}

	keep := make(map[string]bool, len(current))
	for _, name := range current {
		keep[name] = true
	}
	for _, name := range strings.Fields(string(previous)) {
		// only paths this builder could have written
		if keep[name] || !fs.ValidPath(name) || path.Base(name) != "index.html" {
			continue
		}
		target := filepath.Join(b.OutputDir, filepath.FromSlash(name))
		if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to remove stale page %s: %w", name, err)
		}
		// fails harmlessly when the directory still holds other files
		if dir := path.Dir(name); dir != "." {
			_ = os.Remove(filepath.Join(b.OutputDir, filepath.FromSlash(dir)))
		}
		log.Info().Str("page", name).Msg("Removed page that no longer exists")
	}

	sort.Strings(current)
	if err := os.WriteFile(manifest, []byte(strings.Join(current, "\n")+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write page manifest: %w", err)
	}
	return nil
}

// writeFile renders fully before touching the file so a failed render leaves
// the previous build in place.
func (b *Builder) writeFile(name string, render func(w io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	target := filepath.Join(b.OutputDir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", name, err)
	}
	if err := os.WriteFile(target, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func copyTree(src fs.FS, dst string) error {
	return fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dst, filepath.FromSlash(p))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := fs.ReadFile(src, p)
		if err != nil {
			return fmt.Errorf("failed to read asset %s: %w", p, err)
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return fmt.Errorf("failed to write asset %s: %w", p, err)
		}
		return nil
	})
}
