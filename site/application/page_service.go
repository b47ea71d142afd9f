package application

import (
	"context"
	"fmt"
	"path"
	"sort"

	"github.com/dfryer1193/portfolio/site/domain"
	"github.com/rs/zerolog/log"
)

const (
	HomepageDocument   = "homepage"
	ProjectsCollection = "projects"
)

// PageService composes view-models for pages: it loads a document, projects it
// and hands the result to the caller for rendering. Nothing is cached between
// calls.
type PageService struct {
	loader   *ContentLoader
	markdown MarkdownRenderer
}

func NewPageService(loader *ContentLoader, markdown MarkdownRenderer) *PageService {
	return &PageService{
		loader:   loader,
		markdown: markdown,
	}
}

// Homepage loads and projects the homepage document. Loader and extractor
// errors are returned unchanged.
func (s *PageService) Homepage(ctx context.Context) (*domain.HomepageViewModel, error) {
	doc, err := s.loader.Load(ctx, HomepageDocument)
	if err != nil {
		return nil, err
	}
	return ExtractHomepage(doc)
}

// Projects loads every document of the projects collection, sorted by order
// then title. Any broken project fails the whole listing.
func (s *PageService) Projects(ctx context.Context) ([]*domain.Project, error) {
	names, err := s.loader.List(ctx, ProjectsCollection)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projects := make([]*domain.Project, 0, len(names))
	for _, name := range names {
		doc, err := s.loader.Load(ctx, name)
		if err != nil {
			return nil, err
		}
		p, err := ExtractProject(doc)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}

	sort.SliceStable(projects, func(i, j int) bool {
		if projects[i].Order != projects[j].Order {
			return projects[i].Order < projects[j].Order
		}
		return projects[i].Title < projects[j].Title
	})

	log.Debug().Int("count", len(projects)).Msg("Loaded projects")
	return projects, nil
}

// Page loads a generic markdown page by its single-segment slug.
func (s *PageService) Page(ctx context.Context, slug string) (*domain.Page, error) {
	if slug == "" || slug == HomepageDocument || path.Base(slug) != slug {
		return nil, &domain.NotFoundError{Name: slug}
	}

	doc, err := s.loader.Load(ctx, slug)
	if err != nil {
		return nil, err
	}

	title, description, err := ExtractPageMeta(doc)
	if err != nil {
		return nil, err
	}

	body, err := s.markdown.Render([]byte(doc.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to render page %q: %w", slug, err)
	}

	return &domain.Page{
		Slug:        slug,
		Title:       title,
		Description: description,
		HTML:        body,
	}, nil
}
