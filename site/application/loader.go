package application

import (
	"bytes"
	"context"
	"errors"

	"github.com/adrg/frontmatter"
	"github.com/dfryer1193/portfolio/site/domain"
)

// ContentLoader reads documents from a ContentStore and splits them into
// front matter and body. It reads the store on every call.
type ContentLoader struct {
	store domain.ContentStore
}

func NewContentLoader(store domain.ContentStore) *ContentLoader {
	return &ContentLoader{store: store}
}

// Load returns the parsed document, a *domain.NotFoundError when it does not
// exist, or a *domain.MalformedContentError when its front matter is absent or
// cannot be parsed.
func (l *ContentLoader) Load(ctx context.Context, name string) (*domain.ContentDocument, error) {
	raw, err := l.store.Read(ctx, name)
	if err != nil {
		return nil, err
	}
	return ParseDocument(name, raw)
}

// List returns the document names of a collection.
func (l *ContentLoader) List(ctx context.Context, collection string) ([]string, error) {
	return l.store.List(ctx, collection)
}

var utf8BOM = []byte("\ufeff")

// ParseDocument splits raw into front matter (YAML, TOML or JSON) and body.
// A leading UTF-8 byte order mark is ignored.
func ParseDocument(name string, raw []byte) (*domain.ContentDocument, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)

	var meta map[string]any
	body, err := frontmatter.MustParse(bytes.NewReader(raw), &meta)
	if err != nil {
		if errors.Is(err, frontmatter.ErrNotFound) {
			return nil, &domain.MalformedContentError{Name: name, Reason: "front matter block not found"}
		}
		return nil, &domain.MalformedContentError{Name: name, Reason: "front matter could not be parsed", Err: err}
	}

	if meta == nil {
		meta = map[string]any{}
	}

	return &domain.ContentDocument{
		Name:     name,
		Metadata: meta,
		Body:     string(body),
	}, nil
}
