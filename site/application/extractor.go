package application

import (
	"fmt"
	"path"
	"strings"

	"github.com/dfryer1193/portfolio/site/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	fieldTitle        = "title"
	fieldSubtitle     = "subtitle"
	fieldCTAText      = "ctaText"
	fieldCTALink      = "ctaLink"
	fieldDescription  = "description"
	fieldLink         = "link"
	fieldImage        = "image"
	fieldTechnologies = "technologies"
	fieldOrder        = "order"
)

// fieldReader collects every failed field instead of stopping at the first,
// so a document always produces the same ValidationError.
type fieldReader struct {
	doc    *domain.ContentDocument
	failed []domain.FieldError
}

func (r *fieldReader) fail(field, reason string) {
	r.failed = append(r.failed, domain.FieldError{Field: field, Reason: reason})
}

func (r *fieldReader) required(field string) string {
	v, ok := r.doc.Lookup(field)
	if !ok || v == nil {
		r.fail(field, "is missing")
		return ""
	}
	s, ok := scalarString(v)
	if !ok {
		r.fail(field, fmt.Sprintf("must be a scalar, got %T", v))
		return ""
	}
	if strings.TrimSpace(s) == "" {
		r.fail(field, "is empty")
		return ""
	}
	return s
}

func (r *fieldReader) optional(field string) string {
	v, ok := r.doc.Lookup(field)
	if !ok || v == nil {
		return ""
	}
	s, ok := scalarString(v)
	if !ok {
		r.fail(field, fmt.Sprintf("must be a scalar, got %T", v))
		return ""
	}
	return s
}

func (r *fieldReader) stringList(field string) []string {
	v, ok := r.doc.Lookup(field)
	if !ok || v == nil {
		return nil
	}

	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case []string:
		for _, s := range t {
			items = append(items, s)
		}
	case string:
		// comma separated shorthand: "Go, SQLite"
		for _, s := range strings.Split(t, ",") {
			items = append(items, s)
		}
	default:
		r.fail(field, fmt.Sprintf("must be a list, got %T", v))
		return nil
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := scalarString(item)
		if !ok {
			r.fail(field, fmt.Sprintf("entries must be scalars, got %T", item))
			return nil
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (r *fieldReader) integer(field string) int {
	v, ok := r.doc.Lookup(field)
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		if n == float64(int(n)) {
			return int(n)
		}
	}
	r.fail(field, fmt.Sprintf("must be an integer, got %v", v))
	return 0
}

func (r *fieldReader) err() error {
	if len(r.failed) == 0 {
		return nil
	}
	return &domain.ValidationError{Document: r.doc.Name, Fields: r.failed}
}

// scalarString takes strings verbatim and formats other scalars.
func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(t), true
	}
	return "", false
}

// ExtractHomepage projects the homepage fields with no transformation. Every
// missing or unusable field is reported in one *domain.ValidationError.
//
// String values are taken verbatim. Unquoted YAML numbers and booleans are
// decoded first and then formatted with fmt.Sprint, so `ctaText: 1.0` renders
// as "1"; quote a value to keep its exact spelling.
func ExtractHomepage(doc *domain.ContentDocument) (*domain.HomepageViewModel, error) {
	r := &fieldReader{doc: doc}
	vm := &domain.HomepageViewModel{
		Title:    r.required(fieldTitle),
		Subtitle: r.required(fieldSubtitle),
		CTAText:  r.required(fieldCTAText),
		CTALink:  r.required(fieldCTALink),
	}
	if err := r.err(); err != nil {
		return nil, err
	}
	return vm, nil
}

// ExtractProject projects a projects/* document into a card view-model.
func ExtractProject(doc *domain.ContentDocument) (*domain.Project, error) {
	r := &fieldReader{doc: doc}
	p := &domain.Project{
		Slug:         path.Base(doc.Name),
		Title:        r.required(fieldTitle),
		Description:  r.required(fieldDescription),
		Link:         r.optional(fieldLink),
		Image:        r.optional(fieldImage),
		Technologies: r.stringList(fieldTechnologies),
		Order:        r.integer(fieldOrder),
	}
	if err := r.err(); err != nil {
		return nil, err
	}
	return p, nil
}

// ExtractPageMeta returns the title and description of a generic page. Pages
// without a title are named after their slug.
func ExtractPageMeta(doc *domain.ContentDocument) (string, string, error) {
	r := &fieldReader{doc: doc}
	title := r.optional(fieldTitle)
	description := r.optional(fieldDescription)
	if err := r.err(); err != nil {
		return "", "", err
	}
	if strings.TrimSpace(title) == "" {
		title = titleFromSlug(path.Base(doc.Name))
	}
	return title, description, nil
}

func titleFromSlug(slug string) string {
	words := strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	return cases.Title(language.English).String(words)
}
