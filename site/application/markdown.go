package application

import (
	"bytes"
	"fmt"
	"html/template"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

const imagesPath = "/images/"

// relativeLinkTransformer points links between content documents at their
// site routes ("about.md" -> "/about") and relative images at /images/.
type relativeLinkTransformer struct{}

func (t *relativeLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch v := n.(type) {
		case *ast.Link:
			dest := string(v.Destination)
			if isRelativeLink(dest) {
				v.Destination = []byte(documentRoute(dest))
			}
		case *ast.Image:
			dest := string(v.Destination)
			if isRelativeLink(dest) {
				v.Destination = []byte(imagesPath + path.Base(dest))
			}
		}

		return ast.WalkContinue, nil
	})
}

// isRelativeLink reports document-relative destinations. Absolute paths,
// fragments and anything with a scheme are left alone.
func isRelativeLink(dest string) bool {
	if dest == "" || strings.HasPrefix(dest, "/") || strings.HasPrefix(dest, "#") {
		return false
	}

	if strings.HasPrefix(dest, "./") || strings.HasPrefix(dest, "../") {
		return true
	}

	return !strings.Contains(dest, ":")
}

func documentRoute(dest string) string {
	fragment := ""
	if i := strings.Index(dest, "#"); i >= 0 {
		dest, fragment = dest[:i], dest[i:]
	}
	base := path.Base(dest)
	base = strings.TrimSuffix(base, ".md")
	base = strings.TrimSuffix(base, ".html")
	if base == "index" || base == "homepage" {
		return "/" + fragment
	}
	return "/" + base + fragment
}

// MarkdownRenderer converts document bodies to HTML.
type MarkdownRenderer interface {
	Render(markdown []byte) (template.HTML, error)
}

type MarkdownRendererImpl struct {
	renderer goldmark.Markdown
}

func NewMarkdownRenderer() MarkdownRenderer {
	renderer := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Typographer,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(&relativeLinkTransformer{}, 100),
			),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
		),
	)

	return &MarkdownRendererImpl{
		renderer: renderer,
	}
}

// Render converts markdown to HTML. Raw HTML in the source is omitted.
func (r *MarkdownRendererImpl) Render(markdown []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.renderer.Convert(markdown, &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}
	return template.HTML(buf.String()), nil
}
