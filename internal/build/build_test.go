package build

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/dfryer1193/portfolio/site/application"
	"github.com/dfryer1193/portfolio/site/persistence"
	"github.com/dfryer1193/portfolio/site/presentation"
	"github.com/dfryer1193/portfolio/site/siteconfig"
	"github.com/google/go-cmp/cmp"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func newBuilder(t *testing.T, files map[string]string) *Builder {
	t.Helper()
	return newBuilderIn(t, t.TempDir(), files)
}

func newBuilderIn(t *testing.T, content string, files map[string]string) *Builder {
	t.Helper()
	writeFiles(t, content, files)

	site := siteconfig.Default()
	renderer, err := presentation.NewRenderer(site, func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) })
	if err != nil {
		t.Fatal(err)
	}
	loader := application.NewContentLoader(persistence.NewFileSystemStore(content))
	return &Builder{
		Site:        site,
		Pages:       application.NewPageService(loader, application.NewMarkdownRenderer()),
		Renderer:    renderer,
		OutputDir:   t.TempDir(),
		Concurrency: 2,
	}
}

const homeDoc = "---\ntitle: \"Hello\"\nsubtitle: \"World\"\nctaText: \"Go\"\nctaLink: \"/start\"\n---\n"

func TestBuild(t *testing.T) {
	b := newBuilder(t, map[string]string{
		"homepage.md":        homeDoc,
		"about.md":           "---\ntitle: About\n---\nHi.\n",
		"contact.md":         "---\ntitle: Contact\n---\nMail me.\n",
		"projects/ledger.md": "---\ntitle: Ledger\ndescription: Books\n---\n",
	})
	b.Images = fstest.MapFS{"me.png": {Data: []byte("png")}}

	result, err := b.Build(context.Background())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	sort.Strings(result.Pages)
	if diff := cmp.Diff([]string{"/", "/about", "/contact", "/projects"}, result.Pages); diff != "" {
		t.Errorf("pages mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"/experience", "/blog"}, result.Skipped); diff != "" {
		t.Errorf("skipped mismatch (-want +got):\n%s", diff)
	}

	for _, name := range []string{
		"index.html", "about/index.html", "contact/index.html", "projects/index.html",
		"404.html", "static/site.css", "images/me.png",
	} {
		if _, err := os.Stat(filepath.Join(b.OutputDir, filepath.FromSlash(name))); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	home, err := os.ReadFile(filepath.Join(b.OutputDir, "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(home), `<a href="/start" class="cta">Go</a>`) {
		t.Error("built homepage has no CTA")
	}
	if strings.Contains(string(home), `action="/theme"`) {
		t.Error("static pages must not post to the server theme endpoint")
	}
	if !strings.Contains(string(home), `<template data-theme-toggle>`) {
		t.Error("static pages should carry the browser theme toggle")
	}
}

func TestBuild_FailsOnBrokenHomepage(t *testing.T) {
	b := newBuilder(t, map[string]string{"homepage.md": "---\ntitle: x\n---\n"})
	if _, err := b.Build(context.Background()); err == nil {
		t.Error("Build() should fail when the homepage is invalid")
	}
	if _, err := os.Stat(filepath.Join(b.OutputDir, "index.html")); !os.IsNotExist(err) {
		t.Error("a failed build should not write pages")
	}
}

func TestBuild_RemovesDeletedPages(t *testing.T) {
	content := t.TempDir()
	b := newBuilderIn(t, content, map[string]string{
		"homepage.md": homeDoc,
		"about.md":    "---\ntitle: About\n---\nHi.\n",
		"contact.md":  "---\ntitle: Contact\n---\nMail me.\n",
	})
	ctx := context.Background()

	if _, err := b.Build(ctx); err != nil {
		t.Fatalf("first Build() error = %v", err)
	}
	// files the builder did not write survive
	keep := filepath.Join(b.OutputDir, "about", "notes.txt")
	if err := os.WriteFile(keep, []byte("mine"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(filepath.Join(content, "about.md")); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(content, "contact.md")); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Build(ctx); err != nil {
		t.Fatalf("second Build() error = %v", err)
	}

	tests := []struct {
		name   string
		exists bool
	}{
		{name: "index.html", exists: true},
		{name: "projects/index.html", exists: true},
		{name: "about/index.html", exists: false},
		{name: "about/notes.txt", exists: true},
		{name: "contact/index.html", exists: false},
		{name: "contact", exists: false},
	}
	for _, tt := range tests {
		_, err := os.Stat(filepath.Join(b.OutputDir, filepath.FromSlash(tt.name)))
		if exists := err == nil; exists != tt.exists {
			t.Errorf("%s exists = %v, want %v", tt.name, exists, tt.exists)
		}
	}

	// the page comes back when its document does
	writeFiles(t, content, map[string]string{"contact.md": "---\ntitle: Contact\n---\nBack.\n"})
	if _, err := b.Build(ctx); err != nil {
		t.Fatalf("third Build() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(b.OutputDir, "contact", "index.html")); err != nil {
		t.Errorf("contact page not rebuilt: %v", err)
	}
}
