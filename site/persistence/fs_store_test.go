package persistence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dfryer1193/portfolio/site/domain"
	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func TestFileSystemStore_Read(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "homepage.md", "---\ntitle: Hello\n---\nbody")
	writeFile(t, root, "projects/ledger.md", "---\ntitle: Ledger\n---\n")

	store := NewFileSystemStore(root)
	ctx := context.Background()

	data, err := store.Read(ctx, "homepage")
	if err != nil {
		t.Fatalf("Read(homepage) error = %v", err)
	}
	if string(data) != "---\ntitle: Hello\n---\nbody" {
		t.Errorf("Read(homepage) = %q", data)
	}

	if _, err := store.Read(ctx, "projects/ledger"); err != nil {
		t.Errorf("Read(projects/ledger) error = %v", err)
	}
}

func TestFileSystemStore_ReadNotFound(t *testing.T) {
	store := NewFileSystemStore(t.TempDir())

	tests := []string{"missing", "../etc/passwd", "/abs", "", "dir/", "a/../b"}
	for _, name := range tests {
		t.Run(name, func(t *testing.T) {
			data, err := store.Read(context.Background(), name)
			var nf *domain.NotFoundError
			if !errors.As(err, &nf) {
				t.Fatalf("Read(%q) error = %v, want NotFoundError", name, err)
			}
			if nf.Name != name {
				t.Errorf("NotFoundError.Name = %q, want %q", nf.Name, name)
			}
			if data != nil {
				t.Errorf("Read(%q) returned data alongside error", name)
			}
		})
	}
}

func TestFileSystemStore_List(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "projects/zeta.md", "")
	writeFile(t, root, "projects/alpha.md", "")
	writeFile(t, root, "projects/notes.txt", "")
	writeFile(t, root, "projects/nested/deep.md", "")
	writeFile(t, root, "homepage.md", "")

	store := NewFileSystemStore(root)

	got, err := store.List(context.Background(), "projects")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if diff := cmp.Diff([]string{"projects/alpha", "projects/zeta"}, got); diff != "" {
		t.Errorf("List(projects) mismatch (-want +got):\n%s", diff)
	}

	got, err = store.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List(root) error = %v", err)
	}
	if diff := cmp.Diff([]string{"homepage"}, got); diff != "" {
		t.Errorf("List(root) mismatch (-want +got):\n%s", diff)
	}

	got, err = store.List(context.Background(), "missing")
	if err != nil || len(got) != 0 {
		t.Errorf("List(missing) = %v, %v; want empty, nil", got, err)
	}
}

func TestFileSystemStore_WriteAndDelete(t *testing.T) {
	root := t.TempDir()
	store := NewFileSystemStore(root)
	ctx := context.Background()

	if err := store.Write(ctx, "projects/new", []byte("v1")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := store.Write(ctx, "projects/new", []byte("v2")); err != nil {
		t.Fatalf("Write() overwrite error = %v", err)
	}

	data, err := store.Read(ctx, "projects/new")
	if err != nil || string(data) != "v2" {
		t.Fatalf("Read after write = %q, %v", data, err)
	}

	entries, _ := os.ReadDir(filepath.Join(root, "projects"))
	if len(entries) != 1 {
		t.Errorf("expected only the document in projects/, found %d entries", len(entries))
	}

	if err := store.Delete(ctx, "projects/new"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := store.Delete(ctx, "projects/new"); err != nil {
		t.Errorf("Delete() of missing document error = %v", err)
	}

	var nf *domain.NotFoundError
	if _, err := store.Read(ctx, "projects/new"); !errors.As(err, &nf) {
		t.Errorf("Read after delete error = %v, want NotFoundError", err)
	}

	if err := store.Write(ctx, "../escape", []byte("x")); err == nil {
		t.Error("Write should reject names outside the store")
	}
}

func TestFileSystemStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewFileSystemStore(t.TempDir()).Read(ctx, "homepage"); !errors.Is(err, context.Canceled) {
		t.Errorf("Read() error = %v, want context.Canceled", err)
	}
}
