package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dfryer1193/portfolio/site/domain"
)

var _ domain.WritableContentStore = (*FileSystemStore)(nil)

// FileSystemStore keeps content documents as .md files under a root directory.
type FileSystemStore struct {
	root string
}

func NewFileSystemStore(root string) *FileSystemStore {
	return &FileSystemStore{root: root}
}

func (s *FileSystemStore) Root() string {
	return s.root
}

func (s *FileSystemStore) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel, ok := documentPath(name)
	if !ok {
		return nil, &domain.NotFoundError{Name: name, Err: fs.ErrInvalid}
	}

	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &domain.NotFoundError{Name: name, Err: err}
		}
		return nil, fmt.Errorf("failed to read content document %q: %w", name, err)
	}
	return data, nil
}

func (s *FileSystemStore) List(ctx context.Context, collection string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel, ok := collectionPath(collection)
	if !ok {
		return nil, fmt.Errorf("invalid collection %q", collection)
	}

	entries, err := os.ReadDir(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list collection %q: %w", collection, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || !strings.HasSuffix(e.Name(), documentExt) {
			continue
		}
		names = append(names, documentName(collection, e.Name()))
	}
	sort.Strings(names)
	return names, nil
}

// Write replaces a document atomically: readers see the old or the new file,
// never a partial one.
func (s *FileSystemStore) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rel, ok := documentPath(name)
	if !ok {
		return fmt.Errorf("invalid document name %q", name)
	}

	target := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %q: %w", name, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".tmp-*"+documentExt)
	if err != nil {
		return fmt.Errorf("failed to create temp file for %q: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file for %q: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to chmod %q: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to move %q into place: %w", name, err)
	}
	return nil
}

// Delete removes a document. Deleting a missing document is not an error.
func (s *FileSystemStore) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rel, ok := documentPath(name)
	if !ok {
		return fmt.Errorf("invalid document name %q", name)
	}

	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %q: %w", name, err)
	}
	return nil
}
