package persistence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/dfryer1193/portfolio/site/domain"
	"google.golang.org/api/iterator"
)

var _ domain.WritableContentStore = (*GCSStore)(nil)

// GCSStore keeps content documents as objects under a prefix of a Cloud Storage bucket.
type GCSStore struct {
	bucket *storage.BucketHandle
	prefix string
}

func NewGCSStore(bucket *storage.BucketHandle, prefix string) *GCSStore {
	return &GCSStore{
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

func (s *GCSStore) objectName(rel string) string {
	if s.prefix == "" {
		return rel
	}
	return path.Join(s.prefix, rel)
}

func (s *GCSStore) Read(ctx context.Context, name string) ([]byte, error) {
	rel, ok := documentPath(name)
	if !ok {
		return nil, &domain.NotFoundError{Name: name}
	}

	r, err := s.bucket.Object(s.objectName(rel)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, &domain.NotFoundError{Name: name, Err: err}
		}
		return nil, fmt.Errorf("gcs: failed to open %q: %w", name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gcs: failed to read %q: %w", name, err)
	}
	return data, nil
}

func (s *GCSStore) List(ctx context.Context, collection string) ([]string, error) {
	rel, ok := collectionPath(collection)
	if !ok {
		return nil, fmt.Errorf("invalid collection %q", collection)
	}

	prefix := s.objectName(rel)
	if rel == "." {
		prefix = s.prefix
	}
	if prefix != "" {
		prefix += "/"
	}

	it := s.bucket.Objects(ctx, &storage.Query{Prefix: prefix, Delimiter: "/"})
	var names []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gcs: failed to list collection %q: %w", collection, err)
		}
		// synthetic directory entries only carry Prefix
		if attrs.Name == "" {
			continue
		}
		file := strings.TrimPrefix(attrs.Name, prefix)
		if strings.Contains(file, "/") || !strings.HasSuffix(file, documentExt) {
			continue
		}
		names = append(names, documentName(collection, file))
	}
	sort.Strings(names)
	return names, nil
}

func (s *GCSStore) Write(ctx context.Context, name string, data []byte) error {
	rel, ok := documentPath(name)
	if !ok {
		return fmt.Errorf("invalid document name %q", name)
	}

	w := s.bucket.Object(s.objectName(rel)).NewWriter(ctx)
	w.ContentType = "text/markdown; charset=utf-8"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs: failed to write %q: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs: failed to finalize %q: %w", name, err)
	}
	return nil
}

func (s *GCSStore) Delete(ctx context.Context, name string) error {
	rel, ok := documentPath(name)
	if !ok {
		return fmt.Errorf("invalid document name %q", name)
	}

	err := s.bucket.Object(s.objectName(rel)).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("gcs: failed to delete %q: %w", name, err)
	}
	return nil
}
