package application

import (
	"context"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/dfryer1193/portfolio/site/domain"
)

// memStore is an in-memory WritableContentStore.
type memStore struct {
	mu    sync.Mutex
	docs  map[string][]byte
	reads int
}

func newMemStore(docs map[string]string) *memStore {
	s := &memStore{docs: make(map[string][]byte)}
	for k, v := range docs {
		s.docs[k] = []byte(v)
	}
	return s
}

func (s *memStore) Read(ctx context.Context, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	data, ok := s.docs[name]
	if !ok {
		return nil, &domain.NotFoundError{Name: name}
	}
	return append([]byte(nil), data...), nil
}

func (s *memStore) List(ctx context.Context, collection string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for name := range s.docs {
		if path.Dir(name) == collection && !strings.HasSuffix(name, "/") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *memStore) Write(ctx context.Context, name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[name] = append([]byte(nil), data...)
	return nil
}

func (s *memStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, name)
	return nil
}

func (s *memStore) get(name string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.docs[name]
	return string(data), ok
}
