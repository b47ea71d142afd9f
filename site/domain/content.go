package domain

import (
	"context"
)

// ContentDocument is a single front-matter document read from a ContentStore.
// Metadata holds the parsed header, Body the markdown that follows it.
type ContentDocument struct {
	Name     string
	Metadata map[string]any
	Body     string
}

// Lookup returns the raw metadata value for key.
func (d *ContentDocument) Lookup(key string) (any, bool) {
	if d == nil || d.Metadata == nil {
		return nil, false
	}
	v, ok := d.Metadata[key]
	return v, ok
}

// ContentStore is the read side of the durable directory of content documents.
// Names are logical, slash separated and carry no extension ("homepage",
// "projects/ledger").
type ContentStore interface {
	// Read returns the raw bytes of a document, or a *NotFoundError.
	Read(ctx context.Context, name string) ([]byte, error)

	// List returns the names of the documents directly inside collection,
	// sorted. A missing collection is empty, not an error.
	List(ctx context.Context, collection string) ([]string, error)
}

// WritableContentStore is implemented by stores the CMS sync can mirror into.
type WritableContentStore interface {
	ContentStore
	Write(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error
}
