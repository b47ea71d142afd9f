package persistence

import (
	"io/fs"
	"path"
	"strings"
)

// documentExt is the file extension every content document carries in a store.
const documentExt = ".md"

// documentPath maps a logical document name to its slash-separated path
// relative to the store root.
func documentPath(name string) (string, bool) {
	if name == "" || strings.HasSuffix(name, "/") {
		return "", false
	}
	p := name + documentExt
	if !fs.ValidPath(p) {
		return "", false
	}
	return p, true
}

// collectionPath validates a collection name; "" is the store root.
func collectionPath(collection string) (string, bool) {
	if collection == "" {
		return ".", true
	}
	if !fs.ValidPath(collection) {
		return "", false
	}
	return collection, true
}

// documentName joins a collection and a file name back into a logical name.
func documentName(collection, file string) string {
	base := strings.TrimSuffix(file, documentExt)
	if collection == "" || collection == "." {
		return base
	}
	return path.Join(collection, base)
}
