package domain

import (
	"fmt"
	"strings"
)

// NotFoundError reports a document that does not exist in the content store.
type NotFoundError struct {
	Name string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("content document %q not found", e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// MalformedContentError reports a document whose front matter is absent or
// cannot be parsed into key/value pairs.
type MalformedContentError struct {
	Name   string
	Reason string
	Err    error
}

func (e *MalformedContentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("content document %q is malformed: %s: %v", e.Name, e.Reason, e.Err)
	}
	return fmt.Sprintf("content document %q is malformed: %s", e.Name, e.Reason)
}

func (e *MalformedContentError) Unwrap() error {
	return e.Err
}

// FieldError describes one metadata field that failed projection.
type FieldError struct {
	Field  string
	Reason string
}

// ValidationError reports required view-model fields that are missing or
// unusable. Fields keep the extractor's field order.
type ValidationError struct {
	Document string
	Fields   []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Reason)
	}
	return fmt.Sprintf("content document %q failed validation: %s", e.Document, strings.Join(parts, "; "))
}

// Has reports whether field is among the failed fields.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}
