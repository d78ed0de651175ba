// Package documents provides the document storage used by the read and write nodes.
package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidName      = errors.New("invalid document name")
)

// Document identifies a stored document.
type Document struct {
	ID   string
	Name string
}

// Store finds, reads and creates documents by name.
type Store interface {
	// FindByName returns the first document with exactly the given name.
	FindByName(ctx context.Context, name string) (*Document, error)
	Read(ctx context.Context, id string) (string, error)
	// Create stores a document and returns it. A document with the same name is replaced.
	Create(ctx context.Context, name, content string) (*Document, error)
}

// NotFoundError reports a document name that has no match.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("document %q not found", e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrDocumentNotFound
}

// IsNotFound reports whether err is a missing document.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDocumentNotFound)
}

// TrimName strips surrounding whitespace and quotes from a configured document name.
func TrimName(config string) string {
	return strings.Trim(strings.TrimSpace(config), `"'`)
}
