// Package file keeps documents as plain text files in a directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dukex/docflow/pkg/documents"
)

// extensions are tried in order when looking a document up by name.
var extensions = []string{".txt", ".md", ""}

// Store is a documents.Store rooted at a directory. Names are paths relative to the root,
// "/out.docx" and "out.docx" being the same document. A document's id is its file path
// relative to the root.
type Store struct {
	root string
}

// NewStore creates the root directory if needed. root may be a file:// URL.
func NewStore(root string) (*Store, error) {
	root = strings.TrimPrefix(root, "file://")
	if root == "" {
		return nil, errors.New("documents root is required")
	}

	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create documents directory: %w", err)
	}

	return &Store{root: root}, nil
}

// Root returns the directory holding the documents.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) FindByName(_ context.Context, name string) (*documents.Document, error) {
	local, err := localPath(name)
	if err != nil {
		return nil, err
	}

	for _, ext := range extensions {
		fileName := local + ext

		info, err := os.Stat(filepath.Join(s.root, fileName))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to stat document %q: %w", name, err)
		}

		if info.Mode().IsRegular() {
			return &documents.Document{ID: fileName, Name: name}, nil
		}
	}

	return nil, &documents.NotFoundError{Name: name}
}

func (s *Store) Read(_ context.Context, id string) (string, error) {
	local, err := localPath(id)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(filepath.Join(s.root, local))
	if errors.Is(err, fs.ErrNotExist) {
		return "", &documents.NotFoundError{Name: id}
	}

	if err != nil {
		return "", fmt.Errorf("failed to read document %q: %w", id, err)
	}

	return string(data), nil
}

// Create writes content to name, adding ".txt" when name has no extension. Missing
// directories are created.
func (s *Store) Create(_ context.Context, name, content string) (*documents.Document, error) {
	fileName, err := localPath(name)
	if err != nil {
		return nil, err
	}

	if filepath.Ext(fileName) == "" {
		fileName += extensions[0]
	}

	path := filepath.Join(s.root, fileName)
	tmp := path + ".tmp"

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create directory for document %q: %w", name, err)
	}

	if err := os.WriteFile(tmp, []byte(content), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write document %q: %w", name, err)
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)

		return nil, fmt.Errorf("failed to save document %q: %w", name, err)
	}

	return &documents.Document{ID: fileName, Name: name}, nil
}

// localPath resolves name against the root. A leading separator is dropped; anything
// that would leave the root is rejected.
func localPath(name string) (string, error) {
	if strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("%w: %q", documents.ErrInvalidName, name)
	}

	local := filepath.Clean(filepath.FromSlash(name))
	local = strings.TrimLeft(local, string(filepath.Separator))

	if local == "" || local == "." || !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %q", documents.ErrInvalidName, name)
	}

	return local, nil
}

var _ documents.Store = (*Store)(nil)
