package readdoc

import (
	"context"
	"errors"
	"fmt"

	"github.com/dukex/docflow/pkg/documents"
	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/protocol"
)

var ErrNameRequired = errors.New("document name is required")

// ReadDocumentNode outputs the content of a named document.
type ReadDocumentNode struct {
	id    string
	name  string
	store documents.Store
}

func NewReadDocumentNode(id, config string, store documents.Store) (*ReadDocumentNode, error) {
	name := documents.TrimName(config)
	if name == "" {
		return nil, ErrNameRequired
	}

	return &ReadDocumentNode{id: id, name: name, store: store}, nil
}

func (n *ReadDocumentNode) ID() string {
	return n.id
}

func (n *ReadDocumentNode) Type() models.NodeType {
	return models.NodeTypeReadFromGoogleDocs
}

// DocumentName returns the configured name with quotes removed.
func (n *ReadDocumentNode) DocumentName() string {
	return n.name
}

// Execute ignores its input; reading always starts from the stored document.
func (n *ReadDocumentNode) Execute(ctx context.Context, _ protocol.Input) (string, error) {
	doc, err := n.store.FindByName(ctx, n.name)
	if err != nil {
		return "", fmt.Errorf("failed to find document %q: %w", n.name, err)
	}

	content, err := n.store.Read(ctx, doc.ID)
	if err != nil {
		return "", fmt.Errorf("failed to read document %q: %w", n.name, err)
	}

	return content, nil
}
