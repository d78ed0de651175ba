package writedoc

import (
	"context"
	"errors"
	"fmt"

	"github.com/dukex/docflow/pkg/documents"
	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/protocol"
)

var ErrNameRequired = errors.New("document name is required")

// WriteDocumentNode stores its input as a document.
type WriteDocumentNode struct {
	id    string
	name  string
	store documents.Store
}

func NewWriteDocumentNode(id, config string, store documents.Store) (*WriteDocumentNode, error) {
	name := documents.TrimName(config)
	if name == "" {
		return nil, ErrNameRequired
	}

	return &WriteDocumentNode{id: id, name: name, store: store}, nil
}

func (n *WriteDocumentNode) ID() string {
	return n.id
}

func (n *WriteDocumentNode) Type() models.NodeType {
	return models.NodeTypeWriteToGoogleDocs
}

func (n *WriteDocumentNode) Execute(ctx context.Context, input protocol.Input) (string, error) {
	if !input.HasPrevious {
		return "", protocol.ErrNoInput
	}

	doc, err := n.store.Create(ctx, n.name, input.Previous)
	if err != nil {
		return "", fmt.Errorf("failed to write document %q: %w", n.name, err)
	}

	return "Saved in file: " + doc.Name, nil
}
