// Package writedoc provides the node that saves the previous output as a document.
package writedoc

import (
	"context"

	"github.com/dukex/docflow/pkg/documents"
	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/protocol"
)

// WriteDocumentNodeFactory creates WriteDocumentNode instances.
type WriteDocumentNodeFactory struct {
	store documents.Store
}

func NewWriteDocumentNodeFactory(store documents.Store) *WriteDocumentNodeFactory {
	return &WriteDocumentNodeFactory{store: store}
}

func (f *WriteDocumentNodeFactory) Create(_ context.Context, node models.Node) (protocol.Node, error) {
	return NewWriteDocumentNode(node.ID, node.Config, f.store)
}

func (f *WriteDocumentNodeFactory) Type() models.NodeType {
	return models.NodeTypeWriteToGoogleDocs
}

func (f *WriteDocumentNodeFactory) Name() string {
	return models.NodeTypeWriteToGoogleDocs.String()
}

func (f *WriteDocumentNodeFactory) Description() string {
	return "Saves the output of the previous node as a document with the configured name"
}

func (f *WriteDocumentNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Name of the document to write. Surrounding quotes are ignored.",
		"minLength":   1,
		"examples":    []string{"Summary", `"Daily digest"`},
	}
}

var _ protocol.NodeFactory = (*WriteDocumentNodeFactory)(nil)
