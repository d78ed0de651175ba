// Package readdoc provides the node that reads a document by name.
package readdoc

import (
	"context"

	"github.com/dukex/docflow/pkg/documents"
	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/protocol"
)

// ReadDocumentNodeFactory creates ReadDocumentNode instances.
type ReadDocumentNodeFactory struct {
	store documents.Store
}

// NewReadDocumentNodeFactory creates a factory whose nodes read from store.
func NewReadDocumentNodeFactory(store documents.Store) *ReadDocumentNodeFactory {
	return &ReadDocumentNodeFactory{store: store}
}

func (f *ReadDocumentNodeFactory) Create(_ context.Context, node models.Node) (protocol.Node, error) {
	return NewReadDocumentNode(node.ID, node.Config, f.store)
}

func (f *ReadDocumentNodeFactory) Type() models.NodeType {
	return models.NodeTypeReadFromGoogleDocs
}

func (f *ReadDocumentNodeFactory) Name() string {
	return models.NodeTypeReadFromGoogleDocs.String()
}

func (f *ReadDocumentNodeFactory) Description() string {
	return "Reads the text of the document with the configured name and passes it to the next node"
}

func (f *ReadDocumentNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Name of the document to read. Surrounding quotes are ignored.",
		"minLength":   1,
		"examples":    []string{"Meeting notes", `"Weekly report"`},
	}
}

var _ protocol.NodeFactory = (*ReadDocumentNodeFactory)(nil)
