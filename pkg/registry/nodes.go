package registry

import (
	"github.com/dukex/docflow/pkg/documents"
	"github.com/dukex/docflow/pkg/llm"
	"github.com/dukex/docflow/pkg/nodes/prompt"
	"github.com/dukex/docflow/pkg/nodes/readdoc"
	"github.com/dukex/docflow/pkg/nodes/writedoc"
)

// RegisterDefaultNodes registers all built-in node factories with the registry.
func (r *Registry) RegisterDefaultNodes(docs documents.Store, model llm.Model) {
	r.RegisterNode(readdoc.NewReadDocumentNodeFactory(docs))
	r.RegisterNode(writedoc.NewWriteDocumentNodeFactory(docs))
	r.RegisterNode(prompt.NewPromptNodeFactory(model))
}
