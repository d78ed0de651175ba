// Package prompt provides the node that sends a prompt built from the previous output to an LLM.
package prompt

import (
	"context"

	"github.com/dukex/docflow/pkg/llm"
	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/protocol"
)

// PromptNodeFactory creates PromptNode instances.
type PromptNodeFactory struct {
	model llm.Model
}

func NewPromptNodeFactory(model llm.Model) *PromptNodeFactory {
	return &PromptNodeFactory{model: model}
}

func (f *PromptNodeFactory) Create(_ context.Context, node models.Node) (protocol.Node, error) {
	return NewPromptNode(node.ID, node.Config, f.model)
}

func (f *PromptNodeFactory) Type() models.NodeType {
	return models.NodeTypePromptLLM
}

func (f *PromptNodeFactory) Name() string {
	return models.NodeTypePromptLLM.String()
}

func (f *PromptNodeFactory) Description() string {
	return "Fills the prompt template with the previous node's output and returns the model's answer"
}

func (f *PromptNodeFactory) Schema() map[string]any {
	return map[string]any{
		"type":        "string",
		"description": "Prompt template. {" + TextVariable + "} is replaced with the previous output; write {{ and }} for literal braces.",
		"examples": []string{
			"Summarize the following text:\n{text}",
			"Translate to French: {text}",
		},
	}
}

var _ protocol.NodeFactory = (*PromptNodeFactory)(nil)
