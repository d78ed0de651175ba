package prompt

import (
	"context"
	"fmt"

	"github.com/dukex/docflow/pkg/llm"
	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/protocol"
	"github.com/dukex/docflow/pkg/template"
)

// TextVariable is the template variable bound to the previous node's output.
const TextVariable = "text"

// PromptNode renders its template and asks the model.
type PromptNode struct {
	id       string
	template string
	model    llm.Model
}

// NewPromptNode checks that the template only refers to TextVariable.
func NewPromptNode(id, tmpl string, model llm.Model) (*PromptNode, error) {
	names, err := template.Variables(tmpl)
	if err != nil {
		return nil, err
	}

	for _, name := range names {
		if name != TextVariable {
			return nil, fmt.Errorf("%w: %q", template.ErrMissingVariable, name)
		}
	}

	return &PromptNode{id: id, template: tmpl, model: model}, nil
}

func (n *PromptNode) ID() string {
	return n.id
}

func (n *PromptNode) Type() models.NodeType {
	return models.NodeTypePromptLLM
}

func (n *PromptNode) Execute(ctx context.Context, input protocol.Input) (string, error) {
	if !input.HasPrevious {
		return "", protocol.ErrNoInput
	}

	prompt, err := template.Render(n.template, map[string]string{TextVariable: input.Previous})
	if err != nil {
		return "", err
	}

	answer, err := n.model.Predict(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("prediction failed: %w", err)
	}

	return answer, nil
}
