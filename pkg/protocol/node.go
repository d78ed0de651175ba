// Package protocol defines the interfaces and contracts for pluggable nodes.
package protocol

import (
	"context"
	"errors"

	"github.com/dukex/docflow/pkg/models"
)

// ErrNoInput is returned by nodes that consume the previous node's output when there is none.
var ErrNoInput = errors.New("node requires the output of a previous node")

// Input is what a node receives when it runs.
type Input struct {
	FlowID string
	// Previous is the output of the node that ran before this one. HasPrevious is false
	// for the first node of a flow.
	Previous    string
	HasPrevious bool
}

// NewInput returns the input for a node following one that produced previous.
func NewInput(flowID, previous string) Input {
	return Input{FlowID: flowID, Previous: previous, HasPrevious: true}
}

// Node is a configured, runnable flow step.
type Node interface {
	ID() string
	Type() models.NodeType
	// Execute runs the step and returns its text output.
	Execute(ctx context.Context, input Input) (string, error)
}

// NodeFactory creates node instances and provides metadata about the node type.
type NodeFactory interface {
	// Create creates a new node instance from its stored definition
	Create(ctx context.Context, node models.Node) (Node, error)

	// Type returns the node type this factory builds
	Type() models.NodeType

	// Name returns the human-readable name for this node type
	Name() string

	// Description returns a description of what this node does
	Description() string

	// Schema returns the JSON schema for the node's config string
	Schema() map[string]any
}
