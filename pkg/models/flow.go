// Package models defines the flow document model shared by the dashboard client and the flows API.
package models

import (
	"slices"
	"strings"
)

// Node is a single step in a flow. Config is interpreted by the execution engine per node type:
// a document name for the Google Docs types and a prompt template for the LLM type.
type Node struct {
	ID     string   `json:"id"     validate:"required"`
	Type   NodeType `json:"type"   validate:"required,oneof=1 2 3"`
	Config string   `json:"config"`
}

// Flow is a named, ordered collection of nodes. Node order is execution order.
type Flow struct {
	ID     string    `json:"id"               validate:"required"`
	Name   string    `json:"name"`
	Nodes  []Node    `json:"nodes"            validate:"dive"`
	State  FlowState `json:"state,omitempty"`
	Result string    `json:"result,omitempty"`
}

// Clone returns a deep copy of the flow.
func (f Flow) Clone() Flow {
	f.Nodes = slices.Clone(f.Nodes)

	return f
}

// DisplayState returns the state used for display, treating an absent state as not started.
func (f Flow) DisplayState() FlowState {
	if f.State == 0 {
		return FlowStateNotStarted
	}

	return f.State
}

// NodeIndex returns the position of the node with the given id, or -1.
func (f Flow) NodeIndex(nodeID string) int {
	return slices.IndexFunc(f.Nodes, func(n Node) bool { return n.ID == nodeID })
}

// Validate applies the checks performed before a flow is submitted for creation.
// Updates are deliberately not re-validated.
func (f Flow) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return &ValidationError{Field: "name", Err: ErrFlowNameRequired}
	}

	if len(f.Nodes) == 0 {
		return &ValidationError{Field: "nodes", Err: ErrNodesRequired}
	}

	return nil
}
