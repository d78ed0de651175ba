package models

import (
	"fmt"
	"strings"
)

// NodeType identifies what a node does. The zero value means "not selected yet"
// and is never a valid persisted value.
type NodeType int

const (
	NodeTypeReadFromGoogleDocs NodeType = iota + 1
	NodeTypeWriteToGoogleDocs
	NodeTypePromptLLM

	nodeTypeEnd
)

// FlowState is the execution lifecycle state of a flow.
type FlowState int

const (
	FlowStateNotStarted FlowState = iota + 1
	FlowStateInProgress
	FlowStateCompletedSuccessfully
	FlowStateCompletedWithErrors

	flowStateEnd
)

// UnsetNodeTypeName is displayed for a node whose type has not been chosen.
const UnsetNodeTypeName = "Idle"

var nodeTypeNames = [...]string{
	NodeTypeReadFromGoogleDocs: "Read from Google Docs",
	NodeTypeWriteToGoogleDocs:  "Write to Google Docs",
	NodeTypePromptLLM:          "Prompt LLM",
}

var flowStateNames = [...]string{
	FlowStateNotStarted:            "Not Started",
	FlowStateInProgress:            "In Progress",
	FlowStateCompletedSuccessfully: "Completed Successfully",
	FlowStateCompletedWithErrors:   "Completed with Errors",
}

// Adding an enum member without a display name fails to compile here.
var (
	_ = [1]struct{}{}[len(nodeTypeNames)-int(nodeTypeEnd)]
	_ = [1]struct{}{}[len(flowStateNames)-int(flowStateEnd)]
)

var (
	nodeTypesByName  = make(map[string]NodeType, len(nodeTypeNames))
	flowStatesByName = make(map[string]FlowState, len(flowStateNames))
)

func init() {
	for _, t := range NodeTypes() {
		name := nodeTypeNames[t]
		if name == "" {
			panic(fmt.Sprintf("models: node type %d has no display name", int(t)))
		}

		nodeTypesByName[name] = t
	}

	for _, s := range FlowStates() {
		name := flowStateNames[s]
		if name == "" {
			panic(fmt.Sprintf("models: flow state %d has no display name", int(s)))
		}

		flowStatesByName[name] = s
	}
}

// NodeTypes returns every defined node type in declaration order.
func NodeTypes() []NodeType {
	types := make([]NodeType, 0, nodeTypeEnd-1)
	for t := NodeTypeReadFromGoogleDocs; t < nodeTypeEnd; t++ {
		types = append(types, t)
	}

	return types
}

// FlowStates returns every defined flow state in declaration order.
func FlowStates() []FlowState {
	states := make([]FlowState, 0, flowStateEnd-1)
	for s := FlowStateNotStarted; s < flowStateEnd; s++ {
		states = append(states, s)
	}

	return states
}

// Valid reports whether t is one of the defined node types.
func (t NodeType) Valid() bool {
	return t >= NodeTypeReadFromGoogleDocs && t < nodeTypeEnd
}

// String returns the display name of the node type.
func (t NodeType) String() string {
	if !t.Valid() {
		return UnsetNodeTypeName
	}

	return nodeTypeNames[t]
}

// Valid reports whether s is one of the defined flow states.
func (s FlowState) Valid() bool {
	return s >= FlowStateNotStarted && s < flowStateEnd
}

// String returns the display name of the state; an absent state reads as not started.
func (s FlowState) String() string {
	if !s.Valid() {
		return flowStateNames[FlowStateNotStarted]
	}

	return flowStateNames[s]
}

// ParseNodeType maps a display name back to its node type. The match is exact.
func ParseNodeType(name string) (NodeType, error) {
	t, ok := nodeTypesByName[name]
	if !ok {
		return 0, &UnknownNodeTypeError{Name: name}
	}

	return t, nil
}

// ParseFlowState maps a display name back to its flow state, ignoring case.
func ParseFlowState(name string) (FlowState, error) {
	for display, s := range flowStatesByName {
		if strings.EqualFold(display, name) {
			return s, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownFlowState, name)
}
