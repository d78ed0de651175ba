package models

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownNodeType is matched by every UnknownNodeTypeError.
	ErrUnknownNodeType = errors.New("unknown node type")

	// ErrUnknownFlowState is returned when a flow state display name is not recognised.
	ErrUnknownFlowState = errors.New("unknown flow state")

	// ErrFlowNameRequired is returned when a flow is created without a name.
	ErrFlowNameRequired = errors.New("flow name is required")

	// ErrNodesRequired is returned when a flow is created without nodes.
	ErrNodesRequired = errors.New("flow must have at least one node")
)

// UnknownNodeTypeError carries the node type name that could not be mapped.
type UnknownNodeTypeError struct {
	Name string
}

func (e *UnknownNodeTypeError) Error() string {
	return fmt.Sprintf("unknown node type: %s", e.Name)
}

func (e *UnknownNodeTypeError) Is(target error) bool {
	return target == ErrUnknownNodeType
}

// ValidationError reports a flow rejected before it was sent anywhere.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError checks if an error is a client-side flow validation error.
func IsValidationError(err error) bool {
	var target *ValidationError

	return errors.As(err, &target)
}
