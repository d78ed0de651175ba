// Package services provides the flow operations behind the HTTP API and the scheduler.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/docflow/pkg/persistence"
)

var (
	// ErrFlowNotFound is returned when a flow is not found (404 Not Found).
	ErrFlowNotFound = persistence.ErrFlowNotFound

	// ErrFlowAlreadyExists is returned when creating a flow whose id is taken (409 Conflict).
	ErrFlowAlreadyExists = persistence.ErrFlowAlreadyExists

	// Validation Errors (400 Bad Request).
	ErrInvalidRequest = errors.New("invalid request")
	ErrFlowIDRequired = errors.New("flow id is required")
	ErrFlowNil        = errors.New("flow cannot be nil")

	// ErrExecutionFailed is returned when a node of the flow fails (500).
	ErrExecutionFailed = errors.New("failed to execute flow")
)

// ExecutionError describes a failed run.
type ExecutionError struct {
	FlowID string
	NodeID string
	Err    error
}

func (e *ExecutionError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("failed to execute flow %s at node %s: %v", e.FlowID, e.NodeID, e.Err)
	}

	return fmt.Sprintf("failed to execute flow %s: %v", e.FlowID, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

func (e *ExecutionError) Is(target error) bool {
	return target == ErrExecutionFailed
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrFlowIDRequired) ||
		errors.Is(err, ErrFlowNil)
}

// IsNotFound checks if an error should return HTTP 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrFlowNotFound)
}

// IsConflictError checks if an error should return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrFlowAlreadyExists)
}

// IsExecutionError checks if an error comes from a failed run.
func IsExecutionError(err error) bool {
	return errors.Is(err, ErrExecutionFailed)
}
