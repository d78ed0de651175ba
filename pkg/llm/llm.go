// Package llm provides the language model used by prompt nodes.
package llm

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotConfigured   = errors.New("llm is not configured")
	ErrEmptyCompletion = errors.New("llm returned no completion")
	ErrUnavailable     = errors.New("llm is unavailable")
)

// Model turns a prompt into a completion.
type Model interface {
	Predict(ctx context.Context, prompt string) (string, error)
}

// APIError is a non-2xx answer from the completion endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("llm request failed with status %d", e.StatusCode)
	}

	return fmt.Sprintf("llm request failed with status %d: %s", e.StatusCode, e.Message)
}

// retryable reports whether the error says something about the health of the provider.
func (e *APIError) retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == 429
}

// Unconfigured is the model used when no provider is set up. Every prediction fails.
type Unconfigured struct{}

func (Unconfigured) Predict(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

// Func adapts a function to the Model interface.
type Func func(ctx context.Context, prompt string) (string, error)

func (f Func) Predict(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
