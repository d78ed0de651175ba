// Package views holds the dashboard controllers: the flow list, the create/import
// composer and the flow editor. Rendering is left to the caller; user-facing side
// effects go through the Notifier, Confirmer, Downloader and Navigator ports.
package views

import (
	"context"
	"errors"

	"github.com/dukex/docflow/pkg/client"
	"github.com/dukex/docflow/pkg/models"
)

// User-facing messages.
const (
	MsgSelectNodeType   = "Please select a node type."
	MsgFlowNameRequired = "Flow name is required!"
	MsgNodesRequired    = "Please add at least one node!"
	MsgConfirmDelete    = "Are you sure you want to delete this flow?"
	MsgImportFailed     = "Failed to import flow. Please ensure the JSON file is correctly formatted."
	msgImported         = "Imported flow %q successfully!"
)

// FlowAPI is the part of the flows API the views depend on. *client.Client implements it.
type FlowAPI interface {
	List(ctx context.Context) ([]models.Flow, error)
	Create(ctx context.Context, flow models.Flow) (*models.Flow, error)
	Update(ctx context.Context, id string, flow models.Flow) error
	Delete(ctx context.Context, id string) error
	Execute(ctx context.Context, id string) (client.ExecutionResult, error)
}

// Notifier shows a blocking message to the user.
type Notifier interface {
	Alert(message string)
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// Downloader hands a generated file to the user.
type Downloader interface {
	Download(fileName string, data []byte) error
}

// Navigator switches between the list view and the edit view.
type Navigator interface {
	ToList()
	ToEdit(id string)
}

var _ FlowAPI = (*client.Client)(nil)

// validationMessage maps a create-time validation failure to its alert text.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, models.ErrFlowNameRequired):
		return MsgFlowNameRequired
	case errors.Is(err, models.ErrNodesRequired):
		return MsgNodesRequired
	default:
		return err.Error()
	}
}
