// Package persistence provides the storage abstraction for flows.
package persistence

import (
	"context"

	"github.com/dukex/docflow/pkg/models"
)

// Persistence stores flows. Flows are listed in creation order and node order is preserved.
type Persistence interface {
	Flows(ctx context.Context) ([]models.Flow, error)
	FlowByID(ctx context.Context, id string) (*models.Flow, error)
	// CreateFlow stores a new flow and fails with ErrFlowAlreadyExists if the id is taken.
	CreateFlow(ctx context.Context, flow models.Flow) error
	// SaveFlow replaces an existing flow and fails with ErrFlowNotFound if there is none.
	SaveFlow(ctx context.Context, flow models.Flow) error
	DeleteFlow(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
