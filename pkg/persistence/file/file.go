// Package file provides file-based persistence for flows.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root     string
	flowRepo *FlowRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
// The root may be given as a plain path or a file:// URL.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:     cleanRoot,
		flowRepo: NewFlowRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

// Flows returns every stored flow in creation order.
func (fp *Persistence) Flows(ctx context.Context) ([]models.Flow, error) {
	return fp.flowRepo.GetAll(ctx)
}

// FlowByID returns the flow with the given id.
func (fp *Persistence) FlowByID(ctx context.Context, id string) (*models.Flow, error) {
	return fp.flowRepo.GetByID(ctx, id)
}

// CreateFlow stores a new flow.
func (fp *Persistence) CreateFlow(ctx context.Context, flow models.Flow) error {
	return fp.flowRepo.Create(ctx, flow)
}

// SaveFlow replaces an existing flow.
func (fp *Persistence) SaveFlow(ctx context.Context, flow models.Flow) error {
	return fp.flowRepo.Save(ctx, flow)
}

// DeleteFlow removes a flow.
func (fp *Persistence) DeleteFlow(ctx context.Context, id string) error {
	return fp.flowRepo.Delete(ctx, id)
}

var _ persistence.Persistence = (*Persistence)(nil)
