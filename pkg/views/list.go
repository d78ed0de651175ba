package views

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dukex/docflow/pkg/client"
	"github.com/dukex/docflow/pkg/interchange"
	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/store"
)

// Ports groups the user-facing side effects available to the views.
type Ports struct {
	Notifier   Notifier
	Confirmer  Confirmer
	Downloader Downloader
	Navigator  Navigator
}

// ListView lists flows and runs, deletes, exports or opens them.
type ListView struct {
	api    FlowAPI
	flows  *store.Store
	ports  Ports
	logger *slog.Logger

	mu      sync.Mutex
	loading bool
	loadErr error
}

// NewListView creates a list view backed by api and flows.
func NewListView(api FlowAPI, flows *store.Store, ports Ports, logger *slog.Logger) *ListView {
	return &ListView{
		api:    api,
		flows:  flows,
		ports:  ports,
		logger: logger.With("view", "list"),
	}
}

// Status reports whether the initial load is pending and the error it ended with, if any.
func (v *ListView) Status() (loading bool, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.loading, v.loadErr
}

// Load fetches every flow into the store. On failure the store is left untouched and
// the error is kept for inline display.
func (v *ListView) Load(ctx context.Context) error {
	v.mu.Lock()
	v.loading = true
	v.loadErr = nil
	v.mu.Unlock()

	flows, err := v.api.List(ctx)

	v.mu.Lock()
	v.loading = false
	v.loadErr = err
	v.mu.Unlock()

	if err != nil {
		v.logger.ErrorContext(ctx, "Error fetching flows", "error", err)

		return err
	}

	v.flows.SetAll(flows)

	return nil
}

// Run executes a flow. The stored state moves to in progress before the call and to a
// terminal state once it settles; the execution payload does not affect the outcome.
func (v *ListView) Run(ctx context.Context, id string) (client.ExecutionResult, error) {
	v.flows.PatchState(id, models.FlowStateInProgress)

	result, err := v.api.Execute(ctx, id)
	if err != nil {
		v.logger.ErrorContext(ctx, "Error running flow", "flow_id", id, "error", err)
		v.flows.PatchState(id, models.FlowStateCompletedWithErrors)

		return nil, err
	}

	v.logger.InfoContext(ctx, "Flow executed successfully", "flow_id", id)
	v.flows.PatchState(id, models.FlowStateCompletedSuccessfully)

	return result, nil
}

// Delete removes a flow after the user confirms. The store is changed only once the
// server acknowledges the deletion. It reports whether the flow was deleted.
func (v *ListView) Delete(ctx context.Context, id string) (bool, error) {
	if !v.ports.Confirmer.Confirm(MsgConfirmDelete) {
		return false, nil
	}

	err := v.api.Delete(ctx, id)
	if err != nil {
		v.logger.ErrorContext(ctx, "Error deleting flow", "flow_id", id, "error", err)
		v.ports.Notifier.Alert(fmt.Sprintf("Failed to delete flow: %v", err))

		return false, err
	}

	v.flows.Remove(id)

	return true, nil
}

// Export downloads the interchange document of a stored flow.
func (v *ListView) Export(id string) error {
	flow, _, found := v.flows.Get(id)
	if !found {
		return fmt.Errorf("%w: %s", ErrFlowNotFound, id)
	}

	data, fileName, err := interchange.Export(flow)
	if err != nil {
		return err
	}

	return v.ports.Downloader.Download(fileName, data)
}

// Edit opens the edit view for a flow.
func (v *ListView) Edit(id string) {
	v.ports.Navigator.ToEdit(id)
}
