package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/docflow/pkg/eventbus"
	"github.com/dukex/docflow/pkg/events"
	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/persistence"
	"github.com/dukex/docflow/pkg/workflow"
	"github.com/google/uuid"
)

// ExecutionSucceededMessage is the message returned with a successful run.
const ExecutionSucceededMessage = "Flow executed successfully."

// FlowExecutor runs a flow. *workflow.Executor implements it.
type FlowExecutor interface {
	Execute(ctx context.Context, flow models.Flow) (workflow.Result, error)
}

// ExecutionResponse is returned by a successful run.
type ExecutionResponse struct {
	Message string          `json:"message"`
	Result  workflow.Result `json:"result"`
}

type Flow struct {
	persistence persistence.Persistence
	executor    FlowExecutor
	publisher   eventbus.EventPublisher
	logger      *slog.Logger
}

// NewFlow creates a new flow service. publisher may be nil.
func NewFlow(
	persistence persistence.Persistence,
	executor FlowExecutor,
	publisher eventbus.EventPublisher,
	logger *slog.Logger,
) *Flow {
	return &Flow{
		persistence: persistence,
		executor:    executor,
		publisher:   publisher,
		logger:      logger.With("module", "flow_service"),
	}
}

// HealthCheck checks the health of the persistence layer.
func (f *Flow) HealthCheck(ctx context.Context) (string, bool) {
	if f.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := f.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// List returns every flow in creation order.
func (f *Flow) List(ctx context.Context) ([]models.Flow, error) {
	flows, err := f.persistence.Flows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list flows: %w", err)
	}

	if flows == nil {
		flows = []models.Flow{}
	}

	return flows, nil
}

func (f *Flow) FetchByID(ctx context.Context, id string) (*models.Flow, error) {
	flow, err := f.persistence.FlowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return flow, nil
}

// Create stores a new flow with the id chosen by the caller. The state always starts as
// not started and any result sent by the caller is dropped.
func (f *Flow) Create(ctx context.Context, flow *models.Flow) (*models.Flow, error) {
	if flow == nil {
		return nil, ErrFlowNil
	}

	if flow.ID == "" {
		return nil, ErrFlowIDRequired
	}

	created := flow.Clone()
	created.State = models.FlowStateNotStarted
	created.Result = ""

	if created.Nodes == nil {
		created.Nodes = []models.Node{}
	}

	if err := f.persistence.CreateFlow(ctx, created); err != nil {
		return nil, err
	}

	f.publish(ctx, created.ID, events.FlowCreated{
		BaseEvent: events.NewBaseEvent(events.FlowCreatedEvent, created.ID),
		Name:      created.Name,
		NodeCount: len(created.Nodes),
	})

	return &created, nil
}

// Update replaces the name and nodes of flow id. The flow keeps its id and starts over as
// not started.
func (f *Flow) Update(ctx context.Context, id string, flow *models.Flow) (*models.Flow, error) {
	if flow == nil {
		return nil, ErrFlowNil
	}

	existing, err := f.persistence.FlowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := flow.Clone()
	updated.ID = existing.ID
	updated.State = models.FlowStateNotStarted
	updated.Result = ""

	if updated.Nodes == nil {
		updated.Nodes = []models.Node{}
	}

	if err := f.persistence.SaveFlow(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update flow: %w", err)
	}

	f.publish(ctx, id, events.FlowUpdated{
		BaseEvent: events.NewBaseEvent(events.FlowUpdatedEvent, id),
		Name:      updated.Name,
		NodeCount: len(updated.Nodes),
	})

	return &updated, nil
}

func (f *Flow) Delete(ctx context.Context, id string) error {
	if err := f.persistence.DeleteFlow(ctx, id); err != nil {
		return err
	}

	f.publish(ctx, id, events.FlowDeleted{
		BaseEvent: events.NewBaseEvent(events.FlowDeletedEvent, id),
	})

	return nil
}

// Execute runs flow id and records its state: in progress while running, then completed
// successfully with the JSON result, or completed with errors.
func (f *Flow) Execute(ctx context.Context, id string) (*ExecutionResponse, error) {
	flow, err := f.persistence.FlowByID(ctx, id)
	if err != nil {
		return nil, err
	}

	executionID := uuid.NewString()
	logger := f.logger.With("flow_id", id, "execution_id", executionID)

	flow.State = models.FlowStateInProgress
	if err := f.persistence.SaveFlow(ctx, *flow); err != nil {
		return nil, fmt.Errorf("failed to mark flow in progress: %w", err)
	}

	f.publish(ctx, id, events.FlowExecutionStarted{
		BaseEvent:   events.NewBaseEvent(events.FlowExecutionStartedEvent, id),
		ExecutionID: executionID,
		NodeCount:   len(flow.Nodes),
	})

	start := time.Now()
	result, runErr := f.executor.Execute(ctx, *flow)
	duration := time.Since(start)

	if runErr != nil {
		logger.ErrorContext(ctx, "Flow execution failed", "error", runErr)

		nodeID, _ := workflow.FailedNode(runErr)

		flow.State = models.FlowStateCompletedWithErrors
		if err := f.persistence.SaveFlow(context.WithoutCancel(ctx), *flow); err != nil {
			logger.ErrorContext(ctx, "Failed to record flow failure", "error", err)
		}

		f.publish(ctx, id, events.FlowExecutionFailed{
			BaseEvent:    events.NewBaseEvent(events.FlowExecutionFailedEvent, id),
			ExecutionID:  executionID,
			Duration:     duration,
			FailedNodeID: nodeID,
			Error:        runErr.Error(),
		})

		return nil, &ExecutionError{FlowID: id, NodeID: nodeID, Err: runErr}
	}

	encoded, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode flow result: %w", err)
	}

	flow.State = models.FlowStateCompletedSuccessfully
	flow.Result = string(encoded)

	if err := f.persistence.SaveFlow(context.WithoutCancel(ctx), *flow); err != nil {
		return nil, fmt.Errorf("failed to record flow result: %w", err)
	}

	f.publish(ctx, id, events.FlowExecutionCompleted{
		BaseEvent:   events.NewBaseEvent(events.FlowExecutionCompletedEvent, id),
		ExecutionID: executionID,
		Duration:    duration,
		NodeCount:   len(flow.Nodes),
	})

	logger.InfoContext(ctx, "Flow executed successfully", "duration", duration)

	return &ExecutionResponse{Message: ExecutionSucceededMessage, Result: result}, nil
}

// RunFlow executes a flow and only reports the error. It is the scheduler's entry point.
func (f *Flow) RunFlow(ctx context.Context, id string) error {
	_, err := f.Execute(ctx, id)

	return err
}

func (f *Flow) publish(ctx context.Context, key string, event eventbus.Event) {
	if f.publisher == nil {
		return
	}

	if err := f.publisher.Publish(ctx, key, event); err != nil {
		f.logger.ErrorContext(ctx, "Failed to publish event", "event_type", event.GetType(), "error", err)
	}
}
