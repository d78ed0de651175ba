// Package workflow runs flows and keeps their schedules.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/otelhelper"
	"github.com/dukex/docflow/pkg/protocol"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// NodeCreator builds runnable nodes. *registry.Registry implements it.
type NodeCreator interface {
	CreateNode(ctx context.Context, node models.Node) (protocol.Node, error)
}

// NodeError reports the node a run stopped at.
type NodeError struct {
	NodeID   string
	Position int
	Type     models.NodeType
	Err      error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %s (%s, position %d) failed: %v", e.NodeID, e.Type, e.Position, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// FailedNode returns the id of the node that failed, if err came from a node.
func FailedNode(err error) (string, bool) {
	var nodeErr *NodeError
	if errors.As(err, &nodeErr) {
		return nodeErr.NodeID, true
	}

	return "", false
}

type Executor struct {
	nodes  NodeCreator
	tracer trace.Tracer
	logger *slog.Logger
}

func NewExecutor(nodes NodeCreator, tracer trace.Tracer, logger *slog.Logger) *Executor {
	if tracer == nil {
		tracer = otelhelper.NoopTracer()
	}

	return &Executor{
		nodes:  nodes,
		tracer: tracer,
		logger: logger.With("module", "flow_executor"),
	}
}

// Execute runs the nodes of flow one after the other, feeding each node the output of the
// previous one. It stops at the first failing node and returns the outputs gathered so far.
func (e *Executor) Execute(ctx context.Context, flow models.Flow) (Result, error) {
	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "flow.execute",
		attribute.String(otelhelper.FlowIDKey, flow.ID),
		attribute.String(otelhelper.FlowNameKey, flow.Name),
		attribute.Int("docflow.flow.node_count", len(flow.Nodes)),
	)
	defer span.End()

	logger := e.logger.With("flow_id", flow.ID)
	logger.InfoContext(ctx, "Starting execution of flow", "nodes", len(flow.Nodes))

	start := time.Now()
	result := Result{}
	input := protocol.Input{FlowID: flow.ID}

	for position, def := range flow.Nodes {
		output, err := e.executeNode(ctx, logger, position, def, input)
		if err != nil {
			nodeErr := &NodeError{NodeID: def.ID, Position: position, Type: def.Type, Err: err}
			otelhelper.SetError(span, nodeErr, attribute.String(otelhelper.NodeIDKey, def.ID))

			return result, nodeErr
		}

		result.Set(def.ID, output)
		input = protocol.NewInput(flow.ID, output)
	}

	logger.InfoContext(ctx, "Completed execution of flow", "duration", time.Since(start))

	return result, nil
}

func (e *Executor) executeNode(ctx context.Context, logger *slog.Logger, position int, def models.Node, input protocol.Input) (string, error) {
	attrs := []attribute.KeyValue{
		attribute.String(otelhelper.NodeIDKey, def.ID),
		attribute.String(otelhelper.NodeTypeKey, def.Type.String()),
		attribute.Int(otelhelper.NodePositionKey, position),
	}

	ctx, span := otelhelper.StartSpan(ctx, e.tracer, "node.execute", attrs...)
	defer span.End()

	logger = logger.With("node_id", def.ID, "node_type", def.Type.String(), "position", position)

	node, err := e.nodes.CreateNode(ctx, def)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create node", "error", err)
		otelhelper.SetError(span, err, attrs...)

		return "", fmt.Errorf("failed to create node: %w", err)
	}

	output, err := node.Execute(ctx, input)
	if err != nil {
		logger.ErrorContext(ctx, "Node execution failed", "error", err)
		otelhelper.SetError(span, err, attrs...)

		return "", err
	}

	logger.DebugContext(ctx, "Node executed successfully", "output_length", len(output))

	return output, nil
}
