package workflow

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/dukex/docflow/pkg/documents"
	"github.com/dukex/docflow/pkg/documents/file"
	"github.com/dukex/docflow/pkg/llm"
	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/protocol"
	"github.com/dukex/docflow/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func upperModel() llm.Model {
	return llm.Func(func(_ context.Context, prompt string) (string, error) {
		return strings.ToUpper(prompt), nil
	})
}

func newTestExecutor(t *testing.T, model llm.Model) (*Executor, *file.Store, *tracetest.SpanRecorder) {
	t.Helper()

	docs, err := file.NewStore(t.TempDir())
	require.NoError(t, err)

	reg := registry.NewRegistry(discardLogger())
	reg.RegisterDefaultNodes(docs, model)

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	return NewExecutor(reg, provider.Tracer("test"), discardLogger()), docs, recorder
}

func digestFlow() models.Flow {
	return models.Flow{
		ID:   "f1",
		Name: "Daily Digest",
		Nodes: []models.Node{
			{ID: "n1", Type: models.NodeTypeReadFromGoogleDocs, Config: `"Inbox"`},
			{ID: "n2", Type: models.NodeTypePromptLLM, Config: "summary: {text}"},
			{ID: "n3", Type: models.NodeTypeWriteToGoogleDocs, Config: "Digest"},
		},
	}
}

func TestExecutor_Execute(t *testing.T) {
	ctx := context.Background()
	executor, docs, recorder := newTestExecutor(t, upperModel())

	_, err := docs.Create(ctx, "Inbox", "three new messages")
	require.NoError(t, err)

	result, err := executor.Execute(ctx, digestFlow())
	require.NoError(t, err)

	assert.Equal(t, Result{
		{NodeID: "n1", Output: "three new messages"},
		{NodeID: "n2", Output: "SUMMARY: THREE NEW MESSAGES"},
		{NodeID: "n3", Output: "Saved in file: Digest"},
	}, result)

	doc, err := docs.FindByName(ctx, "Digest")
	require.NoError(t, err)

	content, err := docs.Read(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "SUMMARY: THREE NEW MESSAGES", content)

	ended := recorder.Ended()
	require.Len(t, ended, 4)
	assert.Equal(t, "flow.execute", ended[3].Name())

	for _, span := range ended[:3] {
		assert.Equal(t, "node.execute", span.Name())
		assert.Equal(t, ended[3].SpanContext().SpanID(), span.Parent().SpanID())
	}
}

func TestExecutor_EmptyFlow(t *testing.T) {
	executor, _, _ := newTestExecutor(t, upperModel())

	result, err := executor.Execute(context.Background(), models.Flow{ID: "empty"})
	require.NoError(t, err)
	assert.Empty(t, result)

	data, err := json.Marshal(result)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestExecutor_StopsAtFailingNode(t *testing.T) {
	ctx := context.Background()
	executor, docs, recorder := newTestExecutor(t, upperModel())

	result, err := executor.Execute(ctx, digestFlow())
	require.ErrorIs(t, err, documents.ErrDocumentNotFound)
	assert.Empty(t, result)

	nodeID, ok := FailedNode(err)
	assert.True(t, ok)
	assert.Equal(t, "n1", nodeID)

	_, err = docs.FindByName(ctx, "Digest")
	require.ErrorIs(t, err, documents.ErrDocumentNotFound)

	ended := recorder.Ended()
	require.Len(t, ended, 2)
	assert.Equal(t, codes.Error, ended[0].Status().Code)
	assert.Equal(t, codes.Error, ended[1].Status().Code)
}

func TestExecutor_PartialResultOnLaterFailure(t *testing.T) {
	ctx := context.Background()
	executor, docs, _ := newTestExecutor(t, llm.Unconfigured{})

	_, err := docs.Create(ctx, "Inbox", "hello")
	require.NoError(t, err)

	result, err := executor.Execute(ctx, digestFlow())
	require.ErrorIs(t, err, llm.ErrNotConfigured)
	assert.Equal(t, Result{{NodeID: "n1", Output: "hello"}}, result)

	var nodeErr *NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, 1, nodeErr.Position)
	assert.Equal(t, models.NodeTypePromptLLM, nodeErr.Type)
	assert.Contains(t, nodeErr.Error(), "node n2 (Prompt LLM, position 1) failed")
}

func TestExecutor_PromptFirstHasNoInput(t *testing.T) {
	executor, _, _ := newTestExecutor(t, upperModel())

	_, err := executor.Execute(context.Background(), models.Flow{
		ID:    "f2",
		Nodes: []models.Node{{ID: "n1", Type: models.NodeTypePromptLLM, Config: "{text}"}},
	})
	require.ErrorIs(t, err, protocol.ErrNoInput)
}

func TestExecutor_UnregisteredType(t *testing.T) {
	executor := NewExecutor(registry.NewRegistry(discardLogger()), nil, discardLogger())

	_, err := executor.Execute(context.Background(), models.Flow{
		ID:    "f3",
		Nodes: []models.Node{{ID: "n1", Type: models.NodeTypeWriteToGoogleDocs, Config: "x"}},
	})
	require.ErrorIs(t, err, registry.ErrNodeTypeNotRegistered)

	_, ok := FailedNode(err)
	assert.True(t, ok)
}
