package registry

import (
	"context"
	"log/slog"
	"testing"

	"github.com/dukex/docflow/pkg/documents/file"
	"github.com/dukex/docflow/pkg/llm"
	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFactory struct {
	nodeType models.NodeType
	name     string
}

func (f stubFactory) Create(_ context.Context, node models.Node) (protocol.Node, error) {
	return nil, nil
}

func (f stubFactory) Type() models.NodeType  { return f.nodeType }
func (f stubFactory) Name() string           { return f.name }
func (f stubFactory) Description() string    { return "stub" }
func (f stubFactory) Schema() map[string]any { return map[string]any{"type": "string"} }

func TestRegisterDefaultNodes(t *testing.T) {
	docs, err := file.NewStore(t.TempDir())
	require.NoError(t, err)

	registry := NewRegistry(slog.Default())
	registry.RegisterDefaultNodes(docs, llm.Unconfigured{})

	available := registry.GetAvailableNodes()
	require.Len(t, available, 3)

	for i, nodeType := range models.NodeTypes() {
		assert.Equal(t, nodeType, available[i].Type())
		assert.Equal(t, nodeType.String(), available[i].Name())
		assert.True(t, registry.IsRegistered(nodeType))
	}
}

func TestCreateNode(t *testing.T) {
	docs, err := file.NewStore(t.TempDir())
	require.NoError(t, err)

	registry := NewRegistry(slog.Default())
	registry.RegisterDefaultNodes(docs, llm.Unconfigured{})

	node, err := registry.CreateNode(context.Background(), models.Node{ID: "n1", Type: models.NodeTypePromptLLM, Config: "{text}"})
	require.NoError(t, err)
	assert.Equal(t, "n1", node.ID())
	assert.Equal(t, models.NodeTypePromptLLM, node.Type())
}

func TestCreateNode_UnknownType(t *testing.T) {
	registry := NewRegistry(slog.Default())

	_, err := registry.CreateNode(context.Background(), models.Node{ID: "n1", Type: models.NodeTypeReadFromGoogleDocs})
	require.ErrorIs(t, err, ErrNodeTypeNotRegistered)
	assert.False(t, registry.IsRegistered(models.NodeTypeReadFromGoogleDocs))
}

func TestRegisterNode_Replaces(t *testing.T) {
	registry := NewRegistry(slog.Default())
	registry.RegisterNode(stubFactory{nodeType: models.NodeTypeWriteToGoogleDocs, name: "first"})
	registry.RegisterNode(stubFactory{nodeType: models.NodeTypeWriteToGoogleDocs, name: "second"})

	available := registry.GetAvailableNodes()
	require.Len(t, available, 1)
	assert.Equal(t, "second", available[0].Name())
}

func TestLoadNodePlugins_MissingDirectory(t *testing.T) {
	registry := NewRegistry(slog.Default())

	factories, err := registry.LoadNodePlugins(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, factories)
}
