package readdoc

import (
	"context"
	"testing"

	"github.com/dukex/docflow/pkg/documents"
	"github.com/dukex/docflow/pkg/documents/file"
	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *file.Store {
	t.Helper()

	store, err := file.NewStore(t.TempDir())
	require.NoError(t, err)

	return store
}

func TestReadDocumentNode_Execute(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	_, err := store.Create(ctx, "Meeting notes", "Agreed to ship on Friday.")
	require.NoError(t, err)

	node, err := NewReadDocumentNodeFactory(store).Create(ctx, models.Node{ID: "n1", Type: models.NodeTypeReadFromGoogleDocs, Config: `"Meeting notes"`})
	require.NoError(t, err)

	assert.Equal(t, "n1", node.ID())
	assert.Equal(t, models.NodeTypeReadFromGoogleDocs, node.Type())

	out, err := node.Execute(ctx, protocol.Input{FlowID: "f1"})
	require.NoError(t, err)
	assert.Equal(t, "Agreed to ship on Friday.", out)
}

func TestReadDocumentNode_Missing(t *testing.T) {
	node, err := NewReadDocumentNode("n1", "Absent", newStore(t))
	require.NoError(t, err)
	assert.Equal(t, "Absent", node.DocumentName())

	_, err = node.Execute(context.Background(), protocol.Input{})
	require.ErrorIs(t, err, documents.ErrDocumentNotFound)
}

func TestReadDocumentNode_NameRequired(t *testing.T) {
	_, err := NewReadDocumentNode("n1", `""`, newStore(t))
	require.ErrorIs(t, err, ErrNameRequired)
}

func TestReadDocumentNodeFactory_Metadata(t *testing.T) {
	factory := NewReadDocumentNodeFactory(nil)

	assert.Equal(t, models.NodeTypeReadFromGoogleDocs, factory.Type())
	assert.Equal(t, "Read from Google Docs", factory.Name())
	assert.NotEmpty(t, factory.Description())
	assert.Equal(t, "string", factory.Schema()["type"])
}

func TestReadDocumentNode_PathConfigs(t *testing.T) {
	for _, config := range []string{"/out.docx", "reports/out.docx"} {
		t.Run(config, func(t *testing.T) {
			ctx := context.Background()
			store := newStore(t)
			_, err := store.Create(ctx, config, "quarterly numbers")
			require.NoError(t, err)

			node, err := NewReadDocumentNode("n1", config, store)
			require.NoError(t, err)

			out, err := node.Execute(ctx, protocol.Input{FlowID: "f1"})
			require.NoError(t, err)
			assert.Equal(t, "quarterly numbers", out)
		})
	}

	node, err := NewReadDocumentNode("n1", "../escape", newStore(t))
	require.NoError(t, err)

	_, err = node.Execute(context.Background(), protocol.Input{FlowID: "f1"})
	require.ErrorIs(t, err, documents.ErrInvalidName)
}
