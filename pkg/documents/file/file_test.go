package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dukex/docflow/pkg/documents"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "docs")

	store, err := NewStore("file://" + root)
	require.NoError(t, err)
	assert.Equal(t, root, store.Root())
	assert.DirExists(t, root)

	_, err = NewStore("")
	require.Error(t, err)
}

func TestStore_CreateFindRead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	created, err := store.Create(ctx, "Weekly summary", "all good")
	require.NoError(t, err)
	assert.Equal(t, "Weekly summary.txt", created.ID)

	found, err := store.FindByName(ctx, "Weekly summary")
	require.NoError(t, err)
	assert.Equal(t, created, found)

	content, err := store.Read(ctx, found.ID)
	require.NoError(t, err)
	assert.Equal(t, "all good", content)

	_, err = store.Create(ctx, "Weekly summary", "replaced")
	require.NoError(t, err)

	content, err = store.Read(ctx, found.ID)
	require.NoError(t, err)
	assert.Equal(t, "replaced", content)
}

func TestStore_FindByNameExtensions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.md"), []byte("# notes"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "raw"), []byte("raw"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(root, "folder"), 0o750))

	store, err := NewStore(root)
	require.NoError(t, err)

	doc, err := store.FindByName(ctx, "notes")
	require.NoError(t, err)
	assert.Equal(t, "notes.md", doc.ID)

	doc, err = store.FindByName(ctx, "raw")
	require.NoError(t, err)
	assert.Equal(t, "raw", doc.ID)

	_, err = store.FindByName(ctx, "folder")
	assert.True(t, documents.IsNotFound(err))
}

func TestStore_Missing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.FindByName(ctx, "Nope")
	require.ErrorIs(t, err, documents.ErrDocumentNotFound)

	_, err = store.Read(ctx, "Nope.txt")
	require.ErrorIs(t, err, documents.ErrDocumentNotFound)
}

func TestStore_InvalidNames(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", ".", "/", "..", "../escape", "reports/../../escape"} {
		_, err := store.FindByName(ctx, name)
		require.ErrorIs(t, err, documents.ErrInvalidName, name)

		_, err = store.Create(ctx, name, "x")
		require.ErrorIs(t, err, documents.ErrInvalidName, name)
	}
}

func TestStore_PathNames(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	store, err := NewStore(root)
	require.NoError(t, err)

	created, err := store.Create(ctx, "/out.docx", "digest")
	require.NoError(t, err)
	assert.Equal(t, "out.docx", created.ID)
	assert.FileExists(t, filepath.Join(root, "out.docx"))

	found, err := store.FindByName(ctx, "out.docx")
	require.NoError(t, err)
	assert.Equal(t, "out.docx", found.ID)

	created, err = store.Create(ctx, "reports/weekly", "numbers")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("reports", "weekly.txt"), created.ID)

	found, err = store.FindByName(ctx, "/reports/weekly")
	require.NoError(t, err)

	content, err := store.Read(ctx, found.ID)
	require.NoError(t, err)
	assert.Equal(t, "numbers", content)
}
