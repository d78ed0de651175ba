package cmd

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/dukex/docflow/pkg/channels/kafka"
	"github.com/dukex/docflow/pkg/llm"
	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParsePersistenceProvider(t *testing.T) {
	cases := map[string]string{
		"./data":                              "file",
		"file:///var/lib/docflow":             "file",
		"postgres://user@localhost/docflow":   "postgres",
		"postgresql://user@localhost/docflow": "postgresql",
		"redis://localhost:6379/0":            "redis",
		"mongodb://localhost":                 "mongodb",
	}

	for url, want := range cases {
		assert.Equal(t, want, parsePersistenceProvider(url), url)
	}
}

func TestNewPersistence(t *testing.T) {
	p, err := NewPersistence(context.Background(), discardLogger(), "file://"+t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &file.Persistence{}, p)

	_, err = NewPersistence(context.Background(), discardLogger(), "mongodb://localhost")
	require.ErrorContains(t, err, "unsupported persistence provider: mongodb")
}

func TestNewEventBus(t *testing.T) {
	bus, err := NewEventBus("gochannel", nil, "docflow-test", discardLogger())
	require.NoError(t, err)
	require.NoError(t, bus.Close())

	_, err = NewEventBus("kafka", nil, "docflow-test", discardLogger())
	require.ErrorIs(t, err, kafka.ErrNoBrokers)

	_, err = NewEventBus("nats", nil, "docflow-test", discardLogger())
	require.ErrorContains(t, err, "unsupported event bus provider: nats")
}

func TestNewRegistry(t *testing.T) {
	docs, err := NewDocuments(filepath.Join(t.TempDir(), "docs"))
	require.NoError(t, err)

	reg, err := NewRegistry(discardLogger(), t.TempDir(), docs, llm.Unconfigured{})
	require.NoError(t, err)

	for _, nodeType := range models.NodeTypes() {
		assert.True(t, reg.IsRegistered(nodeType))
	}
}

func TestNewModel(t *testing.T) {
	assert.IsType(t, llm.Unconfigured{}, NewModel(llm.Config{}, discardLogger()))
	assert.IsType(t, &llm.OpenAI{}, NewModel(llm.Config{APIKey: "key"}, discardLogger()))
}
