package postgresql_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/persistence"
	"github.com/dukex/docflow/pkg/persistence/postgresql"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var postgresContainer *postgres.PostgresContainer

func dropDb(ctx context.Context, t *testing.T, databaseURL string) {
	t.Helper()

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	for _, table := range []string{"nodes", "flows", "schema_migrations"} {
		_, err = db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE")
		require.NoError(t, err)
	}

	err = db.Close()
	require.NoError(t, err)
}

func setupTestDB(t *testing.T) (*postgresql.Persistence, context.Context, string) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping PostgreSQL tests in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)

	if postgresContainer == nil || !postgresContainer.IsRunning() {
		var err error

		postgresContainer, err = postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("docflow_test"),
			postgres.WithUsername("docflow"),
			postgres.WithPassword("docflow"),
			postgres.BasicWaitStrategies(),
		)
		require.NoError(t, err)
	}

	databaseURL, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dropDb(ctx, t, databaseURL)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	p, err := postgresql.NewPersistence(ctx, logger, databaseURL)
	require.NoError(t, err)

	t.Cleanup(func() {
		dropDb(ctx, t, databaseURL)

		err = p.Close(ctx)
		require.NoError(t, err)

		cancel()
	})

	return p, ctx, databaseURL
}

func testFlow(id, name string) models.Flow {
	return models.Flow{
		ID:   id,
		Name: name,
		Nodes: []models.Node{
			{ID: "n-read", Type: models.NodeTypeReadFromGoogleDocs, Config: "notes"},
			{ID: "n-prompt", Type: models.NodeTypePromptLLM, Config: "Summarize {text}"},
			{ID: "n-write", Type: models.NodeTypeWriteToGoogleDocs, Config: "summary"},
		},
		State: models.FlowStateNotStarted,
	}
}

func TestNewPersistence_Migrations(t *testing.T) {
	_, ctx, databaseURL := setupTestDB(t)

	db, err := sql.Open("postgres", databaseURL)
	require.NoError(t, err)

	defer func() {
		err := db.Close()
		require.NoError(t, err)
	}()

	for _, table := range []string{"flows", "nodes", "schema_migrations"} {
		var exists bool

		err = db.QueryRowContext(ctx, `SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = $1)`, table).Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "%s table should exist", table)
	}

	var version int

	err = db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}

func TestNewPersistence_HealthCheck(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	assert.NoError(t, p.HealthCheck(ctx))
}

func TestPersistence_CreateAndGet(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	flow := testFlow("flow-1", "Digest")

	require.NoError(t, p.CreateFlow(ctx, flow))

	got, err := p.FlowByID(ctx, "flow-1")
	require.NoError(t, err)
	assert.Equal(t, flow, *got)

	err = p.CreateFlow(ctx, flow)
	assert.True(t, persistence.IsFlowAlreadyExists(err))
}

func TestPersistence_MissingFlow(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	_, err := p.FlowByID(ctx, "missing")
	assert.True(t, persistence.IsFlowNotFound(err))

	err = p.SaveFlow(ctx, testFlow("missing", "x"))
	assert.True(t, persistence.IsFlowNotFound(err))

	err = p.DeleteFlow(ctx, "missing")
	assert.True(t, persistence.IsFlowNotFound(err))
}

func TestPersistence_SaveReplacesNodes(t *testing.T) {
	p, ctx, _ := setupTestDB(t)
	flow := testFlow("flow-1", "Digest")
	require.NoError(t, p.CreateFlow(ctx, flow))

	flow.Name = "Renamed"
	flow.Nodes = []models.Node{
		{ID: "n-write", Type: models.NodeTypeWriteToGoogleDocs, Config: "summary"},
		{ID: "n-read", Type: models.NodeTypeReadFromGoogleDocs, Config: "notes"},
	}
	flow.State = models.FlowStateCompletedSuccessfully
	flow.Result = `{"n-read":"text"}`

	require.NoError(t, p.SaveFlow(ctx, flow))

	got, err := p.FlowByID(ctx, "flow-1")
	require.NoError(t, err)
	assert.Equal(t, flow, *got)
}

func TestPersistence_ListAndDelete(t *testing.T) {
	p, ctx, _ := setupTestDB(t)

	require.NoError(t, p.CreateFlow(ctx, testFlow("flow-b", "First")))
	require.NoError(t, p.CreateFlow(ctx, models.Flow{ID: "flow-a", Name: "Second", Nodes: []models.Node{}}))

	flows, err := p.Flows(ctx)
	require.NoError(t, err)
	require.Len(t, flows, 2)
	assert.Equal(t, "flow-b", flows[0].ID)
	assert.Len(t, flows[0].Nodes, 3)
	assert.Equal(t, "n-read", flows[0].Nodes[0].ID)
	assert.Equal(t, "n-write", flows[0].Nodes[2].ID)
	assert.Equal(t, "flow-a", flows[1].ID)
	assert.Empty(t, flows[1].Nodes)

	require.NoError(t, p.DeleteFlow(ctx, "flow-b"))

	flows, err = p.Flows(ctx)
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, "flow-a", flows[0].ID)
}
