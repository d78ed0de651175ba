// Package postgresql provides PostgreSQL persistence for flows.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/persistence"
	"github.com/dukex/docflow/pkg/persistence/sqlbase"
	_ "github.com/lib/pq"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db       *sql.DB
	logger   *slog.Logger
	flowRepo *FlowRepository
}

var _ persistence.Persistence = (*Persistence)(nil)

// NewPersistence connects to databaseURL and brings the schema up to date.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		_ = database.Close()

		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		_ = database.Close()

		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:       database,
		logger:   logger,
		flowRepo: NewFlowRepository(database, logger),
	}, nil
}

// Close closes the database connection.
func (p *Persistence) Close(_ context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

// Flows returns all flows from the database.
func (p *Persistence) Flows(ctx context.Context) ([]models.Flow, error) {
	return p.flowRepo.GetAll(ctx)
}

// FlowByID returns a flow by its ID.
func (p *Persistence) FlowByID(ctx context.Context, id string) (*models.Flow, error) {
	return p.flowRepo.GetByID(ctx, id)
}

// CreateFlow inserts a new flow.
func (p *Persistence) CreateFlow(ctx context.Context, flow models.Flow) error {
	return p.flowRepo.Create(ctx, flow)
}

// SaveFlow replaces an existing flow.
func (p *Persistence) SaveFlow(ctx context.Context, flow models.Flow) error {
	return p.flowRepo.Save(ctx, flow)
}

// DeleteFlow removes a flow and its nodes.
func (p *Persistence) DeleteFlow(ctx context.Context, id string) error {
	return p.flowRepo.Delete(ctx, id)
}
