// Package redis provides Redis persistence for flows. Each flow is a JSON string and a sorted
// set scored by creation time keeps the listing order.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/persistence"
	redis "github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces every key written by the persistence.
const DefaultKeyPrefix = "docflow"

// Persistence implements the persistence layer for Redis.
type Persistence struct {
	client   redis.UniversalClient
	logger   *slog.Logger
	flowRepo *FlowRepository
}

var _ persistence.Persistence = (*Persistence)(nil)

// NewPersistence connects to a redis:// or rediss:// URL.
func NewPersistence(ctx context.Context, logger *slog.Logger, redisURL string) (*Persistence, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger = logger.With("module", "redis_persistence")
	logger.InfoContext(ctx, "Connected to Redis", "addr", opts.Addr, "db", opts.DB)

	return NewPersistenceWithClient(client, logger, DefaultKeyPrefix), nil
}

// NewPersistenceWithClient uses an existing client. Keys are prefixed with prefix.
func NewPersistenceWithClient(client redis.UniversalClient, logger *slog.Logger, prefix string) *Persistence {
	return &Persistence{
		client:   client,
		logger:   logger,
		flowRepo: NewFlowRepository(client, prefix),
	}
}

func (p *Persistence) Close(ctx context.Context) error {
	if err := p.client.Close(); err != nil {
		p.logger.ErrorContext(ctx, "Error closing Redis client", "error", err)

		return fmt.Errorf("failed to close redis client: %w", err)
	}

	return nil
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	if err := p.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	return nil
}

func (p *Persistence) Flows(ctx context.Context) ([]models.Flow, error) {
	return p.flowRepo.GetAll(ctx)
}

func (p *Persistence) FlowByID(ctx context.Context, id string) (*models.Flow, error) {
	return p.flowRepo.GetByID(ctx, id)
}

func (p *Persistence) CreateFlow(ctx context.Context, flow models.Flow) error {
	return p.flowRepo.Create(ctx, flow)
}

func (p *Persistence) SaveFlow(ctx context.Context, flow models.Flow) error {
	return p.flowRepo.Save(ctx, flow)
}

func (p *Persistence) DeleteFlow(ctx context.Context, id string) error {
	return p.flowRepo.Delete(ctx, id)
}
