package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/persistence"
	redis "github.com/redis/go-redis/v9"
)

// FlowRepository handles flow-related Redis operations.
type FlowRepository struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewFlowRepository(client redis.UniversalClient, prefix string) *FlowRepository {
	return &FlowRepository{client: client, prefix: prefix, now: time.Now}
}

func (r *FlowRepository) flowKey(id string) string {
	return r.prefix + ":flow:" + id
}

func (r *FlowRepository) indexKey() string {
	return r.prefix + ":flows"
}

// GetAll returns every flow ordered by creation time.
func (r *FlowRepository) GetAll(ctx context.Context) ([]models.Flow, error) {
	ids, err := r.client.ZRange(ctx, r.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list flow ids: %w", err)
	}

	flows := make([]models.Flow, 0, len(ids))
	if len(ids) == 0 {
		return flows, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.flowKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load flows: %w", err)
	}

	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			// deleted between ZRANGE and MGET
			continue
		}

		flow, err := decode(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode flow %s: %w", ids[i], err)
		}

		flows = append(flows, *flow)
	}

	return flows, nil
}

func (r *FlowRepository) GetByID(ctx context.Context, id string) (*models.Flow, error) {
	raw, err := r.client.Get(ctx, r.flowKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, persistence.NewFlowError("FlowByID", id, persistence.ErrFlowNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get flow %s: %w", id, err)
	}

	flow, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode flow %s: %w", id, err)
	}

	return flow, nil
}

func (r *FlowRepository) Create(ctx context.Context, flow models.Flow) error {
	data, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("failed to marshal flow: %w", err)
	}

	var created *redis.BoolCmd

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		created = pipe.SetNX(ctx, r.flowKey(flow.ID), data, 0)
		pipe.ZAddNX(ctx, r.indexKey(), redis.Z{Score: float64(r.now().UnixMilli()), Member: flow.ID})

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create flow %s: %w", flow.ID, err)
	}

	if !created.Val() {
		return persistence.NewFlowError("CreateFlow", flow.ID, persistence.ErrFlowAlreadyExists)
	}

	return nil
}

func (r *FlowRepository) Save(ctx context.Context, flow models.Flow) error {
	data, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("failed to marshal flow: %w", err)
	}

	ok, err := r.client.SetXX(ctx, r.flowKey(flow.ID), data, redis.KeepTTL).Result()
	if err != nil {
		return fmt.Errorf("failed to save flow %s: %w", flow.ID, err)
	}

	if !ok {
		return persistence.NewFlowError("SaveFlow", flow.ID, persistence.ErrFlowNotFound)
	}

	return nil
}

func (r *FlowRepository) Delete(ctx context.Context, id string) error {
	var deleted *redis.IntCmd

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, r.flowKey(id))
		pipe.ZRem(ctx, r.indexKey(), id)

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete flow %s: %w", id, err)
	}

	if deleted.Val() == 0 {
		return persistence.NewFlowError("DeleteFlow", id, persistence.ErrFlowNotFound)
	}

	return nil
}

func decode(raw string) (*models.Flow, error) {
	var flow models.Flow
	if err := json.Unmarshal([]byte(raw), &flow); err != nil {
		return nil, err
	}

	if flow.Nodes == nil {
		flow.Nodes = []models.Node{}
	}

	return &flow, nil
}
