package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dukex/docflow/pkg/models"
	"github.com/dukex/docflow/pkg/persistence"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// FlowRepository handles flow-related database operations.
type FlowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewFlowRepository creates a new flow repository.
func NewFlowRepository(db *sql.DB, logger *slog.Logger) *FlowRepository {
	return &FlowRepository{db: db, logger: logger}
}

// GetAll returns all flows with their nodes, oldest first.
func (r *FlowRepository) GetAll(ctx context.Context) ([]models.Flow, error) {
	query := `
		SELECT
			id
		  , name
		  , state
		  , COALESCE(result, '')
		FROM flows
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query flows: %w", err)
	}

	defer r.closeRows(ctx, rows)

	flows := make([]models.Flow, 0)
	index := make(map[string]int)

	for rows.Next() {
		var flow models.Flow

		err := rows.Scan(&flow.ID, &flow.Name, &flow.State, &flow.Result)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flow: %w", err)
		}

		flow.Nodes = []models.Node{}
		index[flow.ID] = len(flows)
		flows = append(flows, flow)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating flows: %w", err)
	}

	err = r.eachNode(ctx, "", func(flowID string, node models.Node) {
		if i, ok := index[flowID]; ok {
			flows[i].Nodes = append(flows[i].Nodes, node)
		}
	})
	if err != nil {
		return nil, err
	}

	return flows, nil
}

// GetByID returns a flow with its nodes in position order.
func (r *FlowRepository) GetByID(ctx context.Context, id string) (*models.Flow, error) {
	query := `
		SELECT
			id
		  , name
		  , state
		  , COALESCE(result, '')
		FROM flows
		WHERE id = $1
	`

	var flow models.Flow

	err := r.db.QueryRowContext(ctx, query, id).Scan(&flow.ID, &flow.Name, &flow.State, &flow.Result)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewFlowError("FlowByID", id, persistence.ErrFlowNotFound)
		}

		return nil, fmt.Errorf("failed to scan flow: %w", err)
	}

	flow.Nodes = []models.Node{}

	err = r.eachNode(ctx, id, func(_ string, node models.Node) {
		flow.Nodes = append(flow.Nodes, node)
	})
	if err != nil {
		return nil, err
	}

	return &flow, nil
}

// Create inserts a new flow and its nodes.
func (r *FlowRepository) Create(ctx context.Context, flow models.Flow) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO flows (id, name, state, result) VALUES ($1, $2, $3, NULLIF($4, ''))`,
			flow.ID, flow.Name, flow.DisplayState(), flow.Result,
		)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				return persistence.NewFlowError("CreateFlow", flow.ID, persistence.ErrFlowAlreadyExists)
			}

			return fmt.Errorf("failed to insert flow: %w", err)
		}

		return r.insertNodes(ctx, tx, flow)
	})
}

// Save replaces an existing flow and all of its nodes.
func (r *FlowRepository) Save(ctx context.Context, flow models.Flow) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE flows SET name = $2, state = $3, result = NULLIF($4, ''), updated_at = NOW() WHERE id = $1`,
			flow.ID, flow.Name, flow.DisplayState(), flow.Result,
		)
		if err != nil {
			return fmt.Errorf("failed to update flow: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if rowsAffected == 0 {
			return persistence.NewFlowError("SaveFlow", flow.ID, persistence.ErrFlowNotFound)
		}

		_, err = tx.ExecContext(ctx, "DELETE FROM nodes WHERE flow_id = $1", flow.ID)
		if err != nil {
			return fmt.Errorf("failed to delete existing nodes: %w", err)
		}

		return r.insertNodes(ctx, tx, flow)
	})
}

// Delete removes a flow. Its nodes are removed by the foreign key cascade.
func (r *FlowRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM flows WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete flow: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.NewFlowError("DeleteFlow", id, persistence.ErrFlowNotFound)
	}

	return nil
}

func (r *FlowRepository) insertNodes(ctx context.Context, tx *sql.Tx, flow models.Flow) error {
	for position, node := range flow.Nodes {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO nodes (flow_id, id, position, type, config) VALUES ($1, $2, $3, $4, $5)`,
			flow.ID, node.ID, position, node.Type, node.Config,
		)
		if err != nil {
			return fmt.Errorf("failed to insert node %s: %w", node.ID, err)
		}
	}

	return nil
}

// eachNode visits nodes in position order, for one flow or, with an empty flowID, for all flows.
func (r *FlowRepository) eachNode(ctx context.Context, flowID string, visit func(flowID string, node models.Node)) error {
	query := `
		SELECT flow_id, id, type, config
		FROM nodes
		WHERE $1 = '' OR flow_id = $1
		ORDER BY flow_id, position
	`

	rows, err := r.db.QueryContext(ctx, query, flowID)
	if err != nil {
		return fmt.Errorf("failed to query nodes: %w", err)
	}

	defer r.closeRows(ctx, rows)

	for rows.Next() {
		var (
			owner string
			node  models.Node
		)

		err := rows.Scan(&owner, &node.ID, &node.Type, &node.Config)
		if err != nil {
			return fmt.Errorf("failed to scan node: %w", err)
		}

		visit(owner, node)
	}

	err = rows.Err()
	if err != nil {
		return fmt.Errorf("error iterating nodes: %w", err)
	}

	return nil
}

func (r *FlowRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	err = fn(tx)
	if err != nil {
		_ = tx.Rollback()

		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *FlowRepository) closeRows(ctx context.Context, rows *sql.Rows) {
	err := rows.Close()
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
	}
}
