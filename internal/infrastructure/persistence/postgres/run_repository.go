package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/duragraph/duragraph/internal/domain/execution"
	"github.com/duragraph/duragraph/internal/domain/run"
	"github.com/duragraph/duragraph/internal/pkg/errors"
	pkguuid "github.com/duragraph/duragraph/internal/pkg/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RunRepository implements run.Repository against Postgres, persisting
// the CRUD projection alongside the run's events in the event store.
type RunRepository struct {
	pool       *pgxpool.Pool
	eventStore *EventStore
}

// NewRunRepository creates a new run repository.
func NewRunRepository(pool *pgxpool.Pool, eventStore *EventStore) *RunRepository {
	return &RunRepository{pool: pool, eventStore: eventStore}
}

// Save persists a run aggregate and flushes its recorded events.
func (r *RunRepository) Save(ctx context.Context, runAgg *run.Run) error {
	nodeStatesJSON, err := json.Marshal(runAgg.NodeStates())
	if err != nil {
		return errors.Internal("failed to marshal run node states", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO runs (id, graph_id, mode, status, node_states, error_message, created_at, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			node_states = EXCLUDED.node_states,
			error_message = EXCLUDED.error_message,
			started_at = EXCLUDED.started_at,
			completed_at = EXCLUDED.completed_at
	`,
		runAgg.ID(),
		runAgg.GraphID(),
		string(runAgg.Mode()),
		string(runAgg.Status()),
		nodeStatesJSON,
		runAgg.ErrorMessage(),
		runAgg.CreatedAt(),
		runAgg.StartedAt(),
		runAgg.CompletedAt(),
	)
	if err != nil {
		return errors.Internal("failed to save run", err)
	}

	if len(runAgg.Events()) > 0 {
		streamID := pkguuid.New()
		if err := r.eventStore.SaveEvents(ctx, streamID, "run", runAgg.ID(), runAgg.Events()); err != nil {
			return err
		}
		runAgg.ClearEvents()
	}

	return nil
}

// FindByID retrieves a run by id.
func (r *RunRepository) FindByID(ctx context.Context, id string) (*run.Run, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, graph_id, mode, status, node_states, error_message, created_at, started_at, completed_at
		FROM runs
		WHERE id = $1
	`, id)
	runAgg, err := scanRun(row)
	if err != nil {
		return nil, errors.NotFound("run", id)
	}
	return runAgg, nil
}

// FindByGraphID retrieves runs for a graph, most recent first.
func (r *RunRepository) FindByGraphID(ctx context.Context, graphID string, limit, offset int) ([]*run.Run, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, graph_id, mode, status, node_states, error_message, created_at, started_at, completed_at
		FROM runs
		WHERE graph_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, graphID, limit, offset)
	if err != nil {
		return nil, errors.Internal("failed to list runs", err)
	}
	defer rows.Close()

	var out []*run.Run
	for rows.Next() {
		runAgg, err := scanRun(rows)
		if err != nil {
			return nil, errors.Internal("failed to scan run row", err)
		}
		out = append(out, runAgg)
	}
	return out, rows.Err()
}

// FindActiveByGraphID retrieves runs for a graph in Pending or Running
// status — used to enforce "one active run per graph" at the service
// layer.
func (r *RunRepository) FindActiveByGraphID(ctx context.Context, graphID string) ([]*run.Run, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, graph_id, mode, status, node_states, error_message, created_at, started_at, completed_at
		FROM runs
		WHERE graph_id = $1 AND status IN ('pending', 'running')
		ORDER BY created_at DESC
	`, graphID)
	if err != nil {
		return nil, errors.Internal("failed to list active runs", err)
	}
	defer rows.Close()

	var out []*run.Run
	for rows.Next() {
		runAgg, err := scanRun(rows)
		if err != nil {
			return nil, errors.Internal("failed to scan run row", err)
		}
		out = append(out, runAgg)
	}
	return out, rows.Err()
}

// Delete removes a run record.
func (r *RunRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM runs WHERE id = $1`, id)
	if err != nil {
		return errors.Internal("failed to delete run", err)
	}
	if ct.RowsAffected() == 0 {
		return errors.NotFound("run", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*run.Run, error) {
	var id, graphID, mode, status, errorMessage string
	var nodeStatesJSON []byte
	var createdAt time.Time
	var startedAt, completedAt *time.Time

	if err := row.Scan(&id, &graphID, &mode, &status, &nodeStatesJSON, &errorMessage, &createdAt, &startedAt, &completedAt); err != nil {
		return nil, err
	}

	var nodeStates map[string]execution.NodeState
	if len(nodeStatesJSON) > 0 {
		if err := json.Unmarshal(nodeStatesJSON, &nodeStates); err != nil {
			return nil, err
		}
	}

	return run.Hydrate(id, graphID, execution.Mode(mode), run.Status(status), createdAt, startedAt, completedAt, errorMessage, nodeStates), nil
}
