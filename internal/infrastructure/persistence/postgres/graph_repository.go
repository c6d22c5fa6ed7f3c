package postgres

import (
	"context"
	"time"

	"github.com/duragraph/duragraph/internal/domain/graph"
	"github.com/duragraph/duragraph/internal/pkg/errors"
	pkguuid "github.com/duragraph/duragraph/internal/pkg/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GraphRepository implements graph.Repository against Postgres. The
// graph body (nodes/edges) is stored as its persisted JSON document
// form (graph.MarshalJSON); the resolved brick descriptors are never
// persisted and are re-attached by Graph.Bind on load by the caller.
type GraphRepository struct {
	pool       *pgxpool.Pool
	eventStore *EventStore
}

// NewGraphRepository creates a new graph repository.
func NewGraphRepository(pool *pgxpool.Pool, eventStore *EventStore) *GraphRepository {
	return &GraphRepository{pool: pool, eventStore: eventStore}
}

// Save persists a graph document and flushes its recorded events.
func (r *GraphRepository) Save(ctx context.Context, s *graph.Stored) error {
	body, err := graph.MarshalJSON(s.Graph())
	if err != nil {
		return errors.Internal("failed to marshal graph document", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO graphs (id, name, description, version, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			version = EXCLUDED.version,
			body = EXCLUDED.body,
			updated_at = EXCLUDED.updated_at
	`,
		s.ID(), s.Name(), s.Description(), s.Version(), body, s.CreatedAt(), s.UpdatedAt(),
	)
	if err != nil {
		return errors.Internal("failed to save graph", err)
	}

	if len(s.Events()) > 0 {
		streamID := pkguuid.New()
		if err := r.eventStore.SaveEvents(ctx, streamID, "graph", s.ID(), s.Events()); err != nil {
			return err
		}
		s.ClearEvents()
	}

	return nil
}

// FindByID retrieves a graph document by id.
func (r *GraphRepository) FindByID(ctx context.Context, id string) (*graph.Stored, error) {
	var gid, name, description string
	var version int
	var body []byte
	var createdAt, updatedAt time.Time

	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description, version, body, created_at, updated_at
		FROM graphs
		WHERE id = $1
	`, id).Scan(&gid, &name, &description, &version, &body, &createdAt, &updatedAt)
	if err != nil {
		return nil, errors.NotFound("graph", id)
	}

	g, err := graph.UnmarshalJSON(body)
	if err != nil {
		return nil, err
	}
	return graph.HydrateStored(gid, name, description, version, g, createdAt, updatedAt), nil
}

// List retrieves graph documents, most recently updated first.
func (r *GraphRepository) List(ctx context.Context, limit, offset int) ([]*graph.Stored, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, version, body, created_at, updated_at
		FROM graphs
		ORDER BY updated_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, errors.Internal("failed to list graphs", err)
	}
	defer rows.Close()

	var out []*graph.Stored
	for rows.Next() {
		var gid, name, description string
		var version int
		var body []byte
		var createdAt, updatedAt time.Time

		if err := rows.Scan(&gid, &name, &description, &version, &body, &createdAt, &updatedAt); err != nil {
			return nil, errors.Internal("failed to scan graph row", err)
		}
		g, err := graph.UnmarshalJSON(body)
		if err != nil {
			return nil, err
		}
		out = append(out, graph.HydrateStored(gid, name, description, version, g, createdAt, updatedAt))
	}
	return out, rows.Err()
}

// Delete removes a graph document.
func (r *GraphRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM graphs WHERE id = $1`, id)
	if err != nil {
		return errors.Internal("failed to delete graph", err)
	}
	if ct.RowsAffected() == 0 {
		return errors.NotFound("graph", id)
	}
	return nil
}
