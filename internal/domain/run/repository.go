package run

import "context"

// Repository persists Run aggregates. Implemented by
// internal/infrastructure/persistence/postgres.RunRepository.
type Repository interface {
	Save(ctx context.Context, r *Run) error
	FindByID(ctx context.Context, id string) (*Run, error)
	FindByGraphID(ctx context.Context, graphID string, limit, offset int) ([]*Run, error)
	FindActiveByGraphID(ctx context.Context, graphID string) ([]*Run, error)
	Delete(ctx context.Context, id string) error
}
