package graph

import "context"

// Repository persists Stored graph documents.
type Repository interface {
	Save(ctx context.Context, s *Stored) error
	FindByID(ctx context.Context, id string) (*Stored, error)
	List(ctx context.Context, limit, offset int) ([]*Stored, error)
	Delete(ctx context.Context, id string) error
}
