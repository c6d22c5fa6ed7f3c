// Package service holds the application layer: thin orchestrators that
// compose domain aggregates, the brick registry, and the engine behind
// a use-case-shaped API, the way the teacher's service package composed
// its domain aggregates with repositories and the workflow executor.
package service

import (
	"context"

	"github.com/duragraph/duragraph/internal/domain/brick"
	"github.com/duragraph/duragraph/internal/domain/graph"
	pkguuid "github.com/duragraph/duragraph/internal/pkg/uuid"
)

// GraphService handles graph-document CRUD: authoring, storage, and
// brick-bindability validation. It never runs a graph — RunService owns
// that.
type GraphService struct {
	repo     graph.Repository
	registry *brick.Registry
}

// NewGraphService creates a new GraphService.
func NewGraphService(repo graph.Repository, registry *brick.Registry) *GraphService {
	return &GraphService{repo: repo, registry: registry}
}

// Create validates doc against the brick registry and persists a new
// graph document.
func (s *GraphService) Create(ctx context.Context, name, description string, doc graph.Document) (*graph.Stored, error) {
	g := graph.FromDocument(doc)
	if err := g.Bind(s.registry); err != nil {
		return nil, err
	}

	stored := graph.NewStored(pkguuid.New(), name, description, g)
	if err := s.repo.Save(ctx, stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// Get retrieves a graph document by id.
func (s *GraphService) Get(ctx context.Context, id string) (*graph.Stored, error) {
	return s.repo.FindByID(ctx, id)
}

// List retrieves a page of graph documents.
func (s *GraphService) List(ctx context.Context, limit, offset int) ([]*graph.Stored, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.List(ctx, limit, offset)
}

// Update re-validates doc and saves a new version of an existing graph
// document.
func (s *GraphService) Update(ctx context.Context, id, name, description string, doc graph.Document) (*graph.Stored, error) {
	stored, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	g := graph.FromDocument(doc)
	if err := g.Bind(s.registry); err != nil {
		return nil, err
	}

	stored.Update(name, description, g)
	if err := s.repo.Save(ctx, stored); err != nil {
		return nil, err
	}
	return stored, nil
}

// Delete removes a graph document. Callers are responsible for
// rejecting deletes of graphs with active runs (RunService.ActiveRuns).
func (s *GraphService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Validate checks doc against the brick registry without persisting
// anything — used by the CLI's "graph validate" subcommand.
func (s *GraphService) Validate(doc graph.Document) error {
	g := graph.FromDocument(doc)
	return g.Bind(s.registry)
}
