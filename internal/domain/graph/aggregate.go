package graph

import (
	"time"

	"github.com/duragraph/duragraph/internal/pkg/eventbus"
)

// Stored wraps a Graph with the identity and metadata a repository
// persists: id, name, version, timestamps. Graph itself stays the pure
// engine-facing nodes/edges model (spec.md §3); Stored is the
// CRUD/event-sourcing envelope around it, mirroring the way the
// teacher's workflow.Graph aggregate wrapped its own node/edge slices.
type Stored struct {
	id          string
	name        string
	description string
	version     int

	g *Graph

	createdAt time.Time
	updatedAt time.Time

	events []eventbus.Event
}

// NewStored creates a brand-new graph document at version 1.
func NewStored(id, name, description string, g *Graph) *Stored {
	now := time.Now()
	s := &Stored{
		id:          id,
		name:        name,
		description: description,
		version:     1,
		g:           g,
		createdAt:   now,
		updatedAt:   now,
	}
	s.record(GraphCreated{GraphID: id, Name: name, CreatedAt: now})
	return s
}

// HydrateStored reconstructs a Stored graph from persisted fields, with
// no events recorded.
func HydrateStored(id, name, description string, version int, g *Graph, createdAt, updatedAt time.Time) *Stored {
	return &Stored{
		id:          id,
		name:        name,
		description: description,
		version:     version,
		g:           g,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (s *Stored) ID() string             { return s.id }
func (s *Stored) Name() string           { return s.name }
func (s *Stored) Description() string    { return s.description }
func (s *Stored) Version() int           { return s.version }
func (s *Stored) Graph() *Graph          { return s.g }
func (s *Stored) CreatedAt() time.Time   { return s.createdAt }
func (s *Stored) UpdatedAt() time.Time   { return s.updatedAt }

// Update replaces the graph body and bumps the version, the way a new
// authoring save supersedes the previous document.
func (s *Stored) Update(name, description string, g *Graph) {
	s.name = name
	s.description = description
	s.g = g
	s.version++
	s.updatedAt = time.Now()
	s.record(GraphUpdated{GraphID: s.id, Version: s.version, UpdatedAt: s.updatedAt})
}

func (s *Stored) record(e eventbus.Event) { s.events = append(s.events, e) }
func (s *Stored) Events() []eventbus.Event { return s.events }
func (s *Stored) ClearEvents()            { s.events = nil }

// GraphCreated is recorded when a graph document is first saved.
type GraphCreated struct {
	GraphID   string
	Name      string
	CreatedAt time.Time
}

func (e GraphCreated) EventType() string     { return "graph.created" }
func (e GraphCreated) AggregateID() string   { return e.GraphID }
func (e GraphCreated) AggregateType() string { return "graph" }

// GraphUpdated is recorded on every subsequent save.
type GraphUpdated struct {
	GraphID   string
	Version   int
	UpdatedAt time.Time
}

func (e GraphUpdated) EventType() string     { return "graph.updated" }
func (e GraphUpdated) AggregateID() string   { return e.GraphID }
func (e GraphUpdated) AggregateType() string { return "graph" }
