package service

import (
	"context"
	"sync"

	"github.com/duragraph/duragraph/internal/domain/brick"
	"github.com/duragraph/duragraph/internal/domain/execution"
	"github.com/duragraph/duragraph/internal/domain/graph"
	"github.com/duragraph/duragraph/internal/domain/run"
	"github.com/duragraph/duragraph/internal/infrastructure/emission"
	"github.com/duragraph/duragraph/internal/infrastructure/engine"
	"github.com/duragraph/duragraph/internal/pkg/errors"
	pkguuid "github.com/duragraph/duragraph/internal/pkg/uuid"
)

// activeRun tracks the in-memory engine backing one non-terminal run,
// so Cancel and Step can reach it without re-binding the graph. finish
// guards against the background driver and an explicit Cancel racing
// to apply the terminal transition twice.
type activeRun struct {
	eng       *engine.Engine
	cancel    chan struct{}
	stopDrain chan struct{}
	finish    sync.Once
}

// RunService drives the engine over a stored graph on behalf of one
// run aggregate: starting it, streaming its per-node updates into the
// aggregate, and persisting the result. It owns the set of engines
// backing non-terminal runs — the engine itself is never persisted,
// only the run's last-known snapshot (spec.md §4.2 "engine-local,
// never persisted").
type RunService struct {
	runs     run.Repository
	graphs   graph.Repository
	registry *brick.Registry

	mu     sync.Mutex
	active map[string]*activeRun
}

// NewRunService creates a new RunService.
func NewRunService(runs run.Repository, graphs graph.Repository, registry *brick.Registry) *RunService {
	return &RunService{
		runs:     runs,
		graphs:   graphs,
		registry: registry,
		active:   make(map[string]*activeRun),
	}
}

// Start binds graphID's stored document, creates a new run, and begins
// executing it. In execution.ModeNormal the engine is driven to
// exhaustion on a background goroutine; in execution.ModeStepped the
// caller advances it one node at a time via Step.
func (s *RunService) Start(ctx context.Context, graphID string, mode execution.Mode) (*run.Run, error) {
	stored, err := s.graphs.FindByID(ctx, graphID)
	if err != nil {
		return nil, err
	}

	g := stored.Graph()
	if err := g.Bind(s.registry); err != nil {
		return nil, err
	}

	if mode == "" {
		mode = execution.ModeNormal
	}

	r := run.New(pkguuid.New(), graphID, mode)
	if err := s.runs.Save(ctx, r); err != nil {
		return nil, err
	}

	eng := engine.WithConfig(g, engine.Config{Mode: mode})
	if err := eng.Start(); err != nil {
		_ = r.Fail(err.Error())
		_ = s.runs.Save(ctx, r)
		return nil, err
	}
	if err := r.Start(); err != nil {
		return nil, err
	}
	if err := s.runs.Save(ctx, r); err != nil {
		return nil, err
	}

	ar := &activeRun{eng: eng, cancel: make(chan struct{}), stopDrain: make(chan struct{})}
	s.mu.Lock()
	s.active[r.ID()] = ar
	s.mu.Unlock()

	go s.drainUpdates(r.ID(), ar)

	if mode == execution.ModeNormal {
		go s.runToCompletion(r.ID(), ar)
	}

	return r, nil
}

// drainUpdates copies the engine's StateUpdate stream into the run
// aggregate and persists it, until the engine's Updates channel closes
// (Stop was called) or the run is removed from the active set.
func (s *RunService) drainUpdates(runID string, ar *activeRun) {
	ctx := context.Background()
	for {
		select {
		case <-ar.stopDrain:
			return
		case u, ok := <-ar.eng.Updates():
			if !ok {
				return
			}
			r, err := s.runs.FindByID(ctx, runID)
			if err != nil {
				continue
			}
			r.ApplyUpdate(u)
			_ = s.runs.Save(ctx, r)
		}
	}
}

// runToCompletion drives Next() to exhaustion for a Normal-mode run,
// then transitions the run aggregate to its terminal state.
func (s *RunService) runToCompletion(runID string, ar *activeRun) {
	ctx := context.Background()

	for {
		select {
		case <-ar.cancel:
			return
		default:
		}

		_, done, err := ar.eng.Next()
		if err != nil {
			// Per-node faults do not fail the run (spec.md's S6
			// isolated-error behavior) — ApplyUpdate already recorded
			// the node's Errored phase via drainUpdates.
			continue
		}
		if done {
			s.complete(ctx, runID, ar, func(r *run.Run) error { return r.Complete() })
			return
		}
	}
}

// complete runs the terminal sequence for a run exactly once: stop the
// engine, stop the update drain, apply the aggregate transition, and
// drop the run from the active set. Safe to call concurrently from the
// background driver and an explicit Cancel/Step.
func (s *RunService) complete(ctx context.Context, runID string, ar *activeRun, apply func(*run.Run) error) {
	ar.finish.Do(func() {
		_ = ar.eng.Stop()
		close(ar.stopDrain)

		r, err := s.runs.FindByID(ctx, runID)
		if err == nil {
			_ = apply(r)
			_ = s.runs.Save(ctx, r)
		}

		s.mu.Lock()
		delete(s.active, runID)
		s.mu.Unlock()
	})
}

// Step advances a Stepped-mode run by one engine tick. Returns the id
// of the node that just executed ("" on an idle tick) and whether the
// run has no further work.
func (s *RunService) Step(ctx context.Context, runID string) (string, bool, error) {
	ar, err := s.lookupActive(runID)
	if err != nil {
		return "", false, err
	}

	id, done, err := ar.eng.Next()
	if done {
		s.complete(ctx, runID, ar, func(r *run.Run) error { return r.Complete() })
	}
	return id, done, err
}

// Cancel stops a run's engine (if still active) and transitions the run
// to Cancelled.
func (s *RunService) Cancel(ctx context.Context, runID string) error {
	s.mu.Lock()
	ar, ok := s.active[runID]
	s.mu.Unlock()

	if !ok {
		r, err := s.runs.FindByID(ctx, runID)
		if err != nil {
			return err
		}
		if err := r.Cancel(); err != nil {
			return err
		}
		return s.runs.Save(ctx, r)
	}

	close(ar.cancel)
	s.complete(ctx, runID, ar, func(r *run.Run) error { return r.Cancel() })
	return nil
}

func (s *RunService) lookupActive(runID string) (*activeRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ar, ok := s.active[runID]
	if !ok {
		return nil, errors.NotFound("active run", runID)
	}
	return ar, nil
}

// Get retrieves a run by id.
func (s *RunService) Get(ctx context.Context, id string) (*run.Run, error) {
	return s.runs.FindByID(ctx, id)
}

// List retrieves a page of runs for a graph.
func (s *RunService) List(ctx context.Context, graphID string, limit, offset int) ([]*run.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.runs.FindByGraphID(ctx, graphID, limit, offset)
}

// ActiveRuns retrieves non-terminal runs for a graph — used to block
// deleting a graph document out from under a running execution.
func (s *RunService) ActiveRuns(ctx context.Context, graphID string) ([]*run.Run, error) {
	return s.runs.FindActiveByGraphID(ctx, graphID)
}

// WebhookContexts returns every active http_webhook emission context
// across all currently-running runs, so the host HTTP server can mount
// their handlers at startup-independent paths.
func (s *RunService) WebhookContexts() []*emission.HttpWebhookContext {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*emission.HttpWebhookContext
	for _, ar := range s.active {
		for _, hc := range ar.eng.WebhookContexts() {
			out = append(out, hc)
		}
	}
	return out
}
