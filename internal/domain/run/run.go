// Package run holds the ExecutionRun aggregate: one invocation of the
// engine over a bound graph, from Start() through either normal
// completion or a caller-issued Cancel. It owns nothing about how the
// engine executes nodes (internal/infrastructure/engine owns that) —
// only the run's lifecycle, timestamps, and terminal error, the way the
// teacher's run aggregate owned a thread run's lifecycle independently
// of the graph executor that drove it.
package run

import (
	"time"

	"github.com/duragraph/duragraph/internal/domain/execution"
	"github.com/duragraph/duragraph/internal/pkg/errors"
	"github.com/duragraph/duragraph/internal/pkg/eventbus"
)

// Status is the run's lifecycle position.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusErrored   Status = "errored"
	StatusCancelled Status = "cancelled"
)

// Run is the aggregate root for one engine invocation over a graph.
type Run struct {
	id      string
	graphID string
	mode    execution.Mode
	status  Status

	createdAt   time.Time
	startedAt   *time.Time
	completedAt *time.Time

	errorMessage string

	// nodeStates mirrors the engine's last-reported execution.NodeState
	// per node, so the run can be inspected without the engine still
	// being resident in memory.
	nodeStates map[string]execution.NodeState

	events []eventbus.Event
}

// New creates a pending run over the given bound graph id.
func New(id, graphID string, mode execution.Mode) *Run {
	r := &Run{
		id:         id,
		graphID:    graphID,
		mode:       mode,
		status:     StatusPending,
		createdAt:  time.Now(),
		nodeStates: make(map[string]execution.NodeState),
	}
	r.record(RunCreated{RunID: id, GraphID: graphID, CreatedAt: r.createdAt})
	return r
}

// Hydrate reconstructs a Run from persisted state, with no events
// recorded (used when loading from a repository, not when creating).
func Hydrate(id, graphID string, mode execution.Mode, status Status, createdAt time.Time, startedAt, completedAt *time.Time, errorMessage string, nodeStates map[string]execution.NodeState) *Run {
	if nodeStates == nil {
		nodeStates = make(map[string]execution.NodeState)
	}
	return &Run{
		id:           id,
		graphID:      graphID,
		mode:         mode,
		status:       status,
		createdAt:    createdAt,
		startedAt:    startedAt,
		completedAt:  completedAt,
		errorMessage: errorMessage,
		nodeStates:   nodeStates,
	}
}

func (r *Run) ID() string               { return r.id }
func (r *Run) GraphID() string           { return r.graphID }
func (r *Run) Mode() execution.Mode      { return r.mode }
func (r *Run) Status() Status            { return r.status }
func (r *Run) CreatedAt() time.Time      { return r.createdAt }
func (r *Run) StartedAt() *time.Time     { return r.startedAt }
func (r *Run) CompletedAt() *time.Time   { return r.completedAt }
func (r *Run) ErrorMessage() string      { return r.errorMessage }
func (r *Run) IsTerminal() bool {
	return r.status == StatusCompleted || r.status == StatusErrored || r.status == StatusCancelled
}

// NodeStates returns a copy of the last-known per-node state map.
func (r *Run) NodeStates() map[string]execution.NodeState {
	out := make(map[string]execution.NodeState, len(r.nodeStates))
	for k, v := range r.nodeStates {
		out[k] = v
	}
	return out
}

// Start transitions Pending -> Running.
func (r *Run) Start() error {
	if r.status != StatusPending {
		return errors.InvalidState(string(r.status), "start")
	}
	now := time.Now()
	r.status = StatusRunning
	r.startedAt = &now
	r.record(RunStarted{RunID: r.id, StartedAt: now})
	return nil
}

// ApplyUpdate folds one engine execution.StateUpdate into the run's
// node-state snapshot. Called by the service layer as it drains the
// engine's Updates() channel.
func (r *Run) ApplyUpdate(u execution.StateUpdate) {
	r.nodeStates[u.NodeID] = u.State
	if u.State.Phase == execution.PhaseErrored {
		r.record(RunNodeErrored{RunID: r.id, NodeID: u.NodeID, Message: u.State.ErrorMessage})
	}
}

// Complete transitions Running -> Completed.
func (r *Run) Complete() error {
	if r.status != StatusRunning {
		return errors.InvalidState(string(r.status), "complete")
	}
	now := time.Now()
	r.status = StatusCompleted
	r.completedAt = &now
	r.record(RunCompleted{RunID: r.id, CompletedAt: now})
	return nil
}

// Fail transitions Pending or Running -> Errored, recording a terminal error. A run
// with isolated per-node errors (spec.md's S6-style behavior) still
// reaches Completed, not Errored — Fail is reserved for run-level
// faults (e.g. the bound graph failed to start).
func (r *Run) Fail(message string) error {
	if r.status != StatusRunning && r.status != StatusPending {
		return errors.InvalidState(string(r.status), "fail")
	}
	now := time.Now()
	r.status = StatusErrored
	r.completedAt = &now
	r.errorMessage = message
	r.record(RunErrored{RunID: r.id, CompletedAt: now, Message: message})
	return nil
}

// Cancel transitions Pending or Running -> Cancelled.
func (r *Run) Cancel() error {
	if r.IsTerminal() {
		return errors.InvalidState(string(r.status), "cancel")
	}
	now := time.Now()
	r.status = StatusCancelled
	r.completedAt = &now
	r.record(RunCancelled{RunID: r.id, CompletedAt: now})
	return nil
}

func (r *Run) record(e eventbus.Event) {
	r.events = append(r.events, e)
}

// Events returns the events recorded since the last ClearEvents.
func (r *Run) Events() []eventbus.Event {
	return r.events
}

// ClearEvents drops recorded events after a repository has persisted
// them to the outbox.
func (r *Run) ClearEvents() {
	r.events = nil
}
