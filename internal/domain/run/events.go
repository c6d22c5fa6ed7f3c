package run

import "time"

// RunCreated is recorded when a run is first created, pending Start.
type RunCreated struct {
	RunID     string
	GraphID   string
	CreatedAt time.Time
}

func (e RunCreated) EventType() string     { return "run.created" }
func (e RunCreated) AggregateID() string   { return e.RunID }
func (e RunCreated) AggregateType() string { return "run" }

// RunStarted is recorded when the engine begins processing a run.
type RunStarted struct {
	RunID     string
	StartedAt time.Time
}

func (e RunStarted) EventType() string     { return "run.started" }
func (e RunStarted) AggregateID() string   { return e.RunID }
func (e RunStarted) AggregateType() string { return "run" }

// RunNodeErrored is recorded each time a node transitions to Errored —
// an isolated per-node fault, not necessarily fatal to the run.
type RunNodeErrored struct {
	RunID   string
	NodeID  string
	Message string
}

func (e RunNodeErrored) EventType() string     { return "run.node_errored" }
func (e RunNodeErrored) AggregateID() string   { return e.RunID }
func (e RunNodeErrored) AggregateType() string { return "run" }

// RunCompleted is recorded when the engine reaches S5 (Done).
type RunCompleted struct {
	RunID       string
	CompletedAt time.Time
}

func (e RunCompleted) EventType() string     { return "run.completed" }
func (e RunCompleted) AggregateID() string   { return e.RunID }
func (e RunCompleted) AggregateType() string { return "run" }

// RunErrored is recorded when the run fails at the run level (as
// opposed to an isolated per-node error).
type RunErrored struct {
	RunID       string
	CompletedAt time.Time
	Message     string
}

func (e RunErrored) EventType() string     { return "run.errored" }
func (e RunErrored) AggregateID() string   { return e.RunID }
func (e RunErrored) AggregateType() string { return "run" }

// RunCancelled is recorded when a caller cancels a pending or running
// run.
type RunCancelled struct {
	RunID       string
	CompletedAt time.Time
}

func (e RunCancelled) EventType() string     { return "run.cancelled" }
func (e RunCancelled) AggregateID() string   { return e.RunID }
func (e RunCancelled) AggregateType() string { return "run" }
