package execution

// Phase is a node's position in the per-node state machine of spec.md
// §4.5:
//
//	Waiting --enqueue--> Queued --dequeue--> Running --ok--> Completed
//	                                           \--fail--> Errored
//
// Re-entry into Queued from Completed is normal for flow loops.
type Phase string

const (
	PhaseWaiting   Phase = "waiting"
	PhaseQueued    Phase = "queued"
	PhaseRunning   Phase = "running"
	PhaseCompleted Phase = "completed"
	PhaseErrored   Phase = "errored"
)

// NodeState is the engine's per-node record: {phase, optional error
// message, elapsed_ms, optional last outputs} (spec.md §3).
type NodeState struct {
	NodeID       string
	Phase        Phase
	ErrorMessage string
	ElapsedMs    int64
	LastOutputs  map[string]string // output port id -> JSON-encoded value
}

// Mode selects between the engine pumping next() to exhaustion (Normal)
// or the caller driving it one step at a time (Stepped). Semantics are
// otherwise identical (spec.md §6).
type Mode string

const (
	ModeNormal  Mode = "normal"
	ModeStepped Mode = "stepped"
)

// StateUpdate is the lazily-streamed per-node update the engine emits
// for the UI consumer (spec.md §6 "Engine API to host").
type StateUpdate struct {
	NodeID        string
	State         NodeState
	ExecutionMode Mode
}
