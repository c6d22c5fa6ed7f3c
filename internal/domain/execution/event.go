// Package execution holds the engine-local scratch state a brick
// callable reads and writes during one invocation (the trigger
// context), the tagged event envelope emission contexts deliver, and
// the per-node state machine the engine drives (spec.md §4.3, §4.4,
// §4.5).
package execution

import "time"

// EventKind discriminates the tagged ExecutionEvent variant.
type EventKind string

const (
	EventNodeTriggered EventKind = "node_triggered"
	EventTimerTick     EventKind = "timer_tick"
	EventManualTrigger EventKind = "manual_trigger"
	EventFileChanged   EventKind = "file_changed"
	EventHttpRequest   EventKind = "http_request"
)

// FileChangeKind enumerates the kinds of filesystem change a
// FileWatcher emission context may report.
type FileChangeKind string

const (
	FileCreated  FileChangeKind = "created"
	FileModified FileChangeKind = "modified"
	FileRemoved  FileChangeKind = "removed"
)

// ExecutionEvent is the tagged variant emission contexts deliver on the
// single MPSC event channel, and that the engine converts into flow
// activations. Every variant carries its target node id, accessible via
// NodeID.
type ExecutionEvent struct {
	Kind   EventKind
	NodeID string

	// TimerTick fields.
	TickCount      uint64
	TimestampMs    int64

	// ManualTrigger reuses TimestampMs.

	// FileChanged fields.
	FilePath string
	FileKind FileChangeKind

	// HttpRequest fields.
	HttpMethod  string
	HttpPath    string
	HttpHeaders map[string][]string
	HttpQuery   map[string][]string
	HttpBody    string
}

// IsSelfEmitted reports whether this event originated from an emission
// context (anything but NodeTriggered, which the engine produces
// internally when converting a raised control-flow trigger into a
// queued flow activation).
func (e ExecutionEvent) IsSelfEmitted() bool {
	return e.Kind != EventNodeTriggered
}

// NowMillis returns the current time as epoch milliseconds — the
// canonical timestamp form chosen in SPEC_FULL.md over the original
// "{secs}.{millis}" string form.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// Context is the tagged variant a Callable observes via CallContext's
// companion accessor (TriggerContext.EventContext). It mirrors
// ExecutionEvent but drops the NodeID (the callable already knows which
// node it is).
type Context struct {
	Kind EventKind

	TickCount   uint64
	TimestampMs int64

	FilePath string
	FileKind FileChangeKind

	HttpMethod  string
	HttpPath    string
	HttpHeaders map[string][]string
	HttpQuery   map[string][]string
	HttpBody    string
}

// FlowTriggered is the default event context for ordinary flow
// activations not driven by a self-emitted event.
func FlowTriggered() Context { return Context{Kind: EventNodeTriggered} }

// ContextFromEvent projects an ExecutionEvent into the Context a
// callable observes during the activation it caused.
func ContextFromEvent(e ExecutionEvent) Context {
	return Context{
		Kind:        e.Kind,
		TickCount:   e.TickCount,
		TimestampMs: e.TimestampMs,
		FilePath:    e.FilePath,
		FileKind:    e.FileKind,
		HttpMethod:  e.HttpMethod,
		HttpPath:    e.HttpPath,
		HttpHeaders: e.HttpHeaders,
		HttpQuery:   e.HttpQuery,
		HttpBody:    e.HttpBody,
	}
}
