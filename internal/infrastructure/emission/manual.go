package emission

import (
	"sync"

	"github.com/duragraph/duragraph/internal/domain/execution"
	"github.com/duragraph/duragraph/internal/pkg/errors"
)

// ManualContext emits an EventManualTrigger event each time Trigger is
// called while active. Unlike Timer, it has no internal schedule —
// production is driven synchronously by whoever holds a reference to
// it (typically an HTTP handler or CLI command), mirroring
// ManualTriggerContext in the Rust original.
type ManualContext struct {
	mu     sync.Mutex
	active bool
	nodeID string
	sink   *Sink
}

// NewManualContext creates an idle manual trigger context.
func NewManualContext() *ManualContext {
	return &ManualContext{}
}

func (m *ManualContext) TypeName() string { return "manual_trigger" }

func (m *ManualContext) IsActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

func (m *ManualContext) Start(nodeID string, sink *Sink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active {
		return errors.ContextAlreadyActive(m.TypeName())
	}
	m.active = true
	m.nodeID = nodeID
	m.sink = sink
	return nil
}

func (m *ManualContext) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = false
	m.nodeID = ""
	m.sink = nil
	return nil
}

// Trigger fires one manual activation. It returns ErrContextNotActive
// if called before Start (spec.md §4.4).
func (m *ManualContext) Trigger() error {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return errors.ContextNotActive(m.TypeName())
	}
	nodeID, sink := m.nodeID, m.sink
	m.mu.Unlock()

	return sink.Send(execution.ExecutionEvent{
		Kind:        execution.EventManualTrigger,
		NodeID:      nodeID,
		TimestampMs: execution.NowMillis(),
	})
}
