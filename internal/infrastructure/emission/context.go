// Package emission implements the independent event producers of
// spec.md §4.4: each self-emitting brick type gets an EmissionContext
// that runs on its own schedule and delivers ExecutionEvents to a
// single multi-producer/single-consumer channel the engine consumes.
package emission

import (
	"sync"

	"github.com/duragraph/duragraph/internal/domain/execution"
	"github.com/duragraph/duragraph/internal/pkg/errors"
)

// Context is the common capability set every emission context
// implements, regardless of variant (spec.md §4.4). Adding a new
// variant requires only a new ExecutionEvent payload and a new Context
// implementation — no engine change (spec.md §9).
type Context interface {
	// Start begins producing events for nodeID onto sink. Returns
	// ErrContextAlreadyActive if called twice without an intervening
	// Stop.
	Start(nodeID string, sink *Sink) error

	// Stop halts production and releases any background goroutines
	// before returning. Idempotent.
	Stop() error

	// IsActive reports whether Start has been called without a
	// matching Stop.
	IsActive() bool

	// TypeName identifies the variant for debugging and metrics.
	TypeName() string
}

// Sink is the write end of the engine's single event channel, shared by
// every active emission context. Send is safe for concurrent use by
// multiple producer goroutines (spec.md §4.4, §5).
type Sink struct {
	mu     sync.RWMutex
	ch     chan execution.ExecutionEvent
	closed bool
}

// NewSink creates a sink backed by a buffered channel of the given
// capacity. A small buffer smooths out bursts (e.g. several timers
// ticking in the same millisecond) without changing ordering semantics:
// spec.md promises no cross-source ordering, only preserved per-source
// order, which a single shared channel with one writer per goroutine
// already guarantees.
func NewSink(capacity int) *Sink {
	if capacity <= 0 {
		capacity = 64
	}
	return &Sink{ch: make(chan execution.ExecutionEvent, capacity)}
}

// Send delivers an event to the engine. It returns ErrChannelClosed if
// the engine has already closed its receiving end — producers treat
// that as a stop signal and exit cleanly (spec.md §4.4 "Failure
// semantics"). Send may block briefly if the channel buffer is full;
// it never drops an event, preserving per-source ordering.
func (s *Sink) Send(evt execution.ExecutionEvent) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return errors.ErrChannelClosed
	}
	s.ch <- evt
	return nil
}

// Close marks the sink closed; further Sends return ErrChannelClosed.
// Safe to call multiple times.
func (s *Sink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
}

// Events exposes the receive end for the engine's consumer loop.
func (s *Sink) Events() <-chan execution.ExecutionEvent {
	return s.ch
}
