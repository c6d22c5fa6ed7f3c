package emission

import (
	"sync"
	"time"

	"github.com/duragraph/duragraph/internal/domain/execution"
	"github.com/duragraph/duragraph/internal/pkg/errors"
)

// TimerContext emits EventTimerTick events at a fixed interval, with a
// monotonically increasing tick_count starting at 0. Ported from
// original_source/core/src/engine/emission_contexts.rs's TimerContext,
// which spawns an OS thread sleeping interval_ms between ticks and
// checking an atomic "active" flag; here a goroutine plus a
// time.Ticker plays the same role.
type TimerContext struct {
	intervalMs uint32

	mu       sync.Mutex
	active   bool
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewTimerContext creates a timer context that ticks every intervalMs
// milliseconds once started. intervalMs is resolved by the caller from
// the node's argument value, falling back to the brick's
// DefaultIntervalMs (spec.md §4.4).
func NewTimerContext(intervalMs uint32) *TimerContext {
	if intervalMs == 0 {
		intervalMs = 1000
	}
	return &TimerContext{intervalMs: intervalMs}
}

func (t *TimerContext) TypeName() string { return "timer" }

func (t *TimerContext) IsActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *TimerContext) Start(nodeID string, sink *Sink) error {
	t.mu.Lock()
	if t.active {
		t.mu.Unlock()
		return errors.ContextAlreadyActive(t.TypeName())
	}
	t.active = true
	t.stopCh = make(chan struct{})
	t.doneCh = make(chan struct{})
	stopCh := t.stopCh
	doneCh := t.doneCh
	t.mu.Unlock()

	go t.run(nodeID, sink, stopCh, doneCh)
	return nil
}

func (t *TimerContext) run(nodeID string, sink *Sink, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(time.Duration(t.intervalMs) * time.Millisecond)
	defer ticker.Stop()

	// tick_count begins at 0 and is incremented after the send, mirroring
	// the original thread loop (send, then tick_count += 1, then sleep).
	// The first tick fires immediately rather than waiting for the
	// ticker, matching the original's emit-then-sleep order.
	var tickCount uint64
	emit := func() bool {
		evt := execution.ExecutionEvent{
			Kind:        execution.EventTimerTick,
			NodeID:      nodeID,
			TickCount:   tickCount,
			TimestampMs: execution.NowMillis(),
		}
		err := sink.Send(evt)
		tickCount++
		if err != nil {
			// Engine stopped consuming; stop producing.
			return false
		}
		return true
	}

	if !emit() {
		return
	}
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !emit() {
				return
			}
		}
	}
}

func (t *TimerContext) Stop() error {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return nil
	}
	t.active = false
	stopCh := t.stopCh
	doneCh := t.doneCh
	t.mu.Unlock()

	close(stopCh)
	<-doneCh
	return nil
}
