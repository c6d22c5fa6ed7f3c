package emission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duragraph/duragraph/internal/domain/execution"
)

func TestTimerContext_TicksWithIncreasingCount(t *testing.T) {
	tc := NewTimerContext(10)
	sink := NewSink(8)

	require.NoError(t, tc.Start("timer-1", sink))
	defer tc.Stop()

	var first, second execution.ExecutionEvent
	select {
	case first = <-sink.Events():
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for first tick")
	}
	select {
	case second = <-sink.Events():
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for second tick")
	}

	assert.Equal(t, execution.EventTimerTick, first.Kind)
	assert.Equal(t, "timer-1", first.NodeID)
	assert.Equal(t, uint64(0), first.TickCount)
	assert.Equal(t, uint64(1), second.TickCount)
}

func TestTimerContext_StartTwiceReturnsAlreadyActive(t *testing.T) {
	tc := NewTimerContext(50)
	sink := NewSink(8)

	require.NoError(t, tc.Start("n1", sink))
	defer tc.Stop()

	err := tc.Start("n1", sink)
	require.Error(t, err)
}

func TestTimerContext_StopIsIdempotent(t *testing.T) {
	tc := NewTimerContext(50)
	sink := NewSink(8)

	require.NoError(t, tc.Start("n1", sink))
	require.NoError(t, tc.Stop())
	require.NoError(t, tc.Stop())
	assert.False(t, tc.IsActive())
}
