package emission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duragraph/duragraph/internal/domain/execution"
)

func TestManualContext_TriggerBeforeStartFails(t *testing.T) {
	mc := NewManualContext()
	err := mc.Trigger()
	require.Error(t, err)
}

func TestManualContext_TriggerDeliversEvent(t *testing.T) {
	mc := NewManualContext()
	sink := NewSink(4)
	require.NoError(t, mc.Start("btn-1", sink))
	defer mc.Stop()

	require.NoError(t, mc.Trigger())

	select {
	case evt := <-sink.Events():
		assert.Equal(t, execution.EventManualTrigger, evt.Kind)
		assert.Equal(t, "btn-1", evt.NodeID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for manual trigger event")
	}
}

func TestManualContext_StopThenTriggerFails(t *testing.T) {
	mc := NewManualContext()
	sink := NewSink(4)
	require.NoError(t, mc.Start("n1", sink))
	require.NoError(t, mc.Stop())

	err := mc.Trigger()
	require.Error(t, err)
}
