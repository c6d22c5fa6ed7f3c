package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duragraph/duragraph/internal/domain/brick"
	"github.com/duragraph/duragraph/internal/domain/execution"
	"github.com/duragraph/duragraph/internal/domain/graph"
	"github.com/duragraph/duragraph/internal/infrastructure/bricks"
)

func newTestRegistry(t *testing.T) *brick.Registry {
	t.Helper()
	reg := brick.NewRegistry()
	require.NoError(t, bricks.RegisterAll(reg, bricks.LLMConfig{}))
	return reg
}

// drainUntilDone runs next() to exhaustion (Normal mode semantics),
// collecting every non-empty node id in trace order.
func drainUntilDone(t *testing.T, e *Engine, deadline time.Duration) ([]string, []error) {
	t.Helper()
	var trace []string
	var errs []error
	cutoff := time.Now().Add(deadline)
	for time.Now().Before(cutoff) {
		id, done, err := e.Next()
		if done {
			return trace, errs
		}
		if id != "" {
			trace = append(trace, id)
			if err != nil {
				errs = append(errs, err)
			}
		}
	}
	t.Fatal("drainUntilDone: deadline exceeded without engine reaching done")
	return nil, nil
}

// S1 — Pure data chain: A:add(1,1) -> B:multiply(·,3).
func TestEngine_S1_PureDataChain(t *testing.T) {
	reg := newTestRegistry(t)

	nodes := []graph.Node{
		{ID: "start", BrickID: "start"},
		{ID: "A", BrickID: "add", Defaults: map[string]string{"a": "1", "b": "1"}},
		{ID: "B", BrickID: "multiply", Defaults: map[string]string{"b": "3"}},
		{ID: "print", BrickID: "print"},
	}
	edges := []graph.Edge{
		{ID: "e-start-print", SourceNode: "start", SourcePort: "begin", TargetNode: "print", TargetPort: "execute"},
		{ID: "e-a-b", SourceNode: "A", SourcePort: "sum", TargetNode: "B", TargetPort: "a"},
		{ID: "e-b-print", SourceNode: "B", SourcePort: "product", TargetNode: "print", TargetPort: "value"},
	}
	g := graph.New(nodes, edges)
	require.NoError(t, g.Bind(reg))

	e := New(g)
	require.NoError(t, e.Start())
	defer e.Stop()

	trace, errs := drainUntilDone(t, e, time.Second)
	assert.Empty(t, errs)
	assert.Contains(t, trace, "start")
	assert.Contains(t, trace, "A")
	assert.Contains(t, trace, "B")
	assert.Contains(t, trace, "print")

	// A must execute before B, and B before print.
	idxA, idxB, idxPrint := indexOf(trace, "A"), indexOf(trace, "B"), indexOf(trace, "print")
	assert.Less(t, idxA, idxB)
	assert.Less(t, idxB, idxPrint)

	st, ok := e.State("A")
	require.True(t, ok)
	assert.Equal(t, execution.PhaseCompleted, st.Phase)
	assert.Equal(t, "2", st.LastOutputs["sum"])

	st, ok = e.State("B")
	require.True(t, ok)
	assert.Equal(t, execution.PhaseCompleted, st.Phase)
	assert.Equal(t, "6", st.LastOutputs["product"])
}

// S2 — Diamond data graph: A, B=f(A), C=g(A), D=h(B,C), flow node F
// consumes D. A must execute exactly once.
func TestEngine_S2_DiamondDataGraph(t *testing.T) {
	reg := newTestRegistry(t)

	nodes := []graph.Node{
		{ID: "start", BrickID: "start"},
		{ID: "A", BrickID: "const_number", Arguments: map[string]string{"value": "2"}},
		{ID: "B", BrickID: "multiply", Defaults: map[string]string{"b": "3"}},
		{ID: "C", BrickID: "add", Defaults: map[string]string{"b": "10"}},
		{ID: "D", BrickID: "add"},
		{ID: "F", BrickID: "print"},
	}
	edges := []graph.Edge{
		{ID: "e-start-f", SourceNode: "start", SourcePort: "begin", TargetNode: "F", TargetPort: "execute"},
		{ID: "e-a-b", SourceNode: "A", SourcePort: "out", TargetNode: "B", TargetPort: "a"},
		{ID: "e-a-c", SourceNode: "A", SourcePort: "out", TargetNode: "C", TargetPort: "a"},
		{ID: "e-b-d", SourceNode: "B", SourcePort: "product", TargetNode: "D", TargetPort: "a"},
		{ID: "e-c-d", SourceNode: "C", SourcePort: "sum", TargetNode: "D", TargetPort: "b"},
		{ID: "e-d-f", SourceNode: "D", SourcePort: "sum", TargetNode: "F", TargetPort: "value"},
	}
	g := graph.New(nodes, edges)
	require.NoError(t, g.Bind(reg))

	e := New(g)
	require.NoError(t, e.Start())
	defer e.Stop()

	trace, errs := drainUntilDone(t, e, time.Second)
	assert.Empty(t, errs)

	countA := 0
	for _, id := range trace {
		if id == "A" {
			countA++
		}
	}
	assert.Equal(t, 1, countA, "A must execute exactly once across the diamond")

	idxA, idxB, idxC, idxD, idxF := indexOf(trace, "A"), indexOf(trace, "B"), indexOf(trace, "C"), indexOf(trace, "D"), indexOf(trace, "F")
	assert.Less(t, idxA, idxB)
	assert.Less(t, idxA, idxC)
	assert.Less(t, idxB, idxD)
	assert.Less(t, idxC, idxD)
	assert.Less(t, idxD, idxF)
}

// S3 — Conditional flow: start -> if_else -> {true_handler, false_handler}.
func TestEngine_S3_ConditionalFlow(t *testing.T) {
	reg := newTestRegistry(t)

	nodes := []graph.Node{
		{ID: "start", BrickID: "start"},
		{ID: "cond", BrickID: "if_else", Defaults: map[string]string{"condition": "true"}},
		{ID: "true_handler", BrickID: "print"},
		{ID: "false_handler", BrickID: "print"},
	}
	edges := []graph.Edge{
		{ID: "e1", SourceNode: "start", SourcePort: "begin", TargetNode: "cond", TargetPort: "execute"},
		{ID: "e2", SourceNode: "cond", SourcePort: "true_branch", TargetNode: "true_handler", TargetPort: "execute"},
		{ID: "e3", SourceNode: "cond", SourcePort: "false_branch", TargetNode: "false_handler", TargetPort: "execute"},
	}
	g := graph.New(nodes, edges)
	require.NoError(t, g.Bind(reg))

	e := New(g)
	require.NoError(t, e.Start())
	defer e.Stop()

	trace, errs := drainUntilDone(t, e, time.Second)
	assert.Empty(t, errs)
	assert.Equal(t, []string{"start", "cond", "true_handler"}, trace)

	st, ok := e.State("false_handler")
	require.True(t, ok)
	assert.Equal(t, execution.PhaseWaiting, st.Phase)
}

// S5 — Manual trigger fan-out: firing twice yields two activations,
// each executing the manual trigger then both downstream prints.
func TestEngine_S5_ManualTriggerFanOut(t *testing.T) {
	reg := newTestRegistry(t)

	nodes := []graph.Node{
		{ID: "btn", BrickID: "manual_trigger"},
		{ID: "p1", BrickID: "print"},
		{ID: "p2", BrickID: "print"},
	}
	edges := []graph.Edge{
		{ID: "e1", SourceNode: "btn", SourcePort: "triggered", TargetNode: "p1", TargetPort: "execute"},
		{ID: "e2", SourceNode: "btn", SourcePort: "triggered", TargetNode: "p2", TargetPort: "execute"},
	}
	g := graph.New(nodes, edges)
	require.NoError(t, g.Bind(reg))

	e := New(g)
	require.NoError(t, e.Start())
	defer e.Stop()

	mc, ok := e.contexts["btn"]
	require.True(t, ok)

	done := make(chan struct{})
	var trace []string
	go func() {
		defer close(done)
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			id, isDone, _ := e.Next()
			if isDone {
				return
			}
			if id != "" {
				trace = append(trace, id)
			}
			if len(trace) >= 6 {
				return
			}
		}
	}()

	trigger := mc.(interface{ Trigger() error })
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, trigger.Trigger())
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, trigger.Trigger())

	<-done
	require.NoError(t, e.Stop())

	count := map[string]int{}
	for _, id := range trace {
		count[id]++
	}
	assert.Equal(t, 2, count["btn"])
	assert.Equal(t, 2, count["p1"])
	assert.Equal(t, 2, count["p2"])
}

// S6 — Missing input produces an isolated per-node error; downstream
// never runs; the engine still terminates. Flow chain start -> A -> B
// where A (if_else) has no condition wired and no default, so it fails
// with MissingInput before it can raise either branch.
func TestEngine_S6_MissingInputIsolatedError(t *testing.T) {
	reg := newTestRegistry(t)

	nodes := []graph.Node{
		{ID: "start", BrickID: "start"},
		{ID: "A", BrickID: "if_else"}, // condition input: no edge, no default
		{ID: "B", BrickID: "print"},
	}
	edges := []graph.Edge{
		{ID: "e1", SourceNode: "start", SourcePort: "begin", TargetNode: "A", TargetPort: "execute"},
		{ID: "e2", SourceNode: "A", SourcePort: "true_branch", TargetNode: "B", TargetPort: "execute"},
	}
	g := graph.New(nodes, edges)
	require.NoError(t, g.Bind(reg))

	e := New(g)
	require.NoError(t, e.Start())
	defer e.Stop()

	trace, errs := drainUntilDone(t, e, time.Second)
	assert.Equal(t, []string{"start", "A"}, trace)
	require.Len(t, errs, 1)

	st, ok := e.State("A")
	require.True(t, ok)
	assert.Equal(t, execution.PhaseErrored, st.Phase)

	st, ok = e.State("B")
	require.True(t, ok)
	assert.Equal(t, execution.PhaseWaiting, st.Phase)
}

// S4 — Timer + print, 500 ms wall time at a 100 ms interval. Expect
// roughly 5 activations of each node, within +/-1 of each other.
func TestEngine_S4_TimerDrivesDownstreamPrint(t *testing.T) {
	reg := newTestRegistry(t)

	nodes := []graph.Node{
		{ID: "clock", BrickID: "timer", Arguments: map[string]string{"interval_ms": "100"}},
		{ID: "sink", BrickID: "print"},
	}
	edges := []graph.Edge{
		{ID: "e1", SourceNode: "clock", SourcePort: "tick", TargetNode: "sink", TargetPort: "execute"},
		{ID: "e2", SourceNode: "clock", SourcePort: "timestamp", TargetNode: "sink", TargetPort: "value"},
	}
	g := graph.New(nodes, edges)
	require.NoError(t, g.Bind(reg))

	e := New(g)
	require.NoError(t, e.Start())
	defer e.Stop()

	var trace []string
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		id, done, err := e.Next()
		require.NoError(t, err)
		if done {
			break
		}
		if id != "" {
			trace = append(trace, id)
		}
	}
	require.NoError(t, e.Stop())

	count := map[string]int{}
	for _, id := range trace {
		count[id]++
	}

	assert.GreaterOrEqual(t, count["clock"], 4)
	assert.LessOrEqual(t, count["clock"], 6)
	assert.GreaterOrEqual(t, count["sink"], 4)
	assert.LessOrEqual(t, count["sink"], 6)
	assert.InDelta(t, count["clock"], count["sink"], 1)
}

// Empty graph: start() then next() immediately returns done (spec.md
// §8 "Boundary behaviors").
func TestEngine_EmptyGraph(t *testing.T) {
	g := graph.New(nil, nil)
	reg := newTestRegistry(t)
	require.NoError(t, g.Bind(reg))

	e := New(g)
	require.NoError(t, e.Start())
	defer e.Stop()

	_, done, err := e.Next()
	assert.True(t, done)
	assert.NoError(t, err)
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
