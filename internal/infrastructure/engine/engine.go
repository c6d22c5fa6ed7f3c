// Package engine implements the single-threaded cooperative scheduler
// of spec.md §4.5: it turns a stream of ExecutionEvents into a
// correctly-ordered stream of node executions, resolving data
// dependencies on demand and propagating control flow.
package engine

import (
	"sync"
	"time"

	"github.com/duragraph/duragraph/internal/domain/brick"
	"github.com/duragraph/duragraph/internal/domain/execution"
	"github.com/duragraph/duragraph/internal/domain/graph"
	"github.com/duragraph/duragraph/internal/infrastructure/emission"
	"github.com/duragraph/duragraph/internal/pkg/errors"
)

// idleSleep bounds the S4 idle-tick sleep (spec.md §4.5: "sleep
// briefly (≤10 ms)").
const idleSleep = 10 * time.Millisecond

// Config customizes engine construction beyond the graph itself.
type Config struct {
	Mode           execution.Mode
	ContextFactory ContextFactory
	SinkCapacity   int
	UpdateBuffer   int
}

func defaultConfig() Config {
	return Config{
		Mode:           execution.ModeNormal,
		ContextFactory: DefaultContextFactory,
		SinkCapacity:   128,
		UpdateBuffer:   256,
	}
}

type queueItem struct {
	nodeID string
	ctx    execution.Context
}

// Engine is the bound scheduler for one graph. It owns all run-local
// state (queues, caches, node states, trigger context, emission
// contexts) exclusively — none of it is ever exposed to callables
// (spec.md §5 "Shared-resource policy").
type Engine struct {
	graph  *graph.Graph
	config Config

	mu              sync.Mutex
	queue           []queueItem
	pendingDataDeps []string
	currentFlow     *queueItem
	cache           map[string][]brick.OutputValue
	states          map[string]execution.NodeState
	contexts        map[string]emission.Context

	trigger *execution.TriggerContext
	sink    *emission.Sink
	updates chan execution.StateUpdate

	started bool
}

// New binds an engine to g with default configuration. Binding has no
// side effects; call Start to begin a run.
func New(g *graph.Graph) *Engine {
	return WithConfig(g, defaultConfig())
}

// WithConfig binds an engine to g with explicit configuration.
func WithConfig(g *graph.Graph, cfg Config) *Engine {
	if cfg.ContextFactory == nil {
		cfg.ContextFactory = DefaultContextFactory
	}
	if cfg.SinkCapacity <= 0 {
		cfg.SinkCapacity = 128
	}
	if cfg.UpdateBuffer <= 0 {
		cfg.UpdateBuffer = 256
	}
	if cfg.Mode == "" {
		cfg.Mode = execution.ModeNormal
	}
	return &Engine{graph: g, config: cfg}
}

// Updates exposes the stream of ExecutionStateUpdate the engine
// publishes for the host's UI (spec.md §6). Updates are best-effort:
// if the buffer is full, the new update is dropped rather than
// blocking the scheduler loop.
func (e *Engine) Updates() <-chan execution.StateUpdate {
	return e.updates
}

// State returns the current NodeState for a node, if known.
func (e *Engine) State(nodeID string) (execution.NodeState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.states[nodeID]
	return s, ok
}

// WebhookContexts returns the active http_webhook emission contexts
// keyed by node id, so the host HTTP server can mount their Handler at
// the node's configured path/method (spec.md §4.4 "host application
// owns the listener").
func (e *Engine) WebhookContexts() map[string]*emission.HttpWebhookContext {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]*emission.HttpWebhookContext)
	for nodeID, c := range e.contexts {
		if hc, ok := c.(*emission.HttpWebhookContext); ok {
			out[nodeID] = hc
		}
	}
	return out
}

// Start (re)initializes the engine: clears caches/queues/states,
// broadcasts every node to Waiting, instantiates and starts emission
// contexts for every self-emitting node, and seeds the flow queue with
// pure start nodes (spec.md §4.5).
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		e.stopContextsLocked()
	}

	e.cache = make(map[string][]brick.OutputValue)
	e.states = make(map[string]execution.NodeState, len(e.graph.Nodes()))
	e.queue = nil
	e.pendingDataDeps = nil
	e.currentFlow = nil
	e.contexts = make(map[string]emission.Context)
	e.trigger = execution.NewTriggerContext()
	e.sink = emission.NewSink(e.config.SinkCapacity)
	e.updates = make(chan execution.StateUpdate, e.config.UpdateBuffer)

	for _, n := range e.graph.Nodes() {
		e.states[n.ID] = execution.NodeState{NodeID: n.ID, Phase: execution.PhaseWaiting}
	}

	for _, n := range e.graph.Nodes() {
		if !n.Brick.IsSelfEmitting() {
			continue
		}
		ctx, err := e.config.ContextFactory(n)
		if err != nil {
			return err
		}
		if err := ctx.Start(n.ID, e.sink); err != nil {
			return err
		}
		e.contexts[n.ID] = ctx
	}

	var pureStarts []string
	for _, n := range e.graph.Nodes() {
		if n.Brick.IsPureStart() {
			pureStarts = append(pureStarts, n.ID)
		}
	}
	starts := pureStarts
	if len(starts) == 0 {
		for _, n := range e.graph.Nodes() {
			if e.graph.IsStartNode(n.ID) && !n.Brick.IsSelfEmitting() {
				starts = append(starts, n.ID)
			}
		}
	}
	for _, id := range starts {
		e.enqueueLocked(id, execution.FlowTriggered())
	}

	e.started = true
	return nil
}

// Enqueue explicitly queues a node for flow execution — used by tests
// or manual/host-driven invocation (spec.md §4.5 public contract).
func (e *Engine) Enqueue(nodeID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enqueueLocked(nodeID, execution.FlowTriggered())
}

func (e *Engine) enqueueLocked(nodeID string, ctx execution.Context) {
	e.queue = append(e.queue, queueItem{nodeID: nodeID, ctx: ctx})
	st := e.states[nodeID]
	st.NodeID = nodeID
	st.Phase = execution.PhaseQueued
	e.states[nodeID] = st
}

// Next advances the scheduler by one step (spec.md §4.5 micro-state
// machine S0–S5). done==true means no more work and no active emission
// contexts (the Rust "None"); a zero-value id with done==false and
// err==nil is an idle tick ("" per spec, callers may sleep briefly and
// retry); otherwise id names the node that just executed, with err set
// on a per-node fault.
func (e *Engine) Next() (id string, done bool, err error) {
	for {
		e.drainEvents()

		e.mu.Lock()
		switch {
		case len(e.pendingDataDeps) > 0:
			nodeID := e.pendingDataDeps[0]
			e.pendingDataDeps = e.pendingDataDeps[1:]
			e.mu.Unlock()

			if _, cached := e.cachedOutputs(nodeID); cached {
				continue
			}
			e.setPhase(nodeID, execution.PhaseQueued, "", 0, nil)
			execID, execErr := e.executeNode(nodeID, execution.FlowTriggered())
			return execID, false, execErr

		case e.currentFlow != nil:
			item := *e.currentFlow
			e.currentFlow = nil
			e.mu.Unlock()

			execID, execErr := e.executeNode(item.nodeID, item.ctx)
			e.propagateTriggers(item.nodeID, execErr)
			return execID, false, execErr

		case len(e.queue) > 0:
			item := e.queue[0]
			e.queue = e.queue[1:]
			deps := resolveDataDeps(e.graph, item.nodeID, e.cache)
			e.pendingDataDeps = deps
			e.currentFlow = &item
			e.mu.Unlock()
			continue

		default:
			active := e.anyContextActiveLocked()
			e.mu.Unlock()
			if active {
				time.Sleep(idleSleep)
				return "", false, nil
			}
			return "", true, nil
		}
	}
}

func (e *Engine) cachedOutputs(nodeID string) ([]brick.OutputValue, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.cache[nodeID]
	return v, ok
}

func (e *Engine) anyContextActiveLocked() bool {
	for _, c := range e.contexts {
		if c.IsActive() {
			return true
		}
	}
	return false
}

func (e *Engine) drainEvents() {
	if e.sink == nil {
		return
	}
	for {
		select {
		case evt := <-e.sink.Events():
			e.mu.Lock()
			e.enqueueLocked(evt.NodeID, execution.ContextFromEvent(evt))
			e.mu.Unlock()
		default:
			return
		}
	}
}

// executeNode runs the "Flow execution step" of spec.md §4.5 steps
// 1-5 for any node — data dependency or flow node alike, since both
// follow the same materialize/invoke/cache/transition sequence. Step 6
// (trigger propagation) is handled separately by the caller, which
// knows whether this was a flow activation.
func (e *Engine) executeNode(nodeID string, ctx execution.Context) (string, error) {
	n, ok := e.graph.FindByID(nodeID)
	if !ok {
		return nodeID, errors.UnknownNode(nodeID)
	}
	if n.Brick == nil {
		return nodeID, errors.UnknownBrick(n.BrickID)
	}

	e.setPhase(nodeID, execution.PhaseRunning, "", 0, nil)
	start := time.Now()

	args := e.materializeArgs(n)
	inputs, err := e.materializeInputs(n)
	if err != nil {
		e.fail(nodeID, err, start)
		return nodeID, err
	}

	e.trigger.BeginNode(nodeID, ctx)
	outputs, callErr := e.invoke(n.Brick.Execute, args, inputs)
	e.trigger.EndNode()

	if callErr != nil {
		e.fail(nodeID, callErr, start)
		return nodeID, callErr
	}

	e.mu.Lock()
	e.cache[nodeID] = outputs
	e.mu.Unlock()

	elapsed := time.Since(start).Milliseconds()
	e.setPhase(nodeID, execution.PhaseCompleted, "", elapsed, outputs)
	return nodeID, nil
}

// invoke runs the callable inside a fault barrier: a panic is turned
// into an ExecutionPanic error rather than crashing the engine
// (spec.md §4.5 step 4).
func (e *Engine) invoke(fn brick.Callable, args []brick.ArgValue, inputs []brick.InputValue) (outputs []brick.OutputValue, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.ExecutionPanic(e.trigger.CurrentNodeID(), r)
		}
	}()
	return fn(e.trigger, args, inputs)
}

// fail marks a node Errored. Any triggers it raised before the fault
// stay undrained and are silently overwritten by the next node's
// BeginNode, which is how they are discarded (spec.md §7 "Per-node
// errors ... discard any triggers").
func (e *Engine) fail(nodeID string, err error, start time.Time) {
	elapsed := time.Since(start).Milliseconds()
	e.setPhase(nodeID, execution.PhaseErrored, err.Error(), elapsed, nil)
}

func (e *Engine) setPhase(nodeID string, phase execution.Phase, errMsg string, elapsedMs int64, outputs []brick.OutputValue) {
	e.mu.Lock()
	st := e.states[nodeID]
	st.NodeID = nodeID
	st.Phase = phase
	st.ErrorMessage = errMsg
	st.ElapsedMs = elapsedMs
	if outputs != nil {
		lo := make(map[string]string, len(outputs))
		for _, o := range outputs {
			lo[o.ID] = o.Value
		}
		st.LastOutputs = lo
	}
	e.states[nodeID] = st
	updates := e.updates
	mode := e.config.Mode
	e.mu.Unlock()

	if updates == nil {
		return
	}
	select {
	case updates <- execution.StateUpdate{NodeID: nodeID, State: st, ExecutionMode: mode}:
	default:
		// Best-effort stream; a slow consumer does not block the
		// scheduler.
	}
}

// propagateTriggers implements step 6 of the flow execution step: for
// every trigger the just-executed flow node raised, enqueue every
// control-flow edge target in raise order. A failed activation raises
// no downstream flow (its triggers were discarded in fail()).
func (e *Engine) propagateTriggers(nodeID string, execErr error) {
	if execErr != nil {
		return
	}
	triggers := e.trigger.DrainTriggers()
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, t := range triggers {
		for _, edge := range e.graph.NeighborsByExecutionOutput(t.SourceNode, t.OutputID) {
			e.enqueueLocked(edge.TargetNode, execution.FlowTriggered())
		}
	}
}

// materializeArgs implements step 2 of the flow execution step.
func (e *Engine) materializeArgs(n graph.Node) []brick.ArgValue {
	args := make([]brick.ArgValue, 0, len(n.Brick.Arguments))
	for _, a := range n.Brick.Arguments {
		v, ok := n.Arguments[a.ID]
		if !ok {
			if a.Default != nil {
				v = *a.Default
			} else {
				v = ""
			}
		}
		args = append(args, brick.ArgValue{ID: a.ID, Value: v})
	}
	return args
}

// materializeInputs implements step 3 of the flow execution step.
func (e *Engine) materializeInputs(n graph.Node) ([]brick.InputValue, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	inputs := make([]brick.InputValue, 0, len(n.Brick.Inputs))
	for _, in := range n.Brick.Inputs {
		v, found := e.resolveInputLocked(n, in)
		if !found {
			return nil, errors.MissingInput(n.ID, in.ID)
		}
		inputs = append(inputs, brick.InputValue{ID: in.ID, Value: v})
	}
	return inputs, nil
}

func (e *Engine) resolveInputLocked(n graph.Node, in brick.Input) (string, bool) {
	if edge, ok := e.graph.IncomingDataEdge(n.ID, in.ID); ok {
		if outs, cached := e.cache[edge.SourceNode]; cached {
			for _, o := range outs {
				if o.ID == edge.SourcePort {
					return o.Value, true
				}
			}
		}
	}
	if v, ok := n.Defaults[in.ID]; ok {
		return v, true
	}
	if in.Default != nil {
		return *in.Default, true
	}
	return "", false
}

// Stop halts all active emission contexts and releases the event
// channel. Idempotent; equivalent to the Rust original's Drop impl.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopContextsLocked()
	return nil
}

func (e *Engine) stopContextsLocked() {
	for _, c := range e.contexts {
		c.Stop()
	}
	if e.sink != nil {
		e.sink.Close()
	}
}
