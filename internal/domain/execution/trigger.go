package execution

// Trigger records one control-flow trigger raised by a flow node's
// callable on one of its declared execution outputs.
type Trigger struct {
	SourceNode string
	OutputID   string
}

// TriggerContext is the engine-local (not goroutine-local — the engine
// runs callables single-threaded per spec.md §4.3/§5) scratch pad a
// callable reads and writes without it being threaded through its
// signature. The engine owns exactly one TriggerContext for the
// lifetime of a run.
type TriggerContext struct {
	currentNodeID string
	eventContext  Context
	raised        []Trigger
}

// NewTriggerContext creates an idle trigger context.
func NewTriggerContext() *TriggerContext {
	return &TriggerContext{eventContext: FlowTriggered()}
}

// BeginNode is called by the engine immediately before invoking a
// callable: it records which node is executing and what event (if any)
// drove this activation.
func (t *TriggerContext) BeginNode(nodeID string, evt Context) {
	t.currentNodeID = nodeID
	t.eventContext = evt
	t.raised = t.raised[:0]
}

// EndNode is called by the engine immediately after a callable returns.
func (t *TriggerContext) EndNode() {
	t.currentNodeID = ""
	t.eventContext = FlowTriggered()
}

// Raise implements brick.CallContext: it appends a trigger for the
// currently-executing node on the named execution output.
func (t *TriggerContext) Raise(executionOutputID string) {
	t.raised = append(t.raised, Trigger{
		SourceNode: t.currentNodeID,
		OutputID:   executionOutputID,
	})
}

// EventContext returns the event payload associated with the current
// activation — read-only to the callable.
func (t *TriggerContext) EventContext() Context {
	return t.eventContext
}

// The Event* accessors below implement brick.CallContext's event
// payload surface by delegating to the active eventContext, letting
// self-emitting bricks read the data their emission context attached
// to this activation without the brick package depending on execution.

func (t *TriggerContext) EventKind() string        { return string(t.eventContext.Kind) }
func (t *TriggerContext) EventTickCount() uint64    { return t.eventContext.TickCount }
func (t *TriggerContext) EventTimestampMs() int64   { return t.eventContext.TimestampMs }
func (t *TriggerContext) EventFilePath() string     { return t.eventContext.FilePath }
func (t *TriggerContext) EventFileKind() string     { return string(t.eventContext.FileKind) }
func (t *TriggerContext) EventHttpMethod() string   { return t.eventContext.HttpMethod }
func (t *TriggerContext) EventHttpPath() string     { return t.eventContext.HttpPath }
func (t *TriggerContext) EventHttpBody() string     { return t.eventContext.HttpBody }

// CurrentNodeID returns the node id the engine most recently began, or
// "" if no node is currently executing.
func (t *TriggerContext) CurrentNodeID() string {
	return t.currentNodeID
}

// DrainTriggers returns and clears all triggers raised since the last
// BeginNode, in raise order. Called by the engine after the callable
// returns (spec.md §4.5 step 6).
func (t *TriggerContext) DrainTriggers() []Trigger {
	out := t.raised
	t.raised = nil
	return out
}
