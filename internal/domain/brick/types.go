// Package brick defines the brick descriptor: the immutable metadata and
// opaque executable callable describing one visual-programming computation
// unit, together with its typed input/argument/output/execution-port
// surface.
package brick

import (
	"fmt"

	"github.com/duragraph/duragraph/internal/pkg/errors"
)

// ValueKind is one of the four primitive wire types, plus the Flow port
// kind used exclusively by execution ports.
type ValueKind string

const (
	KindString  ValueKind = "string"
	KindNumber  ValueKind = "number"
	KindBoolean ValueKind = "boolean"
	KindEnum    ValueKind = "enum"
	KindFlow    ValueKind = "flow"
)

func (k ValueKind) Valid() bool {
	switch k {
	case KindString, KindNumber, KindBoolean, KindEnum, KindFlow:
		return true
	}
	return false
}

// Compatible reports whether a value edge may connect a port of kind
// `from` to a port of kind `to`. Same-kind is always compatible; Enum
// sources may additionally widen into String targets, and Enum targets
// accept String sources (the runtime value is compared as a string).
func Compatible(from, to ValueKind) bool {
	if from == to {
		return true
	}
	if from == KindEnum && to == KindString {
		return true
	}
	if from == KindString && to == KindEnum {
		return true
	}
	return false
}

// Argument is ordered, authoring-time configuration on a node instance.
// Arguments are never wired by edges.
type Argument struct {
	ID          string
	Label       string
	Kind        ValueKind
	EnumOptions []string
	Default     *string
}

// Input receives a value via a data edge, a per-node override, or falls
// back to its declared default.
type Input struct {
	ID      string
	Label   string
	Kind    ValueKind
	Default *string
}

// Output is a named, typed value produced by a brick's execution.
type Output struct {
	ID    string
	Label string
	Kind  ValueKind
}

// ExecutionInput is a control-flow entry port.
type ExecutionInput struct {
	ID    string
	Label string
}

// ExecutionOutput is a control-flow exit port.
type ExecutionOutput struct {
	ID    string
	Label string
}

// EmissionKind distinguishes flow-triggered bricks from self-emitting
// bricks driven by an independent emission context.
type EmissionKind string

const (
	EmissionFlowTriggered EmissionKind = "flow_triggered"
	EmissionTimer         EmissionKind = "timer"
	EmissionManualTrigger EmissionKind = "manual_trigger"
	EmissionFileWatcher   EmissionKind = "file_watcher"
	EmissionHttpWebhook   EmissionKind = "http_webhook"
)

// EmissionType carries the discriminator plus whatever configuration
// defaults that emission kind declares. New variants are added here
// without touching the engine: the engine only needs EmissionContext
// implementations (see internal/infrastructure/emission) keyed by Kind.
type EmissionType struct {
	Kind EmissionKind

	// DefaultIntervalMs is used by EmissionTimer.
	DefaultIntervalMs uint32

	// DefaultPattern is used by EmissionFileWatcher.
	DefaultPattern string

	// DefaultPath / DefaultMethod are used by EmissionHttpWebhook.
	DefaultPath   string
	DefaultMethod string
}

func FlowTriggered() EmissionType { return EmissionType{Kind: EmissionFlowTriggered} }

// ArgValue and friends are JSON-encoded-text (id, value) pairs passed to
// and returned from a brick's callable. The engine never inspects the
// contents of Value — it is opaque JSON text by contract.
type ArgValue struct {
	ID    string
	Value string
}

type InputValue struct {
	ID    string
	Value string
}

type OutputValue struct {
	ID    string
	Value string
}

// Callable is the brick's single entry point. It receives materialized
// argument and input values (one per declared port, in declaration
// order) and returns exactly the declared set of outputs. It may read
// the active event payload and raise execution triggers through the
// trigger context passed to it; see internal/domain/execution.
type Callable func(ctx CallContext, args []ArgValue, inputs []InputValue) ([]OutputValue, error)

// CallContext is the minimal surface a Callable needs from the trigger
// context, kept as an interface here so the brick package has no
// dependency on internal/domain/execution. The Event* accessors expose
// the payload of the ExecutionEvent that caused this activation (zero
// values for an ordinary flow-triggered activation) — self-emitting
// bricks (timer, manual_trigger, file_watcher, http_webhook) read these
// to produce their outputs.
type CallContext interface {
	// Raise records a trigger on the named execution output of the
	// currently-executing node.
	Raise(executionOutputID string)

	EventKind() string
	EventTickCount() uint64
	EventTimestampMs() int64
	EventFilePath() string
	EventFileKind() string
	EventHttpMethod() string
	EventHttpPath() string
	EventHttpBody() string
}

// Brick is the immutable descriptor of one computation unit, registered
// once for the life of the process.
type Brick struct {
	ID          string
	Label       string
	Description string
	Category    string
	Keywords    []string

	Arguments       []Argument
	Inputs          []Input
	Outputs         []Output
	ExecutionInputs []ExecutionInput
	ExecutionOutputs []ExecutionOutput

	EmissionType EmissionType
	Execute      Callable
}

// IsDataNode reports whether the brick has no execution ports at all —
// such a node participates only in the data subgraph.
func (b *Brick) IsDataNode() bool {
	return len(b.ExecutionInputs) == 0 && len(b.ExecutionOutputs) == 0
}

// IsSelfEmitting reports whether this brick's emission type is anything
// other than FlowTriggered.
func (b *Brick) IsSelfEmitting() bool {
	return b.EmissionType.Kind != EmissionFlowTriggered
}

// IsPureStart reports whether this brick has execution outputs but no
// execution inputs and is flow-triggered — the "pure start node" rule
// the engine uses to seed its initial flow queue.
func (b *Brick) IsPureStart() bool {
	return !b.IsSelfEmitting() && len(b.ExecutionOutputs) > 0 && len(b.ExecutionInputs) == 0
}

func (b *Brick) findInput(id string) (Input, bool) {
	for _, in := range b.Inputs {
		if in.ID == id {
			return in, true
		}
	}
	return Input{}, false
}

func (b *Brick) findOutput(id string) (Output, bool) {
	for _, out := range b.Outputs {
		if out.ID == id {
			return out, true
		}
	}
	return Output{}, false
}

func (b *Brick) findArgument(id string) (Argument, bool) {
	for _, a := range b.Arguments {
		if a.ID == id {
			return a, true
		}
	}
	return Argument{}, false
}

// HasExecutionInput reports whether the brick declares an execution
// input with the given port id.
func (b *Brick) HasExecutionInput(id string) bool {
	for _, in := range b.ExecutionInputs {
		if in.ID == id {
			return true
		}
	}
	return false
}

// HasExecutionOutput reports whether the brick declares an execution
// output with the given port id.
func (b *Brick) HasExecutionOutput(id string) bool {
	for _, out := range b.ExecutionOutputs {
		if out.ID == id {
			return true
		}
	}
	return false
}

// Validate checks the invariants of §4.1: port ids unique within the
// brick, and (if emission type is not FlowTriggered) no execution
// inputs declared.
func (b *Brick) Validate() error {
	if b.ID == "" {
		return errors.InvalidInput("brick.id", "brick id is required")
	}
	if b.Execute == nil {
		return errors.InvalidInput("brick.execute", "brick must declare a callable")
	}

	seen := make(map[string]string)
	check := func(kind, id string) error {
		if id == "" {
			return errors.InvalidInput("brick.port.id", fmt.Sprintf("%s port id must not be empty", kind))
		}
		if prior, ok := seen[id]; ok {
			return errors.InvalidInput("brick.port.id", fmt.Sprintf("duplicate port id %q (%s and %s)", id, prior, kind))
		}
		seen[id] = kind
		return nil
	}

	for _, a := range b.Arguments {
		if err := check("argument", a.ID); err != nil {
			return err
		}
		if !a.Kind.Valid() || a.Kind == KindFlow {
			return errors.InvalidInput("brick.argument.kind", fmt.Sprintf("argument %q has invalid kind", a.ID))
		}
	}
	for _, in := range b.Inputs {
		if err := check("input", in.ID); err != nil {
			return err
		}
		if !in.Kind.Valid() || in.Kind == KindFlow {
			return errors.InvalidInput("brick.input.kind", fmt.Sprintf("input %q has invalid kind", in.ID))
		}
	}
	for _, out := range b.Outputs {
		if err := check("output", out.ID); err != nil {
			return err
		}
		if !out.Kind.Valid() || out.Kind == KindFlow {
			return errors.InvalidInput("brick.output.kind", fmt.Sprintf("output %q has invalid kind", out.ID))
		}
	}
	for _, in := range b.ExecutionInputs {
		if err := check("execution_input", in.ID); err != nil {
			return err
		}
	}
	for _, out := range b.ExecutionOutputs {
		if err := check("execution_output", out.ID); err != nil {
			return err
		}
	}

	if b.IsSelfEmitting() && len(b.ExecutionInputs) > 0 {
		return errors.InvalidInput("brick.execution_inputs", "a self-emitting brick must declare no execution inputs")
	}

	return nil
}
