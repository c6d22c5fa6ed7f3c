package bricks

import (
	"github.com/duragraph/duragraph/internal/domain/brick"
	"github.com/duragraph/duragraph/internal/domain/value"
)

// controlFlowBricks mirrors start/if_else from the source repo's
// control_flow.rs: start has a single execution output and no input
// (the canonical pure start node); if_else raises exactly one of its
// two execution outputs depending on its condition input.
func controlFlowBricks() []*brick.Brick {
	return []*brick.Brick{
		{
			ID:               "start",
			Label:            "Start",
			Description:      "Starts execution flow",
			Category:         "Control Flow",
			ExecutionOutputs: []brick.ExecutionOutput{{ID: "begin", Label: "Begin Execution"}},
			Outputs:          []brick.Output{boolOutput("started", "Started")},
			EmissionType:     brick.FlowTriggered(),
			Execute: func(ctx brick.CallContext, args []brick.ArgValue, inputs []brick.InputValue) ([]brick.OutputValue, error) {
				ctx.Raise("begin")
				return []brick.OutputValue{{ID: "started", Value: value.EncodeBoolean(true)}}, nil
			},
		},
		{
			ID:               "if_else",
			Label:            "If/Else",
			Description:      "Runs the true branch if condition is true, the false branch otherwise",
			Category:         "Control Flow",
			ExecutionInputs:  []brick.ExecutionInput{{ID: "execute", Label: "Execute"}},
			ExecutionOutputs: []brick.ExecutionOutput{{ID: "true_branch", Label: "True"}, {ID: "false_branch", Label: "False"}},
			Inputs:           []brick.Input{boolInput("condition", "Condition")},
			Outputs:          []brick.Output{boolOutput("condition_value", "Condition Value")},
			EmissionType:     brick.FlowTriggered(),
			Execute: func(ctx brick.CallContext, args []brick.ArgValue, inputs []brick.InputValue) ([]brick.OutputValue, error) {
				cond, err := decodeBoolArg(inputs, "condition")
				if err != nil {
					return nil, err
				}
				if cond {
					ctx.Raise("true_branch")
				} else {
					ctx.Raise("false_branch")
				}
				return []brick.OutputValue{{ID: "condition_value", Value: value.EncodeBoolean(cond)}}, nil
			},
		},
	}
}
