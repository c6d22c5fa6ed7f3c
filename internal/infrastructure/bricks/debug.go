package bricks

import (
	"log/slog"

	"github.com/duragraph/duragraph/internal/domain/brick"
)

// debugBricks mirrors debug.rs's print brick: a terminal flow node
// (execution input, no execution output) that logs its input value.
func debugBricks() []*brick.Brick {
	return []*brick.Brick{
		{
			ID:              "print",
			Label:           "Print",
			Description:     "Logs the input value for debugging purposes",
			Category:        "Debug",
			ExecutionInputs: []brick.ExecutionInput{{ID: "execute", Label: "Execute"}},
			Inputs:          []brick.Input{{ID: "value", Label: "Value", Kind: brick.KindString, Default: strPtr("")}},
			EmissionType:    brick.FlowTriggered(),
			Execute: func(ctx brick.CallContext, args []brick.ArgValue, inputs []brick.InputValue) ([]brick.OutputValue, error) {
				v := ""
				for _, in := range inputs {
					if in.ID == "value" {
						v = in.Value
					}
				}
				slog.Info("debug print", "value", v)
				return nil, nil
			},
		},
	}
}
