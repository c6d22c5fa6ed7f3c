package bricks

import (
	"github.com/duragraph/duragraph/internal/domain/brick"
	"github.com/duragraph/duragraph/internal/domain/value"
)

func boolInput(id, label string) brick.Input {
	return brick.Input{ID: id, Label: label, Kind: brick.KindBoolean}
}

func boolOutput(id, label string) brick.Output {
	return brick.Output{ID: id, Label: label, Kind: brick.KindBoolean}
}

func decodeBoolArg(inputs []brick.InputValue, id string) (bool, error) {
	for _, in := range inputs {
		if in.ID == id {
			return value.DecodeBoolean(in.Value)
		}
	}
	return value.DecodeBoolean("false")
}

func booleanBricks() []*brick.Brick {
	return []*brick.Brick{
		{
			ID:          "and",
			Label:       "And",
			Description: "Logical AND of two booleans",
			Category:    "Boolean Logic",
			Inputs:      []brick.Input{boolInput("a", "A"), boolInput("b", "B")},
			Outputs:     []brick.Output{boolOutput("result", "A AND B")},
			EmissionType: brick.FlowTriggered(),
			Execute: func(ctx brick.CallContext, args []brick.ArgValue, inputs []brick.InputValue) ([]brick.OutputValue, error) {
				a, err := decodeBoolArg(inputs, "a")
				if err != nil {
					return nil, err
				}
				b, err := decodeBoolArg(inputs, "b")
				if err != nil {
					return nil, err
				}
				return []brick.OutputValue{{ID: "result", Value: value.EncodeBoolean(a && b)}}, nil
			},
		},
		{
			ID:          "or",
			Label:       "Or",
			Description: "Logical OR of two booleans",
			Category:    "Boolean Logic",
			Inputs:      []brick.Input{boolInput("a", "A"), boolInput("b", "B")},
			Outputs:     []brick.Output{boolOutput("result", "A OR B")},
			EmissionType: brick.FlowTriggered(),
			Execute: func(ctx brick.CallContext, args []brick.ArgValue, inputs []brick.InputValue) ([]brick.OutputValue, error) {
				a, err := decodeBoolArg(inputs, "a")
				if err != nil {
					return nil, err
				}
				b, err := decodeBoolArg(inputs, "b")
				if err != nil {
					return nil, err
				}
				return []brick.OutputValue{{ID: "result", Value: value.EncodeBoolean(a || b)}}, nil
			},
		},
		{
			ID:          "not",
			Label:       "Not",
			Description: "Logical negation",
			Category:    "Boolean Logic",
			Inputs:      []brick.Input{boolInput("a", "A")},
			Outputs:     []brick.Output{boolOutput("result", "NOT A")},
			EmissionType: brick.FlowTriggered(),
			Execute: func(ctx brick.CallContext, args []brick.ArgValue, inputs []brick.InputValue) ([]brick.OutputValue, error) {
				a, err := decodeBoolArg(inputs, "a")
				if err != nil {
					return nil, err
				}
				return []brick.OutputValue{{ID: "result", Value: value.EncodeBoolean(!a)}}, nil
			},
		},
		{
			ID:          "xor",
			Label:       "Xor",
			Description: "Logical exclusive-or of two booleans",
			Category:    "Boolean Logic",
			Inputs:      []brick.Input{boolInput("a", "A"), boolInput("b", "B")},
			Outputs:     []brick.Output{boolOutput("result", "A XOR B")},
			EmissionType: brick.FlowTriggered(),
			Execute: func(ctx brick.CallContext, args []brick.ArgValue, inputs []brick.InputValue) ([]brick.OutputValue, error) {
				a, err := decodeBoolArg(inputs, "a")
				if err != nil {
					return nil, err
				}
				b, err := decodeBoolArg(inputs, "b")
				if err != nil {
					return nil, err
				}
				return []brick.OutputValue{{ID: "result", Value: value.EncodeBoolean(a != b)}}, nil
			},
		},
	}
}
