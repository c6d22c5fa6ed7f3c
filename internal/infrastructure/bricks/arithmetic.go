// Package bricks holds the built-in brick packs: pure data bricks
// (arithmetic, boolean logic, constants), flow-control bricks (start,
// if_else), a debug sink (print), and the self-emitting bricks wired to
// internal/infrastructure/emission (timer, manual trigger, file
// watcher, http webhook). RegisterAll wires every pack into a registry
// at process startup (spec.md §6 "Bricks are registered in-process at
// startup").
package bricks

import (
	"github.com/duragraph/duragraph/internal/domain/brick"
	"github.com/duragraph/duragraph/internal/domain/value"
)

func numberInput(id, label string) brick.Input {
	return brick.Input{ID: id, Label: label, Kind: brick.KindNumber}
}

func numberOutput(id, label string) brick.Output {
	return brick.Output{ID: id, Label: label, Kind: brick.KindNumber}
}

func decodeNumberArg(inputs []brick.InputValue, id string) (float64, error) {
	for _, in := range inputs {
		if in.ID == id {
			return value.DecodeNumber(in.Value)
		}
	}
	return value.DecodeNumber("0")
}

func arithmeticBricks() []*brick.Brick {
	return []*brick.Brick{
		{
			ID:          "add",
			Label:       "Add",
			Description: "Adds two numbers",
			Category:    "Arithmetic",
			Inputs:      []brick.Input{numberInput("a", "A"), numberInput("b", "B")},
			Outputs:     []brick.Output{numberOutput("sum", "A + B")},
			EmissionType: brick.FlowTriggered(),
			Execute: func(ctx brick.CallContext, args []brick.ArgValue, inputs []brick.InputValue) ([]brick.OutputValue, error) {
				a, err := decodeNumberArg(inputs, "a")
				if err != nil {
					return nil, err
				}
				b, err := decodeNumberArg(inputs, "b")
				if err != nil {
					return nil, err
				}
				return []brick.OutputValue{{ID: "sum", Value: value.EncodeNumber(a + b)}}, nil
			},
		},
		{
			ID:          "subtract",
			Label:       "Subtract",
			Description: "Subtracts B from A",
			Category:    "Arithmetic",
			Inputs:      []brick.Input{numberInput("a", "A"), numberInput("b", "B")},
			Outputs:     []brick.Output{numberOutput("difference", "A - B")},
			EmissionType: brick.FlowTriggered(),
			Execute: func(ctx brick.CallContext, args []brick.ArgValue, inputs []brick.InputValue) ([]brick.OutputValue, error) {
				a, err := decodeNumberArg(inputs, "a")
				if err != nil {
					return nil, err
				}
				b, err := decodeNumberArg(inputs, "b")
				if err != nil {
					return nil, err
				}
				return []brick.OutputValue{{ID: "difference", Value: value.EncodeNumber(a - b)}}, nil
			},
		},
		{
			ID:          "multiply",
			Label:       "Multiply",
			Description: "Multiplies two numbers",
			Category:    "Arithmetic",
			Inputs:      []brick.Input{numberInput("a", "A"), numberInput("b", "B")},
			Outputs:     []brick.Output{numberOutput("product", "A * B")},
			EmissionType: brick.FlowTriggered(),
			Execute: func(ctx brick.CallContext, args []brick.ArgValue, inputs []brick.InputValue) ([]brick.OutputValue, error) {
				a, err := decodeNumberArg(inputs, "a")
				if err != nil {
					return nil, err
				}
				b, err := decodeNumberArg(inputs, "b")
				if err != nil {
					return nil, err
				}
				return []brick.OutputValue{{ID: "product", Value: value.EncodeNumber(a * b)}}, nil
			},
		},
		{
			ID:          "divide",
			Label:       "Divide",
			Description: "Divides A by B",
			Category:    "Arithmetic",
			Inputs:      []brick.Input{numberInput("a", "A"), numberInput("b", "B")},
			Outputs:     []brick.Output{numberOutput("quotient", "A / B")},
			EmissionType: brick.FlowTriggered(),
			Execute: func(ctx brick.CallContext, args []brick.ArgValue, inputs []brick.InputValue) ([]brick.OutputValue, error) {
				a, err := decodeNumberArg(inputs, "a")
				if err != nil {
					return nil, err
				}
				b, err := decodeNumberArg(inputs, "b")
				if err != nil {
					return nil, err
				}
				return []brick.OutputValue{{ID: "quotient", Value: value.EncodeNumber(value.Divide(a, b))}}, nil
			},
		},
		{
			ID:          "modulo",
			Label:       "Modulo",
			Description: "Remainder of A divided by B",
			Category:    "Arithmetic",
			Inputs:      []brick.Input{numberInput("a", "A"), numberInput("b", "B")},
			Outputs:     []brick.Output{numberOutput("remainder", "A % B")},
			EmissionType: brick.FlowTriggered(),
			Execute: func(ctx brick.CallContext, args []brick.ArgValue, inputs []brick.InputValue) ([]brick.OutputValue, error) {
				a, err := decodeNumberArg(inputs, "a")
				if err != nil {
					return nil, err
				}
				b, err := decodeNumberArg(inputs, "b")
				if err != nil {
					return nil, err
				}
				return []brick.OutputValue{{ID: "remainder", Value: value.EncodeNumber(value.Modulo(a, b))}}, nil
			},
		},
	}
}
