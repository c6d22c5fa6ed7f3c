package bricks

import (
	"github.com/duragraph/duragraph/internal/domain/brick"
	"github.com/duragraph/duragraph/internal/domain/value"
)

func strPtr(s string) *string { return &s }

func constantBricks() []*brick.Brick {
	return []*brick.Brick{
		{
			ID:          "const_string",
			Label:       "String constant",
			Description: "Outputs a constant string",
			Category:    "Constants",
			Arguments:   []brick.Argument{{ID: "value", Label: "Value", Kind: brick.KindString, Default: strPtr("")}},
			Outputs:     []brick.Output{{ID: "out", Label: "Value", Kind: brick.KindString}},
			EmissionType: brick.FlowTriggered(),
			Execute: func(ctx brick.CallContext, args []brick.ArgValue, inputs []brick.InputValue) ([]brick.OutputValue, error) {
				v := argValue(args, "value")
				return []brick.OutputValue{{ID: "out", Value: value.EncodeString(v)}}, nil
			},
		},
		{
			ID:          "const_number",
			Label:       "Number constant",
			Description: "Outputs a constant number",
			Category:    "Constants",
			Arguments:   []brick.Argument{{ID: "value", Label: "Value", Kind: brick.KindNumber, Default: strPtr("0")}},
			Outputs:     []brick.Output{{ID: "out", Label: "Value", Kind: brick.KindNumber}},
			EmissionType: brick.FlowTriggered(),
			Execute: func(ctx brick.CallContext, args []brick.ArgValue, inputs []brick.InputValue) ([]brick.OutputValue, error) {
				f, err := value.DecodeNumber(argValue(args, "value"))
				if err != nil {
					return nil, err
				}
				return []brick.OutputValue{{ID: "out", Value: value.EncodeNumber(f)}}, nil
			},
		},
		{
			ID:          "const_boolean",
			Label:       "Boolean constant",
			Description: "Outputs a constant boolean",
			Category:    "Constants",
			Arguments:   []brick.Argument{{ID: "value", Label: "Value", Kind: brick.KindBoolean, Default: strPtr("false")}},
			Outputs:     []brick.Output{{ID: "out", Label: "Value", Kind: brick.KindBoolean}},
			EmissionType: brick.FlowTriggered(),
			Execute: func(ctx brick.CallContext, args []brick.ArgValue, inputs []brick.InputValue) ([]brick.OutputValue, error) {
				b, err := value.DecodeBoolean(argValue(args, "value"))
				if err != nil {
					return nil, err
				}
				return []brick.OutputValue{{ID: "out", Value: value.EncodeBoolean(b)}}, nil
			},
		},
	}
}

func argValue(args []brick.ArgValue, id string) string {
	for _, a := range args {
		if a.ID == id {
			return a.Value
		}
	}
	return ""
}
