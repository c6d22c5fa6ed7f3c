package dto

import "github.com/duragraph/duragraph/internal/domain/brick"

// PortDescriptor is the wire shape for any of a brick's typed ports.
type PortDescriptor struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Kind        string   `json:"kind,omitempty"`
	EnumOptions []string `json:"enum_options,omitempty"`
	Default     *string  `json:"default,omitempty"`
}

// BrickDescriptor is the wire shape for one registered brick.
type BrickDescriptor struct {
	ID              string           `json:"id"`
	Label           string           `json:"label"`
	Description     string           `json:"description,omitempty"`
	Category        string           `json:"category,omitempty"`
	Keywords        []string         `json:"keywords,omitempty"`
	Arguments       []PortDescriptor `json:"arguments,omitempty"`
	Inputs          []PortDescriptor `json:"inputs,omitempty"`
	Outputs         []PortDescriptor `json:"outputs,omitempty"`
	ExecutionInputs []PortDescriptor `json:"execution_inputs,omitempty"`
	ExecutionOutputs []PortDescriptor `json:"execution_outputs,omitempty"`
	EmissionKind    string           `json:"emission_kind"`
	IsDataNode      bool             `json:"is_data_node"`
	IsPureStart     bool             `json:"is_pure_start"`
}

// ToBrickDescriptor projects a registered Brick into its wire shape.
func ToBrickDescriptor(b *brick.Brick) BrickDescriptor {
	args := make([]PortDescriptor, 0, len(b.Arguments))
	for _, a := range b.Arguments {
		args = append(args, PortDescriptor{ID: a.ID, Label: a.Label, Kind: string(a.Kind), EnumOptions: a.EnumOptions, Default: a.Default})
	}
	inputs := make([]PortDescriptor, 0, len(b.Inputs))
	for _, in := range b.Inputs {
		inputs = append(inputs, PortDescriptor{ID: in.ID, Label: in.Label, Kind: string(in.Kind), Default: in.Default})
	}
	outputs := make([]PortDescriptor, 0, len(b.Outputs))
	for _, o := range b.Outputs {
		outputs = append(outputs, PortDescriptor{ID: o.ID, Label: o.Label, Kind: string(o.Kind)})
	}
	execIn := make([]PortDescriptor, 0, len(b.ExecutionInputs))
	for _, ei := range b.ExecutionInputs {
		execIn = append(execIn, PortDescriptor{ID: ei.ID, Label: ei.Label})
	}
	execOut := make([]PortDescriptor, 0, len(b.ExecutionOutputs))
	for _, eo := range b.ExecutionOutputs {
		execOut = append(execOut, PortDescriptor{ID: eo.ID, Label: eo.Label})
	}

	return BrickDescriptor{
		ID:               b.ID,
		Label:            b.Label,
		Description:      b.Description,
		Category:         b.Category,
		Keywords:         b.Keywords,
		Arguments:        args,
		Inputs:           inputs,
		Outputs:          outputs,
		ExecutionInputs:  execIn,
		ExecutionOutputs: execOut,
		EmissionKind:     string(b.EmissionType.Kind),
		IsDataNode:       b.IsDataNode(),
		IsPureStart:      b.IsPureStart(),
	}
}
