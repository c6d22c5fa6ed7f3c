package bricks

import (
	"github.com/duragraph/duragraph/internal/domain/brick"
	"github.com/duragraph/duragraph/internal/domain/value"
)

// selfEmittingBricks declares the descriptors whose emission_type is
// not FlowTriggered. The engine never executes these via the flow
// queue directly; their internal/infrastructure/emission.Context fires
// an event, which the engine's event-drain step (S0) converts into a
// queued flow activation the same way any other flow node is executed
// (spec.md §4.4, §9 "adding a new variant requires ... (c) a new brick
// declaring that emission_type").
func selfEmittingBricks() []*brick.Brick {
	return []*brick.Brick{
		{
			ID:               "timer",
			Label:            "Timer",
			Description:      "Fires on a fixed interval",
			Category:         "Events",
			Arguments:        []brick.Argument{{ID: "interval_ms", Label: "Interval (ms)", Kind: brick.KindNumber, Default: strPtr("1000")}},
			ExecutionOutputs: []brick.ExecutionOutput{{ID: "tick", Label: "Tick"}},
			Outputs: []brick.Output{
				numberOutput("tick_count", "Tick Count"),
				numberOutput("timestamp", "Timestamp (ms)"),
			},
			EmissionType: brick.EmissionType{Kind: brick.EmissionTimer, DefaultIntervalMs: 1000},
			Execute: func(ctx brick.CallContext, args []brick.ArgValue, inputs []brick.InputValue) ([]brick.OutputValue, error) {
				ctx.Raise("tick")
				return []brick.OutputValue{
					{ID: "tick_count", Value: value.EncodeNumber(float64(ctx.EventTickCount()))},
					{ID: "timestamp", Value: value.EncodeNumber(float64(ctx.EventTimestampMs()))},
				}, nil
			},
		},
		{
			ID:               "manual_trigger",
			Label:            "Manual Trigger",
			Description:      "Fires when externally triggered (HTTP, CLI, or UI button)",
			Category:         "Events",
			ExecutionOutputs: []brick.ExecutionOutput{{ID: "triggered", Label: "Triggered"}},
			Outputs:          []brick.Output{numberOutput("timestamp", "Timestamp (ms)")},
			EmissionType:     brick.EmissionType{Kind: brick.EmissionManualTrigger},
			Execute: func(ctx brick.CallContext, args []brick.ArgValue, inputs []brick.InputValue) ([]brick.OutputValue, error) {
				ctx.Raise("triggered")
				return []brick.OutputValue{{ID: "timestamp", Value: value.EncodeNumber(float64(ctx.EventTimestampMs()))}}, nil
			},
		},
		{
			ID:               "file_watcher",
			Label:            "File Watcher",
			Description:      "Fires when a watched file changes",
			Category:         "Events",
			Arguments:        []brick.Argument{{ID: "path", Label: "Path", Kind: brick.KindString, Default: strPtr(".")}},
			ExecutionOutputs: []brick.ExecutionOutput{{ID: "changed", Label: "Changed"}},
			Outputs: []brick.Output{
				{ID: "changed_path", Label: "Path", Kind: brick.KindString},
				{ID: "kind", Label: "Change Kind", Kind: brick.KindEnum},
			},
			EmissionType: brick.EmissionType{Kind: brick.EmissionFileWatcher, DefaultPattern: "."},
			Execute: func(ctx brick.CallContext, args []brick.ArgValue, inputs []brick.InputValue) ([]brick.OutputValue, error) {
				ctx.Raise("changed")
				return []brick.OutputValue{
					{ID: "changed_path", Value: value.EncodeString(ctx.EventFilePath())},
					{ID: "kind", Value: value.EncodeEnum(ctx.EventFileKind())},
				}, nil
			},
		},
		{
			ID:               "http_webhook",
			Label:            "HTTP Webhook",
			Description:      "Fires when an HTTP request hits the configured path",
			Category:         "Events",
			Arguments: []brick.Argument{
				{ID: "path", Label: "Path", Kind: brick.KindString, Default: strPtr("/webhook")},
				{ID: "method", Label: "Method", Kind: brick.KindString, Default: strPtr("POST")},
			},
			ExecutionOutputs: []brick.ExecutionOutput{{ID: "received", Label: "Received"}},
			Outputs: []brick.Output{
				{ID: "request_method", Label: "Method", Kind: brick.KindString},
				{ID: "request_path", Label: "Path", Kind: brick.KindString},
				{ID: "body", Label: "Body", Kind: brick.KindString},
			},
			EmissionType: brick.EmissionType{Kind: brick.EmissionHttpWebhook, DefaultPath: "/webhook", DefaultMethod: "POST"},
			Execute: func(ctx brick.CallContext, args []brick.ArgValue, inputs []brick.InputValue) ([]brick.OutputValue, error) {
				ctx.Raise("received")
				return []brick.OutputValue{
					{ID: "request_method", Value: value.EncodeString(ctx.EventHttpMethod())},
					{ID: "request_path", Value: value.EncodeString(ctx.EventHttpPath())},
					{ID: "body", Value: value.EncodeString(ctx.EventHttpBody())},
				}, nil
			},
		},
	}
}
