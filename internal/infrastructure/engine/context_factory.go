package engine

import (
	"fmt"

	"github.com/duragraph/duragraph/internal/domain/graph"
	"github.com/duragraph/duragraph/internal/domain/value"
	"github.com/duragraph/duragraph/internal/infrastructure/emission"
)

// ContextFactory builds the emission.Context for a self-emitting node,
// resolving its configuration from the node's arguments with the
// brick's EmissionType defaults as fallback. Supplying a custom factory
// is how a host wires a new emission variant without touching the
// engine (spec.md §9).
type ContextFactory func(node graph.Node) (emission.Context, error)

// DefaultContextFactory covers the four built-in variants.
func DefaultContextFactory(node graph.Node) (emission.Context, error) {
	et := node.Brick.EmissionType
	switch et.Kind {
	case "timer":
		interval := et.DefaultIntervalMs
		if raw, ok := node.Arguments["interval_ms"]; ok && raw != "" {
			if f, err := value.DecodeNumber(raw); err == nil {
				interval = uint32(f)
			}
		}
		return emission.NewTimerContext(interval), nil

	case "manual_trigger":
		return emission.NewManualContext(), nil

	case "file_watcher":
		path := et.DefaultPattern
		if raw, ok := node.Arguments["path"]; ok && raw != "" {
			path = raw
		}
		return emission.NewFileWatcherContext(path), nil

	case "http_webhook":
		path := et.DefaultPath
		method := et.DefaultMethod
		if raw, ok := node.Arguments["path"]; ok && raw != "" {
			path = raw
		}
		if raw, ok := node.Arguments["method"]; ok && raw != "" {
			method = raw
		}
		return emission.NewHttpWebhookContext(path, method), nil

	default:
		return nil, fmt.Errorf("engine: no emission context factory for kind %q (node %s)", et.Kind, node.ID)
	}
}
