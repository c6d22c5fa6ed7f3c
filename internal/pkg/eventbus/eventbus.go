package eventbus

import "context"

// Event is the interface that all domain events must implement
type Event interface {
	EventType() string
	AggregateID() string
	AggregateType() string
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error
