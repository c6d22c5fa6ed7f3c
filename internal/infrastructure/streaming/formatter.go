package streaming

import (
	"encoding/json"
	"fmt"
)

// EventFormatter formats events for Server-Sent Events streaming
type EventFormatter struct {
	modes []StreamMode
}

// NewEventFormatter creates a new event formatter with the specified modes
func NewEventFormatter(modes []StreamMode) *EventFormatter {
	return &EventFormatter{
		modes: modes,
	}
}

// ShouldSend checks if an event should be sent based on configured modes
func (f *EventFormatter) ShouldSend(eventType string) bool {
	for _, mode := range f.modes {
		switch mode {
		case ModeEvents:
			return true // events mode sends everything
		case ModeValues:
			if eventType == "values" || eventType == "state" || eventType == "end" {
				return true
			}
		case ModeMessages:
			if eventType == "message" || eventType == "message_chunk" || eventType == "end" {
				return true
			}
		case ModeUpdates:
			if eventType == "updates" || eventType == "delta" || eventType == "end" {
				return true
			}
		case ModeDebug:
			return true // debug mode sends everything
		}
	}
	return false
}

// FormatSSE formats an event for Server-Sent Events
func (f *EventFormatter) FormatSSE(eventType string, data interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", eventType, jsonData)), nil
}

// FormatEnd formats an end event
func (f *EventFormatter) FormatEnd(runID string) ([]byte, error) {
	return f.FormatSSE("end", map[string]string{
		"run_id": runID,
	})
}
