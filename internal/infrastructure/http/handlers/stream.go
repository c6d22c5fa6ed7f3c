package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/duragraph/duragraph/internal/infrastructure/http/dto"
	"github.com/duragraph/duragraph/internal/infrastructure/messaging/nats"
	"github.com/duragraph/duragraph/internal/infrastructure/streaming"
	"github.com/labstack/echo/v4"
)

// StreamHandler serves Server-Sent Events for a run's lifecycle,
// sourced from the outbox-relayed NATS subjects under
// duragraph.runs.run.>.
type StreamHandler struct {
	subscriber *nats.Subscriber
}

// NewStreamHandler creates a new StreamHandler
func NewStreamHandler(subscriber *nats.Subscriber) *StreamHandler {
	return &StreamHandler{
		subscriber: subscriber,
	}
}

// parseStreamModes extracts stream modes from query parameters
func parseStreamModes(c echo.Context) []streaming.StreamMode {
	modes := c.QueryParams()["stream_mode"]
	if len(modes) == 0 {
		if modeParam := c.QueryParam("stream_mode"); modeParam != "" {
			modes = strings.Split(modeParam, ",")
		}
	}
	return streaming.ParseStreamModes(modes)
}

// StreamRun handles GET /runs/:run_id/stream — an SSE feed of one run's
// lifecycle events (created, started, node_errored, completed, errored,
// cancelled) until the run reaches a terminal state.
func (h *StreamHandler) StreamRun(c echo.Context) error {
	runID := c.Param("run_id")
	if runID == "" {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_request",
			Message: "run_id is required in path",
		})
	}

	modes := parseStreamModes(c)
	formatter := streaming.NewEventFormatter(modes)

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	messages, err := h.subscriber.Subscribe("duragraph.runs.run.>")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			fmt.Fprintf(c.Response(), ": keepalive\n\n")
			c.Response().Flush()

		case msg := <-messages:
			var event map[string]interface{}
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				continue
			}

			if aggregateID, ok := event["aggregate_id"].(string); !ok || aggregateID != runID {
				continue
			}

			eventType, _ := event["event_type"].(string)
			mappedType := mapEventType(eventType)

			if !formatter.ShouldSend(mappedType) {
				msg.Ack()
				continue
			}

			data, _ := formatter.FormatSSE(mappedType, event["payload"])
			c.Response().Write(data)
			c.Response().Flush()

			msg.Ack()

			if eventType == "run.completed" || eventType == "run.errored" || eventType == "run.cancelled" {
				endData, _ := formatter.FormatEnd(runID)
				c.Response().Write(endData)
				c.Response().Flush()
				return nil
			}
		}
	}
}

// mapEventType maps run lifecycle event types to stream-mode compatible
// categories.
func mapEventType(eventType string) string {
	switch eventType {
	case "run.created", "run.started", "run.completed", "run.cancelled":
		return "values"
	case "run.node_errored":
		return "updates"
	case "run.errored":
		return "error"
	default:
		return eventType
	}
}
