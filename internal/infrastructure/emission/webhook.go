package emission

import (
	"net/http"
	"sync"

	"github.com/duragraph/duragraph/internal/domain/execution"
	"github.com/duragraph/duragraph/internal/pkg/errors"
)

// HttpWebhookContext is the second extensibility example of spec.md
// §4.4: it exposes an http.HandlerFunc the host's HTTP server mounts
// at a configured path+method, translating each inbound request into
// an EventHttpRequest. Unlike Timer/Manual it does not own its own
// listener — the host application (cmd/server) owns the *echo.Echo
// instance and routes to Handler.
type HttpWebhookContext struct {
	path   string
	method string

	mu     sync.Mutex
	active bool
	nodeID string
	sink   *Sink
}

// NewHttpWebhookContext creates a webhook context for the given path
// and HTTP method (resolved from node arguments, falling back to the
// brick's DefaultPath/DefaultMethod).
func NewHttpWebhookContext(path, method string) *HttpWebhookContext {
	return &HttpWebhookContext{path: path, method: method}
}

func (h *HttpWebhookContext) TypeName() string { return "http_webhook" }

func (h *HttpWebhookContext) Path() string   { return h.path }
func (h *HttpWebhookContext) Method() string { return h.method }

func (h *HttpWebhookContext) IsActive() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.active
}

func (h *HttpWebhookContext) Start(nodeID string, sink *Sink) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.active {
		return errors.ContextAlreadyActive(h.TypeName())
	}
	h.active = true
	h.nodeID = nodeID
	h.sink = sink
	return nil
}

func (h *HttpWebhookContext) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.active = false
	h.nodeID = ""
	h.sink = nil
	return nil
}

// Handler returns the request handler the host mounts at Path/Method.
// It responds 202 Accepted once the event has been handed to the
// engine's sink, and 503 if the context was stopped concurrently.
func (h *HttpWebhookContext) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		active, nodeID, sink := h.active, h.nodeID, h.sink
		h.mu.Unlock()
		if !active {
			http.Error(w, "webhook not active", http.StatusServiceUnavailable)
			return
		}

		body := make([]byte, 0)
		if r.Body != nil {
			buf := make([]byte, 64*1024)
			for {
				n, err := r.Body.Read(buf)
				if n > 0 {
					body = append(body, buf[:n]...)
				}
				if err != nil {
					break
				}
			}
		}

		evt := execution.ExecutionEvent{
			Kind:        execution.EventHttpRequest,
			NodeID:      nodeID,
			HttpMethod:  r.Method,
			HttpPath:    r.URL.Path,
			HttpHeaders: map[string][]string(r.Header),
			HttpQuery:   map[string][]string(r.URL.Query()),
			HttpBody:    string(body),
			TimestampMs: execution.NowMillis(),
		}
		if err := sink.Send(evt); err != nil {
			http.Error(w, "engine not accepting events", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}
