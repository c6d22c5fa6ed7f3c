package dto

import (
	"time"

	"github.com/duragraph/duragraph/internal/domain/execution"
	"github.com/duragraph/duragraph/internal/domain/run"
)

// CreateRunRequest is the body of POST /graphs/:graph_id/runs.
type CreateRunRequest struct {
	Mode string `json:"mode,omitempty"` // "normal" (default) or "stepped"
}

// NodeStateResponse is one node's last-known execution state.
type NodeStateResponse struct {
	NodeID       string            `json:"node_id"`
	Phase        string            `json:"phase"`
	ErrorMessage string            `json:"error_message,omitempty"`
	ElapsedMs    int64             `json:"elapsed_ms"`
	LastOutputs  map[string]string `json:"last_outputs,omitempty"`
}

// RunResponse is the response shape for a single run.
type RunResponse struct {
	ID           string                       `json:"id"`
	GraphID      string                       `json:"graph_id"`
	Mode         string                       `json:"mode"`
	Status       string                       `json:"status"`
	ErrorMessage string                       `json:"error_message,omitempty"`
	NodeStates   map[string]NodeStateResponse `json:"node_states"`
	CreatedAt    time.Time                    `json:"created_at"`
	StartedAt    *time.Time                   `json:"started_at,omitempty"`
	CompletedAt  *time.Time                   `json:"completed_at,omitempty"`
}

// ToRunResponse projects a Run aggregate into its wire shape.
func ToRunResponse(r *run.Run) RunResponse {
	states := make(map[string]NodeStateResponse, len(r.NodeStates()))
	for id, st := range r.NodeStates() {
		states[id] = toNodeStateResponse(st)
	}
	return RunResponse{
		ID:           r.ID(),
		GraphID:      r.GraphID(),
		Mode:         string(r.Mode()),
		Status:       string(r.Status()),
		ErrorMessage: r.ErrorMessage(),
		NodeStates:   states,
		CreatedAt:    r.CreatedAt(),
		StartedAt:    r.StartedAt(),
		CompletedAt:  r.CompletedAt(),
	}
}

func toNodeStateResponse(st execution.NodeState) NodeStateResponse {
	return NodeStateResponse{
		NodeID:       st.NodeID,
		Phase:        string(st.Phase),
		ErrorMessage: st.ErrorMessage,
		ElapsedMs:    st.ElapsedMs,
		LastOutputs:  st.LastOutputs,
	}
}

// RunSummary is the compact shape used in list responses.
type RunSummary struct {
	ID        string    `json:"id"`
	GraphID   string    `json:"graph_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ToRunSummary projects a Run aggregate into its list-view shape.
func ToRunSummary(r *run.Run) RunSummary {
	return RunSummary{
		ID:        r.ID(),
		GraphID:   r.GraphID(),
		Status:    string(r.Status()),
		CreatedAt: r.CreatedAt(),
	}
}
