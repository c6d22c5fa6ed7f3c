package dto

import (
	"time"

	"github.com/duragraph/duragraph/internal/domain/graph"
)

// CreateGraphRequest is the body of POST /graphs.
type CreateGraphRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Document    graph.Document  `json:"document"`
}

// UpdateGraphRequest is the body of PUT /graphs/:id.
type UpdateGraphRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Document    graph.Document `json:"document"`
}

// GraphResponse is the response shape for a single graph document.
type GraphResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Version     int            `json:"version"`
	Document    graph.Document `json:"document"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ToGraphResponse projects a Stored graph into its wire shape.
func ToGraphResponse(s *graph.Stored) GraphResponse {
	return GraphResponse{
		ID:          s.ID(),
		Name:        s.Name(),
		Description: s.Description(),
		Version:     s.Version(),
		Document:    graph.ToDocument(s.Graph()),
		CreatedAt:   s.CreatedAt(),
		UpdatedAt:   s.UpdatedAt(),
	}
}

// GraphSummary is the compact shape used in list responses.
type GraphSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Version   int       `json:"version"`
	NodeCount int       `json:"node_count"`
	EdgeCount int       `json:"edge_count"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToGraphSummary projects a Stored graph into its list-view shape.
func ToGraphSummary(s *graph.Stored) GraphSummary {
	return GraphSummary{
		ID:        s.ID(),
		Name:      s.Name(),
		Version:   s.Version(),
		NodeCount: len(s.Graph().Nodes()),
		EdgeCount: len(s.Graph().Edges()),
		UpdatedAt: s.UpdatedAt(),
	}
}
