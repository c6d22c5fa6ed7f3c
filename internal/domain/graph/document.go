package graph

import (
	"encoding/json"

	"github.com/duragraph/duragraph/internal/pkg/errors"
)

// Document is the on-disk JSON shape of an authored graph (spec.md §6):
// top-level nodes/edges arrays. NodeData.BrickID is persisted; the
// resolved *brick.Brick is intentionally never persisted and is
// re-attached on load by Graph.Bind.
type Document struct {
	Nodes []DocumentNode `json:"nodes"`
	Edges []DocumentEdge `json:"edges"`
}

type DocumentNode struct {
	ID       string           `json:"id"`
	Position DocumentPosition `json:"position"`
	Type     string           `json:"type"`
	Data     DocumentNodeData `json:"data"`
}

type DocumentPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type DocumentNodeData struct {
	BrickID   string            `json:"brickId"`
	Arguments map[string]string `json:"arguments,omitempty"`
	Defaults  map[string]string `json:"defaults,omitempty"`
}

type DocumentEdge struct {
	ID            string `json:"id"`
	Source        string `json:"source"`
	Target        string `json:"target"`
	SourceHandle  string `json:"sourceHandle"`
	TargetHandle  string `json:"targetHandle"`
}

// ToDocument projects a Graph into its persisted JSON shape.
func ToDocument(g *Graph) Document {
	doc := Document{
		Nodes: make([]DocumentNode, 0, len(g.Nodes())),
		Edges: make([]DocumentEdge, 0, len(g.Edges())),
	}
	for _, n := range g.Nodes() {
		doc.Nodes = append(doc.Nodes, DocumentNode{
			ID:       n.ID,
			Position: DocumentPosition{X: n.Position.X, Y: n.Position.Y},
			Type:     "v1",
			Data: DocumentNodeData{
				BrickID:   n.BrickID,
				Arguments: n.Arguments,
				Defaults:  n.Defaults,
			},
		})
	}
	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, DocumentEdge{
			ID:           e.ID,
			Source:       e.SourceNode,
			Target:       e.TargetNode,
			SourceHandle: e.SourcePort,
			TargetHandle: e.TargetPort,
		})
	}
	return doc
}

// FromDocument builds an unbound Graph (brick descriptors not yet
// attached) from a persisted document. Call Bind against a
// brick.Registry before handing the result to the engine.
func FromDocument(doc Document) *Graph {
	nodes := make([]Node, 0, len(doc.Nodes))
	for _, dn := range doc.Nodes {
		nodes = append(nodes, Node{
			ID:        dn.ID,
			BrickID:   dn.Data.BrickID,
			Arguments: dn.Data.Arguments,
			Defaults:  dn.Data.Defaults,
			Position:  Position{X: dn.Position.X, Y: dn.Position.Y},
		})
	}
	edges := make([]Edge, 0, len(doc.Edges))
	for _, de := range doc.Edges {
		edges = append(edges, Edge{
			ID:         de.ID,
			SourceNode: de.Source,
			SourcePort: de.SourceHandle,
			TargetNode: de.Target,
			TargetPort: de.TargetHandle,
		})
	}
	return New(nodes, edges)
}

// MarshalJSON encodes g as its on-disk document form.
func MarshalJSON(g *Graph) ([]byte, error) {
	return json.Marshal(ToDocument(g))
}

// UnmarshalJSON decodes an on-disk document into an unbound Graph.
func UnmarshalJSON(data []byte) (*Graph, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.InvalidInput("graph.document", err.Error())
	}
	return FromDocument(doc), nil
}
