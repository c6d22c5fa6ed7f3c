// Package graph holds the authored nodes and edges of a visual program:
// the graph data model and its invariants (spec.md §3), and the
// read-only per-node queries the engine uses during a run (spec.md
// §4.2).
package graph

import (
	"github.com/duragraph/duragraph/internal/domain/brick"
	"github.com/duragraph/duragraph/internal/pkg/errors"
)

// Node is an instance of a brick inside a graph.
type Node struct {
	ID string

	BrickID string
	// Brick is the resolved descriptor, attached at bind time by
	// looking up BrickID in the registry. Never persisted (spec.md §6).
	Brick *brick.Brick

	// Arguments holds authoring-time argument values, by argument id.
	Arguments map[string]string

	// Defaults holds per-input overrides, by input id — the fallback
	// used when no data edge supplies a value (spec.md §4.5 step 3).
	Defaults map[string]string

	Position Position
}

type Position struct {
	X, Y float64
}

// Edge connects a source node's port to a target node's port. There are
// no edge weights; whether an edge is data or control-flow is a pure
// function of the graph and the brick descriptors (spec.md §3).
type Edge struct {
	ID string

	SourceNode string
	SourcePort string
	TargetNode string
	TargetPort string
}

// Graph holds the authored nodes and edges. It is read-only once bound
// (spec.md §4.2, §5 "Shared-resource policy").
type Graph struct {
	nodes []Node
	edges []Edge

	nodeIndex map[string]int // node id -> index into nodes
}

// New constructs a Graph from raw nodes and edges, without validating or
// resolving brick references. Use Bind to attach brick descriptors and
// validate invariants.
func New(nodes []Node, edges []Edge) *Graph {
	g := &Graph{nodes: nodes, edges: edges}
	g.reindex()
	return g
}

func (g *Graph) reindex() {
	g.nodeIndex = make(map[string]int, len(g.nodes))
	for i, n := range g.nodes {
		g.nodeIndex[n.ID] = i
	}
}

// Bind resolves every node's BrickID against the registry, attaches the
// descriptor, and validates all graph invariants from spec.md §3. It
// returns the first violation found.
func (g *Graph) Bind(reg *brick.Registry) error {
	seenNodes := make(map[string]bool, len(g.nodes))
	for i := range g.nodes {
		n := &g.nodes[i]
		if n.ID == "" {
			return errors.InvalidInput("node.id", "node id is required")
		}
		if seenNodes[n.ID] {
			return errors.InvalidInput("node.id", "duplicate node id: "+n.ID)
		}
		seenNodes[n.ID] = true

		b, err := reg.Lookup(n.BrickID)
		if err != nil {
			return errors.UnknownBrick(n.BrickID)
		}
		n.Brick = b
	}
	g.reindex()

	seenEdges := make(map[string]bool, len(g.edges))
	incomingData := make(map[string]bool) // "nodeID\x00portID" -> seen

	for _, e := range g.edges {
		if e.ID == "" {
			return errors.InvalidInput("edge.id", "edge id is required")
		}
		if seenEdges[e.ID] {
			return errors.InvalidInput("edge.id", "duplicate edge id: "+e.ID)
		}
		seenEdges[e.ID] = true

		src, ok := g.FindByID(e.SourceNode)
		if !ok {
			return errors.UnknownNode(e.SourceNode)
		}
		dst, ok := g.FindByID(e.TargetNode)
		if !ok {
			return errors.UnknownNode(e.TargetNode)
		}

		if err := validateEndpoint(src, e.SourcePort, true); err != nil {
			return err
		}
		if err := validateEndpoint(dst, e.TargetPort, false); err != nil {
			return err
		}

		if g.classify(e) == EdgeKindData {
			srcOut, _ := findOutput(src.Brick, e.SourcePort)
			dstIn, _ := findInput(dst.Brick, e.TargetPort)
			if !brick.Compatible(srcOut.Kind, dstIn.Kind) {
				return errors.TypeMismatch(e.ID, string(srcOut.Kind), string(dstIn.Kind))
			}

			key := e.TargetNode + "\x00" + e.TargetPort
			if incomingData[key] {
				return errors.InvalidInput("edge", "multiple data edges target the same input port: "+key)
			}
			incomingData[key] = true
		}

		if dst.Brick.IsSelfEmitting() && g.classify(e) == EdgeKindControl {
			return errors.InvalidInput("edge", "self-emitting node "+e.TargetNode+" may not have incoming control-flow edges")
		}
	}

	if err := g.checkDataAcyclic(); err != nil {
		return err
	}

	return nil
}

func validateEndpoint(n Node, port string, isSource bool) error {
	b := n.Brick
	if isSource {
		if _, ok := findOutput(b, port); ok {
			return nil
		}
		if b.HasExecutionOutput(port) {
			return nil
		}
		return errors.UnknownPort(n.ID, port)
	}
	if _, ok := findInput(b, port); ok {
		return nil
	}
	if b.HasExecutionInput(port) {
		return nil
	}
	return errors.UnknownPort(n.ID, port)
}

func findInput(b *brick.Brick, id string) (brick.Input, bool) {
	for _, in := range b.Inputs {
		if in.ID == id {
			return in, true
		}
	}
	return brick.Input{}, false
}

func findOutput(b *brick.Brick, id string) (brick.Output, bool) {
	for _, out := range b.Outputs {
		if out.ID == id {
			return out, true
		}
	}
	return brick.Output{}, false
}

// EdgeKind classifies an edge as carrying typed data or execution
// permission.
type EdgeKind int

const (
	EdgeKindData EdgeKind = iota
	EdgeKindControl
)

// classify implements spec.md §3: an edge is control-flow iff its
// source port names an execution_output of the source brick AND its
// target port names an execution_input of the target brick.
func (g *Graph) classify(e Edge) EdgeKind {
	src, ok := g.FindByID(e.SourceNode)
	if !ok {
		return EdgeKindData
	}
	dst, ok := g.FindByID(e.TargetNode)
	if !ok {
		return EdgeKindData
	}
	if src.Brick.HasExecutionOutput(e.SourcePort) && dst.Brick.HasExecutionInput(e.TargetPort) {
		return EdgeKindControl
	}
	return EdgeKindData
}

// IsDataEdge reports whether e is a data edge in g.
func (g *Graph) IsDataEdge(e Edge) bool { return g.classify(e) == EdgeKindData }

// IsControlEdge reports whether e is a control-flow edge in g.
func (g *Graph) IsControlEdge(e Edge) bool { return g.classify(e) == EdgeKindControl }

// checkDataAcyclic verifies the data subgraph (edges classified as
// EdgeKindData) is a DAG, required for termination of dependency
// resolution (spec.md §9).
func (g *Graph) checkDataAcyclic() error {
	adj := make(map[string][]string)
	for _, e := range g.edges {
		if g.classify(e) == EdgeKindData {
			adj[e.SourceNode] = append(adj[e.SourceNode], e.TargetNode)
		}
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g.nodes))

	var visit func(id string) error
	visit = func(id string) error {
		color[id] = gray
		for _, next := range adj[id] {
			switch color[next] {
			case gray:
				return errors.InvalidInput("graph", "data subgraph contains a cycle at node "+next)
			case white:
				if err := visit(next); err != nil {
					return err
				}
			}
		}
		color[id] = black
		return nil
	}

	for _, n := range g.nodes {
		if color[n.ID] == white {
			if err := visit(n.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// FindByID returns the node with the given id.
func (g *Graph) FindByID(id string) (Node, bool) {
	idx, ok := g.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[idx], true
}

// Nodes returns all nodes in authoring order.
func (g *Graph) Nodes() []Node { return g.nodes }

// Edges returns all edges in authoring order.
func (g *Graph) Edges() []Edge { return g.edges }

// NeighborsByDataInput returns, for each data input port of node, the
// edge feeding it (if any).
func (g *Graph) NeighborsByDataInput(nodeID string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.TargetNode == nodeID && g.IsDataEdge(e) {
			out = append(out, e)
		}
	}
	return out
}

// NeighborsByExecutionOutput returns every control-flow edge leaving the
// named execution output port of node.
func (g *Graph) NeighborsByExecutionOutput(nodeID, port string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.SourceNode == nodeID && e.SourcePort == port && g.IsControlEdge(e) {
			out = append(out, e)
		}
	}
	return out
}

// IncomingDataEdge returns the single edge (if any) feeding the given
// data input port of node — at most one is ever bound by invariant.
func (g *Graph) IncomingDataEdge(nodeID, inputPort string) (Edge, bool) {
	for _, e := range g.edges {
		if e.TargetNode == nodeID && e.TargetPort == inputPort && g.IsDataEdge(e) {
			return e, true
		}
	}
	return Edge{}, false
}

// IsStartNode reports whether node has no incoming edges of any kind.
func (g *Graph) IsStartNode(nodeID string) bool {
	for _, e := range g.edges {
		if e.TargetNode == nodeID {
			return false
		}
	}
	return true
}
