package engine

import (
	"github.com/duragraph/duragraph/internal/domain/brick"
	"github.com/duragraph/duragraph/internal/domain/graph"
)

// resolveDataDeps returns the uncached transitive data-node predecessors
// of targetNodeID in post-order: a node appears only after every node it
// depends on has already appeared (spec.md §4.5 "Data-dependency
// resolution"). Ported from original_source's DataNodeDfsIterator —
// iterative stack-based DFS rather than recursion, skipping nodes
// already present in cached and yielding only data nodes (brick has no
// execution ports at all).
func resolveDataDeps(g *graph.Graph, targetNodeID string, cached map[string][]brick.OutputValue) []string {
	type frame struct {
		id      string
		visited bool
	}

	var stack []frame
	yielded := make(map[string]bool)

	push := func(id string) {
		if _, ok := cached[id]; ok {
			return
		}
		if yielded[id] {
			return
		}
		stack = append(stack, frame{id: id})
	}

	push(targetNodeID)

	var result []string
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.visited {
			if !yielded[top.id] {
				if _, ok := cached[top.id]; !ok && isDataNode(g, top.id) {
					yielded[top.id] = true
					result = append(result, top.id)
				}
			}
			continue
		}

		stack = append(stack, frame{id: top.id, visited: true})
		for _, dep := range dataDependencies(g, top.id) {
			push(dep)
		}
	}

	return result
}

// dataDependencies returns the source node ids of every data edge
// feeding nodeID's data inputs.
func dataDependencies(g *graph.Graph, nodeID string) []string {
	var deps []string
	for _, e := range g.NeighborsByDataInput(nodeID) {
		deps = append(deps, e.SourceNode)
	}
	return deps
}

func isDataNode(g *graph.Graph, nodeID string) bool {
	n, ok := g.FindByID(nodeID)
	if !ok || n.Brick == nil {
		return false
	}
	return n.Brick.IsDataNode()
}
