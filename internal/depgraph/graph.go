// # internal/depgraph/graph.go
package depgraph

import "strings"

// Graph is the detector's input: module identifiers plus directed
// "from imports to" edges. Parallel edges are kept as supplied.
type Graph struct {
	Nodes []string
	Edges []Edge
}

type Edge struct {
	From string
	To   string
}

// GraphSource is satisfied by collaborators that can produce a Graph
// snapshot, such as the live project graph.
type GraphSource interface {
	GetGraph() Graph
}

// CycleChecker is satisfied by collaborators that already track their own
// cycle-existence answer. HasCycles prefers this over a full detection run.
type CycleChecker interface {
	HasCircular() bool
}

// coerceGraph accepts a Graph, a *Graph, or any GraphSource. Anything else
// degrades to the empty graph so detection stays total over its input.
func coerceGraph(input any) Graph {
	switch v := input.(type) {
	case Graph:
		return v
	case *Graph:
		if v != nil {
			return *v
		}
	case GraphSource:
		if v != nil {
			return v.GetGraph()
		}
	}
	return Graph{}
}

// adjacency holds per-node outgoing and incoming edge lists, in input edge
// order. Built fresh on every detection run.
type adjacency struct {
	imports    map[string][]string
	importedBy map[string][]string
}

func buildAdjacency(g Graph) *adjacency {
	adj := &adjacency{
		imports:    make(map[string][]string, len(g.Nodes)),
		importedBy: make(map[string][]string, len(g.Nodes)),
	}

	known := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		known[n] = true
		adj.imports[n] = nil
		adj.importedBy[n] = nil
	}

	// Edges with endpoints missing from Nodes are dropped, not reported.
	for _, e := range g.Edges {
		if !known[e.From] || !known[e.To] {
			continue
		}
		adj.imports[e.From] = append(adj.imports[e.From], e.To)
		adj.importedBy[e.To] = append(adj.importedBy[e.To], e.From)
	}

	return adj
}

// displayName shortens a node identifier to its last path segment.
// Identifiers that are not paths pass through unchanged.
func displayName(id string) string {
	if i := strings.LastIndexAny(id, `/\`); i >= 0 && i+1 < len(id) {
		return id[i+1:]
	}
	return id
}

func displayNames(ids []string) []string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = displayName(id)
	}
	return names
}
