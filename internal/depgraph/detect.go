// # internal/depgraph/detect.go
package depgraph

import "strings"

// Cycle is one deduplicated dependency loop. Path carries the closing
// repeat (a 3-node loop has Length 4 and NodeCount 3).
type Cycle struct {
	Path      []string
	PathNames []string
	Length    int
	NodeCount int
}

type Stats struct {
	TotalNodes    int
	TotalEdges    int
	NodesInCycles int
}

type Result struct {
	HasCycles     bool
	CycleCount    int
	Cycles        []Cycle
	Suggestions   []Suggestion
	Visualization string
	Stats         Stats
}

// Detect runs the full analysis: cycle enumeration, dedup, break-point
// suggestions, and visualization. It never fails; malformed input degrades
// to the empty graph and dangling edges are dropped.
func Detect(input any) Result {
	g := coerceGraph(input)
	adj := buildAdjacency(g)
	canonical := enumerateCycles(g.Nodes, adj)

	cycles := make([]Cycle, 0, len(canonical))
	inCycle := make(map[string]bool)
	for _, nodes := range canonical {
		closed := make([]string, 0, len(nodes)+1)
		closed = append(closed, nodes...)
		closed = append(closed, nodes[0])

		cycles = append(cycles, Cycle{
			Path:      closed,
			PathNames: displayNames(closed),
			Length:    len(closed),
			NodeCount: len(nodes),
		})

		for _, n := range nodes {
			inCycle[n] = true
		}
	}

	return Result{
		HasCycles:     len(cycles) > 0,
		CycleCount:    len(cycles),
		Cycles:        cycles,
		Suggestions:   buildSuggestions(cycles, adj),
		Visualization: renderVisualization(cycles),
		Stats: Stats{
			TotalNodes:    len(g.Nodes),
			TotalEdges:    len(g.Edges),
			NodesInCycles: len(inCycle),
		},
	}
}

// HasCycles answers cycle existence. Inputs that carry their own cached
// answer (CycleChecker) are trusted directly; everything else pays for a
// full detection run.
func HasCycles(input any) bool {
	if checker, ok := input.(CycleChecker); ok && checker != nil {
		return checker.HasCircular()
	}
	return Detect(input).HasCycles
}

// Cycles returns only the deduplicated cycle paths, skipping suggestion and
// visualization work. Each path carries the closing repeat, matching
// Detect's Cycle.Path.
func Cycles(input any) [][]string {
	g := coerceGraph(input)
	adj := buildAdjacency(g)

	canonical := enumerateCycles(g.Nodes, adj)
	paths := make([][]string, 0, len(canonical))
	for _, nodes := range canonical {
		closed := make([]string, 0, len(nodes)+1)
		closed = append(closed, nodes...)
		closed = append(closed, nodes[0])
		paths = append(paths, closed)
	}
	return paths
}

const canonicalSep = "\x00"

// enumerateCycles runs an exhaustive DFS from every node as a candidate
// cycle start, with fresh visited/stack state per run. Cycles rediscovered
// from different members collapse via their canonical rotation.
func enumerateCycles(nodes []string, adj *adjacency) [][]string {
	var cycles [][]string
	recorded := make(map[string]bool)

	for _, start := range nodes {
		visited := make(map[string]bool)
		var stack []string

		var walk func(curr string)
		walk = func(curr string) {
			for i, on := range stack {
				if on != curr {
					continue
				}
				// Back on the current path: slice from the first
				// occurrence and close the loop.
				raw := make([]string, 0, len(stack)-i+1)
				raw = append(raw, stack[i:]...)
				raw = append(raw, curr)

				canon := canonicalize(raw)
				if len(canon) == 0 {
					return
				}
				key := strings.Join(canon, canonicalSep)
				if !recorded[key] {
					recorded[key] = true
					cycles = append(cycles, canon)
				}
				return
			}

			if visited[curr] {
				return
			}
			visited[curr] = true
			stack = append(stack, curr)
			for _, next := range adj.imports[curr] {
				walk(next)
			}
			stack = stack[:len(stack)-1]
		}

		walk(start)
	}

	return cycles
}

// canonicalize strips the closing repeat from a raw cycle and rotates it to
// the lexicographically minimal rotation, so the same loop found from any
// start node compares equal.
func canonicalize(raw []string) []string {
	if len(raw) < 2 {
		return nil
	}
	cycle := raw[:len(raw)-1]

	best := append([]string(nil), cycle...)
	bestKey := strings.Join(best, canonicalSep)
	for i := 1; i < len(cycle); i++ {
		rot := make([]string, 0, len(cycle))
		rot = append(rot, cycle[i:]...)
		rot = append(rot, cycle[:i]...)
		if key := strings.Join(rot, canonicalSep); key < bestKey {
			best, bestKey = rot, key
		}
	}
	return best
}
