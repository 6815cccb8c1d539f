// # internal/report/dot.go
package report

import (
	"fmt"
	"strings"

	"depscan/internal/depgraph"
)

// DOT renders the module graph as Graphviz, with cycle members and cycle
// edges highlighted in red.
func DOT(snapshot depgraph.Graph, result depgraph.Result) string {
	var buf strings.Builder

	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=rounded, fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=8, penwidth=1.2];\n")
	buf.WriteString("  splines=polyline;\n")
	buf.WriteString("  overlap=false;\n\n")

	cycleEdges := make(map[string]map[string]bool)
	cycleNodes := make(map[string]bool)
	for _, cycle := range result.Cycles {
		for i := 0; i+1 < len(cycle.Path); i++ {
			from, to := cycle.Path[i], cycle.Path[i+1]
			if cycleEdges[from] == nil {
				cycleEdges[from] = make(map[string]bool)
			}
			cycleEdges[from][to] = true
			cycleNodes[from] = true
		}
	}

	for _, node := range snapshot.Nodes {
		if cycleNodes[node] {
			buf.WriteString(fmt.Sprintf("  %q [fillcolor=\"mistyrose\", color=\"red\", style=\"rounded,filled\", penwidth=2.0];\n", node))
		} else {
			buf.WriteString(fmt.Sprintf("  %q [color=\"darkslategrey\"];\n", node))
		}
	}
	buf.WriteString("\n")

	for _, edge := range snapshot.Edges {
		if cycleEdges[edge.From] != nil && cycleEdges[edge.From][edge.To] {
			buf.WriteString(fmt.Sprintf("  %q -> %q [color=\"red\", penwidth=3.0, label=\"CYCLE\"];\n", edge.From, edge.To))
		} else {
			buf.WriteString(fmt.Sprintf("  %q -> %q [color=\"forestgreen\"];\n", edge.From, edge.To))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}
