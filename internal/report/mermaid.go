// # internal/report/mermaid.go
package report

import (
	"fmt"
	"strings"

	"depscan/internal/depgraph"
)

// Mermaid renders the module graph as a mermaid flowchart for embedding in
// markdown docs. Cycle members get the cycleNode class.
func Mermaid(snapshot depgraph.Graph, result depgraph.Result) string {
	var buf strings.Builder

	buf.WriteString("flowchart LR\n")
	buf.WriteString("    classDef cycleNode fill:#fde8e8,stroke:#e02424,stroke-width:2px;\n\n")

	cycleNodes := make(map[string]bool)
	cycleEdges := make(map[string]map[string]bool)
	for _, cycle := range result.Cycles {
		for i := 0; i+1 < len(cycle.Path); i++ {
			from, to := cycle.Path[i], cycle.Path[i+1]
			cycleNodes[from] = true
			if cycleEdges[from] == nil {
				cycleEdges[from] = make(map[string]bool)
			}
			cycleEdges[from][to] = true
		}
	}

	ids := make(map[string]string, len(snapshot.Nodes))
	for i, node := range snapshot.Nodes {
		id := fmt.Sprintf("n%d", i)
		ids[node] = id
		buf.WriteString(fmt.Sprintf("    %s[%q]\n", id, node))
		if cycleNodes[node] {
			buf.WriteString(fmt.Sprintf("    class %s cycleNode\n", id))
		}
	}
	buf.WriteString("\n")

	for _, edge := range snapshot.Edges {
		fromID, okFrom := ids[edge.From]
		toID, okTo := ids[edge.To]
		if !okFrom || !okTo {
			continue
		}
		if cycleEdges[edge.From] != nil && cycleEdges[edge.From][edge.To] {
			buf.WriteString(fmt.Sprintf("    %s -->|cycle| %s\n", fromID, toID))
		} else {
			buf.WriteString(fmt.Sprintf("    %s --> %s\n", fromID, toID))
		}
	}

	return buf.String()
}
