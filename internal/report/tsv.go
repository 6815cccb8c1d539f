// # internal/report/tsv.go
package report

import (
	"fmt"
	"strings"

	"depscan/internal/depgraph"
)

// TSV dumps the import edges as from<TAB>to<TAB>in_cycle rows for
// spreadsheet or awk consumption.
func TSV(snapshot depgraph.Graph, result depgraph.Result) string {
	cycleEdges := make(map[string]map[string]bool)
	for _, cycle := range result.Cycles {
		for i := 0; i+1 < len(cycle.Path); i++ {
			from, to := cycle.Path[i], cycle.Path[i+1]
			if cycleEdges[from] == nil {
				cycleEdges[from] = make(map[string]bool)
			}
			cycleEdges[from][to] = true
		}
	}

	var b strings.Builder
	b.WriteString("from\tto\tin_cycle\n")
	for _, edge := range snapshot.Edges {
		inCycle := cycleEdges[edge.From] != nil && cycleEdges[edge.From][edge.To]
		b.WriteString(fmt.Sprintf("%s\t%s\t%t\n", edge.From, edge.To, inCycle))
	}
	return b.String()
}
