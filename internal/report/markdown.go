// # internal/report/markdown.go
package report

import (
	"fmt"
	"strings"
	"time"

	"depscan/internal/depgraph"
)

// Markdown renders the detection result as a standalone report: stats,
// each cycle with its break suggestion, and the ASCII visualization.
func Markdown(result depgraph.Result, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("# Dependency Cycle Report\n\n")
	b.WriteString(fmt.Sprintf("Generated: %s\n\n", generatedAt.UTC().Format(time.RFC3339)))

	b.WriteString("## Summary\n\n")
	b.WriteString(fmt.Sprintf("- Modules: %d\n", result.Stats.TotalNodes))
	b.WriteString(fmt.Sprintf("- Import edges: %d\n", result.Stats.TotalEdges))
	b.WriteString(fmt.Sprintf("- Cycles: %d\n", result.CycleCount))
	b.WriteString(fmt.Sprintf("- Modules involved in cycles: %d\n\n", result.Stats.NodesInCycles))

	if !result.HasCycles {
		b.WriteString(depgraph.NoCyclesMessage + "\n")
		return b.String()
	}

	b.WriteString("## Cycles\n\n")
	for i, cycle := range result.Cycles {
		b.WriteString(fmt.Sprintf("### Cycle %d (%d modules)\n\n", i+1, cycle.NodeCount))
		b.WriteString("`" + strings.Join(cycle.PathNames, " -> ") + "`\n\n")

		for _, s := range result.Suggestions {
			if s.CycleIndex != i || s.RemoveImport == nil {
				continue
			}
			b.WriteString(fmt.Sprintf("Suggested fix: remove the import of `%s` from `%s`.\n", s.RemoveImport.ToName, s.RemoveImport.FromName))
			b.WriteString(fmt.Sprintf("Rationale: %s.\n\n", s.Reason))
		}
	}

	b.WriteString("## Visualization\n\n")
	b.WriteString("```\n")
	b.WriteString(strings.TrimRight(result.Visualization, "\n"))
	b.WriteString("\n```\n")

	return b.String()
}
