// # internal/depgraph/suggest.go
package depgraph

import "fmt"

// RemoveImport names the specific edge a suggestion proposes to cut.
type RemoveImport struct {
	From     string
	To       string
	FromName string
	ToName   string
}

// Suggestion proposes one low-impact edge to break per detected cycle.
type Suggestion struct {
	CycleIndex   int
	BreakAt      string
	BreakAtName  string
	RemoveImport *RemoveImport
	Reason       string
}

// buildSuggestions scores each cycle edge by the fan-in of its source node
// and proposes the edge with the smallest score: a module imported by fewer
// others is safer to refactor. Ties keep the first edge in cycle order.
func buildSuggestions(cycles []Cycle, adj *adjacency) []Suggestion {
	suggestions := make([]Suggestion, 0, len(cycles))

	for idx, cycle := range cycles {
		if cycle.NodeCount == 0 {
			suggestions = append(suggestions, Suggestion{
				CycleIndex: idx,
				Reason:     "cycle is empty, nothing to break",
			})
			continue
		}

		bestFrom := ""
		bestTo := ""
		bestFanIn := -1
		for i := 0; i < cycle.NodeCount; i++ {
			from := cycle.Path[i]
			to := cycle.Path[i+1]
			fanIn := len(adj.importedBy[from])
			if bestFanIn == -1 || fanIn < bestFanIn {
				bestFrom, bestTo, bestFanIn = from, to, fanIn
			}
		}

		suggestions = append(suggestions, Suggestion{
			CycleIndex:  idx,
			BreakAt:     bestFrom,
			BreakAtName: displayName(bestFrom),
			RemoveImport: &RemoveImport{
				From:     bestFrom,
				To:       bestTo,
				FromName: displayName(bestFrom),
				ToName:   displayName(bestTo),
			},
			Reason: fmt.Sprintf(
				"%s is imported by %d module(s), the fewest in this cycle; dropping its import of %s has the smallest blast radius",
				displayName(bestFrom), bestFanIn, displayName(bestTo)),
		})
	}

	return suggestions
}
