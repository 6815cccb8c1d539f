// # internal/depgraph/visualize.go
package depgraph

import (
	"fmt"
	"strings"
)

// NoCyclesMessage is the exact rendering for an acyclic graph. Callers and
// tests match on it literally.
const NoCyclesMessage = "No circular dependencies detected."

// renderVisualization draws each cycle as an arrow chain plus an ASCII box
// diagram. Presentation only.
func renderVisualization(cycles []Cycle) string {
	if len(cycles) == 0 {
		return NoCyclesMessage
	}

	var b strings.Builder
	for i, cycle := range cycles {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("Cycle %d (%d modules):\n", i+1, cycle.NodeCount))
		b.WriteString("  " + strings.Join(cycle.PathNames, " -> ") + "\n\n")
		b.WriteString(renderBoxes(cycle.PathNames[:cycle.NodeCount]))
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// renderBoxes stacks one box per cycle member with a return edge drawn down
// the right-hand margin:
//
//	+-------+
//	| a.go  |<---+
//	+-------+    |
//	    |        |
//	    v        |
//	+-------+    |
//	| b.go  |----+
//	+-------+
func renderBoxes(names []string) string {
	if len(names) == 0 {
		return ""
	}

	width := 0
	for _, name := range names {
		if len(name) > width {
			width = len(name)
		}
	}

	boxWidth := width + 4 // "| " + name + " |" padding
	gutter := "    "
	rail := "|"
	blank := " "

	top := "+" + strings.Repeat("-", boxWidth-2) + "+"
	arrowDown := strings.Repeat(" ", boxWidth/2) + "|"
	arrowHead := strings.Repeat(" ", boxWidth/2) + "v"

	// A self-loop is one box whose bottom edge routes back into the right
	// rail.
	if len(names) == 1 {
		label := "| " + names[0] + strings.Repeat(" ", width-len(names[0])) + " |"
		var b strings.Builder
		b.WriteString(top + gutter + blank + "\n")
		b.WriteString(label + "<---+\n")
		b.WriteString(top + gutter + rail + "\n")
		b.WriteString(arrowDown + strings.Repeat(" ", boxWidth-len(arrowDown)) + gutter + rail + "\n")
		b.WriteString(strings.Repeat(" ", boxWidth/2) + "+" + strings.Repeat("-", boxWidth-boxWidth/2-1+len(gutter)) + "+\n")
		return b.String()
	}

	var b strings.Builder
	for i, name := range names {
		label := "| " + name + strings.Repeat(" ", width-len(name)) + " |"

		last := i == len(names)-1
		b.WriteString(top + gutter + blank + "\n")
		switch {
		case i == 0:
			b.WriteString(label + "<---+\n")
		case last:
			b.WriteString(label + "----+\n")
		default:
			b.WriteString(label + gutter + rail + "\n")
		}
		if last {
			b.WriteString(top + gutter + blank + "\n")
		} else {
			b.WriteString(top + gutter + rail + "\n")
			b.WriteString(arrowDown + strings.Repeat(" ", boxWidth-len(arrowDown)) + gutter + rail + "\n")
			b.WriteString(arrowHead + strings.Repeat(" ", boxWidth-len(arrowHead)) + gutter + rail + "\n")
		}
	}

	return b.String()
}
