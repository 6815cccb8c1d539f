// # internal/report/report_test.go
package report

import (
	"strings"
	"testing"
	"time"

	"depscan/internal/depgraph"
)

func cyclicFixture() (depgraph.Graph, depgraph.Result) {
	g := depgraph.Graph{
		Nodes: []string{"A", "B", "C"},
		Edges: []depgraph.Edge{
			{From: "A", To: "B"},
			{From: "B", To: "A"},
			{From: "C", To: "A"},
		},
	}
	return g, depgraph.Detect(g)
}

func TestDOT_HighlightsCycleEdges(t *testing.T) {
	g, res := cyclicFixture()
	dot := DOT(g, res)

	if !strings.HasPrefix(dot, "digraph dependencies {") {
		t.Errorf("not a digraph:\n%s", dot)
	}
	if !strings.Contains(dot, `"A" -> "B" [color="red"`) {
		t.Errorf("cycle edge A->B not highlighted:\n%s", dot)
	}
	if !strings.Contains(dot, `"C" -> "A" [color="forestgreen"`) {
		t.Errorf("non-cycle edge C->A wrongly styled:\n%s", dot)
	}
	if !strings.Contains(dot, `"C" [color="darkslategrey"]`) {
		t.Errorf("non-cycle node C wrongly styled:\n%s", dot)
	}
}

func TestMermaid_FlowchartShape(t *testing.T) {
	g, res := cyclicFixture()
	mmd := Mermaid(g, res)

	if !strings.HasPrefix(mmd, "flowchart LR") {
		t.Errorf("not a flowchart:\n%s", mmd)
	}
	if !strings.Contains(mmd, "class n0 cycleNode") {
		t.Errorf("cycle member A (n0) not classed:\n%s", mmd)
	}
	if !strings.Contains(mmd, "-->|cycle|") {
		t.Errorf("cycle edge not labelled:\n%s", mmd)
	}
}

func TestMarkdown_WithCycles(t *testing.T) {
	_, res := cyclicFixture()
	md := Markdown(res, time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC))

	if !strings.Contains(md, "- Cycles: 1") {
		t.Errorf("summary missing cycle count:\n%s", md)
	}
	if !strings.Contains(md, "`A -> B -> A`") {
		t.Errorf("cycle chain missing:\n%s", md)
	}
	if !strings.Contains(md, "Suggested fix:") {
		t.Errorf("suggestion missing:\n%s", md)
	}
}

func TestMarkdown_Clean(t *testing.T) {
	g := depgraph.Graph{Nodes: []string{"A"}}
	md := Markdown(depgraph.Detect(g), time.Now())

	if !strings.Contains(md, depgraph.NoCyclesMessage) {
		t.Errorf("clean report missing the no-cycles line:\n%s", md)
	}
	if strings.Contains(md, "## Cycles") {
		t.Errorf("clean report should not list cycles:\n%s", md)
	}
}

func TestTSV_RowsAndFlags(t *testing.T) {
	g, res := cyclicFixture()
	tsv := TSV(g, res)

	lines := strings.Split(strings.TrimSpace(tsv), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d:\n%s", len(lines), tsv)
	}
	if lines[0] != "from\tto\tin_cycle" {
		t.Errorf("bad header: %q", lines[0])
	}
	if !strings.Contains(tsv, "A\tB\ttrue") {
		t.Errorf("cycle edge not flagged:\n%s", tsv)
	}
	if !strings.Contains(tsv, "C\tA\tfalse") {
		t.Errorf("non-cycle edge wrongly flagged:\n%s", tsv)
	}
}
