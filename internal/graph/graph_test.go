// # internal/graph/graph_test.go
package graph

import (
	"reflect"
	"testing"

	"depscan/internal/depgraph"
	"depscan/internal/parser"
)

func addModule(g *Graph, path, module string, imports ...string) {
	f := &parser.File{Path: path, Module: module}
	for _, imp := range imports {
		f.Imports = append(f.Imports, parser.Import{Module: imp})
	}
	g.AddFile(f)
}

func TestGraph_AddRemoveFile(t *testing.T) {
	g := NewGraph()
	addModule(g, "/path/to/a.go", "moduleA", "moduleB")

	if g.FileCount() != 1 {
		t.Errorf("expected 1 file, got %d", g.FileCount())
	}
	if g.ModuleCount() != 1 {
		t.Errorf("expected 1 module, got %d", g.ModuleCount())
	}
	if _, ok := g.GetImports()["moduleA"]["moduleB"]; !ok {
		t.Error("expected import edge moduleA -> moduleB")
	}

	g.RemoveFile("/path/to/a.go")
	if g.FileCount() != 0 {
		t.Errorf("expected 0 files, got %d", g.FileCount())
	}
	if g.ModuleCount() != 0 {
		t.Errorf("expected 0 modules, got %d", g.ModuleCount())
	}
}

func TestGraph_ReAddReplacesStaleEdges(t *testing.T) {
	g := NewGraph()
	addModule(g, "a.go", "A", "B")
	addModule(g, "a.go", "A", "C")

	imports := g.GetImports()
	if _, stale := imports["A"]["B"]; stale {
		t.Error("stale edge A -> B survived a re-add")
	}
	if _, ok := imports["A"]["C"]; !ok {
		t.Error("missing edge A -> C after re-add")
	}
}

func TestGraph_GetGraphSnapshot(t *testing.T) {
	g := NewGraph()
	addModule(g, "a.go", "A", "B")
	addModule(g, "b.go", "B")

	snap := g.GetGraph()
	if !reflect.DeepEqual(snap.Nodes, []string{"A", "B"}) {
		t.Errorf("unexpected nodes: %v", snap.Nodes)
	}
	if !reflect.DeepEqual(snap.Edges, []depgraph.Edge{{From: "A", To: "B"}}) {
		t.Errorf("unexpected edges: %v", snap.Edges)
	}
}

func TestGraph_HasCircularCachedAndInvalidated(t *testing.T) {
	g := NewGraph()
	addModule(g, "a.go", "A", "B")
	addModule(g, "b.go", "B")

	if g.HasCircular() {
		t.Fatal("acyclic graph reported a cycle")
	}
	// Cached answer must survive repeated asks.
	if g.HasCircular() {
		t.Fatal("cached answer flipped without mutation")
	}

	addModule(g, "b.go", "B", "A")
	if !g.HasCircular() {
		t.Error("mutation did not invalidate the cycle cache")
	}

	g.RemoveFile("b.go")
	if g.HasCircular() {
		t.Error("cycle persisted after removing its edge")
	}
}

func TestGraph_DetectorIntegration(t *testing.T) {
	g := NewGraph()
	addModule(g, "a.go", "A", "B")
	addModule(g, "b.go", "B", "C")
	addModule(g, "c.go", "C", "A")

	res := depgraph.Detect(g)
	if res.CycleCount != 1 {
		t.Fatalf("expected 1 cycle via GraphSource, got %d", res.CycleCount)
	}
	if res.Cycles[0].NodeCount != 3 {
		t.Errorf("expected 3-node cycle, got %+v", res.Cycles[0])
	}

	// HasCycles must take the cached fast path on the live graph.
	if !depgraph.HasCycles(g) {
		t.Error("fast path disagreed with full detection")
	}
}

func TestGraph_InvalidateTransitive(t *testing.T) {
	g := NewGraph()
	addModule(g, "a.go", "A")
	addModule(g, "b.go", "B", "A")
	addModule(g, "c.go", "C", "B")

	affected := g.InvalidateTransitive("a.go")
	if len(affected) != 3 {
		t.Errorf("expected 3 affected files, got %d: %v", len(affected), affected)
	}

	if got := g.InvalidateTransitive("missing.go"); got != nil {
		t.Errorf("unknown file should have no impact, got %v", got)
	}
}

func TestGraph_FindImportChain(t *testing.T) {
	g := NewGraph()
	addModule(g, "a.go", "A", "B")
	addModule(g, "b.go", "B", "C")
	addModule(g, "c.go", "C")

	chain, ok := g.FindImportChain("A", "C")
	if !ok {
		t.Fatal("expected a chain from A to C")
	}
	if !reflect.DeepEqual(chain, []string{"A", "B", "C"}) {
		t.Errorf("unexpected chain: %v", chain)
	}

	if _, ok := g.FindImportChain("C", "A"); ok {
		t.Error("imports are directed, C must not reach A")
	}
}

func TestComputeModuleMetrics(t *testing.T) {
	g := NewGraph()
	addModule(g, "a.go", "A", "B")
	addModule(g, "b.go", "B", "C")
	addModule(g, "c.go", "C")

	metrics := g.ComputeModuleMetrics()
	if m := metrics["A"]; m.FanOut != 1 || m.FanIn != 0 || m.Depth != 2 {
		t.Errorf("unexpected metrics for A: %+v", m)
	}
	if m := metrics["C"]; m.FanIn != 1 || m.FanOut != 0 || m.Depth != 0 {
		t.Errorf("unexpected metrics for C: %+v", m)
	}
}

func TestComputeModuleMetrics_CycleDoesNotRecurse(t *testing.T) {
	g := NewGraph()
	addModule(g, "a.go", "A", "B")
	addModule(g, "b.go", "B", "A")
	addModule(g, "c.go", "C", "A")

	metrics := g.ComputeModuleMetrics()
	if metrics["A"].Depth != metrics["B"].Depth {
		t.Errorf("cycle members must share a depth: %+v", metrics)
	}
	if metrics["C"].Depth != metrics["A"].Depth+1 {
		t.Errorf("importer of a cycle sits one level above it: %+v", metrics)
	}
}
