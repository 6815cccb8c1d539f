// # internal/graph/graph.go
package graph

import (
	"sort"
	"sync"

	"depscan/internal/depgraph"
	"depscan/internal/parser"
)

// Graph is the live project dependency graph, maintained incrementally as
// files are parsed, re-parsed, and removed. It feeds the detector through
// the depgraph.GraphSource and depgraph.CycleChecker contracts.
type Graph struct {
	mu sync.RWMutex

	files   map[string]*parser.File // path -> file
	modules map[string]*Module      // module name -> module info

	imports    map[string]map[string]*ImportEdge // from -> to -> edge
	importedBy map[string]map[string]bool        // to -> from

	// Cached cycle-existence answer, dropped on every mutation.
	hasCycles *bool

	dirty map[string]bool // files needing re-analysis
}

type Module struct {
	Name     string
	Files    []string
	RootPath string
}

type ImportEdge struct {
	From       string
	To         string
	ImportedBy string // file path contributing the edge
	Location   parser.Location
}

var (
	_ depgraph.GraphSource  = (*Graph)(nil)
	_ depgraph.CycleChecker = (*Graph)(nil)
)

func NewGraph() *Graph {
	return &Graph{
		files:      make(map[string]*parser.File),
		modules:    make(map[string]*Module),
		imports:    make(map[string]map[string]*ImportEdge),
		importedBy: make(map[string]map[string]bool),
		dirty:      make(map[string]bool),
	}
}

// AddFile merges a parsed file into the graph, replacing any prior
// contribution from the same path so edits never leave stale edges behind.
func (g *Graph) AddFile(file *parser.File) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.files[file.Path]; exists {
		g.removeFileLocked(file.Path)
	}

	g.files[file.Path] = cloneFile(file)

	mod, ok := g.modules[file.Module]
	if !ok {
		mod = &Module{Name: file.Module}
		g.modules[file.Module] = mod
	}

	found := false
	for _, p := range mod.Files {
		if p == file.Path {
			found = true
			break
		}
	}
	if !found {
		mod.Files = append(mod.Files, file.Path)
	}

	if g.imports[file.Module] == nil {
		g.imports[file.Module] = make(map[string]*ImportEdge)
	}
	for _, imp := range file.Imports {
		g.addEdgeLocked(file.Module, imp.Module, file.Path, imp.Location)
	}

	g.hasCycles = nil
}

func (g *Graph) addEdgeLocked(from, to, byFile string, loc parser.Location) {
	if from == "" || to == "" || from == to {
		return
	}
	g.imports[from][to] = &ImportEdge{From: from, To: to, ImportedBy: byFile, Location: loc}
	if g.importedBy[to] == nil {
		g.importedBy[to] = make(map[string]bool)
	}
	g.importedBy[to][from] = true
}

func (g *Graph) RemoveFile(path string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.removeFileLocked(path)
	g.hasCycles = nil
}

func (g *Graph) removeFileLocked(path string) {
	file, ok := g.files[path]
	if !ok {
		return
	}

	if mod, ok := g.modules[file.Module]; ok {
		for i, p := range mod.Files {
			if p == path {
				mod.Files = append(mod.Files[:i], mod.Files[i+1:]...)
				break
			}
		}

		if len(mod.Files) == 0 {
			for to := range g.imports[file.Module] {
				if g.importedBy[to] != nil {
					delete(g.importedBy[to], file.Module)
				}
			}
			delete(g.modules, file.Module)
			delete(g.imports, file.Module)
		} else {
			// Rebuild the module's edges from its surviving files.
			oldImports := g.imports[file.Module]
			g.imports[file.Module] = make(map[string]*ImportEdge)
			for _, filePath := range mod.Files {
				f, ok := g.files[filePath]
				if !ok {
					continue
				}
				for _, imp := range f.Imports {
					g.addEdgeLocked(f.Module, imp.Module, f.Path, imp.Location)
				}
			}
			for to := range oldImports {
				if _, still := g.imports[file.Module][to]; !still {
					if g.importedBy[to] != nil {
						delete(g.importedBy[to], file.Module)
					}
				}
			}
		}
	}

	delete(g.files, path)
}

// GetGraph snapshots the module graph in the detector's input shape.
// Nodes and edges come out sorted so downstream output is deterministic.
func (g *Graph) GetGraph() depgraph.Graph {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.snapshotLocked()
}

func (g *Graph) snapshotLocked() depgraph.Graph {
	nodes := make([]string, 0, len(g.modules))
	for name := range g.modules {
		nodes = append(nodes, name)
	}
	sort.Strings(nodes)

	var edges []depgraph.Edge
	for _, from := range nodes {
		targets := make([]string, 0, len(g.imports[from]))
		for to := range g.imports[from] {
			targets = append(targets, to)
		}
		sort.Strings(targets)
		for _, to := range targets {
			edges = append(edges, depgraph.Edge{From: from, To: to})
		}
	}

	return depgraph.Graph{Nodes: nodes, Edges: edges}
}

// HasCircular answers cycle existence from cache when the graph has not
// changed since the last answer.
func (g *Graph) HasCircular() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.hasCycles != nil {
		return *g.hasCycles
	}
	answer := len(depgraph.Cycles(g.snapshotLocked())) > 0
	g.hasCycles = &answer
	return answer
}

// InvalidateTransitive returns every file that may be affected by a change
// to the given file: the file itself plus all files of modules that import
// its module, transitively.
func (g *Graph) InvalidateTransitive(changedFile string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	file := g.files[changedFile]
	if file == nil {
		return nil
	}

	toRecheck := []string{changedFile}
	seen := map[string]bool{changedFile: true}
	modSeen := map[string]bool{file.Module: true}

	queue := []string{file.Module}
	for len(queue) > 0 {
		mod := queue[0]
		queue = queue[1:]

		for importer := range g.importedBy[mod] {
			if modSeen[importer] {
				continue
			}
			modSeen[importer] = true

			if importerMod, ok := g.modules[importer]; ok {
				for _, f := range importerMod.Files {
					if !seen[f] {
						seen[f] = true
						toRecheck = append(toRecheck, f)
					}
				}
				queue = append(queue, importer)
			}
		}
	}

	return toRecheck
}

// FindImportChain returns the shortest import path between two modules.
func (g *Graph) FindImportChain(from, to string) ([]string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if from == to {
		return []string{from}, true
	}

	prev := map[string]string{from: ""}
	queue := []string{from}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		targets := make([]string, 0, len(g.imports[curr]))
		for next := range g.imports[curr] {
			targets = append(targets, next)
		}
		sort.Strings(targets)

		for _, next := range targets {
			if _, visited := prev[next]; visited {
				continue
			}
			prev[next] = curr
			if next == to {
				chain := []string{to}
				for at := curr; at != ""; at = prev[at] {
					chain = append([]string{at}, chain...)
				}
				return chain, true
			}
			queue = append(queue, next)
		}
	}

	return nil, false
}

func (g *Graph) GetModule(name string) (*Module, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	mod, ok := g.modules[name]
	if !ok {
		return nil, false
	}
	return cloneModule(mod), true
}

func (g *Graph) Modules() map[string]*Module {
	g.mu.RLock()
	defer g.mu.RUnlock()

	res := make(map[string]*Module, len(g.modules))
	for name, mod := range g.modules {
		res[name] = cloneModule(mod)
	}
	return res
}

func (g *Graph) ModuleCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.modules)
}

func (g *Graph) FileCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.files)
}

func (g *Graph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	count := 0
	for _, targets := range g.imports {
		count += len(targets)
	}
	return count
}

func (g *Graph) GetFile(path string) (*parser.File, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	f, ok := g.files[path]
	if !ok {
		return nil, false
	}
	return cloneFile(f), true
}

func (g *Graph) GetImports() map[string]map[string]*ImportEdge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	res := make(map[string]map[string]*ImportEdge, len(g.imports))
	for from, targets := range g.imports {
		res[from] = make(map[string]*ImportEdge, len(targets))
		for to, edge := range targets {
			c := *edge
			res[from][to] = &c
		}
	}
	return res
}

func (g *Graph) MarkDirty(paths []string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range paths {
		g.dirty[p] = true
	}
}

func (g *Graph) GetDirty() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	paths := make([]string, 0, len(g.dirty))
	for p := range g.dirty {
		paths = append(paths, p)
		delete(g.dirty, p)
	}
	return paths
}

func cloneModule(mod *Module) *Module {
	if mod == nil {
		return nil
	}
	return &Module{
		Name:     mod.Name,
		RootPath: mod.RootPath,
		Files:    append([]string(nil), mod.Files...),
	}
}

func cloneFile(file *parser.File) *parser.File {
	if file == nil {
		return nil
	}
	c := *file
	c.Imports = append([]parser.Import(nil), file.Imports...)
	return &c
}
