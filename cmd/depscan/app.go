// # cmd/depscan/app.go
package main

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gobwas/glob"
	"go.opentelemetry.io/otel/attribute"

	"depscan/internal/config"
	"depscan/internal/depgraph"
	"depscan/internal/graph"
	"depscan/internal/history"
	"depscan/internal/parser"
	"depscan/internal/report"
	"depscan/internal/server"
	"depscan/internal/shared/observability"
	"depscan/internal/shared/util"
	"depscan/internal/watcher"
)

type App struct {
	Config     *config.Config
	Parser     *parser.Parser
	Graph      *graph.Graph
	store      *history.Store
	limiter    *util.RescanLimiter
	httpServer *server.Server
	teaProgram *tea.Program
	goModCache map[string]goModuleCacheEntry

	mu           sync.RWMutex
	lastResult   depgraph.Result
	lastScanTime time.Time
}

type goModuleCacheEntry struct {
	Found      bool
	ModuleRoot string
	ModulePath string
}

func NewApp(cfg *config.Config) (*App, error) {
	registry := parser.BuildRegistry(cfg.Languages)
	loader, err := parser.NewGrammarLoader(registry)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:     cfg,
		Parser:     parser.NewParser(loader),
		Graph:      graph.NewGraph(),
		limiter:    util.NewRescanLimiter(cfg.Watch.RescanPerSecond, cfg.Watch.RescanBurst),
		goModCache: make(map[string]goModuleCacheEntry),
	}

	if cfg.History.Path != "" {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return nil, fmt.Errorf("open history store: %w", err)
		}
		app.store = store
	}

	return app, nil
}

func (a *App) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.httpServer.Stop(ctx)
	}
}

func (a *App) InitialScan(ctx context.Context) error {
	ctx, span := observability.Tracer.Start(ctx, "initial_scan")
	defer span.End()

	files, err := a.ScanDirectories(a.Config.ScanPaths, a.Config.Exclude.Dirs, a.Config.Exclude.Files)
	if err != nil {
		return err
	}
	span.SetAttributes(attribute.Int("files", len(files)))

	for _, filePath := range files {
		if err := a.ProcessFile(filePath); err != nil {
			slog.Debug("skipped file", "path", filePath, "error", err)
		}
	}
	return nil
}

func (a *App) ScanDirectories(paths []string, excludeDirs, excludeFiles []string) ([]string, error) {
	var files []string

	dirGlobs, err := compileGlobs(excludeDirs)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude dir pattern: %w", err)
	}
	fileGlobs, err := compileGlobs(excludeFiles)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude file pattern: %w", err)
	}

	registry := a.Parser.Registry()
	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			base := filepath.Base(path)

			if d.IsDir() {
				for _, g := range dirGlobs {
					if g.Match(base) {
						return filepath.SkipDir
					}
				}
				return nil
			}

			if parser.LanguageForPath(registry, path) == "" {
				return nil
			}
			if parser.IsTestFile(registry, path) {
				return nil
			}

			for _, g := range fileGlobs {
				if g.Match(base) {
					return nil
				}
			}

			files = append(files, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func (a *App) ProcessFile(filePath string) error {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	file, err := a.Parser.ParseFile(filePath, content)
	if err != nil {
		return err
	}

	file.Module = a.moduleName(file)
	a.resolveRelativeImports(file)

	a.Graph.AddFile(file)
	return nil
}

// moduleName assigns the graph node id for a parsed file. Go files map to
// their go.mod package path; everything else maps to the path relative to
// the nearest scan root, without extension.
func (a *App) moduleName(file *parser.File) string {
	if file.Language == "go" {
		if name, ok := a.resolveGoModule(file.Path); ok {
			return name
		}
	}
	if file.Language == "python" {
		return pythonModuleName(a.relativePath(file.Path))
	}
	return strings.TrimSuffix(filepath.ToSlash(a.relativePath(file.Path)), filepath.Ext(file.Path))
}

func (a *App) relativePath(filePath string) string {
	for _, root := range a.Config.ScanPaths {
		if rel, err := filepath.Rel(root, filePath); err == nil && !strings.HasPrefix(rel, "..") {
			return rel
		}
	}
	return filePath
}

func pythonModuleName(rel string) string {
	rel = filepath.ToSlash(strings.TrimSuffix(rel, ".py"))
	rel = strings.TrimSuffix(rel, "/__init__")
	return strings.ReplaceAll(rel, "/", ".")
}

// resolveRelativeImports rewrites relative imports ("./util", "from .util
// import x") into the same ids moduleName produces, so that edges land on
// real graph nodes.
func (a *App) resolveRelativeImports(file *parser.File) {
	switch file.Language {
	case "python":
		a.resolvePythonRelatives(file)
		return
	case "javascript", "typescript", "tsx", "html", "css":
	default:
		return
	}

	base := path.Dir(filepath.ToSlash(a.relativePath(file.Path)))
	for i, imp := range file.Imports {
		if !imp.IsRelative {
			continue
		}
		target := path.Clean(path.Join(base, imp.Module))
		file.Imports[i].Module = strings.TrimSuffix(target, path.Ext(target))
	}
}

// resolvePythonRelatives anchors relative from-imports at the file's
// package. One leading dot means the current package, each extra dot climbs
// one package up; "from . import x" points at the package itself.
func (a *App) resolvePythonRelatives(file *parser.File) {
	dir := path.Dir(filepath.ToSlash(a.relativePath(file.Path)))
	var pkg []string
	if dir != "." && dir != "" {
		pkg = strings.Split(dir, "/")
	}

	for i, imp := range file.Imports {
		if !imp.IsRelative {
			continue
		}

		level := 0
		for level < len(imp.RawImport) && imp.RawImport[level] == '.' {
			level++
		}
		if level == 0 {
			level = 1
		}

		keep := len(pkg) - (level - 1)
		if keep < 0 {
			keep = 0
		}
		target := strings.Join(pkg[:keep], ".")
		if imp.Module != "" {
			if target != "" {
				target = target + "." + imp.Module
			} else {
				target = imp.Module
			}
		}
		file.Imports[i].Module = target
	}
}

func (a *App) HandleChanges(paths []string) {
	if !a.limiter.Allow() {
		observability.RescansThrottledTotal.Inc()
		if err := a.limiter.Wait(context.Background()); err != nil {
			return
		}
	}

	slog.Info("detected changes", "count", len(paths))
	start := time.Now()

	for _, p := range paths {
		if filepath.Base(p) == "go.mod" {
			a.goModCache = make(map[string]goModuleCacheEntry)
		}

		// Mark downstream files stale against the previous graph state
		// before applying this update.
		a.Graph.MarkDirty(a.Graph.InvalidateTransitive(p))

		if _, err := os.Stat(p); os.IsNotExist(err) {
			a.Graph.RemoveFile(p)
			continue
		}

		if err := a.ProcessFile(p); err != nil {
			slog.Warn("failed to re-process file", "path", p, "error", err)
		}
	}

	if stale := a.Graph.GetDirty(); len(stale) > 0 {
		slog.Debug("downstream files invalidated", "count", len(stale))
	}

	result := a.RunDetection(context.Background())
	if err := a.GenerateOutputs(result); err != nil {
		slog.Error("failed to generate outputs", "error", err)
	}
	if err := a.SaveSnapshot(result); err != nil {
		slog.Warn("failed to save history snapshot", "error", err)
	}

	a.PrintSummary(len(paths), a.Graph.ModuleCount(), time.Since(start), result)

	if a.teaProgram != nil {
		a.teaProgram.Send(updateMsg{
			result:      result,
			moduleCount: a.Graph.ModuleCount(),
			fileCount:   a.Graph.FileCount(),
		})
	}
}

// RunDetection runs cycle detection on the current graph snapshot and
// publishes the result to metrics and the HTTP API.
func (a *App) RunDetection(ctx context.Context) depgraph.Result {
	_, span := observability.Tracer.Start(ctx, "detect_cycles")
	defer span.End()

	start := time.Now()
	result := depgraph.Detect(a.Graph)
	observability.DetectionDuration.Observe(time.Since(start).Seconds())

	observability.GraphNodes.Set(float64(result.Stats.TotalNodes))
	observability.GraphEdges.Set(float64(result.Stats.TotalEdges))
	observability.CyclesDetected.Set(float64(result.CycleCount))
	span.SetAttributes(
		attribute.Int("nodes", result.Stats.TotalNodes),
		attribute.Int("cycles", result.CycleCount),
	)

	a.mu.Lock()
	a.lastResult = result
	a.lastScanTime = time.Now()
	a.mu.Unlock()

	return result
}

// LastResult and LastScanTime implement server.ResultProvider.
func (a *App) LastResult() depgraph.Result {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastResult
}

func (a *App) LastScanTime() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastScanTime
}

func (a *App) GenerateOutputs(result depgraph.Result) error {
	snapshot := a.Graph.GetGraph()
	out := a.Config.Output

	if out.DOT != "" {
		if err := os.WriteFile(out.DOT, []byte(report.DOT(snapshot, result)), 0644); err != nil {
			return err
		}
	}
	if out.TSV != "" {
		if err := os.WriteFile(out.TSV, []byte(report.TSV(snapshot, result)), 0644); err != nil {
			return err
		}
	}
	if out.Mermaid != "" {
		if err := os.WriteFile(out.Mermaid, []byte(report.Mermaid(snapshot, result)), 0644); err != nil {
			return err
		}
	}
	if out.Markdown != "" {
		if err := os.WriteFile(out.Markdown, []byte(report.Markdown(result, time.Now())), 0644); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) SaveSnapshot(result depgraph.Result) error {
	if a.store == nil {
		return nil
	}

	var maxFanIn, maxFanOut int
	for _, m := range a.Graph.ComputeModuleMetrics() {
		if m.FanIn > maxFanIn {
			maxFanIn = m.FanIn
		}
		if m.FanOut > maxFanOut {
			maxFanOut = m.FanOut
		}
	}

	commitHash, commitTime := history.ResolveGitMetadata(a.Config.ScanPaths[0])

	_, err := a.store.SaveSnapshot(history.Snapshot{
		ProjectKey:      a.Config.History.ProjectKey,
		Timestamp:       time.Now().UTC(),
		CommitHash:      commitHash,
		CommitTimestamp: commitTime,
		ModuleCount:     a.Graph.ModuleCount(),
		FileCount:       a.Graph.FileCount(),
		EdgeCount:       result.Stats.TotalEdges,
		CycleCount:      result.CycleCount,
		NodesInCycles:   result.Stats.NodesInCycles,
		MaxFanIn:        maxFanIn,
		MaxFanOut:       maxFanOut,
	})
	return err
}

func (a *App) TraceImportChain(from, to string) (string, error) {
	if _, ok := a.Graph.GetModule(from); !ok {
		return "", fmt.Errorf("source module not found: %s", from)
	}
	if _, ok := a.Graph.GetModule(to); !ok {
		return "", fmt.Errorf("target module not found: %s", to)
	}

	chain, ok := a.Graph.FindImportChain(from, to)
	if !ok {
		return "", fmt.Errorf("no import chain found from %s to %s", from, to)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Import chain: %s -> %s\n\n", from, to))
	for i, module := range chain {
		b.WriteString(module)
		b.WriteString("\n")
		if i < len(chain)-1 {
			b.WriteString("  -> ")
		}
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

func (a *App) PrintSummary(fileCount, moduleCount int, duration time.Duration, result depgraph.Result) {
	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Update: %d files, %d modules in %v\n", fileCount, moduleCount, duration)

	if result.HasCycles {
		fmt.Printf("FOUND %d CIRCULAR DEPENDENCIES:\n", result.CycleCount)
		fmt.Println(result.Visualization)
		for _, s := range result.Suggestions {
			if s.RemoveImport == nil {
				continue
			}
			fmt.Printf("   suggestion: remove import %s -> %s (%s)\n",
				s.RemoveImport.FromName, s.RemoveImport.ToName, s.Reason)
		}
	} else {
		fmt.Println(depgraph.NoCyclesMessage)
	}
	fmt.Println(strings.Repeat("-", 40))
}

func (a *App) StartServer(ctx context.Context) error {
	addr := a.Config.Server.Addr
	if addr == "" {
		addr = ":8750"
	}
	a.httpServer = server.New(addr, a, a.store, a.Config.History.ProjectKey)
	return a.httpServer.Start(ctx)
}

func (a *App) RunUI() error {
	m := initialModel()
	p := tea.NewProgram(m, tea.WithAltScreen())
	a.teaProgram = p

	go func() {
		a.teaProgram.Send(updateMsg{
			result:      a.LastResult(),
			moduleCount: a.Graph.ModuleCount(),
			fileCount:   a.Graph.FileCount(),
		})
	}()

	_, err := p.Run()
	return err
}

func (a *App) StartWatcher() error {
	excludeFiles := append([]string(nil), a.Config.Exclude.Files...)
	excludeFiles = append(excludeFiles, testFileGlobs(a.Parser.Registry())...)

	w, err := watcher.New(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		excludeFiles,
		a.HandleChanges,
	)
	if err != nil {
		return err
	}
	// Runs until the process exits.
	return w.Watch(a.Config.ScanPaths)
}

// testFileGlobs turns the registry's test-file suffixes into watcher
// exclude patterns, so _test files never trigger rescans.
func testFileGlobs(registry map[string]parser.LanguageSpec) []string {
	var globs []string
	for _, spec := range registry {
		for _, suffix := range spec.TestFileSuffixes {
			globs = append(globs, "*"+suffix)
		}
	}
	sort.Strings(globs)
	return globs
}

func (a *App) resolveGoModule(filePath string) (string, bool) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		absPath = filePath
	}

	dir := filepath.Dir(absPath)
	visited := []string{}
	for {
		if cached, ok := a.goModCache[dir]; ok {
			if !cached.Found {
				return "", false
			}
			return moduleNameFromCache(cached, absPath), true
		}
		visited = append(visited, dir)

		modPath, ok := readGoModulePath(filepath.Join(dir, "go.mod"))
		if ok {
			cached := goModuleCacheEntry{
				Found:      true,
				ModuleRoot: dir,
				ModulePath: modPath,
			}
			for _, d := range visited {
				a.goModCache[d] = cached
			}
			return moduleNameFromCache(cached, absPath), true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			for _, d := range visited {
				a.goModCache[d] = goModuleCacheEntry{Found: false}
			}
			return "", false
		}
		dir = parent
	}
}

func readGoModulePath(goModPath string) (string, bool) {
	f, err := os.Open(goModPath)
	if err != nil {
		return "", false
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "module ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "module ")), true
		}
	}
	return "", false
}

func moduleNameFromCache(cached goModuleCacheEntry, filePath string) string {
	rel, err := filepath.Rel(cached.ModuleRoot, filePath)
	if err != nil {
		return ""
	}
	dir := filepath.Dir(rel)
	if dir == "." {
		return cached.ModulePath
	}
	return cached.ModulePath + "/" + filepath.ToSlash(dir)
}
