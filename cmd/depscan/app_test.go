// # cmd/depscan/app_test.go
package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"depscan/internal/config"
	"depscan/internal/graph"
	"depscan/internal/parser"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	app, err := NewApp(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(app.Close)
	return app
}

func TestApp_ScanAndDetect(t *testing.T) {
	tmpDir := t.TempDir()

	writeFile(t, filepath.Join(tmpDir, "go.mod"), "module example.com/app\n")
	writeFile(t, filepath.Join(tmpDir, "a", "a.go"),
		"package a\nimport \"example.com/app/b\"\nvar _ = b.V\n")
	writeFile(t, filepath.Join(tmpDir, "b", "b.go"),
		"package b\nimport \"example.com/app/a\"\nvar V = 1\nvar _ = a.V\n")

	cfg := config.Default()
	cfg.ScanPaths = []string{tmpDir}
	cfg.Output.DOT = filepath.Join(tmpDir, "graph.dot")
	cfg.Output.Markdown = filepath.Join(tmpDir, "report.md")

	app := newTestApp(t, cfg)

	if err := app.InitialScan(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := app.Graph.FileCount(); got != 2 {
		t.Fatalf("expected 2 files, got %d", got)
	}

	result := app.RunDetection(context.Background())
	if !result.HasCycles || result.CycleCount != 1 {
		t.Fatalf("expected one cycle, got %+v", result)
	}
	if result.Cycles[0].NodeCount != 2 {
		t.Errorf("expected a 2-module cycle, got %+v", result.Cycles[0])
	}

	if err := app.GenerateOutputs(result); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(cfg.Output.DOT); err != nil {
		t.Error("DOT file was not generated")
	}
	data, err := os.ReadFile(cfg.Output.Markdown)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "a -> b -> a") {
		t.Errorf("markdown report missing cycle chain: %s", data)
	}

	if got := app.LastResult(); got.CycleCount != 1 {
		t.Errorf("LastResult not updated: %+v", got)
	}
	if app.LastScanTime().IsZero() {
		t.Error("LastScanTime not updated")
	}
}

func TestApp_ScanAndDetect_PythonPackageCycle(t *testing.T) {
	tmpDir := t.TempDir()

	writeFile(t, filepath.Join(tmpDir, "pkg", "__init__.py"), "")
	writeFile(t, filepath.Join(tmpDir, "pkg", "a.py"), "from .b import f\n")
	writeFile(t, filepath.Join(tmpDir, "pkg", "b.py"), "from .a import g\n")

	cfg := config.Default()
	cfg.ScanPaths = []string{tmpDir}
	app := newTestApp(t, cfg)

	if err := app.InitialScan(context.Background()); err != nil {
		t.Fatal(err)
	}

	result := app.RunDetection(context.Background())
	if !result.HasCycles || result.CycleCount != 1 {
		t.Fatalf("expected the intra-package cycle, got %+v", result)
	}
	if got := strings.Join(result.Cycles[0].Path, " "); got != "pkg.a pkg.b pkg.a" {
		t.Errorf("unexpected cycle path: %q", got)
	}
}

func TestApp_ScanDirectories_SkipsTestFiles(t *testing.T) {
	tmpDir := t.TempDir()

	writeFile(t, filepath.Join(tmpDir, "go.mod"), "module example.com/app\n")
	writeFile(t, filepath.Join(tmpDir, "thing.go"), "package app\n")
	writeFile(t, filepath.Join(tmpDir, "thing_test.go"), "package app\n")
	writeFile(t, filepath.Join(tmpDir, "models.py"), "import os\n")
	writeFile(t, filepath.Join(tmpDir, "models_test.py"), "import models\n")

	cfg := config.Default()
	cfg.ScanPaths = []string{tmpDir}
	app := newTestApp(t, cfg)

	files, err := app.ScanDirectories(cfg.ScanPaths, nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d: %v", len(files), files)
	}
	for _, f := range files {
		if strings.Contains(f, "_test.") {
			t.Errorf("test file entered the scan set: %s", f)
		}
	}
}

func TestTestFileGlobs(t *testing.T) {
	globs := testFileGlobs(parser.DefaultRegistry())

	want := map[string]bool{"*_test.go": false, "*_test.py": false}
	for _, g := range globs {
		if _, ok := want[g]; ok {
			want[g] = true
		}
	}
	for g, seen := range want {
		if !seen {
			t.Errorf("missing watcher exclude pattern %q in %v", g, globs)
		}
	}
}

func TestApp_HandleChanges_RemovedFileClearsCycle(t *testing.T) {
	tmpDir := t.TempDir()

	writeFile(t, filepath.Join(tmpDir, "go.mod"), "module example.com/app\n")
	aPath := filepath.Join(tmpDir, "a", "a.go")
	writeFile(t, aPath, "package a\nimport \"example.com/app/b\"\nvar _ = b.V\n")
	writeFile(t, filepath.Join(tmpDir, "b", "b.go"),
		"package b\nimport \"example.com/app/a\"\nvar V = 1\nvar _ = a.V\n")

	cfg := config.Default()
	cfg.ScanPaths = []string{tmpDir}
	app := newTestApp(t, cfg)

	if err := app.InitialScan(context.Background()); err != nil {
		t.Fatal(err)
	}
	if result := app.RunDetection(context.Background()); !result.HasCycles {
		t.Fatal("expected initial cycle")
	}

	if err := os.Remove(aPath); err != nil {
		t.Fatal(err)
	}
	app.HandleChanges([]string{aPath})

	if result := app.LastResult(); result.HasCycles {
		t.Fatalf("expected cycle gone after removal, got %+v", result)
	}
}

func TestApp_SaveSnapshot(t *testing.T) {
	tmpDir := t.TempDir()

	writeFile(t, filepath.Join(tmpDir, "go.mod"), "module example.com/app\n")
	writeFile(t, filepath.Join(tmpDir, "main.go"), "package main\nfunc main() {}\n")

	cfg := config.Default()
	cfg.ScanPaths = []string{tmpDir}
	cfg.History.Path = filepath.Join(tmpDir, "history.db")
	cfg.History.ProjectKey = "test"

	app := newTestApp(t, cfg)
	if err := app.InitialScan(context.Background()); err != nil {
		t.Fatal(err)
	}

	result := app.RunDetection(context.Background())
	if err := app.SaveSnapshot(result); err != nil {
		t.Fatal(err)
	}

	snapshots, err := app.store.LoadSnapshots("test", time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(snapshots))
	}
	if snapshots[0].FileCount != 1 {
		t.Errorf("unexpected snapshot: %+v", snapshots[0])
	}
}

func TestApp_TraceImportChain(t *testing.T) {
	app := &App{Graph: graph.NewGraph()}
	app.Graph.AddFile(&parser.File{Path: "a.go", Module: "A", Imports: []parser.Import{{Module: "B"}}})
	app.Graph.AddFile(&parser.File{Path: "b.go", Module: "B", Imports: []parser.Import{{Module: "C"}}})
	app.Graph.AddFile(&parser.File{Path: "c.go", Module: "C"})

	out, err := app.TraceImportChain("A", "C")
	if err != nil {
		t.Fatalf("expected trace success, got error: %v", err)
	}

	if !strings.Contains(out, "Import chain: A -> C") {
		t.Fatalf("expected trace header, got: %s", out)
	}
	if !strings.Contains(out, "A\n  -> B\n  -> C") {
		t.Fatalf("expected chain body, got: %s", out)
	}
}

func TestApp_TraceImportChain_Errors(t *testing.T) {
	app := &App{Graph: graph.NewGraph()}
	app.Graph.AddFile(&parser.File{Path: "a.go", Module: "A"})
	app.Graph.AddFile(&parser.File{Path: "b.go", Module: "B"})

	tests := []struct {
		name       string
		from       string
		to         string
		errContain string
	}{
		{
			name:       "missing source",
			from:       "missing",
			to:         "A",
			errContain: "source module not found",
		},
		{
			name:       "missing target",
			from:       "A",
			to:         "missing",
			errContain: "target module not found",
		},
		{
			name:       "no path",
			from:       "A",
			to:         "B",
			errContain: "no import chain found",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := app.TraceImportChain(tc.from, tc.to)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tc.errContain) {
				t.Fatalf("expected error to contain %q, got %q", tc.errContain, err.Error())
			}
		})
	}
}

func TestPythonModuleName(t *testing.T) {
	tests := []struct {
		rel  string
		want string
	}{
		{"pkg/mod.py", "pkg.mod"},
		{"pkg/__init__.py", "pkg"},
		{"top.py", "top"},
	}
	for _, tc := range tests {
		if got := pythonModuleName(tc.rel); got != tc.want {
			t.Errorf("pythonModuleName(%q) = %q, want %q", tc.rel, got, tc.want)
		}
	}
}

func TestApp_ResolveRelativeImports(t *testing.T) {
	cfg := config.Default()
	cfg.ScanPaths = []string{"/src"}
	app := &App{Config: cfg}

	file := &parser.File{
		Path:     "/src/app/ui/panel.ts",
		Language: "typescript",
		Imports: []parser.Import{
			{Module: "./helpers", IsRelative: true},
			{Module: "../shared/api", IsRelative: true},
			{Module: "react"},
		},
	}
	app.resolveRelativeImports(file)

	if file.Imports[0].Module != "app/ui/helpers" {
		t.Errorf("unexpected sibling resolution: %q", file.Imports[0].Module)
	}
	if file.Imports[1].Module != "app/shared/api" {
		t.Errorf("unexpected parent resolution: %q", file.Imports[1].Module)
	}
	if file.Imports[2].Module != "react" {
		t.Errorf("bare import should be untouched: %q", file.Imports[2].Module)
	}
}

func TestApp_ResolvePythonRelativeImports(t *testing.T) {
	cfg := config.Default()
	cfg.ScanPaths = []string{"/src"}
	app := &App{Config: cfg}

	file := &parser.File{
		Path:     "/src/pkg/sub/mod.py",
		Language: "python",
		Imports: []parser.Import{
			{Module: "util", RawImport: ".util", IsRelative: true},
			{Module: "base", RawImport: "..base", IsRelative: true},
			{Module: "", RawImport: ".", IsRelative: true},
			{Module: "os", RawImport: "os"},
		},
	}
	app.resolveRelativeImports(file)

	if file.Imports[0].Module != "pkg.sub.util" {
		t.Errorf("sibling import mis-resolved: %q", file.Imports[0].Module)
	}
	if file.Imports[1].Module != "pkg.base" {
		t.Errorf("parent import mis-resolved: %q", file.Imports[1].Module)
	}
	if file.Imports[2].Module != "pkg.sub" {
		t.Errorf("package import mis-resolved: %q", file.Imports[2].Module)
	}
	if file.Imports[3].Module != "os" {
		t.Errorf("absolute import should be untouched: %q", file.Imports[3].Module)
	}
}

func TestReadGoModulePath(t *testing.T) {
	tmpDir := t.TempDir()
	modPath := filepath.Join(tmpDir, "go.mod")
	writeFile(t, modPath, "// comment\nmodule example.com/thing\n\ngo 1.24\n")

	got, ok := readGoModulePath(modPath)
	if !ok || got != "example.com/thing" {
		t.Fatalf("readGoModulePath = %q, %v", got, ok)
	}

	if _, ok := readGoModulePath(filepath.Join(tmpDir, "missing")); ok {
		t.Error("expected miss for absent file")
	}
}
