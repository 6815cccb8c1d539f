// # internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "depscan.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
scan_paths = ["src", "lib"]

[exclude]
dirs = ["dist"]
files = ["*.min.js"]

[watch]
debounce = 250000000
rescan_per_second = 2.0
rescan_burst = 4

[output]
dot = "deps.dot"
markdown = "report.md"

[history]
path = "history.db"
project_key = "web"

[server]
addr = ":8750"

[languages]
html = true
css = false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.ScanPaths) != 2 || cfg.ScanPaths[0] != "src" {
		t.Errorf("unexpected scan paths: %v", cfg.ScanPaths)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("unexpected debounce: %v", cfg.Watch.Debounce)
	}
	if cfg.Watch.RescanPerSecond != 2.0 || cfg.Watch.RescanBurst != 4 {
		t.Errorf("unexpected rescan limits: %+v", cfg.Watch)
	}
	if cfg.Output.DOT != "deps.dot" || cfg.Output.Markdown != "report.md" {
		t.Errorf("unexpected output config: %+v", cfg.Output)
	}
	if cfg.History.ProjectKey != "web" {
		t.Errorf("unexpected project key: %q", cfg.History.ProjectKey)
	}
	if cfg.Server.Addr != ":8750" {
		t.Errorf("unexpected server addr: %q", cfg.Server.Addr)
	}
	if !cfg.Languages["html"] || cfg.Languages["css"] {
		t.Errorf("unexpected language overrides: %v", cfg.Languages)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.ScanPaths) != 1 || cfg.ScanPaths[0] != "." {
		t.Errorf("expected default scan path, got %v", cfg.ScanPaths)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("expected default debounce, got %v", cfg.Watch.Debounce)
	}
	if cfg.Watch.RescanBurst != 1 {
		t.Errorf("expected default burst, got %d", cfg.Watch.RescanBurst)
	}
	if cfg.History.ProjectKey != "default" {
		t.Errorf("expected default project key, got %q", cfg.History.ProjectKey)
	}
	if cfg.Server.Addr != "" {
		t.Errorf("server should be disabled by default, got %q", cfg.Server.Addr)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if len(cfg.ScanPaths) != 1 || cfg.ScanPaths[0] != "." {
		t.Errorf("unexpected defaults: %v", cfg.ScanPaths)
	}
}
