// # internal/config/config.go
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ScanPaths []string        `toml:"scan_paths"`
	Exclude   Exclude         `toml:"exclude"`
	Watch     Watch           `toml:"watch"`
	Output    Output          `toml:"output"`
	History   History         `toml:"history"`
	Server    Server          `toml:"server"`
	Tracing   Tracing         `toml:"tracing"`
	Languages map[string]bool `toml:"languages"` // enable/disable per parser, e.g. html = true
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`  // glob patterns matched against directory names
	Files []string `toml:"files"` // glob patterns matched against file names
}

type Watch struct {
	Debounce        time.Duration `toml:"debounce"`
	RescanPerSecond float64       `toml:"rescan_per_second"` // 0 disables throttling
	RescanBurst     int           `toml:"rescan_burst"`
}

type Output struct {
	DOT      string `toml:"dot"`
	TSV      string `toml:"tsv"`
	Markdown string `toml:"markdown"`
	Mermaid  string `toml:"mermaid"`
}

type History struct {
	Path       string `toml:"path"` // sqlite file, empty disables history
	ProjectKey string `toml:"project_key"`
}

type Server struct {
	Addr string `toml:"addr"` // empty disables the HTTP server
}

type Tracing struct {
	Endpoint string `toml:"endpoint"` // OTLP gRPC endpoint, empty disables tracing
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if len(cfg.ScanPaths) == 0 {
		cfg.ScanPaths = []string{"."}
	}
	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{".git", "node_modules", "vendor", "__pycache__"}
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.RescanBurst == 0 {
		cfg.Watch.RescanBurst = 1
	}
	if cfg.History.ProjectKey == "" {
		cfg.History.ProjectKey = "default"
	}
}
