// # cmd/depscan/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"depscan/internal/config"
	"depscan/internal/shared/observability"
)

var (
	configPath = flag.String("config", "./depscan.toml", "Path to config file")
	once       = flag.Bool("once", false, "Run single scan and exit")
	ui         = flag.Bool("ui", false, "Enable terminal UI mode")
	serve      = flag.Bool("serve", false, "Start the HTTP API even without server.addr in config")
	trace      = flag.Bool("trace", false, "Trace shortest import chain between two modules")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("depscan v%s\n", VERSION)
		os.Exit(0)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stdout
	if *ui {
		// In UI mode, avoid stdout logs corrupting the TUI.
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
				fmt.Fprintf(os.Stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
			} else {
				f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
				if err == nil {
					output = f
				} else {
					fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
				}
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		if *configPath == "./depscan.toml" {
			cfg, err = config.Load("./depscan.example.toml")
		}
		if err != nil {
			slog.Warn("no config file found, using defaults", "path", *configPath)
			cfg = config.Default()
		}
	}

	if *trace {
		if flag.NArg() != 2 {
			fmt.Fprintln(os.Stderr, "trace mode requires two module arguments: depscan --trace <from> <to>")
			os.Exit(1)
		}
	} else if flag.NArg() > 0 {
		cfg.ScanPaths = []string{flag.Arg(0)}
	}

	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.Tracing.Endpoint, VERSION)
	if err != nil {
		slog.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdownTracer(ctx); err != nil {
			slog.Warn("tracer shutdown failed", "error", err)
		}
	}()

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	// Initial scan
	if err := app.InitialScan(ctx); err != nil {
		slog.Error("initial scan failed", "error", err)
		os.Exit(1)
	}

	if *trace {
		out, err := app.TraceImportChain(flag.Arg(0), flag.Arg(1))
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		fmt.Println(out)
		os.Exit(0)
	}

	result := app.RunDetection(ctx)
	if err := app.GenerateOutputs(result); err != nil {
		slog.Error("failed to generate outputs", "error", err)
	}
	if err := app.SaveSnapshot(result); err != nil {
		slog.Warn("failed to save history snapshot", "error", err)
	}

	if !*ui {
		app.PrintSummary(app.Graph.FileCount(), app.Graph.ModuleCount(), 0, result)
	}

	if *serve || cfg.Server.Addr != "" {
		if err := app.StartServer(ctx); err != nil {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}

	if *once {
		os.Exit(0)
	}

	// Watch mode
	if err := app.StartWatcher(); err != nil {
		slog.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}

	if *ui {
		if err := app.RunUI(); err != nil {
			slog.Error("failed to run UI", "error", err)
			os.Exit(1)
		}
	} else {
		// Block forever
		select {}
	}
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "depscan", "depscan.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "depscan", "depscan.log")
	}

	return "depscan.log"
}
