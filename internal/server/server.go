// # internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"depscan/internal/depgraph"
	"depscan/internal/history"
)

// ResultProvider hands the server the latest detection state. The app
// updates it after every scan; reads must be safe from any goroutine.
type ResultProvider interface {
	LastResult() depgraph.Result
	LastScanTime() time.Time
}

// Server exposes metrics, health, and the read-only analysis API.
type Server struct {
	addr       string
	provider   ResultProvider
	store      *history.Store // may be nil when history is disabled
	projectKey string
	server     *http.Server
}

func New(addr string, provider ResultProvider, store *history.Store, projectKey string) *Server {
	return &Server{
		addr:       addr,
		provider:   provider,
		store:      store,
		projectKey: projectKey,
	}
}

func (s *Server) Start(ctx context.Context) error {
	_, router, err := loadSpec()
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/openapi.yaml", s.handleSpec)

	api := http.NewServeMux()
	api.HandleFunc("/api/v1/report", s.handleReport)
	api.HandleFunc("/api/v1/history", s.handleHistory)
	api.HandleFunc("/api/v1/trends", s.handleTrends)
	mux.Handle("/api/", validateRequest(router, api))

	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("server starting", "addr", s.addr)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
		}
	}()

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status": "up",
	}
	if s.provider != nil {
		if last := s.provider.LastScanTime(); !last.IsZero() {
			status["lastScan"] = last.UTC().Format(time.RFC3339)
		}
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(openapiSpec)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if s.provider == nil {
		http.Error(w, "no scan has run yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, resultPayload(s.provider.LastResult()))
}

func sinceParam(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("since")
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "history is disabled", http.StatusServiceUnavailable)
		return
	}

	since, err := sinceParam(r)
	if err != nil {
		http.Error(w, "invalid since parameter", http.StatusBadRequest)
		return
	}

	snapshots, err := s.store.LoadSnapshots(s.projectKey, since)
	if err != nil {
		slog.Error("failed to load history", "error", err)
		http.Error(w, "history query failed", http.StatusInternalServerError)
		return
	}

	payload := make([]map[string]any, 0, len(snapshots))
	for _, snap := range snapshots {
		payload = append(payload, map[string]any{
			"runId":         snap.RunID,
			"projectKey":    snap.ProjectKey,
			"timestamp":     snap.Timestamp.UTC().Format(time.RFC3339),
			"commitHash":    snap.CommitHash,
			"moduleCount":   snap.ModuleCount,
			"fileCount":     snap.FileCount,
			"edgeCount":     snap.EdgeCount,
			"cycleCount":    snap.CycleCount,
			"nodesInCycles": snap.NodesInCycles,
		})
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "history is disabled", http.StatusServiceUnavailable)
		return
	}

	since, err := sinceParam(r)
	if err != nil {
		http.Error(w, "invalid since parameter", http.StatusBadRequest)
		return
	}

	snapshots, err := s.store.LoadSnapshots(s.projectKey, since)
	if err != nil {
		slog.Error("failed to load history", "error", err)
		http.Error(w, "history query failed", http.StatusInternalServerError)
		return
	}

	report, err := history.BuildTrendReport(snapshots)
	if err != nil {
		http.Error(w, "no snapshots recorded", http.StatusNotFound)
		return
	}

	points := make([]map[string]any, 0, len(report.Points))
	for _, p := range report.Points {
		points = append(points, map[string]any{
			"timestamp":     p.Timestamp.UTC().Format(time.RFC3339),
			"commitHash":    p.CommitHash,
			"moduleCount":   p.ModuleCount,
			"fileCount":     p.FileCount,
			"edgeCount":     p.EdgeCount,
			"cycleCount":    p.CycleCount,
			"nodesInCycles": p.NodesInCycles,
			"deltaModules":  p.DeltaModules,
			"deltaFiles":    p.DeltaFiles,
			"deltaEdges":    p.DeltaEdges,
			"deltaCycles":   p.DeltaCycles,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"since":     report.Since.UTC().Format(time.RFC3339),
		"until":     report.Until.UTC().Format(time.RFC3339),
		"scanCount": report.ScanCount,
		"points":    points,
	})
}

func resultPayload(result depgraph.Result) map[string]any {
	cycles := make([]map[string]any, 0, len(result.Cycles))
	for _, c := range result.Cycles {
		cycles = append(cycles, map[string]any{
			"path":      c.Path,
			"pathNames": c.PathNames,
			"length":    c.Length,
			"nodeCount": c.NodeCount,
		})
	}

	suggestions := make([]map[string]any, 0, len(result.Suggestions))
	for _, s := range result.Suggestions {
		entry := map[string]any{
			"cycleIndex":  s.CycleIndex,
			"breakAt":     s.BreakAt,
			"breakAtName": s.BreakAtName,
			"reason":      s.Reason,
		}
		if s.RemoveImport != nil {
			entry["removeImport"] = map[string]any{
				"from":     s.RemoveImport.From,
				"to":       s.RemoveImport.To,
				"fromName": s.RemoveImport.FromName,
				"toName":   s.RemoveImport.ToName,
			}
		}
		suggestions = append(suggestions, entry)
	}

	return map[string]any{
		"hasCycles":     result.HasCycles,
		"cycleCount":    result.CycleCount,
		"cycles":        cycles,
		"suggestions":   suggestions,
		"visualization": result.Visualization,
		"stats": map[string]any{
			"totalNodes":    result.Stats.TotalNodes,
			"totalEdges":    result.Stats.TotalEdges,
			"nodesInCycles": result.Stats.NodesInCycles,
		},
	}
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
