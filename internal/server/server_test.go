// # internal/server/server_test.go
package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depscan/internal/depgraph"
	"depscan/internal/history"
)

type staticProvider struct {
	result depgraph.Result
	at     time.Time
}

func (p *staticProvider) LastResult() depgraph.Result { return p.result }
func (p *staticProvider) LastScanTime() time.Time     { return p.at }

func cyclicResult() depgraph.Result {
	return depgraph.Detect(depgraph.Graph{
		Nodes: []string{"A", "B"},
		Edges: []depgraph.Edge{{From: "A", To: "B"}, {From: "B", To: "A"}},
	})
}

func testHandler(t *testing.T, provider ResultProvider, store *history.Store) http.Handler {
	t.Helper()
	_, router, err := loadSpec()
	require.NoError(t, err)

	s := &Server{provider: provider, store: store, projectKey: "default"}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/openapi.yaml", s.handleSpec)

	api := http.NewServeMux()
	api.HandleFunc("/api/v1/report", s.handleReport)
	api.HandleFunc("/api/v1/history", s.handleHistory)
	api.HandleFunc("/api/v1/trends", s.handleTrends)
	mux.Handle("/api/", validateRequest(router, api))
	return mux
}

func TestLoadSpec_EmbeddedDocumentIsValid(t *testing.T) {
	doc, router, err := loadSpec()
	require.NoError(t, err)
	require.NotNil(t, router)
	assert.Equal(t, "depscan API", doc.Info.Title)
}

func TestHandleReport(t *testing.T) {
	handler := testHandler(t, &staticProvider{result: cyclicResult(), at: time.Now()}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/report", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, true, payload["hasCycles"])
	assert.Equal(t, float64(1), payload["cycleCount"])
}

func TestHandleHealth(t *testing.T) {
	at := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)
	handler := testHandler(t, &staticProvider{at: at}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "up", payload["status"])
	assert.Equal(t, "2026-08-24T09:00:00Z", payload["lastScan"])
}

func TestValidateRequest_UnknownRoute(t *testing.T) {
	handler := testHandler(t, &staticProvider{}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHistory_DisabledWithoutStore(t *testing.T) {
	handler := testHandler(t, &staticProvider{}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func openTrendStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, err = store.SaveSnapshot(history.Snapshot{
		Timestamp:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		ModuleCount: 10,
		CycleCount:  0,
	})
	require.NoError(t, err)
	_, err = store.SaveSnapshot(history.Snapshot{
		Timestamp:   time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC),
		ModuleCount: 12,
		CycleCount:  2,
	})
	require.NoError(t, err)
	return store
}

func TestHandleTrends(t *testing.T) {
	handler := testHandler(t, &staticProvider{}, openTrendStore(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/trends", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, float64(2), payload["scanCount"])

	points, ok := payload["points"].([]any)
	require.True(t, ok)
	require.Len(t, points, 2)

	last, ok := points[1].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), last["deltaCycles"])
	assert.Equal(t, float64(2), last["deltaModules"])
}

func TestHandleTrends_EmptyHistory(t *testing.T) {
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	handler := testHandler(t, &staticProvider{}, store)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/trends", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleTrends_DisabledWithoutStore(t *testing.T) {
	handler := testHandler(t, &staticProvider{}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/trends", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleHistory_RejectsBadSince(t *testing.T) {
	handler := testHandler(t, &staticProvider{}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history?since=not-a-time", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
