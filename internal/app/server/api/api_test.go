package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"tgsync/internal/app/server/api/http/middleware/logger"
	"tgsync/internal/domain/sync"
	"tgsync/internal/infrastructure/storage"
	"tgsync/internal/infrastructure/storage/csvfile"
)

func newTestServer(t *testing.T) (*chi.Mux, *storage.Adapter) {
	t.Helper()
	backend, err := csvfile.New(filepath.Join(t.TempDir(), "telegram_data.csv"), "utf-8")
	require.NoError(t, err)

	now := func() time.Time { return time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC) }
	adapter := storage.NewAdapter("csv", backend, storage.Options{Backup: true, Keep: 3, Now: now}, slog.Default())
	service := sync.NewService([]sync.Provider{adapter}, sync.NewReconciler(slog.Default(), now), slog.Default(),
		&sync.ServiceConfig{StatsPath: filepath.Join(t.TempDir(), "stats.json")})

	return New(service, []Provider{adapter}, slog.Default()), adapter
}

func serve(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestAPI_SyncAndStatus(t *testing.T) {
	mux, adapter := newTestServer(t)

	rec := serve(mux, http.MethodGet, "/api/v1/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(logger.RequestIDHeader))
	assert.Contains(t, rec.Body.String(), `"status":"OK"`)

	rec = serve(mux, http.MethodPost, "/api/v1/sync",
		`{"records":[{"id":"1","username":"ann","is_contact":"Yes"},{"id":"2","title":"Bob"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp sync.SyncResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Ok", resp.Status)
	require.NotNil(t, resp.Report)
	assert.Equal(t, 2, resp.Report.Providers[0].Inserted)

	table, err := adapter.ReadTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	rec = serve(mux, http.MethodGet, "/api/v1/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"provider":"csv"`)
	assert.Contains(t, rec.Body.String(), `"rows":2`)

	rec = serve(mux, http.MethodGet, "/api/v1/sync/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_syncs":1`)
}

func TestAPI_SyncMissingID(t *testing.T) {
	mux, _ := newTestServer(t)

	rec := serve(mux, http.MethodPost, "/api/v1/sync", `{"records":[{"username":"ann"}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAPI_StatusUnknownProvider(t *testing.T) {
	mux, _ := newTestServer(t)

	rec := serve(mux, http.MethodGet, "/api/v1/status?provider=excel", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNew_RegistersEveryOperation(t *testing.T) {
	var mux *chi.Mux
	require.NotPanics(t, func() {
		mux = New(nil, nil, slog.Default())
	})

	rec := serve(mux, http.MethodGet, "/openapi.json", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc struct {
		Paths      map[string]json.RawMessage `json:"paths"`
		Components struct {
			Schemas map[string]json.RawMessage `json:"schemas"`
		} `json:"components"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))

	for _, path := range []string{"/api/v1/health", "/api/v1/sync", "/api/v1/sync/stats", "/api/v1/status"} {
		assert.Contains(t, doc.Paths, path)
	}
	for _, schema := range []string{"HealthResponse", "StatusResponse", "SyncResponse"} {
		assert.Contains(t, doc.Components.Schemas, schema)
	}
}
