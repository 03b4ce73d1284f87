package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"tgsync/internal/app/server/api"
	"tgsync/internal/domain/record"
	"tgsync/internal/domain/sync"
	"tgsync/internal/infrastructure/storage"
	"tgsync/internal/infrastructure/storage/csvfile"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	dir := t.TempDir()
	backend, err := csvfile.New(filepath.Join(dir, "telegram_data.csv"), "utf-8")
	require.NoError(t, err)

	now := func() time.Time { return time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC) }
	adapter := storage.NewAdapter("csv", backend, storage.Options{Now: now}, slog.Default())
	service := sync.NewService([]sync.Provider{adapter}, sync.NewReconciler(slog.Default(), now), slog.Default(),
		&sync.ServiceConfig{StatsPath: filepath.Join(dir, "stats.json")})

	srv := httptest.NewServer(api.New(service, []api.Provider{adapter}, slog.Default()))
	t.Cleanup(srv.Close)

	// адрес без схемы, как в конфигурации
	return New(strings.TrimPrefix(srv.URL, "http://"), slog.Default())
}

func TestClient_SyncRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	health, err := c.HealthCheck(ctx)
	require.NoError(t, err)
	assert.Equal(t, "OK", health.Status)
	require.Len(t, health.Providers, 1)
	assert.True(t, health.Providers[0].Available)

	report, err := c.Sync(ctx, []record.Record{
		{"id": "1", "username": "ann", "is_contact": "Yes"},
		{"id": "2", "title": "Bob", "has_chat": "Yes"},
	})
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.True(t, report.Complete())
	assert.Equal(t, 2, report.Providers[0].Inserted)

	status, err := c.Status(ctx, "csv")
	require.NoError(t, err)
	assert.Equal(t, 2, status.Rows)
	assert.Equal(t, 2, status.Messages.Pending)

	stats, err := c.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"csv"}, stats.Providers)
	assert.Equal(t, 1, stats.Stats.TotalSyncs)

	require.NoError(t, c.ResetStats(ctx))
	stats, err = c.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.Stats.TotalSyncs)
}

func TestClient_ServerErrors(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.Sync(ctx, []record.Record{{"username": "ann"}})
	assert.ErrorIs(t, err, ErrServer)
	assert.ErrorContains(t, err, "422")

	_, err = c.Status(ctx, "nope")
	assert.ErrorIs(t, err, ErrServer)
	assert.ErrorContains(t, err, "404")
}

func TestClient_PlainErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, slog.Default()).HealthCheck(context.Background())
	assert.ErrorIs(t, err, ErrServer)
	assert.ErrorContains(t, err, "502")
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := New(addr, slog.Default()).HealthCheck(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrServer)
}
