// HTTP API поверх сервиса синхронизации:
//
//	GET    /api/v1/health       # доступность хранилищ
//	POST   /api/v1/sync         # сверить батч записей со всеми хранилищами
//	GET    /api/v1/sync/stats   # накопленная статистика синхронизаций
//	DELETE /api/v1/sync/stats   # сбросить статистику
//	GET    /api/v1/status       # состояние обработки таблицы загрузчиками
package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"golang.org/x/exp/slog"

	healthAPI "tgsync/internal/app/server/api/http/health"
	"tgsync/internal/app/server/api/http/middleware/logger"
	statusAPI "tgsync/internal/app/server/api/http/status"
	syncAPI "tgsync/internal/app/server/api/http/sync"
	"tgsync/internal/domain/record"
	"tgsync/internal/domain/sync"
)

// Provider - хранилище, которое API опрашивает напрямую
type Provider interface {
	Name() string
	Ping(ctx context.Context) error
	ReadTable(ctx context.Context) (record.Table, error)
}

type Handlers struct {
	Health *healthAPI.Handler
	Sync   *syncAPI.Handler
	Status *statusAPI.Handler
}

// New создает *chi.Mux со всеми операциями через huma.Register
func New(service sync.Servicer, providers []Provider, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()

	config := huma.DefaultConfig("tgsync API", "1.0.0")
	API := humachi.New(mux, config)

	h := handlers(service, providers, log)
	h.Health.SetupRoutes(API)
	h.Sync.SetupRoutes(API)
	h.Status.SetupRoutes(API)

	return mux
}

func handlers(service sync.Servicer, providers []Provider, log *slog.Logger) *Handlers {
	// у всех групп один и тот же набор: request id и access log
	middlewares := huma.Middlewares{logger.New(log).Middleware()}

	pingers := make([]healthAPI.Pinger, 0, len(providers))
	readers := make([]statusAPI.Reader, 0, len(providers))
	for _, p := range providers {
		pingers = append(pingers, p)
		readers = append(readers, p)
	}

	healthHandler := healthAPI.NewHandler(pingers, log, middlewares)
	syncHandler := syncAPI.NewHandler(service, log, middlewares)
	statusHandler := statusAPI.NewHandler(readers, log, middlewares)

	return &Handlers{
		Health: healthHandler,
		Sync:   syncHandler,
		Status: statusHandler,
	}
}
