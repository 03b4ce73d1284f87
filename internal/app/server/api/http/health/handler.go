package health

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"
)

const (
	StatusOK       = "OK"
	StatusDegraded = "DEGRADED"
)

// Pinger - хранилище, доступность которого проверяет health check
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

type Handler struct {
	providers  []Pinger
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(providers []Pinger, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		providers:  providers,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.healthCheckOp(), h.healthCheck)
}

func (h *Handler) healthCheck(ctx context.Context, _ *Input) (*Output, error) {
	h.log.Debug("health check request received")

	resp := HealthResponse{
		Status:    StatusOK,
		Providers: make([]ProviderStatus, 0, len(h.providers)),
	}
	for _, p := range h.providers {
		ps := ProviderStatus{Name: p.Name(), Available: true}
		if err := p.Ping(ctx); err != nil {
			h.log.Warn("provider is not available", "provider", p.Name(), "error", err)
			ps.Available = false
			ps.Error = err.Error()
			resp.Status = StatusDegraded
		}
		resp.Providers = append(resp.Providers, ps)
	}

	return &Output{Body: resp}, nil
}
