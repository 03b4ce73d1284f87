package status

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"tgsync/internal/app/collector"
	"tgsync/internal/domain/record"
)

// Reader - хранилище, по таблице которого строится отчет
type Reader interface {
	Name() string
	ReadTable(ctx context.Context) (record.Table, error)
}

type Handler struct {
	providers  []Reader
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(providers []Reader, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		providers:  providers,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.getStatusOp(), h.getStatus)
}

func (h *Handler) getStatus(ctx context.Context, input *Input) (*Output, error) {
	p := h.find(input.Provider)
	if p == nil {
		return nil, huma.Error404NotFound("provider not found")
	}

	table, err := p.ReadTable(ctx)
	if err != nil {
		h.log.Error("failed to read table", "provider", p.Name(), "error", err)
		return nil, huma.Error502BadGateway("failed to read provider table", err)
	}

	return &Output{
		Body: StatusResponse{
			Provider: p.Name(),
			Rows:     table.Len(),
			Messages: collector.MessagesStatus(table),
			Groups:   collector.GroupsStatus(table),
		},
	}, nil
}

func (h *Handler) find(name string) Reader {
	for _, p := range h.providers {
		if name == "" || p.Name() == name {
			return p
		}
	}
	return nil
}
