package sync

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"tgsync/internal/domain/sync"
)

const (
	statusOk      = "Ok"
	statusPartial = "Partial"
	statusError   = "Error"
)

type Handler struct {
	service    sync.Servicer
	log        *slog.Logger
	middleware huma.Middlewares
}

func NewHandler(service sync.Servicer, log *slog.Logger, middleware huma.Middlewares) *Handler {
	return &Handler{
		service:    service,
		log:        log,
		middleware: middleware,
	}
}

func (h *Handler) SetupRoutes(api huma.API) {
	huma.Register(api, h.syncOp(), h.sync)
	huma.Register(api, h.getStatsOp(), h.getStats)
	huma.Register(api, h.resetStatsOp(), h.resetStats)
}

func (h *Handler) sync(ctx context.Context, input *syncInput) (*syncOutput, error) {
	report, err := h.service.SyncRecords(ctx, input.Body.ToRecords())
	switch {
	case errors.Is(err, sync.ErrMissingID):
		return nil, huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, sync.ErrAlreadyRunning):
		return nil, huma.Error409Conflict(err.Error())
	case err != nil:
		h.log.Error("sync failed", "error", err)
		return &syncOutput{
			Body: sync.SyncResponse{
				Status: statusError,
				Error:  err.Error(),
				Report: report,
			},
		}, nil
	}

	status := statusOk
	if !report.Complete() {
		status = statusPartial
	}

	return &syncOutput{
		Body: sync.SyncResponse{
			Status: status,
			Report: report,
		},
	}, nil
}

func (h *Handler) getStats(_ context.Context, _ *getStatsInput) (*getStatsOutput, error) {
	return &getStatsOutput{
		Body: sync.StatsResponse{
			Providers: h.service.Providers(),
			Stats:     h.service.Stats(),
		},
	}, nil
}

func (h *Handler) resetStats(_ context.Context, _ *resetStatsInput) (*resetStatsOutput, error) {
	if err := h.service.ResetStats(); err != nil {
		return nil, huma.Error500InternalServerError("failed to reset stats", err)
	}

	out := &resetStatsOutput{}
	out.Body.Status = statusOk
	return out, nil
}
