package sync

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) syncOp() huma.Operation {
	return huma.Operation{
		OperationID:   "sync-records",
		Method:        http.MethodPost,
		Path:          "/api/v1/sync",
		Summary:       "Синхронизировать батч записей",
		Description:   "Сверяет батч с таблицей каждого хранилища и записывает результат",
		Tags:          []string{"sync"},
		DefaultStatus: http.StatusOK,
		Middlewares:   h.middleware,
	}
}

func (h *Handler) getStatsOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-get-stats",
		Method:      http.MethodGet,
		Path:        "/api/v1/sync/stats",
		Summary:     "Получить статистику синхронизаций",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}

func (h *Handler) resetStatsOp() huma.Operation {
	return huma.Operation{
		OperationID: "sync-reset-stats",
		Method:      http.MethodDelete,
		Path:        "/api/v1/sync/stats",
		Summary:     "Сбросить статистику синхронизаций",
		Tags:        []string{"sync"},
		Middlewares: h.middleware,
	}
}
