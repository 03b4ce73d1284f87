package health

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) healthCheckOp() huma.Operation {
	return huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/v1/health",
		Summary:     "Проверить доступность хранилищ",
		Description: "Пингует каждое хранилище; DEGRADED, если хотя бы одно недоступно",
		Tags:        []string{"health"},
		Middlewares: h.middleware,
	}
}
