package status

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (h *Handler) getStatusOp() huma.Operation {
	return huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/status",
		Summary:     "Состояние обработки таблицы",
		Description: "Сколько строк обработано загрузчиками сообщений и общих групп",
		Tags:        []string{"status"},
		Middlewares: h.middleware,
	}
}
