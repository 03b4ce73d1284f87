package status

import (
	"tgsync/internal/app/collector"
)

type Input struct {
	Provider string `query:"provider" doc:"Provider name; the first configured provider when empty"`
}

type Output struct {
	Body StatusResponse
}

type StatusResponse struct {
	Provider string                 `json:"provider"`
	Rows     int                    `json:"rows"`
	Messages collector.StatusReport `json:"messages"`
	Groups   collector.StatusReport `json:"common_groups"`
}
