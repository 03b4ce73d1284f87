package sync

import (
	"tgsync/internal/domain/sync"
)

type syncInput struct {
	Body sync.SyncRequest
}

type syncOutput struct {
	Body sync.SyncResponse
}

type getStatsInput struct{}

type getStatsOutput struct {
	Body sync.StatsResponse
}

type resetStatsInput struct{}

type resetStatsOutput struct {
	Body struct {
		Status string `json:"status"`
	}
}
