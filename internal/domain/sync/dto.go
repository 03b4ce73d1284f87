package sync

import (
	"tgsync/internal/domain/record"
)

// DTO (Data Transfer Objects) для API синхронизации

// SyncRequest запрос на синхронизацию батча
type SyncRequest struct {
	Records []map[string]string `json:"records" doc:"Records keyed by column name; every record needs an id"`
}

// SyncResponse ответ на синхронизацию батча
type SyncResponse struct {
	Status string  `json:"status"`
	Error  string  `json:"error,omitempty"`
	Report *Report `json:"report,omitempty"`
}

// StatsResponse ответ со статистикой синхронизаций
type StatsResponse struct {
	Providers []string `json:"providers"`
	Stats     Stats    `json:"stats"`
}

// ToRecords конвертирует тело запроса в записи.
func (r *SyncRequest) ToRecords() []record.Record {
	out := make([]record.Record, 0, len(r.Records))
	for _, m := range r.Records {
		rec := make(record.Record, len(m))
		for k, v := range m {
			rec[k] = v
		}
		out = append(out, rec)
	}
	return out
}
