package sync

import (
	"time"

	"tgsync/internal/domain/record"
)

// Result результат сверки одной таблицы с батчем.
type Result struct {
	Table      record.Table `json:"-"`
	Stamp      string       `json:"stamp"`
	Inserted   int          `json:"inserted"`
	Updated    int          `json:"updated"`
	Unchanged  int          `json:"unchanged"`
	Duplicates []string     `json:"duplicates,omitempty"`
}

// ProviderReport итог синхронизации с одним хранилищем.
type ProviderReport struct {
	Provider   string   `json:"provider"`
	Success    bool     `json:"success"`
	Rows       int      `json:"rows"`
	Inserted   int      `json:"inserted"`
	Updated    int      `json:"updated"`
	Unchanged  int      `json:"unchanged"`
	Duplicates []string `json:"duplicates,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// Report итог синхронизации батча со всеми хранилищами.
type Report struct {
	RunID     string           `json:"run_id"`
	Records   int              `json:"records"`
	Providers []ProviderReport `json:"providers"`
	Succeeded int              `json:"succeeded"`
	StartTime time.Time        `json:"start_time"`
	EndTime   time.Time        `json:"end_time"`
	Duration  time.Duration    `json:"duration"`
}

// Complete сообщает, что батч записан во все хранилища.
func (r *Report) Complete() bool {
	return r.Succeeded == len(r.Providers)
}

// Stats накопленная статистика синхронизаций.
type Stats struct {
	TotalSyncs      int       `json:"total_syncs" yaml:"total_syncs"`
	TotalErrors     int       `json:"total_errors" yaml:"total_errors"`
	LastSuccessful  time.Time `json:"last_successful" yaml:"last_successful"`
	LastFailed      time.Time `json:"last_failed" yaml:"last_failed"`
	TotalRecords    int       `json:"total_records" yaml:"total_records"`
	TotalInserted   int       `json:"total_inserted" yaml:"total_inserted"`
	TotalUpdated    int       `json:"total_updated" yaml:"total_updated"`
	AvgSyncDuration float64   `json:"avg_sync_duration" yaml:"avg_sync_duration"`
}

// ServiceConfig конфигурация сервиса синхронизации
type ServiceConfig struct {
	StatsPath string `json:"stats_path"`
}
