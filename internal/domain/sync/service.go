package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"tgsync/internal/domain/record"
)

// Servicer интерфейс сервиса синхронизации
type Servicer interface {
	// SyncRecords сверяет батч со всеми хранилищами и записывает результат
	SyncRecords(ctx context.Context, batch []record.Record) (*Report, error)

	// Stats возвращает накопленную статистику
	Stats() Stats

	// ResetStats сбрасывает статистику
	ResetStats() error

	// Providers возвращает имена подключенных хранилищ
	Providers() []string
}

// Service синхронизирует батчи записей со всеми настроенными хранилищами.
type Service struct {
	providers  []Provider
	reconciler *Reconciler
	log        *slog.Logger
	config     *ServiceConfig

	mu      gosync.Mutex
	running bool
	stats   Stats
}

// NewService создает новый сервис синхронизации
func NewService(providers []Provider, reconciler *Reconciler, log *slog.Logger, config *ServiceConfig) *Service {
	if config == nil {
		config = &ServiceConfig{}
	}

	s := &Service{
		providers:  providers,
		reconciler: reconciler,
		log:        log.With("component", "sync_service"),
		config:     config,
	}

	if stats, err := loadStats(config.StatsPath); err != nil {
		s.log.Warn("failed to load sync stats", "path", config.StatsPath, "error", err)
	} else {
		s.stats = stats
	}

	return s
}

// SyncRecords сверяет batch с каждым хранилищем: чтение -> сверка -> запись.
// Ошибка возвращается, только если ни одно хранилище не приняло батч.
func (s *Service) SyncRecords(ctx context.Context, batch []record.Record) (*Report, error) {
	if len(s.providers) == 0 {
		return nil, ErrNoProviders
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	report := &Report{
		RunID:     uuid.NewString(),
		Records:   len(batch),
		StartTime: time.Now(),
	}
	log := s.log.With("run_id", report.RunID)

	if len(batch) == 0 {
		log.Info("no records to sync")
		report.EndTime = time.Now()
		return report, nil
	}

	var errs []error
	for _, p := range s.providers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pr, err := s.syncProvider(ctx, log, p, batch)
		report.Providers = append(report.Providers, pr)
		if err != nil {
			log.Error("failed to sync provider", "provider", p.Name(), "error", err)
			errs = append(errs, err)
			continue
		}
		report.Succeeded++
		log.Info("synced provider",
			"provider", p.Name(),
			"records", len(batch),
			"inserted", pr.Inserted,
			"updated", pr.Updated,
		)
	}

	report.EndTime = time.Now()
	report.Duration = report.EndTime.Sub(report.StartTime)
	s.updateStats(report)

	if report.Succeeded == 0 {
		return report, fmt.Errorf("%w: %w", ErrAllProviders, errors.Join(errs...))
	}

	if report.Complete() {
		log.Info("synced records to all providers",
			"records", len(batch),
			"providers", len(s.providers),
			"duration", report.Duration,
		)
	} else {
		log.Warn("partially synced records",
			"records", len(batch),
			"succeeded", report.Succeeded,
			"providers", len(s.providers),
		)
	}

	return report, nil
}

func (s *Service) syncProvider(ctx context.Context, log *slog.Logger, p Provider, batch []record.Record) (ProviderReport, error) {
	pr := ProviderReport{Provider: p.Name()}

	fail := func(err error) (ProviderReport, error) {
		pr.Error = err.Error()
		return pr, err
	}

	existing, err := p.ReadTable(ctx)
	if err != nil {
		return fail(fmt.Errorf("%w: %s: %w", ErrStoreRead, p.Name(), err))
	}

	res, err := s.reconciler.Reconcile(existing, batch)
	if err != nil {
		return fail(err)
	}
	if len(res.Duplicates) > 0 {
		log.Warn("provider table has duplicate ids", "provider", p.Name(), "ids", res.Duplicates)
	}

	if err := p.WriteTable(ctx, res.Table); err != nil {
		return fail(fmt.Errorf("%w: %s: %w", ErrStoreWrite, p.Name(), err))
	}

	pr.Success = true
	pr.Rows = res.Table.Len()
	pr.Inserted = res.Inserted
	pr.Updated = res.Updated
	pr.Unchanged = res.Unchanged
	pr.Duplicates = res.Duplicates
	return pr, nil
}

// Providers возвращает имена подключенных хранилищ
func (s *Service) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for _, p := range s.providers {
		names = append(names, p.Name())
	}
	return names
}

// Stats возвращает копию статистики
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// ResetStats сбрасывает статистику синхронизации
func (s *Service) ResetStats() error {
	s.mu.Lock()
	s.stats = Stats{}
	stats := s.stats
	s.mu.Unlock()
	return saveStats(s.config.StatsPath, stats)
}

// updateStats обновляет статистику синхронизации
func (s *Service) updateStats(report *Report) {
	s.mu.Lock()
	st := &s.stats
	st.TotalSyncs++

	if report.Succeeded > 0 {
		st.LastSuccessful = report.EndTime
	} else {
		st.LastFailed = report.EndTime
	}
	st.TotalErrors += len(report.Providers) - report.Succeeded
	st.TotalRecords += report.Records
	for _, pr := range report.Providers {
		st.TotalInserted += pr.Inserted
		st.TotalUpdated += pr.Updated
	}

	// Обновляем среднюю продолжительность
	if st.AvgSyncDuration == 0 {
		st.AvgSyncDuration = report.Duration.Seconds()
	} else {
		st.AvgSyncDuration = (st.AvgSyncDuration*float64(st.TotalSyncs-1) +
			report.Duration.Seconds()) / float64(st.TotalSyncs)
	}
	snapshot := *st
	s.mu.Unlock()

	if err := saveStats(s.config.StatsPath, snapshot); err != nil {
		s.log.Warn("failed to save sync stats", "error", err)
	}
}

func loadStats(path string) (Stats, error) {
	var st Stats
	if path == "" {
		return st, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("read stats: %w", err)
	}

	if err := json.Unmarshal(data, &st); err != nil {
		return Stats{}, fmt.Errorf("parse stats: %w", err)
	}
	return st, nil
}

func saveStats(path string, st Stats) error {
	if path == "" {
		return nil
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create stats dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write stats: %w", err)
	}
	return nil
}
