package storage

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/exp/slog"

	"tgsync/internal/config"
	"tgsync/internal/infrastructure/storage/csvfile"
	"tgsync/internal/infrastructure/storage/postgres"
	"tgsync/internal/infrastructure/storage/sheets"
	"tgsync/internal/infrastructure/storage/sqlite"
)

// Open создает хранилище по конфигурации и проверяет его доступность.
func Open(ctx context.Context, cfg config.ProviderConfig, log *slog.Logger) (*Adapter, error) {
	backend, err := newBackend(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("init provider %s: %w", cfg.Name, err)
	}

	a := NewAdapter(cfg.Name, backend, Options{
		Backup: cfg.Backup(),
		Keep:   cfg.BackupKeep,
	}, log)

	if err := a.Ping(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// OpenAll открывает все хранилища. Недоступные пропускаются с предупреждением;
// ошибка возвращается, только если не открылось ни одно.
func OpenAll(ctx context.Context, cfgs []config.ProviderConfig, log *slog.Logger) ([]*Adapter, error) {
	out := make([]*Adapter, 0, len(cfgs))
	var errs []error
	for _, c := range cfgs {
		a, err := Open(ctx, c, log)
		if err != nil {
			log.Warn("provider is not available, skipping", "provider", c.Name, "type", c.Type, "error", err)
			errs = append(errs, err)
			continue
		}
		log.Info("initialized provider", "provider", c.Name, "type", c.Type)
		out = append(out, a)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrNoProviders, errors.Join(errs...))
	}
	return out, nil
}

func CloseAll(adapters []*Adapter) {
	for _, a := range adapters {
		_ = a.Close()
	}
}

func newBackend(ctx context.Context, cfg config.ProviderConfig, log *slog.Logger) (Backend, error) {
	switch cfg.Type {
	case config.ProviderCSV:
		return csvfile.New(cfg.CSVPath, cfg.Encoding)
	case config.ProviderGoogleSheets:
		return sheets.New(ctx, cfg.SpreadsheetID, cfg.SheetName, cfg.CredentialsFile)
	case config.ProviderSQLite:
		return sqlite.New(ctx, cfg.DSN, cfg.Table, log)
	case config.ProviderPostgres:
		return postgres.New(ctx, cfg.DSN, cfg.Table, log)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownProvider, cfg.Type)
	}
}
