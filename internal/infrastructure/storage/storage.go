package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"tgsync/internal/domain/record"
	"tgsync/internal/domain/snapshot"
)

var (
	ErrUnavailable = errors.New("provider not available")
	ErrNoProviders = errors.New("no available providers")
)

// Backend - конкретное хранилище таблицы.
type Backend interface {
	snapshot.Repository

	// Source имя источника, из которого строятся имена снапшотов
	Source() string

	// ReadTable читает таблицу целиком; отсутствующая таблица - пустая таблица без ошибки
	ReadTable(ctx context.Context) (record.Table, error)

	// ReplaceTable перезаписывает таблицу целиком
	ReplaceTable(ctx context.Context, table record.Table) error

	// Ping проверяет доступность хранилища
	Ping(ctx context.Context) error

	Close() error
}

type Options struct {
	Backup bool
	Keep   int
	Now    func() time.Time
}

// Adapter оборачивает Backend снапшотами перед записью и нормализацией при чтении.
type Adapter struct {
	name      string
	backend   Backend
	snapshots *snapshot.Manager
	opts      Options
	log       *slog.Logger
}

func NewAdapter(name string, backend Backend, opts Options, log *slog.Logger) *Adapter {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Keep < 0 {
		opts.Keep = snapshot.DefaultKeep
	}
	log = log.With("component", "storage", "provider", name)
	return &Adapter{
		name:      name,
		backend:   backend,
		snapshots: snapshot.NewManager(backend, log, opts.Now),
		opts:      opts,
		log:       log,
	}
}

func (a *Adapter) Name() string {
	return a.name
}

// ReadTable читает таблицу. Если колонки last_updated нет, она добавляется
// и заполняется текущим временем.
func (a *Adapter) ReadTable(ctx context.Context) (record.Table, error) {
	t, err := a.backend.ReadTable(ctx)
	if err != nil {
		return record.Table{}, fmt.Errorf("read %s: %w", a.name, err)
	}

	if len(t.Columns) == 0 {
		return record.NewTable(), nil
	}

	if !t.HasColumn(record.FieldLastUpdated) {
		stamp := a.opts.Now().Format(record.TimestampLayout)
		t.EnsureColumn(record.FieldLastUpdated)
		for _, row := range t.Rows {
			row[record.FieldLastUpdated] = stamp
		}
		a.log.Debug("backfilled last_updated", "rows", t.Len())
	}

	return t, nil
}

// WriteTable перезаписывает таблицу; при включенных бэкапах сначала делает снапшот
// и ротирует старые. Неудачный снапшот запись не останавливает.
func (a *Adapter) WriteTable(ctx context.Context, t record.Table) error {
	if a.opts.Backup {
		if name := a.snapshots.Backup(ctx, a.backend.Source(), a.opts.Keep); name != "" {
			a.log.Info("created backup", "snapshot", name)
		}
	}
	return a.WriteTableNoBackup(ctx, t)
}

// WriteTableNoBackup перезаписывает таблицу без снапшота (построчные обновления статусов).
func (a *Adapter) WriteTableNoBackup(ctx context.Context, t record.Table) error {
	if err := a.backend.ReplaceTable(ctx, t); err != nil {
		return fmt.Errorf("write %s: %w", a.name, err)
	}
	a.log.Debug("table written", "rows", t.Len(), "columns", len(t.Columns))
	return nil
}

// Snapshot делает снапшот вручную; в отличие от WriteTable ошибки возвращаются.
func (a *Adapter) Snapshot(ctx context.Context) (string, error) {
	return a.snapshots.Create(ctx, a.backend.Source())
}

// Prune оставляет keep последних снапшотов.
func (a *Adapter) Prune(ctx context.Context, keep int) (int, error) {
	return a.snapshots.Prune(ctx, a.backend.Source(), keep)
}

// Snapshots возвращает снапшоты хранилища.
func (a *Adapter) Snapshots(ctx context.Context) ([]snapshot.Info, error) {
	return a.backend.ListSnapshots(ctx, snapshot.Prefix(a.backend.Source()))
}

// Keep настроенное число хранимых снапшотов
func (a *Adapter) Keep() int {
	return a.opts.Keep
}

func (a *Adapter) Ping(ctx context.Context) error {
	if err := a.backend.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUnavailable, a.name, err)
	}
	return nil
}

func (a *Adapter) Close() error {
	return a.backend.Close()
}
