package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"tgsync/internal/domain/record"
	"tgsync/internal/domain/sync"
)

// Store - таблица, в которую загрузчики построчно пишут результаты.
// Построчные обновления идут без снапшотов.
type Store interface {
	Name() string
	ReadTable(ctx context.Context) (record.Table, error)
	WriteTableNoBackup(ctx context.Context, table record.Table) error
}

// Options общие параметры загрузчиков.
type Options struct {
	// Delay пауза между строками, после последней строки не выдерживается
	Delay time.Duration
	// MaxRows ограничивает число обрабатываемых строк, 0 - без ограничения
	MaxRows int
	Now     func() time.Time
	Sleep   func(ctx context.Context, d time.Duration) error
}

func (o *Options) setDefaults() {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Sleep == nil {
		o.Sleep = sleepCtx
	}
}

// Stats итог пакетной обработки строк.
type Stats struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Errors  int `json:"errors"`
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// withFloodWait выполняет fn и при FloodWaitError повторяет ее один раз после паузы.
func withFloodWait[T any](ctx context.Context, log *slog.Logger, sleep func(context.Context, time.Duration) error, fn func() (T, error)) (T, error) {
	v, err := fn()
	var fw *FloodWaitError
	if !errors.As(err, &fw) {
		return v, err
	}

	log.Warn("flood wait", "seconds", fw.Seconds)
	if err := sleep(ctx, time.Duration(fw.Seconds)*time.Second); err != nil {
		return v, err
	}
	return fn()
}

// updateRow сливает patch в строку с данным id и перезаписывает таблицу.
func updateRow(ctx context.Context, store Store, id string, patch record.Record, now time.Time) error {
	table, err := store.ReadTable(ctx)
	if err != nil {
		return fmt.Errorf("read %s: %w", store.Name(), err)
	}

	i := table.Find(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrRowNotFound, id)
	}

	in := patch.Clone()
	in[record.FieldID] = id
	merged, _, err := sync.Merge(table.Rows[i], in, now.Format(record.TimestampLayout))
	if err != nil {
		return err
	}

	table.Rows[i] = merged
	table.AddColumns(merged)

	if err := store.WriteTableNoBackup(ctx, table); err != nil {
		return fmt.Errorf("write %s: %w", store.Name(), err)
	}
	return nil
}

// pendingRows возвращает строки с id, для которых pending вернул true, с учетом maxRows.
func pendingRows(table record.Table, maxRows int, pending func(record.Record) bool) []record.Record {
	var out []record.Record
	for _, r := range table.Rows {
		if r.ID() == "" || !pending(r) {
			continue
		}
		out = append(out, r)
		if maxRows > 0 && len(out) == maxRows {
			break
		}
	}
	return out
}

func rowTitle(r record.Record, fallback string) string {
	if t := r.Get(record.FieldTitle); t != "" {
		return t
	}
	return fallback + " " + r.ID()
}
