package sync

import (
	"context"

	"tgsync/internal/domain/record"
)

// Provider - хранилище таблицы (CSV, Google Sheets, SQL).
// WriteTable перезаписывает таблицу целиком; снапшоты - забота реализации.
type Provider interface {
	Name() string
	ReadTable(ctx context.Context) (record.Table, error)
	WriteTable(ctx context.Context, table record.Table) error
}
