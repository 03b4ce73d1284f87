package sync

import (
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"tgsync/internal/domain/record"
)

// Reconciler сверяет существующую таблицу с батчем новых записей.
// Собственного состояния между вызовами не держит.
type Reconciler struct {
	log *slog.Logger
	now func() time.Time
}

// NewReconciler создает сверщик; now == nil означает time.Now.
func NewReconciler(log *slog.Logger, now func() time.Time) *Reconciler {
	if now == nil {
		now = time.Now
	}
	return &Reconciler{
		log: log.With("component", "reconciler"),
		now: now,
	}
}

// index - упорядоченный индекс id -> строка на время одного вызова.
type index struct {
	rows []record.Record
	pos  map[string]int
}

func (ix *index) get(id string) (record.Record, bool) {
	p, ok := ix.pos[id]
	if !ok {
		return nil, false
	}
	return ix.rows[p], true
}

// put вставляет или заменяет строку; возвращает true, если id уже был.
func (ix *index) put(id string, r record.Record) bool {
	if p, ok := ix.pos[id]; ok {
		ix.rows[p] = r
		return true
	}
	ix.pos[id] = len(ix.rows)
	ix.rows = append(ix.rows, r)
	return false
}

// Reconcile сливает batch в existing и возвращает итоговую таблицу.
//
// Все записи батча должны иметь id, иначе вызов целиком завершается ErrMissingID.
// Строки existing без id переносятся как есть. Порядок строк: сначала существующие,
// затем новые в порядке батча.
func (r *Reconciler) Reconcile(existing record.Table, batch []record.Record) (*Result, error) {
	for i, rec := range batch {
		if rec.ID() == "" {
			return nil, fmt.Errorf("%w: batch record #%d", ErrMissingID, i)
		}
	}

	stamp := r.now().Format(record.TimestampLayout)
	res := &Result{Stamp: stamp}
	ix := &index{pos: make(map[string]int, existing.Len()+len(batch))}

	if existing.IsEmpty() {
		// Сливать не с чем: батч берется как есть, каждая запись получает метку.
		for _, rec := range batch {
			row := rec.Clone()
			row[record.FieldLastUpdated] = stamp
			if ix.put(rec.ID(), row) {
				res.Duplicates = append(res.Duplicates, rec.ID())
				continue
			}
			res.Inserted++
		}
	} else {
		for _, row := range existing.Rows {
			id := row.ID()
			if id == "" {
				ix.rows = append(ix.rows, row.Clone())
				continue
			}
			if ix.put(id, row.Clone()) {
				res.Duplicates = append(res.Duplicates, id)
			}
		}

		for _, rec := range batch {
			id := rec.ID()
			current, found := ix.get(id)
			merged, changed, err := Merge(current, rec, stamp)
			if err != nil {
				return nil, fmt.Errorf("merge record %s: %w", id, err)
			}
			ix.put(id, merged)

			switch {
			case !found:
				res.Inserted++
			case changed:
				res.Updated++
			default:
				res.Unchanged++
			}
		}
	}

	if len(res.Duplicates) > 0 {
		r.log.Warn("duplicate ids found, last occurrence wins",
			"count", len(res.Duplicates),
			"ids", res.Duplicates,
		)
	}

	table := record.Table{Columns: append([]string(nil), existing.Columns...), Rows: ix.rows}
	for _, row := range table.Rows {
		table.AddColumns(row)
	}
	res.Table = table

	r.log.Debug("reconciled table",
		"rows", table.Len(),
		"inserted", res.Inserted,
		"updated", res.Updated,
		"unchanged", res.Unchanged,
	)

	return res, nil
}
