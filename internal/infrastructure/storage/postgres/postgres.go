package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"tgsync/internal/domain/record"
	"tgsync/internal/domain/snapshot"
	"tgsync/internal/infrastructure/migration"
)

// Store хранит таблицу в PostgreSQL: строки в таблице table (position, id, fields JSONB),
// порядок колонок и снапшоты - в каталоге sync_tables.
type Store struct {
	pool  *pgxpool.Pool
	table string
	log   *slog.Logger
}

func New(ctx context.Context, dsn, table string, log *slog.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	mg := migration.NewMigration(migration.DialectPostgres, dsn, nil)
	if err := mg.Up(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	s := &Store{
		pool:  pool,
		table: table,
		log:   log.With("component", "postgres_store", "table", table),
	}

	if _, err := pool.Exec(ctx, createTableSQL(table)); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return s, nil
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func createTableSQL(table string) string {
	return `CREATE TABLE IF NOT EXISTS ` + ident(table) + ` (
		position INTEGER PRIMARY KEY,
		id       TEXT  NOT NULL DEFAULT '',
		fields   JSONB NOT NULL
	)`
}

func (s *Store) Source() string {
	return s.table
}

func (s *Store) ReadTable(ctx context.Context) (record.Table, error) {
	var t record.Table
	err := s.pool.QueryRow(ctx,
		`SELECT columns FROM sync_tables WHERE name = $1`, s.table,
	).Scan(&t.Columns)
	if errors.Is(err, pgx.ErrNoRows) {
		return record.NewTable(), nil
	}
	if err != nil {
		s.log.Error("failed to read columns", "error", err)
		return record.Table{}, fmt.Errorf("read columns: %w", err)
	}

	rows, err := s.pool.Query(ctx, `SELECT fields FROM `+ident(s.table)+` ORDER BY position`)
	if err != nil {
		return record.Table{}, fmt.Errorf("read rows: %w", err)
	}

	t.Rows, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (record.Record, error) {
		var fields map[string]string
		if err := row.Scan(&fields); err != nil {
			return nil, err
		}
		return record.Record(fields), nil
	})
	if err != nil {
		return record.Table{}, fmt.Errorf("scan rows: %w", err)
	}

	return t, nil
}

// ReplaceTable перезаписывает таблицу в одной транзакции через COPY.
func (s *Store) ReplaceTable(ctx context.Context, t record.Table) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, createTableSQL(s.table)); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	if _, err := tx.Exec(ctx, `TRUNCATE `+ident(s.table)); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{s.table},
		[]string{"position", "id", "fields"},
		pgx.CopyFromSlice(len(t.Rows), func(i int) ([]any, error) {
			r := t.Rows[i]
			return []any{int32(i), r.ID(), map[string]string(r)}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy rows: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO sync_tables (name, columns, snapshot, updated_at)
		VALUES ($1, $2, FALSE, now())
		ON CONFLICT (name) DO UPDATE SET columns = EXCLUDED.columns, updated_at = now()`,
		s.table, t.Columns,
	); err != nil {
		return fmt.Errorf("update catalog: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *Store) CreateSnapshot(ctx context.Context, name string) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM sync_tables WHERE name = $1 AND NOT snapshot)`, s.table,
	).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}

	if _, err := tx.Exec(ctx, `CREATE TABLE `+ident(name)+` AS TABLE `+ident(s.table)); err != nil {
		return false, err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO sync_tables (name, columns, snapshot)
		SELECT $1, columns, TRUE FROM sync_tables WHERE name = $2`,
		name, s.table,
	); err != nil {
		return false, err
	}

	return true, tx.Commit(ctx)
}

func (s *Store) ListSnapshots(ctx context.Context, prefix string) ([]snapshot.Info, error) {
	rows, err := s.pool.Query(ctx, `SELECT name FROM sync_tables WHERE snapshot ORDER BY name`)
	if err != nil {
		return nil, err
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}

	var out []snapshot.Info
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			out = append(out, snapshot.Info{Name: name, ID: name})
		}
	}
	return out, nil
}

// DeleteSnapshots удаляет снапшоты в одной транзакции.
func (s *Store) DeleteSnapshots(ctx context.Context, ids []string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, id := range ids {
		if id == s.table {
			return fmt.Errorf("refusing to drop live table %s", id)
		}
		if _, err := tx.Exec(ctx, `DROP TABLE IF EXISTS `+ident(id)); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(ctx, `DELETE FROM sync_tables WHERE snapshot AND name = ANY($1)`, ids); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
