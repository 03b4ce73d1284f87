package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/exp/slog"

	"tgsync/internal/domain/record"
	"tgsync/internal/domain/snapshot"
	"tgsync/internal/infrastructure/migration"
)

// Store хранит таблицу в SQLite: строки в таблице table (position, id, fields JSON),
// порядок колонок и список снапшотов - в каталоге sync_tables.
type Store struct {
	db    *sql.DB
	table string
	log   *slog.Logger
}

// New открывает базу path, применяет миграции и создает таблицу при необходимости.
func New(ctx context.Context, path, table string, log *slog.Logger) (*Store, error) {
	if err := migration.NewMigration(migration.DialectSQLite, "sqlite3://"+path, nil).Up(); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}
	// один писатель
	db.SetMaxOpenConns(1)

	s := &Store{
		db:    db,
		table: table,
		log:   log.With("component", "sqlite_store", "table", table),
	}

	if _, err := db.ExecContext(ctx, createTableSQL(table)); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка инициализации таблиц: %w", err)
	}

	return s, nil
}

func createTableSQL(table string) string {
	return `CREATE TABLE IF NOT EXISTS ` + quote(table) + ` (
		position INTEGER PRIMARY KEY,
		id       TEXT NOT NULL DEFAULT '',
		fields   TEXT NOT NULL
	)`
}

func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (s *Store) Source() string {
	return s.table
}

func (s *Store) ReadTable(ctx context.Context) (record.Table, error) {
	var columnsJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT columns FROM sync_tables WHERE name = ?`, s.table,
	).Scan(&columnsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return record.NewTable(), nil
	}
	if err != nil {
		return record.Table{}, fmt.Errorf("read columns: %w", err)
	}

	t := record.Table{}
	if err := json.Unmarshal([]byte(columnsJSON), &t.Columns); err != nil {
		return record.Table{}, fmt.Errorf("parse columns: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT fields FROM `+quote(s.table)+` ORDER BY position`)
	if err != nil {
		return record.Table{}, fmt.Errorf("read rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fields string
		if err := rows.Scan(&fields); err != nil {
			return record.Table{}, fmt.Errorf("scan row: %w", err)
		}
		r := record.Record{}
		if err := json.Unmarshal([]byte(fields), &r); err != nil {
			return record.Table{}, fmt.Errorf("parse row: %w", err)
		}
		t.Rows = append(t.Rows, r)
	}
	if err := rows.Err(); err != nil {
		return record.Table{}, fmt.Errorf("read rows: %w", err)
	}

	return t, nil
}

// ReplaceTable перезаписывает таблицу в одной транзакции.
func (s *Store) ReplaceTable(ctx context.Context, t record.Table) error {
	columnsJSON, err := json.Marshal(t.Columns)
	if err != nil {
		return fmt.Errorf("marshal columns: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, createTableSQL(s.table)); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+quote(s.table)); err != nil {
		return fmt.Errorf("clear table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO `+quote(s.table)+` (position, id, fields) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range t.Rows {
		fields, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal row %d: %w", i, err)
		}
		if _, err := stmt.ExecContext(ctx, i, r.ID(), string(fields)); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sync_tables (name, columns, snapshot, updated_at)
		VALUES (?, ?, 0, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET columns = excluded.columns, updated_at = CURRENT_TIMESTAMP`,
		s.table, string(columnsJSON),
	); err != nil {
		return fmt.Errorf("update catalog: %w", err)
	}

	return tx.Commit()
}

func (s *Store) CreateSnapshot(ctx context.Context, name string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM sync_tables WHERE name = ? AND snapshot = 0)`, s.table,
	).Scan(&exists)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `CREATE TABLE `+quote(name)+` AS SELECT * FROM `+quote(s.table)); err != nil {
		return false, err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO sync_tables (name, columns, snapshot)
		SELECT ?, columns, 1 FROM sync_tables WHERE name = ?`,
		name, s.table,
	); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

func (s *Store) ListSnapshots(ctx context.Context, prefix string) ([]snapshot.Info, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM sync_tables WHERE snapshot = 1 ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []snapshot.Info
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		// LIKE не подходит: "_" в префиксе - метасимвол
		if strings.HasPrefix(name, prefix) {
			out = append(out, snapshot.Info{Name: name, ID: name})
		}
	}
	return out, rows.Err()
}

// DeleteSnapshots удаляет снапшоты в одной транзакции.
func (s *Store) DeleteSnapshots(ctx context.Context, ids []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, id := range ids {
		if id == s.table {
			return fmt.Errorf("refusing to drop live table %s", id)
		}
		if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS `+quote(id)); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM sync_tables WHERE name = ? AND snapshot = 1`, id); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}
