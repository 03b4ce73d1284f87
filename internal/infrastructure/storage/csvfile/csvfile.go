package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"tgsync/internal/domain/record"
	"tgsync/internal/domain/snapshot"
)

const bom = "\ufeff"

// Store хранит таблицу в CSV-файле: первая строка - заголовок.
// Снапшоты лежат рядом с файлом: {base}_backup_{stamp}.csv.
type Store struct {
	path string
	enc  encoding.Encoding
}

// New создает CSV-хранилище; encoding - имя кодировки по WHATWG (utf-8, windows-1251, ...).
func New(path, encodingName string) (*Store, error) {
	if encodingName == "" {
		encodingName = "utf-8"
	}
	enc, err := htmlindex.Get(encodingName)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", encodingName, err)
	}
	return &Store{path: path, enc: enc}, nil
}

func (s *Store) Source() string {
	base := filepath.Base(s.path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (s *Store) ReadTable(_ context.Context) (record.Table, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return record.NewTable(), nil
	}
	if err != nil {
		return record.Table{}, fmt.Errorf("open %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(transform.NewReader(f, s.enc.NewDecoder()))
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return record.Table{}, fmt.Errorf("parse %s: %w", s.path, err)
	}
	if len(rows) == 0 {
		return record.NewTable(), nil
	}

	header := rows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], bom)
	}
	return record.FromValues(header, rows[1:]), nil
}

// ReplaceTable пишет таблицу во временный файл и переименовывает его поверх старого.
func (s *Store) ReplaceTable(_ context.Context, t record.Table) (err error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	enc := transform.NewWriter(tmp, s.enc.NewEncoder())
	w := csv.NewWriter(enc)
	if err := w.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(t.Values()); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) CreateSnapshot(_ context.Context, name string) (bool, error) {
	src, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer src.Close()

	dst, err := os.OpenFile(s.snapshotPath(name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return false, err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return false, err
	}
	return true, dst.Close()
}

func (s *Store) ListSnapshots(_ context.Context, prefix string) ([]snapshot.Info, error) {
	dir := filepath.Dir(s.path)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	ext := filepath.Ext(s.path)
	var out []snapshot.Info
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) || filepath.Ext(e.Name()) != ext {
			continue
		}
		out = append(out, snapshot.Info{
			Name: strings.TrimSuffix(e.Name(), ext),
			ID:   filepath.Join(dir, e.Name()),
		})
	}
	return out, nil
}

func (s *Store) DeleteSnapshots(_ context.Context, ids []string) error {
	for _, id := range ids {
		if err := os.Remove(id); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func (s *Store) Ping(_ context.Context) error {
	return os.MkdirAll(filepath.Dir(s.path), 0o755)
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) snapshotPath(name string) string {
	return filepath.Join(filepath.Dir(s.path), name+filepath.Ext(s.path))
}
