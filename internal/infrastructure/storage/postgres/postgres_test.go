package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"tgsync/internal/domain/record"
)

// Интеграционный тест: нужна живая база в TG_SYNC_TEST_POSTGRES_DSN.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TG_SYNC_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TG_SYNC_TEST_POSTGRES_DSN is not set")
	}

	ctx := context.Background()
	s, err := New(ctx, dsn, "tgsync_test_contacts", slog.Default())
	require.NoError(t, err)

	cleanup := func() {
		_, _ = s.pool.Exec(ctx, `DROP TABLE IF EXISTS tgsync_test_contacts`)
		_, _ = s.pool.Exec(ctx, `DELETE FROM sync_tables WHERE name LIKE 'tgsync_test_contacts%'`)
		list, _ := s.ListSnapshots(ctx, "tgsync_test_contacts_backup_")
		for _, sn := range list {
			_, _ = s.pool.Exec(ctx, `DROP TABLE IF EXISTS `+ident(sn.Name))
		}
	}
	cleanup()
	t.Cleanup(func() {
		cleanup()
		_ = s.Close()
	})
	return s
}

func TestIdent(t *testing.T) {
	assert.Equal(t, `"contacts"`, ident("contacts"))
	assert.Equal(t, `"a""b"`, ident(`a"b`))
	assert.Equal(t, pgx.Identifier{"x"}.Sanitize(), ident("x"))
}

func TestStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	got, err := s.ReadTable(ctx)
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())

	table := record.Table{
		Columns: []string{"id", "username", "status"},
		Rows: []record.Record{
			{"id": "2", "username": "bob", "status": "VIP"},
			{"id": "1", "username": "ann", "status": ""},
		},
	}
	require.NoError(t, s.ReplaceTable(ctx, table))

	got, err = s.ReadTable(ctx)
	require.NoError(t, err)
	assert.Equal(t, table, got)
}

func TestStore_Snapshots(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateSnapshot(ctx, "tgsync_test_contacts_backup_20240101_0900")
	require.NoError(t, err)
	assert.False(t, created)

	require.NoError(t, s.ReplaceTable(ctx, record.FromRows([]record.Record{{"id": "1"}})))

	created, err = s.CreateSnapshot(ctx, "tgsync_test_contacts_backup_20240101_0900")
	require.NoError(t, err)
	assert.True(t, created)

	list, err := s.ListSnapshots(ctx, "tgsync_test_contacts_backup_")
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, s.DeleteSnapshots(ctx, []string{list[0].ID}))
	list, err = s.ListSnapshots(ctx, "tgsync_test_contacts_backup_")
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.Error(t, s.DeleteSnapshots(ctx, []string{"tgsync_test_contacts"}))
}
