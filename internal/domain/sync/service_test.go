package sync

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"tgsync/internal/domain/record"
)

// MockProvider is a mock implementation of the Provider interface for testing
type MockProvider struct {
	mock.Mock
	name string
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) ReadTable(ctx context.Context) (record.Table, error) {
	args := m.Called(ctx)
	return args.Get(0).(record.Table), args.Error(1)
}

func (m *MockProvider) WriteTable(ctx context.Context, table record.Table) error {
	args := m.Called(ctx, table)
	return args.Error(0)
}

func newTestService(t *testing.T, providers ...Provider) *Service {
	t.Helper()
	cfg := &ServiceConfig{StatsPath: filepath.Join(t.TempDir(), "stats.json")}
	return NewService(providers, newTestReconciler(newStamp), slog.Default(), cfg)
}

func TestService_SyncRecords(t *testing.T) {
	csvStore := &MockProvider{name: "csv"}
	sheets := &MockProvider{name: "google_sheets"}

	existing := record.FromRows([]record.Record{
		{"id": "1", "first_name": "", "last_updated": oldStamp},
	})
	batch := []record.Record{
		{"id": "1", "first_name": "Ann"},
		{"id": "2", "first_name": "Bob"},
	}

	csvStore.On("ReadTable", mock.Anything).Return(existing, nil)
	csvStore.On("WriteTable", mock.Anything, mock.MatchedBy(func(tbl record.Table) bool {
		return tbl.Len() == 2 && tbl.Rows[0]["first_name"] == "Ann"
	})).Return(nil)
	sheets.On("ReadTable", mock.Anything).Return(record.NewTable(), nil)
	sheets.On("WriteTable", mock.Anything, mock.MatchedBy(func(tbl record.Table) bool {
		return tbl.Len() == 2
	})).Return(nil)

	service := newTestService(t, csvStore, sheets)

	report, err := service.SyncRecords(context.Background(), batch)
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 2, report.Succeeded)
	assert.True(t, report.Complete())
	require.Len(t, report.Providers, 2)
	assert.Equal(t, "csv", report.Providers[0].Provider)
	assert.Equal(t, 1, report.Providers[0].Inserted)
	assert.Equal(t, 1, report.Providers[0].Updated)
	assert.Equal(t, 2, report.Providers[1].Inserted)

	stats := service.Stats()
	assert.Equal(t, 1, stats.TotalSyncs)
	assert.Equal(t, 0, stats.TotalErrors)
	assert.Equal(t, 3, stats.TotalInserted)
	assert.False(t, stats.LastSuccessful.IsZero())

	csvStore.AssertExpectations(t)
	sheets.AssertExpectations(t)
}

func TestService_SyncRecords_PartialFailure(t *testing.T) {
	broken := &MockProvider{name: "postgres"}
	ok := &MockProvider{name: "csv"}

	broken.On("ReadTable", mock.Anything).Return(record.Table{}, errors.New("connection refused"))
	ok.On("ReadTable", mock.Anything).Return(record.NewTable(), nil)
	ok.On("WriteTable", mock.Anything, mock.Anything).Return(nil)

	service := newTestService(t, broken, ok)

	report, err := service.SyncRecords(context.Background(), []record.Record{{"id": "1"}})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.False(t, report.Complete())
	assert.False(t, report.Providers[0].Success)
	assert.Contains(t, report.Providers[0].Error, "connection refused")

	broken.AssertNotCalled(t, "WriteTable", mock.Anything, mock.Anything)
	assert.Equal(t, 1, service.Stats().TotalErrors)
}

func TestService_SyncRecords_AllFailed(t *testing.T) {
	p := &MockProvider{name: "csv"}
	p.On("ReadTable", mock.Anything).Return(record.NewTable(), nil)
	p.On("WriteTable", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	service := newTestService(t, p)

	report, err := service.SyncRecords(context.Background(), []record.Record{{"id": "1"}})
	assert.ErrorIs(t, err, ErrAllProviders)
	assert.ErrorIs(t, err, ErrStoreWrite)
	require.NotNil(t, report)
	assert.Equal(t, 0, report.Succeeded)
	assert.False(t, service.Stats().LastFailed.IsZero())
}

func TestService_SyncRecords_MissingID(t *testing.T) {
	p := &MockProvider{name: "csv"}
	p.On("ReadTable", mock.Anything).Return(record.NewTable(), nil)

	service := newTestService(t, p)

	_, err := service.SyncRecords(context.Background(), []record.Record{{"first_name": "Ghost"}})
	assert.ErrorIs(t, err, ErrMissingID)
	p.AssertNotCalled(t, "WriteTable", mock.Anything, mock.Anything)
}

func TestService_SyncRecords_EmptyBatch(t *testing.T) {
	p := &MockProvider{name: "csv"}
	service := newTestService(t, p)

	report, err := service.SyncRecords(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Records)
	p.AssertNotCalled(t, "ReadTable", mock.Anything)
}

func TestService_SyncRecords_NoProviders(t *testing.T) {
	service := newTestService(t)

	_, err := service.SyncRecords(context.Background(), []record.Record{{"id": "1"}})
	assert.Equal(t, ErrNoProviders, err)
}

func TestService_SyncRecords_Canceled(t *testing.T) {
	p := &MockProvider{name: "csv"}
	service := newTestService(t, p)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.SyncRecords(ctx, []record.Record{{"id": "1"}})
	assert.ErrorIs(t, err, context.Canceled)
	p.AssertNotCalled(t, "ReadTable", mock.Anything)
}

func TestService_StatsPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "stats.json")
	p := &MockProvider{name: "csv"}
	p.On("ReadTable", mock.Anything).Return(record.NewTable(), nil)
	p.On("WriteTable", mock.Anything, mock.Anything).Return(nil)

	service := NewService([]Provider{p}, newTestReconciler(newStamp), slog.Default(), &ServiceConfig{StatsPath: path})
	_, err := service.SyncRecords(context.Background(), []record.Record{{"id": "1"}})
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)

	reloaded := NewService([]Provider{p}, newTestReconciler(newStamp), slog.Default(), &ServiceConfig{StatsPath: path})
	assert.Equal(t, 1, reloaded.Stats().TotalSyncs)
	assert.Equal(t, []string{"csv"}, reloaded.Providers())

	require.NoError(t, reloaded.ResetStats())
	assert.Equal(t, 0, reloaded.Stats().TotalSyncs)
}
