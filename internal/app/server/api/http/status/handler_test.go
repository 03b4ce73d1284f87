package status

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"tgsync/internal/domain/record"
)

// MockReader is a mock implementation of the Reader interface for testing
type MockReader struct {
	mock.Mock
	name string
}

func (m *MockReader) Name() string {
	return m.name
}

func (m *MockReader) ReadTable(ctx context.Context) (record.Table, error) {
	args := m.Called(ctx)
	return args.Get(0).(record.Table), args.Error(1)
}

func TestHandler_getStatus(t *testing.T) {
	csv := &MockReader{name: "csv"}
	csv.On("ReadTable", mock.Anything).Return(record.FromRows([]record.Record{
		{"id": "1", "messages": "=== Ann ===", "processing_status": "done", "common_groups": "[Нет общих групп]"},
		{"id": "2"},
		{"id": ""},
	}), nil)
	sheets := &MockReader{name: "google_sheets"}
	sheets.On("ReadTable", mock.Anything).Return(record.NewTable(), nil)

	handler := NewHandler([]Reader{csv, sheets}, slog.Default(), huma.Middlewares{})

	output, err := handler.getStatus(context.Background(), &Input{})
	require.NoError(t, err)
	assert.Equal(t, "csv", output.Body.Provider)
	assert.Equal(t, 3, output.Body.Rows)
	assert.Equal(t, 1, output.Body.Messages.Processed)
	assert.Equal(t, 1, output.Body.Messages.Pending)
	assert.Equal(t, 1, output.Body.Groups.NoID)

	output, err = handler.getStatus(context.Background(), &Input{Provider: "google_sheets"})
	require.NoError(t, err)
	assert.Equal(t, "google_sheets", output.Body.Provider)
	assert.Zero(t, output.Body.Rows)
}

func TestHandler_getStatus_Errors(t *testing.T) {
	broken := &MockReader{name: "google_sheets"}
	broken.On("ReadTable", mock.Anything).Return(record.Table{}, errors.New("403"))
	handler := NewHandler([]Reader{broken}, slog.Default(), nil)

	tests := []struct {
		name     string
		provider string
		want     int
	}{
		{"unknown provider", "excel", http.StatusNotFound},
		{"read failure", "", http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.getStatus(context.Background(), &Input{Provider: tt.provider})

			var se huma.StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.want, se.GetStatus())
		})
	}
}
