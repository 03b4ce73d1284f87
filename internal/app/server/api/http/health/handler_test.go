package health

import (
	"context"
	"errors"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/exp/slog"
)

// MockPinger is a mock implementation of the Pinger interface for testing
type MockPinger struct {
	mock.Mock
	name string
}

func (m *MockPinger) Name() string {
	return m.name
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestHandler_healthCheck(t *testing.T) {
	tests := []struct {
		name           string
		pingErr        error
		expectedStatus string
		available      bool
	}{
		{
			name:           "all providers available",
			expectedStatus: StatusOK,
			available:      true,
		},
		{
			name:           "provider unavailable",
			pingErr:        errors.New("403 forbidden"),
			expectedStatus: StatusDegraded,
			available:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			csv := &MockPinger{name: "csv"}
			csv.On("Ping", mock.Anything).Return(nil)
			sheets := &MockPinger{name: "google_sheets"}
			sheets.On("Ping", mock.Anything).Return(tt.pingErr)

			handler := NewHandler([]Pinger{csv, sheets}, slog.Default(), huma.Middlewares{})

			// Act
			output, err := handler.healthCheck(context.Background(), &Input{})

			// Assert
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, output.Body.Status)
			assert.Len(t, output.Body.Providers, 2)
			assert.True(t, output.Body.Providers[0].Available)
			assert.Equal(t, tt.available, output.Body.Providers[1].Available)
		})
	}
}

func TestHandler_healthCheck_NoProviders(t *testing.T) {
	output, err := NewHandler(nil, slog.Default(), nil).healthCheck(context.Background(), &Input{})

	assert.NoError(t, err)
	assert.Equal(t, StatusOK, output.Body.Status)
	assert.Empty(t, output.Body.Providers)
}
