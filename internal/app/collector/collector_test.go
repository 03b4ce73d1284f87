package collector

import (
	"context"
	"errors"
	"time"

	"github.com/stretchr/testify/mock"

	"tgsync/internal/domain/record"
)

// MockMessenger is a mock implementation of the Messenger interface for testing
type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) Contacts(ctx context.Context) ([]Contact, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Contact), args.Error(1)
}

func (m *MockMessenger) Dialogs(ctx context.Context) ([]Dialog, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Dialog), args.Error(1)
}

func (m *MockMessenger) Peer(ctx context.Context, id int64) (Peer, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(Peer), args.Error(1)
}

func (m *MockMessenger) Messages(ctx context.Context, peer Peer, limit int) ([]Message, error) {
	args := m.Called(ctx, peer, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Message), args.Error(1)
}

func (m *MockMessenger) CommonChats(ctx context.Context, peer Peer, limit int) ([]Group, error) {
	args := m.Called(ctx, peer, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Group), args.Error(1)
}

// memStore хранит таблицу в памяти и считает записи.
type memStore struct {
	table    record.Table
	writes   int
	writeErr error
}

func (s *memStore) Name() string { return "google_sheets" }

func (s *memStore) ReadTable(context.Context) (record.Table, error) {
	return s.table.Clone(), nil
}

func (s *memStore) WriteTableNoBackup(_ context.Context, t record.Table) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.writes++
	s.table = t.Clone()
	return nil
}

func (s *memStore) row(id string) record.Record {
	if i := s.table.Find(id); i >= 0 {
		return s.table.Rows[i]
	}
	return nil
}

var testNow = time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)

const testStamp = "2024-06-01 12:30:00"

// sleeper запоминает запрошенные паузы вместо ожидания.
type sleeper struct {
	calls []time.Duration
	err   error
}

func (s *sleeper) sleep(_ context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return s.err
}

func testOptions(s *sleeper) Options {
	return Options{
		Delay: 2 * time.Second,
		Now:   func() time.Time { return testNow },
		Sleep: s.sleep,
	}
}

var errTransport = errors.New("connection reset")
