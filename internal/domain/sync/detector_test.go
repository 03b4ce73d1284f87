package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tgsync/internal/domain/record"
)

func TestHasChanged(t *testing.T) {
	tests := []struct {
		name     string
		existing record.Record
		incoming record.Record
		want     bool
	}{
		{
			name:     "identical",
			existing: record.Record{"id": "1", "first_name": "Ann", "has_chat": "Yes"},
			incoming: record.Record{"id": "1", "first_name": "Ann", "has_chat": "Yes"},
			want:     false,
		},
		{
			name:     "phone digits equal",
			existing: record.Record{"id": "1", "phone": "+1-555-0100"},
			incoming: record.Record{"id": "1", "phone": "15550100"},
			want:     false,
		},
		{
			name:     "phone digits differ",
			existing: record.Record{"id": "1", "phone": "+1-555-0100"},
			incoming: record.Record{"id": "1", "phone": "15550101"},
			want:     true,
		},
		{
			name:     "empty phone",
			existing: record.Record{"id": "1", "phone": "+1-555-0100"},
			incoming: record.Record{"id": "1", "phone": ""},
			want:     false,
		},
		{
			name:     "date hour without leading zero",
			existing: record.Record{"id": "1", "last_message_date": "2024-03-01 09:15:00"},
			incoming: record.Record{"id": "1", "last_message_date": "2024-03-01 9:15:00"},
			want:     false,
		},
		{
			name:     "date moved",
			existing: record.Record{"id": "1", "last_message_date": "2024-03-01 09:15:00"},
			incoming: record.Record{"id": "1", "last_message_date": "2024-03-02 09:15:00"},
			want:     true,
		},
		{
			name:     "empty date",
			existing: record.Record{"id": "1", "last_message_date": "2024-03-01 09:15:00"},
			incoming: record.Record{"id": "1"},
			want:     false,
		},
		{
			name:     "unread count changed",
			existing: record.Record{"id": "1", "unread_count": "0"},
			incoming: record.Record{"id": "1", "unread_count": "3"},
			want:     true,
		},
		{
			name:     "is_contact ignored",
			existing: record.Record{"id": "1", "is_contact": "No"},
			incoming: record.Record{"id": "1", "is_contact": "Yes"},
			want:     false,
		},
		{
			name:     "has_chat became yes",
			existing: record.Record{"id": "1", "has_chat": "No"},
			incoming: record.Record{"id": "1", "has_chat": "Yes"},
			want:     true,
		},
		{
			name:     "has_chat no after yes",
			existing: record.Record{"id": "1", "has_chat": "Yes"},
			incoming: record.Record{"id": "1", "has_chat": "No"},
			want:     false,
		},
		{
			name:     "has_chat no again",
			existing: record.Record{"id": "1", "has_chat": "No"},
			incoming: record.Record{"id": "1", "has_chat": "No"},
			want:     false,
		},
		{
			name:     "has_chat empty becomes no",
			existing: record.Record{"id": "1", "has_chat": ""},
			incoming: record.Record{"id": "1", "has_chat": "No"},
			want:     true,
		},
		{
			name:     "has_chat garbage becomes no",
			existing: record.Record{"id": "1", "has_chat": "maybe"},
			incoming: record.Record{"id": "1"},
			want:     true,
		},
		{
			name:     "has_chat absent on both sides",
			existing: record.Record{"id": "1", "first_name": "Ann"},
			incoming: record.Record{"id": "1", "first_name": "Ann"},
			want:     false,
		},
		{
			name:     "new first name",
			existing: record.Record{"id": "1", "first_name": ""},
			incoming: record.Record{"id": "1", "first_name": "Ann"},
			want:     true,
		},
		{
			name:     "extension omitted",
			existing: record.Record{"id": "1", "status": "VIP"},
			incoming: record.Record{"id": "1"},
			want:     false,
		},
		{
			name:     "extension changed",
			existing: record.Record{"id": "1", "status": "VIP"},
			incoming: record.Record{"id": "1", "status": "lead"},
			want:     true,
		},
		{
			name:     "last_updated ignored",
			existing: record.Record{"id": "1", "last_updated": "2024-01-01 00:00:00"},
			incoming: record.Record{"id": "1", "last_updated": "2025-01-01 00:00:00"},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HasChanged(tt.existing, tt.incoming)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHasChanged_MissingID(t *testing.T) {
	_, err := HasChanged(record.Record{"phone": "1"}, record.Record{"phone": "2"})
	assert.ErrorIs(t, err, ErrMissingID)

	// Достаточно ключа с одной стороны
	_, err = HasChanged(record.Record{"id": "1"}, record.Record{"phone": "2"})
	assert.NoError(t, err)
}
