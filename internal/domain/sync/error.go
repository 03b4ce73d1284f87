package sync

import (
	"errors"

	"tgsync/internal/domain/record"
)

var (
	// ErrMissingID - запись дошла до движка без id ни с одной стороны.
	// Это ошибка конфигурации: батч целиком отклоняется.
	ErrMissingID = record.ErrMissingID

	ErrStoreRead      = errors.New("store read failed")
	ErrStoreWrite     = errors.New("store write failed")
	ErrNoProviders    = errors.New("no providers configured")
	ErrAllProviders   = errors.New("failed to sync to any provider")
	ErrAlreadyRunning = errors.New("sync is already running")
)
