package snapshot

import "errors"

var (
	ErrSnapshot    = errors.New("snapshot failed")
	ErrInvalidKeep = errors.New("retention count must not be negative")
)
