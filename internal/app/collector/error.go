package collector

import (
	"errors"
	"fmt"
)

var (
	ErrAccessDenied      = errors.New("access denied")
	ErrPrivacyRestricted = errors.New("user privacy restricted")
	ErrNoExport          = errors.New("export files not found")
	ErrRowNotFound       = errors.New("row not found")
)

// FloodWaitError - Telegram просит подождать Seconds секунд перед повтором.
type FloodWaitError struct {
	Seconds int
}

func (e *FloodWaitError) Error() string {
	return fmt.Sprintf("flood wait for %d seconds", e.Seconds)
}
