package slogpretty

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"
)

func TestHandler(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(New(&buf, Options{Level: slog.LevelInfo, NoColor: true}))

	log.With("component", "reconciler").Info("reconciled table", "rows", 3, "error", errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "INFO: reconciled table")
	assert.Contains(t, out, `"component": "reconciler"`)
	assert.Contains(t, out, `"rows": 3`)
	assert.Contains(t, out, `"error": "boom"`)
	assert.NotContains(t, out, "\x1b[")
}

func TestHandler_Level(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(New(&buf, Options{Level: slog.LevelWarn, NoColor: true}))

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "WARN: shown")
}

func TestHandler_Group(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(New(&buf, Options{NoColor: true}))

	log.WithGroup("provider").Info("synced", "name", "csv")

	assert.Contains(t, buf.String(), `"provider.name": "csv"`)
}
