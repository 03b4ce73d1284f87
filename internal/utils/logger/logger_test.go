package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/slog"

	"tgsync/internal/config"
)

func TestWithLevel(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		level string
		debug bool
		info  bool
	}{
		{name: "local default", env: config.EnvLocal, debug: true, info: true},
		{name: "dev default", env: config.EnvDev, debug: true, info: true},
		{name: "prod default", env: config.EnvProd, info: true},
		{name: "prod forced debug", env: config.EnvProd, level: "debug", debug: true, info: true},
		{name: "local warn", env: config.EnvLocal, level: "warn"},
		{name: "unknown level falls back", env: config.EnvProd, level: "loud", info: true},
		{name: "unknown env is prod", env: "staging", info: true},
	}

	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := WithLevel(tt.env, tt.level)
			assert.Equal(t, tt.debug, log.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.info, log.Enabled(ctx, slog.LevelInfo))
			assert.True(t, log.Enabled(ctx, slog.LevelError))
		})
	}
}

func TestNew_MatchesEnvLevel(t *testing.T) {
	ctx := context.Background()
	assert.False(t, New(config.EnvProd).Enabled(ctx, slog.LevelDebug))
	assert.True(t, New(config.EnvLocal).Enabled(ctx, slog.LevelDebug))
}

func TestBuild_Output(t *testing.T) {
	var buf bytes.Buffer
	build(&buf, config.EnvProd, slog.LevelInfo).Info("synced", "rows", 3)
	assert.Contains(t, buf.String(), `"msg":"synced"`)
	assert.Contains(t, buf.String(), `"rows":3`)

	buf.Reset()
	build(&buf, config.EnvLocal, slog.LevelInfo).Info("synced", "rows", 3)
	assert.Contains(t, buf.String(), "synced")
	assert.NotContains(t, buf.String(), "\x1b[", "buffer is not a terminal")
}
