package logger

import (
	"io"
	"os"

	"golang.org/x/exp/slog"
	"golang.org/x/term"

	"tgsync/internal/config"
	"tgsync/internal/utils/logger/slogpretty"
)

// New создает логгер по окружению: local - цветной текст, dev - JSON с debug, prod - JSON с info.
// Логи пишутся в stderr, stdout остается под вывод команд (--json, -o yaml).
func New(env string) *slog.Logger {
	return build(os.Stderr, env, envLevel(env))
}

// WithLevel создает логгер окружения env, но с явным уровнем (флаг --debug, LOG_LEVEL).
// Пустой или неизвестный уровень - уровень окружения.
func WithLevel(env, level string) *slog.Logger {
	lvl, ok := parseLevel(level)
	if !ok {
		lvl = envLevel(env)
	}
	return build(os.Stderr, env, lvl)
}

func envLevel(env string) slog.Level {
	if env == config.EnvLocal || env == config.EnvDev {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func parseLevel(s string) (slog.Level, bool) {
	var lvl slog.Level
	if s == "" || lvl.UnmarshalText([]byte(s)) != nil {
		return 0, false
	}
	return lvl, true
}

func build(w io.Writer, env string, lvl slog.Level) *slog.Logger {
	if env == config.EnvLocal {
		return slog.New(slogpretty.New(w, slogpretty.Options{
			Level:   lvl,
			NoColor: !isTerminal(w),
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
