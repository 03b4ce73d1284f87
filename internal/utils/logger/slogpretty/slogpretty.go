package slogpretty

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/exp/slog"
)

const timeFormat = "[15:04:05.000]"

type Options struct {
	Level   slog.Leveler
	NoColor bool
}

// Handler печатает записи в одну строку: время, уровень, сообщение и атрибуты в JSON.
type Handler struct {
	opts  Options
	out   io.Writer
	mu    *sync.Mutex
	attrs []slog.Attr
	group string
}

func New(out io.Writer, opts Options) *Handler {
	if opts.Level == nil {
		opts.Level = slog.LevelInfo
	}
	return &Handler{
		opts: opts,
		out:  out,
		mu:   &sync.Mutex{},
	}
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]any, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		addAttr(fields, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(fields, h.qualify(a))
		return true
	})

	var b strings.Builder
	b.WriteString(h.paint(color.FgHiBlack, r.Time.Format(timeFormat)))
	b.WriteByte(' ')
	b.WriteString(h.level(r.Level))
	b.WriteByte(' ')
	b.WriteString(h.paint(color.FgCyan, r.Message))

	if len(fields) > 0 {
		data, err := json.MarshalIndent(fields, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal attrs: %w", err)
		}
		b.WriteByte(' ')
		b.WriteString(h.paint(color.FgWhite, string(data)))
	}
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, h.qualify(a))
	}
	return &next
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	if h.group != "" {
		next.group = h.group + "." + name
	} else {
		next.group = name
	}
	return &next
}

func (h *Handler) qualify(a slog.Attr) slog.Attr {
	if h.group != "" {
		a.Key = h.group + "." + a.Key
	}
	return a
}

func (h *Handler) level(l slog.Level) string {
	s := l.String() + ":"
	switch {
	case l >= slog.LevelError:
		return h.paint(color.FgRed, s)
	case l >= slog.LevelWarn:
		return h.paint(color.FgYellow, s)
	case l >= slog.LevelInfo:
		return h.paint(color.FgBlue, s)
	default:
		return h.paint(color.FgMagenta, s)
	}
}

func (h *Handler) paint(attr color.Attribute, s string) string {
	c := color.New(attr)
	if h.opts.NoColor {
		c.DisableColor()
	} else {
		c.EnableColor()
	}
	return c.Sprint(s)
}

func addAttr(fields map[string]any, a slog.Attr) {
	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindGroup:
		for _, ga := range v.Group() {
			ga.Key = a.Key + "." + ga.Key
			addAttr(fields, ga)
		}
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			fields[a.Key] = err.Error()
			return
		}
		fields[a.Key] = v.Any()
	default:
		fields[a.Key] = v.Any()
	}
}
