package collector

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/exp/slog"

	"tgsync/internal/domain/record"
)

const (
	StatusInProgress = "in_progress"
	StatusDone       = "done"
	StatusError      = "error"
)

const (
	DefaultMessageLimit = 20

	// ограничение ячейки Google Sheets
	cellLimit     = 50000
	truncateAt    = 49900
	truncatedNote = "\n\n[ВНИМАНИЕ: Сообщения обрезаны из-за ограничения Google Sheets - 50,000 символов]"
)

// MessageLoader загружает последние сообщения диалогов в колонку messages.
type MessageLoader struct {
	messenger Messenger
	store     Store
	limit     int
	opts      Options
	log       *slog.Logger
}

func NewMessageLoader(messenger Messenger, store Store, limit int, opts Options, log *slog.Logger) *MessageLoader {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	opts.setDefaults()
	return &MessageLoader{
		messenger: messenger,
		store:     store,
		limit:     limit,
		opts:      opts,
		log:       log.With("component", "message_loader", "provider", store.Name()),
	}
}

// Pending возвращает строки без загруженных сообщений, которые сейчас не обрабатываются.
func (l *MessageLoader) Pending(ctx context.Context) ([]record.Record, error) {
	table, err := l.store.ReadTable(ctx)
	if err != nil {
		return nil, err
	}
	return pendingRows(table, l.opts.MaxRows, messagesPending), nil
}

func messagesPending(r record.Record) bool {
	return r.Get(record.FieldMessages) == "" && r.Get(record.FieldProcessingStatus) != StatusInProgress
}

// Run обрабатывает все ожидающие строки по очереди.
func (l *MessageLoader) Run(ctx context.Context) (Stats, error) {
	rows, err := l.Pending(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("get pending rows: %w", err)
	}

	stats := Stats{Total: len(rows)}
	if len(rows) == 0 {
		l.log.Info("no pending rows")
		return stats, nil
	}
	l.log.Info("processing pending rows", "total", stats.Total, "limit", l.limit)

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		l.log.Debug("processing row", "n", i+1, "total", stats.Total, "id", row.ID())
		if l.processRow(ctx, row) {
			stats.Success++
		} else {
			stats.Errors++
		}

		if i < len(rows)-1 {
			if err := l.opts.Sleep(ctx, l.opts.Delay); err != nil {
				return stats, err
			}
		}
	}

	l.log.Info("batch processing completed", "total", stats.Total, "success", stats.Success, "errors", stats.Errors)
	return stats, nil
}

// processRow возвращает true, если сообщения загружены (или их нет) и строка записана.
func (l *MessageLoader) processRow(ctx context.Context, row record.Record) bool {
	id := row.ID()
	title := rowTitle(row, "Chat")
	log := l.log.With("id", id, "title", title)

	if err := l.update(ctx, id, StatusInProgress, "", ""); err != nil {
		log.Error("failed to set in_progress status", "error", err)
		return false
	}

	text, lastID, err := l.load(ctx, id, title)
	if err != nil {
		log.Warn("failed to load messages", "error", err)
		if err := l.update(ctx, id, StatusError, fmt.Sprintf("=== %s ===\n%s\nВремя: %s", title, err, l.stamp()), ""); err != nil {
			log.Error("failed to set error status", "error", err)
		}
		return false
	}

	if err := l.update(ctx, id, StatusDone, text, lastID); err != nil {
		log.Error("failed to save messages", "error", err)
		return false
	}
	log.Info("messages loaded")
	return true
}

// loadError - ошибка загрузки с меткой этапа для текста ячейки.
type loadError struct {
	tag string
	err error
}

func (e *loadError) Error() string { return e.tag + ": " + e.err.Error() }
func (e *loadError) Unwrap() error { return e.err }

// load проверяет наличие сообщений и загружает до limit последних текстовых.
func (l *MessageLoader) load(ctx context.Context, id, title string) (string, string, error) {
	chatID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return "", "", &loadError{tag: "[СИСТЕМНАЯ ОШИБКА]", err: fmt.Errorf("invalid chat id %q", id)}
	}

	peer, err := withFloodWait(ctx, l.log, l.opts.Sleep, func() (Peer, error) {
		return l.messenger.Peer(ctx, chatID)
	})
	if err != nil {
		return "", "", &loadError{tag: "[ОШИБКА ПРОВЕРКИ]", err: fmt.Errorf("could not access chat: %w", err)}
	}

	first, err := withFloodWait(ctx, l.log, l.opts.Sleep, func() ([]Message, error) {
		return l.messenger.Messages(ctx, peer, 1)
	})
	if err != nil {
		return "", "", &loadError{tag: "[ОШИБКА ПРОВЕРКИ]", err: err}
	}
	if len(first) == 0 || first[0].Text == "" {
		return fmt.Sprintf("=== %s ===\n[Нет сообщений]\nВремя проверки: %s", title, l.stamp()), "", nil
	}

	all, err := withFloodWait(ctx, l.log, l.opts.Sleep, func() ([]Message, error) {
		return l.messenger.Messages(ctx, peer, l.limit)
	})
	if err != nil {
		return "", "", &loadError{tag: "[ОШИБКА]", err: err}
	}

	var msgs []Message
	for _, m := range all {
		if m.Text != "" {
			msgs = append(msgs, m)
		}
	}

	var lastID string
	if len(msgs) > 0 {
		lastID = strconv.Itoa(msgs[0].ID)
	}

	text := FormatConversation(msgs, title)
	if utf8.RuneCountInString(text) > cellLimit {
		text = string([]rune(text)[:truncateAt]) + truncatedNote
		l.log.Warn("messages truncated", "id", id, "limit", cellLimit)
	}
	return text, lastID, nil
}

func (l *MessageLoader) update(ctx context.Context, id, status, messages, lastID string) error {
	patch := record.Record{record.FieldProcessingStatus: status}
	if messages != "" {
		patch[record.FieldMessages] = messages
	}
	if lastID != "" {
		patch[record.FieldLastLoadedMessage] = lastID
	}
	return updateRow(ctx, l.store, id, patch, l.opts.Now())
}

func (l *MessageLoader) stamp() string {
	return l.opts.Now().Format(record.TimestampLayout)
}

// FormatConversation превращает сообщения (от новых к старым) в читаемую переписку
// в хронологическом порядке.
func FormatConversation(msgs []Message, title string) string {
	if len(msgs) == 0 {
		return fmt.Sprintf("=== %s ===\n[Нет сообщений]", title)
	}

	sorted := make([]Message, len(msgs))
	copy(sorted, msgs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	var b strings.Builder
	fmt.Fprintf(&b, "=== %s ===\n", title)
	fmt.Fprintf(&b, "Загружено сообщений: %d\n", len(msgs))
	fmt.Fprintf(&b, "Период: %s - %s\n\n", messageDate(sorted[0].Date), messageDate(sorted[len(sorted)-1].Date))

	for _, m := range sorted {
		sender := title
		if m.Out {
			sender = "Я"
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", messageDate(m.Date), sender, strings.TrimSpace(m.Text))
	}

	b.WriteString("\n--- Конец переписки ---\n")
	fmt.Fprintf(&b, "Последнее сообщение ID: %d", msgs[0].ID)
	return b.String()
}

func messageDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(record.TimestampLayout)
}
