package collector

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/exp/slog"

	"tgsync/internal/domain/record"
)

const commonChatsLimit = 100

const (
	noGroupsText          = "[Нет общих групп]"
	privacyRestrictedText = "[Приватность ограничена]"
	accessDeniedText      = "[Доступ запрещен]"
)

// GroupsLoader заполняет колонку common_groups общими группами и каналами с пользователем.
type GroupsLoader struct {
	messenger Messenger
	store     Store
	opts      Options
	log       *slog.Logger
}

func NewGroupsLoader(messenger Messenger, store Store, opts Options, log *slog.Logger) *GroupsLoader {
	opts.setDefaults()
	return &GroupsLoader{
		messenger: messenger,
		store:     store,
		opts:      opts,
		log:       log.With("component", "groups_loader", "provider", store.Name()),
	}
}

func (l *GroupsLoader) Pending(ctx context.Context) ([]record.Record, error) {
	table, err := l.store.ReadTable(ctx)
	if err != nil {
		return nil, err
	}
	return pendingRows(table, l.opts.MaxRows, groupsPending), nil
}

func groupsPending(r record.Record) bool {
	return r.Get(record.FieldCommonGroups) == ""
}

func (l *GroupsLoader) Run(ctx context.Context) (Stats, error) {
	rows, err := l.Pending(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("get pending rows: %w", err)
	}

	stats := Stats{Total: len(rows)}
	if len(rows) == 0 {
		l.log.Info("no pending rows")
		return stats, nil
	}
	l.log.Info("processing pending rows", "total", stats.Total)

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

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

func (l *GroupsLoader) processRow(ctx context.Context, row record.Record) bool {
	id := row.ID()
	log := l.log.With("id", id, "title", rowTitle(row, "User"))

	userID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		l.save(ctx, log, id, fmt.Sprintf("[СИСТЕМНАЯ ОШИБКА]: invalid user id %q", id))
		return false
	}

	text, count, err := l.commonGroups(ctx, userID)
	if err != nil {
		log.Warn("failed to get common groups", "error", err)
	}

	if !l.save(ctx, log, id, text) {
		return false
	}
	log.Info("common groups loaded", "count", count)
	return true
}

func (l *GroupsLoader) save(ctx context.Context, log *slog.Logger, id, text string) bool {
	patch := record.Record{record.FieldCommonGroups: text}
	if err := updateRow(ctx, l.store, id, patch, l.opts.Now()); err != nil {
		log.Error("failed to save common groups", "error", err)
		return false
	}
	return true
}

// commonGroups возвращает текст для ячейки и число групп. Ошибки Telegram уже
// отражены в тексте; err возвращается только для журнала.
func (l *GroupsLoader) commonGroups(ctx context.Context, userID int64) (string, int, error) {
	peer, err := withFloodWait(ctx, l.log, l.opts.Sleep, func() (Peer, error) {
		return l.messenger.Peer(ctx, userID)
	})
	if err != nil {
		return fmt.Sprintf("[Ошибка: could not access user: %s]", err), 0, err
	}

	chats, err := withFloodWait(ctx, l.log, l.opts.Sleep, func() ([]Group, error) {
		return l.messenger.CommonChats(ctx, peer, commonChatsLimit)
	})
	switch {
	case errors.Is(err, ErrPrivacyRestricted):
		return privacyRestrictedText, 0, err
	case errors.Is(err, ErrAccessDenied):
		return accessDeniedText, 0, err
	case err != nil:
		return fmt.Sprintf("[Ошибка: %s]", err), 0, err
	}

	groups := FormatGroups(chats)
	return groups, countGroups(chats), nil
}

// FormatGroups выводит группы и каналы по одной на строку: "Title (Group|Channel)".
func FormatGroups(chats []Group) string {
	var lines []string
	for _, g := range chats {
		switch g.Type {
		case ChatGroup:
			lines = append(lines, g.Title+" (Group)")
		case ChatChannel:
			lines = append(lines, g.Title+" (Channel)")
		}
	}
	if len(lines) == 0 {
		return noGroupsText
	}
	return strings.Join(lines, "\n")
}

func countGroups(chats []Group) int {
	n := 0
	for _, g := range chats {
		if g.Type == ChatGroup || g.Type == ChatChannel {
			n++
		}
	}
	return n
}
