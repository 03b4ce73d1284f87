package collector

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"tgsync/internal/domain/record"
)

// BuildRecords собирает по одной записи на пользователя из контактов и личных (User) диалогов.
// Группы и каналы пропускаются. Результат отсортирован по id.
func BuildRecords(contacts []Contact, dialogs []Dialog) []record.Record {
	chats := make(map[int64]Dialog)
	for _, d := range dialogs {
		if d.Type == ChatUser {
			chats[d.ID] = d
		}
	}

	users := make(map[int64]record.Record, len(contacts)+len(chats))

	for _, c := range contacts {
		chat, hasChat := chats[c.ID]

		username := c.Username
		if username == "" {
			username = chat.Username
		}
		title := chat.Title
		if title == "" {
			title = strings.TrimSpace(c.FirstName + " " + c.LastName)
		}

		users[c.ID] = record.Record{
			record.FieldID:              strconv.FormatInt(c.ID, 10),
			record.FieldUsername:        username,
			record.FieldFirstName:       c.FirstName,
			record.FieldLastName:        c.LastName,
			record.FieldTitle:           title,
			record.FieldPhone:           c.Phone,
			record.FieldIsContact:       record.Yes,
			record.FieldIsBot:           yesNo(c.IsBot),
			record.FieldHasChat:         yesNo(hasChat),
			record.FieldUnreadCount:     strconv.Itoa(chat.UnreadCount),
			record.FieldLastMessageDate: formatDate(chat.LastMessageDate),
		}
	}

	for id, chat := range chats {
		if _, ok := users[id]; ok {
			continue
		}
		users[id] = record.Record{
			record.FieldID:              strconv.FormatInt(id, 10),
			record.FieldUsername:        chat.Username,
			record.FieldFirstName:       "",
			record.FieldLastName:        "",
			record.FieldTitle:           chat.Title,
			record.FieldPhone:           "",
			record.FieldIsContact:       record.No,
			record.FieldIsBot:           record.No,
			record.FieldHasChat:         record.Yes,
			record.FieldUnreadCount:     strconv.Itoa(chat.UnreadCount),
			record.FieldLastMessageDate: formatDate(chat.LastMessageDate),
		}
	}

	ids := make([]int64, 0, len(users))
	for id := range users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]record.Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, users[id])
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return record.Yes
	}
	return record.No
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(record.TimestampLayout)
}
