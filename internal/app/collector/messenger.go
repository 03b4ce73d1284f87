package collector

import (
	"context"
	"time"
)

type ChatType string

const (
	ChatUser    ChatType = "User"
	ChatGroup   ChatType = "Chat"
	ChatChannel ChatType = "Channel"
)

// Contact - контакт из адресной книги Telegram.
type Contact struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	IsBot     bool   `json:"is_bot"`
}

// Dialog - диалог из списка чатов.
type Dialog struct {
	ID                int64      `json:"id"`
	Title             string     `json:"title"`
	Type              ChatType   `json:"type"`
	Username          string     `json:"username"`
	ParticipantsCount *int       `json:"participants_count"`
	UnreadCount       int        `json:"unread_count"`
	LastMessageDate   *time.Time `json:"last_message_date"`
}

// Peer - найденная по id сущность (пользователь, группа или канал).
type Peer struct {
	ID    int64
	Title string
	Type  ChatType
}

type Message struct {
	ID     int
	Date   time.Time
	Text   string
	FromID int64
	Out    bool
}

// Group - общая группа или канал с пользователем.
type Group struct {
	ID           int64
	Title        string
	Type         ChatType
	MembersCount *int
}

// Messenger - клиент Telegram, из которого собираются данные.
//
// Messages возвращает сообщения от новых к старым, не больше limit.
// Ошибки доступа оборачивают ErrAccessDenied / ErrPrivacyRestricted,
// ограничение частоты запросов возвращается как *FloodWaitError.
type Messenger interface {
	Contacts(ctx context.Context) ([]Contact, error)
	Dialogs(ctx context.Context) ([]Dialog, error)
	Peer(ctx context.Context, id int64) (Peer, error)
	Messages(ctx context.Context, peer Peer, limit int) ([]Message, error)
	CommonChats(ctx context.Context, peer Peer, limit int) ([]Group, error)
}
