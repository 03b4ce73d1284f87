package record

import (
	"sort"
	"strings"
)

// Стандартные поля записи. Остальные поля считаются полями-расширениями.
const (
	FieldID              = "id"
	FieldUsername        = "username"
	FieldFirstName       = "first_name"
	FieldLastName        = "last_name"
	FieldTitle           = "title"
	FieldPhone           = "phone"
	FieldIsContact       = "is_contact"
	FieldIsBot           = "is_bot"
	FieldHasChat         = "has_chat"
	FieldUnreadCount     = "unread_count"
	FieldLastMessageDate = "last_message_date"
	FieldLastUpdated     = "last_updated"
)

// Поля-расширения, которые заполняют загрузчики.
const (
	FieldCommonGroups      = "common_groups"
	FieldMessages          = "messages"
	FieldProcessingStatus  = "processing_status"
	FieldLastLoadedMessage = "last_loaded_message"
)

const (
	Yes = "Yes"
	No  = "No"
)

// TimestampLayout формат last_updated и дат сообщений.
const TimestampLayout = "2006-01-02 15:04:05"

// StandardFields в порядке колонок по умолчанию.
var StandardFields = []string{
	FieldID,
	FieldUsername,
	FieldFirstName,
	FieldLastName,
	FieldTitle,
	FieldPhone,
	FieldIsContact,
	FieldIsBot,
	FieldHasChat,
	FieldUnreadCount,
	FieldLastMessageDate,
	FieldLastUpdated,
}

var standardIndex = func() map[string]int {
	idx := make(map[string]int, len(StandardFields))
	for i, f := range StandardFields {
		idx[f] = i
	}
	return idx
}()

// IsStandard сообщает, входит ли поле в стандартный набор.
func IsStandard(field string) bool {
	_, ok := standardIndex[field]
	return ok
}

// Record - одна отслеживаемая сущность: поле -> строковое значение.
type Record map[string]string

// ID возвращает первичный ключ записи без пробелов по краям.
func (r Record) ID() string {
	return strings.TrimSpace(r[FieldID])
}

// Get возвращает значение поля; отсутствующее поле равно "".
func (r Record) Get(field string) string {
	return r[field]
}

// Has сообщает, присутствует ли поле в записи (даже пустое).
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// Clone возвращает независимую копию записи.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// Fields возвращает имена полей записи в каноническом порядке.
func (r Record) Fields() []string {
	fields := make([]string, 0, len(r))
	for k := range r {
		fields = append(fields, k)
	}
	SortColumns(fields)
	return fields
}

// SortColumns упорядочивает колонки: сначала стандартные в порядке StandardFields,
// затем расширения по алфавиту.
func SortColumns(cols []string) {
	sort.SliceStable(cols, func(i, j int) bool {
		ii, iStd := standardIndex[cols[i]]
		jj, jStd := standardIndex[cols[j]]
		switch {
		case iStd && jStd:
			return ii < jj
		case iStd:
			return true
		case jStd:
			return false
		default:
			return cols[i] < cols[j]
		}
	})
}
