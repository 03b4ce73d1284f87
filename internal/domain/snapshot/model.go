package snapshot

import "time"

// NameLayout суффикс имени снапшота с точностью до минуты.
const NameLayout = "20060102_1504"

// DefaultKeep количество хранимых снапшотов по умолчанию.
const DefaultKeep = 3

const separator = "_backup_"

// Info снапшот в хранилище. ID - идентификатор, понятный хранилищу
// (путь к файлу, sheetId, имя таблицы).
type Info struct {
	Name string `json:"name" yaml:"name"`
	ID   string `json:"id" yaml:"id"`
}

// Prefix возвращает общий префикс снапшотов источника.
func Prefix(source string) string {
	return source + separator
}

// Name возвращает детерминированное имя снапшота источника на момент t.
func Name(source string, t time.Time) string {
	return Prefix(source) + t.Format(NameLayout)
}

// ParseName извлекает время снапшота из имени. ok == false, если имя
// не относится к источнику или суффикс не разбирается.
func ParseName(source, name string) (time.Time, bool) {
	prefix := Prefix(source)
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return time.Time{}, false
	}
	t, err := time.Parse(NameLayout, name[len(prefix):])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
