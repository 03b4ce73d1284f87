package sync

import (
	"tgsync/internal/domain/record"
)

// Resolve вычисляет значение поля после слияния существующей и новой записи.
// Функция тотальна: любые строки на входе дают строку на выходе.
//
// id и last_updated политикой не разрешаются; для них возвращается
// существующее значение.
func Resolve(field string, existing, incoming record.Record) string {
	oldVal := existing.Get(field)
	newVal := incoming.Get(field)

	switch {
	case field == record.FieldID || field == record.FieldLastUpdated:
		return oldVal
	case field == record.FieldIsContact || field == record.FieldHasChat:
		return orYes(oldVal, newVal)
	case record.IsStandard(field):
		return preferNonEmpty(oldVal, newVal)
	default:
		// Вручную заполненные колонки (статусы и т.п.) не затираются пустым значением.
		if newVal != "" || !existing.Has(field) {
			return newVal
		}
		return oldVal
	}
}

func orYes(a, b string) string {
	if a == record.Yes || b == record.Yes {
		return record.Yes
	}
	return record.No
}

func preferNonEmpty(oldVal, newVal string) string {
	if newVal != "" {
		return newVal
	}
	return oldVal
}
