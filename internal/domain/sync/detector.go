package sync

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"tgsync/internal/domain/record"
)

// leadingZeroHour находит "YYYY-MM-DD 0H:MM:SS" с нулем в часе.
var leadingZeroHour = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}[ T])0(\d:\d{2}:\d{2})`)

// HasChanged сообщает, изменилось ли хоть одно сохраняемое поле при слиянии incoming
// в existing. Используется только для решения, сдвигать ли last_updated.
//
// is_contact не учитывается: он отражает источник, в котором сущность была замечена,
// а не новые данные о ней.
func HasChanged(existing, incoming record.Record) (bool, error) {
	if existing.ID() == "" && incoming.ID() == "" {
		return false, fmt.Errorf("%w: cannot compare records without a key", ErrMissingID)
	}

	for _, field := range record.StandardFields {
		if field == record.FieldID || field == record.FieldLastUpdated || field == record.FieldIsContact {
			continue
		}
		if field == record.FieldHasChat && !existing.Has(field) && !incoming.Has(field) {
			continue
		}
		if standardFieldChanged(field, existing.Get(field), incoming.Get(field)) {
			return true, nil
		}
	}

	for _, field := range extensionFields(existing, incoming) {
		newVal := incoming.Get(field)
		if newVal != "" && newVal != existing.Get(field) {
			return true, nil
		}
	}

	return false, nil
}

func standardFieldChanged(field, oldVal, newVal string) bool {
	switch field {
	case record.FieldPhone:
		return newVal != "" && digitsOnly(newVal) != digitsOnly(oldVal)
	case record.FieldUnreadCount:
		return preferNonEmpty(oldVal, newVal) != oldVal
	case record.FieldLastMessageDate:
		return normalizeDate(preferNonEmpty(oldVal, newVal)) != normalizeDate(oldVal)
	case record.FieldHasChat:
		// изменение - только если OR дает не то, что уже сохранено
		return orYes(oldVal, newVal) != oldVal
	default:
		return newVal != "" && newVal != oldVal
	}
}

// extensionFields возвращает поля-расширения обеих записей в детерминированном порядке.
func extensionFields(a, b record.Record) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range []record.Record{a, b} {
		for k := range r {
			if record.IsStandard(k) {
				continue
			}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	return leadingZeroHour.ReplaceAllString(s, "${1}${2}")
}
