package sync

import (
	"fmt"

	"tgsync/internal/domain/record"
)

// Merge сливает incoming в existing и возвращает итоговую запись и признак
// изменения данных. existing == nil означает, что записи еще нет: incoming
// вставляется как есть с last_updated = stamp.
//
// Входные записи не изменяются.
func Merge(existing, incoming record.Record, stamp string) (record.Record, bool, error) {
	if existing == nil {
		if incoming.ID() == "" {
			return nil, false, fmt.Errorf("%w: new record has no id", ErrMissingID)
		}
		out := incoming.Clone()
		out[record.FieldLastUpdated] = stamp
		return out, true, nil
	}

	changed, err := HasChanged(existing, incoming)
	if err != nil {
		return nil, false, err
	}

	out := make(record.Record, len(existing)+len(incoming))
	for _, r := range []record.Record{existing, incoming} {
		for field := range r {
			if _, done := out[field]; done {
				continue
			}
			switch field {
			case record.FieldID, record.FieldLastUpdated:
				continue
			}
			out[field] = Resolve(field, existing, incoming)
		}
	}

	if existing.ID() != "" {
		out[record.FieldID] = existing[record.FieldID]
	} else {
		out[record.FieldID] = incoming[record.FieldID]
	}

	switch {
	case changed:
		out[record.FieldLastUpdated] = stamp
	case existing.Has(record.FieldLastUpdated):
		out[record.FieldLastUpdated] = existing[record.FieldLastUpdated]
	}

	return out, changed, nil
}
