package collector

import (
	"strings"

	"tgsync/internal/domain/record"
)

// StatusReport состояние обработки таблицы одним загрузчиком.
type StatusReport struct {
	Column    string `json:"column" yaml:"column"`
	TotalRows int    `json:"total_rows" yaml:"total_rows"`
	ValidRows int    `json:"valid_rows" yaml:"valid_rows"`
	NoID      int    `json:"no_id" yaml:"no_id"`
	Processed int    `json:"processed" yaml:"processed"`
	Pending   int    `json:"pending" yaml:"pending"`
	Errors    int    `json:"errors" yaml:"errors"`
}

// ProcessedPercent доля обработанных строк среди строк с id.
func (r StatusReport) ProcessedPercent() float64 {
	if r.ValidRows == 0 {
		return 0
	}
	return float64(r.Processed) / float64(r.ValidRows) * 100
}

var errorPrefixes = []string{"[ОШИБКА", "[Ошибка", "[СИСТЕМНАЯ ОШИБКА"}

// GroupsStatus считает строки по содержимому колонки common_groups.
func GroupsStatus(table record.Table) StatusReport {
	return status(table, record.FieldCommonGroups, func(r record.Record) int {
		v := strings.TrimSpace(r.Get(record.FieldCommonGroups))
		switch {
		case v == "":
			return statePending
		case hasErrorPrefix(v):
			return stateError
		default:
			return stateProcessed
		}
	})
}

// MessagesStatus считает строки по processing_status и колонке messages.
func MessagesStatus(table record.Table) StatusReport {
	return status(table, record.FieldMessages, func(r record.Record) int {
		switch r.Get(record.FieldProcessingStatus) {
		case StatusError:
			return stateError
		case StatusDone:
			return stateProcessed
		}
		if r.Get(record.FieldMessages) != "" {
			return stateProcessed
		}
		return statePending
	})
}

const (
	statePending = iota
	stateProcessed
	stateError
)

func status(table record.Table, column string, classify func(record.Record) int) StatusReport {
	rep := StatusReport{Column: column, TotalRows: table.Len()}
	for _, r := range table.Rows {
		if r.ID() == "" {
			rep.NoID++
			continue
		}
		rep.ValidRows++
		switch classify(r) {
		case statePending:
			rep.Pending++
		case stateProcessed:
			rep.Processed++
		case stateError:
			rep.Errors++
		}
	}
	return rep
}

func hasErrorPrefix(v string) bool {
	for _, p := range errorPrefixes {
		if strings.HasPrefix(v, p) {
			return true
		}
	}
	return false
}
