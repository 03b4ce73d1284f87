package record

// Table - упорядоченный набор записей с порядком колонок хранилища.
type Table struct {
	Columns []string
	Rows    []Record
}

// NewTable создает пустую таблицу со стандартными колонками.
func NewTable() Table {
	cols := make([]string, len(StandardFields))
	copy(cols, StandardFields)
	return Table{Columns: cols}
}

// FromRows собирает таблицу из записей, выводя колонки из их полей.
func FromRows(rows []Record) Table {
	t := Table{Rows: rows}
	for _, r := range rows {
		t.AddColumns(r)
	}
	return t
}

// Len возвращает количество строк.
func (t Table) Len() int {
	return len(t.Rows)
}

// IsEmpty сообщает, что в таблице нет ни одной строки.
func (t Table) IsEmpty() bool {
	return len(t.Rows) == 0
}

// HasColumn сообщает, есть ли колонка в таблице.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumns дописывает в конец колонки записи, которых еще нет в таблице.
// Новые колонки добавляются в каноническом порядке.
func (t *Table) AddColumns(r Record) {
	known := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		known[c] = struct{}{}
	}
	var added []string
	for k := range r {
		if _, ok := known[k]; !ok {
			added = append(added, k)
		}
	}
	SortColumns(added)
	t.Columns = append(t.Columns, added...)
}

// EnsureColumn добавляет колонку, если ее нет.
func (t *Table) EnsureColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// Find возвращает индекс строки с данным id или -1.
func (t Table) Find(id string) int {
	for i, r := range t.Rows {
		if r.ID() == id && id != "" {
			return i
		}
	}
	return -1
}

// Values возвращает строки в виде матрицы значений по порядку колонок.
func (t Table) Values() [][]string {
	out := make([][]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		row := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			row[i] = r[c]
		}
		out = append(out, row)
	}
	return out
}

// FromValues собирает таблицу из заголовка и строк значений.
// Короткие строки дополняются пустыми значениями, лишние ячейки отбрасываются.
func FromValues(header []string, rows [][]string) Table {
	t := Table{Columns: append([]string(nil), header...)}
	for _, row := range rows {
		r := make(Record, len(header))
		for i, c := range header {
			if c == "" {
				continue
			}
			if i < len(row) {
				r[c] = row[i]
			} else {
				r[c] = ""
			}
		}
		t.Rows = append(t.Rows, r)
	}
	return t
}

// Clone возвращает глубокую копию таблицы.
func (t Table) Clone() Table {
	c := Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Record, len(t.Rows)),
	}
	for i, r := range t.Rows {
		c.Rows[i] = r.Clone()
	}
	return c
}
