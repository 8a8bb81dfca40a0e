package models

import "fmt"

// Table is an in-memory tabular result with ordered columns and string cells.
// Every reader in the pipeline produces a Table and every later stage consumes one.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable creates an empty table with the given columns.
func NewTable(columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{Columns: cols, Rows: [][]string{}}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of a column or -1 when it is absent.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table exposes the named column.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// Value returns the cell at row i for the named column, or "" when the column is missing.
func (t *Table) Value(i int, column string) string {
	idx := t.ColumnIndex(column)
	if idx < 0 || i < 0 || i >= len(t.Rows) || idx >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][idx]
}

// AppendRow adds a row, padding or rejecting it against the column count.
func (t *Table) AppendRow(row []string) error {
	if len(row) > len(t.Columns) {
		return fmt.Errorf("row has %d cells but table has %d columns", len(row), len(t.Columns))
	}
	r := make([]string, len(t.Columns))
	copy(r, row)
	t.Rows = append(t.Rows, r)
	return nil
}

// Column returns a copy of all values of the named column.
func (t *Table) Column(name string) ([]string, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			values[i] = row[idx]
		}
	}
	return values, true
}

// WithColumn returns a copy of the table with the column set to values.
// An existing column is overwritten in place; a new one is appended.
func (t *Table) WithColumn(name string, values []string) (*Table, error) {
	if len(values) != len(t.Rows) {
		return nil, fmt.Errorf("column %q has %d values for %d rows", name, len(values), len(t.Rows))
	}
	out := t.Clone()
	idx := out.ColumnIndex(name)
	if idx < 0 {
		out.Columns = append(out.Columns, name)
		for i := range out.Rows {
			out.Rows[i] = append(out.Rows[i], values[i])
		}
		return out, nil
	}
	for i := range out.Rows {
		out.Rows[i][idx] = values[i]
	}
	return out, nil
}

// Clone performs a deep copy.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := NewTable(t.Columns...)
	out.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]string, len(row))
		copy(r, row)
		out.Rows[i] = r
	}
	return out
}

// TrimFooter drops the last n rows. Trimming more rows than exist leaves an empty table.
func (t *Table) TrimFooter(n int) {
	if n <= 0 {
		return
	}
	if n >= len(t.Rows) {
		t.Rows = t.Rows[:0]
		return
	}
	t.Rows = t.Rows[:len(t.Rows)-n]
}

// Concat stacks tables vertically. The result exposes the union of columns in
// first-appearance order; cells for columns a table does not carry stay empty.
// Row order follows argument order and the row count is the sum of inputs.
func Concat(tables ...*Table) *Table {
	var columns []string
	seen := make(map[string]bool)
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, c := range t.Columns {
			if !seen[c] {
				seen[c] = true
				columns = append(columns, c)
			}
		}
	}

	out := NewTable(columns...)
	for _, t := range tables {
		if t == nil {
			continue
		}
		positions := make([]int, len(t.Columns))
		for i, c := range t.Columns {
			positions[i] = out.ColumnIndex(c)
		}
		for _, row := range t.Rows {
			r := make([]string, len(columns))
			for i, v := range row {
				if i < len(positions) {
					r[positions[i]] = v
				}
			}
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}
