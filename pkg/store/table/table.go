package table

import (
	"strings"

	"github.com/de-tools/compliance-atlas/pkg/models/domain"
)

// Table is a column-oriented text table loaded from a CSV file or a spreadsheet
type Table struct {
	Columns []string
	Rows    [][]string
	index   map[string]int
}

// New builds a table, trimming header names. Short rows are padded with empty cells.
func New(columns []string, rows [][]string) *Table {
	t := &Table{
		Columns: make([]string, len(columns)),
		Rows:    make([][]string, 0, len(rows)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		c = strings.TrimSpace(c)
		t.Columns[i] = c
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
	for _, r := range rows {
		if len(r) < len(columns) {
			padded := make([]string, len(columns))
			copy(padded, r)
			r = padded
		}
		t.Rows = append(t.Rows, r)
	}
	return t
}

// Len returns the number of data rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Has reports whether the column exists
func (t *Table) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Value returns the cell at row/column, or an empty string when the column is absent
func (t *Table) Value(row int, column string) string {
	i, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.Rows) || i >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][i]
}

// Require checks that every column is present and names all missing ones
func (t *Table) Require(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &domain.MissingColumnsError{Columns: missing}
	}
	return nil
}
