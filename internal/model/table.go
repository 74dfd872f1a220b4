package model

import (
	"fmt"
	"strings"

	"github.com/Veraticus/codeadvisor/internal/common"
)

// Table is a rectangular numeric table with named columns.
// Text holds non-numeric side columns (for example a code-unit category) that
// travel with the rows but are never scored.
type Table struct {
	Text    map[string][]string
	Columns []string
	Rows    [][]float64
}

// SchemaError reports missing or non-numeric columns.
type SchemaError struct {
	Column  string
	Value   string
	Missing []string
	Row     int
}

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("schema error: missing columns: %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("schema error: column %q row %d: non-numeric value %q", e.Column, e.Row, e.Value)
}

// Unwrap makes SchemaError match common.ErrSchema.
func (e *SchemaError) Unwrap() error {
	return common.ErrSchema
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the index of the named column or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the table has the named numeric column.
func (t *Table) HasColumn(name string) bool {
	return t.ColumnIndex(name) >= 0
}

// CheckRectangular verifies every row has exactly one value per column.
func (t *Table) CheckRectangular() error {
	if t == nil {
		return fmt.Errorf("%w: table is nil", common.ErrNotADataTable)
	}
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if seen[c] {
			return fmt.Errorf("%w: duplicate column %q", common.ErrNotADataTable, c)
		}
		seen[c] = true
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("%w: row %d has %d values, expected %d", common.ErrNotADataTable, i, len(row), len(t.Columns))
		}
	}
	for name, values := range t.Text {
		if len(values) != len(t.Rows) {
			return fmt.Errorf("%w: text column %q has %d values, expected %d", common.ErrNotADataTable, name, len(values), len(t.Rows))
		}
	}
	return nil
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) ([]float64, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, &SchemaError{Missing: []string{name}}
	}
	values := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values, nil
}

// Select returns a new table holding only the named columns, in the given order.
// Missing columns fail with a SchemaError naming all of them.
func (t *Table) Select(names []string) (*Table, error) {
	indices := make([]int, len(names))
	var missing []string
	for i, name := range names {
		indices[i] = t.ColumnIndex(name)
		if indices[i] < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	rows := make([][]float64, len(t.Rows))
	for r, row := range t.Rows {
		out := make([]float64, len(indices))
		for i, idx := range indices {
			out[i] = row[idx]
		}
		rows[r] = out
	}
	cols := make([]string, len(names))
	copy(cols, names)
	return &Table{Columns: cols, Rows: rows}, nil
}

// Drop returns a new table without the named numeric column. Text columns are kept.
func (t *Table) Drop(name string) *Table {
	idx := t.ColumnIndex(name)
	out := &Table{Text: t.Text}
	if idx < 0 {
		out.Columns = append([]string(nil), t.Columns...)
		out.Rows = make([][]float64, len(t.Rows))
		for i, row := range t.Rows {
			out.Rows[i] = append([]float64(nil), row...)
		}
		return out
	}

	out.Columns = make([]string, 0, len(t.Columns)-1)
	out.Columns = append(out.Columns, t.Columns[:idx]...)
	out.Columns = append(out.Columns, t.Columns[idx+1:]...)
	out.Rows = make([][]float64, len(t.Rows))
	for i, row := range t.Rows {
		r := make([]float64, 0, len(row)-1)
		r = append(r, row[:idx]...)
		r = append(r, row[idx+1:]...)
		out.Rows[i] = r
	}
	return out
}

// Subset returns the rows at the given indices, text columns included.
func (t *Table) Subset(indices []int) *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]float64, len(indices)),
	}
	for i, idx := range indices {
		out.Rows[i] = append([]float64(nil), t.Rows[idx]...)
	}
	if len(t.Text) > 0 {
		out.Text = make(map[string][]string, len(t.Text))
		for name, values := range t.Text {
			sub := make([]string, len(indices))
			for i, idx := range indices {
				sub[i] = values[idx]
			}
			out.Text[name] = sub
		}
	}
	return out
}

// FeatureColumns returns the numeric columns other than the label.
func (t *Table) FeatureColumns() []string {
	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		if c != LabelColumn {
			cols = append(cols, c)
		}
	}
	return cols
}

// Labels returns the label column as integers. Values other than 0 and 1 fail.
func (t *Table) Labels() ([]int, error) {
	idx := t.ColumnIndex(LabelColumn)
	if idx < 0 {
		return nil, fmt.Errorf("%w: column %q not found", common.ErrMissingLabelColumn, LabelColumn)
	}
	labels := make([]int, len(t.Rows))
	for i, row := range t.Rows {
		switch row[idx] {
		case Suboptimal:
			labels[i] = Suboptimal
		case Optimal:
			labels[i] = Optimal
		default:
			return nil, fmt.Errorf("%w: row %d has %s=%v, expected 0 or 1", common.ErrInvalidLabel, i, LabelColumn, row[idx])
		}
	}
	return labels, nil
}

// FeatureRows converts the schema columns of every row into FeatureRows.
func (t *Table) FeatureRows() ([]FeatureRow, error) {
	features, err := t.Select(featureNames)
	if err != nil {
		return nil, err
	}
	rows := make([]FeatureRow, len(features.Rows))
	for i, values := range features.Rows {
		rows[i] = FeatureRowFromValues(values)
	}
	return rows, nil
}

// Validate checks that every schema feature column is present.
// The table is returned unchanged on success.
func Validate(t *Table) (*Table, error) {
	if err := t.CheckRectangular(); err != nil {
		return nil, err
	}
	var missing []string
	for _, name := range featureNames {
		if !t.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}
	return t, nil
}
