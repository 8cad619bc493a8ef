package table

import (
	"time"
)

// Type is a column's inferred value type.
type Type string

const (
	TypeText     Type = "text"
	TypeNumeric  Type = "numeric"
	TypeDatetime Type = "datetime"
)

// Column describes one table column.
type Column struct {
	Name string
	Type Type
}

// Cell is one value in a row. For numeric and datetime columns a cell that
// failed coercion keeps its raw text but is marked invalid (null); the
// column keeps its best-effort type regardless.
type Cell struct {
	Raw   string
	Valid bool
	Num   float64
	Time  time.Time
}

// Table is a typed result set. Invariant: every row has exactly
// len(Columns) cells, and column order is stable; downstream charting
// assigns column 0 to the x axis and column 1 to the y axis.
type Table struct {
	Columns []Column
	Rows    [][]Cell
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return len(t.Rows) == 0
}

// NumericValues returns the valid numeric values of a column, in row order.
func (t *Table) NumericValues(col int) []float64 {
	var out []float64
	for _, row := range t.Rows {
		if row[col].Valid {
			out = append(out, row[col].Num)
		}
	}
	return out
}

// TimeValues returns the valid datetime values of a column, in row order.
func (t *Table) TimeValues(col int) []time.Time {
	var out []time.Time
	for _, row := range t.Rows {
		if row[col].Valid {
			out = append(out, row[col].Time)
		}
	}
	return out
}
