package table

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PI-33/text2sql/internal/observe"
)

const sampleSize = 5

var (
	selectList  = regexp.MustCompile(`(?is)\bselect\s+(.+?)\s+from\b`)
	asAlias     = regexp.MustCompile(`(?i)\s+as\s+`)
	numericForm = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	dateForm    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
)

var timeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

// Naming is the tagged outcome of the column-name heuristic: either names
// recovered from the SELECT list, or a positional fallback. The ambiguity
// stays visible to callers instead of being patched over in place.
type Naming struct {
	Named   bool
	Columns []string
	Count   int
}

// ColumnNames derives column names from the SQL's SELECT list. An alias
// introduced with AS wins, else the identifier after the last dot. When the
// recovered name count does not match the row arity the result is
// positional.
func ColumnNames(sqlText string, arity int) Naming {
	m := selectList.FindStringSubmatch(sqlText)
	if m == nil {
		return Naming{Count: arity}
	}

	parts := strings.Split(m[1], ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if loc := asAlias.FindStringIndex(part); loc != nil {
			part = strings.TrimSpace(part[loc[1]:])
		} else if dot := strings.LastIndex(part, "."); dot >= 0 {
			part = strings.TrimSpace(part[dot+1:])
		}
		names = append(names, strings.Trim(part, "`\"' "))
	}

	if len(names) != arity {
		return Naming{Count: arity}
	}
	return Naming{Named: true, Columns: names}
}

// Names returns the effective column names, positional ones being
// column_0, column_1, ....
func (n Naming) Names() []string {
	if n.Named {
		return n.Columns
	}
	out := make([]string, n.Count)
	for i := range out {
		out[i] = fmt.Sprintf("column_%d", i)
	}
	return out
}

// Builder converts raw executor output into a typed Table.
type Builder struct {
	observer *observe.Observer
}

func NewBuilder(obs *observe.Observer) *Builder {
	return &Builder{observer: obs}
}

// Build parses the raw tuple-list text and types its columns. It never
// fails: unparseable input yields an empty table, and the originating SQL
// is used only for column naming.
func (b *Builder) Build(raw, sqlText string) *Table {
	rows, ok := parseTupleList(raw)
	if !ok {
		rows, ok = parsePermissive(raw)
	}
	if !ok || len(rows) == 0 {
		if strings.TrimSpace(raw) != "[]" {
			b.observer.Log().Warn().Str("raw", truncate(raw, 300)).Msg("result text could not be parsed into rows")
		}
		return &Table{}
	}

	arity := len(rows[0])
	cells := normalize(rows, arity)

	names := ColumnNames(sqlText, arity).Names()
	t := &Table{
		Columns: make([]Column, arity),
		Rows:    cells,
	}
	for i := 0; i < arity; i++ {
		t.Columns[i] = Column{Name: names[i], Type: TypeText}
		inferColumn(t, i)
	}
	return t
}

// normalize pads or truncates ragged rows to the arity of the first row,
// keeping the every-row-has-len(columns)-cells invariant.
func normalize(rows [][]string, arity int) [][]Cell {
	out := make([][]Cell, len(rows))
	for r, row := range rows {
		cellRow := make([]Cell, arity)
		for c := 0; c < arity; c++ {
			raw := ""
			if c < len(row) {
				raw = row[c]
			}
			cellRow[c] = Cell{Raw: raw, Valid: !isNull(raw)}
		}
		out[r] = cellRow
	}
	return out
}

// inferColumn types column col by sampling up to sampleSize non-empty
// values: all numeric means numeric, else any date-like means datetime,
// else text.
// Individual cells that resist coercion become nulls; the column keeps its
// type.
func inferColumn(t *Table, col int) {
	var samples []string
	for _, row := range t.Rows {
		if row[col].Valid {
			samples = append(samples, row[col].Raw)
			if len(samples) == sampleSize {
				break
			}
		}
	}
	if len(samples) == 0 {
		return
	}

	allNumeric := true
	anyDate := false
	for _, s := range samples {
		if !numericForm.MatchString(s) {
			allNumeric = false
		}
		if dateForm.MatchString(s) {
			anyDate = true
		}
	}

	switch {
	case allNumeric:
		t.Columns[col].Type = TypeNumeric
		coerceNumeric(t, col)
	case anyDate:
		t.Columns[col].Type = TypeDatetime
		coerceDatetime(t, col)
	}
}

func coerceNumeric(t *Table, col int) {
	for r := range t.Rows {
		cell := &t.Rows[r][col]
		if !cell.Valid {
			continue
		}
		num, err := strconv.ParseFloat(cell.Raw, 64)
		if err != nil {
			cell.Valid = false
			continue
		}
		cell.Num = num
	}
}

func coerceDatetime(t *Table, col int) {
	for r := range t.Rows {
		cell := &t.Rows[r][col]
		if !cell.Valid {
			continue
		}
		cell.Valid = false
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, cell.Raw); err == nil {
				cell.Time = ts
				cell.Valid = true
				break
			}
		}
	}
}

// CoerceNumeric forces numeric typing on a column from its raw values,
// nulling cells that do not parse. Reports whether any value survived.
// The renderer uses this on a non-numeric y-axis before giving up.
func (t *Table) CoerceNumeric(col int) bool {
	t.Columns[col].Type = TypeNumeric
	any := false
	for r := range t.Rows {
		cell := &t.Rows[r][col]
		cell.Valid = false
		if isNull(cell.Raw) {
			continue
		}
		if num, err := strconv.ParseFloat(cell.Raw, 64); err == nil {
			cell.Num = num
			cell.Valid = true
			any = true
		}
	}
	return any
}

func isNull(raw string) bool {
	return raw == "" || raw == "None" || raw == "NULL" || raw == "null"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
