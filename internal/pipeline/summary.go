package pipeline

import (
	"fmt"
	"strings"

	"github.com/PI-33/text2sql/internal/table"
)

// Summarize builds the data summary that accompanies a chart: the row
// count, sum and mean for each numeric column, and the date range for each
// datetime column.
func Summarize(t *table.Table) string {
	if t.Empty() {
		return "The query returned no data to visualize."
	}

	var sb strings.Builder
	sb.WriteString("Here is a visualization of the query result.\n\n")
	fmt.Fprintf(&sb, "The result contains %d rows.\n", len(t.Rows))

	for i, col := range t.Columns {
		switch col.Type {
		case table.TypeNumeric:
			vals := t.NumericValues(i)
			if len(vals) == 0 {
				continue
			}
			var sum float64
			for _, v := range vals {
				sum += v
			}
			mean := sum / float64(len(vals))
			fmt.Fprintf(&sb, "- %s: sum=%.2f, mean=%.2f\n", col.Name, sum, mean)
		case table.TypeDatetime:
			times := t.TimeValues(i)
			if len(times) == 0 {
				continue
			}
			minT, maxT := times[0], times[0]
			for _, ts := range times[1:] {
				if ts.Before(minT) {
					minT = ts
				}
				if ts.After(maxT) {
					maxT = ts
				}
			}
			fmt.Fprintf(&sb, "- %s: %s to %s\n", col.Name, minT.Format("2006-01-02"), maxT.Format("2006-01-02"))
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}
