package table

import (
	"strings"
)

// parseTupleList parses the executor's bracketed tuple-list serialization
// into raw string rows. Single-quoted values may contain commas, parens,
// and doubled-quote escapes.
func parseTupleList(s string) ([][]string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, false
	}
	inner := s[1 : len(s)-1]

	var rows [][]string
	i, n := 0, len(inner)

	for i < n {
		for i < n && (inner[i] == ' ' || inner[i] == ',' || inner[i] == '\n' || inner[i] == '\t') {
			i++
		}
		if i >= n {
			break
		}
		if inner[i] != '(' {
			return nil, false
		}
		i++

		var row []string
		var cur strings.Builder
		inQuote := false
		started := false
		closed := false

		for i < n && !closed {
			ch := inner[i]
			if inQuote {
				if ch == '\'' {
					if i+1 < n && inner[i+1] == '\'' {
						cur.WriteByte('\'')
						i += 2
						continue
					}
					inQuote = false
					i++
					continue
				}
				cur.WriteByte(ch)
				i++
				continue
			}

			switch ch {
			case '\'':
				inQuote = true
				started = true
				i++
			case ',':
				row = append(row, strings.TrimSpace(cur.String()))
				cur.Reset()
				started = false
				i++
			case ')':
				// A trailing comma before ')' leaves an empty unstarted
				// cell; drop it rather than emitting a phantom column.
				if started || strings.TrimSpace(cur.String()) != "" || len(row) == 0 {
					row = append(row, strings.TrimSpace(cur.String()))
				}
				closed = true
				i++
			default:
				if ch != ' ' && ch != '\t' {
					started = true
				}
				cur.WriteByte(ch)
				i++
			}
		}

		if !closed || inQuote {
			return nil, false
		}
		rows = append(rows, row)
	}

	return rows, true
}

// parsePermissive is the secondary parser: strip the bracket/paren
// delimiters and split on tuple boundaries. It tolerates mangled input at
// the cost of quoting fidelity.
func parsePermissive(s string) ([][]string, bool) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "(") || !strings.Contains(s, ")") {
		return nil, false
	}
	s = strings.Trim(s, "[]")
	if strings.TrimSpace(s) == "" {
		return nil, false
	}

	var rows [][]string
	for _, chunk := range strings.Split(s, "), (") {
		chunk = strings.Trim(chunk, "() ")
		if chunk == "" {
			continue
		}
		var row []string
		for _, cell := range strings.Split(chunk, ",") {
			cell = strings.TrimSpace(cell)
			cell = strings.Trim(cell, "'")
			row = append(row, cell)
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, false
	}
	return rows, true
}
