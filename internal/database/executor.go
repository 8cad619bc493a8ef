package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/PI-33/text2sql/internal/observe"
)

// Executor runs SQL against the analytic store and returns results in the
// textual tuple-list form the table builder parses.
type Executor interface {
	// Execute runs the statement and serializes the result set as
	// "[(v1, 'v2'), (...)]". Database errors propagate unchanged; the
	// orchestrator catches them at the pipeline boundary.
	Execute(ctx context.Context, query string) (string, error)

	// Schema returns the CREATE TABLE statements describing the database,
	// used to ground the SQL-generation prompt.
	Schema(ctx context.Context) (string, error)

	Close() error
}

// SQLiteExecutor is the Executor over a local sqlite database.
type SQLiteExecutor struct {
	db       *sql.DB
	observer *observe.Observer
}

func NewSQLiteExecutor(path string, obs *observe.Observer) (*SQLiteExecutor, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &SQLiteExecutor{
		db:       db,
		observer: obs,
	}, nil
}

func (e *SQLiteExecutor) Close() error {
	return e.db.Close()
}

func (e *SQLiteExecutor) Execute(ctx context.Context, query string) (string, error) {
	ctx, span := e.observer.StartSpan(ctx, "ExecuteSQL")
	defer span.End()

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		e.observer.Audit().Error().Str("sql", query).Err(err).Msg("execution failed")
		return "", fmt.Errorf("query execution failed: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return "", err
	}

	var tuples []string
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return "", fmt.Errorf("row scan failed: %w", err)
		}
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = formatCell(v)
		}
		tuples = append(tuples, "("+strings.Join(cells, ", ")+")")
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	result := "[" + strings.Join(tuples, ", ") + "]"
	e.observer.Audit().Info().Str("sql", query).Str("result", truncate(result, 500)).Msg("executed")
	return result, nil
}

// formatCell renders one cell in the tuple-list serialization: numerics and
// NULLs bare, everything else single-quoted.
func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return "None"
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		// 'f' keeps large sums out of exponent notation, which the table
		// builder would not recognize as numeric.
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "1"
		}
		return "0"
	case time.Time:
		return "'" + val.Format("2006-01-02 15:04:05") + "'"
	case []byte:
		return quote(string(val))
	case string:
		return quote(val)
	default:
		return quote(fmt.Sprint(val))
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (e *SQLiteExecutor) Schema(ctx context.Context) (string, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT sql FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' AND sql IS NOT NULL`)
	if err != nil {
		return "", fmt.Errorf("schema introspection failed: %w", err)
	}
	defer rows.Close()

	var ddl []string
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return "", err
		}
		ddl = append(ddl, stmt+";")
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	return strings.Join(ddl, "\n"), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
