package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/PI-33/text2sql/internal/dialogue"
	"github.com/PI-33/text2sql/internal/observe"
	"github.com/PI-33/text2sql/internal/provider"
	"github.com/PI-33/text2sql/internal/table"
)

// NoRecordsAnswer is returned verbatim for zero-count results instead of
// letting the model present a bare "0".
const NoRecordsAnswer = "There are no records matching this query."

// Composer fills a natural-language answer from the question, the cleaned
// SQL, and the execution result.
type Composer struct {
	provider provider.Provider
	observer *observe.Observer
}

func NewComposer(p provider.Provider, obs *observe.Observer) *Composer {
	return &Composer{
		provider: p,
		observer: obs,
	}
}

// Compose produces the turn's text answer. A result that is a single
// zero-valued cell short-circuits to the fixed no-records sentence; the
// model is also instructed to say so for any zero it encounters. A model
// failure degrades to the apology, never to a raw error.
func (c *Composer) Compose(ctx context.Context, question string, window []dialogue.Message, sql, rawResult string, builder *table.Builder) string {
	ctx, span := c.observer.StartSpan(ctx, "Compose")
	defer span.End()

	if isZeroCount(rawResult, builder) {
		return NoRecordsAnswer
	}

	answer, err := c.provider.Complete(ctx, c.prompt(question, window, sql, rawResult))
	if err != nil {
		c.observer.Log().Error().Str("question", question).Str("sql", sql).Err(err).Msg("answer composition failed")
		return Apology
	}
	return strings.TrimSpace(answer)
}

func (c *Composer) prompt(question string, window []dialogue.Message, sql, rawResult string) string {
	var sb strings.Builder
	sb.WriteString("Answer the question based on the following information:\n")

	if len(window) > 0 {
		sb.WriteString("\nRecent conversation:\n")
		for _, m := range window {
			if m.Content != "" {
				fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Content)
			}
		}
	}

	fmt.Fprintf(&sb, "\nQuestion: %s\n", question)
	fmt.Fprintf(&sb, "Generated SQL query: %s\n", sql)
	fmt.Fprintf(&sb, "Database result: %s\n\n", rawResult)
	sb.WriteString("Give a concise natural-language answer. ")
	sb.WriteString("If a numeric value in the result is 0, explicitly say there are no records instead of presenting the bare number.")
	return sb.String()
}

// isZeroCount reports whether the result is a single row holding a single
// zero-valued numeric cell, the shape a COUNT or SUM over no matches
// produces.
func isZeroCount(rawResult string, builder *table.Builder) bool {
	t := builder.Build(rawResult, "")
	if len(t.Rows) != 1 || len(t.Columns) != 1 {
		return false
	}
	cell := t.Rows[0][0]
	return t.Columns[0].Type == table.TypeNumeric && cell.Valid && cell.Num == 0
}
