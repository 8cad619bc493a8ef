package sqlgen

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PI-33/text2sql/internal/dialogue"
	"github.com/PI-33/text2sql/internal/observe"
	"github.com/PI-33/text2sql/internal/provider"
)

// Marker is the literal prefix the generation prompt asks the model to put
// in front of the statement.
const Marker = "SQLQuery:"

var selectToken = regexp.MustCompile(`(?i)\bSELECT\b`)

// Generator produces raw SQL text from a question via the model.
type Generator struct {
	provider provider.Provider
	observer *observe.Observer
}

func NewGenerator(p provider.Provider, obs *observe.Observer) *Generator {
	return &Generator{
		provider: p,
		observer: obs,
	}
}

// Generate asks the model for a SQL statement answering the question against
// the given schema, with recent conversation turns for continuity. The
// returned text is the model's raw production; callers run Extract on it.
func (g *Generator) Generate(ctx context.Context, question, schema string, window []dialogue.Message) (string, error) {
	ctx, span := g.observer.StartSpan(ctx, "GenerateSQL")
	defer span.End()

	prompt := g.buildPrompt(question, schema, window)
	raw, err := g.provider.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("sql generation failed: %w", err)
	}

	g.observer.Audit().Info().Str("question", question).Str("raw", truncate(raw, 500)).Msg("sql generated")
	return raw, nil
}

func (g *Generator) buildPrompt(question, schema string, window []dialogue.Message) string {
	var sb strings.Builder
	sb.WriteString("You translate analytic questions into a single SQLite SELECT statement.\n\n")
	sb.WriteString("Database schema:\n")
	sb.WriteString(schema)
	sb.WriteString("\n")

	if len(window) > 0 {
		sb.WriteString("\nRecent conversation:\n")
		for _, m := range window {
			if m.Content != "" {
				fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Content)
			}
			if m.Metadata.SQL != "" {
				fmt.Fprintf(&sb, "(previous SQL: %s)\n", m.Metadata.SQL)
			}
		}
	}

	fmt.Fprintf(&sb, "\nQuestion: %s\n\n", question)
	sb.WriteString("Answer on a single line in the form:\n")
	sb.WriteString(Marker + " <statement>\n")
	return sb.String()
}

// Extractor isolates a clean, executable statement from the model's free-text
// production, falling back to conversation context when the text carries no
// SQL at all.
type Extractor struct {
	observer *observe.Observer
}

func NewExtractor(obs *observe.Observer) *Extractor {
	return &Extractor{observer: obs}
}

// Extract applies the layered policy, first match wins:
//  1. text after the literal marker prefix, trimmed
//  2. substring from a case-insensitive SELECT token to the next line break
//  3. the newest context message carrying previously extracted SQL
//  4. the empty statement
//
// Running Extract on an already-clean single-line SELECT returns it
// unchanged. An empty result must never reach the executor.
func (e *Extractor) Extract(raw string, window []dialogue.Message) string {
	if idx := strings.Index(raw, Marker); idx >= 0 {
		return strings.TrimSpace(raw[idx+len(Marker):])
	}

	if loc := selectToken.FindStringIndex(raw); loc != nil {
		stmt := raw[loc[0]:]
		if nl := strings.IndexByte(stmt, '\n'); nl >= 0 {
			stmt = stmt[:nl]
		}
		return strings.TrimSpace(stmt)
	}

	for i := len(window) - 1; i >= 0; i-- {
		if sql := window[i].Metadata.SQL; sql != "" {
			e.observer.Log().Info().Str("sql", sql).Msg("reusing sql from conversation context")
			return sql
		}
	}

	e.observer.Log().Warn().Str("raw", truncate(raw, 500)).Msg("no sql statement could be extracted")
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
