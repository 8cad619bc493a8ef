package sqlgen

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/PI-33/text2sql/internal/dialogue"
	"github.com/PI-33/text2sql/internal/observe"
	"github.com/PI-33/text2sql/internal/provider"
)

func newTestObserver() *observe.Observer {
	return observe.New(&bytes.Buffer{}, false)
}

func TestExtract_Marker(t *testing.T) {
	e := NewExtractor(newTestObserver())

	testCases := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "marker prefix",
			raw:  "SQLQuery: SELECT id FROM orders",
			want: "SELECT id FROM orders",
		},
		{
			name: "marker mid-text",
			raw:  "Here is the query you asked for.\nSQLQuery: SELECT sum(sales) FROM orders WHERE province = '江苏省'",
			want: "SELECT sum(sales) FROM orders WHERE province = '江苏省'",
		},
		{
			name: "marker with trailing whitespace",
			raw:  "SQLQuery:   SELECT 1  \n",
			want: "SELECT 1",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := e.Extract(tc.raw, nil); got != tc.want {
				t.Errorf("Extract(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestExtract_SelectToken(t *testing.T) {
	e := NewExtractor(newTestObserver())

	raw := "Sure! The statement would be:\nselect date, sales from orders order by date\nLet me know if you need more."
	want := "select date, sales from orders order by date"
	if got := e.Extract(raw, nil); got != want {
		t.Errorf("Extract = %q, want %q", got, want)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	e := NewExtractor(newTestObserver())

	clean := "SELECT avg(sales) FROM orders WHERE date BETWEEN '2024-10-21' AND '2024-10-25'"
	if got := e.Extract(clean, nil); got != clean {
		t.Errorf("re-extracting a clean statement changed it: %q", got)
	}
}

func TestExtract_ContextFallback(t *testing.T) {
	e := NewExtractor(newTestObserver())

	window := []dialogue.Message{
		{Role: dialogue.RoleUser, Content: "show sales by date"},
		{Role: dialogue.RoleAssistant, Metadata: dialogue.Metadata{
			Type: dialogue.TypeSQLQuery,
			SQL:  "SELECT date, sales FROM orders",
		}},
		{Role: dialogue.RoleUser, Content: "now chart that"},
	}

	got := e.Extract("I cannot write a statement for that.", window)
	if got != "SELECT date, sales FROM orders" {
		t.Errorf("expected context SQL reuse, got %q", got)
	}
}

func TestExtract_ContextFallbackPrefersNewest(t *testing.T) {
	e := NewExtractor(newTestObserver())

	window := []dialogue.Message{
		{Metadata: dialogue.Metadata{SQL: "SELECT old FROM t"}},
		{Metadata: dialogue.Metadata{SQL: "SELECT new FROM t"}},
	}

	if got := e.Extract("no statement here", window); got != "SELECT new FROM t" {
		t.Errorf("expected newest context SQL, got %q", got)
	}
}

func TestExtract_Empty(t *testing.T) {
	e := NewExtractor(newTestObserver())

	if got := e.Extract("I'm sorry, I don't understand the question.", nil); got != "" {
		t.Errorf("expected empty statement, got %q", got)
	}
}

func TestGenerate_PromptCarriesSchemaAndContext(t *testing.T) {
	p := provider.NewStubProvider("SQLQuery: SELECT count(*) FROM orders")
	g := NewGenerator(p, newTestObserver())

	window := []dialogue.Message{
		{Role: dialogue.RoleUser, Content: "how are sales?"},
		{Role: dialogue.RoleAssistant, Metadata: dialogue.Metadata{SQL: "SELECT sales FROM orders"}},
	}

	raw, err := g.Generate(context.Background(), "how many orders?", "CREATE TABLE orders (id INTEGER, sales REAL)", window)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if raw != "SQLQuery: SELECT count(*) FROM orders" {
		t.Errorf("unexpected raw output %q", raw)
	}

	prompt := p.Prompts[0]
	for _, fragment := range []string{
		"CREATE TABLE orders",
		"how many orders?",
		"SELECT sales FROM orders",
		Marker,
	} {
		if !strings.Contains(prompt, fragment) {
			t.Errorf("prompt missing %q:\n%s", fragment, prompt)
		}
	}
}
