package pipeline

import (
	"context"

	"github.com/PI-33/text2sql/internal/classify"
	"github.com/PI-33/text2sql/internal/database"
	"github.com/PI-33/text2sql/internal/dialogue"
	"github.com/PI-33/text2sql/internal/observe"
	"github.com/PI-33/text2sql/internal/provider"
	"github.com/PI-33/text2sql/internal/sqlgen"
	"github.com/PI-33/text2sql/internal/table"
	"github.com/PI-33/text2sql/internal/viz"
)

// State names a stage of the turn state machine. The Turn records the
// terminal state it reached so callers and tests can tell the branches
// apart.
type State string

const (
	StateClassifying   State = "classifying"
	StateGeneralAnswer State = "general_answer"
	StateSQLGenerating State = "sql_generating"
	StateSQLExtracting State = "sql_extracting"
	StateExecuting     State = "executing"
	StateTableBuilding State = "table_building"
	StateCharting      State = "charting"
	StateComposing     State = "composing"
)

// Apology is the only error string a user ever sees. Raw model and database
// errors go to the logs, not the chat.
const Apology = "Sorry, I couldn't answer that from the database. Please try rephrasing your question."

// Reply is one assistant output: either text or an image attachment.
type Reply struct {
	Text      string
	ImagePath string
}

// Turn is the caller-facing result of one utterance, sufficient for any
// front-end to render the exchange.
type Turn struct {
	Replies   []Reply
	SQL       string
	RawResult string
	State     State
}

// Orchestrator wires the pipeline stages into the two end-to-end flows
// (answer-only and answer-with-chart) and owns the fallback-to-text policy.
// Execution is single-request and synchronous: one turn runs to completion
// before the caller reads the result.
type Orchestrator struct {
	classifier *classify.Classifier
	generator  *sqlgen.Generator
	extractor  *sqlgen.Extractor
	builder    *table.Builder
	composer   *Composer
	executor   database.Executor
	renderer   *viz.Renderer
	dialogue   *dialogue.Context
	observer   *observe.Observer
}

func New(p provider.Provider, exec database.Executor, dc *dialogue.Context, r *viz.Renderer, obs *observe.Observer, persona string) *Orchestrator {
	return &Orchestrator{
		classifier: classify.New(p, obs, persona),
		generator:  sqlgen.NewGenerator(p, obs),
		extractor:  sqlgen.NewExtractor(obs),
		builder:    table.NewBuilder(obs),
		composer:   NewComposer(p, obs),
		executor:   exec,
		renderer:   r,
		dialogue:   dc,
		observer:   obs,
	}
}

// Dialogue exposes the session context so front-ends can show history or
// reset the session.
func (o *Orchestrator) Dialogue() *dialogue.Context {
	return o.dialogue
}

// HandleTurn runs one utterance through the state machine. Every terminal
// branch appends one user message and one-or-two assistant messages to the
// session, tagged with the branch's SQL, result, and chart path so later
// turns can reuse them.
func (o *Orchestrator) HandleTurn(ctx context.Context, utterance string) *Turn {
	ctx, span := o.observer.StartSpan(ctx, "HandleTurn")
	defer span.End()

	// The window is read before any generation so prompts see the turns
	// preceding this one.
	window := o.dialogue.Window(dialogue.DefaultWindowSize)
	wantsChart := classify.WantsChart(utterance)

	kind, answer := o.classifier.Classify(ctx, utterance)
	if kind == classify.KindGeneral {
		o.dialogue.AddMessage(dialogue.RoleUser, utterance, dialogue.Metadata{Type: dialogue.TypeQuery})
		o.dialogue.AddMessage(dialogue.RoleAssistant, answer, dialogue.Metadata{Type: dialogue.TypeResponse})
		return &Turn{
			Replies: []Reply{{Text: answer}},
			State:   StateGeneralAnswer,
		}
	}

	schema, err := o.executor.Schema(ctx)
	if err != nil {
		o.observer.Log().Warn().Err(err).Msg("schema introspection failed, prompting without schema")
	}

	raw, err := o.generator.Generate(ctx, utterance, schema, window)
	if err != nil {
		// Extraction falls back to context SQL when generation produced
		// nothing usable.
		o.observer.Log().Error().Str("utterance", utterance).Err(err).Msg("sql generation failed")
		raw = ""
	}

	sql := o.extractor.Extract(raw, window)
	if sql == "" {
		o.observer.Log().Warn().Str("utterance", utterance).Msg("no sql extracted, skipping execution")
		return o.failTurn(utterance, sql)
	}

	rawResult, err := o.executor.Execute(ctx, sql)
	if err != nil {
		o.observer.Log().Error().Str("utterance", utterance).Str("sql", sql).Err(err).Msg("execution failed")
		return o.failTurn(utterance, sql)
	}

	if wantsChart {
		if turn := o.chartTurn(ctx, utterance, sql, rawResult); turn != nil {
			return turn
		}
		// Chart infeasible or rendering failed: fall back to the text
		// flow with the result already in hand. No re-execution.
	}

	answerText := o.composer.Compose(ctx, utterance, window, sql, rawResult, o.builder)

	o.dialogue.AddMessage(dialogue.RoleUser, utterance, dialogue.Metadata{Type: dialogue.TypeQuery})
	o.dialogue.AddMessage(dialogue.RoleAssistant, answerText, dialogue.Metadata{
		Type:      dialogue.TypeSQLQuery,
		SQL:       sql,
		SQLResult: truncate(rawResult, 2000),
	})

	return &Turn{
		Replies:   []Reply{{Text: answerText}},
		SQL:       sql,
		RawResult: rawResult,
		State:     StateComposing,
	}
}

// chartTurn attempts the visualization branch. It returns nil when no chart
// could be produced, signalling the caller to fall back to text.
func (o *Orchestrator) chartTurn(ctx context.Context, utterance, sql, rawResult string) *Turn {
	_, span := o.observer.StartSpan(ctx, "Charting")
	defer span.End()

	tab := o.builder.Build(rawResult, sql)
	path := o.renderer.Render(tab)
	if path == "" {
		return nil
	}

	summary := Summarize(tab)
	meta := dialogue.Metadata{
		Type:      dialogue.TypeVizResponse,
		SQL:       sql,
		SQLResult: truncate(rawResult, 2000),
		VizPath:   path,
	}
	o.dialogue.AddMessage(dialogue.RoleUser, utterance, dialogue.Metadata{Type: dialogue.TypeQuery})
	o.dialogue.AddMessage(dialogue.RoleAssistant, summary, meta)
	o.dialogue.AddImage(path, meta)

	return &Turn{
		Replies: []Reply{
			{Text: summary},
			{ImagePath: path},
		},
		SQL:       sql,
		RawResult: rawResult,
		State:     StateCharting,
	}
}

// failTurn surfaces the fixed apology for extraction and execution
// failures. The cause is already logged; the user never sees it.
func (o *Orchestrator) failTurn(utterance, sql string) *Turn {
	o.dialogue.AddMessage(dialogue.RoleUser, utterance, dialogue.Metadata{Type: dialogue.TypeQuery})
	o.dialogue.AddMessage(dialogue.RoleAssistant, Apology, dialogue.Metadata{
		Type: dialogue.TypeError,
		SQL:  sql,
	})
	return &Turn{
		Replies: []Reply{{Text: Apology}},
		SQL:     sql,
		State:   StateComposing,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
