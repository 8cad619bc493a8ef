package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/PI-33/text2sql/internal/observe"
	"github.com/PI-33/text2sql/internal/provider"
)

// Kind is the routing decision for an utterance.
type Kind string

const (
	KindGeneral Kind = "general"
	KindData    Kind = "data"
)

// The classifier instructs the model to answer with exactly one of these
// labels; matching is by containment so minor formatting noise is tolerated.
const (
	labelGeneral = "general conversation"
	labelData    = "data query"
)

// chartKeywords is the fixed vocabulary marking an utterance as
// visualization-seeking. Matched case-insensitively by containment.
var chartKeywords = []string{
	"可视化", "图表", "图形", "绘制", "画图", "展示", "趋势", "变化",
	"统计图", "柱状图", "折线图", "饼图", "直方图", "散点图", "分布图",
	"visualize", "visualization", "chart", "plot", "graph", "trend", "变化情况",
}

// WantsChart reports whether the utterance asks for a visualization. The
// flag is consumed by the orchestrator, not by classification itself.
func WantsChart(utterance string) bool {
	lowered := strings.ToLower(utterance)
	for _, kw := range chartKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// DefaultPersona constrains general-chat answers when no persona is
// configured.
const DefaultPersona = `You are BeautyInsight, an intelligent data analysis assistant for a cosmetics sales organization.

Your expertise:
- Analyzing sales data: volume trends, market performance, category breakdowns
- Presenting insights through charts and plain-language summaries

Communication style:
- Professional but approachable
- Explain data concepts in everyday language
- Suggest useful follow-up analyses where appropriate`

// Classifier routes an utterance to general chat or the data-query path.
type Classifier struct {
	provider provider.Provider
	observer *observe.Observer
	persona  string
}

func New(p provider.Provider, obs *observe.Observer, persona string) *Classifier {
	if persona == "" {
		persona = DefaultPersona
	}
	return &Classifier{
		provider: p,
		observer: obs,
		persona:  persona,
	}
}

// Classify decides the conversation kind for an utterance. For general
// conversation it also produces the answer with a second, persona-constrained
// model call. Any model failure routes to the data path: the caller gets
// (KindData, "") and no error. Failing open costs an SQL round trip at worst;
// failing closed would drop a legitimate question.
func (c *Classifier) Classify(ctx context.Context, utterance string) (Kind, string) {
	ctx, span := c.observer.StartSpan(ctx, "Classify")
	defer span.End()

	prompt := fmt.Sprintf(`Decide whether the following user input is general conversation or a data query.

User input: %q

Criteria:
- general conversation: greetings, small talk, questions about who you are or what you can do, thanks, anything unrelated to data
- data query: questions about sales figures, statistics, data analysis, or visualization requests

Answer with exactly %q or %q and nothing else.`, utterance, labelGeneral, labelData)

	resp, err := c.provider.Complete(ctx, prompt)
	if err != nil {
		c.observer.Log().Warn().Str("utterance", utterance).Err(err).Msg("classification failed, routing to data path")
		return KindData, ""
	}

	if !strings.Contains(strings.ToLower(resp), labelGeneral) {
		return KindData, ""
	}

	answer, err := c.provider.Complete(ctx, c.chatPrompt(utterance))
	if err != nil {
		c.observer.Log().Warn().Str("utterance", utterance).Err(err).Msg("general answer failed, routing to data path")
		return KindData, ""
	}

	return KindGeneral, answer
}

func (c *Classifier) chatPrompt(utterance string) string {
	return fmt.Sprintf(`%s

User question: %q

Requirements:
- Answer in a professional, friendly tone
- If asked about your capabilities, describe data analysis and visualization with a concrete example (such as "I can chart a category's monthly sales trend")
- Keep the answer easy to understand

Answer:`, c.persona, utterance)
}
