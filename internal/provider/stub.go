package provider

import (
	"context"
)

// StubProvider is a scripted provider for tests and offline demos. Each
// Complete call pops the next response from the queue; an exhausted queue
// repeats the last response.
type StubProvider struct {
	Responses []string
	Err       error

	// Prompts records every prompt received, in order.
	Prompts []string

	last string
}

func NewStubProvider(responses ...string) *StubProvider {
	if len(responses) == 0 {
		responses = []string{
			"data query",
			"SQLQuery: SELECT date, sales FROM orders ORDER BY date",
			"Sales held steady over the requested period.",
		}
	}
	return &StubProvider{Responses: responses}
}

func (m *StubProvider) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.Prompts = append(m.Prompts, prompt)

	if m.Err != nil {
		return "", m.Err
	}

	if len(m.Responses) == 0 {
		return m.last, nil
	}

	resp := m.Responses[0]
	m.Responses = m.Responses[1:]
	m.last = resp
	return resp, nil
}

func (m *StubProvider) Name() string {
	return "stub"
}
