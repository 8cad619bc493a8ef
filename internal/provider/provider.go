package provider

import (
	"context"
)

// Provider defines the interface for language-model interactions. The
// pipeline only needs a single request/response call: a prompt in, the
// generated text out. No streaming, no tool calls.
type Provider interface {
	// Complete sends a prompt to the model and returns the generated text.
	Complete(ctx context.Context, prompt string) (string, error)

	// Name returns the provider identifier (e.g., "stub", "openai").
	Name() string
}
