package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStubProvider_PopsQueue(t *testing.T) {
	p := NewStubProvider("first", "second")

	got, err := p.Complete(context.Background(), "prompt one")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "first" {
		t.Errorf("expected 'first', got %q", got)
	}

	got, _ = p.Complete(context.Background(), "prompt two")
	if got != "second" {
		t.Errorf("expected 'second', got %q", got)
	}

	// Exhausted queue repeats the last response.
	got, _ = p.Complete(context.Background(), "prompt three")
	if got != "second" {
		t.Errorf("expected repeated 'second', got %q", got)
	}

	if len(p.Prompts) != 3 {
		t.Errorf("expected 3 recorded prompts, got %d", len(p.Prompts))
	}
}

func TestStubProvider_Err(t *testing.T) {
	p := NewStubProvider("unused")
	p.Err = errors.New("model unavailable")

	if _, err := p.Complete(context.Background(), "x"); err == nil {
		t.Fatal("expected error from stub")
	}
}

func TestStubProvider_CancelledContext(t *testing.T) {
	p := NewStubProvider("x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Complete(ctx, "x"); err == nil {
		t.Fatal("expected context error")
	}
}

func TestNewOpenAIProvider_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIProvider("", "", ""); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestNewAnthropicProvider_RequiresKey(t *testing.T) {
	if _, err := NewAnthropicProvider("", ""); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestNewGeminiProvider_RequiresKey(t *testing.T) {
	if _, err := NewGeminiProvider("", ""); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestNewOllamaProvider_DefaultModel(t *testing.T) {
	p, err := NewOllamaProvider("")
	if err != nil {
		t.Fatalf("NewOllamaProvider failed: %v", err)
	}
	if p.model != "llama3.2" {
		t.Errorf("expected default model llama3.2, got %q", p.model)
	}
	if p.Name() != "ollama" {
		t.Errorf("expected name 'ollama', got %q", p.Name())
	}
}

func TestAnthropicProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("expected api key header, got %q", got)
		}

		var req anthropicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(req.Messages) != 1 || req.Messages[0].Content[0].Text != "how many orders?" {
			t.Errorf("unexpected request messages: %+v", req.Messages)
		}

		resp := anthropicResponse{
			Content: []anthropicContentBlock{
				{Type: "text", Text: "SQLQuery: SELECT count(*) FROM orders"},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p, err := NewAnthropicProvider("test-key", "claude-3-opus-20240229")
	if err != nil {
		t.Fatalf("NewAnthropicProvider failed: %v", err)
	}
	p.SetBaseURL(server.URL)

	got, err := p.Complete(context.Background(), "how many orders?")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "SQLQuery: SELECT count(*) FROM orders" {
		t.Errorf("unexpected completion: %q", got)
	}
}

func TestAnthropicProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"type": "rate_limit_error", "message": "slow down"}}`))
	}))
	defer server.Close()

	p, _ := NewAnthropicProvider("test-key", "")
	p.SetBaseURL(server.URL)

	if _, err := p.Complete(context.Background(), "x"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
