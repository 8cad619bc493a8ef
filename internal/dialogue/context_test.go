package dialogue

import (
	"fmt"
	"testing"
)

func TestContext_StartSession(t *testing.T) {
	c := NewContext()

	id := c.StartSession()
	if id == "" {
		t.Fatal("expected non-empty session id")
	}

	c.AddMessage(RoleUser, "hello", Metadata{Type: TypeQuery})

	id2 := c.StartSession()
	if id2 == id {
		t.Error("expected a new session id")
	}
	if len(c.Messages()) != 0 {
		t.Error("expected message log reset on new session")
	}
}

func TestContext_AddMessage_AutoStartsSession(t *testing.T) {
	c := NewContext()

	c.AddMessage(RoleUser, "hello", Metadata{})

	if c.SessionID() == "" {
		t.Error("expected session to be auto-started")
	}
	if len(c.Messages()) != 1 {
		t.Fatalf("expected 1 message, got %d", len(c.Messages()))
	}
	if c.Messages()[0].Timestamp.IsZero() {
		t.Error("expected message timestamp to be set")
	}
}

func TestContext_Window(t *testing.T) {
	c := NewContext()

	// Empty log never errors.
	if got := c.Window(5); len(got) != 0 {
		t.Errorf("expected empty window, got %d messages", len(got))
	}

	for i := 0; i < 8; i++ {
		c.AddMessage(RoleUser, fmt.Sprintf("msg-%d", i), Metadata{})
	}

	win := c.Window(5)
	if len(win) != 5 {
		t.Fatalf("expected window of 5, got %d", len(win))
	}
	// Oldest-to-newest order.
	if win[0].Content != "msg-3" || win[4].Content != "msg-7" {
		t.Errorf("unexpected window order: first=%q last=%q", win[0].Content, win[4].Content)
	}

	// Fewer messages than requested returns what exists.
	if got := c.Window(100); len(got) != 8 {
		t.Errorf("expected 8 messages, got %d", len(got))
	}

	// Non-positive size falls back to the default.
	if got := c.Window(0); len(got) != DefaultWindowSize {
		t.Errorf("expected default window of %d, got %d", DefaultWindowSize, len(got))
	}
}

func TestContext_WindowIsACopy(t *testing.T) {
	c := NewContext()
	c.AddMessage(RoleUser, "original", Metadata{})

	win := c.Window(5)
	win[0].Content = "mutated"

	if c.Messages()[0].Content != "original" {
		t.Error("window mutation leaked into the session log")
	}
}

func TestContext_AddImage(t *testing.T) {
	c := NewContext()
	c.AddImage("charts/chart_1.png", Metadata{Type: TypeVizResponse, VizPath: "charts/chart_1.png"})

	msgs := c.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Role != RoleAssistant {
		t.Errorf("expected assistant role, got %q", msgs[0].Role)
	}
	if msgs[0].ImagePath != "charts/chart_1.png" {
		t.Errorf("unexpected image path %q", msgs[0].ImagePath)
	}
}

func TestContext_Clear(t *testing.T) {
	c := NewContext()
	c.AddMessage(RoleUser, "hello", Metadata{})

	c.Clear()

	if c.SessionID() != "" {
		t.Error("expected cleared session id")
	}
	if len(c.Messages()) != 0 {
		t.Error("expected cleared message log")
	}
	if info := c.Info(); info.SessionID != "" {
		t.Error("expected zero Info after clear")
	}
}

func TestContext_Info(t *testing.T) {
	c := NewContext()
	c.AddMessage(RoleUser, "hello", Metadata{})
	c.AddMessage(RoleAssistant, "hi", Metadata{Type: TypeResponse})

	info := c.Info()
	if info.SessionID != c.SessionID() {
		t.Error("Info session id mismatch")
	}
	if info.MessageCount != 2 {
		t.Errorf("expected 2 messages, got %d", info.MessageCount)
	}
	if info.StartedAt.IsZero() {
		t.Error("expected start time to be set")
	}
}
