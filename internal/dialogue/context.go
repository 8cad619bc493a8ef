package dialogue

import (
	"time"

	"github.com/google/uuid"
)

// DefaultWindowSize is the number of recent messages fed back into prompts.
const DefaultWindowSize = 5

// Context is the per-session message log. It is append-only: messages are
// never edited after being added. One goroutine owns a Context at a time;
// callers running concurrent turns against the same session must serialize
// them.
type Context struct {
	sessionID string
	startedAt time.Time
	messages  []Message
}

func NewContext() *Context {
	return &Context{}
}

// StartSession discards any existing log and begins a fresh session,
// returning its id.
func (c *Context) StartSession() string {
	c.sessionID = uuid.NewString()
	c.startedAt = time.Now()
	c.messages = nil
	return c.sessionID
}

// SessionID returns the active session id, or "" if none has started.
func (c *Context) SessionID() string {
	return c.sessionID
}

// AddMessage appends a message to the session, starting one if none is
// active.
func (c *Context) AddMessage(role, content string, meta Metadata) {
	if c.sessionID == "" {
		c.StartSession()
	}
	c.messages = append(c.messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Metadata:  meta,
	})
}

// AddImage appends an assistant message that carries an image attachment
// instead of text.
func (c *Context) AddImage(path string, meta Metadata) {
	if c.sessionID == "" {
		c.StartSession()
	}
	c.messages = append(c.messages, Message{
		Role:      RoleAssistant,
		ImagePath: path,
		Timestamp: time.Now(),
		Metadata:  meta,
	})
}

// Window returns a copy of the last size messages, oldest first. An empty
// log yields an empty slice, never an error.
func (c *Context) Window(size int) []Message {
	if size <= 0 {
		size = DefaultWindowSize
	}
	start := len(c.messages) - size
	if start < 0 {
		start = 0
	}
	out := make([]Message, len(c.messages)-start)
	copy(out, c.messages[start:])
	return out
}

// Messages returns a copy of the full session log.
func (c *Context) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Clear discards the session entirely.
func (c *Context) Clear() {
	c.sessionID = ""
	c.startedAt = time.Time{}
	c.messages = nil
}

// Info reports the active session's id, start time, message count, and age.
// A zero Info is returned when no session is active.
func (c *Context) Info() Info {
	if c.sessionID == "" {
		return Info{}
	}
	return Info{
		SessionID:    c.sessionID,
		StartedAt:    c.startedAt,
		MessageCount: len(c.messages),
		Duration:     time.Since(c.startedAt),
	}
}
