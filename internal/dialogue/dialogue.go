package dialogue

import (
	"time"
)

// Role identifies the sender of a message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Metadata type tags for the side-channel data a message carries.
const (
	TypeQuery       = "query"
	TypeResponse    = "response"
	TypeSQLQuery    = "sql_query"
	TypeVizResponse = "viz_response"
	TypeError       = "error"
)

// Metadata carries typed side-channel data alongside a message: the SQL a
// turn produced, the raw result text, and the chart path if one was drawn.
type Metadata struct {
	Type      string
	SQL       string
	SQLResult string
	VizPath   string
}

// Message is one turn entry in a session. Messages are stored and returned
// by value; once appended they are never mutated.
type Message struct {
	Role      string
	Content   string
	ImagePath string
	Timestamp time.Time
	Metadata  Metadata
}

// Info summarizes the active session.
type Info struct {
	SessionID    string
	StartedAt    time.Time
	MessageCount int
	Duration     time.Duration
}
