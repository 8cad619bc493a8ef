package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Session is one persisted conversation.
type Session struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time
	Status    string
}

// TurnRecord is one persisted message of a finished turn, with the
// side-channel data the pipeline attached to it.
type TurnRecord struct {
	ID        string
	SessionID string
	Role      string
	Content   string
	MsgType   string
	SQL       string
	Result    string
	VizPath   string
	CreatedAt time.Time
}

// Artifact records a chart image produced during a session.
type Artifact struct {
	ID        string
	SessionID string
	Path      string
	Kind      string
	CreatedAt time.Time
}

// Store persists finished turns and chart artifacts. The in-memory dialogue
// context remains the pipeline's only source of conversational state; this
// is the audit trail.
type Store interface {
	CreateSession(id string) error
	TouchSession(id, status string) error
	AppendTurn(rec *TurnRecord) error
	RecordArtifact(sessionID, path, kind string) error
	ListSessions() ([]*Session, error)
	SessionTurns(sessionID string) ([]*TurnRecord, error)
	Close() error
}

// SQLiteStore is the Store over a local sqlite file.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			created_at DATETIME,
			updated_at DATETIME,
			status TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS turns (
			id TEXT PRIMARY KEY,
			session_id TEXT,
			role TEXT,
			content TEXT,
			msg_type TEXT,
			sql_text TEXT,
			result TEXT,
			viz_path TEXT,
			created_at DATETIME,
			FOREIGN KEY(session_id) REFERENCES sessions(id)
		);`,
		`CREATE TABLE IF NOT EXISTS artifacts (
			id TEXT PRIMARY KEY,
			session_id TEXT,
			path TEXT,
			kind TEXT,
			created_at DATETIME,
			FOREIGN KEY(session_id) REFERENCES sessions(id)
		);`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to init schema: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateSession(id string) error {
	now := time.Now()
	query := `INSERT OR IGNORE INTO sessions (id, created_at, updated_at, status) VALUES (?, ?, ?, ?)`
	_, err := s.db.Exec(query, id, now, now, "active")
	return err
}

func (s *SQLiteStore) TouchSession(id, status string) error {
	query := `UPDATE sessions SET updated_at = ?, status = ? WHERE id = ?`
	_, err := s.db.Exec(query, time.Now(), status, id)
	return err
}

func (s *SQLiteStore) AppendTurn(rec *TurnRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	query := `INSERT INTO turns (id, session_id, role, content, msg_type, sql_text, result, viz_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.Exec(query,
		rec.ID, rec.SessionID, rec.Role, rec.Content, rec.MsgType,
		rec.SQL, rec.Result, rec.VizPath, rec.CreatedAt)
	return err
}

func (s *SQLiteStore) RecordArtifact(sessionID, path, kind string) error {
	query := `INSERT INTO artifacts (id, session_id, path, kind, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.Exec(query, uuid.NewString(), sessionID, path, kind, time.Now())
	return err
}

func (s *SQLiteStore) ListSessions() ([]*Session, error) {
	rows, err := s.db.Query(`SELECT id, created_at, updated_at, status FROM sessions ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.CreatedAt, &sess.UpdatedAt, &sess.Status); err != nil {
			return nil, err
		}
		sessions = append(sessions, &sess)
	}
	return sessions, rows.Err()
}

func (s *SQLiteStore) SessionTurns(sessionID string) ([]*TurnRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, role, content, msg_type, sql_text, result, viz_path, created_at
		 FROM turns WHERE session_id = ? ORDER BY created_at`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []*TurnRecord
	for rows.Next() {
		var rec TurnRecord
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Role, &rec.Content, &rec.MsgType,
			&rec.SQL, &rec.Result, &rec.VizPath, &rec.CreatedAt); err != nil {
			return nil, err
		}
		turns = append(turns, &rec)
	}
	return turns, rows.Err()
}
