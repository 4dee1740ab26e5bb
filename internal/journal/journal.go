// Package journal persists launcher sessions and process/download events
// to a local sqlite database. The history command reads it back; nothing
// else in the launcher depends on it being present.
package journal

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Event kinds recorded by the launcher.
const (
	KindDaemonStart   = "daemon-start"
	KindDaemonExit    = "daemon-exit"
	KindDaemonRestart = "daemon-restart"
	KindBotStart      = "bot-start"
	KindBotExit       = "bot-exit"
	KindBotRestart    = "bot-restart"

	KindDownloadStart    = "download-start"
	KindDownloadComplete = "download-complete"
	KindDownloadError    = "download-error"
	KindDownloadStop     = "download-stop"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id             TEXT PRIMARY KEY,
    started_at     INTEGER NOT NULL,
    ended_at       INTEGER,
    daemon_version TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS events (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL REFERENCES sessions(id),
    at         INTEGER NOT NULL,
    kind       TEXT NOT NULL,
    detail     TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS events_session ON events(session_id, at);
`

// Session is one launcher run.
type Session struct {
	ID            string
	StartedAt     time.Time
	EndedAt       time.Time // zero while the session is open
	DaemonVersion string
}

// Event is one recorded occurrence within a session.
type Event struct {
	At     time.Time
	Kind   string
	Detail string
}

// Journal is a handle to the sqlite store.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if necessary) the journal database at path.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}
	return &Journal{db: db, now: time.Now}, nil
}

// BeginSession inserts a new session row and returns its id.
func (j *Journal) BeginSession() (string, error) {
	id := uuid.NewString()
	_, err := j.db.Exec(
		`INSERT INTO sessions (id, started_at) VALUES (?, ?)`,
		id, j.now().Unix())
	if err != nil {
		return "", fmt.Errorf("failed to begin session: %w", err)
	}
	return id, nil
}

// EndSession stamps the session's end time.
func (j *Journal) EndSession(id string) error {
	_, err := j.db.Exec(
		`UPDATE sessions SET ended_at = ? WHERE id = ?`,
		j.now().Unix(), id)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}

// SetDaemonVersion records the daemon version the readiness probe saw.
func (j *Journal) SetDaemonVersion(id, version string) error {
	_, err := j.db.Exec(
		`UPDATE sessions SET daemon_version = ? WHERE id = ?`,
		version, id)
	if err != nil {
		return fmt.Errorf("failed to set daemon version: %w", err)
	}
	return nil
}

// Record appends one event to a session.
func (j *Journal) Record(sessionID, kind, detail string) error {
	_, err := j.db.Exec(
		`INSERT INTO events (session_id, at, kind, detail) VALUES (?, ?, ?, ?)`,
		sessionID, j.now().Unix(), kind, detail)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

// Sessions returns the most recent sessions, newest first.
func (j *Journal) Sessions(limit int) ([]Session, error) {
	if limit <= 0 {
		limit = -1 // no limit
	}
	rows, err := j.db.Query(`
        SELECT id, started_at, COALESCE(ended_at, 0), daemon_version
        FROM sessions
        ORDER BY started_at DESC, id DESC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var (
			s                Session
			startedAt, ended int64
		)
		if err := rows.Scan(&s.ID, &startedAt, &ended, &s.DaemonVersion); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		s.StartedAt = time.Unix(startedAt, 0)
		if ended != 0 {
			s.EndedAt = time.Unix(ended, 0)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session rows: %w", err)
	}
	return sessions, nil
}

// Events returns a session's events, oldest first.
func (j *Journal) Events(sessionID string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.Query(`
        SELECT at, kind, detail
        FROM events
        WHERE session_id = ?
        ORDER BY at ASC, id ASC
        LIMIT ?
    `, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e  Event
			at int64
		)
		if err := rows.Scan(&at, &e.Kind, &e.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		e.At = time.Unix(at, 0)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate event rows: %w", err)
	}
	return events, nil
}

// Close releases the database handle.
func (j *Journal) Close() error {
	return j.db.Close()
}
