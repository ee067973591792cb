// Package history persists a cross-session record of completed actions
// in a local sqlite database, one row per action.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Entry records one completed action.
type Entry struct {
	ID        string
	SessionID string
	Action    string
	Detail    string
	Success   bool
	Duration  time.Duration
	Errors    int
	Warnings  int
	StartedAt time.Time
}

// Store is the sqlite-backed action history.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS actions (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		action TEXT NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		success INTEGER NOT NULL,
		duration_sec REAL NOT NULL,
		errors INTEGER NOT NULL DEFAULT 0,
		warnings INTEGER NOT NULL DEFAULT 0,
		started_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_actions_started ON actions(started_at DESC);
	CREATE INDEX IF NOT EXISTS idx_actions_session ON actions(session_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts a completed action.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO actions (id, session_id, action, detail, success, duration_sec, errors, warnings, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.SessionID, e.Action, e.Detail, e.Success, e.Duration.Seconds(),
		e.Errors, e.Warnings, e.StartedAt.UTC())
	if err != nil {
		return fmt.Errorf("record action: %w", err)
	}
	return nil
}

// Recent returns the most recent actions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, action, detail, success, duration_sec, errors, warnings, started_at
		FROM actions ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			seconds float64
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Action, &e.Detail, &e.Success,
			&seconds, &e.Errors, &e.Warnings, &e.StartedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.Duration = time.Duration(seconds * float64(time.Second))
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountBySession returns the number of recorded actions for a session.
func (s *Store) CountBySession(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM actions WHERE session_id = ?`, sessionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count session actions: %w", err)
	}
	return n, nil
}
