// Package meta persists the per-session task metadata record: task type,
// description, timestamps, and the marker of the most recently executed
// command. The CLI itself is stateless between invocations; this store and
// the session log files are the only state that survives a call.
package meta

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/termtap/termtap/internal/model"
)

// ErrNotFound is returned when a session has no metadata record. Callers
// treat absence as task_type=oneshot; it is not an error condition for wait.
var ErrNotFound = errors.New("session metadata not found")

// Store is a sqlite-backed metadata store. One row per session.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the metadata database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS sessions (
	session_name TEXT PRIMARY KEY,
	task_type    TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	last_marker  TEXT NOT NULL DEFAULT '',
	log_path     TEXT NOT NULL DEFAULT '',
	created_at   INTEGER NOT NULL,
	updated_at   INTEGER NOT NULL
)`)
	if err != nil {
		return fmt.Errorf("migrate sessions table: %w", err)
	}
	return nil
}

// Set writes (or updates) a session's task type and description. The task
// type is validated against the closed enumeration before any write; an
// unrecognized value is rejected, never coerced.
func (s *Store) Set(ctx context.Context, session string, taskType model.TaskType, description string) error {
	if _, err := model.ParseTaskType(string(taskType)); err != nil {
		return err
	}
	now := time.Now().UTC().Unix()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO sessions(session_name, task_type, description, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(session_name) DO UPDATE SET
	task_type=excluded.task_type,
	description=CASE WHEN excluded.description != '' THEN excluded.description ELSE sessions.description END,
	updated_at=excluded.updated_at
`, session, string(taskType), description, now, now)
	if err != nil {
		return fmt.Errorf("upsert session metadata: %w", err)
	}
	return nil
}

// Get returns a session's metadata record, or ErrNotFound.
func (s *Store) Get(ctx context.Context, session string) (model.Metadata, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT session_name, task_type, description, last_marker, log_path, created_at, updated_at
FROM sessions WHERE session_name = ?`, session)

	var m model.Metadata
	var taskType string
	var createdAt, updatedAt int64
	err := row.Scan(&m.SessionName, &taskType, &m.Description, &m.LastMarker, &m.LogPath, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Metadata{}, ErrNotFound
	}
	if err != nil {
		return model.Metadata{}, fmt.Errorf("get session metadata: %w", err)
	}
	m.TaskType = model.TaskType(taskType)
	m.CreatedAt = time.Unix(createdAt, 0).UTC()
	m.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return m, nil
}

// SetLastMarker records the marker of the most recently executed command,
// creating a default oneshot record if the session has none yet. The
// marker is what makes wait resumable across invocations.
func (s *Store) SetLastMarker(ctx context.Context, session, markerID, logPath string) error {
	now := time.Now().UTC().Unix()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO sessions(session_name, task_type, last_marker, log_path, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(session_name) DO UPDATE SET
	last_marker=excluded.last_marker,
	log_path=excluded.log_path,
	updated_at=excluded.updated_at
`, session, string(model.TaskOneshot), markerID, logPath, now, now)
	if err != nil {
		return fmt.Errorf("set last marker: %w", err)
	}
	return nil
}

// Delete removes a session's metadata. Deleting a missing record is a no-op.
func (s *Store) Delete(ctx context.Context, session string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_name = ?`, session); err != nil {
		return fmt.Errorf("delete session metadata: %w", err)
	}
	return nil
}

// List returns all metadata records ordered by session name.
func (s *Store) List(ctx context.Context) ([]model.Metadata, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT session_name, task_type, description, last_marker, log_path, created_at, updated_at
FROM sessions ORDER BY session_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list session metadata: %w", err)
	}
	defer rows.Close()

	var out []model.Metadata
	for rows.Next() {
		var m model.Metadata
		var taskType string
		var createdAt, updatedAt int64
		if err := rows.Scan(&m.SessionName, &taskType, &m.Description, &m.LastMarker, &m.LogPath, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan session metadata: %w", err)
		}
		m.TaskType = model.TaskType(taskType)
		m.CreatedAt = time.Unix(createdAt, 0).UTC()
		m.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iter session metadata: %w", err)
	}
	return out, nil
}

// DefaultPath returns the default metadata database location, next to the
// session logs.
func DefaultPath(logDir string) string {
	return filepath.Join(filepath.Dir(logDir), "meta.db")
}
