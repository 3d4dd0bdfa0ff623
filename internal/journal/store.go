package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"lorestream/internal/dataset"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; the journal is diagnostics only, so users can simply delete it.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was written by a different
// journal version.
var ErrSchemaMismatch = errors.New("journal schema version mismatch")

// Session statuses.
const (
	StatusRunning     = "running"
	StatusDone        = "done"
	StatusFailed      = "failed"
	StatusInterrupted = "interrupted"
)

// Session is one recorded stream run.
type Session struct {
	ID          string
	Status      string
	Destination string
	StartIndex  int
	EndIndex    sql.NullInt64
	Frames      int64
	Slides      int
	StartedAt   time.Time
	EndedAt     sql.NullTime
}

// Store manages the session journal backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the journal database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// StartSession records the beginning of a run.
func (s *Store) StartSession(ctx context.Context, id, destination string, startIndex int) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, status, destination, start_index, started_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id, StatusRunning, destination, startIndex, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	return nil
}

// FinishSession closes out a run with its final status and progress.
func (s *Store) FinishSession(ctx context.Context, id, status string, endIndex int, frames int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET status = ?, end_index = ?, frames = ?, ended_at = ? WHERE id = ?`,
		status, endIndex, frames, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	return nil
}

// RecordSlide journals one played slide.
func (s *Store) RecordSlide(ctx context.Context, sessionID string, index int, record dataset.Record, duration time.Duration) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO slides
		   (session_id, slide_index, year, label, era, special, duration_ms, played_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, index, record.Year, record.Label, record.Era,
		boolToInt(record.IsSpecial), duration.Milliseconds(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record slide: %w", err)
	}
	return nil
}

// RecordMusicMiss journals an era label with no matching track, once per
// session.
func (s *Store) RecordMusicMiss(ctx context.Context, sessionID, eraLabel string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO music_misses (session_id, era_label, recorded_at)
		 VALUES (?, ?, ?)`,
		sessionID, eraLabel, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record music miss: %w", err)
	}
	return nil
}

// RecentSessions returns the latest sessions, newest first, with per-session
// slide counts.
func (s *Store) RecentSessions(ctx context.Context, limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.status, s.destination, s.start_index, s.end_index,
		        s.frames, s.started_at, s.ended_at,
		        (SELECT COUNT(1) FROM slides WHERE session_id = s.id)
		   FROM sessions s
		  ORDER BY s.started_at DESC
		  LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Status, &sess.Destination, &sess.StartIndex,
			&sess.EndIndex, &sess.Frames, &sess.StartedAt, &sess.EndedAt, &sess.Slides); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// MusicMisses returns the distinct era labels missed by a session.
func (s *Store) MusicMisses(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT era_label FROM music_misses WHERE session_id = ? ORDER BY era_label`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list music misses: %w", err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("scan music miss: %w", err)
		}
		labels = append(labels, label)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate music misses: %w", err)
	}
	return labels, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
