// Package store provides SQLite storage for handcloud sessions, gesture
// events and settings.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Store represents a SQLite database connection.
type Store struct {
	db   *sql.DB
	path string
}

// New creates a new Store with the given database path.
// It opens the database connection, enables foreign keys, and runs migrations.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// PRAGMAs are per connection; a single connection keeps them in force
	// and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Prune deletes ended sessions that started before cutoff, together with
// their events, and unattached events created before cutoff. It returns the
// number of events removed.
func (s *Store) Prune(cutoff time.Time) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}
	defer tx.Rollback()

	var removed int64
	err = tx.QueryRow(`
		SELECT COUNT(*) FROM gesture_events
		WHERE (session_id IS NULL AND created_at < ?)
		   OR session_id IN (SELECT id FROM sessions WHERE ended_at IS NOT NULL AND started_at < ?)`,
		cutoff, cutoff,
	).Scan(&removed)
	if err != nil {
		return 0, fmt.Errorf("prune count: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM gesture_events WHERE session_id IS NULL AND created_at < ?`, cutoff); err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM sessions WHERE ended_at IS NOT NULL AND started_at < ?`, cutoff); err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("prune commit: %w", err)
	}
	return removed, nil
}
