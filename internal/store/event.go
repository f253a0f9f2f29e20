package store

import (
	"database/sql"
	"strings"
	"time"
)

// GestureEvent records one hand frame that produced at least one signal,
// along with the shape and color it left the cloud in.
type GestureEvent struct {
	ID        int64
	SessionID string
	Signals   []string
	Shape     string
	Color     string
	CreatedAt time.Time
}

// EventRepository provides operations on gesture events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the gesture event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Record inserts e and fills in its ID and CreatedAt. An empty SessionID is
// stored as NULL.
func (r *EventRepository) Record(e *GestureEvent) error {
	e.CreatedAt = time.Now()

	var session sql.NullString
	if e.SessionID != "" {
		session = sql.NullString{String: e.SessionID, Valid: true}
	}

	result, err := r.db.Exec(
		`INSERT INTO gesture_events (session_id, signals, shape, color, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		session, strings.Join(e.Signals, ","), e.Shape, e.Color, e.CreatedAt,
	)
	if err != nil {
		return err
	}

	e.ID, err = result.LastInsertId()
	return err
}

// List returns up to limit events, newest first. A limit <= 0 returns all.
func (r *EventRepository) List(limit int) ([]*GestureEvent, error) {
	if limit <= 0 {
		limit = -1
	}
	return r.query(
		`SELECT id, session_id, signals, shape, color, created_at
		 FROM gesture_events ORDER BY id DESC LIMIT ?`,
		limit,
	)
}

// ListBySession returns the events of one session in the order they happened.
func (r *EventRepository) ListBySession(sessionID string) ([]*GestureEvent, error) {
	return r.query(
		`SELECT id, session_id, signals, shape, color, created_at
		 FROM gesture_events WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
}

// Count returns the number of events recorded in a session.
func (r *EventRepository) Count(sessionID string) (int, error) {
	var n int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM gesture_events WHERE session_id = ?`,
		sessionID,
	).Scan(&n)
	return n, err
}

func (r *EventRepository) query(q string, args ...any) ([]*GestureEvent, error) {
	rows, err := r.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*GestureEvent
	for rows.Next() {
		e := &GestureEvent{}
		var session sql.NullString
		var signals string

		if err := rows.Scan(&e.ID, &session, &signals, &e.Shape, &e.Color, &e.CreatedAt); err != nil {
			return nil, err
		}

		e.SessionID = session.String
		if signals != "" {
			e.Signals = strings.Split(signals, ",")
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
