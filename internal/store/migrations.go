package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per run of the tracking pipeline
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			started_at DATETIME NOT NULL,
			ended_at DATETIME
		)`,

		// Gesture events table - every hand frame that produced a signal
		`CREATE TABLE IF NOT EXISTS gesture_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT REFERENCES sessions(id) ON DELETE CASCADE,
			signals TEXT NOT NULL,
			shape TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_gesture_events_session_id ON gesture_events(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_gesture_events_created_at ON gesture_events(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
