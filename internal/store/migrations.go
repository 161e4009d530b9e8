package store

import "fmt"

// migrations is the ordered schema history. The slice is append-only;
// each entry's position (1-based) is its version, recorded in
// schema_migrations once applied.
var migrations = []string{
	// Sessions table - one row per finished recording session
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		started_at DATETIME NOT NULL,
		duration REAL NOT NULL DEFAULT 0,
		total_frames INTEGER NOT NULL DEFAULT 0,
		fps REAL NOT NULL DEFAULT 0,
		log_path TEXT NOT NULL DEFAULT '',
		video_path TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,

	// Index for the newest-first listing
	`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
}

// runMigrations applies any migrations newer than the recorded schema
// version.
func (s *Store) runMigrations() error {
	if _, err := s.db.Exec(
		`CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err := s.db.QueryRow(
		`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`,
	).Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for i := current; i < len(migrations); i++ {
		version := i + 1
		if _, err := s.db.Exec(migrations[i]); err != nil {
			return fmt.Errorf("apply migration %d: %w", version, err)
		}
		if _, err := s.db.Exec(
			`INSERT INTO schema_migrations (version) VALUES (?)`, version,
		); err != nil {
			return fmt.Errorf("record migration %d: %w", version, err)
		}
	}

	return nil
}
