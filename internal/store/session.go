package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Session is the index entry for one finished recording session. The
// artifacts themselves (the frame log and the video) live on disk; the
// row records where they are and the summary numbers.
type Session struct {
	ID          string
	Name        string
	StartedAt   time.Time
	Duration    float64
	TotalFrames int
	FPS         float64
	LogPath     string
	VideoPath   string
	CreatedAt   time.Time
}

// SessionRepository provides CRUD operations for recorded sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new session into the database.
func (r *SessionRepository) Create(sess *Session) error {
	sess.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, name, started_at, duration, total_frames, fps, log_path, video_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.Name, sess.StartedAt, sess.Duration, sess.TotalFrames,
		sess.FPS, sess.LogPath, sess.VideoPath, sess.CreatedAt,
	)
	if err != nil {
		return err
	}

	return nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess := &Session{}

	err := r.db.QueryRow(
		`SELECT id, name, started_at, duration, total_frames, fps, log_path, video_path, created_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(&sess.ID, &sess.Name, &sess.StartedAt, &sess.Duration, &sess.TotalFrames,
		&sess.FPS, &sess.LogPath, &sess.VideoPath, &sess.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return sess, nil
}

// GetByName retrieves a session by its name.
func (r *SessionRepository) GetByName(name string) (*Session, error) {
	sess := &Session{}

	err := r.db.QueryRow(
		`SELECT id, name, started_at, duration, total_frames, fps, log_path, video_path, created_at
		 FROM sessions WHERE name = ?`,
		name,
	).Scan(&sess.ID, &sess.Name, &sess.StartedAt, &sess.Duration, &sess.TotalFrames,
		&sess.FPS, &sess.LogPath, &sess.VideoPath, &sess.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return sess, nil
}

// List retrieves all sessions, newest first.
func (r *SessionRepository) List() ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT id, name, started_at, duration, total_frames, fps, log_path, video_path, created_at
		 FROM sessions ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess := &Session{}

		err := rows.Scan(&sess.ID, &sess.Name, &sess.StartedAt, &sess.Duration,
			&sess.TotalFrames, &sess.FPS, &sess.LogPath, &sess.VideoPath, &sess.CreatedAt)
		if err != nil {
			return nil, err
		}

		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Delete removes a session from the index by its ID. The artifacts on
// disk are left alone.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
