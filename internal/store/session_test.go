package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "mirada-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() {
		os.RemoveAll(tmpDir)
	})

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestSessionRepository_Create(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	session := &Session{
		ID:          "test-session-1",
		Name:        "animation_20260825_103000",
		StartedAt:   time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC),
		Duration:    42.5,
		TotalFrames: 1275,
		FPS:         30.0,
		LogPath:     "animations/json/animation_20260825_103000.json",
		VideoPath:   "animations/video/animation_20260825_103000.mp4",
	}

	// Create the session
	err := repo.Create(session)
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	// Verify CreatedAt is set
	if session.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set after create")
	}

	// Retrieve the session by ID
	retrieved, err := repo.GetByID("test-session-1")
	if err != nil {
		t.Fatalf("failed to get session by ID: %v", err)
	}

	// Verify all fields match
	if retrieved.ID != session.ID {
		t.Errorf("ID mismatch: got %q, want %q", retrieved.ID, session.ID)
	}
	if retrieved.Name != session.Name {
		t.Errorf("Name mismatch: got %q, want %q", retrieved.Name, session.Name)
	}
	if retrieved.StartedAt.Unix() != session.StartedAt.Unix() {
		t.Errorf("StartedAt mismatch: got %v, want %v", retrieved.StartedAt, session.StartedAt)
	}
	if retrieved.Duration != session.Duration {
		t.Errorf("Duration mismatch: got %f, want %f", retrieved.Duration, session.Duration)
	}
	if retrieved.TotalFrames != session.TotalFrames {
		t.Errorf("TotalFrames mismatch: got %d, want %d", retrieved.TotalFrames, session.TotalFrames)
	}
	if retrieved.FPS != session.FPS {
		t.Errorf("FPS mismatch: got %f, want %f", retrieved.FPS, session.FPS)
	}
	if retrieved.LogPath != session.LogPath {
		t.Errorf("LogPath mismatch: got %q, want %q", retrieved.LogPath, session.LogPath)
	}
	if retrieved.VideoPath != session.VideoPath {
		t.Errorf("VideoPath mismatch: got %q, want %q", retrieved.VideoPath, session.VideoPath)
	}

	// Retrieve the session by name
	retrievedByName, err := repo.GetByName("animation_20260825_103000")
	if err != nil {
		t.Fatalf("failed to get session by name: %v", err)
	}
	if retrievedByName.ID != session.ID {
		t.Errorf("GetByName returned wrong session: got ID %q, want %q", retrievedByName.ID, session.ID)
	}
}

func TestSessionRepository_Create_DuplicateName(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	session1 := &Session{
		ID:        "test-session-1",
		Name:      "animation_20260825_103000",
		StartedAt: time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC),
	}

	session2 := &Session{
		ID:        "test-session-2",
		Name:      "animation_20260825_103000", // Same name
		StartedAt: time.Date(2026, 8, 25, 10, 31, 0, 0, time.UTC),
	}

	// Create the first session
	if err := repo.Create(session1); err != nil {
		t.Fatalf("failed to create first session: %v", err)
	}

	// Creating second session with same name should fail
	err := repo.Create(session2)
	if err == nil {
		t.Error("creating session with duplicate name should fail")
	}
}

func TestSessionRepository_List_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	// Insert out of chronological order
	sessions := []*Session{
		{ID: "session-2", Name: "animation_20260825_101000", StartedAt: base.Add(10 * time.Minute)},
		{ID: "session-1", Name: "animation_20260825_100000", StartedAt: base},
		{ID: "session-3", Name: "animation_20260825_102000", StartedAt: base.Add(20 * time.Minute)},
	}

	for _, sess := range sessions {
		if err := repo.Create(sess); err != nil {
			t.Fatalf("failed to create session %q: %v", sess.Name, err)
		}
	}

	// List must come back newest first
	list, err := repo.List()
	if err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}

	if len(list) != len(sessions) {
		t.Fatalf("expected %d sessions, got %d", len(sessions), len(list))
	}

	wantOrder := []string{"session-3", "session-2", "session-1"}
	for i, want := range wantOrder {
		if list[i].ID != want {
			t.Errorf("list[%d]: got ID %q, want %q", i, list[i].ID, want)
		}
	}
}

func TestSessionRepository_List_Empty(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	list, err := repo.List()
	if err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty list, got %d sessions", len(list))
	}
}

func TestSessionRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	session := &Session{
		ID:        "test-session-1",
		Name:      "animation_20260825_103000",
		StartedAt: time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC),
	}

	// Create the session
	if err := repo.Create(session); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	// Verify it exists
	_, err := repo.GetByID("test-session-1")
	if err != nil {
		t.Fatalf("session should exist after create: %v", err)
	}

	// Delete the session
	err = repo.Delete("test-session-1")
	if err != nil {
		t.Fatalf("failed to delete session: %v", err)
	}

	// Verify it's gone
	_, err = repo.GetByID("test-session-1")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got: %v", err)
	}
}

func TestSessionRepository_Delete_NotFound(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	// Delete a non-existent session should return ErrNotFound
	err := repo.Delete("non-existent-id")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound for non-existent session, got: %v", err)
	}
}

func TestSessionRepository_GetByID_NotFound(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	_, err := repo.GetByID("non-existent-id")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestSessionRepository_GetByName_NotFound(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	_, err := repo.GetByName("non-existent-name")
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}
