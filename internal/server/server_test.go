package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aaguirre/mirada/internal/app"
	"github.com/aaguirre/mirada/internal/store"
)

// fakeController implements Controller without a capture pipeline.
type fakeController struct {
	mu       sync.Mutex
	snapshot app.Snapshot
	commands []app.Command
	err      error
}

func (f *fakeController) State() app.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot
}

func (f *fakeController) HandleCommand(cmd app.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.commands = append(f.commands, cmd)
	return nil
}

func (f *fakeController) received() []app.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]app.Command(nil), f.commands...)
}

func TestServer_Health(t *testing.T) {
	s := New(Config{})

	t.Run("returns 200 with JSON response", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		contentType := rec.Header().Get("Content-Type")
		if contentType != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", contentType)
		}

		var response map[string]interface{}
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if response["status"] != "ok" {
			t.Errorf("expected status 'ok', got %v", response["status"])
		}

		if _, exists := response["uptime"]; !exists {
			t.Error("expected 'uptime' field in response")
		}
	})

	t.Run("only allows GET method", func(t *testing.T) {
		methods := []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch}

		for _, method := range methods {
			req := httptest.NewRequest(method, "/api/health", nil)
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, req)

			if rec.Code != http.StatusMethodNotAllowed {
				t.Errorf("method %s: expected status %d, got %d", method, http.StatusMethodNotAllowed, rec.Code)
			}
		}
	})
}

func TestServer_NotFound(t *testing.T) {
	s := New(Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/nonexistent", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestServer_State(t *testing.T) {
	ctrl := &fakeController{snapshot: app.Snapshot{
		Detected:   true,
		Mode:       "RECTANGLES",
		EyeState:   "NORMAL",
		Direction:  "CENTER",
		LeftBlinks: 3,
	}}
	s := New(Config{App: ctrl})

	t.Run("returns the current snapshot", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}

		var snap app.Snapshot
		if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}

		if !snap.Detected {
			t.Error("expected detected=true")
		}
		if snap.Mode != "RECTANGLES" {
			t.Errorf("expected mode RECTANGLES, got %s", snap.Mode)
		}
		if snap.LeftBlinks != 3 {
			t.Errorf("expected 3 left blinks, got %d", snap.LeftBlinks)
		}
	})

	t.Run("only allows GET method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/state", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
		}
	})

	t.Run("not registered without a controller", func(t *testing.T) {
		bare := New(Config{})
		req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
		rec := httptest.NewRecorder()

		bare.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}

func TestServer_Command(t *testing.T) {
	t.Run("queues a valid command and responds with the snapshot", func(t *testing.T) {
		ctrl := &fakeController{snapshot: app.Snapshot{Mode: "SCAN"}}
		s := New(Config{App: ctrl})

		body := strings.NewReader(`{"command": "CYCLE_MODE"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/command", body)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
		}

		got := ctrl.received()
		if len(got) != 1 || got[0] != app.CommandCycleMode {
			t.Errorf("expected [CYCLE_MODE], got %v", got)
		}

		var snap app.Snapshot
		if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if snap.Mode != "SCAN" {
			t.Errorf("expected mode SCAN in response, got %s", snap.Mode)
		}
	})

	t.Run("normalizes command case", func(t *testing.T) {
		ctrl := &fakeController{}
		s := New(Config{App: ctrl})

		body := strings.NewReader(`{"command": "start_recording"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/command", body)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
		got := ctrl.received()
		if len(got) != 1 || got[0] != app.CommandStartRecording {
			t.Errorf("expected [START_RECORDING], got %v", got)
		}
	})

	t.Run("rejects unknown commands with 400", func(t *testing.T) {
		ctrl := &fakeController{}
		s := New(Config{App: ctrl})

		body := strings.NewReader(`{"command": "DO_A_FLIP"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/command", body)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}

		var response map[string]string
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode error response: %v", err)
		}
		if response["error"] == "" {
			t.Error("expected an error message")
		}

		if len(ctrl.received()) != 0 {
			t.Error("unknown command should not reach the controller")
		}
	})

	t.Run("rejects malformed JSON with 400", func(t *testing.T) {
		ctrl := &fakeController{}
		s := New(Config{App: ctrl})

		body := strings.NewReader(`{"command": `)
		req := httptest.NewRequest(http.MethodPost, "/api/command", body)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
		}
	})

	t.Run("returns 503 when the command queue is full", func(t *testing.T) {
		ctrl := &fakeController{err: app.ErrCommandQueueFull}
		s := New(Config{App: ctrl})

		body := strings.NewReader(`{"command": "RESET_COUNTERS"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/command", body)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
		}
	})

	t.Run("only allows POST method", func(t *testing.T) {
		s := New(Config{App: &fakeController{}})

		req := httptest.NewRequest(http.MethodGet, "/api/command", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
		}
	})
}

func TestServer_SessionsRoute(t *testing.T) {
	t.Run("registered when a store is configured", func(t *testing.T) {
		st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}
		t.Cleanup(func() { st.Close() })

		s := New(Config{Store: st})

		req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
		}
	})

	t.Run("not registered without a store", func(t *testing.T) {
		s := New(Config{})

		req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
		rec := httptest.NewRecorder()

		s.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})
}

func TestNew(t *testing.T) {
	t.Run("creates server with config", func(t *testing.T) {
		ctrl := &fakeController{}
		s := New(Config{App: ctrl})

		if s == nil {
			t.Fatal("expected non-nil server")
		}

		if s.config.App != Controller(ctrl) {
			t.Error("expected config to retain the controller")
		}
	})

	t.Run("server implements http.Handler", func(t *testing.T) {
		s := New(Config{})
		var _ http.Handler = s
	})
}
