// Package server provides the HTTP surface of the Mirada avatar
// service: state and command endpoints, the session index API, the
// WebSocket state feed and the MJPEG view streams.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aaguirre/mirada/internal/app"
	"github.com/aaguirre/mirada/internal/server/api"
	"github.com/aaguirre/mirada/internal/store"
)

// Controller is the slice of the pipeline the server talks to.
type Controller interface {
	// State returns the most recent pipeline snapshot.
	State() app.Snapshot
	// HandleCommand queues a control command for the pipeline.
	HandleCommand(cmd app.Command) error
}

// Config holds the server configuration. Nil fields disable their
// routes.
type Config struct {
	App    Controller
	Store  *store.Store
	Avatar *Streamer
	Scan   *Streamer
	Hub    *Hub
}

// Server represents the HTTP server for the Mirada application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.App != nil {
		s.mux.HandleFunc("/api/state", s.handleState)
		s.mux.HandleFunc("/api/command", s.handleCommand)
	}

	// Register the session API if Store is configured
	if s.config.Store != nil {
		sessionsHandler := api.NewSessionsHandler(s.config.Store)
		s.mux.Handle("/api/sessions", sessionsHandler)
		s.mux.Handle("/api/sessions/", sessionsHandler)
	}

	if s.config.Avatar != nil {
		s.mux.Handle("/stream/avatar", s.config.Avatar)
	}
	if s.config.Scan != nil {
		s.mux.Handle("/stream/scan", s.config.Scan)
	}

	if s.config.Hub != nil {
		s.mux.Handle("/ws", s.config.Hub)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// handleState handles GET requests to /api/state with the current
// pipeline snapshot.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.config.App.State()); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// commandRequest is the POST /api/command body.
type commandRequest struct {
	Command string `json:"command"`
}

// handleCommand queues a pipeline command. The command takes effect at
// the next frame boundary, so the returned snapshot may still predate
// it.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	cmd, err := app.ParseCommand(req.Command)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.config.App.HandleCommand(cmd); err != nil {
		if errors.Is(err, app.ErrCommandQueueFull) {
			writeJSONError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.config.App.State())
}

// writeJSONError writes an error response in the API's JSON shape.
func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
