package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"
)

// streamInterval paces MJPEG writes at roughly the pipeline's active
// frame rate.
const streamInterval = 33 * time.Millisecond

// Streamer serves the most recently published JPEG frame as an MJPEG
// stream. The pipeline publishes frames; each connected client sees a
// frame at most once.
type Streamer struct {
	mu    sync.RWMutex
	frame []byte
	seq   uint64
}

// NewStreamer creates a Streamer with no frame published yet.
func NewStreamer() *Streamer {
	return &Streamer{}
}

// Publish replaces the current frame. The Streamer retains jpeg, so
// callers must not modify it afterwards. Empty frames are ignored.
func (st *Streamer) Publish(jpeg []byte) {
	if len(jpeg) == 0 {
		return
	}
	st.mu.Lock()
	st.frame = jpeg
	st.seq++
	st.mu.Unlock()
}

// snapshot returns the current frame and its sequence number.
func (st *Streamer) snapshot() ([]byte, uint64) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.frame, st.seq
}

// ServeHTTP streams frames as multipart/x-mixed-replace until the
// client disconnects.
func (st *Streamer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	var lastSeq uint64
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}

		frame, seq := st.snapshot()
		if seq == lastSeq || len(frame) == 0 {
			continue
		}
		lastSeq = seq

		// Write MJPEG frame
		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(frame))
		if _, err := w.Write(frame); err != nil {
			return
		}
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}
}
