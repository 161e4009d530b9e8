package server

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func TestStreamer_PublishIgnoresEmptyFrames(t *testing.T) {
	st := NewStreamer()

	st.Publish(nil)
	st.Publish([]byte{})

	if _, seq := st.snapshot(); seq != 0 {
		t.Errorf("expected seq 0 after empty publishes, got %d", seq)
	}

	st.Publish([]byte{0xff, 0xd8})
	if frame, seq := st.snapshot(); seq != 1 || len(frame) != 2 {
		t.Errorf("expected seq 1 with 2-byte frame, got seq %d len %d", seq, len(frame))
	}
}

func TestStreamer_MethodNotAllowed(t *testing.T) {
	st := NewStreamer()

	req := httptest.NewRequest(http.MethodPost, "/stream/avatar", nil)
	rec := httptest.NewRecorder()

	st.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
	}
}

func TestStreamer_StreamsPublishedFrames(t *testing.T) {
	st := NewStreamer()
	st.Publish([]byte("frame-one"))

	ts := httptest.NewServer(st)
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET stream error = %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "multipart/x-mixed-replace; boundary=frame" {
		t.Errorf("Content-Type = %q", got)
	}

	mr := multipart.NewReader(resp.Body, "frame")

	readPart := func() string {
		part, err := mr.NextPart()
		if err != nil {
			t.Fatalf("NextPart error = %v", err)
		}
		if ct := part.Header.Get("Content-Type"); ct != "image/jpeg" {
			t.Errorf("part Content-Type = %q, want image/jpeg", ct)
		}
		n, err := strconv.Atoi(part.Header.Get("Content-Length"))
		if err != nil {
			t.Fatalf("bad Content-Length: %v", err)
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(part, buf); err != nil {
			t.Fatalf("reading part body: %v", err)
		}
		return string(buf)
	}

	if got := readPart(); got != "frame-one" {
		t.Errorf("first part = %q, want frame-one", got)
	}

	// A new part only appears once a new frame is published.
	st.Publish([]byte("frame-two"))
	if got := readPart(); got != "frame-two" {
		t.Errorf("second part = %q, want frame-two", got)
	}
}
