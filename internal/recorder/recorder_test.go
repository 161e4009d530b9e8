package recorder

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gocv.io/x/gocv"
)

var sessionStart = time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC)

func testRecorder(t *testing.T) *Recorder {
	t.Helper()
	dir := t.TempDir()
	return New(filepath.Join(dir, "json"), filepath.Join(dir, "video"))
}

func testFrame(t *testing.T) gocv.Mat {
	t.Helper()
	frame := gocv.NewMatWithSize(400, 800, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { frame.Close() })
	return frame
}

func TestRecorderLifecycle(t *testing.T) {
	rec := testRecorder(t)

	if _, err := rec.Stop(sessionStart); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Stop() while idle = %v, want ErrNotRecording", err)
	}

	if err := rec.Start(sessionStart); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	if !rec.Recording() {
		t.Error("Recording() = false after Start")
	}
	if want := "animation_20260825_103000"; rec.Name() != want {
		t.Errorf("Name() = %q, want %q", rec.Name(), want)
	}

	if err := rec.Start(sessionStart.Add(time.Second)); !errors.Is(err, ErrAlreadyRecording) {
		t.Errorf("second Start() = %v, want ErrAlreadyRecording", err)
	}
}

func TestRecorderElapsed(t *testing.T) {
	rec := testRecorder(t)

	if got := rec.Elapsed(sessionStart); got != 0 {
		t.Errorf("Elapsed() while idle = %v, want 0", got)
	}

	rec.Start(sessionStart)
	if got := rec.Elapsed(sessionStart.Add(5 * time.Second)); got != 5*time.Second {
		t.Errorf("Elapsed() = %v, want 5s", got)
	}
}

func TestRecorderCaptureWhileIdle(t *testing.T) {
	rec := testRecorder(t)

	summary, err := rec.Capture(LogEntry{}, gocv.Mat{}, sessionStart)
	if summary != nil || err != nil {
		t.Errorf("Capture() while idle = %v, %v, want nil, nil", summary, err)
	}
	if len(rec.entries) != 0 {
		t.Errorf("entries = %d, want 0", len(rec.entries))
	}
}

func TestRecorderCapturePacing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	rec := testRecorder(t)
	defer rec.Close()
	frame := testFrame(t)

	rec.Start(sessionStart)

	// Inside the capture interval: skipped.
	rec.Capture(LogEntry{}, frame, sessionStart.Add(10*time.Millisecond))
	if len(rec.entries) != 0 {
		t.Fatalf("entries after early capture = %d, want 0", len(rec.entries))
	}

	rec.Capture(LogEntry{}, frame, sessionStart.Add(34*time.Millisecond))
	if len(rec.entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(rec.entries))
	}

	// The gate is relative to the last accepted frame.
	rec.Capture(LogEntry{}, frame, sessionStart.Add(40*time.Millisecond))
	if len(rec.entries) != 1 {
		t.Errorf("entries after gated capture = %d, want 1", len(rec.entries))
	}

	rec.Capture(LogEntry{}, frame, sessionStart.Add(68*time.Millisecond))
	if len(rec.entries) != 2 {
		t.Errorf("entries = %d, want 2", len(rec.entries))
	}
	if len(rec.frames) != 2 {
		t.Errorf("buffered frames = %d, want 2", len(rec.frames))
	}
}

func TestRecorderCaptureRounding(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	rec := testRecorder(t)
	defer rec.Close()
	frame := testFrame(t)

	rec.Start(sessionStart)

	phase := 0.789
	entry := LogEntry{
		Mode:      "AM",
		LeftEAR:   0.123456,
		RightEAR:  0.298765,
		GazeX:     0.50049,
		GazeY:     0.49951,
		LeftBrow:  0.12345,
		RightBrow: 0.678,
		Direction: "CENTER",
		AMPhase:   &phase,
	}
	rec.Capture(entry, frame, sessionStart.Add(34*time.Millisecond))

	got := rec.entries[0]
	if got.Timestamp != 0.034 {
		t.Errorf("Timestamp = %v, want 0.034", got.Timestamp)
	}
	if got.LeftEAR != 0.123 || got.RightEAR != 0.299 {
		t.Errorf("EARs = %v, %v, want 0.123, 0.299", got.LeftEAR, got.RightEAR)
	}
	if got.GazeX != 0.5 || got.GazeY != 0.5 {
		t.Errorf("gaze = %v, %v, want 0.5, 0.5", got.GazeX, got.GazeY)
	}
	if got.LeftBrow != 0.12 || got.RightBrow != 0.68 {
		t.Errorf("brows = %v, %v, want 0.12, 0.68", got.LeftBrow, got.RightBrow)
	}
	if got.AMPhase == nil || *got.AMPhase != 0.79 {
		t.Errorf("AMPhase = %v, want 0.79", got.AMPhase)
	}
}

func TestLogEntryPhaseOmitted(t *testing.T) {
	data, err := json.Marshal(LogEntry{Mode: "RECTANGLES"})
	if err != nil {
		t.Fatalf("Marshal() = %v", err)
	}
	if strings.Contains(string(data), "am_phase") {
		t.Errorf("am_phase present without a phase: %s", data)
	}

	phase := -0.8
	data, err = json.Marshal(LogEntry{Mode: "AM", AMPhase: &phase})
	if err != nil {
		t.Fatalf("Marshal() = %v", err)
	}
	if !strings.Contains(string(data), `"am_phase":-0.8`) {
		t.Errorf("am_phase missing: %s", data)
	}
}

func TestRecorderStopFlushes(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	rec := testRecorder(t)
	frame := testFrame(t)

	rec.Start(sessionStart)
	for _, offset := range []time.Duration{34, 68, 102} {
		rec.Capture(LogEntry{Mode: "RECTANGLES", Direction: "CENTER"}, frame, sessionStart.Add(offset*time.Millisecond))
	}

	summary, err := rec.Stop(sessionStart.Add(time.Second))
	if summary == nil {
		t.Fatalf("Stop() summary = nil, err = %v", err)
	}
	if rec.Recording() {
		t.Error("Recording() = true after Stop")
	}
	if len(rec.frames) != 0 {
		t.Errorf("buffered frames after Stop = %d, want 0", len(rec.frames))
	}

	if summary.TotalFrames != 3 {
		t.Errorf("TotalFrames = %d, want 3", summary.TotalFrames)
	}
	if summary.Duration != 1 {
		t.Errorf("Duration = %v, want 1", summary.Duration)
	}
	if summary.FPS != 3 {
		t.Errorf("FPS = %v, want 3", summary.FPS)
	}

	if summary.LogPath == "" {
		t.Fatalf("log not written: %v", err)
	}
	data, readErr := os.ReadFile(summary.LogPath)
	if readErr != nil {
		t.Fatalf("ReadFile(%s) = %v", summary.LogPath, readErr)
	}

	var written sessionLog
	if err := json.Unmarshal(data, &written); err != nil {
		t.Fatalf("Unmarshal() = %v", err)
	}
	if written.Duration != 1 || written.TotalFrames != 3 || written.FPS != 3 {
		t.Errorf("log = %+v", written)
	}
	if written.Resolution.Width != 128 || written.Resolution.Height != 64 {
		t.Errorf("resolution = %+v, want 128x64", written.Resolution)
	}
	if len(written.Frames) != 3 {
		t.Fatalf("frames = %d, want 3", len(written.Frames))
	}
	if written.Frames[0].Timestamp != 0.034 {
		t.Errorf("first timestamp = %v, want 0.034", written.Frames[0].Timestamp)
	}

	// Video writing depends on the codecs available in the OpenCV
	// build; verify the file when it was produced.
	if summary.VideoPath == "" {
		t.Logf("video not written: %v", err)
	} else if _, statErr := os.Stat(summary.VideoPath); statErr != nil {
		t.Errorf("Stat(%s) = %v", summary.VideoPath, statErr)
	}
}

func TestRecorderEmptySessionLog(t *testing.T) {
	rec := testRecorder(t)

	rec.Start(sessionStart)
	summary, err := rec.Stop(sessionStart)
	if summary == nil {
		t.Fatalf("Stop() summary = nil, err = %v", err)
	}

	// Zero duration reports the nominal capture rate.
	if summary.FPS != 30 {
		t.Errorf("FPS = %v, want 30", summary.FPS)
	}

	data, readErr := os.ReadFile(summary.LogPath)
	if readErr != nil {
		t.Fatalf("ReadFile() = %v", readErr)
	}
	if !strings.Contains(string(data), `"frames": []`) {
		t.Errorf("empty session must serialize frames as a list: %s", data)
	}
}

func TestRecorderAutoStop(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	rec := testRecorder(t)
	frame := testFrame(t)

	rec.Start(sessionStart)
	rec.Capture(LogEntry{Mode: "ROUNDED"}, frame, sessionStart.Add(34*time.Millisecond))

	summary, err := rec.Capture(LogEntry{Mode: "ROUNDED"}, frame, sessionStart.Add(61*time.Second))
	if summary == nil {
		t.Fatalf("Capture() past the limit returned no summary, err = %v", err)
	}
	if rec.Recording() {
		t.Error("Recording() = true after auto-stop")
	}

	// The frame that tripped the limit is not part of the session.
	if summary.TotalFrames != 1 {
		t.Errorf("TotalFrames = %d, want 1", summary.TotalFrames)
	}
}
