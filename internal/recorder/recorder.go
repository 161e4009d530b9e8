// Package recorder captures avatar sessions: a structured JSON log of
// the per-frame signals plus an MP4 clip of the rendered video view,
// written side by side under a shared session name.
package recorder

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gocv.io/x/gocv"
)

// Recording limits. A session stops itself at MaxDuration; frames are
// sampled at CaptureFPS regardless of how fast the pipeline runs.
const (
	MaxDuration = 60 * time.Second
	CaptureFPS  = 30

	captureInterval = time.Second / CaptureFPS
	videoFourCC     = "mp4v"
)

// Resolution advertised in the session log, matching the embedded
// display the logs are replayed on.
const (
	logWidth  = 128
	logHeight = 64
)

var (
	ErrAlreadyRecording = errors.New("recording already in progress")
	ErrNotRecording     = errors.New("no recording in progress")
)

var recColor = color.RGBA{R: 255}

// LogEntry is one captured frame's signal snapshot. Timestamp is filled
// in by the recorder as seconds since the session started.
type LogEntry struct {
	Timestamp float64  `json:"timestamp"`
	Mode      string   `json:"mode"`
	LeftEAR   float64  `json:"left_ear"`
	RightEAR  float64  `json:"right_ear"`
	GazeX     float64  `json:"gaze_x"`
	GazeY     float64  `json:"gaze_y"`
	LeftBrow  float64  `json:"left_brow"`
	RightBrow float64  `json:"right_brow"`
	Direction string   `json:"direction"`
	AMPhase   *float64 `json:"am_phase,omitempty"`
}

// sessionLog is the on-disk shape of the JSON artifact.
type sessionLog struct {
	Duration    float64    `json:"duration"`
	TotalFrames int        `json:"total_frames"`
	FPS         float64    `json:"fps"`
	Resolution  resolution `json:"resolution"`
	Frames      []LogEntry `json:"frames"`
}

type resolution struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Summary describes one flushed session. Paths are empty for artifacts
// that failed to write.
type Summary struct {
	ID          string
	Name        string
	StartedAt   time.Time
	Duration    float64
	TotalFrames int
	FPS         float64
	LogPath     string
	VideoPath   string
}

// Recorder buffers log entries and cloned frames while a session is
// active and flushes them on stop. It is confined to the pipeline
// goroutine; every method takes the current time so tests can drive it
// with fixed instants.
type Recorder struct {
	jsonDir  string
	videoDir string

	recording   bool
	id          string
	name        string
	startTime   time.Time
	lastCapture time.Time
	entries     []LogEntry
	frames      []gocv.Mat
}

// New creates an idle Recorder writing JSON logs and videos into the
// two directories. The directories are created lazily on first flush.
func New(jsonDir, videoDir string) *Recorder {
	return &Recorder{jsonDir: jsonDir, videoDir: videoDir}
}

// Recording reports whether a session is active.
func (r *Recorder) Recording() bool {
	return r.recording
}

// Name returns the current or last session name.
func (r *Recorder) Name() string {
	return r.name
}

// Elapsed returns how long the active session has been running, zero
// when idle.
func (r *Recorder) Elapsed(now time.Time) time.Duration {
	if !r.recording {
		return 0
	}
	return now.Sub(r.startTime)
}

// Start begins a session named after the wall-clock time. Starting
// while recording is a no-op apart from the returned sentinel.
func (r *Recorder) Start(now time.Time) error {
	if r.recording {
		log.Printf("Recording already in progress: %s", r.name)
		return ErrAlreadyRecording
	}

	r.recording = true
	r.id = uuid.NewString()
	r.name = "animation_" + now.Format("20060102_150405")
	r.startTime = now
	r.lastCapture = now
	r.entries = nil
	r.frames = nil

	log.Printf("Recording started: %s (limit %s)", r.name, MaxDuration)
	return nil
}

// Capture offers one frame to the active session. Frames arriving
// faster than the capture interval are skipped. When the session has
// exceeded MaxDuration the recorder flushes itself and drops the
// offered frame; the returned summary is non-nil exactly in that case.
func (r *Recorder) Capture(entry LogEntry, frame gocv.Mat, now time.Time) (*Summary, error) {
	if !r.recording {
		return nil, nil
	}

	if now.Sub(r.startTime) > MaxDuration {
		log.Printf("Recording reached the %s limit, stopping", MaxDuration)
		return r.flush(now)
	}

	if now.Sub(r.lastCapture) < captureInterval {
		return nil, nil
	}

	elapsed := now.Sub(r.startTime).Seconds()
	entry.Timestamp = round3(elapsed)
	entry.LeftEAR = round3(entry.LeftEAR)
	entry.RightEAR = round3(entry.RightEAR)
	entry.GazeX = round3(entry.GazeX)
	entry.GazeY = round3(entry.GazeY)
	entry.LeftBrow = round2(entry.LeftBrow)
	entry.RightBrow = round2(entry.RightBrow)
	if entry.AMPhase != nil {
		phase := round2(*entry.AMPhase)
		entry.AMPhase = &phase
	}
	r.entries = append(r.entries, entry)

	clone := frame.Clone()
	gocv.PutText(&clone, fmt.Sprintf("REC %.1fs", elapsed), image.Pt(10, 30),
		gocv.FontHersheySimplex, 0.8, recColor, 2)
	gocv.Circle(&clone, image.Pt(760, 30), 10, recColor, -1)
	r.frames = append(r.frames, clone)

	r.lastCapture = now
	return nil, nil
}

// Stop flushes the active session. The session always transitions to
// idle, even when writing an artifact fails.
func (r *Recorder) Stop(now time.Time) (*Summary, error) {
	if !r.recording {
		log.Printf("Stop requested with no active recording")
		return nil, ErrNotRecording
	}
	return r.flush(now)
}

// Close releases any buffered frames without writing artifacts.
func (r *Recorder) Close() {
	r.releaseFrames()
	r.entries = nil
	r.recording = false
}

func (r *Recorder) flush(now time.Time) (*Summary, error) {
	duration := now.Sub(r.startTime).Seconds()
	fps := float64(CaptureFPS)
	if duration > 0 {
		fps = float64(len(r.entries)) / duration
	}

	summary := &Summary{
		ID:          r.id,
		Name:        r.name,
		StartedAt:   r.startTime,
		Duration:    duration,
		TotalFrames: len(r.entries),
		FPS:         fps,
	}

	var errs []error

	logPath := filepath.Join(r.jsonDir, r.name+".json")
	if err := r.writeLog(logPath, duration, fps); err != nil {
		log.Printf("Failed to write session log: %v", err)
		errs = append(errs, err)
	} else {
		summary.LogPath = logPath
		log.Printf("Session log written: %s (%d frames)", logPath, len(r.entries))
	}

	if len(r.frames) > 0 {
		videoPath := filepath.Join(r.videoDir, r.name+".mp4")
		if err := r.writeVideo(videoPath); err != nil {
			log.Printf("Failed to write session video: %v", err)
			errs = append(errs, err)
		} else {
			summary.VideoPath = videoPath
			log.Printf("Session video written: %s", videoPath)
		}
	}

	r.releaseFrames()
	r.entries = nil
	r.recording = false

	return summary, errors.Join(errs...)
}

func (r *Recorder) writeLog(path string, duration, fps float64) error {
	if err := os.MkdirAll(r.jsonDir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	// An empty session still serializes frames as a list, not null.
	entries := r.entries
	if entries == nil {
		entries = []LogEntry{}
	}

	payload := sessionLog{
		Duration:    round3(duration),
		TotalFrames: len(entries),
		FPS:         round2(fps),
		Resolution:  resolution{Width: logWidth, Height: logHeight},
		Frames:      entries,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session log: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write session log: %w", err)
	}
	return nil
}

func (r *Recorder) writeVideo(path string) error {
	if err := os.MkdirAll(r.videoDir, 0o755); err != nil {
		return fmt.Errorf("create video directory: %w", err)
	}

	cols := r.frames[0].Cols()
	rows := r.frames[0].Rows()
	writer, err := gocv.VideoWriterFile(path, videoFourCC, CaptureFPS, cols, rows, true)
	if err != nil {
		return fmt.Errorf("open video writer: %w", err)
	}
	defer writer.Close()
	if !writer.IsOpened() {
		return fmt.Errorf("video writer rejected codec %q", videoFourCC)
	}

	for i := range r.frames {
		if err := writer.Write(r.frames[i]); err != nil {
			return fmt.Errorf("write video frame %d: %w", i, err)
		}
	}
	return nil
}

func (r *Recorder) releaseFrames() {
	for i := range r.frames {
		r.frames[i].Close()
	}
	r.frames = nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
