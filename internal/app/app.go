// Package app provides the main application logic for the Mirada avatar
// service: the frame pipeline that turns camera frames into eye signals,
// rendered views, recordings and state snapshots.
package app

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/aaguirre/mirada/internal/capture"
	"github.com/aaguirre/mirada/internal/detector"
	"github.com/aaguirre/mirada/internal/eye"
	"github.com/aaguirre/mirada/internal/recorder"
	"github.com/aaguirre/mirada/internal/render"
	"github.com/aaguirre/mirada/internal/store"
)

// Pipeline timing constants.
const (
	// ActiveFPS is the frame rate while a face or scene activity is
	// present. It matches the recorder's capture rate so recordings do
	// not starve.
	ActiveFPS = 30
	// IdleFPS is the polling rate once the scene has stayed empty.
	IdleFPS = 5
	// IdleTimeout is how long the scene must stay empty before the loop
	// drops to IdleFPS.
	IdleTimeout = 2 * time.Second
	// commandQueueSize bounds how many control commands can wait between
	// frames.
	commandQueueSize = 16
)

// ErrCommandQueueFull is returned when commands arrive faster than the
// pipeline drains them.
var ErrCommandQueueFull = errors.New("command queue full")

// Config holds configuration options for the application.
type Config struct {
	Store          *store.Store
	CameraID       int
	CameraWidth    int
	CameraHeight   int
	Detector       detector.Config
	InitialMode    render.Mode
	JSONDir        string
	VideoDir       string
	ActivityThresh float64
}

// Snapshot is the externally visible pipeline state, refreshed once per
// processed frame.
type Snapshot struct {
	Detected     bool    `json:"detected"`
	Mode         string  `json:"mode"`
	EyeState     string  `json:"eye_state"`
	Direction    string  `json:"direction"`
	GazeX        float64 `json:"gaze_x"`
	GazeY        float64 `json:"gaze_y"`
	LeftEAR      float64 `json:"left_ear"`
	RightEAR     float64 `json:"right_ear"`
	LeftBrow     float64 `json:"left_brow"`
	RightBrow    float64 `json:"right_brow"`
	LeftBlinks   int     `json:"left_blinks"`
	RightBlinks  int     `json:"right_blinks"`
	Openness     float64 `json:"openness"`
	Phase        float64 `json:"phase"`
	Recording    bool    `json:"recording"`
	RecordingFor float64 `json:"recording_for,omitempty"`
}

// FrameUpdate carries one processed frame's outputs to the observer
// callback: the refreshed snapshot plus the two encoded views.
type FrameUpdate struct {
	State      Snapshot
	AvatarJPEG []byte
	ScanJPEG   []byte
}

// App is the main application that orchestrates the avatar pipeline.
// All mutable pipeline state is confined to the pipeline goroutine; the
// rest of the process talks to it through HandleCommand and reads the
// published snapshot.
type App struct {
	config Config

	camera   capture.Camera
	activity *capture.SceneActivity
	detector detector.Detector

	states    *eye.StateMachine
	gaze      *eye.Estimator
	modulator *eye.Modulator
	engine    *render.Engine
	recorder  *recorder.Recorder

	mode     render.Mode
	commands chan Command
	onFrame  func(FrameUpdate)

	mu       sync.RWMutex
	snapshot Snapshot
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	threshold := config.ActivityThresh
	if threshold <= 0 {
		threshold = 1.0 // Default threshold: 1% pixel change
	}
	if config.Detector == (detector.Config{}) {
		config.Detector = detector.DefaultConfig()
	}

	a := &App{
		config:    config,
		camera:    capture.NewCamera(config.CameraID, config.CameraWidth, config.CameraHeight),
		activity:  capture.NewSceneActivity(threshold),
		states:    eye.NewStateMachine(),
		gaze:      eye.NewEstimator(),
		modulator: eye.NewModulator(time.Now()),
		engine:    render.NewEngine(),
		recorder:  recorder.New(config.JSONDir, config.VideoDir),
		mode:      config.InitialMode,
		commands:  make(chan Command, commandQueueSize),
	}
	a.snapshot = a.idleSnapshot()

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(config.Detector); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe face mesh detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// idleSnapshot is the state published before the first frame has been
// processed.
func (a *App) idleSnapshot() Snapshot {
	return Snapshot{
		Mode:      a.mode.String(),
		EyeState:  string(eye.StateNormal),
		Direction: eye.GazeNoDetection,
		GazeX:     0.5,
		GazeY:     0.5,
		LeftEAR:   eye.DefaultEAR,
		RightEAR:  eye.DefaultEAR,
		LeftBrow:  eye.DefaultBrow,
		RightBrow: eye.DefaultBrow,
		Openness:  a.modulator.Openness(),
	}
}

// OnFrame registers the observer invoked after every processed frame.
// It must be set before Start; the callback runs on the pipeline
// goroutine and should hand the update off quickly.
func (a *App) OnFrame(fn func(FrameUpdate)) {
	a.onFrame = fn
}

// HandleCommand validates a command and queues it for the pipeline. The
// queue is drained at the top of the next frame.
func (a *App) HandleCommand(cmd Command) error {
	parsed, err := ParseCommand(string(cmd))
	if err != nil {
		return err
	}

	select {
	case a.commands <- parsed:
		return nil
	default:
		return ErrCommandQueueFull
	}
}

// State returns the most recently published snapshot.
func (a *App) State() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot
}

// publish replaces the visible snapshot.
func (a *App) publish(s Snapshot) {
	a.mu.Lock()
	a.snapshot = s
	a.mu.Unlock()
}

// SetDetector sets the face detector implementation to use. It must be
// called before Start.
func (a *App) SetDetector(d detector.Detector) {
	a.detector = d
}

// SetCamera sets the camera implementation to use. It must be called
// before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.camera = c
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Detector returns the face detector.
func (a *App) Detector() detector.Detector {
	return a.detector
}

// Start begins the avatar pipeline.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	// Open the camera
	if err := a.camera.Open(); err != nil {
		return err
	}

	// Create stop channel and start the pipeline
	a.stopCh = make(chan struct{})
	a.wg.Add(1)
	go a.runPipeline(a.stopCh)

	log.Println("Avatar pipeline started")
	return nil
}

// Stop halts the pipeline, flushes any active recording and releases
// resources.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh := a.stopCh
	a.stopCh = nil
	a.mu.Unlock()

	if stopCh == nil {
		return
	}

	// Signal the pipeline to stop and wait for the frame in flight
	close(stopCh)
	a.wg.Wait()

	// Flush an interrupted recording so the session is not lost
	if a.recorder.Recording() {
		summary, err := a.recorder.Stop(time.Now())
		if err != nil {
			log.Printf("Error flushing recording: %v", err)
		}
		a.persistSession(summary)
	}
	a.recorder.Close()

	// Close the camera
	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}

	// Close scene activity sampler
	a.activity.Close()

	// Close the face detector if set
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}

	a.engine.Close()

	log.Println("Avatar pipeline stopped")
}

// persistSession indexes a flushed recording in the store. A nil
// summary (nothing was flushed) is ignored.
func (a *App) persistSession(summary *recorder.Summary) {
	if summary == nil || a.config.Store == nil {
		return
	}

	session := &store.Session{
		ID:          summary.ID,
		Name:        summary.Name,
		StartedAt:   summary.StartedAt,
		Duration:    summary.Duration,
		TotalFrames: summary.TotalFrames,
		FPS:         summary.FPS,
		LogPath:     summary.LogPath,
		VideoPath:   summary.VideoPath,
	}
	if err := a.config.Store.Sessions().Create(session); err != nil {
		log.Printf("Failed to index session %s: %v", summary.Name, err)
		return
	}
	log.Printf("Session indexed: %s (%d frames)", summary.Name, summary.TotalFrames)
}
