package app

import (
	"errors"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/aaguirre/mirada/internal/detector"
	"github.com/aaguirre/mirada/internal/eye"
	"github.com/aaguirre/mirada/internal/recorder"
	"github.com/aaguirre/mirada/internal/render"
)

// runPipeline is the main loop that processes frames from the camera.
// It manages the transition between idle and active frame rates based
// on detection and scene activity.
//
// Pipeline logic per frame:
// 1. Apply queued control commands
// 2. Read a frame, sample scene activity
// 3. Detect the first face and measure eye geometry (defaults when absent)
// 4. Advance the eye state machine, gaze estimator and oscillator
// 5. Render the avatar and scan views
// 6. Feed the recorder while a session is active
// 7. Publish the snapshot and hand the encoded views to the observer
//
// After IdleTimeout with no face, no scene activity and no recording,
// the loop drops to IdleFPS; any sign of life snaps it back.
func (a *App) runPipeline(stopCh chan struct{}) {
	defer a.wg.Done()

	activeMode := true
	lastLife := time.Now()

	frameInterval := time.Second / time.Duration(ActiveFPS)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			now := time.Now()

			a.drainCommands(now)

			// Read a frame from the camera
			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			active, _ := a.activity.Detect(frame)
			detected := a.processFrame(frame, now)
			frame.Close()

			// A recording keeps the loop at full rate so the capture
			// cadence holds even with nobody in front of the camera.
			if detected || active || a.recorder.Recording() {
				lastLife = now

				if !activeMode {
					activeMode = true
					ticker.Reset(time.Second / time.Duration(ActiveFPS))
					log.Println("Switched to active mode")
				}
			} else if activeMode && now.Sub(lastLife) > IdleTimeout {
				activeMode = false
				ticker.Reset(time.Second / time.Duration(IdleFPS))
				log.Println("Switched to idle mode")
			}
		}
	}
}

// processFrame runs one frame through the full pipeline and reports
// whether a face was detected.
func (a *App) processFrame(frame *gocv.Mat, now time.Time) bool {
	width := frame.Cols()
	height := frame.Rows()

	faces, err := a.detector.Detect(frame)
	if err != nil {
		log.Printf("Error detecting face: %v", err)
		faces = nil
	}

	// Only the first face drives the avatar
	detected := len(faces) > 0
	metrics := eye.DefaultMetrics()
	gz := eye.NoDetectionGaze()
	var face *detector.FaceLandmarks
	if detected {
		face = &faces[0]
		metrics = eye.Measure(*face, width, height)
		gz = a.gaze.Update(metrics, width, height)
	}

	state := a.states.Update(metrics.LeftEAR, metrics.RightEAR)
	a.modulator.Tick(detected, gz.Direction, now)

	leftBlinks, rightBlinks := a.states.Blinks()
	input := render.Input{
		Detected:    detected,
		LeftEAR:     metrics.LeftEAR,
		RightEAR:    metrics.RightEAR,
		LeftBrow:    metrics.LeftBrow,
		RightBrow:   metrics.RightBrow,
		EyeState:    state,
		Gaze:        gz,
		Phase:       a.modulator.Phase(),
		Mode:        a.mode,
		LeftBlinks:  leftBlinks,
		RightBlinks: rightBlinks,
	}

	avatar := a.engine.DrawAvatar(input, render.ViewAnnotated)
	scan := a.engine.DrawScan(face, gz)

	if a.recorder.Recording() {
		a.captureFrame(input, now)
	}

	snapshot := a.buildSnapshot(input, now)
	a.publish(snapshot)

	if a.onFrame != nil {
		a.onFrame(FrameUpdate{
			State:      snapshot,
			AvatarJPEG: encodeJPEG(avatar),
			ScanJPEG:   encodeJPEG(scan),
		})
	}

	return detected
}

// captureFrame renders the clean video view and offers it to the
// recorder together with the signal log entry. A non-nil summary means
// the session hit its duration limit and flushed itself.
func (a *App) captureFrame(input render.Input, now time.Time) {
	video := a.engine.DrawAvatar(input, render.ViewVideo)

	entry := recorder.LogEntry{
		Mode:      input.Mode.String(),
		LeftEAR:   input.LeftEAR,
		RightEAR:  input.RightEAR,
		GazeX:     input.Gaze.X,
		GazeY:     input.Gaze.Y,
		LeftBrow:  input.LeftBrow,
		RightBrow: input.RightBrow,
		Direction: input.Gaze.Direction,
	}
	if input.Mode == render.ModeAM {
		phase := input.Phase
		entry.AMPhase = &phase
	}

	summary, err := a.recorder.Capture(entry, video, now)
	if err != nil {
		log.Printf("Error capturing recording frame: %v", err)
	}
	a.persistSession(summary)
}

// drainCommands applies every queued command before the frame is
// processed, so each frame sees a settled configuration.
func (a *App) drainCommands(now time.Time) {
	for {
		select {
		case cmd := <-a.commands:
			a.apply(cmd, now)
		default:
			return
		}
	}
}

// apply executes one control command on the pipeline state.
func (a *App) apply(cmd Command, now time.Time) {
	switch cmd {
	case CommandCycleMode:
		a.mode = a.mode.Next()
		log.Printf("Render mode: %s", a.mode)
	case CommandResetCounters:
		a.states.ResetTotals()
		log.Println("Blink counters reset")
	case CommandClearHistory:
		a.gaze.Clear()
		log.Println("Gaze history cleared")
	case CommandStartRecording:
		// The recorder logs the duplicate-start case itself
		if err := a.recorder.Start(now); err != nil {
			return
		}
	case CommandStopRecording:
		// A partial flush still returns a summary worth indexing
		summary, err := a.recorder.Stop(now)
		if err != nil && !errors.Is(err, recorder.ErrNotRecording) {
			log.Printf("Error flushing recording: %v", err)
		}
		a.persistSession(summary)
	}
}

// buildSnapshot assembles the published state for one frame.
func (a *App) buildSnapshot(input render.Input, now time.Time) Snapshot {
	s := Snapshot{
		Detected:    input.Detected,
		Mode:        input.Mode.String(),
		EyeState:    string(input.EyeState),
		Direction:   input.Gaze.Direction,
		GazeX:       input.Gaze.X,
		GazeY:       input.Gaze.Y,
		LeftEAR:     input.LeftEAR,
		RightEAR:    input.RightEAR,
		LeftBrow:    input.LeftBrow,
		RightBrow:   input.RightBrow,
		LeftBlinks:  input.LeftBlinks,
		RightBlinks: input.RightBlinks,
		Openness:    a.modulator.Openness(),
		Phase:       input.Phase,
		Recording:   a.recorder.Recording(),
	}
	if s.Recording {
		s.RecordingFor = a.recorder.Elapsed(now).Seconds()
	}
	return s
}

// encodeJPEG copies the encoded bytes out of the gocv buffer so they
// outlive the buffer release.
func encodeJPEG(m gocv.Mat) []byte {
	buf, err := gocv.IMEncode(".jpg", m)
	if err != nil {
		log.Printf("Error encoding frame: %v", err)
		return nil
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	return data
}
