package detector

import "gocv.io/x/gocv"

// Detector defines the interface for face landmark detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns landmark sets for the
	// detected faces, nearest first. Returns an empty slice if no face
	// is visible; that is a valid steady state, not an error.
	Detect(frame *gocv.Mat) ([]FaceLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for face landmark detection.
type Config struct {
	// MaxFaces is the maximum number of faces to detect (default: 1).
	MaxFaces int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// RefineLandmarks enables the iris refinement block (landmarks 468-477).
	// The pipeline degrades to eye-center gaze tracking without it.
	RefineLandmarks bool

	// Script pins the helper script path. When empty the detector
	// searches the usual locations.
	Script string

	// Python pins the interpreter running the helper. When empty the
	// detector prefers a project virtualenv, then python3.
	Python string
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxFaces:        1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		RefineLandmarks: true,
	}
}
