package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// SceneActivity measures how much the scene changes between consecutive
// frames using frame differencing with Gaussian blur for noise reduction.
// The pipeline uses it to wake from its idle frame rate the moment someone
// steps back in front of the camera; it never gates landmark detection.
type SceneActivity struct {
	threshold   float64
	prevGray    gocv.Mat
	initialized bool
	mu          sync.Mutex
}

const (
	// ActivityBlurSize is the kernel size for the noise-reduction blur (21x21).
	ActivityBlurSize = 21
	// ActivityDiffThreshold is the per-pixel intensity delta counted as change.
	ActivityDiffThreshold = 25
)

// NewSceneActivity creates a SceneActivity with the given threshold.
// The threshold is the percentage of pixels that must change for the scene
// to count as active. For example, a threshold of 1.0 means 1% of pixels.
func NewSceneActivity(threshold float64) *SceneActivity {
	return &SceneActivity{
		threshold: threshold,
		prevGray:  gocv.NewMat(),
	}
}

// Detect analyzes a frame for activity compared to the previous frame.
// Returns whether the scene is active and the percentage of pixels that
// changed.
//
// Algorithm:
// 1. Convert frame to grayscale
// 2. Apply Gaussian blur (21x21) to reduce noise
// 3. If first frame, store as baseline and return false
// 4. Calculate absolute difference with previous frame
// 5. Threshold the difference (threshold=25)
// 6. Count non-zero pixels / total pixels = changePercent
// 7. Return changePercent > threshold
func (s *SceneActivity) Detect(frame *gocv.Mat) (bool, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	gray := gocv.NewMat()
	defer gray.Close()

	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{X: ActivityBlurSize, Y: ActivityBlurSize}, 0, 0, gocv.BorderDefault)

	// First frame becomes the baseline.
	if !s.initialized {
		blurred.CopyTo(&s.prevGray)
		s.initialized = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, s.prevGray, &diff)

	thresh := gocv.NewMat()
	defer thresh.Close()
	gocv.Threshold(diff, &thresh, ActivityDiffThreshold, 255, gocv.ThresholdBinary)

	nonZero := gocv.CountNonZero(thresh)
	totalPixels := thresh.Rows() * thresh.Cols()
	changePercent := float64(nonZero) / float64(totalPixels) * 100.0

	blurred.CopyTo(&s.prevGray)

	return changePercent > s.threshold, changePercent
}

// Reset clears the baseline so the next frame starts a fresh comparison.
func (s *SceneActivity) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.prevGray.Empty() {
		s.prevGray.Close()
		s.prevGray = gocv.NewMat()
	}
	s.initialized = false
}

// Close releases resources held by the sampler.
func (s *SceneActivity) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.prevGray.Empty() {
		s.prevGray.Close()
		s.prevGray = gocv.NewMat()
	}
	s.initialized = false
}

// SetThreshold sets the activity threshold, the percentage of pixels that
// must change. Values less than or equal to 0 are ignored.
func (s *SceneActivity) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.threshold = threshold
}
