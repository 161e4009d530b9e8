// Package eye derives interpretable signals from face landmarks: per-eye
// openness (aspect ratio), wink/blink classification, gaze direction and
// eyebrow elevation, plus the breathing oscillator that keeps the avatar
// alive between frames.
package eye

import (
	"image"
	"math"

	"github.com/aaguirre/mirada/internal/detector"
)

// Neutral values reported when no face is detected or a measurement
// degenerates. Absence of detection is a valid steady state, not an
// error.
const (
	// DefaultEAR is an open-eye aspect ratio.
	DefaultEAR = 0.3
	// DefaultBrow is a relaxed eyebrow elevation.
	DefaultBrow = 0.5
)

// Eyebrow normalization bounds: raw brow-to-eye pixel distances map
// linearly from [browMinDist, browMinDist+browDistRange] onto [0, 1].
const (
	browMinDist   = 20.0
	browDistRange = 40.0
)

// Metrics bundles the per-frame geometric measurements for both eyes.
type Metrics struct {
	LeftEAR  float64
	RightEAR float64

	LeftBrow  float64
	RightBrow float64

	LeftCenter  image.Point
	RightCenter image.Point

	LeftIris    image.Point
	RightIris   image.Point
	LeftIrisOK  bool
	RightIrisOK bool
}

// DefaultMetrics returns the neutral measurements used for frames with
// no detected face.
func DefaultMetrics() Metrics {
	return Metrics{
		LeftEAR:   DefaultEAR,
		RightEAR:  DefaultEAR,
		LeftBrow:  DefaultBrow,
		RightBrow: DefaultBrow,
	}
}

// Measure extracts all eye metrics from one face, converting normalized
// landmarks to pixel coordinates against the given frame size.
func Measure(face detector.FaceLandmarks, width, height int) Metrics {
	m := Metrics{
		LeftEAR:     AspectRatio(face, detector.LeftEyeContour, width, height),
		RightEAR:    AspectRatio(face, detector.RightEyeContour, width, height),
		LeftBrow:    BrowHeight(face, detector.LeftEyebrow, detector.LeftEyeContour, width, height),
		RightBrow:   BrowHeight(face, detector.RightEyebrow, detector.RightEyeContour, width, height),
		LeftCenter:  Center(face, detector.LeftEyeRegion, width, height),
		RightCenter: Center(face, detector.RightEyeRegion, width, height),
	}
	m.LeftIris, m.LeftIrisOK = IrisCenter(face, detector.LeftIris, width, height)
	m.RightIris, m.RightIrisOK = IrisCenter(face, detector.RightIris, width, height)
	return m
}

// AspectRatio computes the eye aspect ratio from a 6-point contour: the
// two vertical gaps over twice the horizontal width. Open eyes sit near
// 0.3, values under ~0.2 indicate closure. A degenerate contour returns
// DefaultEAR.
func AspectRatio(face detector.FaceLandmarks, contour []int, width, height int) float64 {
	pts := pixels(face, contour, width, height)
	if len(pts) != 6 {
		return DefaultEAR
	}

	v1 := pointDist(pts[1], pts[5])
	v2 := pointDist(pts[2], pts[4])
	h := pointDist(pts[0], pts[3])
	if h == 0 {
		return DefaultEAR
	}

	return (v1 + v2) / (2 * h)
}

// Center returns the integer centroid of a landmark group in pixel
// coordinates.
func Center(face detector.FaceLandmarks, group []int, width, height int) image.Point {
	pts := pixels(face, group, width, height)
	if len(pts) == 0 {
		return image.Point{}
	}

	var sx, sy int
	for _, p := range pts {
		sx += p.X
		sy += p.Y
	}
	return image.Pt(sx/len(pts), sy/len(pts))
}

// IrisCenter returns the centroid of the resolvable iris points. The
// iris block is an optional detector capability: fewer than 3 resolvable
// points reports ok=false and callers fall back to the eye center.
func IrisCenter(face detector.FaceLandmarks, iris []int, width, height int) (image.Point, bool) {
	pts := pixels(face, iris, width, height)
	if len(pts) < 3 {
		return image.Point{}, false
	}

	var sx, sy int
	for _, p := range pts {
		sx += p.X
		sy += p.Y
	}
	return image.Pt(sx/len(pts), sy/len(pts)), true
}

// BrowHeight returns the normalized eyebrow elevation in [0,1]: the
// absolute pixel distance between the mean brow row and the mean eye
// contour row, mapped from the typical 20-60px range. 0 is a brow
// resting on the eye, 1 is fully raised.
func BrowHeight(face detector.FaceLandmarks, brow, contour []int, width, height int) float64 {
	browPts := pixels(face, brow, width, height)
	eyePts := pixels(face, contour, width, height)
	if len(browPts) == 0 || len(eyePts) == 0 {
		return DefaultBrow
	}

	dist := math.Abs(meanY(browPts) - meanY(eyePts))
	normalized := (dist - browMinDist) / browDistRange
	return clamp(normalized, 0, 1)
}

// pixels converts a landmark group to integer pixel coordinates,
// dropping indices outside the set. A short result signals a partial
// capability (e.g. missing iris refinement).
func pixels(face detector.FaceLandmarks, group []int, width, height int) []image.Point {
	pts := make([]image.Point, 0, len(group))
	for _, idx := range group {
		if idx < 0 || idx >= len(face.Points) {
			continue
		}
		p := face.Points[idx]
		pts = append(pts, image.Pt(int(p.X*float64(width)), int(p.Y*float64(height))))
	}
	return pts
}

func pointDist(a, b image.Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}

func meanY(pts []image.Point) float64 {
	var sum int
	for _, p := range pts {
		sum += p.Y
	}
	return float64(sum) / float64(len(pts))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
