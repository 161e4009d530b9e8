// Package detector provides face landmark detection interfaces and types
// for the virtual-eye pipeline.
package detector

// Face Mesh landmark counts following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/face_landmarker
const (
	// NumCoreLandmarks is the landmark count without iris refinement.
	NumCoreLandmarks = 468
	// NumLandmarks is the landmark count with iris refinement enabled.
	NumLandmarks = 478
)

// Landmark index groups used by the eye pipeline. The numbering follows
// the MediaPipe Face Mesh topology and is part of the detector contract;
// it must not be renumbered.
var (
	// LeftEyeContour and RightEyeContour are the 6-point contours used for
	// the eye aspect ratio, ordered corner, top pair, corner, bottom pair.
	LeftEyeContour  = []int{33, 160, 158, 133, 153, 144}
	RightEyeContour = []int{362, 385, 387, 263, 373, 380}

	// LeftEyeRegion and RightEyeRegion are the full 16-point eye outlines
	// used for eye-center estimation.
	LeftEyeRegion  = []int{33, 7, 163, 144, 145, 153, 154, 155, 133, 173, 157, 158, 159, 160, 161, 246}
	RightEyeRegion = []int{362, 382, 381, 380, 374, 373, 390, 249, 263, 466, 388, 387, 386, 385, 384, 398}

	LeftEyebrow  = []int{70, 63, 105, 66, 107, 55, 65, 52, 53, 46}
	RightEyebrow = []int{296, 334, 293, 300, 276, 283, 282, 295, 285, 336}

	// LeftIris and RightIris exist only when the detector runs with iris
	// refinement; callers must treat them as an optional capability.
	LeftIris  = []int{468, 469, 470, 471, 472}
	RightIris = []int{473, 474, 475, 476, 477}

	// FaceContour is the outline and midline point set highlighted in the
	// scan overlay. Never used for metrics.
	FaceContour = []int{10, 151, 9, 8, 168, 6, 148, 176, 149, 150, 136, 172, 58, 132, 93, 234, 127, 162, 21, 54, 103, 67, 109}
)

// Point3D represents a normalized landmark coordinate. X and Y are in
// [0,1] relative to the frame; Z is relative depth and unused by the
// geometry layer.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// FaceLandmarks represents one detected face. Points holds NumLandmarks
// entries when iris refinement is available and NumCoreLandmarks
// otherwise; consumers must bounds-check the iris groups.
type FaceLandmarks struct {
	Points []Point3D `json:"points"`
	Score  float64   `json:"score"`
}

// HasIris reports whether the set carries the iris refinement block.
func (f *FaceLandmarks) HasIris() bool {
	return f != nil && len(f.Points) >= NumLandmarks
}
