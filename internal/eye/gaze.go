package eye

// Gaze direction labels. The horizontal component is the base; a
// vertical component, when present, is appended with an underscore
// (e.g. "LEFT_UP"), giving nine combined labels.
const (
	GazeCenter      = "CENTER"
	GazeLeft        = "LEFT"
	GazeRight       = "RIGHT"
	GazeNoDetection = "NO_DETECTION"

	gazeUpSuffix   = "_UP"
	gazeDownSuffix = "_DOWN"
)

// Thresholds on the smoothed normalized position. Between the two the
// gaze counts as centered.
const (
	gazeLowThreshold  = 0.42
	gazeHighThreshold = 0.58
)

// gazeHistorySize bounds the smoothing window.
const gazeHistorySize = 3

// Gaze is one smoothed gaze sample: a direction label plus the averaged
// normalized position it was derived from.
type Gaze struct {
	Direction string
	X         float64
	Y         float64
}

// NoDetectionGaze returns the fixed sample reported for frames with no
// detected face. The history is left intact so a brief dropout does not
// discard smoothing state.
func NoDetectionGaze() Gaze {
	return Gaze{Direction: GazeNoDetection, X: 0.5, Y: 0.5}
}

// Estimator smooths gaze positions over a short window and maps them to
// direction labels. It prefers iris centers when the detector resolves
// both and falls back to eye-region centroids otherwise, never mixing
// the two sources within one frame.
type Estimator struct {
	history []gazeSample
}

type gazeSample struct {
	x, y float64
}

// NewEstimator creates an Estimator with an empty smoothing window.
func NewEstimator() *Estimator {
	return &Estimator{history: make([]gazeSample, 0, gazeHistorySize)}
}

// Update ingests the metrics of one detected frame and returns the
// smoothed gaze.
func (e *Estimator) Update(m Metrics, width, height int) Gaze {
	left, right := m.LeftCenter, m.RightCenter
	if m.LeftIrisOK && m.RightIrisOK {
		left, right = m.LeftIris, m.RightIris
	}

	x := (float64(left.X) + float64(right.X)) / (2 * float64(width))
	y := (float64(left.Y) + float64(right.Y)) / (2 * float64(height))

	if len(e.history) >= gazeHistorySize {
		copy(e.history, e.history[1:])
		e.history = e.history[:gazeHistorySize-1]
	}
	e.history = append(e.history, gazeSample{x, y})

	var ax, ay float64
	for _, s := range e.history {
		ax += s.x
		ay += s.y
	}
	ax /= float64(len(e.history))
	ay /= float64(len(e.history))

	return Gaze{Direction: directionLabel(ax, ay), X: ax, Y: ay}
}

// Clear empties the smoothing window so stale positions do not bleed
// into a new tracking episode.
func (e *Estimator) Clear() {
	e.history = e.history[:0]
}

// directionLabel maps a smoothed position to one of the nine combined
// labels. Screen coordinates grow rightward and downward.
func directionLabel(x, y float64) string {
	dir := GazeCenter
	if x < gazeLowThreshold {
		dir = GazeLeft
	} else if x > gazeHighThreshold {
		dir = GazeRight
	}

	if y < gazeLowThreshold {
		dir += gazeUpSuffix
	} else if y > gazeHighThreshold {
		dir += gazeDownSuffix
	}
	return dir
}
