package eye

// State classifies the instantaneous eye condition for one frame.
type State string

const (
	// StateNormal means both eyes open, or a closure still inside the
	// debounce window.
	StateNormal State = "NORMAL"
	// StateBothClosed means both eyes under the wink threshold. It is
	// reported immediately, without debounce.
	StateBothClosed State = "BOTH_CLOSED"
	// StateLeftWink means only the left eye has been closed for the
	// debounce run.
	StateLeftWink State = "LEFT_WINK"
	// StateRightWink means only the right eye has been closed for the
	// debounce run.
	StateRightWink State = "RIGHT_WINK"
)

// Detection thresholds.
const (
	// WinkThreshold is the aspect ratio under which an eye counts as
	// closed for state classification.
	WinkThreshold = 0.18
	// BlinkThreshold is the slightly looser bound used for cumulative
	// blink counting, so soft blinks register without triggering winks.
	BlinkThreshold = 0.20
	// ConsecutiveFrames is the debounce length: a closure must persist
	// this many frames before a wink is reported or a blink counted.
	ConsecutiveFrames = 2
)

// StateMachine debounces wink classification and accumulates blink
// totals across frames. Update must be called exactly once per frame so
// the debounce counters advance at frame rate.
type StateMachine struct {
	leftWinkRun  int
	rightWinkRun int

	leftBlinkRun  int
	rightBlinkRun int
	leftBlinks    int
	rightBlinks   int

	state State
}

// NewStateMachine creates a StateMachine in the normal state with zero
// blink totals.
func NewStateMachine() *StateMachine {
	return &StateMachine{state: StateNormal}
}

// Update classifies one frame from the two aspect ratios and advances
// the independent per-eye blink counters. It returns the new state.
func (s *StateMachine) Update(leftEAR, rightEAR float64) State {
	s.state = s.classify(leftEAR, rightEAR)
	countBlink(&s.leftBlinkRun, &s.leftBlinks, leftEAR)
	countBlink(&s.rightBlinkRun, &s.rightBlinks, rightEAR)
	return s.state
}

// State returns the classification from the most recent Update.
func (s *StateMachine) State() State {
	return s.state
}

// Blinks returns the cumulative blink totals for the left and right eye.
func (s *StateMachine) Blinks() (left, right int) {
	return s.leftBlinks, s.rightBlinks
}

// ResetTotals zeroes the cumulative blink totals. In-flight debounce
// runs are kept so a blink spanning the reset still completes.
func (s *StateMachine) ResetTotals() {
	s.leftBlinks = 0
	s.rightBlinks = 0
}

// classify applies the fixed precedence: both-closed first, then either
// single-eye closure, then normal. A mutual closure resets the wink
// runs, so a wink interrupted by a full blink must re-earn its debounce.
func (s *StateMachine) classify(leftEAR, rightEAR float64) State {
	leftClosed := leftEAR < WinkThreshold
	rightClosed := rightEAR < WinkThreshold

	switch {
	case leftClosed && rightClosed:
		s.leftWinkRun = 0
		s.rightWinkRun = 0
		return StateBothClosed

	case leftClosed:
		s.leftWinkRun++
		s.rightWinkRun = 0
		if s.leftWinkRun >= ConsecutiveFrames {
			return StateLeftWink
		}
		return StateNormal

	case rightClosed:
		s.rightWinkRun++
		s.leftWinkRun = 0
		if s.rightWinkRun >= ConsecutiveFrames {
			return StateRightWink
		}
		return StateNormal

	default:
		s.leftWinkRun = 0
		s.rightWinkRun = 0
		return StateNormal
	}
}

// countBlink advances one eye's closure run and credits a blink when the
// eye reopens after a run of at least ConsecutiveFrames. An eye held
// shut therefore counts a single blink, on reopening.
func countBlink(run, total *int, ear float64) {
	if ear < BlinkThreshold {
		*run++
		return
	}
	if *run >= ConsecutiveFrames {
		*total++
	}
	*run = 0
}
