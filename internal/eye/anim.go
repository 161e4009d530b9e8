package eye

import (
	"strings"
	"time"
)

// Oscillator timing and shape.
const (
	// TickInterval is the minimum wall-clock time between oscillator
	// advances, decoupling the wave period from the camera frame rate.
	TickInterval = 40 * time.Millisecond

	opennessStep = 2.0
	opennessMax  = 100.0

	// phaseOffset shifts the carrier wave toward the gaze side.
	phaseOffset = 0.8
)

// Modulator is the breathing oscillator behind the amplitude-modulation
// view: a triangle wave in [0,100] that advances at most once per
// TickInterval regardless of how often it is polled. While no face is
// detected the wave holds at zero (asleep) without advancing, and
// resumes from zero when the face returns.
type Modulator struct {
	openness float64
	dir      float64
	phase    float64
	lastTick time.Time
}

// NewModulator creates a Modulator at rest. The first advance happens
// one TickInterval after now.
func NewModulator(now time.Time) *Modulator {
	return &Modulator{dir: 1, lastTick: now}
}

// Tick advances the oscillator if TickInterval has elapsed since the
// last advance. Early polls are absorbed without touching any state.
// The phase leans toward the horizontal component of the gaze label.
func (m *Modulator) Tick(detected bool, direction string, now time.Time) {
	if now.Sub(m.lastTick) < TickInterval {
		return
	}
	m.lastTick = now

	if !detected {
		m.openness = 0
		return
	}

	m.openness += opennessStep * m.dir
	if m.openness > opennessMax {
		m.openness = opennessMax
	}
	if m.openness < 0 {
		m.openness = 0
	}
	if m.openness == 0 || m.openness == opennessMax {
		m.dir = -m.dir
	}

	switch {
	case strings.Contains(direction, GazeLeft):
		m.phase = -phaseOffset
	case strings.Contains(direction, GazeRight):
		m.phase = phaseOffset
	default:
		m.phase = 0
	}
}

// Openness returns the current wave openness in [0,100].
func (m *Modulator) Openness() float64 {
	return m.openness
}

// Phase returns the current carrier phase offset in radians.
func (m *Modulator) Phase() float64 {
	return m.phase
}
