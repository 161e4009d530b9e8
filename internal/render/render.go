// Package render draws the avatar: two eye boxes or an amplitude
// modulated wave on a black canvas, with an optional diagnostics panel,
// plus a landmark scan view. All drawing goes through gocv onto
// engine-owned canvases that are reused frame to frame.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math/rand"
	"strings"
	"time"

	"gocv.io/x/gocv"

	"github.com/aaguirre/mirada/internal/eye"
)

// Avatar canvas size, shared by both views.
const (
	CanvasWidth  = 800
	CanvasHeight = 400
)

// Scan view canvas size, matching the capture resolution.
const (
	ScanWidth  = 640
	ScanHeight = 480
)

var (
	// eyeColor is the avatar cyan used by every mode.
	eyeColor = color.RGBA{R: 0, G: 255, B: 255}
	black    = gocv.NewScalar(0, 0, 0, 0)
)

// Mode selects how the avatar is drawn.
type Mode int

const (
	// ModeRectangles draws hard-edged eye boxes with diagonal brow cuts.
	ModeRectangles Mode = iota
	// ModeRounded draws the same boxes smoothed and alpha-blended.
	ModeRounded
	// ModeAM draws a single amplitude modulated wave across both eyes.
	ModeAM
)

func (m Mode) String() string {
	switch m {
	case ModeRectangles:
		return "RECTANGLES"
	case ModeRounded:
		return "ROUNDED"
	case ModeAM:
		return "AM"
	default:
		return fmt.Sprintf("MODE(%d)", int(m))
	}
}

// Next returns the mode that follows m in the fixed cycle
// RECTANGLES, ROUNDED, AM.
func (m Mode) Next() Mode {
	switch m {
	case ModeRectangles:
		return ModeRounded
	case ModeRounded:
		return ModeAM
	default:
		return ModeRectangles
	}
}

// ParseMode maps a configuration string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RECTANGLES", "RECT":
		return ModeRectangles, nil
	case "ROUNDED":
		return ModeRounded, nil
	case "AM", "AM_WAVE":
		return ModeAM, nil
	default:
		return ModeRectangles, fmt.Errorf("unknown render mode %q", s)
	}
}

// View selects the avatar layout.
type View int

const (
	// ViewAnnotated reserves the right side for the diagnostics panel.
	ViewAnnotated View = iota
	// ViewVideo spreads the eyes across the full canvas for recording.
	ViewVideo
)

func (v View) String() string {
	if v == ViewVideo {
		return "video"
	}
	return "annotated"
}

// layout holds the per-view eye placement parameters.
type layout struct {
	baseLeft  image.Point
	baseRight image.Point
	multX     float64
	multY     float64
	panel     bool
}

func (v View) layout() layout {
	if v == ViewVideo {
		return layout{
			baseLeft:  image.Pt(200, 200),
			baseRight: image.Pt(600, 200),
			multX:     180,
			multY:     120,
			panel:     false,
		}
	}
	return layout{
		baseLeft:  image.Pt(150, 200),
		baseRight: image.Pt(300, 200),
		multX:     120,
		multY:     80,
		panel:     true,
	}
}

// Input carries everything one avatar frame is drawn from. Heights and
// positions are derived inside the engine; callers pass raw signals.
type Input struct {
	Detected bool

	LeftEAR  float64
	RightEAR float64

	LeftBrow  float64
	RightBrow float64

	EyeState eye.State
	Gaze     eye.Gaze

	// Phase is the AM carrier offset from the animation modulator.
	Phase float64

	Mode Mode

	LeftBlinks  int
	RightBlinks int
}

// Engine owns the reusable canvases. It is confined to the pipeline
// goroutine; returned Mats stay valid until the next draw on the same
// view and must not be closed by the caller.
type Engine struct {
	annotated gocv.Mat
	video     gocv.Mat
	scan      gocv.Mat
	rng       *rand.Rand
}

// NewEngine allocates the canvases.
func NewEngine() *Engine {
	return &Engine{
		annotated: gocv.NewMatWithSize(CanvasHeight, CanvasWidth, gocv.MatTypeCV8UC3),
		video:     gocv.NewMatWithSize(CanvasHeight, CanvasWidth, gocv.MatTypeCV8UC3),
		scan:      gocv.NewMatWithSize(ScanHeight, ScanWidth, gocv.MatTypeCV8UC3),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Close releases the canvases.
func (e *Engine) Close() {
	e.annotated.Close()
	e.video.Close()
	e.scan.Close()
}

// DrawAvatar renders one avatar frame for the given view and returns
// the engine-owned canvas.
func (e *Engine) DrawAvatar(in Input, view View) gocv.Mat {
	canvas := &e.annotated
	if view == ViewVideo {
		canvas = &e.video
	}
	canvas.SetTo(black)

	l := view.layout()
	leftPos := eyePosition(l.baseLeft, in.Gaze, l.multX, l.multY)
	rightPos := eyePosition(l.baseRight, in.Gaze, l.multX, l.multY)

	// Box heights are derived in every mode so the panel can report them.
	leftH, rightH := boxHeights(in)

	switch in.Mode {
	case ModeAM:
		if in.Detected {
			drawWave(canvas, in.LeftEAR, in.RightEAR, in.Phase)
		} else {
			e.drawIdleNoise(canvas)
		}
	case ModeRounded:
		drawRoundedBox(canvas, boxPolygon(leftPos, leftH, browCut(in.LeftBrow), true), eyeColor)
		drawRoundedBox(canvas, boxPolygon(rightPos, rightH, browCut(in.RightBrow), false), eyeColor)
	default:
		drawDiagonalBox(canvas, boxPolygon(leftPos, leftH, browCut(in.LeftBrow), true), eyeColor)
		drawDiagonalBox(canvas, boxPolygon(rightPos, rightH, browCut(in.RightBrow), false), eyeColor)
	}

	if l.panel {
		drawPanel(canvas, in, leftH, rightH)
	}
	return *canvas
}

// eyePosition offsets a base position by the gaze, truncating the sum
// like the rest of the pixel math.
func eyePosition(base image.Point, g eye.Gaze, multX, multY float64) image.Point {
	x := int(float64(base.X) + (g.X-0.5)*multX)
	y := int(float64(base.Y) + (g.Y-0.5)*multY)
	return image.Pt(x, y)
}
