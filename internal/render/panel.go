package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Panel geometry. The column compresses toward the bottom so the state
// line still lands inside the 400px canvas.
const (
	panelSeparatorX = 460
	panelX          = 480
	panelTopY       = 30
)

var (
	separatorColor  = color.RGBA{R: 100, G: 100, B: 100}
	panelWhite      = color.RGBA{R: 255, G: 255, B: 255}
	panelGreen      = color.RGBA{R: 0, G: 255, B: 0}
	panelGray       = color.RGBA{R: 200, G: 200, B: 200}
	panelYellow     = color.RGBA{R: 255, G: 255, B: 0}
	panelBrowColor  = color.RGBA{R: 100, G: 255, B: 255}
	panelBlinkColor = color.RGBA{R: 100, G: 100, B: 255}
	panelStateColor = color.RGBA{R: 255, G: 255, B: 100}
)

// drawPanel renders the diagnostics column to the right of the
// separator: header, gaze block, sizes, brows, blink totals, eye state.
func drawPanel(canvas *gocv.Mat, in Input, leftH, rightH int) {
	gocv.Line(canvas,
		image.Pt(panelSeparatorX, 0),
		image.Pt(panelSeparatorX, CanvasHeight),
		separatorColor, 2)

	line := func(offset int, s string, scale float64, c color.RGBA) {
		gocv.PutText(canvas, s, image.Pt(panelX, panelTopY+offset), gocv.FontHersheySimplex, scale, c, 1)
	}

	line(0, "=== SYSTEM PARAMETERS ===", 0.5, panelWhite)
	line(30, "MODE: "+in.Mode.String(), 0.4, panelGreen)
	line(55, "MOVEMENT: "+in.Gaze.Direction, 0.4, panelWhite)
	line(80, fmt.Sprintf("Pos X,Y: (%.2f, %.2f)", in.Gaze.X, in.Gaze.Y), 0.4, panelGray)

	line(106, "--- SIZE (EAR) ---", 0.4, panelYellow)
	line(128, fmt.Sprintf("Left: %.3f", in.LeftEAR), 0.4, panelYellow)
	line(150, fmt.Sprintf("Right: %.3f", in.RightEAR), 0.4, panelYellow)
	line(172, fmt.Sprintf("Height L: %dpx", leftH), 0.4, panelGreen)
	line(194, fmt.Sprintf("Height R: %dpx", rightH), 0.4, panelGreen)

	line(220, "--- DIAGONAL (BROWS) ---", 0.4, panelBrowColor)
	line(242, fmt.Sprintf("Left: %.2f", in.LeftBrow), 0.4, panelBrowColor)
	line(264, fmt.Sprintf("Right: %.2f", in.RightBrow), 0.4, panelBrowColor)

	line(290, "--- BLINKS ---", 0.4, panelBlinkColor)
	line(312, fmt.Sprintf("Left: %d", in.LeftBlinks), 0.4, panelBlinkColor)
	line(334, fmt.Sprintf("Right: %d", in.RightBlinks), 0.4, panelBlinkColor)

	line(360, "State: "+string(in.EyeState), 0.4, panelStateColor)
}
