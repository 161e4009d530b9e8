package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/aaguirre/mirada/internal/detector"
	"github.com/aaguirre/mirada/internal/eye"
)

var (
	scanDot         = color.RGBA{R: 255}
	scanEyeDot      = color.RGBA{R: 255, G: 100}
	scanContourDot  = color.RGBA{R: 255, G: 50}
	scanCenterRing  = color.RGBA{R: 255, G: 255}
	scanCenterCore  = color.RGBA{G: 255}
	scanTitleColor  = color.RGBA{G: 255}
	scanDirColor    = color.RGBA{R: 255, G: 255}
	scanAlertColor  = color.RGBA{R: 255}
	scanAlertDetail = color.RGBA{R: 200, G: 200, B: 200}
)

// DrawScan renders the landmark scan view: every landmark as a small
// dot, eye and face contours highlighted, eye centers ringed, and a
// short header. A nil face produces the no-detection banner instead.
// The returned Mat is engine-owned.
func (e *Engine) DrawScan(face *detector.FaceLandmarks, gaze eye.Gaze) gocv.Mat {
	canvas := &e.scan
	canvas.SetTo(black)

	if face == nil {
		gocv.PutText(canvas, "NO FACE DETECTED", image.Pt(100, 200),
			gocv.FontHersheySimplex, 1, scanAlertColor, 2)
		gocv.PutText(canvas, "Position your face in front of the camera", image.Pt(50, 250),
			gocv.FontHersheySimplex, 0.6, scanAlertDetail, 1)
		return *canvas
	}

	for _, p := range face.Points {
		gocv.Circle(canvas, image.Pt(int(p.X*ScanWidth), int(p.Y*ScanHeight)), 2, scanDot, -1)
	}

	highlight := func(group []int, radius int, c color.RGBA) {
		for _, idx := range group {
			if idx < 0 || idx >= len(face.Points) {
				continue
			}
			p := face.Points[idx]
			gocv.Circle(canvas, image.Pt(int(p.X*ScanWidth), int(p.Y*ScanHeight)), radius, c, -1)
		}
	}
	highlight(detector.LeftEyeContour, 4, scanEyeDot)
	highlight(detector.RightEyeContour, 4, scanEyeDot)
	highlight(detector.FaceContour, 3, scanContourDot)

	for _, center := range []image.Point{
		eye.Center(*face, detector.LeftEyeRegion, ScanWidth, ScanHeight),
		eye.Center(*face, detector.RightEyeRegion, ScanWidth, ScanHeight),
	} {
		gocv.Circle(canvas, center, 8, scanCenterRing, 2)
		gocv.Circle(canvas, center, 5, scanCenterCore, -1)
	}

	gocv.PutText(canvas, "FACE MESH SCAN", image.Pt(10, 30),
		gocv.FontHersheySimplex, 0.6, scanTitleColor, 2)
	gocv.PutText(canvas, fmt.Sprintf("Landmarks: %d", len(face.Points)), image.Pt(10, 60),
		gocv.FontHersheySimplex, 0.5, panelWhite, 1)
	gocv.PutText(canvas, "Dir: "+gaze.Direction, image.Pt(10, 85),
		gocv.FontHersheySimplex, 0.5, scanDirColor, 1)

	return *canvas
}
