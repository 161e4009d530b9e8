package render

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/aaguirre/mirada/internal/eye"
)

// Eye box geometry. The width never changes; only the height tracks the
// eye opening.
const (
	boxWidth     = 80
	boxMaxHeight = 100
	boxMinHeight = 8

	// earFullScale is the aspect ratio that maps to a full-height box.
	earFullScale = 0.35

	// maxBrowCut is the deepest diagonal cut, at full brow elevation.
	maxBrowCut = 30

	// roundKernel is the ellipse kernel side for the rounded mode's
	// close and blur passes.
	roundKernel = 31
)

// boxHeights maps both aspect ratios to pixel heights and halves the
// side(s) the eye state marks as closed.
func boxHeights(in Input) (left, right int) {
	left = baseHeight(in.LeftEAR)
	right = baseHeight(in.RightEAR)

	switch in.EyeState {
	case eye.StateBothClosed:
		left /= 2
		right /= 2
	case eye.StateLeftWink:
		left /= 2
	case eye.StateRightWink:
		right /= 2
	}
	return left, right
}

func baseHeight(ear float64) int {
	h := int(ear / earFullScale * boxMaxHeight)
	if h > boxMaxHeight {
		h = boxMaxHeight
	}
	if h < boxMinHeight {
		h = boxMinHeight
	}
	return h
}

func browCut(elevation float64) int {
	return int(elevation * maxBrowCut)
}

// boxPolygon builds the four-corner eye box, bottom edge first, with the
// diagonal cut applied to the top edge. The cut is mirrored between the
// eyes so it follows the brow toward the face midline.
func boxPolygon(center image.Point, height, cut int, leftEye bool) []image.Point {
	x1 := center.X - boxWidth/2
	x2 := center.X + boxWidth/2
	y1 := center.Y - height/2
	y2 := center.Y + height/2

	if leftEye {
		return []image.Point{
			{X: x1, Y: y2},
			{X: x2, Y: y2},
			{X: x2 - cut, Y: y1},
			{X: x1, Y: y1 + cut},
		}
	}
	return []image.Point{
		{X: x1, Y: y2},
		{X: x2, Y: y2},
		{X: x2, Y: y1 + cut},
		{X: x1 + cut, Y: y1},
	}
}

// drawDiagonalBox fills the polygon and strokes its outline.
func drawDiagonalBox(canvas *gocv.Mat, poly []image.Point, c color.RGBA) {
	pts := gocv.NewPointsVectorFromPoints([][]image.Point{poly})
	defer pts.Close()

	gocv.FillPoly(canvas, pts, c)
	gocv.Polylines(canvas, pts, true, c, 2)
}

// drawRoundedBox renders the polygon through a softened mask: fill into
// a single-channel mask, round the corners with a morphological close,
// feather with a Gaussian blur, alpha-blend the color through the mask,
// then stroke the outer contour of the softened shape.
func drawRoundedBox(canvas *gocv.Mat, poly []image.Point, c color.RGBA) {
	mask := gocv.NewMatWithSize(canvas.Rows(), canvas.Cols(), gocv.MatTypeCV8UC1)
	defer mask.Close()

	pts := gocv.NewPointsVectorFromPoints([][]image.Point{poly})
	defer pts.Close()
	gocv.FillPoly(&mask, pts, color.RGBA{R: 255, G: 255, B: 255})

	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(roundKernel, roundKernel))
	defer kernel.Close()
	gocv.MorphologyEx(mask, &mask, gocv.MorphClose, kernel)
	gocv.GaussianBlur(mask, &mask, image.Pt(roundKernel, roundKernel), 0, 0, gocv.BorderDefault)

	blendMask(canvas, mask, c)

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()
	gocv.DrawContours(canvas, contours, -1, c, 2)
}

// blendMask composites the color onto the canvas with the 8-bit mask as
// a per-pixel alpha: canvas = canvas*(1-a) + color*a.
func blendMask(canvas *gocv.Mat, mask gocv.Mat, c color.RGBA) {
	alpha := gocv.NewMat()
	defer alpha.Close()
	mask.ConvertToWithParams(&alpha, gocv.MatTypeCV32F, 1.0/255.0, 0)

	inverse := gocv.NewMat()
	defer inverse.Close()
	alpha.ConvertToWithParams(&inverse, gocv.MatTypeCV32F, -1, 1)

	channels := gocv.Split(*canvas)
	bgr := [3]float32{float32(c.B), float32(c.G), float32(c.R)}

	for i := range channels {
		plane := gocv.NewMat()
		channels[i].ConvertTo(&plane, gocv.MatTypeCV32F)
		gocv.Multiply(plane, inverse, &plane)

		colored := alpha.Clone()
		colored.MultiplyFloat(bgr[i])
		gocv.Add(plane, colored, &plane)

		plane.ConvertTo(&channels[i], gocv.MatTypeCV8U)
		colored.Close()
		plane.Close()
	}

	gocv.Merge(channels, canvas)
	for i := range channels {
		channels[i].Close()
	}
}
