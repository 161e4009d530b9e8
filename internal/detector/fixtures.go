package detector

import "math"

// Synthetic face fixtures for tests. The builders place the schema's
// index groups at hand-picked pixel positions on a fictional 640x480
// frame so the derived metrics come out at exact, predictable values.
//
// Geometry scheme per eye: the 6 contour points span 60px horizontally
// and `span` px vertically, which makes the eye aspect ratio exactly
// span/60. The 16-point region and the 5 iris points are laid out in
// mirrored pairs so their integer centroids land exactly on the eye
// center. Eyebrow points sit on one row `browDist` px above the contour
// mean, so the raw brow distance is exactly browDist.

// Fixture frame dimensions. Pass these to the geometry layer when
// working with fixture landmark sets.
const (
	FixtureWidth  = 640
	FixtureHeight = 480
)

// Eye spans used by the fixtures: span/60 = EAR.
const (
	openEyeSpan   = 18 // EAR 0.30
	closedEyeSpan = 6  // EAR 0.10
)

// pixelPoint returns the normalized coordinate of a pixel center, so the
// geometry layer's int truncation recovers the pixel exactly.
func pixelPoint(px, py int) Point3D {
	return Point3D{
		X: (float64(px) + 0.5) / FixtureWidth,
		Y: (float64(py) + 0.5) / FixtureHeight,
	}
}

// NeutralFaceLandmarks returns a relaxed frontal face: both eyes open
// (EAR 0.30), brows 40px above the eyes (elevation 0.5), iris centers on
// the eye centers, gaze dead center at (0.5, 0.5).
func NeutralFaceLandmarks() FaceLandmarks {
	return buildFace(faceParams{
		leftSpan:  openEyeSpan,
		rightSpan: openEyeSpan,
		browDist:  40,
		leftIris:  [2]int{224, 240},
		rightIris: [2]int{416, 240},
	})
}

// WinkFaceLandmarks returns a face with one eye closed (EAR 0.10) and the
// other open (EAR 0.30).
func WinkFaceLandmarks(leftClosed bool) FaceLandmarks {
	p := faceParams{
		leftSpan:  openEyeSpan,
		rightSpan: openEyeSpan,
		browDist:  40,
		leftIris:  [2]int{224, 240},
		rightIris: [2]int{416, 240},
	}
	if leftClosed {
		p.leftSpan = closedEyeSpan
	} else {
		p.rightSpan = closedEyeSpan
	}
	return buildFace(p)
}

// ClosedFaceLandmarks returns a face with both eyes closed (EAR 0.10).
func ClosedFaceLandmarks() FaceLandmarks {
	return buildFace(faceParams{
		leftSpan:  closedEyeSpan,
		rightSpan: closedEyeSpan,
		browDist:  40,
		leftIris:  [2]int{224, 240},
		rightIris: [2]int{416, 240},
	})
}

// GazeFaceLandmarks returns an open-eyed face whose iris centers are
// placed so the estimated gaze position comes out at (gx, gy) to within
// one pixel of normalization.
func GazeFaceLandmarks(gx, gy float64) FaceLandmarks {
	ix := int(gx * FixtureWidth)
	iy := int(gy * FixtureHeight)
	return buildFace(faceParams{
		leftSpan:  openEyeSpan,
		rightSpan: openEyeSpan,
		browDist:  40,
		leftIris:  [2]int{ix - 96, iy},
		rightIris: [2]int{ix + 96, iy},
	})
}

// BrowFaceLandmarks returns an open-eyed face with both eyebrows exactly
// distPx pixels above the eye contours.
func BrowFaceLandmarks(distPx int) FaceLandmarks {
	return buildFace(faceParams{
		leftSpan:  openEyeSpan,
		rightSpan: openEyeSpan,
		browDist:  distPx,
		leftIris:  [2]int{224, 240},
		rightIris: [2]int{416, 240},
	})
}

// CoreFaceLandmarks returns the neutral face without the iris refinement
// block (468 points), for exercising the eye-center fallback.
func CoreFaceLandmarks() FaceLandmarks {
	f := NeutralFaceLandmarks()
	f.Points = f.Points[:NumCoreLandmarks]
	return f
}

type faceParams struct {
	leftSpan  int
	rightSpan int
	browDist  int
	leftIris  [2]int
	rightIris [2]int
}

// Eye centers used by every fixture face.
const (
	leftEyeCX  = 224 // 0.35 of the fixture width
	rightEyeCX = 416 // 0.65 of the fixture width
	eyeCY      = 240 // vertical center
)

func buildFace(p faceParams) FaceLandmarks {
	points := make([]Point3D, NumLandmarks)
	for i := range points {
		points[i] = pixelPoint(320, 240)
	}

	placeEye(points, LeftEyeContour, LeftEyeRegion, LeftEyebrow, leftEyeCX, eyeCY, p.leftSpan, p.browDist)
	placeEye(points, RightEyeContour, RightEyeRegion, RightEyebrow, rightEyeCX, eyeCY, p.rightSpan, p.browDist)
	placeIris(points, LeftIris, p.leftIris[0], p.leftIris[1])
	placeIris(points, RightIris, p.rightIris[0], p.rightIris[1])
	placeFaceContour(points)

	return FaceLandmarks{Points: points, Score: 0.95}
}

// placeEye positions one eye's contour, region and eyebrow groups around
// (cx, cy). The integer centroids of both the contour and the full region
// land exactly on (cx, cy).
func placeEye(points []Point3D, contour, region, brow []int, cx, cy, span, browDist int) {
	half := span / 2

	// Contour order: outer corner, top pair, inner corner, bottom pair.
	contourPos := [6][2]int{
		{cx - 30, cy},
		{cx - 10, cy - half},
		{cx + 10, cy - half},
		{cx + 30, cy},
		{cx + 10, cy + half},
		{cx - 10, cy + half},
	}
	for i, idx := range contour {
		points[idx] = pixelPoint(contourPos[i][0], contourPos[i][1])
	}

	// The 10 region points outside the contour, as 5 mirrored pairs.
	inContour := make(map[int]bool, len(contour))
	for _, idx := range contour {
		inContour[idx] = true
	}
	var rest []int
	for _, idx := range region {
		if !inContour[idx] {
			rest = append(rest, idx)
		}
	}
	pairOffsets := [5][2]int{{26, 4}, {18, 8}, {10, 10}, {4, 11}, {14, 9}}
	for j, off := range pairOffsets {
		points[rest[j]] = pixelPoint(cx+off[0], cy+off[1])
		points[rest[j+5]] = pixelPoint(cx-off[0], cy-off[1])
	}

	// One brow row browDist px above the contour mean.
	for i, idx := range brow {
		points[idx] = pixelPoint(cx-45+i*10, cy-browDist)
	}
}

// placeIris puts the center point on (ix, iy) and four boundary points in
// mirrored pairs, so the integer centroid is exactly (ix, iy).
func placeIris(points []Point3D, iris []int, ix, iy int) {
	irisPos := [5][2]int{
		{ix, iy},
		{ix + 3, iy},
		{ix, iy + 3},
		{ix - 3, iy},
		{ix, iy - 3},
	}
	for i, idx := range iris {
		points[idx] = pixelPoint(irisPos[i][0], irisPos[i][1])
	}
}

// placeFaceContour spreads the cosmetic contour over an ellipse so the
// scan overlay has a face-shaped outline to draw.
func placeFaceContour(points []Point3D) {
	n := len(FaceContour)
	for i, idx := range FaceContour {
		angle := 2 * math.Pi * float64(i) / float64(n)
		px := 320 + int(140*math.Sin(angle))
		py := 240 - int(190*math.Cos(angle))
		points[idx] = pixelPoint(px, py)
	}
}
