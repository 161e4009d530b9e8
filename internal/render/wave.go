package render

import (
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"
)

// AM wave geometry. The wave keeps the same footprint in both views.
const (
	waveCenterX = 230
	waveCenterY = 200
	waveWidth   = 420

	waveBaseAmp = 4.0
	waveCarrier = 0.5

	// opennessToAmp scales a 0-100 eye opening onto the extra envelope
	// amplitude.
	opennessToAmp = 0.5

	idleNoiseSpan = 3
)

var baselineColor = color.RGBA{R: 80, G: 80, B: 80}

// Aspect ratio range mapped onto the 0-100 wave opening.
const (
	waveEARMin = 0.15
	waveEARMax = 0.35
)

// earOpenness maps an aspect ratio onto the 0-100 opening, clamped at
// the ends of the typical range.
func earOpenness(ear float64) float64 {
	t := (ear - waveEARMin) / (waveEARMax - waveEARMin)
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return t * 100
}

// drawWave renders the amplitude modulated eye wave: a sine carrier
// under a raised-cosine envelope whose amplitude follows the eye
// opening, left eye on the left half, right eye on the right. A faint
// baseline is drawn over the wave span afterwards.
func drawWave(canvas *gocv.Mat, leftEAR, rightEAR, phase float64) {
	leftAmp := earOpenness(leftEAR) * opennessToAmp
	rightAmp := earOpenness(rightEAR) * opennessToAmp

	startX := waveCenterX - waveWidth/2
	prev := image.Pt(startX, waveCenterY)

	for i := 0; i < waveWidth; i++ {
		amp := rightAmp
		if i < waveWidth/2 {
			amp = leftAmp
		}

		t := float64(i) / float64(waveWidth-1)
		env := waveBaseAmp + amp*0.5*(1+math.Cos(4*math.Pi*t+math.Pi))
		y := waveCenterY + int(env*math.Sin(waveCarrier*float64(i)+phase))

		pt := image.Pt(startX+i, y)
		gocv.Line(canvas, prev, pt, eyeColor, 2)
		prev = pt
	}

	gocv.Line(canvas,
		image.Pt(startX, waveCenterY),
		image.Pt(waveCenterX+waveWidth/2, waveCenterY),
		baselineColor, 1)
}

// drawIdleNoise renders the asleep wave: low-amplitude random jitter
// around the baseline while no face is present.
func (e *Engine) drawIdleNoise(canvas *gocv.Mat) {
	startX := waveCenterX - waveWidth/2
	prev := image.Pt(startX, waveCenterY)

	for i := 0; i < waveWidth; i++ {
		y := waveCenterY + e.rng.Intn(2*idleNoiseSpan+1) - idleNoiseSpan
		pt := image.Pt(startX+i, y)
		gocv.Line(canvas, prev, pt, eyeColor, 1)
		prev = pt
	}
}
