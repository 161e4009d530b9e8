// Package capture acquires video frames from a camera device using GoCV
// (OpenCV) and watches the scene for activity while the pipeline idles.
package capture

import (
	"errors"
	"sync"

	"gocv.io/x/gocv"
)

// Default capture resolution, used when the configured dimensions are
// missing or invalid.
const (
	DefaultWidth  = 640
	DefaultHeight = 480
)

// ErrCameraNotOpen is returned when trying to read from a camera that is not open.
var ErrCameraNotOpen = errors.New("camera is not open")

// Camera defines the interface for camera capture implementations.
type Camera interface {
	Open() error
	Close() error
	ReadFrame() (*gocv.Mat, error)
	IsOpened() bool
	Width() int
	Height() int
}

// cameraImpl manages video capture from a camera device using GoCV.
type cameraImpl struct {
	deviceID int
	width    int
	height   int
	mu       sync.Mutex
	capture  *gocv.VideoCapture
	running  bool
}

// NewCamera creates a new Camera for the given device ID capturing at the
// given resolution. Dimensions that are zero or negative fall back to the
// 640x480 default.
func NewCamera(deviceID, width, height int) Camera {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &cameraImpl{
		deviceID: deviceID,
		width:    width,
		height:   height,
	}
}

// Open opens the camera for capturing frames and applies the configured
// resolution. Opening an already open camera is a no-op.
func (c *cameraImpl) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(c.deviceID)
	if err != nil {
		return err
	}

	capture.Set(gocv.VideoCaptureFrameWidth, float64(c.width))
	capture.Set(gocv.VideoCaptureFrameHeight, float64(c.height))

	c.capture = capture
	c.running = true

	return nil
}

// Close closes the camera and releases resources.
func (c *cameraImpl) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		c.running = false
		return nil
	}

	err := c.capture.Close()
	c.capture = nil
	c.running = false

	return err
}

// ReadFrame reads a single frame from the camera.
// The caller is responsible for closing the returned Mat.
func (c *cameraImpl) ReadFrame() (*gocv.Mat, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.capture == nil {
		return nil, ErrCameraNotOpen
	}

	mat := gocv.NewMat()
	if ok := c.capture.Read(&mat); !ok {
		mat.Close()
		return nil, errors.New("failed to read frame from camera")
	}

	if mat.Empty() {
		mat.Close()
		return nil, errors.New("captured frame is empty")
	}

	return &mat, nil
}

// IsOpened returns true if the camera is currently open.
func (c *cameraImpl) IsOpened() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.running
}

// Width returns the configured capture width. The device may deliver a
// different size; per-frame dimensions come from the Mat itself.
func (c *cameraImpl) Width() int {
	return c.width
}

// Height returns the configured capture height.
func (c *cameraImpl) Height() int {
	return c.height
}
