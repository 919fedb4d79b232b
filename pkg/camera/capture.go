// Package camera binds the session core to OpenCV: the capture device feeding
// the frame pipeline and the preview window presenting the overlay. Frames
// handed to the analysis path are always sensor native; the mirror flag only
// shapes how the preview and the overlay surface are presented.
package camera

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Capture wraps the camera device. It is the camera side collaborator of the
// mirror manager: the flag it holds governs the preview transform of each
// frame, never the frame handed to the estimator.
type Capture struct {
	dev *gocv.VideoCapture

	mu     sync.Mutex
	mirror bool
}

// Open opens the capture device by id and applies the requested frame size
// when non zero
func Open(deviceID, width, height int) (*Capture, error) {
	dev, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("camera: opening device %d: %w", deviceID, err)
	}
	if width > 0 {
		dev.Set(gocv.VideoCaptureFrameWidth, float64(width))
	}
	if height > 0 {
		dev.Set(gocv.VideoCaptureFrameHeight, float64(height))
	}
	return &Capture{dev: dev}, nil
}

// SetMirror applies the mirror flag to the preview transform
func (c *Capture) SetMirror(on bool) {
	c.mu.Lock()
	c.mirror = on
	c.mu.Unlock()
}

// Mirrored reports the currently applied preview transform flag
func (c *Capture) Mirrored() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mirror
}

// Read fetches the next sensor native frame into dst. Returns false when no
// frame could be read.
func (c *Capture) Read(dst *gocv.Mat) bool {
	return c.dev.Read(dst) && !dst.Empty()
}

// EncodeJPEG encodes a frame for estimator submission
func EncodeJPEG(frame gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, frame)
	if err != nil {
		return nil, fmt.Errorf("camera: encoding frame: %w", err)
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}

// Close releases the capture device
func (c *Capture) Close() error {
	return c.dev.Close()
}
