//go:build gocv
// +build gocv

package vision

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"frame-guide/internal/domain/entity"
	"frame-guide/internal/domain/port"
)

// GoCVCamera captures frames from a local video device through OpenCV.
type GoCVCamera struct {
	DeviceID int

	mu      sync.Mutex
	capture *gocv.VideoCapture
	dims    entity.FrameDimensions
}

// NewGoCVCamera creates a camera for the given device; it is opened on first capture.
func NewGoCVCamera(deviceID int) *GoCVCamera {
	return &GoCVCamera{DeviceID: deviceID}
}

// CaptureFrame reads one frame and encodes it as JPEG. An empty read means
// the device is still warming up and yields no frame.
func (c *GoCVCamera) CaptureFrame(ctx context.Context) (*entity.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.openLocked(); err != nil {
		return nil, err
	}

	mat := gocv.NewMat()
	defer mat.Close()

	if ok := c.capture.Read(&mat); !ok {
		return nil, fmt.Errorf("read from device %d failed", c.DeviceID)
	}
	if mat.Empty() {
		return nil, nil
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, mat)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	// dimensions come from the same frame as the data
	c.dims = entity.FrameDimensions{Width: mat.Cols(), Height: mat.Rows()}

	return &entity.Frame{
		Data:       append([]byte(nil), buf.GetBytes()...),
		Dimensions: c.dims,
		CapturedAt: time.Now(),
	}, nil
}

// FrameDimensions returns the size of the last captured frame, or the
// device's reported size before the first capture.
func (c *GoCVCamera) FrameDimensions() entity.FrameDimensions {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dims.IsZero() && c.capture != nil {
		return entity.FrameDimensions{
			Width:  int(c.capture.Get(gocv.VideoCaptureFrameWidth)),
			Height: int(c.capture.Get(gocv.VideoCaptureFrameHeight)),
		}
	}
	return c.dims
}

// Close releases the device.
func (c *GoCVCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capture == nil {
		return nil
	}
	err := c.capture.Close()
	c.capture = nil
	return err
}

func (c *GoCVCamera) openLocked() error {
	if c.capture != nil {
		return nil
	}
	capture, err := gocv.OpenVideoCapture(c.DeviceID)
	if err != nil {
		return fmt.Errorf("open video device %d: %w", c.DeviceID, err)
	}
	c.capture = capture
	return nil
}

var _ port.Camera = (*GoCVCamera)(nil)
