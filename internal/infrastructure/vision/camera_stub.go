//go:build !gocv
// +build !gocv

package vision

import (
	"context"
	"errors"

	"frame-guide/internal/domain/entity"
	"frame-guide/internal/domain/port"
)

// ErrGoCVDisabled is returned by the camera when built without the gocv tag.
var ErrGoCVDisabled = errors.New("gocv build tag is not enabled")

// GoCVCamera is a placeholder used when OpenCV is not compiled in.
type GoCVCamera struct {
	DeviceID int
}

// NewGoCVCamera creates the placeholder camera (no OpenCV).
func NewGoCVCamera(deviceID int) *GoCVCamera {
	return &GoCVCamera{DeviceID: deviceID}
}

// CaptureFrame always fails without the gocv build tag.
func (c *GoCVCamera) CaptureFrame(ctx context.Context) (*entity.Frame, error) {
	_ = ctx
	return nil, ErrGoCVDisabled
}

// FrameDimensions is always zero without the gocv build tag.
func (c *GoCVCamera) FrameDimensions() entity.FrameDimensions {
	return entity.FrameDimensions{}
}

// Close is a no-op.
func (c *GoCVCamera) Close() error {
	return nil
}

var _ port.Camera = (*GoCVCamera)(nil)
