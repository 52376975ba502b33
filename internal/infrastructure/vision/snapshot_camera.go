package vision

import (
	"context"
	"sync"

	"frame-guide/internal/domain/entity"
	"frame-guide/internal/domain/port"
)

// SnapshotCamera serves frames pushed from outside, e.g. a browser webcam
// posting stills. Each pushed frame is handed out once; until a new one
// arrives the camera reports "not ready".
type SnapshotCamera struct {
	mu     sync.Mutex
	latest *entity.Frame
	fresh  bool
}

func NewSnapshotCamera() *SnapshotCamera {
	return &SnapshotCamera{}
}

// Push replaces the latest frame.
func (c *SnapshotCamera) Push(frame *entity.Frame) {
	c.mu.Lock()
	c.latest = frame
	c.fresh = frame != nil
	c.mu.Unlock()
}

func (c *SnapshotCamera) CaptureFrame(ctx context.Context) (*entity.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.fresh {
		return nil, nil
	}
	c.fresh = false
	cp := *c.latest
	return &cp, nil
}

func (c *SnapshotCamera) FrameDimensions() entity.FrameDimensions {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.latest == nil {
		return entity.FrameDimensions{}
	}
	return c.latest.Dimensions
}

var _ port.Camera = (*SnapshotCamera)(nil)
