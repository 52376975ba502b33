package app

import (
	"context"
	"sync"

	"frame-guide/internal/domain/entity"
	"frame-guide/internal/domain/geometry"
)

func object(name string, poly geometry.Polygon) entity.DetectedObject {
	return entity.DetectedObject{
		Name:         name,
		Score:        0.8,
		BoundingPoly: entity.BoundingPoly{NormalizedVertices: poly},
	}
}

type fakeCamera struct {
	frame *entity.Frame
	err   error
	dims  entity.FrameDimensions
}

func (c *fakeCamera) CaptureFrame(ctx context.Context) (*entity.Frame, error) {
	return c.frame, c.err
}

func (c *fakeCamera) FrameDimensions() entity.FrameDimensions {
	return c.dims
}

type fakeDetector struct {
	objects []entity.DetectedObject
	err     error
	block   chan struct{}
	hang    bool // wait for the context to end
	calls   int
	mu      sync.Mutex
}

func (d *fakeDetector) Detect(ctx context.Context, frame *entity.Frame) ([]entity.DetectedObject, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	if d.block != nil {
		<-d.block
	}
	if d.hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return d.objects, d.err
}

func (d *fakeDetector) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

type recordingNotifier struct {
	mu     sync.Mutex
	states []entity.GuidanceState
}

func (n *recordingNotifier) NotifyGuidance(ctx context.Context, state entity.GuidanceState) {
	n.mu.Lock()
	n.states = append(n.states, state)
	n.mu.Unlock()
}

func (n *recordingNotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.states)
}

type staticTranscript string

func (s staticTranscript) Latest() string { return string(s) }

type fakePreparer struct {
	dims entity.FrameDimensions
	err  error
}

func (p *fakePreparer) PrepareFrame(data []byte) (*entity.Frame, error) {
	if p.err != nil {
		return nil, p.err
	}
	return &entity.Frame{Data: data, Dimensions: p.dims}, nil
}
