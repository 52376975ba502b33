package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"frame-guide/internal/domain/geometry"
	"frame-guide/internal/domain/port"
	"frame-guide/internal/log"
)

// DefaultInterval is the period between capture/detect cycles.
const DefaultInterval = 2 * time.Second

// DefaultCycleTimeout bounds one capture/detect round.
const DefaultCycleTimeout = 30 * time.Second

// ErrFrameNotReady means the camera had no image for this cycle.
var ErrFrameNotReady = errors.New("frame not ready")

// GuidanceLoop captures, detects and evaluates on a fixed period while the
// controller is running. At most one cycle is in flight; ticks that arrive
// while a cycle is busy are dropped.
type GuidanceLoop struct {
	controller *AlignmentController
	camera     port.Camera
	detector   port.ObjectDetector
	preparer   port.FramePreparer
	interval   time.Duration
	timeout    time.Duration

	busy atomic.Bool
	wg   sync.WaitGroup
}

// NewGuidanceLoop creates a loop. preparer may be nil.
func NewGuidanceLoop(controller *AlignmentController, camera port.Camera, detector port.ObjectDetector, preparer port.FramePreparer, interval time.Duration) *GuidanceLoop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &GuidanceLoop{
		controller: controller,
		camera:     camera,
		detector:   detector,
		preparer:   preparer,
		interval:   interval,
		timeout:    DefaultCycleTimeout,
	}
}

// SetCycleTimeout changes how long one cycle may wait on the camera and the
// detector. Call it before Run.
func (l *GuidanceLoop) SetCycleTimeout(d time.Duration) {
	if d > 0 {
		l.timeout = d
	}
}

func (l *GuidanceLoop) CycleTimeout() time.Duration {
	return l.timeout
}

// Run ticks until ctx is done, then waits for the in-flight cycle.
func (l *GuidanceLoop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	defer l.wg.Wait()

	log.Info("guidance loop started", "interval", l.interval)
	for {
		select {
		case <-ctx.Done():
			log.Info("guidance loop stopped")
			return ctx.Err()
		case <-ticker.C:
			l.trigger(ctx)
		}
	}
}

// trigger starts a cycle unless the controller is idle or one is in flight.
func (l *GuidanceLoop) trigger(ctx context.Context) bool {
	if !l.controller.IsRunning() {
		return false
	}
	if !l.busy.CompareAndSwap(false, true) {
		log.Debug("detection in flight, tick skipped")
		return false
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer l.busy.Store(false)
		report(l.Tick(ctx))
	}()
	return true
}

// Tick runs one capture/detect/evaluate cycle. Capture and detection share
// the cycle timeout; a cycle that runs out of time changes nothing.
func (l *GuidanceLoop) Tick(ctx context.Context) error {
	cycle, ok := l.controller.BeginCycle()
	if !ok {
		return nil
	}

	cycleCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	frame, err := l.camera.CaptureFrame(cycleCtx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFrameNotReady, err)
	}
	if frame == nil {
		return ErrFrameNotReady
	}

	if l.preparer != nil {
		prepared, err := l.preparer.PrepareFrame(frame.Data)
		if err != nil {
			return fmt.Errorf("%w: prepare: %v", ErrFrameNotReady, err)
		}
		prepared.CapturedAt = frame.CapturedAt
		frame = prepared
	}
	if frame.Dimensions.IsZero() {
		frame.Dimensions = l.camera.FrameDimensions()
	}

	objects, err := l.detector.Detect(cycleCtx, frame)
	if err != nil {
		return fmt.Errorf("detect: %w", err)
	}

	return l.controller.OnDetectionResult(ctx, cycle, objects, frame.Dimensions)
}

// report logs the outcome of a cycle. None of these stop the loop.
func report(err error) {
	switch {
	case err == nil:
	case errors.Is(err, ErrCycleDiscarded):
		log.Debug("late detection result discarded")
	case errors.Is(err, ErrFrameNotReady):
		log.Debug("cycle skipped", "error", err)
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn("cycle timed out, keeping last guidance", "error", err)
	case errors.Is(err, port.ErrDetectionTransport):
		log.Warn("detection failed, keeping last guidance", "error", err)
	case errors.Is(err, geometry.ErrInvalidPolygon):
		log.Error("detector returned malformed polygon", "error", err)
	default:
		log.Warn("cycle failed", "error", err)
	}
}
