package container

import (
	"context"
	"errors"
	"fmt"
	"time"

	app "frame-guide/internal/application"
	"frame-guide/internal/domain/entity"
	"frame-guide/internal/domain/guidance"
	"frame-guide/internal/domain/port"
)

// ErrPushDisabled is returned by PushFrame when the camera is not push-fed.
var ErrPushDisabled = errors.New("frame push is disabled for this camera backend")

// FrameSink accepts frames from a push-fed camera.
type FrameSink interface {
	Push(frame *entity.Frame)
}

// Options carries the collaborators and tuning the container is built from.
type Options struct {
	Subscribers port.SubscriberRepository
	Camera      port.Camera
	Detector    port.ObjectDetector
	Preparer    port.FramePreparer

	// Sink is set when frames are pushed in from a UI boundary instead of
	// being read from a local device. Pushed frames are prepared on arrival.
	Sink FrameSink

	Threshold float64
	DeadZone  float64
	Interval  time.Duration
	Timeout   time.Duration // per cycle, zero keeps the loop default
}

type Container struct {
	SubscriberService *app.SubscriberService
	PhotoService      *app.PhotoService
	Controller        *app.AlignmentController
	Loop              *app.GuidanceLoop
	Transcript        *app.TranscriptSession
	Notifiers         *app.NotifierGroup

	camera   port.Camera
	preparer port.FramePreparer
	sink     FrameSink
}

func New(opts Options) *Container {
	evaluator := guidance.NewEvaluator(opts.Threshold, opts.DeadZone)
	transcript := app.NewTranscriptSession()
	notifiers := app.NewNotifierGroup()
	controller := app.NewAlignmentController(evaluator, transcript, notifiers)

	// a push-fed camera delivers frames that were already prepared
	loopPreparer := opts.Preparer
	if opts.Sink != nil {
		loopPreparer = nil
	}

	loop := app.NewGuidanceLoop(controller, opts.Camera, opts.Detector, loopPreparer, opts.Interval)
	loop.SetCycleTimeout(opts.Timeout)

	return &Container{
		SubscriberService: app.NewSubscriberService(opts.Subscribers),
		PhotoService:      app.NewPhotoService(opts.Detector, opts.Preparer, evaluator, transcript),
		Controller:        controller,
		Loop:              loop,
		Transcript:        transcript,
		Notifiers:         notifiers,
		camera:            opts.Camera,
		preparer:          opts.Preparer,
		sink:              opts.Sink,
	}
}

// StartGuidance starts a session and begins listening for transcripts.
// It returns false if a session is already running.
func (c *Container) StartGuidance(ctx context.Context) bool {
	if !c.Controller.Start(ctx) {
		return false
	}

	// a session that stopped on its own leaves the transcript listening
	c.Transcript.Stop()
	_ = c.Transcript.Start(func(text string) {
		c.Controller.ApplyTranscript(context.Background(), text)
	})
	return true
}

// StopGuidance stops the session and the transcript listener.
func (c *Container) StopGuidance(ctx context.Context) bool {
	c.Transcript.Stop()
	return c.Controller.Stop(ctx)
}

// Find names the object to frame, starting a session if needed.
func (c *Container) Find(ctx context.Context, text string) entity.GuidanceState {
	if !c.Controller.IsRunning() {
		c.StartGuidance(ctx)
	}
	c.Transcript.Publish(text)
	return c.Controller.Snapshot()
}

// Snapshot returns the current guidance state.
func (c *Container) Snapshot() entity.GuidanceState {
	return c.Controller.Snapshot()
}

// FrameDimensions returns the capture surface size, zero if unknown.
func (c *Container) FrameDimensions() entity.FrameDimensions {
	if c.camera == nil {
		return entity.FrameDimensions{}
	}
	return c.camera.FrameDimensions()
}

// PushEnabled reports whether frames can be pushed in.
func (c *Container) PushEnabled() bool {
	return c.sink != nil
}

// PushFrame prepares an encoded image and hands it to the push-fed camera.
func (c *Container) PushFrame(data []byte) (entity.FrameDimensions, error) {
	if c.sink == nil {
		return entity.FrameDimensions{}, ErrPushDisabled
	}
	if c.preparer == nil {
		return entity.FrameDimensions{}, errors.New("frame preparer is not configured")
	}

	frame, err := c.preparer.PrepareFrame(data)
	if err != nil {
		return entity.FrameDimensions{}, fmt.Errorf("prepare frame: %w", err)
	}
	c.sink.Push(frame)
	return frame.Dimensions, nil
}
