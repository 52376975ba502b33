package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"frame-guide/internal/domain/entity"
	"frame-guide/internal/domain/geometry"
	"frame-guide/internal/domain/guidance"
	"frame-guide/internal/domain/port"
	"frame-guide/internal/log"
)

// ErrCycleDiscarded is returned for a detection result that belongs to a
// run that has already been stopped or restarted.
var ErrCycleDiscarded = errors.New("detection cycle discarded")

// Cycle ties a detection request to the run that issued it.
type Cycle struct {
	generation uint64
}

// AlignmentController owns the guidance state and decides, per detection
// result, what to tell the user and whether framing is finished.
type AlignmentController struct {
	evaluator  *guidance.Evaluator
	transcript port.TranscriptReader
	notifier   port.GuidanceNotifier

	mu         sync.Mutex
	state      entity.GuidanceState
	generation uint64
	logger     *slog.Logger // tagged with the current session
}

// NewAlignmentController creates an idle controller. transcript and notifier may be nil.
func NewAlignmentController(evaluator *guidance.Evaluator, transcript port.TranscriptReader, notifier port.GuidanceNotifier) *AlignmentController {
	return &AlignmentController{
		evaluator:  evaluator,
		transcript: transcript,
		notifier:   notifier,
		state:      entity.GuidanceState{Status: entity.StatusIdle},
		logger:     log.L(),
	}
}

// Start begins a new guidance session. It returns false if one is already running.
func (c *AlignmentController) Start(ctx context.Context) bool {
	c.mu.Lock()
	if c.state.Running {
		c.mu.Unlock()
		return false
	}
	c.generation++
	c.state.SessionID = uuid.NewString()
	c.state.Status = entity.StatusRunning
	c.state.Running = true
	c.state.Cycles = 0
	c.state.UpdatedAt = time.Now()
	c.logger = log.With("session", c.state.SessionID)
	logger := c.logger
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	logger.Info("guidance session started")
	c.notify(ctx, snapshot)
	return true
}

// Stop halts the running session and discards any result still in flight.
// It returns false if nothing was running.
func (c *AlignmentController) Stop(ctx context.Context) bool {
	c.mu.Lock()
	if !c.state.Running {
		c.mu.Unlock()
		return false
	}
	c.haltLocked()
	logger := c.logger
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	logger.Info("guidance session stopped", "cycles", snapshot.Cycles)
	c.notify(ctx, snapshot)
	return true
}

// IsRunning reports whether the loop should keep requesting detections.
func (c *AlignmentController) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Running
}

// BeginCycle issues a ticket for one capture/detect round.
func (c *AlignmentController) BeginCycle() (Cycle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.Running {
		return Cycle{}, false
	}
	return Cycle{generation: c.generation}, true
}

// OnDetectionResult applies one detection result taken with frame size dims.
// Results from a stopped or restarted run return ErrCycleDiscarded and change nothing.
// An empty result keeps the last message. A malformed primary polygon is
// returned as an error and leaves the state untouched.
func (c *AlignmentController) OnDetectionResult(ctx context.Context, cycle Cycle, objects []entity.DetectedObject, dims entity.FrameDimensions) error {
	transcript := c.latestTranscript()

	c.mu.Lock()
	if !c.state.Running || cycle.generation != c.generation {
		c.mu.Unlock()
		return ErrCycleDiscarded
	}

	var verdict *entity.Verdict
	if primary, ok := guidance.SelectPrimary(objects, transcript); ok {
		v, err := c.evaluator.Evaluate(primary, dims)
		if err != nil {
			c.mu.Unlock()
			return fmt.Errorf("evaluate primary object: %w", err)
		}
		verdict = &v
	}

	c.state.Cycles++
	c.state.Frame = dims
	c.state.UpdatedAt = time.Now()
	c.setDetectionsLocked(objects, transcript)

	if verdict != nil {
		c.state.LastMessage = verdict.Message
		c.state.Direction = verdict.Direction
		c.state.Coverage = verdict.Coverage
		if verdict.Done {
			c.haltLocked()
		}
	}
	logger := c.logger
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	if verdict != nil && verdict.Done {
		logger.Info("object framed", "object", verdict.Object.Name, "coverage", verdict.Coverage)
	}
	c.notify(ctx, snapshot)
	return nil
}

// ApplyTranscript re-matches the last detections against a new transcript.
// Message and run status are left alone.
func (c *AlignmentController) ApplyTranscript(ctx context.Context, transcript string) {
	c.mu.Lock()
	c.setDetectionsLocked(c.state.Detections, transcript)
	snapshot := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(ctx, snapshot)
}

// Snapshot returns a copy of the current state.
func (c *AlignmentController) Snapshot() entity.GuidanceState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Evaluator returns the evaluator the controller judges objects with.
func (c *AlignmentController) Evaluator() *guidance.Evaluator {
	return c.evaluator
}

func (c *AlignmentController) haltLocked() {
	c.generation++
	c.state.Status = entity.StatusStopped
	c.state.Running = false
	c.state.UpdatedAt = time.Now()
}

func (c *AlignmentController) setDetectionsLocked(objects []entity.DetectedObject, transcript string) {
	c.state.Detections = cloneObjects(objects)
	matched := guidance.MatchByTranscript(c.state.Detections, transcript)
	c.state.Matched = matched
	c.state.Covered = guidance.FilterByCoverage(matched, c.evaluator.Target, c.evaluator.Threshold)
}

func (c *AlignmentController) snapshotLocked() entity.GuidanceState {
	s := c.state
	s.Detections = cloneObjects(c.state.Detections)
	s.Matched = cloneObjects(c.state.Matched)
	s.Covered = cloneObjects(c.state.Covered)
	return s
}

func (c *AlignmentController) latestTranscript() string {
	if c.transcript == nil {
		return ""
	}
	return c.transcript.Latest()
}

func (c *AlignmentController) notify(ctx context.Context, state entity.GuidanceState) {
	if c.notifier != nil {
		c.notifier.NotifyGuidance(ctx, state)
	}
}

func cloneObjects(objects []entity.DetectedObject) []entity.DetectedObject {
	out := make([]entity.DetectedObject, 0, len(objects))
	for _, o := range objects {
		o.BoundingPoly.NormalizedVertices = append(geometry.Polygon(nil), o.BoundingPoly.NormalizedVertices...)
		out = append(out, o)
	}
	return out
}
