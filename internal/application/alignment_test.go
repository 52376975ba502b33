package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"frame-guide/internal/domain/entity"
	"frame-guide/internal/domain/geometry"
	"frame-guide/internal/domain/guidance"
	"frame-guide/internal/domain/port"
)

var vga = entity.FrameDimensions{Width: 640, Height: 480}

func newController(transcript string, notifier port.GuidanceNotifier) *AlignmentController {
	evaluator := guidance.NewEvaluator(guidance.DefaultThresholdPercent, guidance.DefaultDeadZone)
	return NewAlignmentController(evaluator, staticTranscript(transcript), notifier)
}

func TestAlignmentController_StartStop(t *testing.T) {
	ctx := context.Background()
	c := newController("", nil)
	require.Equal(t, entity.StatusIdle, c.Snapshot().Status)

	_, ok := c.BeginCycle()
	require.False(t, ok)

	require.True(t, c.Start(ctx))
	require.False(t, c.Start(ctx))
	state := c.Snapshot()
	require.Equal(t, entity.StatusRunning, state.Status)
	require.True(t, state.Running)
	require.NotEmpty(t, state.SessionID)

	require.True(t, c.Stop(ctx))
	require.False(t, c.Stop(ctx))
	require.Equal(t, entity.StatusStopped, c.Snapshot().Status)

	require.True(t, c.Start(ctx))
	require.NotEqual(t, state.SessionID, c.Snapshot().SessionID)
}

func TestAlignmentController_MoveMessage(t *testing.T) {
	ctx := context.Background()
	c := newController("", nil)
	c.Start(ctx)

	cycle, ok := c.BeginCycle()
	require.True(t, ok)
	err := c.OnDetectionResult(ctx, cycle, []entity.DetectedObject{
		object("cup", geometry.Rect(0.0, 0.4, 0.2, 0.6)),
	}, vga)
	require.NoError(t, err)

	state := c.Snapshot()
	require.Equal(t, "Move left", state.LastMessage)
	require.Equal(t, entity.DirectionMoveLeft, state.Direction)
	require.True(t, state.Running)
	require.Equal(t, 1, state.Cycles)
}

func TestAlignmentController_MoveCloser(t *testing.T) {
	ctx := context.Background()
	c := newController("", nil)
	c.Start(ctx)

	cycle, _ := c.BeginCycle()
	require.NoError(t, c.OnDetectionResult(ctx, cycle, []entity.DetectedObject{
		object("cup", geometry.Rect(0.45, 0.45, 0.55, 0.55)),
	}, vga))

	state := c.Snapshot()
	require.Equal(t, entity.MessageMoveCloser, state.LastMessage)
	require.True(t, state.Running)
}

func TestAlignmentController_EmptyDetectionKeepsMessage(t *testing.T) {
	ctx := context.Background()
	c := newController("", nil)
	c.Start(ctx)

	cycle, _ := c.BeginCycle()
	require.NoError(t, c.OnDetectionResult(ctx, cycle, []entity.DetectedObject{
		object("cup", geometry.Rect(0.7, 0.4, 0.9, 0.6)),
	}, vga))
	require.Equal(t, "Move right", c.Snapshot().LastMessage)

	cycle, _ = c.BeginCycle()
	require.NoError(t, c.OnDetectionResult(ctx, cycle, nil, vga))

	state := c.Snapshot()
	require.Equal(t, "Move right", state.LastMessage)
	require.True(t, state.Running)
	require.Empty(t, state.Detections)
	require.Equal(t, 2, state.Cycles)
}

func TestAlignmentController_CenteredAndCoveringStops(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	c := newController("", notifier)
	c.Start(ctx)

	cycle, _ := c.BeginCycle()
	require.NoError(t, c.OnDetectionResult(ctx, cycle, []entity.DetectedObject{
		object("cup", geometry.Rect(0.3, 0.3, 0.7, 0.7)),
	}, vga))

	state := c.Snapshot()
	require.False(t, state.Running)
	require.Equal(t, entity.StatusStopped, state.Status)
	require.Equal(t, "Object is centered and covering 75%", state.LastMessage)
	require.Equal(t, 2, notifier.Count())

	_, ok := c.BeginCycle()
	require.False(t, ok)
}

func TestAlignmentController_LateResultAfterStop(t *testing.T) {
	ctx := context.Background()
	c := newController("", nil)
	c.Start(ctx)

	cycle, ok := c.BeginCycle()
	require.True(t, ok)
	c.Stop(ctx)
	before := c.Snapshot()

	err := c.OnDetectionResult(ctx, cycle, []entity.DetectedObject{
		object("cup", geometry.Rect(0.0, 0.4, 0.2, 0.6)),
	}, vga)
	require.ErrorIs(t, err, ErrCycleDiscarded)

	after := c.Snapshot()
	require.False(t, after.Running)
	require.Equal(t, before.LastMessage, after.LastMessage)
	require.Equal(t, before.Cycles, after.Cycles)
}

func TestAlignmentController_ResultFromPreviousRunDiscarded(t *testing.T) {
	ctx := context.Background()
	c := newController("", nil)
	c.Start(ctx)
	stale, _ := c.BeginCycle()
	c.Stop(ctx)
	c.Start(ctx)

	err := c.OnDetectionResult(ctx, stale, []entity.DetectedObject{
		object("cup", geometry.Rect(0.0, 0.4, 0.2, 0.6)),
	}, vga)
	require.ErrorIs(t, err, ErrCycleDiscarded)
	require.Equal(t, 0, c.Snapshot().Cycles)
}

func TestAlignmentController_Idempotent(t *testing.T) {
	ctx := context.Background()
	c := newController("cup", nil)
	c.Start(ctx)
	objects := []entity.DetectedObject{
		object("chair", geometry.Rect(0.4, 0.0, 0.6, 0.2)),
		object("cup", geometry.Rect(0.45, 0.45, 0.55, 0.55)),
	}

	var messages []string
	for i := 0; i < 3; i++ {
		cycle, ok := c.BeginCycle()
		require.True(t, ok)
		require.NoError(t, c.OnDetectionResult(ctx, cycle, objects, vga))
		state := c.Snapshot()
		require.True(t, state.Running)
		messages = append(messages, state.LastMessage)
	}
	require.Equal(t, []string{entity.MessageMoveCloser, entity.MessageMoveCloser, entity.MessageMoveCloser}, messages)
}

func TestAlignmentController_TranscriptSelectsPrimary(t *testing.T) {
	ctx := context.Background()
	c := newController("show me the bottle", nil)
	c.Start(ctx)

	cycle, _ := c.BeginCycle()
	require.NoError(t, c.OnDetectionResult(ctx, cycle, []entity.DetectedObject{
		object("cup", geometry.Rect(0.3, 0.3, 0.7, 0.7)),
		object("bottle", geometry.Rect(0.4, 0.0, 0.6, 0.2)),
	}, vga))

	state := c.Snapshot()
	require.Equal(t, "Move up", state.LastMessage)
	require.True(t, state.Running)
	require.Len(t, state.Matched, 1)
	require.Equal(t, "bottle", state.Matched[0].Name)
	require.Empty(t, state.Covered)
	require.Len(t, state.Detections, 2)
}

func TestAlignmentController_InvalidPolygon(t *testing.T) {
	ctx := context.Background()
	c := newController("", nil)
	c.Start(ctx)

	cycle, _ := c.BeginCycle()
	err := c.OnDetectionResult(ctx, cycle, []entity.DetectedObject{
		object("cup", geometry.Polygon{{X: 0.1, Y: 0.1}, {X: 0.2, Y: 0.2}}),
	}, vga)
	require.True(t, errors.Is(err, geometry.ErrInvalidPolygon))

	state := c.Snapshot()
	require.True(t, state.Running)
	require.Equal(t, 0, state.Cycles)
	require.Empty(t, state.LastMessage)
}

func TestAlignmentController_ApplyTranscript(t *testing.T) {
	ctx := context.Background()
	c := newController("", nil)
	c.Start(ctx)

	cycle, _ := c.BeginCycle()
	require.NoError(t, c.OnDetectionResult(ctx, cycle, []entity.DetectedObject{
		object("cup", geometry.Rect(0.3, 0.3, 0.7, 0.7)),
		object("book", geometry.Rect(0.0, 0.0, 0.2, 0.2)),
	}, vga))
	require.False(t, c.Snapshot().Running)
	require.Empty(t, c.Snapshot().Matched)

	c.ApplyTranscript(ctx, "the cup")
	state := c.Snapshot()
	require.Len(t, state.Matched, 1)
	require.Len(t, state.Covered, 1)
	require.Equal(t, "cup", state.Covered[0].Name)
	require.Equal(t, entity.StatusStopped, state.Status)
}

func TestAlignmentController_SnapshotIsCopy(t *testing.T) {
	ctx := context.Background()
	c := newController("", nil)
	c.Start(ctx)

	cycle, _ := c.BeginCycle()
	require.NoError(t, c.OnDetectionResult(ctx, cycle, []entity.DetectedObject{
		object("cup", geometry.Rect(0.0, 0.4, 0.2, 0.6)),
	}, vga))

	snap := c.Snapshot()
	snap.Detections[0].Name = "changed"
	snap.Detections[0].BoundingPoly.NormalizedVertices[0].X = 0.99
	snap.Matched = append(snap.Matched, object("phone", geometry.DefaultTargetRegion()))

	fresh := c.Snapshot()
	require.Equal(t, "cup", fresh.Detections[0].Name)
	require.Equal(t, 0.0, fresh.Detections[0].Polygon()[0].X)
	require.Empty(t, fresh.Matched)
}

func TestAlignmentController_DetectionsDetachedFromInput(t *testing.T) {
	ctx := context.Background()
	c := newController("", nil)
	c.Start(ctx)

	objects := []entity.DetectedObject{object("cup", geometry.Rect(0.0, 0.4, 0.2, 0.6))}
	cycle, _ := c.BeginCycle()
	require.NoError(t, c.OnDetectionResult(ctx, cycle, objects, vga))

	objects[0].BoundingPoly.NormalizedVertices[0].X = 0.5
	require.Equal(t, 0.0, c.Snapshot().Detections[0].Polygon()[0].X)
}
