package port

import (
	"context"

	"frame-guide/internal/domain/entity"
)

// Camera is the capture surface.
type Camera interface {
	// CaptureFrame grabs one still image. A nil frame with a nil error
	// means the surface is not ready yet.
	CaptureFrame(ctx context.Context) (*entity.Frame, error)

	// FrameDimensions returns the current surface size, zero if unknown
	FrameDimensions() entity.FrameDimensions
}

// TranscriptReader exposes the latest finalized transcript.
type TranscriptReader interface {
	Latest() string
}

// GuidanceNotifier receives every guidance state change.
type GuidanceNotifier interface {
	NotifyGuidance(ctx context.Context, state entity.GuidanceState)
}

// FramePreparer decodes an encoded image into a frame ready for detection.
type FramePreparer interface {
	PrepareFrame(data []byte) (*entity.Frame, error)
}
