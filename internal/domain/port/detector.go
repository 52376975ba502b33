package port

import (
	"context"
	"errors"

	"frame-guide/internal/domain/entity"
)

// ErrDetectionTransport wraps every failure to reach or decode the detection service.
var ErrDetectionTransport = errors.New("detection transport error")

// ObjectDetector is the external object-detection service.
type ObjectDetector interface {
	// Detect returns the labeled polygons found in frame, possibly none
	Detect(ctx context.Context, frame *entity.Frame) ([]entity.DetectedObject, error)
}
