package app

import (
	"context"
	"errors"
	"fmt"

	"frame-guide/internal/domain/entity"
	"frame-guide/internal/domain/guidance"
	"frame-guide/internal/domain/port"
)

// PhotoService evaluates a single still photo without touching the live session.
type PhotoService struct {
	detector   port.ObjectDetector
	preparer   port.FramePreparer
	evaluator  *guidance.Evaluator
	transcript port.TranscriptReader
}

// PhotoAssessment holds the detections for one photo and the verdict for
// its primary object. Verdict is nil when nothing was detected.
type PhotoAssessment struct {
	Frame      entity.FrameDimensions
	Detections []entity.DetectedObject
	Matched    []entity.DetectedObject
	Verdict    *entity.Verdict
}

// Message returns the guidance text for the photo.
func (a *PhotoAssessment) Message() string {
	if a.Verdict == nil {
		return entity.MessageUnableToDetect
	}
	return a.Verdict.Message
}

// NewPhotoService creates the service. transcript may be nil.
func NewPhotoService(detector port.ObjectDetector, preparer port.FramePreparer, evaluator *guidance.Evaluator, transcript port.TranscriptReader) *PhotoService {
	return &PhotoService{
		detector:   detector,
		preparer:   preparer,
		evaluator:  evaluator,
		transcript: transcript,
	}
}

// Assess decodes photo, runs detection and evaluates the primary object.
func (s *PhotoService) Assess(ctx context.Context, photo []byte) (*PhotoAssessment, error) {
	if s.detector == nil {
		return nil, errors.New("detector is not configured")
	}
	if s.preparer == nil {
		return nil, errors.New("frame preparer is not configured")
	}

	frame, err := s.preparer.PrepareFrame(photo)
	if err != nil {
		return nil, fmt.Errorf("prepare photo: %w", err)
	}

	objects, err := s.detector.Detect(ctx, frame)
	if err != nil {
		return nil, err
	}

	var transcript string
	if s.transcript != nil {
		transcript = s.transcript.Latest()
	}

	out := &PhotoAssessment{
		Frame:      frame.Dimensions,
		Detections: objects,
		Matched:    guidance.MatchByTranscript(objects, transcript),
	}

	primary, ok := guidance.SelectPrimary(objects, transcript)
	if !ok {
		return out, nil
	}
	v, err := s.evaluator.Evaluate(primary, frame.Dimensions)
	if err != nil {
		return nil, err
	}
	out.Verdict = &v
	return out, nil
}
