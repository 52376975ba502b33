package entity

import (
	"time"

	"frame-guide/internal/domain/geometry"
)

// BoundingPoly is the detector's polygon wrapper in normalized space.
type BoundingPoly struct {
	NormalizedVertices geometry.Polygon `json:"normalizedVertices"`
}

// DetectedObject is one labeled polygon returned by the detector.
type DetectedObject struct {
	Name         string       `json:"name"`
	Score        float64      `json:"score"`
	BoundingPoly BoundingPoly `json:"boundingPoly"`
}

// Polygon returns the object's bounding polygon.
func (o DetectedObject) Polygon() geometry.Polygon {
	return o.BoundingPoly.NormalizedVertices
}

// FrameDimensions is the capture surface size in pixels.
type FrameDimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// IsZero reports whether the dimensions are not known yet.
func (d FrameDimensions) IsZero() bool {
	return d.Width <= 0 || d.Height <= 0
}

// Center returns the frame center in pixel space.
func (d FrameDimensions) Center() geometry.PixelPoint {
	return geometry.PixelPoint{X: float64(d.Width) / 2, Y: float64(d.Height) / 2}
}

// Frame is one captured still image with the dimensions it was captured at.
type Frame struct {
	Data       []byte
	Dimensions FrameDimensions
	CapturedAt time.Time
}
