// Package guidance turns detection polygons into framing decisions:
// target coverage, camera movement and transcript matching.
package guidance

import (
	"frame-guide/internal/domain/entity"
	"frame-guide/internal/domain/geometry"
)

// DefaultThresholdPercent is the target coverage needed to finish framing.
const DefaultThresholdPercent = 75

// Coverage returns the percentage of reference covered by subject, in [0,100].
func Coverage(subject, reference geometry.Polygon) float64 {
	return geometry.OverlapFraction(subject, reference) * 100
}

// tolerance absorbs rounding from clipping so full containment reads as 100%.
const tolerance = 1e-9

// IsCovering reports whether subject covers at least thresholdPercent of reference.
// An empty or malformed subject never covers.
func IsCovering(subject, reference geometry.Polygon, thresholdPercent float64) bool {
	if len(subject) < geometry.MinVertices {
		return false
	}
	return Coverage(subject, reference)+tolerance >= thresholdPercent
}

// FilterByCoverage keeps the objects whose polygon covers the target region.
func FilterByCoverage(objects []entity.DetectedObject, target geometry.Polygon, thresholdPercent float64) []entity.DetectedObject {
	out := make([]entity.DetectedObject, 0, len(objects))
	for _, obj := range objects {
		if IsCovering(obj.Polygon(), target, thresholdPercent) {
			out = append(out, obj)
		}
	}
	return out
}
