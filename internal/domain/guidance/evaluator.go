package guidance

import (
	"fmt"
	"strconv"

	"frame-guide/internal/domain/entity"
	"frame-guide/internal/domain/geometry"
)

// Evaluator judges one detected object against a fixed target region.
type Evaluator struct {
	Target    geometry.Polygon
	Threshold float64 // coverage percent needed to finish
	DeadZone  float64 // share of each axis treated as centered
}

// NewEvaluator creates an evaluator for the default target region.
func NewEvaluator(threshold, deadZone float64) *Evaluator {
	return &Evaluator{
		Target:    geometry.DefaultTargetRegion(),
		Threshold: threshold,
		DeadZone:  deadZone,
	}
}

// DoneMessage is the guidance text once the object is framed.
func (e *Evaluator) DoneMessage() string {
	return fmt.Sprintf("Object is centered and covering %s%%", strconv.FormatFloat(e.Threshold, 'f', -1, 64))
}

// Evaluate computes direction and coverage of obj for a frame of size dims.
// Coverage only decides the outcome once the object is centered.
func (e *Evaluator) Evaluate(obj entity.DetectedObject, dims entity.FrameDimensions) (entity.Verdict, error) {
	center, err := geometry.Centroid(obj.Polygon(), float64(dims.Width), float64(dims.Height))
	if err != nil {
		return entity.Verdict{}, fmt.Errorf("centroid of %q: %w", obj.Name, err)
	}

	v := entity.Verdict{
		Object:    obj,
		Direction: Classify(center, dims.Center(), e.DeadZone),
		Coverage:  Coverage(obj.Polygon(), e.Target),
	}
	v.Covering = IsCovering(obj.Polygon(), e.Target, e.Threshold)

	switch {
	case v.Direction != entity.DirectionCentered:
		v.Message = v.Direction.Message()
	case v.Covering:
		v.Done = true
		v.Message = e.DoneMessage()
	default:
		v.Message = entity.MessageMoveCloser
	}
	return v, nil
}
