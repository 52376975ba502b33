package guidance

import (
	"math"

	"frame-guide/internal/domain/entity"
	"frame-guide/internal/domain/geometry"
)

// DefaultDeadZone is the share of each frame axis treated as centered.
const DefaultDeadZone = 0.1

// Classify tells which way to move the camera so that objectCenter
// reaches frameCenter. Both points are in pixel space; the frame is
// assumed to span twice frameCenter on each axis.
//
// An axis is settled while its deviation stays within deadZoneFraction of
// the frame size on that axis. Of the unsettled axes the one with the larger
// deviation is reported; ties go to the horizontal axis.
func Classify(objectCenter, frameCenter geometry.PixelPoint, deadZoneFraction float64) entity.Direction {
	if frameCenter.X <= 0 || frameCenter.Y <= 0 {
		return entity.DirectionUnknown
	}

	d := objectCenter.Sub(frameCenter)
	ax, ay := math.Abs(d.X), math.Abs(d.Y)

	dz := math.Max(0, deadZoneFraction)
	outX := ax > dz*2*frameCenter.X
	outY := ay > dz*2*frameCenter.Y

	switch {
	case !outX && !outY:
		return entity.DirectionCentered
	case outX && (!outY || ax >= ay):
		if d.X < 0 {
			return entity.DirectionMoveLeft
		}
		return entity.DirectionMoveRight
	default:
		if d.Y < 0 {
			return entity.DirectionMoveUp
		}
		return entity.DirectionMoveDown
	}
}
