package entity

// Direction is the way the user should move the camera.
type Direction string

const (
	DirectionUnknown   Direction = "unknown"    // frame size not known
	DirectionCentered  Direction = "centered"   // inside the dead zone
	DirectionMoveLeft  Direction = "move_left"  // object left of center
	DirectionMoveRight Direction = "move_right" // object right of center
	DirectionMoveUp    Direction = "move_up"    // object above center
	DirectionMoveDown  Direction = "move_down"  // object below center
)

// Guidance texts shown to the user.
const (
	MessageCentered       = "Object is centered"
	MessageMoveCloser     = "Move closer"
	MessageUnableToDetect = "Unable to detect object"
)

// Message returns the human-readable form of d.
func (d Direction) Message() string {
	switch d {
	case DirectionCentered:
		return MessageCentered
	case DirectionMoveLeft:
		return "Move left"
	case DirectionMoveRight:
		return "Move right"
	case DirectionMoveUp:
		return "Move up"
	case DirectionMoveDown:
		return "Move down"
	default:
		return MessageUnableToDetect
	}
}

// Opposite returns the direction mirrored across the frame center.
func (d Direction) Opposite() Direction {
	switch d {
	case DirectionMoveLeft:
		return DirectionMoveRight
	case DirectionMoveRight:
		return DirectionMoveLeft
	case DirectionMoveUp:
		return DirectionMoveDown
	case DirectionMoveDown:
		return DirectionMoveUp
	default:
		return d
	}
}
