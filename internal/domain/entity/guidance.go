package entity

import "time"

// RunStatus is the alignment loop state.
type RunStatus string

const (
	StatusIdle    RunStatus = "idle"    // no session yet
	StatusRunning RunStatus = "running" // loop requests detections
	StatusStopped RunStatus = "stopped" // loop halted, last message kept
)

// GuidanceState is the alignment controller's state as seen by the UI.
type GuidanceState struct {
	SessionID   string           `json:"session_id,omitempty"`
	Status      RunStatus        `json:"status"`
	Running     bool             `json:"running"`
	LastMessage string           `json:"last_message"`
	Direction   Direction        `json:"direction,omitempty"`
	Coverage    float64          `json:"coverage"`
	Frame       FrameDimensions  `json:"frame"`
	Detections  []DetectedObject `json:"detections"`
	Matched     []DetectedObject `json:"matched"`
	Covered     []DetectedObject `json:"covered"`
	Cycles      int              `json:"cycles"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// DisplayMessage returns the message to show, falling back to a neutral
// text when no guidance has been produced yet.
func (s GuidanceState) DisplayMessage() string {
	if s.LastMessage == "" {
		return MessageUnableToDetect
	}
	return s.LastMessage
}

// Verdict is the outcome of evaluating one primary object against the target region.
type Verdict struct {
	Object    DetectedObject `json:"object"`
	Direction Direction      `json:"direction"`
	Coverage  float64        `json:"coverage"`
	Covering  bool           `json:"covering"`
	Done      bool           `json:"done"`
	Message   string         `json:"message"`
}
