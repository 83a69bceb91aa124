package a2a

import "time"

// TaskState enumerates the mutually-exclusive states a task may be in.
// "unknown" is reserved for restore-time degradation and is never produced
// by a live transition.
type TaskState string

const (
	TaskStateSubmitted  TaskState = "submitted"
	TaskStateWorking    TaskState = "working"
	TaskStateInputReq   TaskState = "input-required"
	TaskStateCompleted  TaskState = "completed"
	TaskStateCanceled   TaskState = "canceled"
	TaskStateFailed     TaskState = "failed"
	TaskStateUnknown    TaskState = "unknown"
)

// Terminal reports whether the state admits no further transitions.
func (s TaskState) Terminal() bool {
	switch s {
	case TaskStateCompleted, TaskStateCanceled, TaskStateFailed:
		return true
	default:
		return false
	}
}

type TaskStatus struct {
	State     TaskState `json:"state"`
	Message   *Message  `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
