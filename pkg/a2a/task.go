package a2a

import (
	"fmt"

	"github.com/cohesivestack/valgo"
)

// Task is the central unit of work tracked by the task store. Invariants
// (spec §3): id is unique process-wide, status.timestamp is monotonically
// non-decreasing, once a terminal state is reached no further mutation
// succeeds, and history[0] is the originating user message.
type Task struct {
	ID        string         `json:"id"`
	ContextID *string        `json:"contextId,omitempty"`
	Status    TaskStatus     `json:"status"`
	Artifacts []Artifact     `json:"artifacts,omitempty"`
	History   []Message      `json:"history,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// Validate checks the structural invariants valgo can express cheaply; it
// does not check monotonic timestamps or terminal-state immutability, which
// are store-level invariants enforced by pkg/stores.
func (t Task) Validate() error {
	v := valgo.Is(
		valgo.String(t.ID, "id").Not().Blank(),
		valgo.String(string(t.Status.State), "status.state").Not().Blank(),
	)
	if !v.Valid() {
		return fmt.Errorf("invalid task: %v", v.Errors())
	}
	return nil
}

// TaskSendParams is the payload of tasks/send and tasks/sendSubscribe.
type TaskSendParams struct {
	ID                  string                  `json:"id"`
	SessionID           string                  `json:"sessionId,omitempty"`
	Message             Message                 `json:"message"`
	AcceptedOutputModes []string                `json:"acceptedOutputModes,omitempty"`
	PushNotification    *PushNotificationConfig `json:"pushNotification,omitempty"`
	HistoryLength       *int                    `json:"historyLength,omitempty"`
	Metadata            map[string]any          `json:"metadata,omitempty"`
}

func (p TaskSendParams) Validate() error {
	v := valgo.Is(valgo.String(p.ID, "id").Not().Blank())
	if !v.Valid() {
		return fmt.Errorf("invalid task send params: %v", v.Errors())
	}
	return p.Message.Validate()
}

// TaskIDParams is the payload of tasks/cancel and tasks/pushNotification/get.
type TaskIDParams struct {
	ID       string         `json:"id"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// TaskQueryParams is the payload of tasks/get and tasks/resubscribe.
type TaskQueryParams struct {
	TaskIDParams
	HistoryLength *int `json:"historyLength,omitempty"`
}

// TaskStatusUpdateEvent is sent when the agent wishes to inform the client
// of a status transition.
type TaskStatusUpdateEvent struct {
	TaskID   string         `json:"taskId"`
	Status   TaskStatus     `json:"status"`
	Final    bool           `json:"final"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// TaskArtifactUpdateEvent is emitted when a new or updated artifact is
// available for a task.
type TaskArtifactUpdateEvent struct {
	TaskID   string         `json:"taskId"`
	Artifact Artifact       `json:"artifact"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// PushNotificationConfig binds a callback URL (and optional auth) to a task.
type PushNotificationConfig struct {
	URL            string               `json:"url"`
	Token          *string              `json:"token,omitempty"`
	Authentication *AgentAuthentication `json:"authentication,omitempty"`
}

type TaskPushNotificationConfig struct {
	ID                     string                 `json:"id"`
	PushNotificationConfig PushNotificationConfig `json:"pushNotificationConfig"`
}
