package executor

import (
	"context"
	"time"

	"github.com/theapemachine/a2a-go/pkg/a2a"
	"github.com/theapemachine/a2a-go/pkg/stores"
)

// Echo is a reference executor that reflects the incoming message back as
// the task's sole artifact. `a2a-go serve --agent-type echo` selects it; it
// is useful for protocol-conformance testing independent of any model
// backend.
type Echo struct{}

func (Echo) Execute(ctx context.Context, task a2a.Task, queue EventQueue) error {
	defer close(queue)

	text := task.History[len(task.History)-1].String()

	queue.Publish(ctx, stores.ArtifactEvent{TaskArtifactUpdateEvent: a2a.TaskArtifactUpdateEvent{
		TaskID:   task.ID,
		Artifact: a2a.NewTextArtifact(text),
	}})

	queue.Publish(ctx, stores.StatusEvent{TaskStatusUpdateEvent: a2a.TaskStatusUpdateEvent{
		TaskID: task.ID,
		Status: a2a.TaskStatus{
			State:     a2a.TaskStateCompleted,
			Message:   ptrMsg(a2a.NewTextMessage("agent", text)),
			Timestamp: time.Now().UTC(),
		},
		Final: true,
	}})
	return nil
}

func (Echo) Cancel(ctx context.Context, task a2a.Task, queue EventQueue) error {
	defer close(queue)
	queue.Publish(ctx, stores.StatusEvent{TaskStatusUpdateEvent: a2a.TaskStatusUpdateEvent{
		TaskID: task.ID,
		Status: a2a.TaskStatus{State: a2a.TaskStateCanceled, Timestamp: time.Now().UTC()},
		Final:  true,
	}})
	return nil
}

func ptrMsg(m a2a.Message) *a2a.Message { return &m }
