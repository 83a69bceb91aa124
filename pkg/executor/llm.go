package executor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/a2a-go/pkg/a2a"
	"github.com/theapemachine/a2a-go/pkg/provider"
	"github.com/theapemachine/a2a-go/pkg/stores"
)

// LLM is an executor backed by a provider.Interface: it renders the task's
// message history into a single user prompt, calls the model once, and
// completes the task with the model's reply as its sole artifact.
type LLM struct {
	Provider     provider.Interface
	Model        string
	BaseURL      string
	APIKey       string
	SystemPrompt string
}

func NewLLM(p provider.Interface, model string) *LLM {
	return &LLM{
		Provider:     p,
		Model:        model,
		SystemPrompt: "You are a helpful agent participating in the A2A protocol.",
	}
}

func (e *LLM) Execute(ctx context.Context, task a2a.Task, queue EventQueue) error {
	defer close(queue)

	queue.Publish(ctx, stores.StatusEvent{TaskStatusUpdateEvent: a2a.TaskStatusUpdateEvent{
		TaskID: task.ID,
		Status: a2a.TaskStatus{State: a2a.TaskStateWorking, Timestamp: time.Now().UTC()},
	}})

	prompt := renderHistory(task.History)

	reply, err := e.Provider.Chat(ctx, e.SystemPrompt, prompt, e.Model, e.BaseURL, e.APIKey)
	if err != nil {
		log.Error("llm executor generation failed", "task_id", task.ID, "err", err)
		queue.Publish(ctx, stores.StatusEvent{TaskStatusUpdateEvent: a2a.TaskStatusUpdateEvent{
			TaskID: task.ID,
			Status: a2a.TaskStatus{
				State:     a2a.TaskStateFailed,
				Message:   ptrMsg(a2a.NewTextMessage("agent", fmt.Sprintf("generation failed: %v", err))),
				Timestamp: time.Now().UTC(),
			},
			Final: true,
		}})
		return err
	}

	queue.Publish(ctx, stores.ArtifactEvent{TaskArtifactUpdateEvent: a2a.TaskArtifactUpdateEvent{
		TaskID:   task.ID,
		Artifact: a2a.NewTextArtifact(reply),
	}})

	queue.Publish(ctx, stores.StatusEvent{TaskStatusUpdateEvent: a2a.TaskStatusUpdateEvent{
		TaskID: task.ID,
		Status: a2a.TaskStatus{
			State:     a2a.TaskStateCompleted,
			Message:   ptrMsg(a2a.NewTextMessage("agent", reply)),
			Timestamp: time.Now().UTC(),
		},
		Final: true,
	}})
	return nil
}

func (e *LLM) Cancel(ctx context.Context, task a2a.Task, queue EventQueue) error {
	defer close(queue)
	queue.Publish(ctx, stores.StatusEvent{TaskStatusUpdateEvent: a2a.TaskStatusUpdateEvent{
		TaskID: task.ID,
		Status: a2a.TaskStatus{State: a2a.TaskStateCanceled, Timestamp: time.Now().UTC()},
		Final:  true,
	}})
	return nil
}

func renderHistory(history []a2a.Message) string {
	var b strings.Builder
	for _, msg := range history {
		b.WriteString(msg.Role)
		b.WriteString(": ")
		b.WriteString(msg.String())
		b.WriteString("\n")
	}
	return b.String()
}
