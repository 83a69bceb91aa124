// Package dispatcher implements the host-agent dispatcher: an agent
// registry, a keyword+LLM selection policy over it, and an executor that
// proxies a task to whichever registered remote agent the policy selects.
package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/a2a-go/pkg/a2a"
	"github.com/theapemachine/a2a-go/pkg/catalog"
	"github.com/theapemachine/a2a-go/pkg/client"
	"github.com/theapemachine/a2a-go/pkg/executor"
	"github.com/theapemachine/a2a-go/pkg/stores"
)

// Executor implements executor.Interface by selecting a registered agent
// for the task's latest user message and proxying to it, per spec §4.8's
// proxying rules: prefer streaming when the chosen card declares it, and
// re-serialize the remote's replies as this task's own events.
type Executor struct {
	Registry *catalog.Registry
	Policy   *Policy
}

func NewExecutor(registry *catalog.Registry, policy *Policy) *Executor {
	return &Executor{Registry: registry, Policy: policy}
}

func (e *Executor) Execute(ctx context.Context, task a2a.Task, queue executor.EventQueue) error {
	defer close(queue)

	query := lastUserText(task)
	cards := e.Registry.GetAgents()

	name, confidence, ok := e.Policy.Select(ctx, query, cards)
	if !ok {
		err := fmt.Errorf("no registered agent available to handle request")
		queue.Publish(ctx, stores.StatusEvent{TaskStatusUpdateEvent: a2a.TaskStatusUpdateEvent{
			TaskID: task.ID,
			Status: a2a.TaskStatus{
				State:     a2a.TaskStateFailed,
				Message:   ptr(a2a.NewTextMessage("agent", err.Error())),
				Timestamp: time.Now().UTC(),
			},
			Final: true,
		}})
		return err
	}

	card := e.Registry.GetAgent(name)
	log.Info("dispatcher selected agent", "task_id", task.ID, "agent", name, "confidence", confidence)

	remote := client.NewAgentClient(card)
	queue.Publish(ctx, stores.StatusEvent{TaskStatusUpdateEvent: a2a.TaskStatusUpdateEvent{
		TaskID: task.ID,
		Status: a2a.TaskStatus{State: a2a.TaskStateWorking, Timestamp: time.Now().UTC()},
	}})

	params := a2a.TaskSendParams{ID: task.ID, Message: task.History[len(task.History)-1]}

	if card.Capabilities.Streaming {
		return e.proxyStream(ctx, task.ID, remote, params, queue)
	}
	return e.proxySend(ctx, task.ID, remote, params, queue)
}

func (e *Executor) proxySend(ctx context.Context, taskID string, remote *client.AgentClient, params a2a.TaskSendParams, queue executor.EventQueue) error {
	result, err := remote.SendTask(ctx, params)
	if err != nil {
		queue.Publish(ctx, failedEvent(taskID, err))
		return err
	}

	for _, artifact := range result.Artifacts {
		queue.Publish(ctx, stores.ArtifactEvent{TaskArtifactUpdateEvent: a2a.TaskArtifactUpdateEvent{
			TaskID:   taskID,
			Artifact: artifact,
		}})
	}
	queue.Publish(ctx, stores.StatusEvent{TaskStatusUpdateEvent: a2a.TaskStatusUpdateEvent{
		TaskID: taskID,
		Status: result.Status,
		Final:  true,
	}})
	return nil
}

func (e *Executor) proxyStream(ctx context.Context, taskID string, remote *client.AgentClient, params a2a.TaskSendParams, queue executor.EventQueue) error {
	var streamErr error
	err := remote.StreamTask(ctx, params, func(evt any) {
		switch v := evt.(type) {
		case a2a.TaskArtifactUpdateEvent:
			v.TaskID = taskID
			queue.Publish(ctx, stores.ArtifactEvent{TaskArtifactUpdateEvent: v})
		case a2a.TaskStatusUpdateEvent:
			v.TaskID = taskID
			queue.Publish(ctx, stores.StatusEvent{TaskStatusUpdateEvent: v})
		}
	})
	if err != nil {
		streamErr = err
		queue.Publish(ctx, failedEvent(taskID, err))
	}
	return streamErr
}

func (e *Executor) Cancel(ctx context.Context, task a2a.Task, queue executor.EventQueue) error {
	defer close(queue)
	queue.Publish(ctx, stores.StatusEvent{TaskStatusUpdateEvent: a2a.TaskStatusUpdateEvent{
		TaskID: task.ID,
		Status: a2a.TaskStatus{State: a2a.TaskStateCanceled, Timestamp: time.Now().UTC()},
		Final:  true,
	}})
	return nil
}

func lastUserText(task a2a.Task) string {
	for i := len(task.History) - 1; i >= 0; i-- {
		if task.History[i].Role == "user" {
			return task.History[i].String()
		}
	}
	return ""
}

func failedEvent(taskID string, err error) stores.StatusEvent {
	return stores.StatusEvent{TaskStatusUpdateEvent: a2a.TaskStatusUpdateEvent{
		TaskID: taskID,
		Status: a2a.TaskStatus{
			State:     a2a.TaskStateFailed,
			Message:   ptr(a2a.NewTextMessage("agent", fmt.Sprintf("dispatch failed: %v", err))),
			Timestamp: time.Now().UTC(),
		},
		Final: true,
	}}
}

func ptr(m a2a.Message) *a2a.Message { return &m }
