// Package tasks implements the task manager: the per-method handlers that
// validate a request, drive a task through the store, invoke the agent
// executor, and relay push notifications, per the protocol's handler
// skeleton (validate -> upsert task -> transition to working -> invoke
// executor -> collect events -> update store -> send push notification ->
// return).
package tasks

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/theapemachine/a2a-go/pkg/a2a"
	"github.com/theapemachine/a2a-go/pkg/errors"
	"github.com/theapemachine/a2a-go/pkg/executor"
	"github.com/theapemachine/a2a-go/pkg/push"
	"github.com/theapemachine/a2a-go/pkg/stores"
)

// Manager implements every tasks/* JSON-RPC method. It is the single
// component that knows how to turn a protocol request into task-store
// mutations, executor invocations, and (optionally) push deliveries.
type Manager struct {
	Store    stores.TaskStore
	Executor executor.Interface
	Notifier *push.Notifier
}

func NewManager(store stores.TaskStore, exec executor.Interface, notifier *push.Notifier) *Manager {
	return &Manager{Store: store, Executor: exec, Notifier: notifier}
}

// SendTask implements tasks/send: it runs the executor to completion before
// returning, so the response carries the task's final state. Per the
// protocol's round-trip/idempotence guarantee, a second tasks/send against
// an already-terminal task id is not an error: it short-circuits and
// returns the stored task unchanged.
func (m *Manager) SendTask(ctx context.Context, params a2a.TaskSendParams) (a2a.Task, *errors.RpcError) {
	task, terminal, rpcErr := m.upsert(ctx, params)
	if rpcErr != nil {
		return a2a.Task{}, rpcErr
	}
	if terminal {
		return task, nil
	}

	queue := make(executor.EventQueue, 16)
	go func() {
		if err := m.Executor.Execute(ctx, task, queue); err != nil {
			log.Error("executor returned error", "task_id", task.ID, "err", err)
		}
	}()

	var final a2a.Task
	for evt := range queue {
		final = m.apply(ctx, task.ID, evt)
	}

	m.notify(ctx, task.ID, final)
	return final, nil
}

// StreamTask implements tasks/sendSubscribe: it starts the executor and
// returns immediately with a live subscription. A background goroutine
// applies each executor event to the store and enqueues it to the task's
// subscribers; the caller (transport layer) is responsible for draining the
// returned subscription and calling its cancel func.
func (m *Manager) StreamTask(ctx context.Context, params a2a.TaskSendParams) (a2a.Task, <-chan stores.Event, func(), *errors.RpcError) {
	task, terminal, rpcErr := m.upsert(ctx, params)
	if rpcErr != nil {
		return a2a.Task{}, nil, nil, rpcErr
	}
	if terminal {
		ch := make(chan stores.Event, 1)
		ch <- stores.StatusEvent{TaskStatusUpdateEvent: a2a.TaskStatusUpdateEvent{
			TaskID: task.ID,
			Status: task.Status,
			Final:  true,
		}}
		close(ch)
		return task, ch, func() {}, nil
	}

	sub, cancel := m.Store.Subscribe(ctx, task.ID)

	// Broadcast the working transition upsert already committed to the
	// store, so subscribers see it as a proper TaskStatusUpdateEvent
	// instead of only observing it via the task snapshot returned here.
	workingEvt := stores.StatusEvent{TaskStatusUpdateEvent: a2a.TaskStatusUpdateEvent{
		TaskID: task.ID,
		Status: task.Status,
		Final:  false,
	}}
	_ = m.Store.EnqueueEvent(ctx, task.ID, workingEvt)

	queue := make(executor.EventQueue, 16)
	go func() {
		if err := m.Executor.Execute(ctx, task, queue); err != nil {
			log.Error("executor returned error", "task_id", task.ID, "err", err)
		}
	}()

	go func() {
		for evt := range queue {
			final := m.apply(ctx, task.ID, evt)
			_ = m.Store.EnqueueEvent(ctx, task.ID, evt)
			if isFinal(evt) {
				m.notify(ctx, task.ID, final)
			}
		}
	}()

	return task, sub, cancel, nil
}

func (m *Manager) GetTask(ctx context.Context, params a2a.TaskQueryParams) (a2a.Task, *errors.RpcError) {
	task, ok := m.Store.GetTask(ctx, params.ID, params.HistoryLength)
	if !ok {
		return a2a.Task{}, errors.ErrTaskNotFound
	}
	return task, nil
}

// CancelTask implements tasks/cancel. Only non-terminal tasks are
// cancelable.
func (m *Manager) CancelTask(ctx context.Context, id string) (a2a.Task, *errors.RpcError) {
	task, ok := m.Store.GetTask(ctx, id, nil)
	if !ok {
		return a2a.Task{}, errors.ErrTaskNotFound
	}
	if task.Status.State.Terminal() {
		return a2a.Task{}, errors.ErrTaskNotCancelable
	}

	queue := make(executor.EventQueue, 4)
	go func() {
		if err := m.Executor.Cancel(ctx, task, queue); err != nil {
			log.Error("executor cancel returned error", "task_id", task.ID, "err", err)
		}
	}()

	var final a2a.Task
	for evt := range queue {
		final = m.apply(ctx, task.ID, evt)
		_ = m.Store.EnqueueEvent(ctx, task.ID, evt)
	}
	m.notify(ctx, task.ID, final)
	return final, nil
}

// Resubscribe implements tasks/resubscribe. If the task already reached a
// terminal state, a single synthetic final event carrying that state is
// delivered immediately and the subscription closes, since there will never
// be another live event to wait for.
func (m *Manager) Resubscribe(ctx context.Context, params a2a.TaskQueryParams) (a2a.Task, <-chan stores.Event, func(), *errors.RpcError) {
	task, ok := m.Store.GetTask(ctx, params.ID, params.HistoryLength)
	if !ok {
		return a2a.Task{}, nil, nil, errors.ErrTaskNotFound
	}

	if task.Status.State.Terminal() {
		ch := make(chan stores.Event, 1)
		ch <- stores.StatusEvent{TaskStatusUpdateEvent: a2a.TaskStatusUpdateEvent{
			TaskID: task.ID,
			Status: task.Status,
			Final:  true,
		}}
		close(ch)
		return task, ch, func() {}, nil
	}

	sub, cancel := m.Store.Subscribe(ctx, task.ID)
	return task, sub, cancel, nil
}

func (m *Manager) SetPushNotification(ctx context.Context, cfg a2a.TaskPushNotificationConfig) (a2a.TaskPushNotificationConfig, *errors.RpcError) {
	if _, ok := m.Store.GetTask(ctx, cfg.ID, nil); !ok {
		return a2a.TaskPushNotificationConfig{}, errors.ErrTaskNotFound
	}
	if m.Notifier == nil {
		return a2a.TaskPushNotificationConfig{}, errors.ErrPushNotificationsUnsupported
	}

	ok, err := push.VerifyReceiverURL(ctx, nil, cfg.PushNotificationConfig.URL)
	if err != nil || !ok {
		return a2a.TaskPushNotificationConfig{}, errors.ErrInvalidParams.WithMessagef("receiver URL could not be verified")
	}

	if err := m.Store.SetPushNotification(ctx, cfg.ID, cfg.PushNotificationConfig); err != nil {
		return a2a.TaskPushNotificationConfig{}, errors.ErrInternal
	}
	return cfg, nil
}

func (m *Manager) GetPushNotification(ctx context.Context, id string) (a2a.TaskPushNotificationConfig, *errors.RpcError) {
	cfg, ok := m.Store.GetPushNotification(ctx, id)
	if !ok {
		return a2a.TaskPushNotificationConfig{}, errors.ErrPushNotificationsUnsupported
	}
	return a2a.TaskPushNotificationConfig{ID: id, PushNotificationConfig: cfg}, nil
}

// upsert validates params, creates or reuses the task, and transitions it
// to working before invocation, per the handler skeleton. Per the
// protocol's round-trip/idempotence guarantee, sending against an
// already-terminal task id is not an error: terminal is true and task is
// the stored task returned unchanged, with no working transition applied.
func (m *Manager) upsert(ctx context.Context, params a2a.TaskSendParams) (task a2a.Task, terminal bool, rpcErr *errors.RpcError) {
	if err := params.Validate(); err != nil {
		return a2a.Task{}, false, errors.ErrInvalidParams.WithMessagef("%v", err)
	}

	task, ok := m.Store.GetTask(ctx, params.ID, nil)
	if !ok {
		if params.SessionID == "" {
			params.SessionID = uuid.NewString()
		}
		task = a2a.Task{
			ID:      params.ID,
			Status:  a2a.TaskStatus{State: a2a.TaskStateSubmitted, Timestamp: time.Now().UTC()},
			History: []a2a.Message{params.Message},
		}
		if err := m.Store.UpsertTask(ctx, task); err != nil {
			return a2a.Task{}, false, errors.ErrInternal
		}
	} else if task.Status.State == a2a.TaskStateInputReq {
		// Same task id continuing an input-required round trip: append the
		// new message and resume rather than starting a fresh task.
		if err := m.Store.AppendHistory(ctx, params.ID, params.Message); err != nil {
			return a2a.Task{}, false, errors.ErrInternal
		}
		task.History = append(task.History, params.Message)
	} else if task.Status.State.Terminal() {
		return task, true, nil
	}

	working, err := m.Store.UpdateStatus(ctx, params.ID, a2a.TaskStatus{State: a2a.TaskStateWorking, Timestamp: time.Now().UTC()})
	if err != nil {
		return a2a.Task{}, false, errors.ErrInternal
	}
	return working, false, nil
}

func (m *Manager) apply(ctx context.Context, taskID string, evt stores.Event) a2a.Task {
	var (
		task a2a.Task
		err  error
	)
	switch e := evt.(type) {
	case stores.StatusEvent:
		task, err = m.Store.UpdateStatus(ctx, taskID, e.Status)
	case stores.ArtifactEvent:
		task, err = m.Store.ApplyArtifact(ctx, taskID, e.Artifact)
	}
	if err != nil {
		log.Error("failed to apply task event", "task_id", taskID, "err", err)
	}
	return task
}

func (m *Manager) notify(ctx context.Context, taskID string, task a2a.Task) {
	if m.Notifier == nil {
		return
	}
	cfg, ok := m.Store.GetPushNotification(ctx, taskID)
	if !ok {
		return
	}
	go func() {
		if err := m.Notifier.Notify(context.Background(), cfg, task); err != nil {
			log.Warn("push notification delivery failed", "task_id", taskID, "err", err)
		}
	}()
}

func isFinal(evt stores.Event) bool {
	switch e := evt.(type) {
	case stores.StatusEvent:
		return e.Final
	default:
		return false
	}
}
