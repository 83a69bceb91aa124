// Package stores implements the task store: the single place task state is
// created, transitioned, and fanned out to subscribers. Every mutation flows
// through one task's mutex so that history/status/artifact updates are never
// observed half-applied.
package stores

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/theapemachine/a2a-go/pkg/a2a"
)

// subscriberQueueSize bounds how many undelivered events a single SSE
// subscriber may accumulate before it is considered too slow and dropped.
const subscriberQueueSize = 32

// Event is whatever the task store enqueues to subscribers: either a status
// update or an artifact update, matching spec §4.3/§4.4.
type Event interface {
	isTaskEvent()
}

type StatusEvent struct{ a2a.TaskStatusUpdateEvent }
type ArtifactEvent struct{ a2a.TaskArtifactUpdateEvent }

func (StatusEvent) isTaskEvent()   {}
func (ArtifactEvent) isTaskEvent() {}

// TaskStore is the contract the task manager and transport layer depend on.
// Implementations must be safe for concurrent use across goroutines.
type TaskStore interface {
	UpsertTask(ctx context.Context, task a2a.Task) error
	GetTask(ctx context.Context, id string, historyLength *int) (a2a.Task, bool)
	UpdateStatus(ctx context.Context, id string, status a2a.TaskStatus) (a2a.Task, error)
	ApplyArtifact(ctx context.Context, id string, artifact a2a.Artifact) (a2a.Task, error)
	AppendHistory(ctx context.Context, id string, msg a2a.Message) error

	SetPushNotification(ctx context.Context, id string, cfg a2a.PushNotificationConfig) error
	GetPushNotification(ctx context.Context, id string) (a2a.PushNotificationConfig, bool)
	HasPushNotification(ctx context.Context, id string) bool

	Subscribe(ctx context.Context, id string) (<-chan Event, func())
	EnqueueEvent(ctx context.Context, id string, event Event) error
}

type taskRecord struct {
	mu          sync.Mutex
	task        a2a.Task
	push        *a2a.PushNotificationConfig
	subscribers map[chan Event]struct{}
	// chunkBuf accumulates an in-flight chunked artifact keyed by ArtifactID
	// until LastChunk=true, per spec §4.3.
	chunkBuf map[string]*a2a.Artifact
}

// InMemoryTaskStore is the default TaskStore: one taskRecord per task id,
// guarded by its own mutex, registered in a top-level map.
type InMemoryTaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*taskRecord
}

func NewInMemoryTaskStore() *InMemoryTaskStore {
	return &InMemoryTaskStore{tasks: make(map[string]*taskRecord)}
}

func (s *InMemoryTaskStore) record(id string) (*taskRecord, bool) {
	s.mu.RLock()
	r, ok := s.tasks[id]
	s.mu.RUnlock()
	return r, ok
}

func (s *InMemoryTaskStore) UpsertTask(ctx context.Context, task a2a.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.tasks[task.ID]; ok {
		r.mu.Lock()
		task.History = append(r.task.History, task.History...)
		r.task = task
		r.mu.Unlock()
		return nil
	}

	s.tasks[task.ID] = &taskRecord{
		task:        task,
		subscribers: make(map[chan Event]struct{}),
		chunkBuf:    make(map[string]*a2a.Artifact),
	}
	return nil
}

func (s *InMemoryTaskStore) GetTask(ctx context.Context, id string, historyLength *int) (a2a.Task, bool) {
	r, ok := s.record(id)
	if !ok {
		return a2a.Task{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := r.task
	if historyLength != nil && *historyLength >= 0 && *historyLength < len(out.History) {
		if *historyLength == 0 {
			out.History = nil
		} else {
			out.History = out.History[len(out.History)-*historyLength:]
		}
	}
	return out, true
}

func (s *InMemoryTaskStore) UpdateStatus(ctx context.Context, id string, status a2a.TaskStatus) (a2a.Task, error) {
	r, ok := s.record(id)
	if !ok {
		return a2a.Task{}, fmt.Errorf("task %s not found", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.task.Status.State.Terminal() {
		return a2a.Task{}, fmt.Errorf("task %s is already in terminal state %s", id, r.task.Status.State)
	}

	if status.Timestamp.IsZero() {
		status.Timestamp = time.Now().UTC()
	}
	r.task.Status = status
	if status.Message != nil {
		r.task.History = append(r.task.History, *status.Message)
	}
	return r.task, nil
}

// ApplyArtifact assembles chunked artifacts per spec §4.3: append=false and
// !lastChunk opens an accumulator, append=true extends it, lastChunk=true
// finalizes and clears it; a non-chunked artifact (append/lastChunk both
// nil) is applied directly.
func (s *InMemoryTaskStore) ApplyArtifact(ctx context.Context, id string, artifact a2a.Artifact) (a2a.Task, error) {
	r, ok := s.record(id)
	if !ok {
		return a2a.Task{}, fmt.Errorf("task %s not found", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case artifact.IsChunkStart():
		cp := artifact
		r.chunkBuf[artifact.ArtifactID] = &cp
		return r.task, nil

	case artifact.IsAppend():
		buf, buffering := r.chunkBuf[artifact.ArtifactID]
		if !buffering {
			cp := artifact
			buf = &cp
			r.chunkBuf[artifact.ArtifactID] = buf
		} else {
			buf.Parts = append(buf.Parts, artifact.Parts...)
		}
		if artifact.IsLastChunk() {
			r.upsertArtifactLocked(*buf)
			delete(r.chunkBuf, artifact.ArtifactID)
		}
		return r.task, nil

	default:
		r.upsertArtifactLocked(artifact)
		return r.task, nil
	}
}

func (r *taskRecord) upsertArtifactLocked(artifact a2a.Artifact) {
	for i, existing := range r.task.Artifacts {
		if existing.ArtifactID == artifact.ArtifactID {
			r.task.Artifacts[i] = artifact
			return
		}
	}
	r.task.Artifacts = append(r.task.Artifacts, artifact)
}

func (s *InMemoryTaskStore) AppendHistory(ctx context.Context, id string, msg a2a.Message) error {
	r, ok := s.record(id)
	if !ok {
		return fmt.Errorf("task %s not found", id)
	}
	r.mu.Lock()
	r.task.History = append(r.task.History, msg)
	r.mu.Unlock()
	return nil
}

func (s *InMemoryTaskStore) SetPushNotification(ctx context.Context, id string, cfg a2a.PushNotificationConfig) error {
	r, ok := s.record(id)
	if !ok {
		return fmt.Errorf("task %s not found", id)
	}
	r.mu.Lock()
	r.push = &cfg
	r.mu.Unlock()
	return nil
}

func (s *InMemoryTaskStore) GetPushNotification(ctx context.Context, id string) (a2a.PushNotificationConfig, bool) {
	r, ok := s.record(id)
	if !ok || r.push == nil {
		return a2a.PushNotificationConfig{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.push == nil {
		return a2a.PushNotificationConfig{}, false
	}
	return *r.push, true
}

func (s *InMemoryTaskStore) HasPushNotification(ctx context.Context, id string) bool {
	_, ok := s.GetPushNotification(ctx, id)
	return ok
}

// Subscribe registers a new event channel for id and returns it along with a
// cancel func that unregisters and drains it. The channel is buffered;
// EnqueueEvent drops the slowest subscriber rather than blocking the
// producer when a consumer falls behind (spec §5 backpressure).
func (s *InMemoryTaskStore) Subscribe(ctx context.Context, id string) (<-chan Event, func()) {
	r, ok := s.record(id)
	if !ok {
		ch := make(chan Event)
		close(ch)
		return ch, func() {}
	}

	ch := make(chan Event, subscriberQueueSize)

	r.mu.Lock()
	r.subscribers[ch] = struct{}{}
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		if _, ok := r.subscribers[ch]; ok {
			delete(r.subscribers, ch)
			close(ch)
		}
		r.mu.Unlock()
	}
	return ch, cancel
}

func (s *InMemoryTaskStore) EnqueueEvent(ctx context.Context, id string, event Event) error {
	r, ok := s.record(id)
	if !ok {
		return fmt.Errorf("task %s not found", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for ch := range r.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber's queue is full: it is the slowest consumer, so it
			// is dropped with a terminal error rather than blocking the
			// single producer for every other subscriber.
			delete(r.subscribers, ch)
			// Discard the oldest undelivered event to make room for the
			// terminal one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- StatusEvent{a2a.TaskStatusUpdateEvent{
				TaskID: id,
				Status: a2a.TaskStatus{State: a2a.TaskStateFailed, Timestamp: time.Now().UTC()},
				Final:  true,
			}}:
			default:
			}
			close(ch)
		}
	}
	return nil
}
