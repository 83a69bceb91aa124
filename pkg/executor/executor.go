// Package executor defines the agent executor contract: the boundary
// between the task manager's protocol bookkeeping and whatever actually
// produces a task's output, whether that's an LLM call, a deterministic
// tool, or (in tests) an echo.
package executor

import (
	"context"

	"github.com/theapemachine/a2a-go/pkg/a2a"
	"github.com/theapemachine/a2a-go/pkg/stores"
)

// EventQueue is the channel an executor publishes status and artifact
// updates to while it works; the task manager drains it and mirrors every
// event into the task store.
type EventQueue chan stores.Event

// Publish sends event on the queue, respecting ctx cancellation so a
// canceled task's executor never blocks forever on a full queue no one is
// reading anymore.
func (q EventQueue) Publish(ctx context.Context, event stores.Event) {
	select {
	case q <- event:
	case <-ctx.Done():
	}
}

// Interface is implemented by anything that can execute or cancel a task.
// execute runs until the task reaches a terminal state (or ctx is
// canceled) and must close queue when done; cancel publishes the task's
// terminal canceled status on its own queue and closes it. The
// implementations in this module do not interrupt an Execute call that is
// already running.
type Interface interface {
	Execute(ctx context.Context, task a2a.Task, queue EventQueue) error
	Cancel(ctx context.Context, task a2a.Task, queue EventQueue) error
}
