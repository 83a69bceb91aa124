package tasks_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theapemachine/a2a-go/pkg/a2a"
	"github.com/theapemachine/a2a-go/pkg/executor"
	"github.com/theapemachine/a2a-go/pkg/stores"
	"github.com/theapemachine/a2a-go/pkg/tasks"
)

func TestSendTaskCreatesAndCompletesTask(t *testing.T) {
	manager := tasks.NewManager(stores.NewInMemoryTaskStore(), executor.Echo{}, nil)

	task, rpcErr := manager.SendTask(context.Background(), a2a.TaskSendParams{
		ID:      "task-1",
		Message: a2a.NewTextMessage("user", "ping"),
	})

	require.Nil(t, rpcErr)
	assert.Equal(t, a2a.TaskStateCompleted, task.Status.State)
	require.Len(t, task.Artifacts, 1)
	assert.Equal(t, "ping", task.Artifacts[0].Parts[0].Text)
}

func TestGetTaskReturnsNotFoundForUnknownID(t *testing.T) {
	manager := tasks.NewManager(stores.NewInMemoryTaskStore(), executor.Echo{}, nil)

	_, rpcErr := manager.GetTask(context.Background(), a2a.TaskQueryParams{TaskIDParams: a2a.TaskIDParams{ID: "nope"}})
	require.NotNil(t, rpcErr)
	assert.Equal(t, -32001, rpcErr.Code)
}

func TestSendTaskIsIdempotentForTerminalTask(t *testing.T) {
	manager := tasks.NewManager(stores.NewInMemoryTaskStore(), executor.Echo{}, nil)
	ctx := context.Background()

	params := a2a.TaskSendParams{ID: "task-idempotent", Message: a2a.NewTextMessage("user", "ping")}

	first, rpcErr := manager.SendTask(ctx, params)
	require.Nil(t, rpcErr)
	assert.Equal(t, a2a.TaskStateCompleted, first.Status.State)

	second, rpcErr := manager.SendTask(ctx, params)
	require.Nil(t, rpcErr, "a second tasks/send against a terminal task must not error")
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Status.State, second.Status.State)
	assert.Equal(t, first.Artifacts, second.Artifacts)
}

func TestCancelTaskRejectsAlreadyTerminalTask(t *testing.T) {
	manager := tasks.NewManager(stores.NewInMemoryTaskStore(), executor.Echo{}, nil)
	ctx := context.Background()

	_, rpcErr := manager.SendTask(ctx, a2a.TaskSendParams{ID: "task-2", Message: a2a.NewTextMessage("user", "hi")})
	require.Nil(t, rpcErr)

	_, rpcErr = manager.CancelTask(ctx, "task-2")
	require.NotNil(t, rpcErr)
	assert.Equal(t, -32002, rpcErr.Code)
}

func TestResubscribeToTerminalTaskDeliversSyntheticFinalEvent(t *testing.T) {
	manager := tasks.NewManager(stores.NewInMemoryTaskStore(), executor.Echo{}, nil)
	ctx := context.Background()

	_, rpcErr := manager.SendTask(ctx, a2a.TaskSendParams{ID: "task-3", Message: a2a.NewTextMessage("user", "hi")})
	require.Nil(t, rpcErr)

	_, events, cancel, rpcErr := manager.Resubscribe(ctx, a2a.TaskQueryParams{TaskIDParams: a2a.TaskIDParams{ID: "task-3"}})
	require.Nil(t, rpcErr)
	defer cancel()

	select {
	case evt, ok := <-events:
		require.True(t, ok)
		se, ok := evt.(stores.StatusEvent)
		require.True(t, ok)
		assert.True(t, se.Final)
		assert.Equal(t, a2a.TaskStateCompleted, se.Status.State)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for synthetic resubscribe event")
	}
}
