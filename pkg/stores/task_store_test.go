package stores_test

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/theapemachine/a2a-go/pkg/a2a"
	"github.com/theapemachine/a2a-go/pkg/stores"
)

func TestUpsertAndGetTask(t *testing.T) {
	Convey("Given an empty in-memory task store", t, func() {
		store := stores.NewInMemoryTaskStore()
		ctx := context.Background()

		Convey("When a task is upserted", func() {
			task := a2a.Task{ID: "t1", Status: a2a.TaskStatus{State: a2a.TaskStateSubmitted}}
			err := store.UpsertTask(ctx, task)

			Convey("Then it can be retrieved unchanged", func() {
				So(err, ShouldBeNil)
				got, ok := store.GetTask(ctx, "t1", nil)
				So(ok, ShouldBeTrue)
				So(got.ID, ShouldEqual, "t1")
				So(got.Status.State, ShouldEqual, a2a.TaskStateSubmitted)
			})
		})
	})
}

func TestUpdateStatusRejectsTerminalTransition(t *testing.T) {
	store := stores.NewInMemoryTaskStore()
	ctx := context.Background()
	assert.NoError(t, store.UpsertTask(ctx, a2a.Task{ID: "t2", Status: a2a.TaskStatus{State: a2a.TaskStateSubmitted}}))

	_, err := store.UpdateStatus(ctx, "t2", a2a.TaskStatus{State: a2a.TaskStateCompleted, Timestamp: time.Now()})
	assert.NoError(t, err)

	_, err = store.UpdateStatus(ctx, "t2", a2a.TaskStatus{State: a2a.TaskStateWorking, Timestamp: time.Now()})
	assert.Error(t, err, "terminal tasks must reject further transitions")
}

func TestApplyArtifactAssemblesChunks(t *testing.T) {
	store := stores.NewInMemoryTaskStore()
	ctx := context.Background()
	assert.NoError(t, store.UpsertTask(ctx, a2a.Task{ID: "t3", Status: a2a.TaskStatus{State: a2a.TaskStateWorking}}))

	falseVal, trueVal := false, true
	start := a2a.Artifact{ArtifactID: "art1", Parts: []a2a.Part{a2a.NewTextPart("hello ")}, Append: &falseVal, LastChunk: &falseVal}
	middle := a2a.Artifact{ArtifactID: "art1", Parts: []a2a.Part{a2a.NewTextPart("there ")}, Append: &trueVal}
	last := a2a.Artifact{ArtifactID: "art1", Parts: []a2a.Part{a2a.NewTextPart("world")}, Append: &trueVal, LastChunk: &trueVal}

	_, err := store.ApplyArtifact(ctx, "t3", start)
	assert.NoError(t, err)
	task, err := store.ApplyArtifact(ctx, "t3", middle)
	assert.NoError(t, err)
	assert.Empty(t, task.Artifacts, "artifact should not be visible until the last chunk arrives")

	task, err = store.ApplyArtifact(ctx, "t3", last)
	assert.NoError(t, err)
	assert.Len(t, task.Artifacts, 1)
	assert.Len(t, task.Artifacts[0].Parts, 3)
}

func TestSubscribeDeliversEnqueuedEvents(t *testing.T) {
	store := stores.NewInMemoryTaskStore()
	ctx := context.Background()
	assert.NoError(t, store.UpsertTask(ctx, a2a.Task{ID: "t4", Status: a2a.TaskStatus{State: a2a.TaskStateWorking}}))

	events, cancel := store.Subscribe(ctx, "t4")
	defer cancel()

	err := store.EnqueueEvent(ctx, "t4", stores.StatusEvent{a2a.TaskStatusUpdateEvent{
		TaskID: "t4",
		Status: a2a.TaskStatus{State: a2a.TaskStateCompleted},
		Final:  true,
	}})
	assert.NoError(t, err)

	select {
	case evt := <-events:
		se, ok := evt.(stores.StatusEvent)
		assert.True(t, ok)
		assert.True(t, se.Final)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for enqueued event")
	}
}

func TestEnqueueEventDropsSlowSubscriber(t *testing.T) {
	store := stores.NewInMemoryTaskStore()
	ctx := context.Background()
	assert.NoError(t, store.UpsertTask(ctx, a2a.Task{ID: "t5", Status: a2a.TaskStatus{State: a2a.TaskStateWorking}}))

	events, cancel := store.Subscribe(ctx, "t5")
	defer cancel()

	// Flood past the bounded queue without draining it.
	for i := 0; i < 64; i++ {
		_ = store.EnqueueEvent(ctx, "t5", stores.StatusEvent{a2a.TaskStatusUpdateEvent{TaskID: "t5"}})
	}

	// The subscriber's channel should eventually be closed with a terminal
	// failure event rather than the producer blocking forever.
	var sawClose bool
	for i := 0; i < 64; i++ {
		if _, ok := <-events; !ok {
			sawClose = true
			break
		}
	}
	assert.True(t, sawClose)
}
