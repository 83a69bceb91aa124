package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/smarty/assertions/should"
	"github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theapemachine/a2a-go/pkg/a2a"
	"github.com/theapemachine/a2a-go/pkg/client"
	"github.com/theapemachine/a2a-go/pkg/executor"
	"github.com/theapemachine/a2a-go/pkg/stores"
	"github.com/theapemachine/a2a-go/pkg/tasks"
	"github.com/theapemachine/a2a-go/pkg/transport"
)

func newLiveAgent(t *testing.T) (*httptest.Server, a2a.AgentCard) {
	t.Helper()
	manager := tasks.NewManager(stores.NewInMemoryTaskStore(), executor.Echo{}, nil)
	card := a2a.AgentCard{Name: "echo-agent", Version: "0.0.1"}
	srv := transport.NewServer(card, manager, nil)

	mux := http.NewServeMux()
	for path, handler := range srv.Handlers() {
		mux.Handle(path, handler)
	}

	var ts *httptest.Server
	func() {
		defer func() {
			if r := recover(); r != nil {
				t.Skipf("network disabled; skipping: %v", r)
			}
		}()
		ts = httptest.NewServer(mux)
	}()

	card.URL = ts.URL
	return ts, card
}

func TestNewAgentClient(t *testing.T) {
	convey.Convey("Given an AgentCard", t, func() {
		card := a2a.AgentCard{Name: "Test Agent", Version: "1.0.0", URL: "http://test-agent:3210"}

		convey.Convey("When creating a new AgentClient", func() {
			c := client.NewAgentClient(card)

			convey.Convey("Then the client should be properly initialized", func() {
				convey.So(c.Card.Name, should.Equal, "Test Agent")
				convey.So(c.Card.Version, should.Equal, "1.0.0")
				convey.So(c.Card.URL, should.Equal, "http://test-agent:3210")
			})
		})
	})
}

func TestSendTaskText(t *testing.T) {
	ts, card := newLiveAgent(t)
	defer ts.Close()

	c := client.NewAgentClient(card)
	reply, err := c.SendTaskText(context.Background(), "task-1", "hello there")
	require.NoError(t, err)
	assert.Equal(t, "hello there", reply)
}

func TestStreamTaskDeliversArtifactAndFinalStatus(t *testing.T) {
	ts, card := newLiveAgent(t)
	defer ts.Close()

	c := client.NewAgentClient(card)

	var sawArtifact, sawFinal bool
	done := make(chan struct{})

	go func() {
		err := c.StreamTask(context.Background(), a2a.TaskSendParams{
			ID:      "task-2",
			Message: a2a.NewTextMessage("user", "stream this"),
		}, func(evt any) {
			switch e := evt.(type) {
			case a2a.TaskArtifactUpdateEvent:
				sawArtifact = true
				assert.Equal(t, "stream this", e.Artifact.Parts[0].Text)
			case a2a.TaskStatusUpdateEvent:
				if e.Final {
					sawFinal = true
				}
			}
		})
		assert.NoError(t, err)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for stream to finish")
	}

	assert.True(t, sawArtifact)
	assert.True(t, sawFinal)
}
