package transport_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theapemachine/a2a-go/pkg/a2a"
	"github.com/theapemachine/a2a-go/pkg/executor"
	"github.com/theapemachine/a2a-go/pkg/jsonrpc"
	"github.com/theapemachine/a2a-go/pkg/stores"
	"github.com/theapemachine/a2a-go/pkg/tasks"
	"github.com/theapemachine/a2a-go/pkg/transport"
)

func newTestServer(t *testing.T) (*transport.Server, *httptest.Server) {
	t.Helper()
	manager := tasks.NewManager(stores.NewInMemoryTaskStore(), executor.Echo{}, nil)
	card := a2a.AgentCard{Name: "test-agent", URL: "http://localhost", Version: "0.0.1"}
	srv := transport.NewServer(card, manager, nil)

	mux := http.NewServeMux()
	for path, handler := range srv.Handlers() {
		mux.Handle(path, handler)
	}
	ts := newHTTPTestServer(t, mux)
	return srv, ts
}

func newHTTPTestServer(t *testing.T, h http.Handler) *httptest.Server {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			t.Skipf("network disabled; skipping: %v", r)
		}
	}()
	return httptest.NewServer(h)
}

func TestServeAgentCard(t *testing.T) {
	_, ts := newTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/.well-known/agent.json")
	require.NoError(t, err)
	defer resp.Body.Close()

	var card a2a.AgentCard
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&card))
	assert.Equal(t, "test-agent", card.Name)
}

func TestServeRPCHandlesTasksSend(t *testing.T) {
	_, ts := newTestServer(t)
	defer ts.Close()

	body := fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":"tasks/send","params":{"id":"t1","message":%s}}`,
		mustJSON(t, a2a.NewTextMessage("user", "hello")))

	resp, err := http.Post(ts.URL+"/", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var rpcResp jsonrpc.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rpcResp))
	require.Nil(t, rpcResp.Error)

	resultBytes, err := json.Marshal(rpcResp.Result)
	require.NoError(t, err)
	var task a2a.Task
	require.NoError(t, json.Unmarshal(resultBytes, &task))
	assert.Equal(t, a2a.TaskStateCompleted, task.Status.State)
}

// TestServeRPCStreamsTasksSendSubscribe exercises the full streamed
// sequence spec §8.2's named scenario requires: a TaskStatusUpdateEvent
// (working, final=false), a TaskArtifactUpdateEvent, then a
// TaskStatusUpdateEvent (completed, final=true) — and nothing else (in
// particular, no raw task-snapshot frame ahead of the working event).
func TestServeRPCStreamsTasksSendSubscribe(t *testing.T) {
	_, ts := newTestServer(t)
	defer ts.Close()

	body := fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":"tasks/sendSubscribe","params":{"id":"t2","message":%s}}`,
		mustJSON(t, a2a.NewTextMessage("user", "hello")))

	resp, err := http.Post(ts.URL+"/", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	deadline := time.After(2 * time.Second)
	var sawFinal bool
	var sawWorking bool
	var sawArtifact bool
	var seenKinds []string

	for !sawFinal {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for final sse event")
		default:
		}

		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(strings.TrimSpace(line), "data: ")

		var evt struct {
			Status *struct {
				State string `json:"state"`
			} `json:"status,omitempty"`
			Artifact *struct {
				Parts []a2a.Part `json:"parts"`
			} `json:"artifact,omitempty"`
			Final bool `json:"final"`
		}
		require.NoError(t, json.Unmarshal([]byte(payload), &evt))

		switch {
		case evt.Status != nil && evt.Status.State == string(a2a.TaskStateWorking) && !evt.Final:
			sawWorking = true
			seenKinds = append(seenKinds, "working")
		case evt.Artifact != nil:
			sawArtifact = true
			seenKinds = append(seenKinds, "artifact")
		case evt.Status != nil && evt.Status.State == string(a2a.TaskStateCompleted) && evt.Final:
			sawFinal = true
			seenKinds = append(seenKinds, "completed")
		default:
			t.Fatalf("unexpected sse frame, not a TaskStatusUpdateEvent or TaskArtifactUpdateEvent: %s", payload)
		}
	}

	assert.True(t, sawWorking, "expected a working TaskStatusUpdateEvent before completion")
	assert.True(t, sawArtifact, "expected a TaskArtifactUpdateEvent before completion")
	assert.Equal(t, []string{"working", "artifact", "completed"}, seenKinds)
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(v))
	return strings.TrimSpace(buf.String())
}
