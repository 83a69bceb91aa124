// Package client implements the A2A client side: typed wrappers over every
// tasks/* method, an SSE consumer for the two streaming methods, and a
// resolver for a remote agent's /.well-known/agent.json card.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/a2a-go/pkg/a2a"
	"github.com/theapemachine/a2a-go/pkg/jsonrpc"
	"github.com/theapemachine/a2a-go/pkg/utils"
)

// AgentClient talks to a single remote agent, identified by its card. Every
// method is mounted at the card's URL root per the transport's single
// POST / endpoint; the two streaming methods upgrade that same connection
// into an SSE stream rather than reaching a separate /events endpoint.
type AgentClient struct {
	Card a2a.AgentCard

	rpc  *jsonrpc.Client
	http *http.Client
}

func NewAgentClient(card a2a.AgentCard) *AgentClient {
	return &AgentClient{
		Card: card,
		rpc:  jsonrpc.NewClient(card.URL),
		http: http.DefaultClient,
	}
}

// FetchAgentCard resolves a remote agent's card from its well-known
// discovery document.
func FetchAgentCard(ctx context.Context, baseURL string) (a2a.AgentCard, error) {
	url := strings.TrimSuffix(baseURL, "/") + "/.well-known/agent.json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return a2a.AgentCard{}, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return a2a.AgentCard{}, fmt.Errorf("client: fetch agent card: %w", err)
	}
	defer resp.Body.Close()

	var card a2a.AgentCard
	if err := json.NewDecoder(resp.Body).Decode(&card); err != nil {
		return a2a.AgentCard{}, fmt.Errorf("client: decode agent card: %w", err)
	}
	return card, nil
}

func (c *AgentClient) authHeader() (string, string, bool) {
	if c.Card.Authentication == nil {
		return "", "", false
	}
	for _, scheme := range c.Card.Authentication.Schemes {
		if scheme == "Bearer" && c.Card.Authentication.Credentials != nil {
			return "Authorization", "Bearer " + *c.Card.Authentication.Credentials, true
		}
	}
	return "", "", false
}

// SendTask implements tasks/send: it blocks until the remote agent has run
// the task to completion.
func (c *AgentClient) SendTask(ctx context.Context, params a2a.TaskSendParams) (a2a.Task, error) {
	var task a2a.Task
	err := c.rpc.Call(ctx, "tasks/send", params, &task)
	return task, err
}

func (c *AgentClient) GetTask(ctx context.Context, params a2a.TaskQueryParams) (a2a.Task, error) {
	var task a2a.Task
	err := c.rpc.Call(ctx, "tasks/get", params, &task)
	return task, err
}

func (c *AgentClient) CancelTask(ctx context.Context, id string) (a2a.Task, error) {
	var task a2a.Task
	err := c.rpc.Call(ctx, "tasks/cancel", a2a.TaskIDParams{ID: id}, &task)
	return task, err
}

func (c *AgentClient) SetPushNotification(ctx context.Context, cfg a2a.TaskPushNotificationConfig) (a2a.TaskPushNotificationConfig, error) {
	var out a2a.TaskPushNotificationConfig
	err := c.rpc.Call(ctx, "tasks/pushNotification/set", cfg, &out)
	return out, err
}

func (c *AgentClient) GetPushNotification(ctx context.Context, id string) (a2a.TaskPushNotificationConfig, error) {
	var out a2a.TaskPushNotificationConfig
	err := c.rpc.Call(ctx, "tasks/pushNotification/get", a2a.TaskIDParams{ID: id}, &out)
	return out, err
}

// StreamTask implements tasks/sendSubscribe. onEvent is called once per
// status or artifact event, in delivery order; it returns once the server
// reports a final status event or the stream otherwise closes.
func (c *AgentClient) StreamTask(ctx context.Context, params a2a.TaskSendParams, onEvent func(any)) error {
	return c.stream(ctx, "tasks/sendSubscribe", params, onEvent)
}

// Resubscribe implements tasks/resubscribe, reattaching to an in-flight
// task's event stream (or receiving a single synthetic final event if the
// task already reached a terminal state).
func (c *AgentClient) Resubscribe(ctx context.Context, params a2a.TaskQueryParams, onEvent func(any)) error {
	return c.stream(ctx, "tasks/resubscribe", params, onEvent)
}

func (c *AgentClient) stream(ctx context.Context, method string, params any, onEvent func(any)) error {
	id, err := json.Marshal(1)
	if err != nil {
		return err
	}
	paramBytes, err := json.Marshal(params)
	if err != nil {
		return err
	}
	body, err := json.Marshal(jsonrpc.Request{JSONRPC: "2.0", ID: id, Method: method, Params: paramBytes})
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Card.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if key, value, ok := c.authHeader(); ok {
		httpReq.Header.Set(key, value)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("client: stream request failed: %w", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		var rpcResp jsonrpc.Response
		if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
			return fmt.Errorf("client: decode non-stream response: %w", err)
		}
		if rpcResp.Error != nil {
			return rpcResp.Error
		}
		return fmt.Errorf("client: expected event-stream response for %s", method)
	}

	reader := bufio.NewReader(resp.Body)
	for {
		data, err := utils.ReadSSE(reader)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if data == "" {
			continue
		}

		evt, final, err := decodeStreamEvent([]byte(data))
		if err != nil {
			log.Error("client: failed to decode sse event", "err", err)
			continue
		}
		onEvent(evt)
		if final {
			return nil
		}
	}
}

// decodeStreamEvent discriminates stream payloads by their distinguishing
// field: an artifact update carries "artifact" and a status update carries
// "status" plus "final" (the two shapes this module's transport writes); a
// payload carrying "id" is decoded as a full task snapshot.
func decodeStreamEvent(payload []byte) (any, bool, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(payload, &probe); err != nil {
		return nil, false, err
	}

	switch {
	case probe["id"] != nil:
		var task a2a.Task
		if err := json.Unmarshal(payload, &task); err != nil {
			return nil, false, err
		}
		return task, false, nil

	case probe["artifact"] != nil:
		var evt a2a.TaskArtifactUpdateEvent
		if err := json.Unmarshal(payload, &evt); err != nil {
			return nil, false, err
		}
		return evt, false, nil

	case probe["status"] != nil:
		var evt a2a.TaskStatusUpdateEvent
		if err := json.Unmarshal(payload, &evt); err != nil {
			return nil, false, err
		}
		return evt, evt.Final, nil

	default:
		return nil, false, fmt.Errorf("client: unrecognized stream payload: %s", payload)
	}
}

// waitTimeout bounds SendTaskText's round trip, on top of whatever deadline
// the caller's context already carries.
const waitTimeout = 120 * time.Second

// SendTaskText is a convenience helper mirroring the teacher's
// prompt-in-text-out shape: it builds a single-message task and returns the
// agent's first text artifact or text history reply.
func (c *AgentClient) SendTaskText(ctx context.Context, taskID, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, waitTimeout)
	defer cancel()

	task, err := c.SendTask(ctx, a2a.TaskSendParams{
		ID:      taskID,
		Message: a2a.NewTextMessage("user", prompt),
	})
	if err != nil {
		return "", err
	}

	if len(task.Artifacts) > 0 && len(task.Artifacts[0].Parts) > 0 {
		if text := task.Artifacts[0].Parts[0].Text; text != "" {
			return text, nil
		}
	}
	for _, msg := range task.History {
		if msg.Role == "agent" || msg.Role == "assistant" {
			if text := msg.String(); text != "" {
				return text, nil
			}
		}
	}
	return "", fmt.Errorf("client: no text output received from agent")
}
