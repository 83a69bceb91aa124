package transport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/a2a-go/pkg/a2a"
	"github.com/theapemachine/a2a-go/pkg/errors"
	"github.com/theapemachine/a2a-go/pkg/jsonrpc"
	"github.com/theapemachine/a2a-go/pkg/stores"
)

// streamIdleTimeout bounds how long serveStream waits for the next event
// before giving up on an otherwise silent subscriber, per spec §5.
const streamIdleTimeout = 60 * time.Second

// heartbeatInterval is how often a comment line is written to keep
// intermediaries (proxies, load balancers) from closing an idle connection.
const heartbeatInterval = 25 * time.Second

// serveStream upgrades the POST / connection in place into an SSE stream for
// tasks/sendSubscribe and tasks/resubscribe, instead of the teacher's
// separate /events endpoint: the real protocol multiplexes both over the
// same request/response pair.
func (s *Server) serveStream(w http.ResponseWriter, r *http.Request, req jsonrpc.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	var (
		task   a2a.Task
		events <-chan stores.Event
		cancel func()
		rpcErr *errors.RpcError
	)

	switch req.Method {
	case "tasks/sendSubscribe":
		var params a2a.TaskSendParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.writeStreamError(w, req, errors.ErrInvalidParams.WithMessagef("%v", err))
			return
		}
		task, events, cancel, rpcErr = s.Manager.StreamTask(r.Context(), params)
	case "tasks/resubscribe":
		var params a2a.TaskQueryParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			s.writeStreamError(w, req, errors.ErrInvalidParams.WithMessagef("%v", err))
			return
		}
		task, events, cancel, rpcErr = s.Manager.Resubscribe(r.Context(), params)
	}

	if rpcErr != nil {
		s.writeStreamError(w, req, rpcErr)
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Every event on the stream, starting with the first, is a proper
	// TaskStatusUpdateEvent or TaskArtifactUpdateEvent per spec §6 — no raw
	// task snapshot frame is written here. Manager.StreamTask enqueues the
	// working transition as such an event, and Manager.Resubscribe on a
	// terminal task delivers one synthetic final status event; a resubscribe
	// to a live task sees only the events enqueued after it subscribed.

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	idle := time.NewTimer(streamIdleTimeout)
	defer idle.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case <-heartbeat.C:
			if _, err := w.Write([]byte(": heartbeat\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-idle.C:
			log.Warn("sse stream idle timeout reached", "task_id", task.ID)
			return

		case evt, ok := <-events:
			if !ok {
				return
			}
			if !idle.Stop() {
				<-idle.C
			}
			idle.Reset(streamIdleTimeout)

			if err := s.writeSSE(w, evt); err != nil {
				log.Error("failed to write sse event", "task_id", task.ID, "err", err)
				return
			}
			flusher.Flush()

			if statusEvent, ok := evt.(stores.StatusEvent); ok && statusEvent.Final {
				return
			}
		}
	}
}

func (s *Server) writeSSE(w http.ResponseWriter, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := w.Write(body); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n\n"))
	return err
}

// writeStreamError reports an error that occurred before the SSE upgrade as
// a normal JSON-RPC error response, since no stream has been opened yet.
func (s *Server) writeStreamError(w http.ResponseWriter, req jsonrpc.Request, rpcErr *errors.RpcError) {
	w.Header().Set("Content-Type", "application/json")
	resp := struct {
		JSONRPC string           `json:"jsonrpc"`
		ID      json.RawMessage  `json:"id,omitempty"`
		Error   *errors.RpcError `json:"error"`
	}{JSONRPC: "2.0", ID: req.ID, Error: rpcErr}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error("failed to encode stream error response", "err", err)
	}
}
