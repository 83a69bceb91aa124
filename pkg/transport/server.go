// Package transport mounts the task manager behind the A2A wire protocol:
// a single JSON-RPC POST endpoint (which upgrades in place to an SSE stream
// for the two subscribe methods), plus the two well-known discovery
// documents.
package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/a2a-go/pkg/a2a"
	"github.com/theapemachine/a2a-go/pkg/jsonrpc"
	"github.com/theapemachine/a2a-go/pkg/push"
	"github.com/theapemachine/a2a-go/pkg/tasks"
)

// streamingMethods upgrade the HTTP response to text/event-stream instead
// of returning a single JSON-RPC response body.
var streamingMethods = map[string]bool{
	"tasks/sendSubscribe": true,
	"tasks/resubscribe":   true,
}

// Server exposes a Manager over HTTP per spec §4.5/§6.
type Server struct {
	Card    a2a.AgentCard
	Manager *tasks.Manager
	Keys    *push.KeySet

	rpc *jsonrpc.Server
}

func NewServer(card a2a.AgentCard, manager *tasks.Manager, keys *push.KeySet) *Server {
	s := &Server{Card: card, Manager: manager, Keys: keys, rpc: jsonrpc.NewServer()}
	s.registerHandlers()
	return s
}

// Handlers returns the path -> handler map the host application mounts.
func (s *Server) Handlers() map[string]http.Handler {
	handlers := map[string]http.Handler{
		"/":                       http.HandlerFunc(s.serveRPC),
		"/.well-known/agent.json": http.HandlerFunc(s.serveAgentCard),
		"/health":                 http.HandlerFunc(s.serveHealth),
	}
	if s.Keys != nil {
		handlers["/.well-known/jwks.json"] = http.HandlerFunc(s.serveJWKS)
	}
	return handlers
}

func (s *Server) serveAgentCard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.Card); err != nil {
		log.Error("failed to encode agent card", "err", err)
	}
}

func (s *Server) serveJWKS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(s.Keys.JWKS())
}

func (s *Server) serveHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// serveRPC is the single POST / entrypoint. Batch requests and every
// non-streaming method are delegated to the generic jsonrpc.Server; the two
// subscribe methods instead switch this same connection into an SSE stream.
func (s *Server) serveRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "only POST supported", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	body = bytes.TrimSpace(body)

	if len(body) == 0 || body[0] == '[' {
		s.rpc.ServeHTTP(w, withReplayedBody(r, body))
		return
	}

	var req jsonrpc.Request
	if err := json.Unmarshal(body, &req); err != nil || !streamingMethods[req.Method] {
		s.rpc.ServeHTTP(w, withReplayedBody(r, body))
		return
	}

	s.serveStream(w, r, req)
}

// withReplayedBody returns a shallow clone of r whose Body replays the
// already-consumed bytes, so the generic jsonrpc.Server can read it again.
func withReplayedBody(r *http.Request, body []byte) *http.Request {
	clone := r.Clone(r.Context())
	clone.Body = io.NopCloser(bytes.NewReader(body))
	return clone
}
