package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/a2a-go/pkg/errors"
)

// HandlerFunc processes one decoded method call and returns either a result
// (marshaled into the response's "result" field) or an RpcError.
type HandlerFunc func(ctx context.Context, params json.RawMessage) (any, *errors.RpcError)

// Server dispatches JSON-RPC requests arriving at a single HTTP endpoint to
// registered method handlers. It supports both single requests and batch
// arrays, and treats id-less requests as notifications (no response body).
type Server struct {
	handlers map[string]HandlerFunc
}

func NewServer() *Server {
	return &Server{handlers: make(map[string]HandlerFunc)}
}

// Register binds a method name to its handler. Re-registering a method
// overwrites the previous handler.
func (s *Server) Register(method string, fn HandlerFunc) {
	s.handlers[method] = fn
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "only POST supported", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeOne(w, newErrorResponse(nil, errors.ErrParseError))
		return
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		s.writeOne(w, newErrorResponse(nil, errors.ErrInvalidRequest))
		return
	}

	if body[0] == '[' {
		s.serveBatch(w, r.Context(), body)
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		s.writeOne(w, newErrorResponse(nil, errors.ErrParseError))
		return
	}

	resp := s.handle(r.Context(), req)
	if req.IsNotification() {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.writeOne(w, resp)
}

func (s *Server) serveBatch(w http.ResponseWriter, ctx context.Context, body []byte) {
	var batch []Request
	if err := json.Unmarshal(body, &batch); err != nil {
		s.writeOne(w, newErrorResponse(nil, errors.ErrParseError))
		return
	}

	if len(batch) == 0 {
		s.writeOne(w, newErrorResponse(nil, errors.ErrInvalidRequest))
		return
	}

	var responses []Response
	for _, req := range batch {
		resp := s.handle(ctx, req)
		if !req.IsNotification() {
			responses = append(responses, resp)
		}
	}

	if len(responses) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(responses); err != nil {
		log.Error("failed to encode batch response", "err", err)
	}
}

func (s *Server) handle(ctx context.Context, req Request) Response {
	if req.JSONRPC != "2.0" {
		return newErrorResponse(req.ID, errors.ErrInvalidRequest)
	}

	fn, ok := s.handlers[req.Method]
	if !ok {
		return newErrorResponse(req.ID, errors.ErrMethodNotFound)
	}

	result, rpcErr := fn(ctx, req.Params)
	if rpcErr != nil {
		return newErrorResponse(req.ID, rpcErr)
	}
	return newResultResponse(req.ID, result)
}

func (s *Server) writeOne(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Error("failed to encode response", "err", err)
	}
}
