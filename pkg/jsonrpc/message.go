// Package jsonrpc implements the JSON-RPC 2.0 envelope used for every A2A
// method call: request/response framing, batch support, and a handler
// registry that the transport layer mounts at a single POST endpoint.
package jsonrpc

import (
	"encoding/json"

	"github.com/theapemachine/a2a-go/pkg/errors"
)

// Request is a single JSON-RPC 2.0 request object. ID is raw so it can hold
// a string, a number, or be absent entirely (a notification).
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request carries no id and therefore
// expects no response.
func (r Request) IsNotification() bool {
	return len(r.ID) == 0
}

// Response is a single JSON-RPC 2.0 response object. Exactly one of Result
// or Error is populated.
type Response struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      json.RawMessage  `json:"id,omitempty"`
	Result  any              `json:"result,omitempty"`
	Error   *errors.RpcError `json:"error,omitempty"`
}

func newErrorResponse(id json.RawMessage, err *errors.RpcError) Response {
	return Response{JSONRPC: "2.0", ID: id, Error: err}
}

func newResultResponse(id json.RawMessage, result any) Response {
	return Response{JSONRPC: "2.0", ID: id, Result: result}
}
