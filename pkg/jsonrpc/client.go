package jsonrpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
)

// Client is a minimal JSON-RPC 2.0 caller over HTTP, one call per request
// (no pipelining, no batching on the client side).
type Client struct {
	Endpoint string
	HTTP     *http.Client

	nextID atomic.Int64
}

func NewClient(endpoint string) *Client {
	return &Client{Endpoint: endpoint, HTTP: http.DefaultClient}
}

// Call invokes method with params and decodes the result into out (which
// should be a pointer, or nil if the result is not needed).
func (c *Client) Call(ctx context.Context, method string, params, out any) error {
	if c.HTTP == nil {
		c.HTTP = http.DefaultClient
	}

	id, err := json.Marshal(c.nextID.Add(1))
	if err != nil {
		return err
	}

	req := Request{JSONRPC: "2.0", ID: id, Method: method}
	if params != nil {
		b, err := json.Marshal(params)
		if err != nil {
			return err
		}
		req.Params = b
	}

	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return fmt.Errorf("jsonrpc: request failed: %w", err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("jsonrpc: decode failed: %w", err)
	}

	if rpcResp.Error != nil {
		return rpcResp.Error
	}

	if out == nil {
		return nil
	}

	b, err := json.Marshal(rpcResp.Result)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
