package jsonrpc_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/theapemachine/a2a-go/pkg/errors"
	"github.com/theapemachine/a2a-go/pkg/jsonrpc"
)

func TestServerDispatchesRegisteredMethod(t *testing.T) {
	srv := jsonrpc.NewServer()
	srv.Register("ping", func(ctx context.Context, params json.RawMessage) (any, *errors.RpcError) {
		return map[string]string{"pong": "ok"}, nil
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	srv.ServeHTTP(rr, req)

	var resp jsonrpc.Response
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Nil(t, resp.Error)
	assert.NotNil(t, resp.Result)
}

func TestServerReturnsMethodNotFound(t *testing.T) {
	srv := jsonrpc.NewServer()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"nope"}`))
	srv.ServeHTTP(rr, req)

	var resp jsonrpc.Response
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.NotNil(t, resp.Error)
	assert.Equal(t, -32601, resp.Error.Code)
}

func TestServerTreatsMissingIDAsNotification(t *testing.T) {
	srv := jsonrpc.NewServer()
	called := false
	srv.Register("fireAndForget", func(ctx context.Context, params json.RawMessage) (any, *errors.RpcError) {
		called = true
		return nil, nil
	})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"jsonrpc":"2.0","method":"fireAndForget"}`))
	srv.ServeHTTP(rr, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusNoContent, rr.Code)
}

func TestServerHandlesBatch(t *testing.T) {
	srv := jsonrpc.NewServer()
	srv.Register("echo", func(ctx context.Context, params json.RawMessage) (any, *errors.RpcError) {
		return string(params), nil
	})

	rr := httptest.NewRecorder()
	body := `[{"jsonrpc":"2.0","id":1,"method":"echo","params":"a"},{"jsonrpc":"2.0","id":2,"method":"echo","params":"b"}]`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	srv.ServeHTTP(rr, req)

	var responses []jsonrpc.Response
	assert.NoError(t, json.NewDecoder(rr.Body).Decode(&responses))
	assert.Len(t, responses, 2)
}
