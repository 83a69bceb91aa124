package transport

import (
	"context"
	"encoding/json"

	"github.com/theapemachine/a2a-go/pkg/a2a"
	"github.com/theapemachine/a2a-go/pkg/errors"
)

// registerHandlers wires every non-streaming tasks/* method onto the generic
// jsonrpc.Server. tasks/sendSubscribe and tasks/resubscribe are handled
// separately by serveStream, since they upgrade the connection instead of
// returning a single result.
func (s *Server) registerHandlers() {
	s.rpc.Register("tasks/send", s.handleSend)
	s.rpc.Register("tasks/get", s.handleGet)
	s.rpc.Register("tasks/cancel", s.handleCancel)
	s.rpc.Register("tasks/pushNotification/set", s.handleSetPush)
	s.rpc.Register("tasks/pushNotification/get", s.handleGetPush)
}

func (s *Server) handleSend(ctx context.Context, raw json.RawMessage) (any, *errors.RpcError) {
	var params a2a.TaskSendParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, errors.ErrInvalidParams.WithMessagef("%v", err)
	}
	return s.Manager.SendTask(ctx, params)
}

func (s *Server) handleGet(ctx context.Context, raw json.RawMessage) (any, *errors.RpcError) {
	var params a2a.TaskQueryParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, errors.ErrInvalidParams.WithMessagef("%v", err)
	}
	return s.Manager.GetTask(ctx, params)
}

func (s *Server) handleCancel(ctx context.Context, raw json.RawMessage) (any, *errors.RpcError) {
	var params a2a.TaskIDParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, errors.ErrInvalidParams.WithMessagef("%v", err)
	}
	return s.Manager.CancelTask(ctx, params.ID)
}

func (s *Server) handleSetPush(ctx context.Context, raw json.RawMessage) (any, *errors.RpcError) {
	var cfg a2a.TaskPushNotificationConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, errors.ErrInvalidParams.WithMessagef("%v", err)
	}
	return s.Manager.SetPushNotification(ctx, cfg)
}

func (s *Server) handleGetPush(ctx context.Context, raw json.RawMessage) (any, *errors.RpcError) {
	var params a2a.TaskIDParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, errors.ErrInvalidParams.WithMessagef("%v", err)
	}
	return s.Manager.GetPushNotification(ctx, params.ID)
}
