package controller

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/cinesync/server/internal/service/watch"
	"github.com/cinesync/server/pkg/wsrouter"
)

func (c controller) initWSMux() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Use(c.wsRequestIdMw())
	mux.Use(c.wsLoggerMw())

	mux.Handle("ALIVE", c.handleAlive)
	mux.Handle("JOIN_NOTIFY", c.handleJoinNotify)
	mux.Handle("VIDEO_ACTION", c.handleVideoAction)
	mux.Handle("VOTING", c.handleVoting)

	return mux
}

func (c controller) handleAlive(_ context.Context, _ *websocket.Conn, _ json.RawMessage) error {
	return nil
}

type joinNotifyInput struct {
	PassCode string `json:"pass_code"`
}

func (c controller) handleJoinNotify(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	var input joinNotifyInput
	if err := json.Unmarshal(payload, &input); err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	if err := c.watchService.HandleJoinNotify(ctx, c.getConnectionIdFromCtx(ctx), input.PassCode); err != nil {
		return fmt.Errorf("failed to handle join notify: %w", err)
	}

	return nil
}

type videoActionInput struct {
	PassCode string  `json:"pass_code"`
	Action   string  `json:"action"`
	To       float64 `json:"to"`
	SendTime int64   `json:"send_time"`
}

func (c controller) handleVideoAction(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	var input videoActionInput
	if err := json.Unmarshal(payload, &input); err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	if err := c.watchService.HandleVideoAction(ctx, c.getConnectionIdFromCtx(ctx), watch.VideoActionParams{
		PassCode: input.PassCode,
		Action:   input.Action,
		To:       input.To,
		SendTime: input.SendTime,
	}); err != nil {
		return fmt.Errorf("failed to handle video action: %w", err)
	}

	return nil
}

type votingInput struct {
	PassCode string `json:"pass_code"`
	Action   string `json:"action"`
	ToPause  bool   `json:"to_pause"`
	Yes      bool   `json:"yes"`
}

func (c controller) handleVoting(ctx context.Context, _ *websocket.Conn, payload json.RawMessage) error {
	var input votingInput
	if err := json.Unmarshal(payload, &input); err != nil {
		return fmt.Errorf("failed to parse payload: %w", err)
	}

	if err := c.watchService.HandleVoting(ctx, c.getConnectionIdFromCtx(ctx), watch.VotingParams{
		PassCode: input.PassCode,
		Action:   input.Action,
		ToPause:  input.ToPause,
		Yes:      input.Yes,
	}); err != nil {
		return fmt.Errorf("failed to handle voting: %w", err)
	}

	return nil
}
