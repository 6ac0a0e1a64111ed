package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/session"
)

func (that *Server) handleCreateRoom(ctx context.Context, connID string, payload json.RawMessage) (session.Result, error) {
	var req RoomPayload
	if err := decodePayload(payload, &req); err != nil {
		return session.Result{}, err
	}

	return that.uGame.CreateRoom(ctx, connID, req.RoomID, req.PlayerName)
}

func (that *Server) handleJoinRoom(ctx context.Context, connID string, payload json.RawMessage) (session.Result, error) {
	var req RoomPayload
	if err := decodePayload(payload, &req); err != nil {
		return session.Result{}, err
	}

	if req.RoomID == "" {
		return session.Result{}, fmt.Errorf("%w: room_id is required", apperror.ErrBadRequest)
	}

	return that.uGame.JoinRoom(ctx, connID, req.RoomID, req.PlayerName)
}

func (that *Server) handleMakeMove(ctx context.Context, connID string, payload json.RawMessage) (session.Result, error) {
	var req MovePayload
	if err := decodePayload(payload, &req); err != nil {
		return session.Result{}, err
	}

	if req.RoomID == "" {
		return session.Result{}, fmt.Errorf("%w: room_id is required", apperror.ErrBadRequest)
	}

	if req.Row == nil || req.Col == nil {
		return session.Result{}, fmt.Errorf("%w: row and col are required", apperror.ErrBadRequest)
	}

	return that.uGame.PlaceMark(ctx, connID, req.RoomID, *req.Row, *req.Col)
}

func (that *Server) handleRestartGame(ctx context.Context, connID string, payload json.RawMessage) (session.Result, error) {
	var req RoomRefPayload
	if err := decodePayload(payload, &req); err != nil {
		return session.Result{}, err
	}

	if req.RoomID == "" {
		return session.Result{}, fmt.Errorf("%w: room_id is required", apperror.ErrBadRequest)
	}

	return that.uGame.Restart(ctx, connID, req.RoomID)
}

func (that *Server) handleLeaveRoom(ctx context.Context, connID string, payload json.RawMessage) (session.Result, error) {
	var req RoomRefPayload
	if err := decodePayload(payload, &req); err != nil {
		return session.Result{}, err
	}

	if req.RoomID == "" {
		return session.Result{}, fmt.Errorf("%w: room_id is required", apperror.ErrBadRequest)
	}

	return that.uGame.Leave(ctx, connID, req.RoomID)
}

func decodePayload(payload json.RawMessage, dst any) error {
	if len(payload) == 0 {
		return nil
	}

	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("%w: invalid payload: %w", apperror.ErrBadRequest, err)
	}

	return nil
}
