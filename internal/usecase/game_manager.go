package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/pkg"
	"github.com/rocketscienceinc/gomoku-backend/internal/session"
)

const (
	DefaultPlayerName = "Player"

	roomIDAttempts = 10

	recentMatchesTimeout = 5 * time.Second
)

var ErrRoomIDExhausted = errors.New("could not allocate a free room id")

type matchRepo interface {
	Save(ctx context.Context, match *entity.MatchRecord) error
	Recent(ctx context.Context, limit int) ([]*entity.MatchRecord, error)
}

// GameManager routes commands to room sessions and archives finished matches.
type GameManager struct {
	logger   *slog.Logger
	registry *Registry
	matches  matchRepo

	// concurrent history reads with the same limit share one repository call
	recent singleflight.Group

	newRoomID func() (string, error)
}

func NewGameManager(logger *slog.Logger, registry *Registry, matches matchRepo) *GameManager {
	return &GameManager{
		logger:   logger,
		registry: registry,
		matches:  matches,

		newRoomID: pkg.GenerateRoomID,
	}
}

// CreateRoom opens roomID with connID seated as X. An empty roomID gets a generated one.
func (that *GameManager) CreateRoom(_ context.Context, connID, roomID, name string) (session.Result, error) {
	log := that.logger.With("method", "CreateRoom", "connID", connID)

	name = playerName(name)

	if roomID != "" {
		_, res, err := that.registry.CreateRoom(roomID, connID, name)
		if err != nil {
			return session.Result{}, fmt.Errorf("failed to create room: %w", err)
		}

		log.Info("room created", "roomID", roomID)

		return res, nil
	}

	for range roomIDAttempts {
		roomID, err := that.newRoomID()
		if err != nil {
			return session.Result{}, fmt.Errorf("failed to create room: %w", err)
		}

		_, res, err := that.registry.CreateRoom(roomID, connID, name)
		if errors.Is(err, apperror.ErrRoomAlreadyExists) {
			continue
		}

		if err != nil {
			return session.Result{}, fmt.Errorf("failed to create room: %w", err)
		}

		log.Info("room created", "roomID", res.RoomID)

		return res, nil
	}

	return session.Result{}, fmt.Errorf("%w after %d attempts", ErrRoomIDExhausted, roomIDAttempts)
}

func (that *GameManager) JoinRoom(_ context.Context, connID, roomID, name string) (session.Result, error) {
	_, res, err := that.registry.JoinRoom(roomID, connID, playerName(name))
	if err != nil {
		return session.Result{}, fmt.Errorf("failed to join room: %w", err)
	}

	that.logger.Info("player joined room", "roomID", roomID, "connID", connID)

	return res, nil
}

// PlaceMark applies a move and archives the match when it ends the game.
func (that *GameManager) PlaceMark(ctx context.Context, connID, roomID string, row, col int) (session.Result, error) {
	sess, err := that.lookup(roomID)
	if err != nil {
		return session.Result{}, err
	}

	res, err := sess.PlaceMark(connID, row, col)
	if err != nil {
		return session.Result{}, fmt.Errorf("failed to place mark: %w", err)
	}

	if res.Record != nil {
		that.saveMatch(ctx, res.Record)
	}

	return res, nil
}

func (that *GameManager) Restart(_ context.Context, connID, roomID string) (session.Result, error) {
	sess, err := that.lookup(roomID)
	if err != nil {
		return session.Result{}, err
	}

	res, err := sess.Restart(connID)
	if err != nil {
		return session.Result{}, fmt.Errorf("failed to restart game: %w", err)
	}

	that.logger.Info("game restarted", "roomID", roomID, "connID", connID)

	return res, nil
}

// Leave removes connID from roomID and destroys the room once it is empty.
func (that *GameManager) Leave(_ context.Context, connID, roomID string) (session.Result, error) {
	log := that.logger.With("method", "Leave", "roomID", roomID, "connID", connID)

	sess, err := that.lookup(roomID)
	if err != nil {
		return session.Result{}, err
	}

	res, err := sess.Leave(connID)
	if err != nil {
		return session.Result{}, fmt.Errorf("failed to leave room: %w", err)
	}

	that.registry.Forget(connID, roomID)

	if res.Empty && that.registry.RemoveIfEmpty(roomID) {
		log.Info("room destroyed")
	}

	log.Info("player left room")

	return res, nil
}

// Disconnect leaves every room connID sits in.
func (that *GameManager) Disconnect(ctx context.Context, connID string) []session.Result {
	log := that.logger.With("method", "Disconnect", "connID", connID)

	rooms := that.registry.RoomsOf(connID)
	results := make([]session.Result, 0, len(rooms))

	for _, roomID := range rooms {
		res, err := that.Leave(ctx, connID, roomID)
		if err != nil {
			log.Warn("failed to leave room on disconnect", "roomID", roomID, "error", err)
			that.registry.Forget(connID, roomID)
			continue
		}

		results = append(results, res)
	}

	return results
}

func (that *GameManager) ActiveRooms() int {
	return that.registry.Count()
}

// RecentMatches returns finished matches, newest first. The shared repository call
// outlives any single caller; each caller stops waiting when its own ctx ends.
func (that *GameManager) RecentMatches(ctx context.Context, limit int) ([]*entity.MatchRecord, error) {
	flight := that.recent.DoChan(strconv.Itoa(limit), func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recentMatchesTimeout)
		defer cancel()

		return that.matches.Recent(fetchCtx, limit)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to get recent matches: %w", ctx.Err())
	case res := <-flight:
		if res.Err != nil {
			return nil, fmt.Errorf("failed to get recent matches: %w", res.Err)
		}

		matches, _ := res.Val.([]*entity.MatchRecord)

		return matches, nil
	}
}

func (that *GameManager) lookup(roomID string) (*session.Session, error) {
	sess, ok := that.registry.Lookup(roomID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, roomID)
	}

	return sess, nil
}

func (that *GameManager) saveMatch(ctx context.Context, match *entity.MatchRecord) {
	log := that.logger.With("method", "saveMatch", "roomID", match.RoomID)

	if err := that.matches.Save(ctx, match); err != nil {
		log.Error("failed to save match", "error", err)
		return
	}

	log.Info("match finished", "winner", match.Winner, "moves", match.Moves)
}

func playerName(name string) string {
	if name == "" {
		return DefaultPlayerName
	}

	return name
}
