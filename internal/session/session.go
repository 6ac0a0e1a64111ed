package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
	"github.com/rocketscienceinc/gomoku-backend/internal/entity"
	"github.com/rocketscienceinc/gomoku-backend/internal/gomoku"
)

// Result is what a successful command produced.
type Result struct {
	RoomID string
	// Sender is the connection whose command produced the result.
	Sender     string
	Deliveries []entity.Delivery
	// Members are the room's connections after the command was applied.
	Members []string
	// Record is set when the command finished a game.
	Record *entity.MatchRecord
	// Empty is set when the last player left; the room is closed.
	Empty bool
}

type Option func(*Session)

// Notifier receives every successful Result while the room is still locked, so
// results of one room are observed in the order they were applied. It must not
// block or call back into the session.
type Notifier func(Result)

func WithNotifier(notify Notifier) Option {
	return func(s *Session) {
		s.notify = notify
	}
}

// WithRestartInProgress allows Restart while a game is still being played.
func WithRestartInProgress(allow bool) Option {
	return func(s *Session) {
		s.restartInProgress = allow
	}
}

// WithClock overrides the time source used for match records.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// Session is the state of one room. Every method holds the room lock for its whole
// duration, so commands against the same room are applied one at a time.
type Session struct {
	mu sync.Mutex

	roomID string
	seats  [2]*entity.Player
	board  *entity.Board
	turn   entity.Symbol
	phase  entity.Phase
	moves  int
	closed bool

	restartInProgress bool
	now               func() time.Time
	notify            Notifier
}

func New(roomID string, opts ...Option) *Session {
	s := &Session{
		roomID: roomID,
		phase:  entity.PhaseAwaitingOpponent,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (that *Session) RoomID() string {
	return that.roomID
}

// Closed reports whether the last player has left.
func (that *Session) Closed() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.closed
}

// Create seats the room's creator as X.
func (that *Session) Create(connID, name string) (Result, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return Result{}, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, that.roomID)
	}

	if that.playerCount() != 0 {
		return Result{}, fmt.Errorf("%w: %s", apperror.ErrRoomFull, that.roomID)
	}

	that.seats[0] = &entity.Player{ConnID: connID, Name: name, Symbol: entity.PlayerX}
	that.phase = entity.PhaseAwaitingOpponent

	return that.publish(that.result(connID, entity.Delivery{
		Audience: entity.ToSender,
		Event: entity.Event{
			Type:    entity.EventRoomCreated,
			RoomID:  that.roomID,
			Symbol:  entity.PlayerX,
			Message: fmt.Sprintf("Room %s created! %s (X) is waiting for an opponent...", that.roomID, name),
		},
	})), nil
}

// Join seats the second player as O and starts the game.
func (that *Session) Join(connID, name string) (Result, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return Result{}, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, that.roomID)
	}

	if that.playerCount() == len(that.seats) {
		return Result{}, fmt.Errorf("%w: %s", apperror.ErrRoomFull, that.roomID)
	}

	if _, ok := that.seatOf(connID); ok {
		return Result{}, fmt.Errorf("%w: already seated in %s", apperror.ErrRoomFull, that.roomID)
	}

	// a seat freed after the game started is not offered to anyone else
	if that.phase != entity.PhaseAwaitingOpponent {
		return Result{}, fmt.Errorf("%w: %s is no longer accepting players", apperror.ErrRoomFull, that.roomID)
	}

	creator := that.seats[0]
	that.seats[1] = &entity.Player{ConnID: connID, Name: name, Symbol: entity.PlayerO}
	that.board = entity.NewBoard()
	that.turn = entity.PlayerX
	that.moves = 0
	that.phase = entity.PhaseInProgress

	return that.publish(that.result(connID,
		entity.Delivery{
			Audience: entity.ToSender,
			Event: entity.Event{
				Type:    entity.EventRoomJoined,
				RoomID:  that.roomID,
				Symbol:  entity.PlayerO,
				Message: fmt.Sprintf("Joined room %s as %s (O)!", that.roomID, name),
			},
		},
		entity.Delivery{
			Audience: entity.ToOthers,
			Event: entity.Event{
				Type:    entity.EventOpponentJoined,
				RoomID:  that.roomID,
				Name:    name,
				Message: fmt.Sprintf("%s joined! The game is about to start...", name),
			},
		},
		entity.Delivery{
			Audience: entity.ToRoom,
			Event: entity.Event{
				Type:          entity.EventGameStarted,
				RoomID:        that.roomID,
				CurrentPlayer: entity.PlayerX,
				Name:          creator.Name,
				Players:       that.roster(),
				Message:       fmt.Sprintf("Game started! %s (X) goes first", creator.Name),
			},
		},
	)), nil
}

// PlaceMark applies a move. State changes only after every check has passed.
func (that *Session) PlaceMark(connID string, row, col int) (Result, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	idx, ok := that.seatOf(connID)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", apperror.ErrUnknownPlayer, that.roomID)
	}

	if that.phase != entity.PhaseInProgress {
		return Result{}, fmt.Errorf("%w: room %s is %s", apperror.ErrNotInProgress, that.roomID, that.phase)
	}

	player := that.seats[idx]
	if player.Symbol != that.turn {
		return Result{}, fmt.Errorf("%w: %s to move", apperror.ErrNotYourTurn, that.turn)
	}

	cell, err := that.board.Get(row, col)
	if err != nil {
		return Result{}, err
	}

	if cell != entity.EmptyCell {
		return Result{}, fmt.Errorf("%w: (%d, %d)", apperror.ErrCellOccupied, row, col)
	}

	if err = that.board.Set(row, col, player.Symbol); err != nil {
		return Result{}, err
	}
	that.moves++

	move := &entity.Position{Row: row, Col: col}

	if line, won := gomoku.Evaluate(that.board, row, col, player.Symbol); won {
		that.phase = entity.PhaseFinished

		res := that.result(connID, entity.Delivery{
			Audience: entity.ToRoom,
			Event: entity.Event{
				Type:    entity.EventGameOver,
				RoomID:  that.roomID,
				Symbol:  player.Symbol,
				Move:    move,
				Winner:  &entity.Winner{Name: player.Name, Symbol: player.Symbol},
				WinLine: &line,
				Message: fmt.Sprintf("%s (%s) wins!", player.Name, player.Symbol),
			},
		})
		res.Record = that.record(player.Symbol, &line)

		return that.publish(res), nil
	}

	if that.board.IsFull() {
		that.phase = entity.PhaseFinished

		res := that.result(connID, entity.Delivery{
			Audience: entity.ToRoom,
			Event: entity.Event{
				Type:    entity.EventGameOver,
				RoomID:  that.roomID,
				Symbol:  player.Symbol,
				Move:    move,
				Message: "Draw!",
			},
		})
		res.Record = that.record(entity.EmptyCell, nil)

		return that.publish(res), nil
	}

	that.turn = player.Symbol.Opponent()

	next := that.nameOf(that.turn)

	return that.publish(that.result(connID, entity.Delivery{
		Audience: entity.ToRoom,
		Event: entity.Event{
			Type:          entity.EventMoveApplied,
			RoomID:        that.roomID,
			Symbol:        player.Symbol,
			Move:          move,
			CurrentPlayer: that.turn,
			Message:       fmt.Sprintf("%s (%s) to move", next, that.turn),
		},
	})), nil
}

// Restart starts a rematch with swapped symbols. X always moves first.
func (that *Session) Restart(connID string) (Result, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.seatOf(connID); !ok {
		return Result{}, fmt.Errorf("%w: %s", apperror.ErrUnknownPlayer, that.roomID)
	}

	if that.playerCount() < len(that.seats) {
		return Result{}, fmt.Errorf("%w: waiting for the opponent to return", apperror.ErrNotEnoughPlayers)
	}

	if that.phase == entity.PhaseInProgress && !that.restartInProgress {
		return Result{}, fmt.Errorf("%w: room %s", apperror.ErrGameInProgress, that.roomID)
	}

	for _, player := range that.seats {
		player.Symbol = player.Symbol.Opponent()
	}

	that.board = entity.NewBoard()
	that.turn = entity.PlayerX
	that.moves = 0
	that.phase = entity.PhaseInProgress

	first := that.nameOf(entity.PlayerX)

	return that.publish(that.result(connID, entity.Delivery{
		Audience: entity.ToRoom,
		Event: entity.Event{
			Type:          entity.EventRestarted,
			RoomID:        that.roomID,
			CurrentPlayer: entity.PlayerX,
			Name:          first,
			Players:       that.roster(),
			Message:       fmt.Sprintf("Rematch! %s (X) goes first", first),
		},
	})), nil
}

// Leave frees the connection's seat. When nobody is left the session closes for good.
func (that *Session) Leave(connID string) (Result, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	idx, ok := that.seatOf(connID)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", apperror.ErrUnknownPlayer, that.roomID)
	}

	leaving := that.seats[idx]
	that.seats[idx] = nil

	if that.playerCount() == 0 {
		that.closed = true

		res := that.result(connID)
		res.Empty = true

		return that.publish(res), nil
	}

	return that.publish(that.result(connID, entity.Delivery{
		Audience: entity.ToOthers,
		Event: entity.Event{
			Type:    entity.EventOpponentLeft,
			RoomID:  that.roomID,
			Name:    leaving.Name,
			Message: fmt.Sprintf("%s left the room!", leaving.Name),
		},
	})), nil
}

// State is a read-only copy of a session.
type State struct {
	RoomID  string
	Phase   entity.Phase
	Turn    entity.Symbol
	Players []entity.Player
	Board   [][]entity.Symbol
	Moves   int
}

func (that *Session) Snapshot() State {
	that.mu.Lock()
	defer that.mu.Unlock()

	state := State{
		RoomID: that.roomID,
		Phase:  that.phase,
		Moves:  that.moves,
	}

	if that.phase == entity.PhaseInProgress {
		state.Turn = that.turn
	}

	for _, player := range that.seats {
		if player != nil {
			state.Players = append(state.Players, *player)
		}
	}

	if that.board != nil {
		state.Board = that.board.Rows()
	}

	return state
}

func (that *Session) playerCount() int {
	n := 0
	for _, player := range that.seats {
		if player != nil {
			n++
		}
	}
	return n
}

func (that *Session) seatOf(connID string) (int, bool) {
	for i, player := range that.seats {
		if player != nil && player.ConnID == connID {
			return i, true
		}
	}
	return -1, false
}

func (that *Session) nameOf(mark entity.Symbol) string {
	for _, player := range that.seats {
		if player != nil && player.Symbol == mark {
			return player.Name
		}
	}
	return ""
}

func (that *Session) members() []string {
	members := make([]string, 0, len(that.seats))
	for _, player := range that.seats {
		if player != nil {
			members = append(members, player.ConnID)
		}
	}
	return members
}

func (that *Session) roster() map[entity.Symbol]string {
	roster := make(map[entity.Symbol]string, len(that.seats))
	for _, player := range that.seats {
		if player != nil {
			roster[player.Symbol] = player.Name
		}
	}
	return roster
}

func (that *Session) record(winner entity.Symbol, line *entity.WinLine) *entity.MatchRecord {
	return &entity.MatchRecord{
		RoomID:     that.roomID,
		PlayerX:    that.nameOf(entity.PlayerX),
		PlayerO:    that.nameOf(entity.PlayerO),
		Winner:     winner,
		WinLine:    line,
		Moves:      that.moves,
		FinishedAt: that.now(),
	}
}

func (that *Session) result(sender string, deliveries ...entity.Delivery) Result {
	return Result{
		RoomID:     that.roomID,
		Sender:     sender,
		Deliveries: deliveries,
		Members:    that.members(),
	}
}

// publish hands res to the notifier. Callers hold the room lock.
func (that *Session) publish(res Result) Result {
	if that.notify != nil {
		that.notify(res)
	}

	return res
}
