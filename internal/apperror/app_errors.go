package apperror

import "errors"

var (
	ErrRoomAlreadyExists = errors.New("room already exists")
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomFull          = errors.New("room is full")
	ErrUnknownPlayer     = errors.New("player is not in this room")
	ErrNotInProgress     = errors.New("game is not in progress")
	ErrNotYourTurn       = errors.New("it's not your turn")
	ErrOutOfBounds       = errors.New("cell is out of bounds")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrNotEnoughPlayers  = errors.New("not enough players in the room")
	ErrGameInProgress    = errors.New("game is still in progress")

	ErrBadRequest = errors.New("bad request")
	ErrInternal   = errors.New("internal error")
)

// Kind is the wire name of an error, sent with every rejected command.
type Kind string

const (
	KindRoomAlreadyExists Kind = "room_already_exists"
	KindRoomNotFound      Kind = "room_not_found"
	KindRoomFull          Kind = "room_full"
	KindUnknownPlayer     Kind = "unknown_player"
	KindNotInProgress     Kind = "not_in_progress"
	KindNotYourTurn       Kind = "not_your_turn"
	KindOutOfBounds       Kind = "out_of_bounds"
	KindCellOccupied      Kind = "cell_occupied"
	KindNotEnoughPlayers  Kind = "not_enough_players"
	KindGameInProgress    Kind = "game_in_progress"
	KindBadRequest        Kind = "bad_request"
	KindInternal          Kind = "internal"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrRoomAlreadyExists, KindRoomAlreadyExists},
	{ErrRoomNotFound, KindRoomNotFound},
	{ErrRoomFull, KindRoomFull},
	{ErrUnknownPlayer, KindUnknownPlayer},
	{ErrNotInProgress, KindNotInProgress},
	{ErrNotYourTurn, KindNotYourTurn},
	{ErrOutOfBounds, KindOutOfBounds},
	{ErrCellOccupied, KindCellOccupied},
	{ErrNotEnoughPlayers, KindNotEnoughPlayers},
	{ErrGameInProgress, KindGameInProgress},
	{ErrBadRequest, KindBadRequest},
}

// KindOf maps err to its wire kind. Errors outside the taxonomy are reported as internal.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}

	return KindInternal
}
