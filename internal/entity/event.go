package entity

import (
	"fmt"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
)

type EventType string

const (
	EventRoomCreated     EventType = "room_created"
	EventRoomJoined      EventType = "room_joined"
	EventOpponentJoined  EventType = "opponent_joined"
	EventGameStarted     EventType = "game_start"
	EventMoveApplied     EventType = "move_made"
	EventGameOver        EventType = "game_over"
	EventRestarted       EventType = "game_restarted"
	EventOpponentLeft    EventType = "player_left"
	EventCommandRejected EventType = "error"
)

// Winner names the player who completed a line.
type Winner struct {
	Name   string `json:"name"`
	Symbol Symbol `json:"symbol"`
}

// Event is a server notification. Only the fields relevant to Type are set.
type Event struct {
	Type EventType `json:"-"`

	RoomID        string            `json:"room_id,omitempty"`
	Symbol        Symbol            `json:"symbol,omitempty"`
	Name          string            `json:"name,omitempty"`
	CurrentPlayer Symbol            `json:"current_player,omitempty"`
	Players       map[Symbol]string `json:"players,omitempty"`
	Move          *Position         `json:"move,omitempty"`
	Winner        *Winner           `json:"winner,omitempty"`
	WinLine       *WinLine          `json:"win_line,omitempty"`
	Kind          apperror.Kind     `json:"kind,omitempty"`
	Message       string            `json:"message"`
}

// NewRejection builds the CommandRejected event for err.
func NewRejection(err error) Event {
	return Event{
		Type:    EventCommandRejected,
		Kind:    apperror.KindOf(err),
		Message: err.Error(),
	}
}

// Audience selects who receives a Delivery.
type Audience int

const (
	ToSender Audience = iota
	ToRoom
	ToOthers
	ToConnection
)

// Delivery pairs an event with its recipients.
type Delivery struct {
	Audience Audience
	ConnID   string
	Event    Event
}

// Recipients resolves the audience against the sender and the room's current members.
func (that Delivery) Recipients(sender string, members []string) []string {
	switch that.Audience {
	case ToSender:
		return []string{sender}
	case ToConnection:
		return []string{that.ConnID}
	case ToRoom:
		return append([]string(nil), members...)
	case ToOthers:
		others := make([]string, 0, len(members))
		for _, member := range members {
			if member != sender {
				others = append(others, member)
			}
		}
		return others
	default:
		panic(fmt.Sprintf("unknown audience %d", that.Audience))
	}
}
