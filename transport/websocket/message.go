package websocket

import (
	"encoding/json"
)

const (
	actionCreateRoom  = "create_room"
	actionJoinRoom    = "join_room"
	actionMakeMove    = "make_move"
	actionRestartGame = "restart_game"
	actionLeaveRoom   = "leave_room"
)

// Message is the envelope of every frame in both directions.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// RoomPayload is sent with create_room and join_room.
type RoomPayload struct {
	RoomID     string `json:"room_id"`
	PlayerName string `json:"player_name"`
}

// MovePayload is sent with make_move. Row and Col are pointers so a missing
// coordinate is told apart from zero.
type MovePayload struct {
	RoomID string `json:"room_id"`
	Row    *int   `json:"row"`
	Col    *int   `json:"col"`
}

// RoomRefPayload is sent with restart_game and leave_room.
type RoomRefPayload struct {
	RoomID string `json:"room_id"`
}
