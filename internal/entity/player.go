package entity

// Player is one seat of a room, identified by the connection that took it.
type Player struct {
	ConnID string `json:"-"`
	Name   string `json:"name"`
	Symbol Symbol `json:"symbol"`
}
