package entity

import "time"

// MatchRecord summarizes one finished game. Winner is empty for a draw.
type MatchRecord struct {
	RoomID     string    `json:"room_id"`
	PlayerX    string    `json:"player_x"`
	PlayerO    string    `json:"player_o"`
	Winner     Symbol    `json:"winner,omitempty"`
	WinLine    *WinLine  `json:"win_line,omitempty"`
	Moves      int       `json:"moves"`
	FinishedAt time.Time `json:"finished_at"`
}

func (that *MatchRecord) IsDraw() bool {
	return that.Winner == EmptyCell
}
