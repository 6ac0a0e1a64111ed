package entity

import (
	"fmt"

	"github.com/rocketscienceinc/gomoku-backend/internal/apperror"
)

// BoardSize is the side of the square grid.
const BoardSize = 15

// Symbol is a player's mark. EmptyCell marks a free cell.
type Symbol string

const (
	PlayerX Symbol = "X"
	PlayerO Symbol = "O"

	EmptyCell Symbol = ""
)

// Opponent returns the other mark.
func (that Symbol) Opponent() Symbol {
	if that == PlayerX {
		return PlayerO
	}
	return PlayerX
}

// Phase is the position of a room in its state machine.
type Phase string

const (
	PhaseAwaitingOpponent Phase = "awaiting_opponent"
	PhaseInProgress       Phase = "in_progress"
	PhaseFinished         Phase = "finished"
)

// Board is a BoardSize x BoardSize grid. Cells only go from EmptyCell to a mark;
// a new game gets a new Board.
type Board struct {
	cells  [BoardSize][BoardSize]Symbol
	filled int
}

func NewBoard() *Board {
	return &Board{}
}

// InBounds reports whether (row, col) lies on the grid.
func InBounds(row, col int) bool {
	return row >= 0 && row < BoardSize && col >= 0 && col < BoardSize
}

func (that *Board) Get(row, col int) (Symbol, error) {
	if !InBounds(row, col) {
		return EmptyCell, fmt.Errorf("%w: (%d, %d)", apperror.ErrOutOfBounds, row, col)
	}

	return that.cells[row][col], nil
}

func (that *Board) Set(row, col int, mark Symbol) error {
	if !InBounds(row, col) {
		return fmt.Errorf("%w: (%d, %d)", apperror.ErrOutOfBounds, row, col)
	}

	if that.cells[row][col] != EmptyCell {
		return fmt.Errorf("%w: (%d, %d)", apperror.ErrCellOccupied, row, col)
	}

	that.cells[row][col] = mark
	that.filled++

	return nil
}

func (that *Board) IsFull() bool {
	return that.filled == BoardSize*BoardSize
}

// Rows returns a copy of the grid, row by row.
func (that *Board) Rows() [][]Symbol {
	rows := make([][]Symbol, BoardSize)
	for r := range rows {
		rows[r] = make([]Symbol, BoardSize)
		copy(rows[r], that.cells[r][:])
	}

	return rows
}
