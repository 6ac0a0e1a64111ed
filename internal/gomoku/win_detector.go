package gomoku

import "github.com/rocketscienceinc/gomoku-backend/internal/entity"

// WinLength is the number of contiguous marks that wins the game.
const WinLength = 5

type direction struct {
	dRow, dCol int
	axis       entity.Axis
}

// directions are tested in this order; the first completed axis is reported.
var directions = [...]direction{
	{0, 1, entity.AxisHorizontal},
	{1, 0, entity.AxisVertical},
	{1, 1, entity.AxisDiagonalDown},
	{1, -1, entity.AxisDiagonalUp},
}

type cellReader interface {
	Get(row, col int) (entity.Symbol, error)
}

// Evaluate reports whether the mark just placed at (row, col) completes five in a row.
// The returned line spans the whole run through (row, col), even when it is longer than five.
func Evaluate(board cellReader, row, col int, mark entity.Symbol) (entity.WinLine, bool) {
	for _, d := range directions {
		count := 1
		end := entity.Position{Row: row, Col: col}
		start := end

		for r, c := row+d.dRow, col+d.dCol; holds(board, r, c, mark); r, c = r+d.dRow, c+d.dCol {
			count++
			end = entity.Position{Row: r, Col: c}
		}

		for r, c := row-d.dRow, col-d.dCol; holds(board, r, c, mark); r, c = r-d.dRow, c-d.dCol {
			count++
			start = entity.Position{Row: r, Col: c}
		}

		if count >= WinLength {
			return entity.WinLine{Start: start, End: end, Axis: d.axis}, true
		}
	}

	return entity.WinLine{}, false
}

func holds(board cellReader, row, col int, mark entity.Symbol) bool {
	cell, err := board.Get(row, col)
	return err == nil && cell == mark
}
