package entity

// Axis is one of the four line directions checked for five in a row.
type Axis string

const (
	AxisHorizontal   Axis = "horizontal"
	AxisVertical     Axis = "vertical"
	AxisDiagonalDown Axis = "diagonal-down"
	AxisDiagonalUp   Axis = "diagonal-up"
)

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// WinLine is the geometry of a completed run.
type WinLine struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
	Axis  Axis     `json:"axis"`
}
