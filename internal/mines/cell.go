package mines

import "fmt"

type CellState uint8

const (
	Hidden CellState = iota
	Flagged
	Revealed
)

func (s CellState) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Flagged:
		return "flagged"
	case Revealed:
		return "revealed"
	default:
		return fmt.Sprintf("CellState(%d)", uint8(s))
	}
}

// [CellState] implements [encoding.TextMarshaler]
func (s CellState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Point struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

type Cell struct {
	Row, Col int
	IsMine   bool
	State    CellState
}

func (c Cell) Point() Point {
	return Point{c.Row, c.Col}
}
