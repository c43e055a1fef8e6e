package mines

import (
	"strconv"
	"strings"
)

// CellView is what a renderer may know about a cell. Mine is only set once
// the cell is revealed or the game is over; Adjacent only for revealed safe
// cells.
type CellView struct {
	State    CellState `json:"state"`
	Mine     bool      `json:"mine,omitempty"`
	Adjacent int       `json:"adjacent,omitempty"`
}

func (c CellView) String() string {
	switch {
	case c.State == Flagged:
		return "*"
	case c.Mine:
		return "!"
	case c.State == Revealed:
		return strconv.Itoa(c.Adjacent)
	default:
		return " "
	}
}

type View struct {
	Status
	Cells [][]CellView `json:"cells"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	over := s.phase.Terminal()
	cells := make([][]CellView, s.size)
	for row := range s.size {
		cells[row] = make([]CellView, s.size)
		for col := range s.size {
			c := s.board.at(row, col)
			v := CellView{State: c.State}
			if c.State == Revealed || over {
				v.Mine = c.IsMine
			}
			if c.State == Revealed && !c.IsMine {
				v.Adjacent = s.board.AdjacentMines(row, col)
			}
			cells[row][col] = v
		}
	}
	return View{Status: s.status(), Cells: cells}
}

func (v View) String() string {
	var b strings.Builder
	for _, row := range v.Cells {
		for _, c := range row {
			b.WriteString(c.String() + " ")
		}
		b.WriteString("\n")
	}
	return b.String()
}
