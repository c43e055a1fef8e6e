package mines

// Board is a square grid stored row-major.
type Board struct {
	Size  int
	cells []Cell
}

func NewBoard(size int) *Board {
	cells := make([]Cell, size*size)
	for i := range cells {
		cells[i] = Cell{Row: i / size, Col: i % size}
	}
	return &Board{Size: size, cells: cells}
}

func (b *Board) Len() int {
	return len(b.cells)
}

func (b *Board) InBounds(row, col int) bool {
	return 0 <= row && row < b.Size && 0 <= col && col < b.Size
}

func (b *Board) index(row, col int) int {
	return row*b.Size + col
}

func (b *Board) at(row, col int) *Cell {
	return &b.cells[b.index(row, col)]
}

// At returns a copy of the cell. Panics when out of bounds.
func (b *Board) At(row, col int) Cell {
	return *b.at(row, col)
}

// Neighbors returns the up to 8 in-bounds cells around (row, col).
func (b *Board) Neighbors(row, col int) []Point {
	neighbors := make([]Point, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			if b.InBounds(row+dr, col+dc) {
				neighbors = append(neighbors, Point{row + dr, col + dc})
			}
		}
	}
	return neighbors
}

func (b *Board) AdjacentMines(row, col int) (count int) {
	for _, n := range b.Neighbors(row, col) {
		if b.at(n.Row, n.Col).IsMine {
			count++
		}
	}
	return
}

// SafeZone is the origin plus its neighbors.
func (b *Board) SafeZone(origin Point) []Point {
	return append([]Point{origin}, b.Neighbors(origin.Row, origin.Col)...)
}

func (b *Board) Mines() []Point {
	var mines []Point
	for _, c := range b.cells {
		if c.IsMine {
			mines = append(mines, c.Point())
		}
	}
	return mines
}

func (b *Board) count(pred func(Cell) bool) (n int) {
	for _, c := range b.cells {
		if pred(c) {
			n++
		}
	}
	return
}

func (b *Board) RevealedSafe() int {
	return b.count(func(c Cell) bool { return c.State == Revealed && !c.IsMine })
}
