package mines

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeighbors(t *testing.T) {
	t.Parallel()

	b := NewBoard(5)
	tests := []struct {
		name     string
		row, col int
		want     int
	}{
		{"corner", 0, 0, 3},
		{"far corner", 4, 4, 3},
		{"edge", 0, 2, 5},
		{"inner", 2, 2, 8},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			neighbors := b.Neighbors(test.row, test.col)
			assert.Len(t, neighbors, test.want)
			for _, n := range neighbors {
				assert.True(t, b.InBounds(n.Row, n.Col))
				assert.NotEqual(t, Point{test.row, test.col}, n)
				assert.LessOrEqual(t, abs(n.Row-test.row), 1)
				assert.LessOrEqual(t, abs(n.Col-test.col), 1)
			}
		})
	}
}

func TestNeighborsSingleCell(t *testing.T) {
	assert.Empty(t, NewBoard(1).Neighbors(0, 0))
}

func TestAdjacentMines(t *testing.T) {
	b := NewBoard(3)
	b.at(0, 0).IsMine = true
	b.at(2, 2).IsMine = true

	assert.Equal(t, 2, b.AdjacentMines(1, 1))
	assert.Equal(t, 1, b.AdjacentMines(0, 1))
	assert.Equal(t, 0, b.AdjacentMines(0, 2))
	assert.Equal(t, 0, b.AdjacentMines(0, 0), "a mine does not count itself")
}

func TestCellCoordinates(t *testing.T) {
	b := NewBoard(4)
	for row := range 4 {
		for col := range 4 {
			c := b.At(row, col)
			assert.Equal(t, Point{row, col}, c.Point())
			assert.Equal(t, Hidden, c.State)
			assert.False(t, c.IsMine)
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
