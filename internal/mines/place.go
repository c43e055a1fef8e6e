package mines

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// A Placer lays count mines on an empty board, keeping the safe zone of
// origin clear.
type Placer interface {
	Place(b *Board, origin Point, count int) error
}

// RandomPlacer draws coordinates uniformly and rejects occupied and safe
// cells until count mines are down.
type RandomPlacer struct {
	Rand *rand.Rand
}

func NewRandomPlacer(r *rand.Rand) *RandomPlacer {
	if r == nil {
		r = newRand()
	}
	return &RandomPlacer{Rand: r}
}

func (p *RandomPlacer) Place(b *Board, origin Point, count int) error {
	safe := b.SafeZone(origin)
	if count > b.Len()-len(safe) {
		return fmt.Errorf(
			"%w: %d mines do not fit outside the safe zone of %s",
			ErrTooManyMines, count, origin,
		)
	}
	for placed := 0; placed < count; {
		row, col := p.Rand.IntN(b.Size), p.Rand.IntN(b.Size)
		c := b.at(row, col)
		if c.IsMine || slices.Contains(safe, c.Point()) {
			continue
		}
		c.IsMine = true
		placed++
	}
	return nil
}

// FixedLayout places mines at predetermined coordinates.
type FixedLayout []Point

func (l FixedLayout) Place(b *Board, origin Point, count int) error {
	if len(l) != count {
		return fmt.Errorf("%w: layout has %d mines, want %d", ErrLayout, len(l), count)
	}
	safe := b.SafeZone(origin)
	for i, p := range l {
		if !b.InBounds(p.Row, p.Col) {
			return fmt.Errorf("%w: mine %s out of bounds", ErrLayout, p)
		}
		if slices.Contains(safe, p) {
			return fmt.Errorf("%w: mine %s inside the safe zone of %s", ErrLayout, p, origin)
		}
		if slices.Contains(l[:i], p) {
			return fmt.Errorf("%w: duplicate mine %s", ErrLayout, p)
		}
	}
	for _, p := range l {
		b.at(p.Row, p.Col).IsMine = true
	}
	return nil
}
