package handlers

import (
	"fmt"
	"strings"

	"github.com/vancomm/pumpkin-sweeper/internal/metrics"
	"github.com/vancomm/pumpkin-sweeper/internal/mines"
)

type GameMove uint8

const (
	Reveal GameMove = iota + 1
	Flag
)

func (m GameMove) String() string {
	switch m {
	case Reveal:
		return "reveal"
	case Flag:
		return "flag"
	default:
		return fmt.Sprintf("GameMove(%d)", uint8(m))
	}
}

var ErrBadMove = fmt.Errorf("move must be one of 'reveal', 'flag'")

func ParseGameMove(s string) (move GameMove, err error) {
	switch strings.ToLower(s) {
	case "reveal", "open":
		move = Reveal
	case "flag":
		move = Flag
	default:
		err = ErrBadMove
	}
	return
}

// Apply feeds the move to s and counts it.
func (m GameMove) Apply(s *mines.Session, row, col int) mines.Outcome {
	var outcome mines.Outcome
	switch m {
	case Reveal:
		outcome = s.Reveal(row, col)
	case Flag:
		outcome = s.ToggleFlag(row, col)
	}
	metrics.Move(m.String(), outcome)
	return outcome
}

type Button uint8

const (
	Primary Button = iota + 1
	Secondary
)

var ErrBadButton = fmt.Errorf("button must be one of 'primary', 'secondary'")

func ParseButton(s string) (b Button, err error) {
	switch strings.ToLower(s) {
	case "primary", "left":
		b = Primary
	case "secondary", "right":
		b = Secondary
	default:
		err = ErrBadButton
	}
	return
}

// Click maps a pointer input to a move: secondary clicks flag, and so does a
// primary tap while the client is in flag mode.
func Click(b Button, flagMode bool) GameMove {
	if b == Secondary || flagMode {
		return Flag
	}
	return Reveal
}
