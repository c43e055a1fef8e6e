package mines

import "errors"

var (
	ErrInvalidSize     = errors.New("board size must be positive")
	ErrInvalidFraction = errors.New("mine fraction must be in [0, 1)")
	ErrTooManyMines    = errors.New("too many mines for board")
	ErrLayout          = errors.New("invalid mine layout")
)
