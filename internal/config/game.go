package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/vancomm/pumpkin-sweeper/internal/mines"
)

type Game struct {
	Size         int
	MineFraction float64
	SessionTTL   time.Duration
}

func NewGame() (*Game, error) {
	g := &Game{
		Size:         mines.DefaultSize,
		MineFraction: mines.DefaultMineFraction,
		SessionTTL:   time.Hour,
	}

	if v, ok := os.LookupEnv("GAME_BOARD_SIZE"); ok {
		size, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("unable to parse GAME_BOARD_SIZE: %w", err)
		}
		g.Size = size
	}

	if v, ok := os.LookupEnv("GAME_MINE_FRACTION"); ok {
		fraction, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("unable to parse GAME_MINE_FRACTION: %w", err)
		}
		g.MineFraction = fraction
	}

	if v, ok := os.LookupEnv("GAME_SESSION_TTL"); ok {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("unable to parse GAME_SESSION_TTL: %w", err)
		}
		if ttl <= 0 {
			return nil, fmt.Errorf("GAME_SESSION_TTL must be positive, got %s", ttl)
		}
		g.SessionTTL = ttl
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}

	return g, nil
}

// Validate builds and discards a session so a bad board configuration is
// reported at startup rather than on the first request.
func (g Game) Validate() error {
	s, err := mines.NewGame(g.Size, g.MineFraction)
	if err != nil {
		return fmt.Errorf("invalid game config: %w", err)
	}
	s.Close()
	return nil
}

// NewSession starts a game with the configured board.
func (g Game) NewSession(opts ...mines.Option) (*mines.Session, error) {
	return mines.NewGame(g.Size, g.MineFraction, opts...)
}
