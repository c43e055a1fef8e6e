package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vancomm/pumpkin-sweeper/internal/config"
	"github.com/vancomm/pumpkin-sweeper/internal/metrics"
	"github.com/vancomm/pumpkin-sweeper/internal/middleware"
	"github.com/vancomm/pumpkin-sweeper/internal/mines"
	"github.com/vancomm/pumpkin-sweeper/internal/registry"
)

var (
	ErrUnauthorized = errors.New("session token does not grant access to this game")
	ErrOutOfBounds  = errors.New("invalid cell position")
)

type GameHandler struct {
	logger     *slog.Logger
	registry   *registry.Registry
	tokens     *config.Tokens
	ws         *config.WebSocket
	newSession func() (*mines.Session, error)
}

func NewGameHandler(
	logger *slog.Logger,
	reg *registry.Registry,
	game *config.Game,
	tokens *config.Tokens,
	ws *config.WebSocket,
) *GameHandler {
	return &GameHandler{
		logger:   logger,
		registry: reg,
		tokens:   tokens,
		ws:       ws,
		newSession: func() (*mines.Session, error) {
			return game.NewSession()
		},
	}
}

// authorize checks that the request carries a token issued for the game in
// its path.
func (g GameHandler) authorize(w http.ResponseWriter, r *http.Request) (id string, ok bool) {
	id = r.PathValue("id")
	claims, ok := middleware.SessionClaims(r.Context())
	if !ok || claims.GameID != id {
		SendErrorOrLog(w, g.logger, http.StatusUnauthorized, ErrUnauthorized)
		return "", false
	}
	return id, true
}

func (g GameHandler) lookup(w http.ResponseWriter, id string) (*mines.Session, bool) {
	s, err := g.registry.Get(id)
	if errors.Is(err, registry.ErrNotFound) {
		SendErrorOrLog(w, g.logger, http.StatusNotFound, err)
		return nil, false
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to fetch game", slog.String("id", id), slog.Any("error", err))
		return nil, false
	}
	return s, true
}

func (g GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	s, err := g.newSession()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to create a new game", slog.Any("error", err))
		return
	}
	metrics.Observe(s)

	id := g.registry.Create(s)
	token, err := g.tokens.Sign(id)
	if err != nil {
		g.registry.Delete(id)
		w.WriteHeader(http.StatusInternalServerError)
		g.logger.Error("unable to sign session token", slog.Any("error", err))
		return
	}

	g.logger.Debug("created game", slog.String("id", id))

	dto := NewGameDTO(id, s)
	dto.Token = token
	SendJSONWithStatusOrLog(w, g.logger, http.StatusCreated, dto)
}

func (g GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s, ok := g.lookup(w, id)
	if !ok {
		return
	}
	SendJSONOrLog(w, g.logger, NewGameDTO(id, s))
}

func (g GameHandler) Move(w http.ResponseWriter, r *http.Request) {
	move, pos, err := ParseMoveDTO(r.URL.Query())
	if err != nil {
		SendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	}
	g.applyMove(w, r, move, pos)
}

func (g GameHandler) Click(w http.ResponseWriter, r *http.Request) {
	move, pos, err := ParseClickDTO(r.URL.Query())
	if err != nil {
		SendErrorOrLog(w, g.logger, http.StatusBadRequest, err)
		return
	}
	g.applyMove(w, r, move, pos)
}

func (g GameHandler) applyMove(w http.ResponseWriter, r *http.Request, move GameMove, pos PositionDTO) {
	id, ok := g.authorize(w, r)
	if !ok {
		return
	}
	s, ok := g.lookup(w, id)
	if !ok {
		return
	}
	if size := s.Status().Size; !inBounds(size, pos.Row, pos.Col) {
		SendErrorOrLog(w, g.logger, http.StatusBadRequest,
			fmt.Errorf("%w: (%d,%d) on a %dx%d board", ErrOutOfBounds, pos.Row, pos.Col, size, size))
		return
	}

	outcome := move.Apply(s, pos.Row, pos.Col)
	SendJSONOrLog(w, g.logger, NewGameDTO(id, s).WithResult(outcome))
}

func (g GameHandler) Restart(w http.ResponseWriter, r *http.Request) {
	id, ok := g.authorize(w, r)
	if !ok {
		return
	}
	s, ok := g.lookup(w, id)
	if !ok {
		return
	}
	s.Restart()
	SendJSONOrLog(w, g.logger, NewGameDTO(id, s))
}

func (g GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := g.authorize(w, r)
	if !ok {
		return
	}
	if err := g.registry.Delete(id); err != nil {
		SendErrorOrLog(w, g.logger, http.StatusNotFound, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func inBounds(size, row, col int) bool {
	return row >= 0 && row < size && col >= 0 && col < size
}
