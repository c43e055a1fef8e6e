package app

import (
	"net/http"

	"github.com/vancomm/pumpkin-sweeper/internal/handlers"
	"github.com/vancomm/pumpkin-sweeper/internal/metrics"
)

func (a *App) loadRoutes() {
	game := handlers.NewGameHandler(
		a.logger, a.registry, a.game, a.tokens, a.ws,
	)

	a.router.HandleFunc("POST /game", game.NewGame)
	a.router.HandleFunc("GET /game/{id}", game.Fetch)
	a.router.HandleFunc("POST /game/{id}/move", game.Move)
	a.router.HandleFunc("POST /game/{id}/click", game.Click)
	a.router.HandleFunc("POST /game/{id}/restart", game.Restart)
	a.router.HandleFunc("DELETE /game/{id}", game.Delete)
	a.router.HandleFunc("GET /game/{id}/connect", game.Connect)

	a.router.HandleFunc("GET /status", a.status)
	a.router.Handle("GET /metrics", metrics.Handler())
}

type status struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

func (a *App) status(w http.ResponseWriter, r *http.Request) {
	handlers.SendJSONOrLog(w, a.logger, status{"ok", a.registry.Len()})
}
