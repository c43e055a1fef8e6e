package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vancomm/pumpkin-sweeper/internal/mines"
)

var (
	GamesStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sweeper_games_started_total",
			Help: "Games that received their first reveal",
		},
	)
	GamesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweeper_games_finished_total",
			Help: "Games that reached a terminal phase",
		},
		[]string{"phase"},
	)
	Moves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sweeper_moves_total",
			Help: "Player moves by kind and outcome",
		},
		[]string{"move", "result"},
	)
	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sweeper_sessions_active",
			Help: "Sessions held in memory",
		},
	)
)

func init() {
	prometheus.MustRegister(GamesStarted)
	prometheus.MustRegister(GamesFinished)
	prometheus.MustRegister(Moves)
	prometheus.MustRegister(SessionsActive)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// Observe counts the phase transitions of s until unsubscribed.
func Observe(s *mines.Session) (unsubscribe func()) {
	return s.Subscribe(func(e mines.Event) {
		if e.Kind != mines.PhaseChanged {
			return
		}
		switch e.Phase {
		case mines.Active:
			GamesStarted.Inc()
		case mines.Won, mines.Lost:
			GamesFinished.WithLabelValues(e.Phase.String()).Inc()
		}
	})
}

func Move(move string, outcome mines.Outcome) {
	Moves.WithLabelValues(move, outcome.String()).Inc()
}
