package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/pumpkin-sweeper/internal/config"
	"github.com/vancomm/pumpkin-sweeper/internal/middleware"
	"github.com/vancomm/pumpkin-sweeper/internal/registry"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	logger    *slog.Logger
	accessLog *logrus.Logger
	router    *http.ServeMux
	registry  *registry.Registry
	game      *config.Game
	tokens    *config.Tokens
	ws        *config.WebSocket
	basePath  string
	addr      string
}

type Config struct {
	Game      *config.Game
	Tokens    *config.Tokens
	WebSocket *config.WebSocket
	AccessLog *logrus.Logger
	BasePath  string
	Addr      string
}

func New(logger *slog.Logger, cfg Config) *App {
	app := &App{
		logger:    logger,
		accessLog: cfg.AccessLog,
		router:    http.NewServeMux(),
		registry:  registry.New(logger, cfg.Game.SessionTTL),
		game:      cfg.Game,
		tokens:    cfg.Tokens,
		ws:        cfg.WebSocket,
		basePath:  cfg.BasePath,
		addr:      cfg.Addr,
	}

	app.loadRoutes()

	return app
}

// Handler is the full middleware stack around the router.
func (a *App) Handler() http.Handler {
	var accessLog middleware.Middleware
	if a.accessLog != nil {
		accessLog = middleware.AccessLog(a.accessLog)
	}

	var h http.Handler = a.router
	if a.basePath != "" {
		h = http.StripPrefix(a.basePath, h)
	}

	return middleware.Wrap(
		h,
		middleware.Session(a.tokens),
		middleware.Cors(),
		middleware.Logging(a.logger),
		accessLog,
	)
}

// Start serves until ctx is cancelled or the listener fails, then shuts the
// server down and closes every live session.
func (a *App) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:    a.addr,
		Handler: a.Handler(),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("server listening",
			slog.String("addr", a.addr),
			slog.String("base path", a.basePath),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return a.registry.Run(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		sCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(sCtx)
	})

	return g.Wait()
}
