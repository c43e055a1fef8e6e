package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/vancomm/pumpkin-sweeper/internal/app"
	"github.com/vancomm/pumpkin-sweeper/internal/config"
	"github.com/vancomm/pumpkin-sweeper/internal/mines"
)

func main() {
	bootLogger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	if err := config.LoadDotEnv(); err != nil {
		bootLogger.Error("failed to load .env", slog.Any("error", err))
		os.Exit(1)
	}

	var handler slog.Handler = slog.NewJSONHandler(os.Stderr, nil)
	if config.Development() {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level: slog.LevelDebug,
		})
	}
	logger := slog.New(handler)
	mines.Log = logger.With(slog.String("component", "mines"))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	game, err := config.NewGame()
	if err != nil {
		logger.Error("failed to read game config", slog.Any("error", err))
		os.Exit(1)
	}

	tokens, err := config.NewTokens()
	if err != nil {
		logger.Error("failed to read session token config", slog.Any("error", err))
		os.Exit(1)
	}

	ws, err := config.NewWebSocket()
	if err != nil {
		logger.Error("failed to read ws config", slog.Any("error", err))
		os.Exit(1)
	}

	accessLog, err := config.NewAccessLog()
	if err != nil {
		logger.Error("failed to open access log", slog.Any("error", err))
		os.Exit(1)
	}

	a := app.New(logger, app.Config{
		Game:      game,
		Tokens:    tokens,
		WebSocket: ws,
		AccessLog: accessLog,
		BasePath:  config.BasePath(),
		Addr:      config.Addr(),
	})

	if err := a.Start(ctx); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
