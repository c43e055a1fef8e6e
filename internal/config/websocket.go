package config

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

type WebSocket struct {
	Upgrader   websocket.Upgrader
	WriteWait  time.Duration
	PongWait   time.Duration
	PingPeriod time.Duration
}

func NewWebSocket() (*WebSocket, error) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	ws := &WebSocket{
		Upgrader:   upgrader,
		WriteWait:  10 * time.Second,
		PongWait:   30 * time.Second,
		PingPeriod: 25 * time.Second,
	}

	return ws, nil
}
