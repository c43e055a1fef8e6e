package handlers

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vancomm/pumpkin-sweeper/internal/mines"
)

const (
	wsMaxMessageSize = 4096
	wsSendBuffer     = 32
)

type wsMessage struct {
	Event   string      `json:"event"`
	Game    *mines.View `json:"game,omitempty"`
	Elapsed int         `json:"elapsed_seconds,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func stateMessage(event string, s *mines.Session) wsMessage {
	v := s.View()
	return wsMessage{Event: event, Game: &v}
}

func eventMessage(s *mines.Session, e mines.Event) wsMessage {
	if e.Kind == mines.TimeTick {
		return wsMessage{Event: e.Kind.String(), Elapsed: e.Elapsed}
	}
	return stateMessage(e.Kind.String(), s)
}

func iterBySep(s string, sep string) iter.Seq[string] {
	return func(yield func(string) bool) {
		found := true
		var piece string
		for found {
			piece, s, found = strings.Cut(s, sep)
			if !yield(piece) {
				return
			}
		}
	}
}

func parseRowCol(args []string, size int) (row int, col int, err error) {
	if row, err = strconv.Atoi(args[0]); err != nil {
		err = fmt.Errorf("row must be an int")
		return
	}
	if col, err = strconv.Atoi(args[1]); err != nil {
		err = fmt.Errorf("col must be an int")
		return
	}
	if !inBounds(size, row, col) {
		err = ErrOutOfBounds
	}
	return
}

var commandNargs = map[string]int{
	"g": 0, // get state
	"o": 2, // open (reveal)
	"f": 2, // toggle flag
	"n": 0, // new game
}

var errUnknownCommand = errors.New("unknown command")

func execute(s *mines.Session, command string) error {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return errUnknownCommand
	}

	nargs, ok := commandNargs[parts[0]]
	if !ok {
		return fmt.Errorf("%w: %q", errUnknownCommand, parts[0])
	}
	if nargs != len(parts)-1 {
		return fmt.Errorf("%q takes %d arguments, got %d", parts[0], nargs, len(parts)-1)
	}

	switch parts[0] {
	case "o", "f":
		row, col, err := parseRowCol(parts[1:], s.Status().Size)
		if err != nil {
			return err
		}
		move := Reveal
		if parts[0] == "f" {
			move = Flag
		}
		move.Apply(s, row, col)
	case "n":
		s.Restart()
	}
	return nil
}

// Connect upgrades to a websocket that accepts newline separated commands
// and pushes session notifications as they happen.
func (g GameHandler) Connect(w http.ResponseWriter, r *http.Request) {
	id, ok := g.authorize(w, r)
	if !ok {
		return
	}
	s, ok := g.lookup(w, id)
	if !ok {
		return
	}

	conn, err := g.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Error("unable to upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()

	logger := g.logger.With(slog.String("game", id))
	logger.Debug("established ws connection")

	send := make(chan wsMessage, wsSendBuffer)
	writerDone := make(chan struct{})

	unsubscribe := s.Subscribe(func(e mines.Event) {
		select {
		case send <- eventMessage(s, e):
		default:
			logger.Debug("ws client lagging, dropped event", slog.String("event", e.Kind.String()))
		}
	})
	defer unsubscribe()

	readerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		g.wsWriteLoop(conn, send, readerDone, logger)
	}()

	g.wsReadLoop(conn, id, s, send, writerDone, logger)
	close(readerDone)
	<-writerDone
}

func (g GameHandler) wsReadLoop(
	conn *websocket.Conn,
	id string,
	s *mines.Session,
	send chan<- wsMessage,
	writerDone <-chan struct{},
	logger *slog.Logger,
) {
	conn.SetReadLimit(wsMaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(g.ws.PongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(g.ws.PongWait))
	})

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("abnormal ws break", slog.Any("error", err))
			}
			return
		}
		if mt != websocket.TextMessage {
			return
		}

		text := strings.TrimSpace(string(message))
		logger.Debug(fmt.Sprintf("\t> %s", text))

		// commands over the socket count as use of the game
		if err := g.registry.Touch(id); err != nil {
			logger.Debug("game gone, closing ws", slog.Any("error", err))
			select {
			case send <- wsMessage{Event: "error", Error: err.Error()}:
			case <-writerDone:
			}
			return
		}

		reply := wsMessage{Event: "state"}
		for line := range iterBySep(text, "\n") {
			if err := execute(s, line); err != nil {
				reply = wsMessage{Event: "error", Error: err.Error()}
				break
			}
		}
		if reply.Error == "" {
			reply = stateMessage(reply.Event, s)
		}

		select {
		case send <- reply:
		case <-writerDone:
			return
		}
	}
}

func (g GameHandler) wsWriteLoop(
	conn *websocket.Conn,
	send <-chan wsMessage,
	readerDone <-chan struct{},
	logger *slog.Logger,
) {
	ticker := time.NewTicker(g.ws.PingPeriod)
	defer ticker.Stop()

	write := func(msg wsMessage) bool {
		conn.SetWriteDeadline(time.Now().Add(g.ws.WriteWait))
		if err := conn.WriteJSON(msg); err != nil {
			logger.Error("unable to write json", slog.Any("error", err))
			conn.Close()
			return false
		}
		return true
	}

	for {
		select {
		case <-readerDone:
			// flush what the reader queued before it stopped
			for len(send) > 0 {
				if !write(<-send) {
					return
				}
			}
			conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(g.ws.WriteWait),
			)
			return
		case msg := <-send:
			if !write(msg) {
				return
			}
		case <-ticker.C:
			err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(g.ws.WriteWait))
			if err != nil {
				conn.Close()
				return
			}
		}
	}
}
