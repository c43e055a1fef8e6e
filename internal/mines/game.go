package mines

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/gammazero/deque"
)

var Log *slog.Logger = slog.Default()

const (
	DefaultSize         = 20
	DefaultMineFraction = 0.15
	ScorePerCell        = 10
)

type Phase uint8

const (
	NotStarted Phase = iota
	Active
	Won
	Lost
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not_started"
	case Active:
		return "active"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// [Phase] implements [encoding.TextMarshaler]
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p Phase) Terminal() bool {
	return p == Won || p == Lost
}

// Outcome reports whether an input event changed the session.
type Outcome uint8

const (
	Ignored Outcome = iota
	Applied
)

func (o Outcome) String() string {
	if o == Applied {
		return "applied"
	}
	return "ignored"
}

// [Outcome] implements [encoding.TextMarshaler]
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

type Status struct {
	Size           int   `json:"size"`
	Mines          int   `json:"mines"`
	FlagsRemaining int   `json:"flags_remaining"`
	Score          int   `json:"score"`
	ElapsedSeconds int   `json:"elapsed_seconds"`
	Phase          Phase `json:"phase"`
}

// Session is one player's game. All methods are safe for concurrent use;
// mutations are applied one at a time.
type Session struct {
	mu sync.Mutex
	// deliver orders listener calls so that no tick reaches a listener
	// after the event that stopped its timer.
	deliver sync.Mutex

	size  int
	mines int
	board *Board

	flagsRemaining int
	score          int
	elapsed        int
	opened         int
	phase          Phase
	closed         bool

	placer Placer
	ticker TickerFunc
	timer  *timer

	listeners []subscription
	nextSubID int
}

type Option func(*Session)

func WithPlacer(p Placer) Option {
	return func(s *Session) { s.placer = p }
}

// WithLayout fixes the mine coordinates instead of drawing them at random.
func WithLayout(mines ...Point) Option {
	return WithPlacer(FixedLayout(mines))
}

func WithRand(r *rand.Rand) Option {
	return WithPlacer(NewRandomPlacer(r))
}

func WithTicker(f TickerFunc) Option {
	return func(s *Session) { s.ticker = f }
}

func WithListener(l Listener) Option {
	return func(s *Session) {
		s.listeners = append(s.listeners, subscription{s.nextSubID, l})
		s.nextSubID++
	}
}

// MineCount is floor(size² · fraction).
func MineCount(size int, fraction float64) int {
	return int(math.Floor(float64(size*size) * fraction))
}

func NewGame(size int, mineFraction float64, opts ...Option) (*Session, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}
	if math.IsNaN(mineFraction) || mineFraction < 0 || mineFraction >= 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFraction, mineFraction)
	}

	mines := MineCount(size, mineFraction)
	safe := min(size, 3) * min(size, 3)
	if mines > 0 && mines >= size*size-safe {
		return nil, fmt.Errorf(
			"%w: %d mines, %d cells outside the safe zone",
			ErrTooManyMines, mines, size*size-safe,
		)
	}

	s := &Session{
		size:   size,
		mines:  mines,
		ticker: realTicker,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.placer == nil {
		s.placer = NewRandomPlacer(nil)
	}
	if l, ok := s.placer.(FixedLayout); ok && len(l) != mines {
		return nil, fmt.Errorf("%w: layout has %d mines, want %d", ErrLayout, len(l), mines)
	}

	s.reset()
	return s, nil
}

// reset must be called with mu held.
func (s *Session) reset() {
	s.stopTimer()
	s.board = NewBoard(s.size)
	s.flagsRemaining = s.mines
	s.score = 0
	s.elapsed = 0
	s.opened = 0
	s.phase = NotStarted
}

// Restart replaces the board and counters with a fresh game of the same
// size. The previous timer is cancelled before anything else changes. A
// closed session is not restarted.
func (s *Session) Restart() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.reset()
	e := Event{Kind: Restarted, Phase: s.phase}
	s.mu.Unlock()

	s.emit(e)
}

// Close stops the timer for good. The session stays readable but ignores
// every further input.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopTimer()
}

func (s *Session) Reveal(row, col int) Outcome {
	s.mu.Lock()
	outcome, events := s.reveal(row, col)
	s.mu.Unlock()

	s.emit(events...)
	return outcome
}

func (s *Session) reveal(row, col int) (Outcome, []Event) {
	if s.closed || s.phase.Terminal() || !s.board.InBounds(row, col) {
		return Ignored, nil
	}
	c := s.board.at(row, col)
	if c.State != Hidden {
		return Ignored, nil
	}

	var events []Event

	if s.phase == NotStarted {
		origin := c.Point()
		if err := s.placer.Place(s.board, origin, s.mines); err != nil {
			Log.Error("unable to place mines", slog.Any("error", err))
			return Ignored, nil
		}
		Log.Debug("mines placed", slog.String("origin", origin.String()), slog.Int("count", s.mines))
		s.phase = Active
		s.startTimer()
		events = append(events, Event{Kind: PhaseChanged, Phase: s.phase})
	}

	if c.IsMine {
		c.State = Revealed
		changed := append([]Point{c.Point()}, s.revealMines()...)
		s.finish(Lost)
		return Applied, append(events,
			Event{Kind: BoardChanged, Phase: s.phase, Cells: changed},
			Event{Kind: PhaseChanged, Phase: s.phase},
		)
	}

	changed := s.flood(c.Point())
	events = append(events, Event{Kind: BoardChanged, Phase: s.phase, Cells: changed})

	if s.opened == s.board.Len()-s.mines {
		s.finish(Won)
		events = append(events, Event{Kind: PhaseChanged, Phase: s.phase})
	}

	return Applied, events
}

// flood reveals origin and, through cells with no adjacent mines, every
// Hidden safe cell reachable from it. A cell is expanded only on its
// Hidden to Revealed transition, so each cell is visited at most once.
func (s *Session) flood(origin Point) (changed []Point) {
	var todo deque.Deque[int]
	todo.PushBack(s.board.index(origin.Row, origin.Col))

	for todo.Len() > 0 {
		c := &s.board.cells[todo.PopFront()]
		if c.State != Hidden || c.IsMine {
			continue
		}
		c.State = Revealed
		s.opened++
		s.score += ScorePerCell
		changed = append(changed, c.Point())

		if s.board.AdjacentMines(c.Row, c.Col) > 0 {
			continue
		}
		for _, n := range s.board.Neighbors(c.Row, c.Col) {
			if s.board.at(n.Row, n.Col).State == Hidden {
				todo.PushBack(s.board.index(n.Row, n.Col))
			}
		}
	}
	return
}

// revealMines exposes every mine for display. Flagged mines are exposed
// too.
func (s *Session) revealMines() (changed []Point) {
	for i := range s.board.cells {
		c := &s.board.cells[i]
		if c.IsMine && c.State != Revealed {
			c.State = Revealed
			changed = append(changed, c.Point())
		}
	}
	return
}

func (s *Session) finish(phase Phase) {
	s.phase = phase
	s.stopTimer()
	Log.Debug("game over",
		slog.String("phase", phase.String()),
		slog.Int("score", s.score),
		slog.Int("elapsed", s.elapsed),
	)
}

func (s *Session) ToggleFlag(row, col int) Outcome {
	s.mu.Lock()
	outcome, events := s.toggleFlag(row, col)
	s.mu.Unlock()

	s.emit(events...)
	return outcome
}

func (s *Session) toggleFlag(row, col int) (Outcome, []Event) {
	if s.closed || s.phase.Terminal() || !s.board.InBounds(row, col) {
		return Ignored, nil
	}
	c := s.board.at(row, col)
	switch c.State {
	case Hidden:
		c.State = Flagged
		s.flagsRemaining--
	case Flagged:
		c.State = Hidden
		s.flagsRemaining++
	default:
		return Ignored, nil
	}
	return Applied, []Event{
		{Kind: BoardChanged, Phase: s.phase, Cells: []Point{c.Point()}},
	}
}

// Neighbors returns nil for an out-of-bounds coordinate.
func (s *Session) Neighbors(row, col int) []Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.board.InBounds(row, col) {
		return nil
	}
	return s.board.Neighbors(row, col)
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status()
}

func (s *Session) status() Status {
	return Status{
		Size:           s.size,
		Mines:          s.mines,
		FlagsRemaining: s.flagsRemaining,
		Score:          s.score,
		ElapsedSeconds: s.elapsed,
		Phase:          s.phase,
	}
}

// Subscribe registers l for every future event. Listeners run on the
// goroutine that caused the event, after the session lock is released, one
// event at a time. A listener must not call Reveal, ToggleFlag or Restart on
// the same session.
func (s *Session) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.listeners = append(s.listeners, subscription{id, l})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

func (s *Session) emit(events ...Event) {
	if len(events) == 0 {
		return
	}
	s.deliver.Lock()
	defer s.deliver.Unlock()

	s.mu.Lock()
	listeners := s.listeners
	events = slices.DeleteFunc(events, s.stale)
	s.mu.Unlock()

	for _, e := range events {
		for _, sub := range listeners {
			sub.fn(e)
		}
	}
}

// stale reports a tick whose timer was stopped after it fired. Must be
// called with mu held.
func (s *Session) stale(e Event) bool {
	return e.Kind == TimeTick && (s.timer != e.timer || s.phase != Active)
}

// startTimer must be called with mu held.
func (s *Session) startTimer() {
	s.stopTimer()
	if s.closed {
		return
	}
	t := newTimer()
	s.timer = t
	c, stop := s.ticker(time.Second)
	go t.run(c, stop, s.tick)
}

// stopTimer must be called with mu held.
func (s *Session) stopTimer() {
	s.timer.cancel()
	s.timer = nil
}

func (s *Session) tick(t *timer) bool {
	s.mu.Lock()
	if s.timer != t || s.phase != Active {
		s.mu.Unlock()
		return false
	}
	s.elapsed++
	e := Event{Kind: TimeTick, Phase: s.phase, Elapsed: s.elapsed, timer: t}
	s.mu.Unlock()

	s.emit(e)
	return true
}
