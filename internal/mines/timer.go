package mines

import (
	"sync"
	"time"
)

// TickerFunc starts a periodic clock and returns its channel and a stop
// function.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// timer is the handle of one running clock. A session holds at most one; a
// tick delivered through a handle the session no longer holds is dropped.
type timer struct {
	stop chan struct{}
	once sync.Once
}

func newTimer() *timer {
	return &timer{stop: make(chan struct{})}
}

// cancel is safe to call any number of times, and on a nil handle.
func (t *timer) cancel() {
	if t == nil {
		return
	}
	t.once.Do(func() { close(t.stop) })
}

func (t *timer) run(c <-chan time.Time, stopClock func(), tick func(*timer) bool) {
	defer stopClock()
	for {
		select {
		case <-t.stop:
			return
		case <-c:
			if !tick(t) {
				return
			}
		}
	}
}
