package registry

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vancomm/pumpkin-sweeper/internal/metrics"
	"github.com/vancomm/pumpkin-sweeper/internal/mines"
)

var ErrNotFound = errors.New("game not found")

type entry struct {
	session *mines.Session
	touched time.Time
}

// Registry keeps live sessions in memory, keyed by an opaque id. Sessions
// idle for longer than the TTL are closed and dropped by Sweep.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

func New(logger *slog.Logger, ttl time.Duration) *Registry {
	return &Registry{
		entries: make(map[string]*entry),
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

func newID() string {
	u := uuid.New()
	return base64.RawURLEncoding.EncodeToString(u[:])
}

func (r *Registry) Create(s *mines.Session) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := newID()
	r.entries[id] = &entry{session: s, touched: r.now()}
	metrics.SessionsActive.Inc()
	return id
}

// Get returns the session and marks it as used.
func (r *Registry) Get(id string) (*mines.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	e.touched = r.now()
	return e.session, nil
}

// Touch marks the session as used without fetching it.
func (r *Registry) Touch(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return ErrNotFound
	}
	e.touched = r.now()
	return nil
}

// Delete closes the session and forgets it.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return ErrNotFound
	}
	r.remove(id, e)
	return nil
}

// remove must be called with mu held.
func (r *Registry) remove(id string, e *entry) {
	e.session.Close()
	delete(r.entries, id)
	metrics.SessionsActive.Dec()
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep drops idle sessions and reports how many it dropped.
func (r *Registry) Sweep() (evicted int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for id, e := range r.entries {
		if now.Sub(e.touched) > r.ttl {
			r.remove(id, e)
			evicted++
		}
	}
	return
}

// Run sweeps periodically until ctx is done, then closes every session.
func (r *Registry) Run(ctx context.Context) error {
	ticker := time.NewTicker(max(r.ttl/4, time.Second))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return nil
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Info("evicted idle sessions", slog.Int("count", n))
			}
		}
	}
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, e := range r.entries {
		r.remove(id, e)
	}
}
