package gate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/filecoin-project/go-clock"
)

const (
	sweepInterval = 5 * time.Minute
	idleAfter     = 10 * time.Minute
)

type entry struct {
	gate     *Gate
	lastSeen time.Time
}

// Registry keeps one live Gate per browser session.
type Registry struct {
	auth  Authenticator
	clock clock.Clock
	ttl   time.Duration

	mu    sync.Mutex
	gates map[string]*entry
}

func NewRegistry(auth Authenticator, clk clock.Clock, ttl time.Duration) *Registry {
	if clk == nil {
		clk = clock.New()
	}
	return &Registry{
		auth:  auth,
		clock: clk,
		ttl:   ttl,
		gates: make(map[string]*entry),
	}
}

// Acquire returns the live gate for sessionID, creating one bound to sess
// when none exists or the previous one has closed.
func (r *Registry) Acquire(sessionID string, sess Session) *Gate {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock.Now()
	if e, ok := r.gates[sessionID]; ok && !e.gate.Closed() {
		e.lastSeen = now
		return e.gate
	}
	g := New(r.auth, sess, WithClock(r.clock), WithTTL(r.ttl))
	r.gates[sessionID] = &entry{gate: g, lastSeen: now}
	return g
}

// Release closes and forgets the gate for sessionID.
func (r *Registry) Release(sessionID string) {
	r.mu.Lock()
	e, ok := r.gates[sessionID]
	delete(r.gates, sessionID)
	r.mu.Unlock()
	if ok {
		e.gate.Close()
	}
}

// Sweep closes gates idle for longer than idleAfter and returns how many were evicted.
func (r *Registry) Sweep() int {
	cutoff := r.clock.Now().Add(-idleAfter)
	var stale []*Gate
	r.mu.Lock()
	for id, e := range r.gates {
		if e.lastSeen.Before(cutoff) {
			stale = append(stale, e.gate)
			delete(r.gates, id)
		}
	}
	r.mu.Unlock()
	for _, g := range stale {
		g.Close()
	}
	return len(stale)
}

// Run sweeps every sweepInterval until ctx is done, then closes every gate.
func (r *Registry) Run(ctx context.Context) {
	ticker := r.clock.Ticker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				slog.Info("evicted idle login gates", "evicted", n, "live", r.Len())
			}
		}
	}
}

// Len reports how many gates are live.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.gates)
}

func (r *Registry) closeAll() {
	r.mu.Lock()
	gates := r.gates
	r.gates = make(map[string]*entry)
	r.mu.Unlock()
	for _, e := range gates {
		e.gate.Close()
	}
}
