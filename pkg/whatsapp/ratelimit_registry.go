package whatsapp

import (
	"context"
	"sync"
)

const limitKeyPrefix = "rate_limit:"

// LimiterRegistry hands out one Limiter per client key, constructed lazily
// from the persisted blob. Concurrent tabs of the same browser share a key
// and can still race on the persisted store - that race is last-write-wins
// and accepted, matching the localStorage behavior this replaces.
type LimiterRegistry struct {
	cfg   LimiterSettings
	store LimitStore

	mu       sync.Mutex
	limiters map[string]*Limiter
}

func NewLimiterRegistry(cfg LimiterSettings, store LimitStore) *LimiterRegistry {
	return &LimiterRegistry{
		cfg:      cfg,
		store:    store,
		limiters: make(map[string]*Limiter),
	}
}

// For returns the limiter for a client, loading its state on first use.
func (r *LimiterRegistry) For(ctx context.Context, clientID string) *Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.limiters[clientID]; ok {
		return l
	}
	l := NewLimiter(ctx, r.cfg, r.store, limitKeyPrefix+clientID)
	r.limiters[clientID] = l
	return l
}

// Sweep evicts limiters idle for longer than the session window and applies
// the load-time corrections to the ones that stay. Ran by the cron routine.
func (r *LimiterRegistry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for clientID, l := range r.limiters {
		l.mu.Lock()
		idle := l.now().Sub(l.touched)
		l.data = l.validateAndReset(l.data)
		l.mu.Unlock()

		if idle > r.cfg.SessionTimeout {
			delete(r.limiters, clientID)
			evicted++
		}
	}
	return evicted
}

// Len reports how many client limiters are currently resident.
func (r *LimiterRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.limiters)
}
