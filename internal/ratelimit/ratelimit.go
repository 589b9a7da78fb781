// Package ratelimit keeps one token bucket per client key.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Keyed rate-limits independent clients, for example one bucket per
// remote address. Idle buckets are dropped by Sweep.
type Keyed struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	now     func() time.Time
	entries map[string]*entry
}

// New creates a Keyed limiter allowing perSecond events per key with the
// given burst. A non-positive perSecond disables limiting.
func New(perSecond float64, burst int) *Keyed {
	if burst < 1 {
		burst = 1
	}
	l := rate.Limit(perSecond)
	if perSecond <= 0 {
		l = rate.Inf
	}
	return &Keyed{
		limit:   l,
		burst:   burst,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// WithClock replaces the time source. Intended for tests.
func (k *Keyed) WithClock(now func() time.Time) *Keyed {
	k.now = now
	return k
}

// Allow reports whether key may perform one more event now.
func (k *Keyed) Allow(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// Sweep drops buckets idle for longer than idle and returns how many were
// removed.
func (k *Keyed) Sweep(idle time.Duration) int {
	k.mu.Lock()
	defer k.mu.Unlock()

	cutoff := k.now().Add(-idle)
	n := 0
	for key, e := range k.entries {
		if e.lastSeen.Before(cutoff) {
			delete(k.entries, key)
			n++
		}
	}
	return n
}

// Len returns the number of tracked keys.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
