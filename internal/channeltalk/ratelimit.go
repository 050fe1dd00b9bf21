package channeltalk

import (
	"context"
	"sync"
	"time"
)

const (
	backoffBase = 100 * time.Millisecond
	backoffMax  = 2 * time.Second
)

// RateGate spaces outbound API calls by a minimum interval and tracks the
// current 429 backoff level. It is shared by every caller holding the same
// client, so concurrent requests still respect the spacing. Safe for
// concurrent use.
type RateGate struct {
	mu          sync.Mutex
	minInterval time.Duration
	nextSlot    time.Time
	backoff     time.Duration
}

// NewRateGate creates a gate with the given minimum inter-call interval.
func NewRateGate(minInterval time.Duration) *RateGate {
	if minInterval <= 0 {
		minInterval = backoffBase
	}
	return &RateGate{minInterval: minInterval}
}

// Wait blocks until this caller's reserved slot arrives. Slots are reserved
// under the lock before sleeping, so two concurrent waiters can never go
// under the minimum interval.
func (g *RateGate) Wait(ctx context.Context) error {
	g.mu.Lock()
	now := time.Now()
	slot := g.nextSlot
	if slot.Before(now) {
		slot = now
	}
	g.nextSlot = slot.Add(g.minInterval)
	g.mu.Unlock()

	d := time.Until(slot)
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Penalize doubles the backoff level (starting at 100ms, capped at 2s) and
// returns the delay the caller should sleep before retrying.
func (g *RateGate) Penalize() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.backoff == 0 {
		g.backoff = backoffBase
	} else {
		g.backoff *= 2
		if g.backoff > backoffMax {
			g.backoff = backoffMax
		}
	}
	return g.backoff
}

// Reset returns the backoff to baseline after a successful call.
func (g *RateGate) Reset() {
	g.mu.Lock()
	g.backoff = 0
	g.mu.Unlock()
}

// Backoff returns the current backoff level.
func (g *RateGate) Backoff() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.backoff
}
