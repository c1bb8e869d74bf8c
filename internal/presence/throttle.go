package presence

import (
	"sync"
	"time"

	"github.com/dkeye/Arena/internal/domain"
)

// MovementUpdateInterval bounds how often the local position is sent.
const MovementUpdateInterval = 100 * time.Millisecond

// Throttle decides when the local player's position goes on the wire.
// Positions offered in between are coalesced; only the latest one is kept.
type Throttle struct {
	mu       sync.Mutex
	interval time.Duration
	lastSent time.Time
	sent     domain.Point
	pending  *domain.Point
}

func NewThrottle(interval time.Duration) *Throttle {
	if interval <= 0 {
		interval = MovementUpdateInterval
	}
	return &Throttle{interval: interval}
}

// Offer returns the position to send now, if any.
func (t *Throttle) Offer(pos domain.Point, now time.Time) (domain.Point, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.lastSent.IsZero() && now.Sub(t.lastSent) < t.interval {
		t.pending = &pos
		return domain.Point{}, false
	}
	return t.markSent(pos, now)
}

// Flush sends the coalesced position once the interval has passed, unless it
// is where the player was already reported.
func (t *Throttle) Flush(now time.Time) (domain.Point, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pending == nil || now.Sub(t.lastSent) < t.interval {
		return domain.Point{}, false
	}
	pos := *t.pending
	if pos == t.sent {
		t.pending = nil
		return domain.Point{}, false
	}
	return t.markSent(pos, now)
}

func (t *Throttle) markSent(pos domain.Point, now time.Time) (domain.Point, bool) {
	t.lastSent = now
	t.sent = pos
	t.pending = nil
	return pos, true
}
