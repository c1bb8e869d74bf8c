// Package presence is the reference client-side half of the office
// protocol: smoothing sparse position updates, pacing local ones and
// expiring chat bubbles. The server never imports it; it pins down how a
// receiver is expected to treat positionupdate and chat frames.
package presence

import (
	"sync"
	"time"

	"github.com/dkeye/Arena/internal/domain"
)

// InterpolationWindow is how long a remote player takes to glide from its
// previous position to the one just received.
const InterpolationWindow = 140 * time.Millisecond

type track struct {
	prev, next domain.Point
	lastUpdate time.Time
}

// Interpolator keeps the last two observed positions of every remote player.
type Interpolator struct {
	mu     sync.Mutex
	window time.Duration
	tracks map[domain.UserID]*track
}

func NewInterpolator(window time.Duration) *Interpolator {
	if window <= 0 {
		window = InterpolationWindow
	}
	return &Interpolator{window: window, tracks: make(map[domain.UserID]*track)}
}

// Observe records a position broadcast. The glide restarts from wherever the
// player is drawn right now, so a late update never makes it jump backwards.
func (i *Interpolator) Observe(id domain.UserID, pos domain.Point, now time.Time) {
	i.mu.Lock()
	defer i.mu.Unlock()

	t, ok := i.tracks[id]
	if !ok {
		i.tracks[id] = &track{prev: pos, next: pos, lastUpdate: now}
		return
	}
	t.prev = t.at(now, i.window)
	t.next = pos
	t.lastUpdate = now
}

// Snap places the player without a glide, as after a sit or a full state resync.
func (i *Interpolator) Snap(id domain.UserID, pos domain.Point, now time.Time) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.tracks[id] = &track{prev: pos, next: pos, lastUpdate: now}
}

func (i *Interpolator) Position(id domain.UserID, now time.Time) (domain.Point, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	t, ok := i.tracks[id]
	if !ok {
		return domain.Point{}, false
	}
	return t.at(now, i.window), true
}

func (i *Interpolator) Forget(id domain.UserID) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.tracks, id)
}

func (t *track) at(now time.Time, window time.Duration) domain.Point {
	f := float64(now.Sub(t.lastUpdate)) / float64(window)
	if f >= 1 {
		return t.next
	}
	if f < 0 {
		f = 0
	}
	return domain.Point{
		X: t.prev.X + (t.next.X-t.prev.X)*f,
		Y: t.prev.Y + (t.next.Y-t.prev.Y)*f,
	}
}
