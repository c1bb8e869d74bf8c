package presence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Arena/internal/domain"
	"github.com/dkeye/Arena/internal/protocol"
)

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func TestInterpolator_GlidesAndClamps(t *testing.T) {
	req := require.New(t)
	i := NewInterpolator(0)

	_, ok := i.Position("bob", t0)
	req.False(ok)

	i.Observe("bob", domain.Point{X: 100, Y: 100}, t0)
	p, ok := i.Position("bob", t0.Add(time.Second))
	req.True(ok)
	req.Equal(domain.Point{X: 100, Y: 100}, p, "first sighting is not interpolated")

	i.Observe("bob", domain.Point{X: 240, Y: 100}, t0)
	p, _ = i.Position("bob", t0.Add(70*time.Millisecond))
	req.InDelta(170, p.X, 0.001)
	req.InDelta(100, p.Y, 0.001)

	p, _ = i.Position("bob", t0.Add(time.Second))
	req.Equal(domain.Point{X: 240, Y: 100}, p, "clamped at the target")
}

func TestInterpolator_RestartsFromDrawnPosition(t *testing.T) {
	i := NewInterpolator(100 * time.Millisecond)
	i.Observe("bob", domain.Point{X: 0, Y: 0}, t0)
	i.Observe("bob", domain.Point{X: 100, Y: 0}, t0)

	// halfway there, a new target arrives
	mid := t0.Add(50 * time.Millisecond)
	i.Observe("bob", domain.Point{X: 100, Y: 100}, mid)

	p, _ := i.Position("bob", mid)
	assert.InDelta(t, 50, p.X, 0.001)
	assert.InDelta(t, 0, p.Y, 0.001)

	p, _ = i.Position("bob", mid.Add(50*time.Millisecond))
	assert.InDelta(t, 75, p.X, 0.001)
	assert.InDelta(t, 50, p.Y, 0.001)
}

func TestInterpolator_SnapAndForget(t *testing.T) {
	i := NewInterpolator(0)
	i.Observe("bob", domain.Point{X: 0, Y: 0}, t0)
	i.Snap("bob", domain.Point{X: 500, Y: 500}, t0)

	p, _ := i.Position("bob", t0)
	assert.Equal(t, domain.Point{X: 500, Y: 500}, p)

	i.Forget("bob")
	_, ok := i.Position("bob", t0)
	assert.False(t, ok)
}

func TestThrottle(t *testing.T) {
	req := require.New(t)
	th := NewThrottle(0)

	p, ok := th.Offer(domain.Point{X: 1, Y: 1}, t0)
	req.True(ok)
	req.Equal(domain.Point{X: 1, Y: 1}, p)

	_, ok = th.Offer(domain.Point{X: 2, Y: 2}, t0.Add(30*time.Millisecond))
	req.False(ok)
	_, ok = th.Offer(domain.Point{X: 3, Y: 3}, t0.Add(60*time.Millisecond))
	req.False(ok)

	_, ok = th.Flush(t0.Add(90 * time.Millisecond))
	req.False(ok, "interval not elapsed")

	p, ok = th.Flush(t0.Add(MovementUpdateInterval))
	req.True(ok)
	req.Equal(domain.Point{X: 3, Y: 3}, p, "only the latest position is sent")

	_, ok = th.Flush(t0.Add(time.Second))
	req.False(ok, "nothing pending")
}

func TestThrottle_FlushSkipsUnchanged(t *testing.T) {
	th := NewThrottle(10 * time.Millisecond)
	th.Offer(domain.Point{X: 1, Y: 1}, t0)
	th.Offer(domain.Point{X: 1, Y: 1}, t0.Add(time.Millisecond))

	_, ok := th.Flush(t0.Add(time.Second))
	assert.False(t, ok)
}

func TestBubbles_ExpireAfterDuration(t *testing.T) {
	req := require.New(t)
	b := NewBubbles()

	b.Show(protocol.ChatMessage{PlayerID: "bob", Message: "hi", DurationMs: 5000}, t0)
	b.Show(protocol.ChatMessage{PlayerID: "alice", Message: "yo", DurationMs: 1000}, t0)

	visible := b.Visible(t0.Add(500 * time.Millisecond))
	req.Len(visible, 2)
	req.Equal(domain.UserID("alice"), visible[0].PlayerID)

	visible = b.Visible(t0.Add(time.Second))
	req.Len(visible, 1)
	req.Equal("hi", visible[0].Message)

	// a newer message replaces the bubble and its deadline
	b.Show(protocol.ChatMessage{PlayerID: "bob", Message: "again", DurationMs: 5000}, t0.Add(4*time.Second))
	visible = b.Visible(t0.Add(6 * time.Second))
	req.Len(visible, 1)
	req.Equal("again", visible[0].Message)

	b.Clear("bob")
	req.Empty(b.Visible(t0.Add(6 * time.Second)))
}

func TestLocalState(t *testing.T) {
	req := require.New(t)
	s := NewLocalState(domain.NewOffice(nil), domain.SpawnPoint)

	req.True(s.TryMove(domain.Point{X: 120, Y: 100}))
	req.Equal(domain.Point{X: 120, Y: 100}, s.Position())

	req.False(s.TryMove(domain.Point{X: 5, Y: 100}), "inside the west wall")
	req.False(s.TryMove(domain.Point{X: 210, Y: 210}), "on a desk")
	req.Equal(domain.Point{X: 120, Y: 100}, s.Position())

	s.ApplySit(protocol.SitUpdate{Action: protocol.ActionSit, X: 230, Y: 275.5})
	req.True(s.Sitting())
	req.False(s.TryMove(domain.Point{X: 120, Y: 100}), "seated players do not walk")

	s.ApplySit(protocol.SitUpdate{Action: protocol.ActionStand, X: 230, Y: 192})
	req.False(s.Sitting())
	req.Equal(domain.Point{X: 230, Y: 192}, s.Position())
}
