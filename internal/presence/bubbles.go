package presence

import (
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/dkeye/Arena/internal/domain"
	"github.com/dkeye/Arena/internal/protocol"
)

type Bubble struct {
	PlayerID domain.UserID
	Message  string
	Expires  time.Time
}

// Bubbles shows at most one chat bubble per player. A bubble missed while
// disconnected is gone; nothing is re-requested.
type Bubbles struct {
	mu     sync.Mutex
	active map[domain.UserID]Bubble
}

func NewBubbles() *Bubbles {
	return &Bubbles{active: make(map[domain.UserID]Bubble)}
}

// Show replaces the player's bubble. The display time is counted from
// receipt, as the sender's clock is not trusted.
func (b *Bubbles) Show(msg protocol.ChatMessage, now time.Time) Bubble {
	bubble := Bubble{
		PlayerID: msg.PlayerID,
		Message:  msg.Message,
		Expires:  now.Add(time.Duration(msg.DurationMs) * time.Millisecond),
	}
	b.mu.Lock()
	b.active[msg.PlayerID] = bubble
	b.mu.Unlock()
	return bubble
}

// Visible drops expired bubbles and returns the rest ordered by player.
func (b *Bubbles) Visible(now time.Time) []Bubble {
	b.mu.Lock()
	defer b.mu.Unlock()

	expired := lo.PickBy(b.active, func(_ domain.UserID, v Bubble) bool { return !now.Before(v.Expires) })
	for id := range expired {
		delete(b.active, id)
	}
	out := lo.Values(b.active)
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}

func (b *Bubbles) Clear(id domain.UserID) {
	b.mu.Lock()
	delete(b.active, id)
	b.mu.Unlock()
}
