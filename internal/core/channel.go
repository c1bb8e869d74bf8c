package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Arena/internal/domain"
)

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []Session
}

// Channel is the set of connections subscribed to one room's broadcasts.
// It is threadsafe and never closes adapter-owned resources.
type Channel struct {
	room domain.RoomID
	mu   sync.RWMutex
	subs map[SessionID]Session
}

func NewChannel(room domain.RoomID) *Channel {
	return &Channel{room: room, subs: make(map[SessionID]Session)}
}

func (c *Channel) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subs)
}

func (c *Channel) Add(s Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs[s.ID()] = s
	log.Debug().Str("module", "core.channel").Str("room_id", string(c.room)).Str("sid", string(s.ID())).Msg("subscribed")
}

func (c *Channel) Remove(sid SessionID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.subs, sid)
	log.Debug().Str("module", "core.channel").Str("room_id", string(c.room)).Str("sid", string(sid)).Msg("unsubscribed")
}

// RemoveUser drops every connection of the identity and returns their ids.
func (c *Channel) RemoveUser(uid domain.UserID) []SessionID {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []SessionID
	for sid, s := range c.subs {
		if id, ok := s.Identity(); ok && id.ID == uid {
			delete(c.subs, sid)
			out = append(out, sid)
		}
	}
	return out
}

// HasUser reports whether any connection other than except carries uid.
func (c *Channel) HasUser(uid domain.UserID, except SessionID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for sid, s := range c.subs {
		if sid == except {
			continue
		}
		if id, ok := s.Identity(); ok && id.ID == uid {
			return true
		}
	}
	return false
}

func (c *Channel) Sessions() []Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Session, 0, len(c.subs))
	for _, s := range c.subs {
		out = append(out, s)
	}
	return out
}

// Broadcast offers data to every subscriber, the originator included.
func (c *Channel) Broadcast(data Frame) PublishResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res := PublishResult{}
	for _, s := range c.subs {
		if err := s.Signal().TrySend(data); err != nil {
			res.Dropped = append(res.Dropped, s)
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "core.channel").Str("room_id", string(c.room)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}
