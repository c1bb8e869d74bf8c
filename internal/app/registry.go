package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/dkeye/Arena/internal/core"
	"github.com/dkeye/Arena/internal/domain"
)

type sessionEntry struct {
	Session core.Session
	Cancel  context.CancelFunc
	Rooms   map[domain.RoomID]struct{}
}

// Registry tracks live connections and the room channels they listen on.
// Its lock is a leaf: it may be taken inside a room's critical section but
// never calls back into the room registry.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
	channels map[domain.RoomID]*core.Channel
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
		channels: make(map[domain.RoomID]*core.Channel),
	}
}

func (r *Registry) Bind(sess core.Session, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sess.ID()] = &sessionEntry{
		Session: sess,
		Cancel:  cancel,
		Rooms:   make(map[domain.RoomID]struct{}),
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sess.ID())).Str("ns", string(sess.Namespace())).Msg("bound session")
}

func (r *Registry) GetSession(sid core.SessionID) (core.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Session, true
	}
	return nil, false
}

// Unbind forgets the session and returns the rooms it was subscribed to.
func (r *Registry) Unbind(sid core.SessionID) (core.Session, []domain.RoomID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return nil, nil, false
	}
	delete(r.sessions, sid)
	rooms := lo.Keys(e.Rooms)
	for _, id := range rooms {
		if ch, ok := r.channels[id]; ok {
			ch.Remove(sid)
			if ch.Len() == 0 {
				delete(r.channels, id)
			}
		}
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Int("rooms", len(rooms)).Msg("unbind session")
	return e.Session, rooms, true
}

// Subscribe routes the room's broadcasts to the session. Idempotent.
func (r *Registry) Subscribe(sid core.SessionID, room domain.RoomID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return false
	}
	ch, ok := r.channels[room]
	if !ok {
		ch = core.NewChannel(room)
		r.channels[room] = ch
	}
	ch.Add(e.Session)
	e.Rooms[room] = struct{}{}
	return true
}

// UnsubscribeUser removes every connection of uid from the room channel.
func (r *Registry) UnsubscribeUser(room domain.RoomID, uid domain.UserID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.channels[room]
	if !ok {
		return
	}
	for _, sid := range ch.RemoveUser(uid) {
		if e, ok := r.sessions[sid]; ok {
			delete(e.Rooms, room)
		}
	}
	if ch.Len() == 0 {
		delete(r.channels, room)
	}
}

// DropRoom detaches every subscriber of a room that no longer exists.
func (r *Registry) DropRoom(room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.channels[room]
	if !ok {
		return
	}
	for _, s := range ch.Sessions() {
		if e, ok := r.sessions[s.ID()]; ok {
			delete(e.Rooms, room)
		}
	}
	delete(r.channels, room)
	log.Debug().Str("module", "app.registry").Str("room_id", string(room)).Msg("dropped room channel")
}

// Channel returns the room's subscriber set, if anyone listens.
func (r *Registry) Channel(room domain.RoomID) (*core.Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[room]
	return ch, ok
}

// StillListening reports whether another connection of uid remains subscribed to room.
func (r *Registry) StillListening(room domain.RoomID, uid domain.UserID, except core.SessionID) bool {
	ch, ok := r.Channel(room)
	return ok && ch.HasUser(uid, except)
}

func (r *Registry) RoomsOf(sid core.SessionID) []domain.RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return lo.Keys(e.Rooms)
	}
	return nil
}

// InNamespace is the target set of a global broadcast.
func (r *Registry) InNamespace(ns core.Namespace) []core.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Session, 0, len(r.sessions))
	for _, e := range r.sessions {
		if e.Session.Namespace() == ns {
			out = append(out, e.Session)
		}
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}
