package app

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/dkeye/Arena/internal/domain"
	"github.com/dkeye/Arena/internal/protocol"
)

// roomEntry serializes every access to one room. Lock order is always
// entry.mu before RoomRegistry.mu; the map lock is never held while waiting
// on an entry that is already published.
type roomEntry struct {
	mu      sync.Mutex
	room    *domain.Room
	deleted bool

	// listing is read without taking mu; nil when the room is not joinable.
	listing atomic.Pointer[protocol.RoomSummary]
	created time.Time
}

func (e *roomEntry) publish() {
	if e.deleted || !e.room.Joinable() {
		e.listing.Store(nil)
		return
	}
	s := protocol.NewRoomSummary(e.room)
	e.listing.Store(&s)
}

// RoomRegistry owns the room-id to room mapping. Callbacks passed to its
// methods run inside the room's critical section, so anything they emit is
// ordered with every other mutation of that room.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[domain.RoomID]*roomEntry

	now      func() time.Time
	newID    func() domain.RoomID
	onRemove func(domain.RoomID)
}

type RegistryOption func(*RoomRegistry)

func WithClock(now func() time.Time) RegistryOption {
	return func(r *RoomRegistry) { r.now = now }
}

func WithIDSource(newID func() domain.RoomID) RegistryOption {
	return func(r *RoomRegistry) { r.newID = newID }
}

func NewRoomRegistry(opts ...RegistryOption) *RoomRegistry {
	r := &RoomRegistry{
		rooms:    make(map[domain.RoomID]*roomEntry),
		now:      time.Now,
		newID:    func() domain.RoomID { return domain.RoomID(uuid.NewString()) },
		onRemove: func(domain.RoomID) {},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OnRemove registers a hook called, inside the critical section, for every room that goes away.
func (r *RoomRegistry) OnRemove(fn func(domain.RoomID)) {
	r.onRemove = fn
}

func (r *RoomRegistry) Now() time.Time { return r.now() }

// CreateTurnBased inserts a fresh room owned by owner and runs then on it
// before any other caller can reach it.
func (r *RoomRegistry) CreateTurnBased(owner domain.Identity, bot bool, then func(*domain.Room)) domain.RoomID {
	now := r.now()
	room := domain.NewTurnBasedRoom(r.newID(), owner, bot, now)
	e := &roomEntry{room: room, created: now}
	e.mu.Lock()
	defer e.mu.Unlock()

	r.mu.Lock()
	r.rooms[room.ID] = e
	r.mu.Unlock()

	if then != nil {
		then(room)
	}
	e.publish()
	log.Info().Str("module", "app.rooms").Str("room_id", string(room.ID)).Str("owner", string(owner.ID)).Bool("bot", bot).Msg("room created")
	return room.ID
}

// Acquire runs fn on the room with the given id, creating it with create
// when absent. A room created here and left without members by fn is removed again.
func (r *RoomRegistry) Acquire(id domain.RoomID, create func(now time.Time) *domain.Room, fn func(room *domain.Room, created bool) error) error {
	for {
		r.mu.RLock()
		e, ok := r.rooms[id]
		r.mu.RUnlock()

		created := false
		if !ok {
			e, created = r.insert(id, create)
		} else {
			e.mu.Lock()
		}
		if e.deleted {
			// lost a race with the removal of the previous instance
			e.mu.Unlock()
			continue
		}
		return r.run(e, created, fn)
	}
}

func (r *RoomRegistry) run(e *roomEntry, created bool, fn func(*domain.Room, bool) error) error {
	defer e.mu.Unlock()
	err := fn(e.room, created)
	if e.room.Abandoned() {
		r.removeLocked(e)
	} else {
		e.publish()
	}
	return err
}

// insert returns the entry for id locked, creating it unless another caller won the race.
func (r *RoomRegistry) insert(id domain.RoomID, create func(time.Time) *domain.Room) (*roomEntry, bool) {
	now := r.now()
	fresh := &roomEntry{room: create(now), created: now}
	fresh.mu.Lock()

	r.mu.Lock()
	if existing, ok := r.rooms[id]; ok {
		r.mu.Unlock()
		fresh.mu.Unlock()
		existing.mu.Lock()
		return existing, false
	}
	r.rooms[id] = fresh
	r.mu.Unlock()
	log.Info().Str("module", "app.rooms").Str("room_id", string(id)).Str("kind", string(fresh.room.Kind)).Msg("room created")
	return fresh, true
}

// lock returns the live entry for id with its mutex held.
func (r *RoomRegistry) lock(id domain.RoomID) (*roomEntry, error) {
	r.mu.RLock()
	e, ok := r.rooms[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	e.mu.Lock()
	if e.deleted {
		e.mu.Unlock()
		return nil, domain.ErrRoomNotFound
	}
	return e, nil
}

// removeLocked must be called with e.mu held.
func (r *RoomRegistry) removeLocked(e *roomEntry) {
	e.deleted = true
	e.room.Retire()
	e.listing.Store(nil)

	r.mu.Lock()
	if r.rooms[e.room.ID] == e {
		delete(r.rooms, e.room.ID)
	}
	r.mu.Unlock()

	r.onRemove(e.room.ID)
	log.Info().Str("module", "app.rooms").Str("room_id", string(e.room.ID)).Msg("room removed")
}

// Join appends who to the room and runs then with the new member.
func (r *RoomRegistry) Join(id domain.RoomID, who domain.Identity, then func(*domain.Room, domain.Member)) error {
	e, err := r.lock(id)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()

	m, err := e.room.Join(who, r.now())
	if err != nil {
		return err
	}
	if then != nil {
		then(e.room, m)
	}
	e.publish()
	log.Info().Str("module", "app.rooms").Str("room_id", string(id)).Str("user", string(who.ID)).Msg("member joined")
	return nil
}

// Leave removes the member. A room left with no real member is deleted
// before then runs, and then is told so.
func (r *RoomRegistry) Leave(id domain.RoomID, uid domain.UserID, then func(room *domain.Room, left domain.Member, deleted bool)) error {
	e, err := r.lock(id)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()

	m, err := e.room.Leave(uid)
	if err != nil {
		return err
	}
	deleted := e.room.Abandoned()
	if deleted {
		r.removeLocked(e)
	} else {
		e.publish()
	}
	if then != nil {
		then(e.room, m, deleted)
	}
	log.Info().Str("module", "app.rooms").Str("room_id", string(id)).Str("user", string(uid)).Bool("deleted", deleted).Msg("member left")
	return nil
}

// Reset re-initializes the game on behalf of a member.
func (r *RoomRegistry) Reset(id domain.RoomID, by domain.UserID, then func(*domain.Room)) error {
	e, err := r.lock(id)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()

	if !e.room.IsMember(by) {
		return domain.ErrNotInRoom
	}
	e.room.Reset()
	if then != nil {
		then(e.room)
	}
	e.publish()
	log.Info().Str("module", "app.rooms").Str("room_id", string(id)).Str("user", string(by)).Msg("room reset")
	return nil
}

// Update runs fn inside the room's critical section. The listing snapshot is
// refreshed afterwards whether or not fn succeeded.
func (r *RoomRegistry) Update(id domain.RoomID, fn func(*domain.Room) error) error {
	e, err := r.lock(id)
	if err != nil {
		return err
	}
	defer e.mu.Unlock()

	err = fn(e.room)
	e.publish()
	return err
}

// Get returns a copy of the room taken under its lock.
func (r *RoomRegistry) Get(id domain.RoomID) (domain.Room, bool) {
	e, err := r.lock(id)
	if err != nil {
		return domain.Room{}, false
	}
	defer e.mu.Unlock()
	return cloneRoom(e.room), true
}

func cloneRoom(src *domain.Room) domain.Room {
	dst := *src
	dst.Members = append([]domain.Member(nil), src.Members...)
	if src.Presence != nil {
		dst.Presence = make(domain.PresenceState, len(src.Presence))
		for id, m := range src.Presence {
			cp := *m
			dst.Presence[id] = &cp
		}
	}
	return dst
}

// ListJoinable reads the published snapshots only and never waits on a room.
func (r *RoomRegistry) ListJoinable() []protocol.RoomSummary {
	r.mu.RLock()
	entries := lo.Values(r.rooms)
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].created.Before(entries[j].created) })
	return lo.FilterMap(entries, func(e *roomEntry, _ int) (protocol.RoomSummary, bool) {
		s := e.listing.Load()
		if s == nil {
			return protocol.RoomSummary{}, false
		}
		return *s, true
	})
}

func (r *RoomRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Sweep removes finished rooms older than retention and returns their ids.
func (r *RoomRegistry) Sweep(retention time.Duration) []domain.RoomID {
	r.mu.RLock()
	entries := lo.Values(r.rooms)
	r.mu.RUnlock()

	now := r.now()
	var removed []domain.RoomID
	for _, e := range entries {
		e.mu.Lock()
		if !e.deleted && e.room.Expired(now, retention) {
			r.removeLocked(e)
			removed = append(removed, e.room.ID)
		}
		e.mu.Unlock()
	}
	return removed
}
