package domain

import (
	"slices"
	"time"
)

type (
	RoomID string
	Kind   string
	Status string
)

const (
	KindTurnBased Kind = "turn-based"
	KindPresence  Kind = "presence"
)

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
	StatusActive   Status = "active"
)

const TurnBasedCapacity = 2

// Member is an identity's participation in one room. Role is empty for presence rooms.
type Member struct {
	Identity
	Role     Role      `json:"symbol,omitempty"`
	JoinedAt time.Time `json:"joinedAt"`
}

// Room is the authoritative aggregate for one session instance. It is not
// safe for concurrent use; the registry serializes every access to it.
type Room struct {
	ID        RoomID
	Kind      Kind
	Members   []Member
	Status    Status
	IsBotRoom bool
	Capacity  int
	CreatedAt time.Time

	Game     GameState
	Presence PresenceState

	// Epoch advances whenever the domain state is re-initialized or the room
	// is retired, so deferred work can detect that its assumptions are stale.
	Epoch uint64
}

// NewTurnBasedRoom seats the owner as X. A bot room seats the bot as O and starts immediately.
func NewTurnBasedRoom(id RoomID, owner Identity, bot bool, now time.Time) *Room {
	r := &Room{
		ID:        id,
		Kind:      KindTurnBased,
		Members:   []Member{{Identity: owner, Role: RoleX, JoinedAt: now}},
		Status:    StatusWaiting,
		IsBotRoom: bot,
		Capacity:  TurnBasedCapacity,
		CreatedAt: now,
		Game:      NewGameState(),
	}
	if bot {
		r.Members = append(r.Members, Member{Identity: BotIdentity, Role: RoleO, JoinedAt: now})
		r.Status = StatusPlaying
	}
	return r
}

// NewPresenceRoom has no waiting phase: it is active from creation.
func NewPresenceRoom(id RoomID, owner Identity, capacity int, now time.Time) *Room {
	r := &Room{
		ID:        id,
		Kind:      KindPresence,
		Status:    StatusActive,
		Capacity:  capacity,
		CreatedAt: now,
		Presence:  make(PresenceState),
	}
	r.Members = append(r.Members, Member{Identity: owner, JoinedAt: now})
	r.Presence.spawn(owner)
	return r
}

func (r *Room) memberIndex(id UserID) int {
	return slices.IndexFunc(r.Members, func(m Member) bool { return m.ID == id })
}

func (r *Room) IsMember(id UserID) bool { return r.memberIndex(id) >= 0 }

func (r *Room) Member(id UserID) (Member, bool) {
	i := r.memberIndex(id)
	if i < 0 {
		return Member{}, false
	}
	return r.Members[i], true
}

// Owner is the earliest remaining member.
func (r *Room) Owner() (Member, bool) {
	if len(r.Members) == 0 {
		return Member{}, false
	}
	return r.Members[0], true
}

func (r *Room) HumanCount() int {
	n := 0
	for _, m := range r.Members {
		if !m.IsBot() {
			n++
		}
	}
	return n
}

// Abandoned reports that no real member is left; only the bot may remain.
func (r *Room) Abandoned() bool { return r.HumanCount() == 0 }

// Joinable is the lobby filter: waiting, below capacity, never a bot room.
func (r *Room) Joinable() bool {
	return r.Kind == KindTurnBased && !r.IsBotRoom && r.Status == StatusWaiting && len(r.Members) < r.Capacity
}

func (r *Room) nextRole() Role {
	for _, role := range []Role{RoleX, RoleO} {
		if !slices.ContainsFunc(r.Members, func(m Member) bool { return m.Role == role }) {
			return role
		}
	}
	return RoleNone
}

// Join appends the identity and, for turn-based rooms, assigns the next free
// role and starts the game once both seats are taken.
func (r *Room) Join(id Identity, now time.Time) (Member, error) {
	switch r.Kind {
	case KindTurnBased:
		if r.Status != StatusWaiting {
			return Member{}, ErrRoomNotAvailable
		}
	case KindPresence:
		if r.Status != StatusActive {
			return Member{}, ErrRoomNotAvailable
		}
	}
	if len(r.Members) >= r.Capacity {
		return Member{}, ErrRoomFull
	}
	if r.IsMember(id.ID) {
		return Member{}, ErrAlreadyInRoom
	}

	m := Member{Identity: id, JoinedAt: now}
	if r.Kind == KindTurnBased {
		m.Role = r.nextRole()
	}
	r.Members = append(r.Members, m)

	switch r.Kind {
	case KindTurnBased:
		if len(r.Members) == r.Capacity {
			r.Status = StatusPlaying
		}
	case KindPresence:
		r.Presence.spawn(id)
	}
	return m, nil
}

// Leave removes the member. When a two-human game loses a player the
// remaining one keeps its seat and the room goes back to waiting with a fresh board.
func (r *Room) Leave(id UserID) (Member, error) {
	i := r.memberIndex(id)
	if i < 0 {
		return Member{}, ErrNotInRoom
	}
	m := r.Members[i]
	r.Members = slices.Delete(r.Members, i, i+1)

	switch r.Kind {
	case KindTurnBased:
		if !r.IsBotRoom && len(r.Members) > 0 {
			r.Game = NewGameState()
			r.Status = StatusWaiting
			r.Epoch++
		}
	case KindPresence:
		delete(r.Presence, id)
	}
	return m, nil
}

// Reset re-initializes the board and clears the result.
func (r *Room) Reset() {
	if r.Kind != KindTurnBased {
		return
	}
	r.Game = NewGameState()
	if len(r.Members) == r.Capacity || r.IsBotRoom {
		r.Status = StatusPlaying
	} else {
		r.Status = StatusWaiting
	}
	r.Epoch++
}

// Retire marks the room as gone for anything still holding its epoch.
func (r *Room) Retire() { r.Epoch++ }

// BotToMove reports whether the synthetic player owes a move.
func (r *Room) BotToMove() bool {
	if !r.IsBotRoom || r.Status != StatusPlaying {
		return false
	}
	bot, ok := r.Member(BotIdentity.ID)
	return ok && r.Game.Turn == bot.Role
}

// Finished rooms older than retention are the only ones the sweeper may take.
func (r *Room) Expired(now time.Time, retention time.Duration) bool {
	return r.Status == StatusFinished && now.Sub(r.CreatedAt) > retention
}
