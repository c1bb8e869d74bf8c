package app_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Arena/internal/app"
	"github.com/dkeye/Arena/internal/domain"
)

var (
	alice = domain.Identity{ID: "alice-id", DisplayName: "alice"}
	bob   = domain.Identity{ID: "bob-id", DisplayName: "bob"}
	carol = domain.Identity{ID: "carol-id", DisplayName: "carol"}
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestRoomRegistry_ListJoinableSkipsBotRooms(t *testing.T) {
	req := require.New(t)
	rooms := app.NewRoomRegistry()

	// Given one waiting room and one bot room
	waiting := rooms.CreateTurnBased(alice, false, nil)
	rooms.CreateTurnBased(bob, true, nil)

	// When the lobby is listed
	list := rooms.ListJoinable()

	// Then only the waiting room shows up
	req.Len(list, 1)
	req.Equal(waiting, list[0].RoomID)
	req.Equal("alice", list[0].PlayerName)
	req.Equal(1, list[0].Players)
	req.False(list[0].Bot)
}

func TestRoomRegistry_JoinHidesRoomFromLobby(t *testing.T) {
	req := require.New(t)
	rooms := app.NewRoomRegistry()
	id := rooms.CreateTurnBased(alice, false, nil)

	var joined domain.Member
	err := rooms.Join(id, bob, func(r *domain.Room, m domain.Member) {
		joined = m
		req.Equal(domain.StatusPlaying, r.Status)
	})

	req.NoError(err)
	req.Equal(domain.RoleO, joined.Role)
	req.Empty(rooms.ListJoinable())

	err = rooms.Join("missing", carol, nil)
	req.ErrorIs(err, domain.ErrRoomNotFound)
}

func TestRoomRegistry_Leave(t *testing.T) {
	tests := []struct {
		name     string
		bot      bool
		validate func(t *testing.T, rooms *app.RoomRegistry, id domain.RoomID, deleted bool, removed []domain.RoomID)
	}{
		{
			name: "last human of a bot room deletes it",
			bot:  true,
			validate: func(t *testing.T, rooms *app.RoomRegistry, id domain.RoomID, deleted bool, removed []domain.RoomID) {
				assert.True(t, deleted)
				assert.Equal(t, []domain.RoomID{id}, removed)
				_, ok := rooms.Get(id)
				assert.False(t, ok)
				assert.ErrorIs(t, rooms.Join(id, carol, nil), domain.ErrRoomNotFound)
			},
		},
		{
			name: "one of two humans keeps the room",
			validate: func(t *testing.T, rooms *app.RoomRegistry, id domain.RoomID, deleted bool, removed []domain.RoomID) {
				assert.False(t, deleted)
				assert.Empty(t, removed)
				r, ok := rooms.Get(id)
				require.True(t, ok)
				assert.Equal(t, domain.StatusWaiting, r.Status)
				assert.Len(t, rooms.ListJoinable(), 1, "room is joinable again")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rooms := app.NewRoomRegistry()
			var removed []domain.RoomID
			rooms.OnRemove(func(id domain.RoomID) { removed = append(removed, id) })

			id := rooms.CreateTurnBased(alice, tt.bot, nil)
			if !tt.bot {
				require.NoError(t, rooms.Join(id, bob, nil))
			}

			var deleted bool
			err := rooms.Leave(id, alice.ID, func(_ *domain.Room, left domain.Member, d bool) {
				assert.Equal(t, alice.ID, left.ID)
				deleted = d
			})
			require.NoError(t, err)
			tt.validate(t, rooms, id, deleted, removed)
		})
	}
}

func TestRoomRegistry_ResetRequiresMembership(t *testing.T) {
	rooms := app.NewRoomRegistry()
	id := rooms.CreateTurnBased(alice, true, nil)

	err := rooms.Reset(id, carol.ID, nil)
	assert.ErrorIs(t, err, domain.ErrNotInRoom)

	called := false
	err = rooms.Reset(id, alice.ID, func(r *domain.Room) {
		called = true
		assert.Equal(t, domain.StatusPlaying, r.Status)
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestRoomRegistry_GetReturnsCopy(t *testing.T) {
	rooms := app.NewRoomRegistry()
	id := rooms.CreateTurnBased(alice, false, nil)

	r, ok := rooms.Get(id)
	require.True(t, ok)
	r.Members[0].DisplayName = "mallory"
	r.Status = domain.StatusFinished

	again, _ := rooms.Get(id)
	assert.Equal(t, "alice", again.Members[0].DisplayName)
	assert.Equal(t, domain.StatusWaiting, again.Status)
}

func TestRoomRegistry_ConcurrentJoinsAdmitOne(t *testing.T) {
	rooms := app.NewRoomRegistry()
	id := rooms.CreateTurnBased(alice, false, nil)

	const joiners = 64
	errs := make(chan error, joiners)
	var wg sync.WaitGroup
	for i := range joiners {
		wg.Add(1)
		go func() {
			defer wg.Done()
			who := domain.Identity{ID: domain.UserID(fmt.Sprintf("u-%d", i)), DisplayName: "guest"}
			errs <- rooms.Join(id, who, nil)
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrRoomNotAvailable)
	}
	assert.Equal(t, 1, ok)

	r, _ := rooms.Get(id)
	assert.Len(t, r.Members, domain.TurnBasedCapacity)
}

func TestRoomRegistry_ConcurrentMovesAreSerialized(t *testing.T) {
	rooms := app.NewRoomRegistry()
	id := rooms.CreateTurnBased(alice, false, nil)
	require.NoError(t, rooms.Join(id, bob, nil))

	// Every goroutine tries to play X; only the first can, then it is O's turn.
	var wg sync.WaitGroup
	results := make([]error, domain.BoardSize)
	for pos := range domain.BoardSize {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[pos] = rooms.Update(id, func(r *domain.Room) error {
				return domain.ApplyMove(r, domain.RoleX, pos)
			})
		}()
	}
	wg.Wait()

	applied := 0
	for _, err := range results {
		if err == nil {
			applied++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrNotYourTurn)
	}
	assert.Equal(t, 1, applied)

	r, _ := rooms.Get(id)
	assert.Len(t, r.Game.Board.OpenCells(), domain.BoardSize-1)
	assert.Equal(t, domain.RoleO, r.Game.Turn)
}

func TestRoomRegistry_AcquireCreatesOnce(t *testing.T) {
	rooms := app.NewRoomRegistry()
	const office domain.RoomID = "office"

	var wg sync.WaitGroup
	var mu sync.Mutex
	creations := 0
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			who := domain.Identity{ID: domain.UserID(fmt.Sprintf("u-%d", i)), DisplayName: "guest"}
			err := rooms.Acquire(office,
				func(now time.Time) *domain.Room { return domain.NewPresenceRoom(office, who, 64, now) },
				func(r *domain.Room, created bool) error {
					if created {
						mu.Lock()
						creations++
						mu.Unlock()
						return nil
					}
					_, err := r.Join(who, time.Now())
					return err
				})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, creations)
	r, ok := rooms.Get(office)
	require.True(t, ok)
	assert.Len(t, r.Members, 32)
	assert.Len(t, r.Presence, 32)
	assert.Empty(t, rooms.ListJoinable(), "presence rooms are not in the lobby")
}

func TestRoomRegistry_AcquireAfterLastLeaveStartsOver(t *testing.T) {
	rooms := app.NewRoomRegistry()
	const office domain.RoomID = "office"
	create := func(who domain.Identity) func(time.Time) *domain.Room {
		return func(now time.Time) *domain.Room { return domain.NewPresenceRoom(office, who, 8, now) }
	}
	noop := func(*domain.Room, bool) error { return nil }

	require.NoError(t, rooms.Acquire(office, create(alice), noop))
	require.NoError(t, rooms.Leave(office, alice.ID, nil))
	assert.Zero(t, rooms.Len())

	var created bool
	require.NoError(t, rooms.Acquire(office, create(bob), func(_ *domain.Room, c bool) error {
		created = c
		return nil
	}))
	assert.True(t, created)
	r, _ := rooms.Get(office)
	assert.Equal(t, bob.ID, r.Members[0].ID)
}
