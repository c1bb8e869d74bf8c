package orch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Arena/internal/core"
	"github.com/dkeye/Arena/internal/domain"
	"github.com/dkeye/Arena/internal/protocol"
)

func joinOffice(t *testing.T, o *Orchestrator, sid string, who *domain.Identity) *client {
	t.Helper()
	c := connect(t, o, sid, core.NamespaceOffice, who)
	c.send(protocol.EventJoin, nil)
	require.NotEmpty(t, c.all(protocol.EventState), "join answers with the full state")
	return c
}

func TestOffice_JoinAndResync(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator(t, time.Hour, Options{})
	a := joinOffice(t, o, "a", &alice)

	// When bob joins, alice is told and bob gets both players
	b := joinOffice(t, o, "b", &bob)

	var joined protocol.PresenceJoined
	req.True(a.last(protocol.EventPlayerJoined, &joined))
	req.Equal(bob.ID, joined.Player.ID)
	req.Equal(domain.SpawnPoint, joined.Player.Position)

	var state protocol.OfficeState
	req.True(b.last(protocol.EventState, &state))
	req.Len(state.Players, 2)
	req.Len(state.Objects, len(domain.DefaultOfficeObjects))

	// A second join is a resync, not an error or a new arrival
	a.reset()
	b.send(protocol.EventJoin, nil)
	req.Empty(b.all(protocol.EventError))
	req.Empty(a.all(protocol.EventPlayerJoined))
	req.Len(b.all(protocol.EventState), 2)
}

func TestOffice_RequiresJoin(t *testing.T) {
	o := newOrchestrator(t, time.Hour, Options{})
	a := connect(t, o, "a", core.NamespaceOffice, &alice)

	a.send(protocol.EventChat, map[string]any{"message": "hello"})
	assert.Equal(t, domain.CodeNotInRoom, a.lastError().Code)

	a.send(protocol.EventCreateRoom, map[string]any{})
	assert.Equal(t, domain.CodeValidationFailed, a.lastError().Code, "game events are not routed on office connections")
}

func TestOffice_MoveChatSit(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator(t, time.Hour, Options{ChatDisplay: 5 * time.Second})
	a := joinOffice(t, o, "a", &alice)
	b := joinOffice(t, o, "b", &bob)

	b.send(protocol.EventMove, map[string]any{"x": 320.5, "y": 200, "animation": "walk-down"})
	var pos protocol.PositionUpdate
	req.True(a.last(protocol.EventPositionUpdate, &pos))
	req.Equal(protocol.PositionUpdate{PlayerID: bob.ID, X: 320.5, Y: 200, Animation: "walk-down"}, pos)

	b.send(protocol.EventChat, map[string]any{"message": "standup in 5"})
	var chat protocol.ChatMessage
	req.True(a.last(protocol.EventChat, &chat))
	req.Equal("standup in 5", chat.Message)
	req.Equal("bob", chat.PlayerName)
	req.Equal(int64(5000), chat.DurationMs)
	req.True(b.last(protocol.EventChat, &chat), "sender sees its own bubble")

	b.send(protocol.EventSit, map[string]any{"objectId": "chair-1", "action": "sit"})
	var sit protocol.SitUpdate
	req.True(a.last(protocol.EventSitUpdate, &sit))
	req.Equal("chair-1", sit.ObjectID)
	req.InDelta(230, sit.X, 0.001)
	req.InDelta(275.5, sit.Y, 0.001)

	r, _ := o.Rooms.Get(OfficeRoomID)
	req.True(r.Presence[bob.ID].Sitting)
	req.Equal("standup in 5", r.Presence[bob.ID].LastChat.Message)

	b.send(protocol.EventSit, map[string]any{"objectId": "chair-1", "action": "stand"})
	r, _ = o.Rooms.Get(OfficeRoomID)
	req.False(r.Presence[bob.ID].Sitting)
	req.Empty(r.Presence[bob.ID].SittingOn)
}

func TestOffice_ObjectGuards(t *testing.T) {
	o := newOrchestrator(t, time.Hour, Options{})
	a := joinOffice(t, o, "a", &alice)

	tests := []struct {
		name    string
		event   protocol.EventType
		payload map[string]any
	}{
		{"sit on a desk", protocol.EventSit, map[string]any{"objectId": "desk-1", "action": "sit"}},
		{"sit on nothing", protocol.EventSit, map[string]any{"objectId": "sofa", "action": "sit"}},
		{"interact with a wall", protocol.EventInteract, map[string]any{"objectId": "wall-north"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a.send(tt.event, tt.payload)
			assert.Equal(t, domain.CodeValidationFailed, a.lastError().Code)
		})
	}

	a.send(protocol.EventInteract, map[string]any{"objectId": "desk-2"})
	var ev protocol.InteractEvent
	require.True(t, a.last(protocol.EventInteract, &ev))
	assert.Equal(t, domain.ObjectDesk, ev.ObjectType)
}

func TestOffice_MoveRateLimitIsLossy(t *testing.T) {
	o := newOrchestrator(t, time.Hour, Options{MoveRateLimit: 2, MoveRateWindow: time.Hour})
	a := joinOffice(t, o, "a", &alice)

	for i := range 5 {
		a.send(protocol.EventMove, map[string]any{"x": 100 + i, "y": 100})
	}

	assert.Len(t, a.all(protocol.EventPositionUpdate), 2)
	assert.Empty(t, a.all(protocol.EventError))
}

func TestOffice_NonMemberMoveIsRejectedNotThrottled(t *testing.T) {
	o := newOrchestrator(t, time.Hour, Options{MoveRateLimit: 1, MoveRateWindow: time.Hour})
	joinOffice(t, o, "a", &alice)
	b := connect(t, o, "b", core.NamespaceOffice, &bob)

	for range 3 {
		b.send(protocol.EventMove, map[string]any{"x": 150, "y": 150})
	}

	errs := b.all(protocol.EventError)
	require.Len(t, errs, 3, "every move from outside the office is answered")
	assert.Equal(t, domain.CodeNotInRoom, b.lastError().Code)

	// the rejected moves did not use up bob's budget once he joins
	b.send(protocol.EventJoin, nil)
	b.send(protocol.EventMove, map[string]any{"x": 150, "y": 150})
	assert.Len(t, b.all(protocol.EventPositionUpdate), 1)
}

func TestOffice_DisconnectAndLastLeave(t *testing.T) {
	req := require.New(t)
	o := newOrchestrator(t, time.Hour, Options{})
	a := joinOffice(t, o, "a", &alice)
	b := joinOffice(t, o, "b", &bob)

	o.Disconnect(b.sess.ID())

	var left protocol.PlayerLeft
	req.True(a.last(protocol.EventPlayerLeft, &left))
	req.Equal(bob.ID, left.PlayerID)
	req.Nil(left.Room)

	o.Disconnect(a.sess.ID())
	_, ok := o.Rooms.Get(OfficeRoomID)
	req.False(ok, "an empty office is removed")

	// The next visitor starts a fresh office
	c := joinOffice(t, o, "c", &carol)
	var state protocol.OfficeState
	req.True(c.last(protocol.EventState, &state))
	req.Len(state.Players, 1)
}

func TestOffice_CapacityIsEnforced(t *testing.T) {
	o := newOrchestrator(t, time.Hour, Options{PresenceCapacity: 1})
	joinOffice(t, o, "a", &alice)
	b := connect(t, o, "b", core.NamespaceOffice, &bob)

	b.send(protocol.EventJoin, nil)
	assert.Equal(t, domain.CodeRoomFull, b.lastError().Code)
}
