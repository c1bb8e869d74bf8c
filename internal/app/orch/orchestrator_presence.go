package orch

import (
	"errors"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/dkeye/Arena/internal/domain"
	"github.com/dkeye/Arena/internal/protocol"
)

// officeJoin creates the office on first use. A member joining again only
// gets the full state back.
func (o *Orchestrator) officeJoin(c *call, _ any) error {
	create := func(now time.Time) *domain.Room {
		return domain.NewPresenceRoom(OfficeRoomID, c.identity, o.opts.PresenceCapacity, now)
	}
	return o.Rooms.Acquire(OfficeRoomID, create, func(r *domain.Room, created bool) error {
		fresh := created
		if !created && !r.IsMember(c.identity.ID) {
			if _, err := r.Join(c.identity, o.Rooms.Now()); err != nil {
				return err
			}
			fresh = true
		}
		o.Registry.Subscribe(c.sess.ID(), r.ID)
		if fresh {
			o.toRoom(r.ID, protocol.EventPlayerJoined, protocol.PresenceJoined{Player: *r.Presence[c.identity.ID]})
		}
		o.reply(c, protocol.EventState, protocol.OfficeState{Players: snapshot(r.Presence), Objects: o.opts.Office.Objects})
		return nil
	})
}

func snapshot(state domain.PresenceState) []domain.PresenceMember {
	players := lo.MapToSlice(state, func(_ domain.UserID, m *domain.PresenceMember) domain.PresenceMember { return *m })
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	return players
}

// inOffice applies fn to the office room; an office that does not exist yet
// means the sender never joined it.
func (o *Orchestrator) inOffice(fn func(*domain.Room) error) error {
	err := o.Rooms.Update(OfficeRoomID, fn)
	if errors.Is(err, domain.ErrRoomNotFound) {
		return domain.ErrNotInRoom
	}
	return err
}

// officeMove is lossy: a member's moves over the per-member rate are dropped
// silently. Membership is checked first so a non-member always hears NOT_IN_ROOM.
func (o *Orchestrator) officeMove(c *call, payload any) error {
	p := payload.(*protocol.Move)
	pos := domain.Point{X: *p.X, Y: *p.Y}
	patch := domain.PresencePatch{Position: &pos}
	if p.Animation != "" {
		patch.Animation = &p.Animation
	}
	return o.inOffice(func(r *domain.Room) error {
		if !r.IsMember(c.identity.ID) {
			return domain.ErrNotInRoom
		}
		if !o.moves.Allow(c.identity.ID) {
			return nil
		}
		m, err := domain.ApplyPresenceUpdate(r, c.identity.ID, patch)
		if err != nil {
			return err
		}
		o.toRoom(r.ID, protocol.EventPositionUpdate, protocol.PositionUpdate{
			PlayerID:  m.ID,
			X:         m.Position.X,
			Y:         m.Position.Y,
			Animation: p.Animation,
		})
		return nil
	})
}

func (o *Orchestrator) officeChat(c *call, payload any) error {
	p := payload.(*protocol.Chat)
	line := domain.ChatLine{Message: p.Message, Timestamp: o.Rooms.Now()}
	return o.inOffice(func(r *domain.Room) error {
		if _, err := domain.ApplyPresenceUpdate(r, c.identity.ID, domain.PresencePatch{Chat: &line}); err != nil {
			return err
		}
		o.toRoom(r.ID, protocol.EventChat, protocol.NewChatMessage(c.identity, line, o.opts.ChatDisplay))
		return nil
	})
}

func (o *Orchestrator) officeSit(c *call, payload any) error {
	p := payload.(*protocol.Sit)
	chair, ok := o.opts.Office.Find(p.ObjectID)
	if !ok || chair.Type != domain.ObjectChair {
		return domain.NewError(domain.CodeValidationFailed, "objectId is not a chair")
	}

	sitting := p.Action == protocol.ActionSit
	var pos domain.Point
	patch := domain.PresencePatch{Position: &pos, Sitting: &sitting}
	if sitting {
		pos = o.opts.Office.SitPosition(chair)
		patch.SittingOn = &chair.ID
	} else {
		pos = o.opts.Office.StandPosition(chair)
	}

	return o.inOffice(func(r *domain.Room) error {
		m, err := domain.ApplyPresenceUpdate(r, c.identity.ID, patch)
		if err != nil {
			return err
		}
		o.toRoom(r.ID, protocol.EventSitUpdate, protocol.SitUpdate{
			PlayerID: m.ID,
			ObjectID: chair.ID,
			Action:   p.Action,
			X:        m.Position.X,
			Y:        m.Position.Y,
		})
		return nil
	})
}

func (o *Orchestrator) officeInteract(c *call, payload any) error {
	p := payload.(*protocol.Interact)
	obj, ok := o.opts.Office.Find(p.ObjectID)
	if !ok || !obj.Interactive {
		return domain.NewError(domain.CodeValidationFailed, "objectId is not interactive")
	}
	return o.inOffice(func(r *domain.Room) error {
		if !r.IsMember(c.identity.ID) {
			return domain.ErrNotInRoom
		}
		o.toRoom(r.ID, protocol.EventInteract, protocol.InteractEvent{
			PlayerID:   c.identity.ID,
			PlayerName: c.identity.DisplayName,
			ObjectID:   obj.ID,
			ObjectType: obj.Type,
			Timestamp:  o.Rooms.Now().UnixMilli(),
		})
		return nil
	})
}

func (o *Orchestrator) officeLeave(who domain.Identity, id domain.RoomID) error {
	return o.Rooms.Leave(id, who.ID, func(r *domain.Room, _ domain.Member, deleted bool) {
		o.Registry.UnsubscribeUser(r.ID, who.ID)
		if !deleted {
			o.toRoom(r.ID, protocol.EventPlayerLeft, protocol.PlayerLeft{PlayerID: who.ID})
		}
	})
}
