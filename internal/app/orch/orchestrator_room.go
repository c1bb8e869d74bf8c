package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Arena/internal/core"
	"github.com/dkeye/Arena/internal/domain"
	"github.com/dkeye/Arena/internal/protocol"
)

func (o *Orchestrator) createRoom(c *call, payload any) error {
	p := payload.(*protocol.CreateRoom)
	o.Rooms.CreateTurnBased(c.identity, p.WithBot(), func(r *domain.Room) {
		o.Registry.Subscribe(c.sess.ID(), r.ID)
		o.reply(c, protocol.EventRoomCreated, protocol.RoomCreated{RoomID: r.ID, Room: protocol.NewRoomView(r)})
	})
	o.publishLobby()
	return nil
}

func (o *Orchestrator) joinRoom(c *call, payload any) error {
	p := payload.(*protocol.RoomRef)
	err := o.Rooms.Join(domain.RoomID(p.RoomID), c.identity, func(r *domain.Room, m domain.Member) {
		o.Registry.Subscribe(c.sess.ID(), r.ID)
		view := protocol.NewRoomView(r)
		o.toRoom(r.ID, protocol.EventPlayerJoined, protocol.PlayerJoined{Room: view, Player: protocol.NewPlayerView(m)})
		o.toRoom(r.ID, protocol.EventGameState, protocol.GameState{Room: view})
	})
	if err != nil {
		return err
	}
	o.publishLobby()
	return nil
}

func (o *Orchestrator) makeMove(c *call, payload any) error {
	p := payload.(*protocol.MakeMove)
	position := *p.Position
	return o.Rooms.Update(domain.RoomID(p.RoomID), func(r *domain.Room) error {
		m, err := turnBasedMember(r, c.identity.ID)
		if err != nil {
			return err
		}
		if err := domain.ApplyMove(r, m.Role, position); err != nil {
			return err
		}
		o.announceMove(r, position, m.Role)
		return nil
	})
}

// announceMove echoes the move to the whole room, mover included, and hands
// the turn to the bot when it owes one.
func (o *Orchestrator) announceMove(r *domain.Room, position int, role domain.Role) {
	view := protocol.NewRoomView(r)
	o.toRoom(r.ID, protocol.EventMoveMade, protocol.MoveMade{Room: view, Position: position, Player: role})
	o.toRoom(r.ID, protocol.EventGameState, protocol.GameState{Room: view})
	if r.BotToMove() {
		o.Bots.Schedule(r.ID, r.Epoch, o.botTurn)
	}
}

// botTurn re-reads the room through the registry; a reset, a leave or a
// deletion since scheduling shows up as an epoch change or a missing room.
func (o *Orchestrator) botTurn(id domain.RoomID, epoch uint64) {
	err := o.Rooms.Update(id, func(r *domain.Room) error {
		if r.Epoch != epoch || !r.BotToMove() {
			log.Debug().Str("module", "orch.bot").Str("room_id", string(id)).Uint64("epoch", epoch).Uint64("now", r.Epoch).Msg("stale bot move skipped")
			return nil
		}
		bot, _ := r.Member(domain.BotIdentity.ID)

		o.rngMu.Lock()
		position, ok := domain.ChooseBotMove(r.Game.Board, bot.Role, o.rng)
		o.rngMu.Unlock()
		if !ok {
			return nil
		}
		if err := domain.ApplyMove(r, bot.Role, position); err != nil {
			return err
		}
		log.Info().Str("module", "orch.bot").Str("room_id", string(id)).Int("position", position).Msg("bot moved")
		o.announceMove(r, position, bot.Role)
		return nil
	})
	if err != nil {
		log.Debug().Err(err).Str("module", "orch.bot").Str("room_id", string(id)).Msg("bot move not applied")
	}
}

func (o *Orchestrator) listRooms(c *call, _ any) error {
	o.reply(c, protocol.EventRoomList, protocol.RoomList{Rooms: o.Rooms.ListJoinable()})
	return nil
}

// getGameState also re-subscribes the connection, which is how a reconnecting
// member resynchronizes.
func (o *Orchestrator) getGameState(c *call, payload any) error {
	p := payload.(*protocol.RoomRef)
	return o.Rooms.Update(domain.RoomID(p.RoomID), func(r *domain.Room) error {
		if _, err := turnBasedMember(r, c.identity.ID); err != nil {
			return err
		}
		o.Registry.Subscribe(c.sess.ID(), r.ID)
		o.reply(c, protocol.EventGameState, protocol.GameState{Room: protocol.NewRoomView(r)})
		return nil
	})
}

func (o *Orchestrator) leaveRoom(c *call, payload any) error {
	p := payload.(*protocol.RoomRef)
	return o.leave(c.identity, domain.RoomID(p.RoomID))
}

func (o *Orchestrator) leave(who domain.Identity, id domain.RoomID) error {
	err := o.Rooms.Leave(id, who.ID, func(r *domain.Room, _ domain.Member, deleted bool) {
		o.Registry.UnsubscribeUser(r.ID, who.ID)
		if deleted {
			return
		}
		// the remaining player's pending bot move, if any, belongs to the old game
		o.Bots.Cancel(r.ID)
		view := protocol.NewRoomView(r)
		o.toRoom(r.ID, protocol.EventPlayerLeft, protocol.PlayerLeft{Room: &view, PlayerID: who.ID})
	})
	if err != nil {
		return err
	}
	o.publishLobby()
	return nil
}

func (o *Orchestrator) resetGame(c *call, payload any) error {
	p := payload.(*protocol.RoomRef)
	err := o.Rooms.Reset(domain.RoomID(p.RoomID), c.identity.ID, func(r *domain.Room) {
		o.Bots.Cancel(r.ID)
		o.toRoom(r.ID, protocol.EventGameState, protocol.GameState{Room: protocol.NewRoomView(r)})
	})
	if err != nil {
		return err
	}
	o.publishLobby()
	return nil
}

// publishLobby pushes the joinable list to every game connection.
func (o *Orchestrator) publishLobby() {
	o.broadcast(core.NamespaceGame, protocol.EventRoomListUpdated, protocol.RoomList{Rooms: o.Rooms.ListJoinable()})
}

func turnBasedMember(r *domain.Room, uid domain.UserID) (domain.Member, error) {
	if r.Kind != domain.KindTurnBased {
		return domain.Member{}, domain.ErrRoomNotFound
	}
	m, ok := r.Member(uid)
	if !ok {
		return domain.Member{}, domain.ErrNotInRoom
	}
	return m, nil
}
