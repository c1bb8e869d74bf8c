package orch

import (
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Arena/internal/app"
	"github.com/dkeye/Arena/internal/core"
	"github.com/dkeye/Arena/internal/domain"
	"github.com/dkeye/Arena/internal/protocol"
)

// OfficeRoomID is the single presence room of the office namespace.
const OfficeRoomID domain.RoomID = "office"

type Options struct {
	PresenceCapacity int
	ChatDisplay      time.Duration
	MoveRateLimit    int
	MoveRateWindow   time.Duration
	Office           domain.Office
	Rand             *rand.Rand
}

func (o *Options) defaults() {
	if o.PresenceCapacity <= 0 {
		o.PresenceCapacity = 64
	}
	if o.ChatDisplay <= 0 {
		o.ChatDisplay = 5 * time.Second
	}
	if o.MoveRateLimit <= 0 {
		o.MoveRateLimit = 20
	}
	if o.MoveRateWindow <= 0 {
		o.MoveRateWindow = time.Second
	}
	if o.Office.Objects == nil {
		o.Office = domain.NewOffice(nil)
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
}

// call is one inbound event in flight.
type call struct {
	sess     core.Session
	event    protocol.EventType
	identity domain.Identity
}

type route struct {
	ns     core.Namespace
	handle func(o *Orchestrator, c *call, payload any) error
}

type Orchestrator struct {
	Rooms    *app.RoomRegistry
	Registry *app.Registry
	Bots     *app.BotScheduler
	Policy   app.Policy
	Schema   *protocol.Schema

	opts   Options
	routes map[protocol.EventType]route
	moves  *app.RateLimiter[domain.UserID]

	rngMu sync.Mutex
	rng   *rand.Rand
}

func New(rooms *app.RoomRegistry, registry *app.Registry, bots *app.BotScheduler, policy app.Policy, opts Options) *Orchestrator {
	opts.defaults()
	o := &Orchestrator{
		Rooms:    rooms,
		Registry: registry,
		Bots:     bots,
		Policy:   policy,
		Schema:   protocol.NewSchema(),
		opts:     opts,
		moves:    app.NewRateLimiter[domain.UserID](opts.MoveRateLimit, opts.MoveRateWindow),
		rng:      opts.Rand,
	}
	o.routes = map[protocol.EventType]route{
		protocol.EventCreateRoom:   {core.NamespaceGame, (*Orchestrator).createRoom},
		protocol.EventJoinRoom:     {core.NamespaceGame, (*Orchestrator).joinRoom},
		protocol.EventMakeMove:     {core.NamespaceGame, (*Orchestrator).makeMove},
		protocol.EventListRooms:    {core.NamespaceGame, (*Orchestrator).listRooms},
		protocol.EventGetGameState: {core.NamespaceGame, (*Orchestrator).getGameState},
		protocol.EventLeaveRoom:    {core.NamespaceGame, (*Orchestrator).leaveRoom},
		protocol.EventResetGame:    {core.NamespaceGame, (*Orchestrator).resetGame},

		protocol.EventJoin:     {core.NamespaceOffice, (*Orchestrator).officeJoin},
		protocol.EventMove:     {core.NamespaceOffice, (*Orchestrator).officeMove},
		protocol.EventChat:     {core.NamespaceOffice, (*Orchestrator).officeChat},
		protocol.EventSit:      {core.NamespaceOffice, (*Orchestrator).officeSit},
		protocol.EventInteract: {core.NamespaceOffice, (*Orchestrator).officeInteract},

		protocol.EventMessage: {core.NamespaceChat, (*Orchestrator).postMessage},
	}
	for ev := range o.routes {
		if !o.Schema.Known(ev) {
			panic("orch: no payload shape registered for " + string(ev))
		}
	}
	if policy == nil {
		o.Policy = app.SimplePolicy{}
	}
	rooms.OnRemove(o.roomRemoved)
	return o
}

func (o *Orchestrator) roomRemoved(id domain.RoomID) {
	o.Bots.Cancel(id)
	o.Registry.DropRoom(id)
}

// Connect registers a freshly upgraded connection.
func (o *Orchestrator) Connect(sess core.Session, cancel func()) {
	o.Registry.Bind(sess, cancel)
}

// Dispatch runs one inbound frame through authenticate, validate, load,
// guard and apply. Every failure is answered to the sender only.
func (o *Orchestrator) Dispatch(sid core.SessionID, data []byte) {
	in, err := protocol.ParseInbound(data)
	if err != nil {
		if sess, ok := o.Registry.GetSession(sid); ok {
			o.reject(sess, "", err)
		}
		return
	}
	o.DispatchInbound(sid, in)
}

// DispatchInbound is Dispatch for a frame the transport already parsed.
func (o *Orchestrator) DispatchInbound(sid core.SessionID, in protocol.Inbound) {
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		log.Warn().Str("module", "orch").Str("sid", string(sid)).Msg("frame from unknown session")
		return
	}
	o.dispatch(sess, in)
}

func (o *Orchestrator) dispatch(sess core.Session, in protocol.Inbound) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("module", "orch").Str("sid", string(sess.ID())).Str("event", string(in.Type)).
				Interface("panic", r).Msg("invariant violation while handling event")
			o.reject(sess, in.Type, domain.ErrInternal)
		}
	}()

	c := &call{sess: sess, event: in.Type}
	identity, authenticated := sess.Identity()
	if !authenticated {
		o.reject(sess, in.Type, domain.ErrUnauthenticated)
		return
	}
	c.identity = identity

	rt, ok := o.routes[in.Type]
	if !ok || rt.ns != sess.Namespace() {
		o.reject(sess, in.Type, domain.NewError(domain.CodeValidationFailed, "Unknown event "+string(in.Type)))
		return
	}
	payload, err := o.Schema.Decode(in.Type, in.Payload)
	if err != nil {
		o.reject(sess, in.Type, err)
		return
	}
	if err := rt.handle(o, c, payload); err != nil {
		o.reject(sess, in.Type, err)
		return
	}
	log.Info().Str("module", "orch").Str("sid", string(sess.ID())).Str("user", string(identity.ID)).Str("event", string(in.Type)).Msg("event applied")
}

func (o *Orchestrator) reject(sess core.Session, ev protocol.EventType, err error) {
	var de *domain.Error
	if errors.As(err, &de) && de.Code != domain.CodeInternal {
		log.Debug().Str("module", "orch").Str("sid", string(sess.ID())).Str("event", string(ev)).Str("code", string(de.Code)).Msg("event rejected")
	} else {
		log.Error().Err(err).Str("module", "orch").Str("sid", string(sess.ID())).Str("event", string(ev)).Msg("event failed")
	}
	o.send(ev, protocol.EncodeError(ev, err), []core.Session{sess})
}

// Disconnect runs the leave path for every room the connection listened on,
// unless another connection of the same identity still listens there.
func (o *Orchestrator) Disconnect(sid core.SessionID) {
	sess, rooms, ok := o.Registry.Unbind(sid)
	if !ok {
		return
	}
	identity, authenticated := sess.Identity()
	if !authenticated {
		return
	}
	for _, id := range rooms {
		if o.Registry.StillListening(id, identity.ID, sid) {
			continue
		}
		var err error
		if sess.Namespace() == core.NamespaceOffice {
			err = o.officeLeave(identity, id)
		} else {
			err = o.leave(identity, id)
		}
		if err != nil && !errors.Is(err, domain.ErrNotInRoom) && !errors.Is(err, domain.ErrRoomNotFound) {
			log.Error().Err(err).Str("module", "orch").Str("sid", string(sid)).Str("room_id", string(id)).Msg("leave on disconnect")
		}
	}
	if sess.Namespace() == core.NamespaceOffice {
		o.moves.Forget(identity.ID)
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("user", string(identity.ID)).Int("rooms", len(rooms)).Int("connections", o.Registry.Len()).Msg("disconnected")
}

// KickBySID closes a connection; its read loop then runs Disconnect.
func (o *Orchestrator) KickBySID(sid core.SessionID) {
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return
	}
	o.Registry.Cancel(sid)
	sess.Signal().Close()
	log.Warn().Str("module", "orch").Str("sid", string(sid)).Msg("kicked slow connection")
}

// Close stops deferred work. Connections are closed by their adapter.
func (o *Orchestrator) Close() {
	o.Bots.Stop()
}

func (o *Orchestrator) reply(c *call, ev protocol.EventType, payload any) {
	o.emit(ev, payload, []core.Session{c.sess})
}

// toRoom fans out to every subscriber of the room, the sender included.
func (o *Orchestrator) toRoom(id domain.RoomID, ev protocol.EventType, payload any) {
	ch, ok := o.Registry.Channel(id)
	if !ok {
		return
	}
	frame, ok := o.encode(ev, payload)
	if !ok {
		return
	}
	o.onDropped(ev, ch.Broadcast(frame).Dropped)
}

func (o *Orchestrator) broadcast(ns core.Namespace, ev protocol.EventType, payload any) {
	o.emit(ev, payload, o.Registry.InNamespace(ns))
}

func (o *Orchestrator) emit(ev protocol.EventType, payload any, targets []core.Session) {
	if frame, ok := o.encode(ev, payload); ok {
		o.send(ev, frame, targets)
	}
}

func (o *Orchestrator) encode(ev protocol.EventType, payload any) (core.Frame, bool) {
	frame, err := protocol.Encode(ev, payload)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Str("event", string(ev)).Msg("encode outbound")
		return nil, false
	}
	return frame, true
}

func (o *Orchestrator) send(ev protocol.EventType, frame core.Frame, targets []core.Session) {
	var dropped []core.Session
	for _, s := range targets {
		if err := s.Signal().TrySend(frame); err != nil {
			dropped = append(dropped, s)
		}
	}
	o.onDropped(ev, dropped)
}

// onDropped applies the backpressure policy to every receiver that could not take the frame.
func (o *Orchestrator) onDropped(ev protocol.EventType, dropped []core.Session) {
	for _, s := range dropped {
		switch o.Policy.OnBackPressure(ev, s) {
		case app.KickMember:
			o.KickBySID(s.ID())
		case app.DropFrame, app.NoAction:
			log.Debug().Str("module", "orch").Str("sid", string(s.ID())).Str("event", string(ev)).Msg("frame dropped")
		}
	}
}
