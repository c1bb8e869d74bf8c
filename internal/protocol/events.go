// Package protocol is the wire contract: event names, frame envelopes, the
// payload shape of every inbound event and the views sent back out.
package protocol

type EventType string

// Turn-based room family, inbound.
const (
	EventCreateRoom   EventType = "createroom"
	EventJoinRoom     EventType = "joinroom"
	EventMakeMove     EventType = "makemove"
	EventListRooms    EventType = "listrooms"
	EventGetGameState EventType = "getgamestate"
	EventLeaveRoom    EventType = "leaveroom"
	EventResetGame    EventType = "resetgame"
)

// Turn-based room family, outbound.
const (
	EventRoomCreated     EventType = "roomcreated"
	EventPlayerJoined    EventType = "playerjoined"
	EventMoveMade        EventType = "movemade"
	EventGameState       EventType = "gamestate"
	EventRoomList        EventType = "roomlist"
	EventRoomListUpdated EventType = "roomlistupdated"
	EventPlayerLeft      EventType = "playerleft"
)

// Presence room family. chat and interact are used in both directions.
const (
	EventJoin     EventType = "join"
	EventMove     EventType = "move"
	EventChat     EventType = "chat"
	EventSit      EventType = "sit"
	EventInteract EventType = "interact"

	EventState          EventType = "state"
	EventPositionUpdate EventType = "positionupdate"
	EventSitUpdate      EventType = "situpdate"
)

// Chat room family. message is used in both directions.
const (
	EventMessage EventType = "message"
)

// Connection control, answered by the transport adapter.
const (
	EventPing   EventType = "ping"
	EventPong   EventType = "pong"
	EventWhoAmI EventType = "whoami"
	EventError  EventType = "error"
)

// Lossy events may be dropped under backpressure; a newer one supersedes them.
func (e EventType) Lossy() bool {
	return e == EventPositionUpdate
}
