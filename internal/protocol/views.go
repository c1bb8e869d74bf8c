package protocol

import (
	"time"

	"github.com/samber/lo"

	"github.com/dkeye/Arena/internal/domain"
)

type PlayerView struct {
	ID     domain.UserID `json:"id"`
	Name   string        `json:"name"`
	Symbol domain.Role   `json:"symbol"`
}

// RoomView is the turn-based room as clients render it.
type RoomView struct {
	RoomID        domain.RoomID  `json:"roomId"`
	Players       []PlayerView   `json:"players"`
	Board         domain.Board   `json:"board"`
	CurrentPlayer domain.Role    `json:"currentPlayer"`
	Status        domain.Status  `json:"status"`
	Winner        *domain.Result `json:"winner"`
	Bot           bool           `json:"bot"`
	CreatedAt     int64          `json:"createdAt"`
}

func NewPlayerView(m domain.Member) PlayerView {
	return PlayerView{ID: m.ID, Name: m.DisplayName, Symbol: m.Role}
}

func NewRoomView(r *domain.Room) RoomView {
	return RoomView{
		RoomID:        r.ID,
		Players:       lo.Map(r.Members, func(m domain.Member, _ int) PlayerView { return NewPlayerView(m) }),
		Board:         r.Game.Board,
		CurrentPlayer: r.Game.Turn,
		Status:        r.Status,
		Winner:        lo.EmptyableToPtr(r.Game.Winner),
		Bot:           r.IsBotRoom,
		CreatedAt:     r.CreatedAt.UnixMilli(),
	}
}

// RoomSummary is one lobby entry.
type RoomSummary struct {
	RoomID     domain.RoomID `json:"roomId"`
	Players    int           `json:"players"`
	PlayerName string        `json:"playerName"`
	Bot        bool          `json:"bot"`
}

func NewRoomSummary(r *domain.Room) RoomSummary {
	s := RoomSummary{RoomID: r.ID, Players: len(r.Members), PlayerName: "Unknown", Bot: r.IsBotRoom}
	if owner, ok := r.Owner(); ok {
		s.PlayerName = owner.DisplayName
	}
	return s
}

type RoomCreated struct {
	RoomID domain.RoomID `json:"roomId"`
	Room   RoomView      `json:"room"`
}

type PlayerJoined struct {
	Room   RoomView   `json:"room"`
	Player PlayerView `json:"player"`
}

type MoveMade struct {
	Room     RoomView    `json:"room"`
	Position int         `json:"position"`
	Player   domain.Role `json:"player"`
}

type GameState struct {
	Room RoomView `json:"room"`
}

type RoomList struct {
	Rooms []RoomSummary `json:"rooms"`
}

type PlayerLeft struct {
	Room     *RoomView     `json:"room,omitempty"`
	PlayerID domain.UserID `json:"playerId"`
}

// Presence family.

type OfficeState struct {
	Players []domain.PresenceMember `json:"players"`
	Objects []domain.OfficeObject   `json:"objects"`
}

type PresenceJoined struct {
	Player domain.PresenceMember `json:"player"`
}

type PositionUpdate struct {
	PlayerID  domain.UserID `json:"playerId"`
	X         float64       `json:"x"`
	Y         float64       `json:"y"`
	Animation string        `json:"animation,omitempty"`
}

type ChatMessage struct {
	PlayerID   domain.UserID `json:"playerId"`
	PlayerName string        `json:"playerName"`
	Message    string        `json:"message"`
	Timestamp  int64         `json:"timestamp"`
	DurationMs int64         `json:"durationMs"`
}

func NewChatMessage(id domain.Identity, line domain.ChatLine, display time.Duration) ChatMessage {
	return ChatMessage{
		PlayerID:   id.ID,
		PlayerName: id.DisplayName,
		Message:    line.Message,
		Timestamp:  line.Timestamp.UnixMilli(),
		DurationMs: display.Milliseconds(),
	}
}

type SitUpdate struct {
	PlayerID domain.UserID `json:"playerId"`
	ObjectID string        `json:"objectId"`
	Action   string        `json:"action"`
	X        float64       `json:"x"`
	Y        float64       `json:"y"`
}

type InteractEvent struct {
	PlayerID   domain.UserID     `json:"playerId"`
	PlayerName string            `json:"playerName"`
	ObjectID   string            `json:"objectId"`
	ObjectType domain.ObjectType `json:"objectType"`
	Timestamp  int64             `json:"timestamp"`
}

// Posted is a chat message stamped with its author and the server's receive time.
type Posted struct {
	ID        string        `json:"id"`
	Content   string        `json:"content"`
	Timestamp int64         `json:"timestamp"`
	UserID    domain.UserID `json:"userId"`
	UserName  string        `json:"userName"`
}

type WhoAmI struct {
	ID          domain.UserID `json:"id"`
	DisplayName string        `json:"displayName"`
}
