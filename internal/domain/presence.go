package domain

import "time"

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// SpawnPoint is where a member first appears in a presence room.
var SpawnPoint = Point{X: 100, Y: 100}

type ChatLine struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// PresenceMember is the last-known ephemeral state of one member.
type PresenceMember struct {
	ID          UserID    `json:"id"`
	DisplayName string    `json:"name"`
	Position    Point     `json:"position"`
	Animation   string    `json:"animation,omitempty"`
	Sitting     bool      `json:"isSitting"`
	SittingOn   string    `json:"sittingOn,omitempty"`
	LastChat    *ChatLine `json:"lastChat,omitempty"`
}

type PresenceState map[UserID]*PresenceMember

func (s PresenceState) spawn(id Identity) {
	if _, ok := s[id.ID]; ok {
		return
	}
	s[id.ID] = &PresenceMember{ID: id.ID, DisplayName: id.DisplayName, Position: SpawnPoint}
}

// PresencePatch is a partial update; nil fields are left as they are.
type PresencePatch struct {
	Position  *Point
	Animation *string
	Sitting   *bool
	SittingOn *string
	Chat      *ChatLine
}

// ApplyPresenceUpdate merges patch into the member's entry and returns a copy of the result.
func ApplyPresenceUpdate(r *Room, id UserID, patch PresencePatch) (PresenceMember, error) {
	if r.Kind != KindPresence {
		return PresenceMember{}, ErrRoomNotAvailable
	}
	if !r.IsMember(id) {
		return PresenceMember{}, ErrNotInRoom
	}
	m, ok := r.Presence[id]
	if !ok {
		member, _ := r.Member(id)
		r.Presence.spawn(member.Identity)
		m = r.Presence[id]
	}
	if patch.Position != nil {
		m.Position = *patch.Position
	}
	if patch.Animation != nil {
		m.Animation = *patch.Animation
	}
	if patch.Sitting != nil {
		m.Sitting = *patch.Sitting
		if !m.Sitting {
			m.SittingOn = ""
		}
	}
	if patch.SittingOn != nil {
		m.SittingOn = *patch.SittingOn
	}
	if patch.Chat != nil {
		line := *patch.Chat
		m.LastChat = &line
	}
	return *m, nil
}
