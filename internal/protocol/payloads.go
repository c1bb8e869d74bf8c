package protocol

// CreateRoom starts a turn-based room; Bot seats the synthetic opponent.
type CreateRoom struct {
	Bot *bool `json:"bot"`
}

func (p CreateRoom) WithBot() bool { return p.Bot != nil && *p.Bot }

// RoomRef addresses an existing room: joinroom, getgamestate, leaveroom and resetgame.
type RoomRef struct {
	RoomID string `json:"roomId" validate:"required,uuid"`
}

// Position is a pointer so that a missing field fails required instead of reading as cell 0.
type MakeMove struct {
	RoomID   string `json:"roomId" validate:"required,uuid"`
	Position *int   `json:"position" validate:"required,min=0,max=8"`
}

type Empty struct{}

type Move struct {
	X         *float64 `json:"x" validate:"required,min=0"`
	Y         *float64 `json:"y" validate:"required,min=0"`
	Animation string   `json:"animation" validate:"max=64"`
}

type Chat struct {
	Message string `json:"message" validate:"required,min=1,max=100"`
}

const (
	ActionSit   = "sit"
	ActionStand = "stand"
)

type Sit struct {
	ObjectID string `json:"objectId" validate:"required,max=64"`
	Action   string `json:"action" validate:"required,oneof=sit stand"`
}

// Post is one chat message. ID is the client's own id for the message and is
// echoed back so the sender can match its optimistic copy.
type Post struct {
	ID      string `json:"id" validate:"omitempty,max=64"`
	Content string `json:"content" validate:"required,min=1,max=1000"`
}

type Interact struct {
	ObjectID string `json:"objectId" validate:"required,max=64"`
}
