package domain

import (
	"encoding/json"

	"github.com/samber/lo"
)

type Role string

const (
	RoleNone Role = ""
	RoleX    Role = "X"
	RoleO    Role = "O"
)

func (r Role) Opponent() Role {
	switch r {
	case RoleX:
		return RoleO
	case RoleO:
		return RoleX
	}
	return RoleNone
}

func (r Role) Valid() bool { return r == RoleX || r == RoleO }

// Result is the terminal outcome: a role, ResultDraw, or ResultNone while playing.
type Result string

const (
	ResultNone Result = ""
	ResultDraw Result = "draw"
)

const BoardSize = 9

// Board is the 3x3 grid, row-major. An empty cell holds RoleNone.
type Board [BoardSize]Role

var WinningLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // rows
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // columns
	{0, 4, 8}, {2, 4, 6}, // diagonals
}

var corners = []int{0, 2, 6, 8}

const center = 4

func InRange(position int) bool { return position >= 0 && position < BoardSize }

func (b Board) IsOpen(position int) bool { return InRange(position) && b[position] == RoleNone }

// Place returns a copy with role written at position. The receiver is never modified.
func (b Board) Place(position int, role Role) (Board, error) {
	if !b.IsOpen(position) || !role.Valid() {
		return b, ErrInvalidMove
	}
	b[position] = role
	return b, nil
}

func (b Board) OpenCells() []int {
	return lo.Filter(lo.Range(BoardSize), func(i int, _ int) bool { return b[i] == RoleNone })
}

// CheckWinner returns the role holding any full line, or RoleNone.
func CheckWinner(b Board) Role {
	for _, line := range WinningLines {
		first := b[line[0]]
		if first != RoleNone && first == b[line[1]] && first == b[line[2]] {
			return first
		}
	}
	return RoleNone
}

func IsFull(b Board) bool {
	return !lo.Contains(b[:], RoleNone)
}

func (b Board) MarshalJSON() ([]byte, error) {
	cells := make([]*string, BoardSize)
	for i, c := range b {
		if c != RoleNone {
			s := string(c)
			cells[i] = &s
		}
	}
	return json.Marshal(cells)
}

type GameState struct {
	Board  Board  `json:"board"`
	Turn   Role   `json:"currentPlayer"`
	Winner Result `json:"winner"`
}

func NewGameState() GameState { return GameState{Turn: RoleX} }

// Apply places role at position and evaluates the outcome. It checks
// neither status nor turn; callers decide whether the move is allowed.
// finished is true when the move won the game or filled the grid.
func (g *GameState) Apply(role Role, position int) (finished bool, err error) {
	next, err := g.Board.Place(position, role)
	if err != nil {
		return false, err
	}
	g.Board = next
	if w := CheckWinner(next); w != RoleNone {
		g.Winner = Result(w)
		return true, nil
	}
	if IsFull(next) {
		g.Winner = ResultDraw
		return true, nil
	}
	g.Turn = role.Opponent()
	return false, nil
}

// ApplyMove is the single move path for humans and the bot alike.
// A rejected move leaves the room untouched.
func ApplyMove(r *Room, role Role, position int) error {
	if r.Kind != KindTurnBased || r.Status != StatusPlaying {
		return ErrGameNotActive
	}
	if role != r.Game.Turn {
		return ErrNotYourTurn
	}
	finished, err := r.Game.Apply(role, position)
	if err != nil {
		return err
	}
	if finished {
		r.Status = StatusFinished
	}
	return nil
}
