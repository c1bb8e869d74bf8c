package presence

import (
	"sync"

	"github.com/dkeye/Arena/internal/domain"
	"github.com/dkeye/Arena/internal/protocol"
)

// LocalState is the emitter's own position. It is authoritative for
// collision checks; the interpolated view of remote players never is.
type LocalState struct {
	mu       sync.Mutex
	office   domain.Office
	position domain.Point
	sitting  bool
}

func NewLocalState(office domain.Office, start domain.Point) *LocalState {
	return &LocalState{office: office, position: start}
}

func (s *LocalState) Position() domain.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

// TryMove steps to p unless the player is seated or p is blocked.
func (s *LocalState) TryMove(p domain.Point) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sitting || s.office.Blocked(p) {
		return false
	}
	s.position = p
	return true
}

// ApplySit takes the position the server computed for a sit or stand.
func (s *LocalState) ApplySit(u protocol.SitUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sitting = u.Action == protocol.ActionSit
	s.position = domain.Point{X: u.X, Y: u.Y}
}

func (s *LocalState) Sitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sitting
}
