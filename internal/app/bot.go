package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Arena/internal/domain"
)

// BotTurn executes a deferred bot move. It must re-read the room and no-op
// when the room's epoch no longer matches the scheduled one.
type BotTurn func(room domain.RoomID, epoch uint64)

type pendingTurn struct {
	timer *time.Timer
	epoch uint64
}

// BotScheduler keeps at most one deferred bot move per room.
type BotScheduler struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[domain.RoomID]*pendingTurn
	stopped bool
}

func NewBotScheduler(delay time.Duration) *BotScheduler {
	return &BotScheduler{
		delay:   delay,
		pending: make(map[domain.RoomID]*pendingTurn),
	}
}

// Schedule replaces any move already pending for the room.
func (s *BotScheduler) Schedule(room domain.RoomID, epoch uint64, turn BotTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if old, ok := s.pending[room]; ok {
		old.timer.Stop()
		log.Debug().Str("module", "app.bot").Str("room_id", string(room)).Msg("replacing pending bot move")
	}

	p := &pendingTurn{epoch: epoch}
	p.timer = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		if s.pending[room] == p {
			delete(s.pending, room)
		}
		s.mu.Unlock()
		turn(room, epoch)
	})
	s.pending[room] = p
	log.Debug().Str("module", "app.bot").Str("room_id", string(room)).Uint64("epoch", epoch).Dur("delay", s.delay).Msg("bot move scheduled")
}

// Cancel stops the pending move, if its timer has not fired yet.
func (s *BotScheduler) Cancel(room domain.RoomID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pending[room]; ok {
		p.timer.Stop()
		delete(s.pending, room)
		log.Debug().Str("module", "app.bot").Str("room_id", string(room)).Msg("bot move canceled")
	}
}

func (s *BotScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Stop cancels everything and refuses further scheduling.
func (s *BotScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for id, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, id)
	}
}
