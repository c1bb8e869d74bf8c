package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Sweeper periodically evicts finished rooms past their retention window.
type Sweeper struct {
	rooms     *RoomRegistry
	interval  time.Duration
	retention time.Duration
}

func NewSweeper(rooms *RoomRegistry, interval, retention time.Duration) *Sweeper {
	return &Sweeper{rooms: rooms, interval: interval, retention: retention}
}

// Run blocks until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Info().Str("module", "app.sweeper").Dur("interval", s.interval).Dur("retention", s.retention).Msg("sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "app.sweeper").Msg("sweeper stopped")
			return nil
		case <-ticker.C:
			s.Cleanup()
		}
	}
}

// Cleanup runs one pass and reports how many rooms it removed.
func (s *Sweeper) Cleanup() int {
	removed := s.rooms.Sweep(s.retention)
	if len(removed) > 0 {
		log.Info().Str("module", "app.sweeper").Int("removed", len(removed)).Int("remaining", s.rooms.Len()).Msg("swept finished rooms")
	}
	return len(removed)
}
