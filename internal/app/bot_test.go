package app_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Arena/internal/app"
	"github.com/dkeye/Arena/internal/domain"
)

func TestBotScheduler_FiresOnceWithEpoch(t *testing.T) {
	s := app.NewBotScheduler(10 * time.Millisecond)
	var calls atomic.Int32
	var gotEpoch atomic.Uint64

	s.Schedule("room", 7, func(room domain.RoomID, epoch uint64) {
		assert.Equal(t, domain.RoomID("room"), room)
		gotEpoch.Store(epoch)
		calls.Add(1)
	})
	assert.Equal(t, 1, s.Pending())

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, uint64(7), gotEpoch.Load())
	assert.Zero(t, s.Pending())
}

func TestBotScheduler_CancelAndReplace(t *testing.T) {
	s := app.NewBotScheduler(20 * time.Millisecond)
	var first, second atomic.Int32

	s.Schedule("a", 1, func(domain.RoomID, uint64) { first.Add(1) })
	s.Schedule("a", 2, func(domain.RoomID, uint64) { second.Add(1) })
	s.Schedule("b", 1, func(domain.RoomID, uint64) { first.Add(1) })
	s.Cancel("b")

	require.Eventually(t, func() bool { return second.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Zero(t, first.Load(), "replaced and canceled moves never run")
}

func TestBotScheduler_StopRefusesNewWork(t *testing.T) {
	s := app.NewBotScheduler(time.Millisecond)
	var calls atomic.Int32
	s.Stop()
	s.Schedule("a", 1, func(domain.RoomID, uint64) { calls.Add(1) })

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, calls.Load())
	assert.Zero(t, s.Pending())
}
