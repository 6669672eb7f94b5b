package room

import (
	"context"
	"time"

	"github.com/mcoot/wordbattle/internal/model"
	"github.com/mcoot/wordbattle/internal/testutil"
)

func (s *ControllerSuite) TestSweeperRemovesExpiredRoomsOnTick() {
	s.createRoom("ABCDEF", model.ModeDuel, "alice")
	sweeper := NewSweeper(s.controller, s.clock, time.Minute, time.Hour, testutil.NopLogger())

	sweeper.Start(context.Background())
	defer sweeper.Stop()

	s.clock.Tick(30 * time.Minute)
	s.Never(func() bool {
		exists, _ := s.storage.RoomExists(s.ctx, "ABCDEF")
		return !exists
	}, 50*time.Millisecond, 5*time.Millisecond)

	s.clock.Tick(31 * time.Minute)
	s.Eventually(func() bool {
		exists, _ := s.storage.RoomExists(s.ctx, "ABCDEF")
		return !exists
	}, time.Second, 5*time.Millisecond)
}

func (s *ControllerSuite) TestSweeperStopsOnContextCancel() {
	sweeper := NewSweeper(s.controller, s.clock, time.Minute, time.Hour, testutil.NopLogger())
	ctx, cancel := context.WithCancel(context.Background())

	sweeper.Start(ctx)
	cancel()

	s.Eventually(func() bool {
		select {
		case <-sweeper.done:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	// Stop after cancellation must not block
	sweeper.Stop()
}

func (s *ControllerSuite) TestSweeperStopWithoutStart() {
	sweeper := NewSweeper(s.controller, s.clock, time.Minute, time.Hour, testutil.NopLogger())

	sweeper.Stop()
	sweeper.Stop()
}
