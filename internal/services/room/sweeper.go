package room

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcoot/wordbattle/internal/dependencies/clock"
)

// Sweeper periodically deletes rooms older than a maximum age
type Sweeper struct {
	controller *Controller
	clock      clock.Clock
	interval   time.Duration
	maxAge     time.Duration
	logger     *slog.Logger

	started  atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewSweeper creates a Sweeper; call Start to begin sweeping
func NewSweeper(controller *Controller, clock clock.Clock, interval, maxAge time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		controller: controller,
		clock:      clock,
		interval:   interval,
		maxAge:     maxAge,
		logger:     logger.With(slog.String("component", "room-sweeper")),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start runs the sweep loop in the background until ctx is done or Stop is called
func (s *Sweeper) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	ticker := s.clock.NewTicker(s.interval)
	s.logger.Info("room sweeper started",
		slog.Duration("interval", s.interval),
		slog.Duration("max_age", s.maxAge))

	go func() {
		defer close(s.done)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C():
				if _, err := s.controller.Sweep(ctx, s.maxAge); err != nil {
					s.logger.Error("room sweep failed", slog.Any("error", err))
				}
			}
		}
	}()
}

// Stop halts the sweep loop and waits for it to exit. Stopping a sweeper
// that never started is a no-op.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	if !s.started.Load() {
		return
	}
	<-s.done
	s.logger.Info("room sweeper stopped")
}
