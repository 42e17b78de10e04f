package recurring

import (
	"context"
	"sync"
	"time"

	"github.com/WOOWTECH/ha-finance/internal/clock"
)

// TickFunc is invoked once per day at local midnight.
type TickFunc func(ctx context.Context, now time.Time)

// Scheduler calls a TickFunc at every local midnight of its location.
type Scheduler struct {
	clock clock.Clock
	loc   *time.Location
	tick  TickFunc

	mu      sync.Mutex
	timer   *clock.Timer
	runCtx  context.Context
	stopped bool
	running sync.WaitGroup
}

func NewScheduler(c clock.Clock, loc *time.Location, tick TickFunc) *Scheduler {
	if loc == nil {
		loc = time.Local
	}

	return &Scheduler{clock: c, loc: loc, tick: tick}
}

// Start arms the timer for the next midnight. Cancelling ctx stops the
// scheduler, but a tick already in progress runs to completion.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runCtx = context.WithoutCancel(ctx)
	s.stopped = false
	s.arm()

	context.AfterFunc(ctx, s.Stop)
}

// Stop prevents further ticks. It does not wait for a running tick; use
// Wait for that.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Wait blocks until any in-flight tick has returned.
func (s *Scheduler) Wait() {
	s.running.Wait()
}

// NextRun returns the midnight the scheduler fires at after now.
func (s *Scheduler) NextRun(now time.Time) time.Time {
	local := now.In(s.loc)
	y, m, d := local.Date()

	return time.Date(y, m, d+1, 0, 0, 0, 0, s.loc)
}

func (s *Scheduler) arm() {
	now := s.clock.Now()
	s.timer = s.clock.AfterFunc(s.NextRun(now).Sub(now), s.fire)
}

func (s *Scheduler) fire() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}

	ctx := s.runCtx
	s.running.Add(1)
	s.mu.Unlock()

	defer s.running.Done()

	s.tick(ctx, s.clock.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.stopped {
		s.arm()
	}
}
