// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"errors"
	"time"
)

// ErrFrameBudgetExceeded indicates that [*Scheduler.Drain] gave up
// before the simulation stopped.
var ErrFrameBudgetExceeded = errors.New("scheduler: frame budget exceeded")

// Drain advances clock by frame and calls [*Scheduler.Frame] until the
// scheduler is no longer [Running] or [Stepping]. The clock must be the
// one in the Clock field. It returns [ErrFrameBudgetExceeded] after
// maxFrames frames without stopping.
func (s *Scheduler) Drain(clock *ManualClock, frame time.Duration, maxFrames int) error {
	for count := 0; s.state.active(); count++ {
		if count >= maxFrames {
			return ErrFrameBudgetExceeded
		}
		clock.Advance(frame)
		s.Frame()
	}
	return nil
}

// Run calls [*Scheduler.Frame] for each value received from ticks until
// the scheduler is no longer [Running] or [Stepping]. When ctx is done
// first, Run pauses the scheduler and returns the context error.
func (s *Scheduler) Run(ctx context.Context, ticks <-chan time.Time) error {
	for s.state.active() {
		select {
		case <-ctx.Done():
			s.Pause()
			return ctx.Err()
		case <-ticks:
			s.Frame()
		}
	}
	return nil
}
