// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import "time"

// Clock tells the time used to pace animations.
type Clock interface {
	Now() time.Time
}

// SystemClock is the [Clock] backed by [time.Now].
type SystemClock struct{}

var _ Clock = SystemClock{}

// Now implements [Clock].
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ManualClock is a [Clock] that only moves when told to.
//
// This type IS NOT goroutine safe.
type ManualClock struct {
	now time.Time
}

var _ Clock = &ManualClock{}

// NewManualClock creates a [*ManualClock] reading the given time.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now implements [Clock].
func (c *ManualClock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
