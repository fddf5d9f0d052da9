// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import "fmt"

// State is the state of a [*Scheduler].
type State int

const (
	// Idle means there is nothing to do. This is the initial state
	// and the state reached when the queue and animations drain.
	Idle State = iota

	// Running means events are being processed.
	Running

	// Paused means processing and animations are frozen.
	Paused

	// Stepping is like Running for exactly one event. It becomes
	// Paused once the event's animations complete.
	Stepping
)

var stateNames = [...]string{
	Idle:     "idle",
	Running:  "running",
	Paused:   "paused",
	Stepping: "stepping",
}

// String returns the string representation of the state.
func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// active returns whether frames make progress in this state.
func (s State) active() bool {
	return s == Running || s == Stepping
}
