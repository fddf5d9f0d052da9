// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"slices"
	"sort"

	"github.com/rbmk-project/protosim/packet"
)

// EventQueue holds events ordered by ascending time. Events with equal
// time leave the queue in the order in which they entered it.
//
// The zero value is ready to use.
//
// This type IS NOT goroutine safe.
type EventQueue struct {
	events []*packet.Event
}

// Push inserts the event after every queued event with the same or
// an earlier time.
func (q *EventQueue) Push(ev *packet.Event) {
	idx := sort.Search(len(q.events), func(i int) bool {
		return q.events[i].Time > ev.Time
	})
	q.events = slices.Insert(q.events, idx, ev)
}

// Pop removes and returns the earliest event.
func (q *EventQueue) Pop() (*packet.Event, bool) {
	if len(q.events) <= 0 {
		return nil, false
	}
	ev := q.events[0]
	q.events[0] = nil
	q.events = q.events[1:]
	return ev, true
}

// Peek returns the earliest event without removing it.
func (q *EventQueue) Peek() (*packet.Event, bool) {
	if len(q.events) <= 0 {
		return nil, false
	}
	return q.events[0], true
}

// Len returns the number of queued events.
func (q *EventQueue) Len() int {
	return len(q.events)
}

// Clear removes all the events.
func (q *EventQueue) Clear() {
	q.events = nil
}

// Events returns a copy of the queued events in dequeue order.
func (q *EventQueue) Events() []*packet.Event {
	return slices.Clone(q.events)
}
