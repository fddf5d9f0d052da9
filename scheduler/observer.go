// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import "github.com/rbmk-project/protosim/packet"

// Observer receives notifications about the scheduler activity, e.g.,
// to export metrics. Methods are called synchronously from the
// goroutine driving the [*Scheduler] and must not call back into it.
type Observer interface {
	// ObserveEvent is called after an event has been processed and
	// its effect applied. The animations argument is the number of
	// in-flight packets the event started.
	ObserveEvent(ev *packet.Event, animations int)

	// ObserveAnimation is called when an in-flight packet arrives.
	ObserveAnimation(ap *AnimatedPacket)

	// ObserveState is called on every state transition.
	ObserveState(from, to State)
}
