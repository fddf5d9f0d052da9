// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"time"

	"github.com/rbmk-project/protosim/packet"
)

// AnimatedPacket is a packet shown travelling along an edge.
//
// Animated packets exist from the moment a handler asks for them until
// their progress reaches 1. While any exists, no event is dequeued.
type AnimatedPacket struct {
	// ID uniquely identifies the animation.
	ID string

	// Packet is the packet in transit.
	Packet packet.Packet

	// FromNodeID and ToNodeID are the ends of the hop.
	FromNodeID string
	ToNodeID   string

	// EdgeID is the up edge carrying the packet.
	EdgeID string

	// Progress is the completed fraction in [0, 1].
	Progress float64

	// StartTime is when the animation was created.
	StartTime time.Time

	// Duration is the total animation time at the speed in
	// effect when the animation was created.
	Duration time.Duration

	// elapsed is the animation time consumed so far. It does not
	// include time spent paused.
	elapsed time.Duration
}

// advance consumes dt of animation time and returns whether
// the animation is complete.
func (ap *AnimatedPacket) advance(dt time.Duration) bool {
	ap.elapsed += dt
	if ap.Duration <= 0 || ap.elapsed >= ap.Duration {
		ap.Progress = 1
		return true
	}
	ap.Progress = float64(ap.elapsed) / float64(ap.Duration)
	return false
}
