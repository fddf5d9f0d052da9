// SPDX-License-Identifier: GPL-3.0-or-later

/*
Package scheduler drives a simulation: it owns the event queue, the set
of in-flight [AnimatedPacket], the log, and the simulation [State].

# Pacing

Processing is strictly sequential. The [*Scheduler] dequeues an event
only when no animation is in flight, so the effects of an event are
never applied before every animation of the previous event completes.
While running, it additionally waits EventGap after the last animation
completes before dequeuing again.

Animations advance on each call to [*Scheduler.Frame] by the time the
[Clock] moved since the previous frame. Time spent paused does not
count. The speed multiplier scales animation durations only: event
ticks are logical time and never depend on the speed.

# Drivers

[*Scheduler.Drain] runs a simulation to completion against a
[*ManualClock], which is what tests and headless tools need.
[*Scheduler.Run] consumes frame ticks (e.g., from a [*time.Ticker])
and is what interactive tools need.
*/
package scheduler

import (
	"errors"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/rbmk-project/common/runtimex"
	"github.com/rbmk-project/protosim/idgen"
	"github.com/rbmk-project/protosim/packet"
	"github.com/rbmk-project/protosim/protocol"
	"github.com/rbmk-project/protosim/routing"
	"github.com/rbmk-project/protosim/topology"
)

const (
	// DefaultAnimationDuration is the default time a packet
	// takes to travel along an edge at speed 1.
	DefaultAnimationDuration = 1200 * time.Millisecond

	// DefaultEventGap is the default pause between the end of an
	// event's animations and the processing of the next event.
	DefaultEventGap = 200 * time.Millisecond
)

// ErrInvalidSpeed indicates that a speed multiplier is not positive and finite.
var ErrInvalidSpeed = errors.New("scheduler: speed must be positive and finite")

// Scheduler is the discrete-event simulation engine.
//
// Construct using [New]. You may set the optional fields after
// construction and before calling any other method.
//
// This type IS NOT goroutine safe.
type Scheduler struct {
	// AnimationDuration is the optional animation duration at speed 1.
	// If zero, we use [DefaultAnimationDuration].
	AnimationDuration time.Duration

	// EventGap is the optional delay between events while running.
	// If zero, we use [DefaultEventGap]. Use a negative value to
	// disable the delay entirely.
	EventGap time.Duration

	// Clock is the optional [Clock] pacing animations. If nil, we
	// use [SystemClock].
	Clock Clock

	// IDs is the optional identifier source for the packets, events,
	// animations, and log entries we create. If nil, we use [idgen.UUID].
	IDs idgen.Source

	// Logger is the optional structured logger for emitting
	// structured diagnostic events. If this field is nil, we
	// will not be emitting structured logs.
	Logger *slog.Logger

	// Observer is the optional [Observer] notified about processed
	// events, completed animations, and state changes.
	Observer Observer

	// graph is the topology we run against.
	graph *topology.Graph

	// queue contains the pending events.
	queue EventQueue

	// animations contains the in-flight packets.
	animations []*AnimatedPacket

	// logs is the append-only simulation log.
	logs []LogEntry

	// state is the current state.
	state State

	// tick is the time of the last dequeued event.
	tick int

	// speed is the animation speed multiplier.
	speed float64

	// lastFrame is when animations were last advanced.
	lastFrame time.Time

	// nextAt is the earliest time at which we may dequeue
	// the next event while running.
	nextAt time.Time
}

// New creates a new [*Scheduler] for the given topology, in the
// [Idle] state with speed 1.
func New(graph *topology.Graph) *Scheduler {
	runtimex.Assert(graph != nil, "scheduler: nil graph")
	return &Scheduler{graph: graph, state: Idle, speed: 1}
}

// Graph returns the topology the scheduler runs against.
func (s *Scheduler) Graph() *topology.Graph {
	return s.graph
}

// State returns the current state.
func (s *Scheduler) State() State {
	return s.state
}

// Tick returns the time of the most recently dequeued event.
func (s *Scheduler) Tick() int {
	return s.tick
}

// Speed returns the animation speed multiplier.
func (s *Scheduler) Speed() float64 {
	return s.speed
}

// Logs returns a copy of the simulation log.
func (s *Scheduler) Logs() []LogEntry {
	return slices.Clone(s.logs)
}

// Pending returns a copy of the queued events in dequeue order.
func (s *Scheduler) Pending() []*packet.Event {
	return s.queue.Events()
}

// Animations returns a copy of the in-flight packets.
func (s *Scheduler) Animations() []AnimatedPacket {
	out := make([]AnimatedPacket, 0, len(s.animations))
	for _, ap := range s.animations {
		out = append(out, *ap)
	}
	return out
}

// Busy returns whether there are queued events or in-flight packets.
func (s *Scheduler) Busy() bool {
	return s.queue.Len() > 0 || len(s.animations) > 0
}

// Enqueue adds events to the queue. Events are ordered by time and,
// for equal times, by the order of the calls.
func (s *Scheduler) Enqueue(events ...*packet.Event) {
	for _, ev := range events {
		s.queue.Push(ev)
	}
}

// SetSpeed sets the speed multiplier used for animations created
// from now on. It returns [ErrInvalidSpeed] unless speed > 0.
func (s *Scheduler) SetSpeed(speed float64) error {
	if !(speed > 0) || math.IsInf(speed, 0) {
		return ErrInvalidSpeed
	}
	s.speed = speed
	return nil
}

// Start begins processing. It does nothing and returns false when
// there is neither a queued event nor an in-flight packet.
func (s *Scheduler) Start() bool {
	if !s.Busy() {
		return false
	}
	now := s.clock().Now()
	s.lastFrame = now
	s.setState(Running)
	s.pump(now)
	return true
}

// Pause freezes processing and animations. It does nothing
// unless the scheduler is [Running] or [Stepping].
func (s *Scheduler) Pause() {
	if s.state.active() {
		s.setState(Paused)
	}
}

// Resume continues after [*Scheduler.Pause]. It does nothing
// and returns false unless the scheduler is [Paused].
func (s *Scheduler) Resume() bool {
	if s.state != Paused {
		return false
	}
	return s.Start()
}

// StepOnce processes a single event and switches to [Stepping] until
// its animations complete, then to [Paused] (or [Idle] when there is
// nothing left to do). If packets are still in
// flight, it lets them complete without dequeuing. It does nothing and
// returns false when there is no work.
func (s *Scheduler) StepOnce() bool {
	if !s.Busy() {
		return false
	}
	now := s.clock().Now()
	s.lastFrame = now
	s.setState(Stepping)
	if len(s.animations) <= 0 {
		s.process(now)
	}
	if len(s.animations) <= 0 {
		s.endStep()
	}
	return true
}

// endStep leaves [Stepping] for [Paused], or for [Idle] if no work is left.
func (s *Scheduler) endStep() {
	if s.Busy() {
		s.setState(Paused)
		return
	}
	s.setState(Idle)
}

// Reset returns to [Idle], discarding the queue, the in-flight packets,
// and the log, and clearing the ARP tables and TCP states of all the
// nodes. Nodes and edges are otherwise left untouched.
func (s *Scheduler) Reset() {
	s.queue.Clear()
	s.animations = nil
	s.logs = nil
	s.tick = 0
	s.nextAt = time.Time{}
	s.graph.ResetProtocolState()
	s.setState(Idle)
}

// Frame advances the in-flight packets to the current clock time and,
// when they have all completed, processes the next event if due. It
// does nothing unless the scheduler is [Running] or [Stepping].
func (s *Scheduler) Frame() {
	if !s.state.active() {
		return
	}
	now := s.clock().Now()
	dt := now.Sub(s.lastFrame)
	s.lastFrame = now

	if len(s.animations) > 0 {
		s.animations = slices.DeleteFunc(s.animations, func(ap *AnimatedPacket) bool {
			done := ap.advance(dt)
			if !done {
				return false
			}
			if s.Logger != nil {
				s.Logger.Debug(
					"animationDone",
					slog.String("animationId", ap.ID),
					slog.String("edgeId", ap.EdgeID),
				)
			}
			if s.Observer != nil {
				s.Observer.ObserveAnimation(ap)
			}
			return true
		})
		if len(s.animations) > 0 {
			return
		}
		s.nextAt = now.Add(s.eventGap())
	}

	if s.state == Stepping {
		s.endStep()
		return
	}
	s.pump(now)
}

// pump processes the next event if nothing is in flight and the
// event gap has elapsed, and goes idle when there is no more work.
func (s *Scheduler) pump(now time.Time) {
	if len(s.animations) > 0 {
		return
	}
	if s.queue.Len() <= 0 {
		s.setState(Idle)
		return
	}
	if now.Before(s.nextAt) {
		return
	}
	s.process(now)
}

// process dequeues an event, runs its handler, and applies the effect.
func (s *Scheduler) process(now time.Time) {
	ev, ok := s.queue.Pop()
	if !ok {
		return
	}
	s.tick = ev.Time
	if s.Logger != nil {
		s.Logger.Debug(
			"eventStart",
			slog.String("eventId", ev.ID),
			slog.String("eventType", ev.Type.String()),
			slog.Int("tick", ev.Time),
			slog.String("srcNodeId", ev.SrcNodeID),
			slog.String("dstNodeId", ev.DstNodeID),
		)
	}
	ctx := &protocol.Context{Graph: s.graph, Now: ev.Time, IDs: s.ids()}
	effect := protocol.Dispatch(ctx, ev)
	inflight := len(s.animations)
	s.apply(ev, effect, now)
	if s.Observer != nil {
		s.Observer.ObserveEvent(ev, len(s.animations)-inflight)
	}
	if s.Logger != nil {
		s.Logger.Debug(
			"eventDone",
			slog.String("eventId", ev.ID),
			slog.Int("newEvents", len(effect.Events)),
			slog.Int("animations", len(s.animations)),
			slog.Int("logs", len(effect.Logs)),
		)
	}
}

// apply applies the whole effect of ev. Nothing else runs in between,
// so observers never see a partially applied effect.
func (s *Scheduler) apply(ev *packet.Event, effect protocol.Effect, now time.Time) {
	for _, update := range effect.ARPUpdates {
		node, found := s.graph.Node(update.NodeID)
		if !found {
			continue
		}
		if node.ARPTable == nil {
			node.ARPTable = map[string]string{}
		}
		node.ARPTable[update.IP] = update.MAC
	}
	for _, update := range effect.TCPUpdates {
		if node, found := s.graph.Node(update.NodeID); found {
			node.TCPState = update.State
		}
	}
	s.Enqueue(effect.Events...)
	for _, line := range effect.Logs {
		s.logs = append(s.logs, LogEntry{ID: s.ids().NewID(), Time: ev.Time, Message: line})
	}
	duration := s.animationDuration()
	for _, anim := range effect.Animations {
		edge, found := routing.DirectEdge(s.graph, anim.FromNodeID, anim.ToNodeID)
		if !found {
			continue
		}
		s.animations = append(s.animations, &AnimatedPacket{
			ID:         s.ids().NewID(),
			Packet:     anim.Packet,
			FromNodeID: anim.FromNodeID,
			ToNodeID:   anim.ToNodeID,
			EdgeID:     edge.ID,
			StartTime:  now,
			Duration:   duration,
		})
	}
}

func (s *Scheduler) setState(state State) {
	if s.state == state {
		return
	}
	if s.Logger != nil {
		s.Logger.Info(
			"stateChange",
			slog.String("from", s.state.String()),
			slog.String("to", state.String()),
			slog.Int("tick", s.tick),
		)
	}
	if s.Observer != nil {
		s.Observer.ObserveState(s.state, state)
	}
	s.state = state
}

func (s *Scheduler) clock() Clock {
	if s.Clock != nil {
		return s.Clock
	}
	return SystemClock{}
}

func (s *Scheduler) ids() idgen.Source {
	if s.IDs != nil {
		return s.IDs
	}
	return idgen.UUID{}
}

func (s *Scheduler) eventGap() time.Duration {
	switch {
	case s.EventGap < 0:
		return 0
	case s.EventGap == 0:
		return DefaultEventGap
	default:
		return s.EventGap
	}
}

// animationDuration returns the duration of a new animation at the current speed.
func (s *Scheduler) animationDuration() time.Duration {
	base := s.AnimationDuration
	if base <= 0 {
		base = DefaultAnimationDuration
	}
	return time.Duration(float64(base) / s.speed)
}
