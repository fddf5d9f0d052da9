// SPDX-License-Identifier: GPL-3.0-or-later

package protocol

import (
	"github.com/rbmk-project/protosim/idgen"
	"github.com/rbmk-project/protosim/packet"
	"github.com/rbmk-project/protosim/topology"
)

// Context is the read-only input shared by all handlers.
type Context struct {
	// Graph is the topology snapshot. Handlers MUST NOT modify it.
	Graph *topology.Graph

	// Now is the current simulation tick.
	Now int

	// IDs generates identifiers for new packets and events.
	IDs idgen.Source
}

// ARPUpdate records that NodeID learned that IP is at MAC.
type ARPUpdate struct {
	NodeID string
	IP     string
	MAC    string
}

// TCPUpdate records that NodeID moved to State.
type TCPUpdate struct {
	NodeID string
	State  topology.TCPState
}

// Animation asks for a packet to be shown travelling between two nodes.
type Animation struct {
	FromNodeID string
	ToNodeID   string
	Packet     packet.Packet
}

// Effect is the outcome of handling one event. The scheduler applies
// an effect atomically: all of it or nothing.
type Effect struct {
	// ARPUpdates contains the ARP table writes.
	ARPUpdates []ARPUpdate

	// TCPUpdates contains the TCP state writes, applied in order.
	TCPUpdates []TCPUpdate

	// Events contains the follow-up events to enqueue.
	Events []*packet.Event

	// Animations contains the packets to show in transit.
	Animations []Animation

	// Logs contains human-readable log lines with a bracketed prefix.
	Logs []string
}

// Empty returns whether the effect does nothing at all.
func (e *Effect) Empty() bool {
	return len(e.ARPUpdates) <= 0 &&
		len(e.TCPUpdates) <= 0 &&
		len(e.Events) <= 0 &&
		len(e.Animations) <= 0 &&
		len(e.Logs) <= 0
}

func (e *Effect) log(line string) {
	e.Logs = append(e.Logs, line)
}

func (e *Effect) animate(from, to *topology.Node, pkt packet.Packet) {
	e.Animations = append(e.Animations, Animation{
		FromNodeID: from.ID,
		ToNodeID:   to.ID,
		Packet:     pkt,
	})
}

func (e *Effect) setTCP(node *topology.Node, state topology.TCPState) {
	e.TCPUpdates = append(e.TCPUpdates, TCPUpdate{NodeID: node.ID, State: state})
}

// schedule enqueues pkt travelling from src to dst at ctx.Now+delay.
func (e *Effect) schedule(ctx *Context, delay int, pkt packet.Packet, src, dst *topology.Node) {
	e.Events = append(e.Events, packet.NewEvent(ctx.IDs.NewID(), ctx.Now+delay, pkt, src.ID, dst.ID))
}

// endpoints looks up both nodes of an event. Lookups are best-effort:
// when either node is missing, the caller returns an empty [Effect].
func endpoints(ctx *Context, ev *packet.Event) (src, dst *topology.Node, ok bool) {
	if src, ok = ctx.Graph.Node(ev.SrcNodeID); !ok {
		return nil, nil, false
	}
	if dst, ok = ctx.Graph.Node(ev.DstNodeID); !ok {
		return nil, nil, false
	}
	return src, dst, true
}
