// SPDX-License-Identifier: GPL-3.0-or-later

package protocol

import (
	"fmt"

	"github.com/rbmk-project/protosim/packet"
	"github.com/rbmk-project/protosim/topology"
)

// The TCP state is per node rather than per connection: a node taking
// part in two handshakes ends up in the state written last.

// handleTCPSyn moves the sender to SYN-SENT and schedules the SYN-ACK.
func handleTCPSyn(ctx *Context, ev *packet.Event) (effect Effect) {
	src, dst, ok := endpoints(ctx, ev)
	if !ok {
		return
	}
	effect.log(fmt.Sprintf("[TCP] %s → %s: SYN", src.Label, dst.Label))
	effect.setTCP(src, topology.TCPSynSent)
	effect.animate(src, dst, ev.Packet)
	effect.schedule(ctx, 1, ev.Packet.Reply(ctx.IDs.NewID(), packet.TCPSynAck, ""), dst, src)
	return
}

// handleTCPSynAck moves the responder, which is the sender of the
// SYN-ACK, to SYN-RECEIVED and schedules the final ACK.
func handleTCPSynAck(ctx *Context, ev *packet.Event) (effect Effect) {
	src, dst, ok := endpoints(ctx, ev)
	if !ok {
		return
	}
	effect.log(fmt.Sprintf("[TCP] %s → %s: SYN-ACK", src.Label, dst.Label))
	effect.setTCP(src, topology.TCPSynReceived)
	effect.animate(src, dst, ev.Packet)
	effect.schedule(ctx, 1, ev.Packet.Reply(ctx.IDs.NewID(), packet.TCPAck, ""), dst, src)
	return
}

// handleTCPAck completes the handshake on both ends.
func handleTCPAck(ctx *Context, ev *packet.Event) (effect Effect) {
	src, dst, ok := endpoints(ctx, ev)
	if !ok {
		return
	}
	effect.log(fmt.Sprintf("[TCP] %s → %s: ACK (connection ESTABLISHED)", src.Label, dst.Label))
	effect.setTCP(src, topology.TCPEstablished)
	effect.setTCP(dst, topology.TCPEstablished)
	effect.animate(src, dst, ev.Packet)
	return
}

// handleTCPFin implements a simplified symmetric close. The first FIN
// moves the sender to FIN-WAIT-1 and the peer to CLOSE-WAIT, and the
// peer answers with its own FIN one tick later. A FIN sent to a node
// in FIN-WAIT-1 is that answer: the sender moves to LAST-ACK and the
// initiator to TIME-WAIT.
func handleTCPFin(ctx *Context, ev *packet.Event) (effect Effect) {
	src, dst, ok := endpoints(ctx, ev)
	if !ok {
		return
	}
	effect.animate(src, dst, ev.Packet)
	if dst.TCPState == topology.TCPFinWait1 {
		effect.log(fmt.Sprintf("[TCP] %s → %s: FIN (connection closed)", src.Label, dst.Label))
		effect.setTCP(src, topology.TCPLastAck)
		effect.setTCP(dst, topology.TCPTimeWait)
		return
	}
	effect.log(fmt.Sprintf("[TCP] %s → %s: FIN", src.Label, dst.Label))
	effect.setTCP(src, topology.TCPFinWait1)
	effect.setTCP(dst, topology.TCPCloseWait)
	effect.schedule(ctx, 1, ev.Packet.Reply(ctx.IDs.NewID(), packet.TCPFin, ""), dst, src)
	return
}
