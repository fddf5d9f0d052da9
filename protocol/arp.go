// SPDX-License-Identifier: GPL-3.0-or-later

package protocol

import (
	"fmt"

	"github.com/rbmk-project/protosim/packet"
	"github.com/rbmk-project/protosim/routing"
)

// handleARPRequest broadcasts the request to the nodes one up edge away
// from the sender. Each neighbor whose first interface owns the target
// IP replies one tick later.
//
// The broadcast does not propagate past the first hop.
func handleARPRequest(ctx *Context, ev *packet.Event) (effect Effect) {
	src, found := ctx.Graph.Node(ev.SrcNodeID)
	if !found {
		return
	}
	targetIP := ev.Packet.DstIP
	effect.log(fmt.Sprintf("[ARP] %s broadcasts: Who has %s? Tell %s", src.Label, targetIP, ev.Packet.SrcIP))

	for _, neighbor := range ctx.Graph.Nodes {
		if neighbor.ID == src.ID {
			continue
		}
		if _, linked := routing.DirectEdge(ctx.Graph, src.ID, neighbor.ID); !linked {
			continue
		}
		effect.animate(src, neighbor, ev.Packet)

		iface, ok := neighbor.FirstInterface()
		if !ok || iface.IP == "" || iface.IP != targetIP {
			continue
		}
		reply := packet.Packet{
			ID:       ctx.IDs.NewID(),
			SrcMAC:   iface.MAC,
			DstMAC:   ev.Packet.SrcMAC,
			SrcIP:    targetIP,
			DstIP:    ev.Packet.SrcIP,
			Protocol: packet.ARPReply,
			TTL:      packet.DefaultTTL,
			Payload:  "MAC=" + iface.MAC,
		}
		effect.schedule(ctx, 1, reply, neighbor, src)
	}
	return
}

// handleARPReply teaches the requester, which is the event destination,
// the sender's address binding.
func handleARPReply(ctx *Context, ev *packet.Event) (effect Effect) {
	src, dst, ok := endpoints(ctx, ev)
	if !ok {
		return
	}
	effect.log(fmt.Sprintf(
		"[ARP] %s replies to %s: %s is at %s",
		src.Label, dst.Label, ev.Packet.SrcIP, ev.Packet.SrcMAC,
	))
	effect.ARPUpdates = append(effect.ARPUpdates, ARPUpdate{
		NodeID: dst.ID,
		IP:     ev.Packet.SrcIP,
		MAC:    ev.Packet.SrcMAC,
	})
	effect.animate(src, dst, ev.Packet)
	return
}
