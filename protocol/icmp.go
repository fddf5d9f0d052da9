// SPDX-License-Identifier: GPL-3.0-or-later

package protocol

import (
	"fmt"

	"github.com/rbmk-project/protosim/packet"
)

// icmpReplyDelay is the number of ticks between echo request and reply.
const icmpReplyDelay = 2

func handleICMPEcho(ctx *Context, ev *packet.Event) (effect Effect) {
	src, dst, ok := endpoints(ctx, ev)
	if !ok {
		return
	}
	effect.log(fmt.Sprintf("[ICMP] %s → %s: Echo Request (ping)", src.Label, dst.Label))
	effect.animate(src, dst, ev.Packet)
	reply := ev.Packet.Reply(ctx.IDs.NewID(), packet.ICMPReply, "Pong")
	effect.schedule(ctx, icmpReplyDelay, reply, dst, src)
	return
}

func handleICMPReply(ctx *Context, ev *packet.Event) (effect Effect) {
	src, dst, ok := endpoints(ctx, ev)
	if !ok {
		return
	}
	effect.log(fmt.Sprintf("[ICMP] %s → %s: Echo Reply (pong)", src.Label, dst.Label))
	effect.animate(src, dst, ev.Packet)
	return
}
