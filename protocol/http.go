// SPDX-License-Identifier: GPL-3.0-or-later

package protocol

import (
	"fmt"

	"github.com/rbmk-project/protosim/packet"
)

// HTTPStatusOK is the payload of every simulated HTTP response.
const HTTPStatusOK = "200 OK"

func handleHTTPRequest(ctx *Context, ev *packet.Event) (effect Effect) {
	src, dst, ok := endpoints(ctx, ev)
	if !ok {
		return
	}
	request := ev.Packet.Payload
	if request == "" {
		request = "GET /"
	}
	effect.log(fmt.Sprintf("[HTTP] %s → %s: %s", src.Label, dst.Label, request))
	effect.animate(src, dst, ev.Packet)
	effect.schedule(ctx, 1, ev.Packet.Reply(ctx.IDs.NewID(), packet.HTTPResponse, HTTPStatusOK), dst, src)
	return
}

func handleHTTPResponse(ctx *Context, ev *packet.Event) (effect Effect) {
	src, dst, ok := endpoints(ctx, ev)
	if !ok {
		return
	}
	status := ev.Packet.Payload
	if status == "" {
		status = "Response"
	}
	effect.log(fmt.Sprintf("[HTTP] %s → %s: %s", src.Label, dst.Label, status))
	effect.animate(src, dst, ev.Packet)
	return
}
