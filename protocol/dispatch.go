// SPDX-License-Identifier: GPL-3.0-or-later

/*
Package protocol implements the per-protocol state transitions.

Each [Handler] is a pure function of an [*packet.Event] and a [*Context]
returning an [Effect]: ARP table writes, TCP state writes, follow-up
events, animations, and log lines. Handlers never write to the topology.

# Missing References

When an event names a node that is not in the topology, the handler
returns an empty [Effect]. There are no errors to retry: handlers are
total functions and the only recovery is producing nothing.

# Dispatch

[Dispatch] selects the handler from a table indexed by [packet.Protocol].
The package refuses to initialize if a valid protocol lacks a handler.
*/
package protocol

import (
	"fmt"

	"github.com/rbmk-project/common/runtimex"
	"github.com/rbmk-project/protosim/packet"
)

// Handler handles a single event.
type Handler func(ctx *Context, ev *packet.Event) Effect

// handlers maps each protocol to its handler.
var handlers = [packet.NumProtocols]Handler{
	packet.ARPRequest:   handleARPRequest,
	packet.ARPReply:     handleARPReply,
	packet.ICMPEcho:     handleICMPEcho,
	packet.ICMPReply:    handleICMPReply,
	packet.TCPSyn:       handleTCPSyn,
	packet.TCPSynAck:    handleTCPSynAck,
	packet.TCPAck:       handleTCPAck,
	packet.TCPFin:       handleTCPFin,
	packet.DNSQuery:     handleDNSQuery,
	packet.DNSResponse:  handleDNSResponse,
	packet.HTTPRequest:  handleHTTPRequest,
	packet.HTTPResponse: handleHTTPResponse,
}

func init() {
	for p := packet.ProtocolUnknown + 1; p < packet.NumProtocols; p++ {
		runtimex.Assert(handlers[p] != nil, "protocol: no handler for "+p.String())
	}
}

// Dispatch invokes the handler for the event type. An invalid event
// type yields a single diagnostic log line and nothing else.
func Dispatch(ctx *Context, ev *packet.Event) Effect {
	if !ev.Type.Valid() {
		return Effect{Logs: []string{fmt.Sprintf("[SIM] Unknown event type: %s", ev.Type)}}
	}
	return handlers[ev.Type](ctx, ev)
}
