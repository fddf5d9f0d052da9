// SPDX-License-Identifier: GPL-3.0-or-later

package protocol

import (
	"fmt"
	"net"
	"strings"

	"github.com/miekg/dns"
	"github.com/rbmk-project/protosim/packet"
	"github.com/rbmk-project/protosim/topology"
)

// Resolve returns the A record answering a query for hostname.
//
// The simulated DNS database has a single entry: every name resolves
// to the first IP address of the first web server in the topology, or
// to 0.0.0.0 when there is no such server. The name only determines
// the owner of the returned record.
func Resolve(g *topology.Graph, hostname string) *dns.A {
	addr := net.IPv4zero
	if server, found := g.FirstOfKind(topology.KindWebServer); found {
		if ip, ok := server.PrimaryIP(); ok {
			if parsed := net.ParseIP(ip).To4(); parsed != nil {
				addr = parsed
			}
		}
	}
	return &dns.A{
		Hdr: dns.RR_Header{
			Name:   dns.CanonicalName(hostname),
			Rrtype: dns.TypeA,
			Class:  dns.ClassINET,
			Ttl:    3600,
		},
		A: addr,
	}
}

func handleDNSQuery(ctx *Context, ev *packet.Event) (effect Effect) {
	src, dst, ok := endpoints(ctx, ev)
	if !ok {
		return
	}
	hostname := ev.Packet.Payload
	if hostname == "" {
		hostname = "unknown"
	}
	effect.log(fmt.Sprintf("[DNS] %s → %s: Query %q", src.Label, dst.Label, hostname))
	effect.animate(src, dst, ev.Packet)

	answer := Resolve(ctx.Graph, hostname)
	effect.schedule(ctx, 1, ev.Packet.Reply(ctx.IDs.NewID(), packet.DNSResponse, answer.String()), dst, src)
	return
}

// describeAnswer renders a response payload holding an A record in zone
// file format as "name → address (TTL n)". Other payloads are returned
// unchanged.
func describeAnswer(payload string) string {
	rr, err := dns.NewRR(payload)
	if err != nil {
		return payload
	}
	answer, ok := rr.(*dns.A)
	if !ok {
		return payload
	}
	name := strings.TrimSuffix(answer.Hdr.Name, ".")
	return fmt.Sprintf("%s → %s (TTL %d)", name, answer.A, answer.Hdr.Ttl)
}

func handleDNSResponse(ctx *Context, ev *packet.Event) (effect Effect) {
	src, dst, ok := endpoints(ctx, ev)
	if !ok {
		return
	}
	effect.log(fmt.Sprintf("[DNS] %s → %s: Response %q", src.Label, dst.Label, describeAnswer(ev.Packet.Payload)))
	effect.animate(src, dst, ev.Packet)
	return
}
