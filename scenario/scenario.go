// SPDX-License-Identifier: GPL-3.0-or-later

/*
Package scenario builds canned, pre-ordered lists of events.

The builders (e.g., [NewPing]) take concrete source and destination
nodes and return nil when either lacks an IP address on its first
interface. Callers MUST treat a nil result as "not applicable" and
enqueue nothing. [Select] implements the policy for choosing the
nodes given a topology, and [Build] combines the two.
*/
package scenario

import (
	"errors"
	"fmt"

	"github.com/rbmk-project/protosim/idgen"
	"github.com/rbmk-project/protosim/packet"
	"github.com/rbmk-project/protosim/topology"
)

// Kind is the kind of scenario.
type Kind string

const (
	// Ping resolves the destination with ARP and then pings it.
	Ping = Kind("ping")

	// HTTPRequest resolves the server with ARP, opens a TCP
	// connection, and sends an HTTP request.
	HTTPRequest = Kind("http-request")

	// DNSLookup sends a single DNS query.
	DNSLookup = Kind("dns-lookup")

	// TCPClose closes a TCP connection from the client side.
	TCPClose = Kind("tcp-close")
)

// DefaultHostname is the name queried by [DNSLookup].
const DefaultHostname = "www.example.com"

var (
	// ErrUnknownScenario indicates an unknown scenario kind.
	ErrUnknownScenario = errors.New("scenario: unknown scenario")

	// ErrInapplicable indicates that the topology lacks the
	// devices or addresses the scenario needs.
	ErrInapplicable = errors.New("scenario: not applicable to this topology")
)

// Kinds returns all the scenario kinds.
func Kinds() []Kind {
	return []Kind{Ping, HTTPRequest, DNSLookup, TCPClose}
}

// ParseKind parses a scenario kind.
func ParseKind(s string) (Kind, error) {
	for _, kind := range Kinds() {
		if string(kind) == s {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScenario, s)
}

// endpoint is the first interface of a node taking part in a scenario.
type endpoint struct {
	node  *topology.Node
	iface topology.Interface
}

// resolve returns the endpoints or false if either has no IP address.
func resolve(src, dst *topology.Node) (endpoint, endpoint, bool) {
	if src == nil || dst == nil {
		return endpoint{}, endpoint{}, false
	}
	srcIface, ok := src.FirstInterface()
	if !ok || srcIface.IP == "" {
		return endpoint{}, endpoint{}, false
	}
	dstIface, ok := dst.FirstInterface()
	if !ok || dstIface.IP == "" {
		return endpoint{}, endpoint{}, false
	}
	return endpoint{src, srcIface}, endpoint{dst, dstIface}, true
}

// builder accumulates the events of a scenario.
type builder struct {
	ids      idgen.Source
	src, dst endpoint
	events   []*packet.Event
}

// unicast appends an event carrying a unicast packet from src to dst.
func (b *builder) unicast(time int, proto packet.Protocol, payload string) {
	b.emit(time, packet.Packet{
		ID:       b.ids.NewID(),
		SrcMAC:   b.src.iface.MAC,
		DstMAC:   b.dst.iface.MAC,
		SrcIP:    b.src.iface.IP,
		DstIP:    b.dst.iface.IP,
		Protocol: proto,
		TTL:      packet.DefaultTTL,
		Payload:  payload,
	})
}

// whoHas appends the ARP broadcast asking for the dst address.
func (b *builder) whoHas(time int) {
	b.emit(time, packet.Packet{
		ID:       b.ids.NewID(),
		SrcMAC:   b.src.iface.MAC,
		DstMAC:   packet.BroadcastMAC,
		SrcIP:    b.src.iface.IP,
		DstIP:    b.dst.iface.IP,
		Protocol: packet.ARPRequest,
		TTL:      packet.BroadcastTTL,
		Payload:  fmt.Sprintf("Who has %s?", b.dst.iface.IP),
	})
}

func (b *builder) emit(time int, pkt packet.Packet) {
	b.events = append(b.events, packet.NewEvent(b.ids.NewID(), time, pkt, b.src.node.ID, b.dst.node.ID))
}

// build runs fn against a new builder, returning nil when
// the endpoints lack IP addresses.
func build(ids idgen.Source, src, dst *topology.Node, fn func(b *builder)) []*packet.Event {
	srcEP, dstEP, ok := resolve(src, dst)
	if !ok {
		return nil
	}
	b := &builder{ids: ids, src: srcEP, dst: dstEP}
	fn(b)
	return b.events
}

// NewPing returns an ARP request at tick 0 and an ICMP echo at tick 3,
// after ARP resolution completes.
func NewPing(ids idgen.Source, src, dst *topology.Node) []*packet.Event {
	return build(ids, src, dst, func(b *builder) {
		b.whoHas(0)
		b.unicast(3, packet.ICMPEcho, "Ping")
	})
}

// NewHTTPRequest returns an ARP request at tick 0, a TCP SYN at tick 3,
// and an HTTP request at tick 7, after the handshake completes.
func NewHTTPRequest(ids idgen.Source, client, server *topology.Node) []*packet.Event {
	return build(ids, client, server, func(b *builder) {
		b.whoHas(0)
		b.unicast(3, packet.TCPSyn, "")
		b.unicast(7, packet.HTTPRequest, "GET /")
	})
}

// NewDNSLookup returns a DNS query for [DefaultHostname] at tick 0.
func NewDNSLookup(ids idgen.Source, client, server *topology.Node) []*packet.Event {
	return build(ids, client, server, func(b *builder) {
		b.unicast(0, packet.DNSQuery, DefaultHostname)
	})
}

// NewTCPClose returns a TCP FIN from client to server at tick 0.
func NewTCPClose(ids idgen.Source, client, server *topology.Node) []*packet.Event {
	return build(ids, client, server, func(b *builder) {
		b.unicast(0, packet.TCPFin, "")
	})
}
