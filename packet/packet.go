// SPDX-License-Identifier: GPL-3.0-or-later

// Package packet contains [Packet], [Event], and the related definitions.
package packet

import (
	"fmt"
)

// Protocol is the protocol tag of a simulated packet.
type Protocol uint8

const (
	// ProtocolUnknown is the zero value and never has a handler.
	ProtocolUnknown Protocol = iota

	// ARPRequest is a broadcast ARP "who has" request.
	ARPRequest

	// ARPReply is a unicast ARP "is at" reply.
	ARPReply

	// ICMPEcho is an ICMP echo request.
	ICMPEcho

	// ICMPReply is an ICMP echo reply.
	ICMPReply

	// TCPSyn is the first segment of the three-way handshake.
	TCPSyn

	// TCPSynAck is the second segment of the three-way handshake.
	TCPSynAck

	// TCPAck is the third segment of the three-way handshake.
	TCPAck

	// TCPFin is a connection teardown segment.
	TCPFin

	// DNSQuery is a DNS query for a hostname.
	DNSQuery

	// DNSResponse is the answer to a DNS query.
	DNSResponse

	// HTTPRequest is an HTTP request.
	HTTPRequest

	// HTTPResponse is an HTTP response.
	HTTPResponse

	// NumProtocols is one past the last valid protocol.
	NumProtocols
)

// protocolNames maps each protocol to its wire name.
var protocolNames = [NumProtocols]string{
	ProtocolUnknown: "unknown",
	ARPRequest:      "arp-request",
	ARPReply:        "arp-reply",
	ICMPEcho:        "icmp-echo",
	ICMPReply:       "icmp-reply",
	TCPSyn:          "tcp-syn",
	TCPSynAck:       "tcp-syn-ack",
	TCPAck:          "tcp-ack",
	TCPFin:          "tcp-fin",
	DNSQuery:        "dns-query",
	DNSResponse:     "dns-response",
	HTTPRequest:     "http-request",
	HTTPResponse:    "http-response",
}

// Valid returns whether p is a known, non-zero protocol.
func (p Protocol) Valid() bool {
	return p > ProtocolUnknown && p < NumProtocols
}

// String returns the string representation of the protocol.
func (p Protocol) String() string {
	if p < NumProtocols {
		return protocolNames[p]
	}
	return fmt.Sprintf("protocol(%d)", uint8(p))
}

// ParseProtocol parses the string representation of a valid protocol.
func ParseProtocol(s string) (Protocol, error) {
	for idx := ProtocolUnknown + 1; idx < NumProtocols; idx++ {
		if protocolNames[idx] == s {
			return idx, nil
		}
	}
	return ProtocolUnknown, fmt.Errorf("unknown protocol: %q", s)
}

// MarshalText implements [encoding.TextMarshaler]. The zero value
// encodes as "unknown"; values past the last protocol fail.
func (p Protocol) MarshalText() ([]byte, error) {
	if p >= NumProtocols {
		return nil, fmt.Errorf("cannot marshal %s", p)
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler]. Unlike
// [ParseProtocol] it accepts "unknown" so that every value produced
// by [Protocol.MarshalText] decodes back.
func (p *Protocol) UnmarshalText(data []byte) error {
	if string(data) == protocolNames[ProtocolUnknown] {
		*p = ProtocolUnknown
		return nil
	}
	value, err := ParseProtocol(string(data))
	if err != nil {
		return err
	}
	*p = value
	return nil
}

const (
	// BroadcastMAC is the Ethernet broadcast address.
	BroadcastMAC = "FF:FF:FF:FF:FF:FF"

	// DefaultTTL is the time-to-live of unicast packets.
	DefaultTTL = 64

	// BroadcastTTL is the time-to-live of ARP broadcasts.
	BroadcastTTL = 1
)

// Packet is a simulated network packet.
//
// Packets are values: handlers construct new packets rather
// than modifying the ones they receive.
type Packet struct {
	// ID uniquely identifies the packet.
	ID string `json:"id"`

	// SrcMAC is the source MAC address.
	SrcMAC string `json:"srcMac"`

	// DstMAC is the destination MAC address.
	DstMAC string `json:"dstMac"`

	// SrcIP is the source IP address.
	SrcIP string `json:"srcIp"`

	// DstIP is the destination IP address.
	DstIP string `json:"dstIp"`

	// Protocol is the protocol tag.
	Protocol Protocol `json:"protocol"`

	// TTL is the time-to-live.
	TTL int `json:"ttl"`

	// Payload is the optional human-readable payload.
	Payload string `json:"payload,omitempty"`
}

// Reply returns a new packet travelling in the opposite direction, with
// swapped MAC and IP addresses and the [DefaultTTL].
func (p Packet) Reply(id string, proto Protocol, payload string) Packet {
	return Packet{
		ID:       id,
		SrcMAC:   p.DstMAC,
		DstMAC:   p.SrcMAC,
		SrcIP:    p.DstIP,
		DstIP:    p.SrcIP,
		Protocol: proto,
		TTL:      DefaultTTL,
		Payload:  payload,
	}
}

// String returns the string representation of the packet.
func (p Packet) String() string {
	return fmt.Sprintf(
		"%s %s (%s) -> %s (%s) ttl=%d payload=%q",
		p.Protocol,
		p.SrcIP, p.SrcMAC,
		p.DstIP, p.DstMAC,
		p.TTL,
		p.Payload,
	)
}

// Event is a protocol action scheduled between two nodes at a given tick.
type Event struct {
	// ID uniquely identifies the event.
	ID string `json:"id"`

	// Time is the tick at which the event fires.
	Time int `json:"time"`

	// Type is the protocol tag selecting the handler.
	Type Protocol `json:"type"`

	// Packet is the packet carried by the event.
	Packet Packet `json:"packet"`

	// SrcNodeID is the node sending the packet.
	SrcNodeID string `json:"srcNodeId"`

	// DstNodeID is the node receiving the packet.
	DstNodeID string `json:"dstNodeId"`
}

// NewEvent creates an [*Event] whose type is the packet's protocol.
func NewEvent(id string, time int, pkt Packet, srcNodeID, dstNodeID string) *Event {
	return &Event{
		ID:        id,
		Time:      time,
		Type:      pkt.Protocol,
		Packet:    pkt,
		SrcNodeID: srcNodeID,
		DstNodeID: dstNodeID,
	}
}

// String returns the string representation of the event.
func (ev *Event) String() string {
	return fmt.Sprintf("t=%d %s %s -> %s", ev.Time, ev.Type, ev.SrcNodeID, ev.DstNodeID)
}
