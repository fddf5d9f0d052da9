// SPDX-License-Identifier: GPL-3.0-or-later

/*
Package topology models the simulated network: devices ([*Node]) with
their [Interface] list and links between them ([*Edge]).

The [*Graph] is owned by the surrounding application (an editor, a CLI,
a test). The scheduler treats it as read-mostly input and is the only
writer of the per-node ARP table and TCP state while a run is active.

Node, interface, and edge identifiers, MAC and IP addresses, and labels
come from an [*Allocator], which owns all the counters for a single
simulation context.
*/
package topology

import (
	"fmt"

	"github.com/rbmk-project/common/runtimex"
)

// DeviceKind is the kind of a network device.
type DeviceKind string

const (
	// KindHost is an end host.
	KindHost = DeviceKind("host")

	// KindSwitch is a layer-2 switch without IP addresses.
	KindSwitch = DeviceKind("switch")

	// KindRouter is a router.
	KindRouter = DeviceKind("router")

	// KindDNSServer is a DNS server.
	KindDNSServer = DeviceKind("dns-server")

	// KindWebServer is a web server.
	KindWebServer = DeviceKind("web-server")
)

// deviceLabels maps each kind to its default label prefix.
var deviceLabels = map[DeviceKind]string{
	KindHost:      "Host",
	KindSwitch:    "Switch",
	KindRouter:    "Router",
	KindDNSServer: "DNS Server",
	KindWebServer: "Web Server",
}

// ParseDeviceKind parses a device kind name.
func ParseDeviceKind(s string) (DeviceKind, error) {
	kind := DeviceKind(s)
	if _, found := deviceLabels[kind]; !found {
		return "", fmt.Errorf("unknown device kind: %q", s)
	}
	return kind, nil
}

// MustParseDeviceKind is like [ParseDeviceKind] but panics on error.
func MustParseDeviceKind(s string) DeviceKind {
	return runtimex.Try1(ParseDeviceKind(s))
}

// LabelPrefix returns the default label prefix for the kind.
func (k DeviceKind) LabelPrefix() string {
	return deviceLabels[k]
}

// HasIP returns whether devices of this kind receive an IP address.
func (k DeviceKind) HasIP() bool {
	return k != KindSwitch
}

// TCPState is the simplified per-node TCP handshake status.
//
// The empty string means that the node has no TCP state.
type TCPState string

// TCP states.
const (
	TCPNone        = TCPState("")
	TCPClosed      = TCPState("CLOSED")
	TCPListen      = TCPState("LISTEN")
	TCPSynSent     = TCPState("SYN-SENT")
	TCPSynReceived = TCPState("SYN-RECEIVED")
	TCPEstablished = TCPState("ESTABLISHED")
	TCPFinWait1    = TCPState("FIN-WAIT-1")
	TCPFinWait2    = TCPState("FIN-WAIT-2")
	TCPCloseWait   = TCPState("CLOSE-WAIT")
	TCPLastAck     = TCPState("LAST-ACK")
	TCPTimeWait    = TCPState("TIME-WAIT")
)

// Interface is a network interface of a [*Node].
type Interface struct {
	// ID uniquely identifies the interface.
	ID string `json:"id"`

	// MAC is the hardware address.
	MAC string `json:"mac"`

	// IP is the optional IPv4 address (switches have none).
	IP string `json:"ip,omitempty"`

	// SubnetMask is the optional dotted-quad subnet mask.
	SubnetMask string `json:"subnetMask,omitempty"`

	// ConnectedEdgeID is the oldest edge attached to the interface, kept
	// current by the [*Graph] editing methods.
	ConnectedEdgeID string `json:"connectedEdgeId,omitempty"`
}

// RouteEntry is a static routing table entry.
type RouteEntry struct {
	Destination string `json:"destination"`
	Mask        string `json:"mask"`
	Gateway     string `json:"gateway"`
	InterfaceID string `json:"interfaceId"`
}

// Node is a network device.
type Node struct {
	// ID uniquely identifies the node.
	ID string `json:"id"`

	// Kind is the device kind.
	Kind DeviceKind `json:"type"`

	// Label is the human readable name used in logs.
	Label string `json:"label"`

	// X and Y are the position on the canvas. They have no
	// meaning for the simulation and we only carry them.
	X float64 `json:"x"`
	Y float64 `json:"y"`

	// Interfaces contains the interfaces. Protocol logic only
	// ever uses the first one.
	Interfaces []Interface `json:"interfaces"`

	// ARPTable maps IP addresses to MAC addresses.
	ARPTable map[string]string `json:"arpTable"`

	// MACTable maps MAC addresses to ports (switches only, unused).
	MACTable map[string]string `json:"macTable,omitempty"`

	// RoutingTable is the static routing table (routers only, unused).
	RoutingTable []RouteEntry `json:"routingTable,omitempty"`

	// TCPState is the node-wide TCP state.
	TCPState TCPState `json:"tcpState,omitempty"`
}

// FirstInterface returns the first interface, if any.
func (n *Node) FirstInterface() (Interface, bool) {
	if len(n.Interfaces) <= 0 {
		return Interface{}, false
	}
	return n.Interfaces[0], true
}

// PrimaryIP returns the IP address of the first interface, if any.
func (n *Node) PrimaryIP() (string, bool) {
	iface, ok := n.FirstInterface()
	if !ok || iface.IP == "" {
		return "", false
	}
	return iface.IP, true
}

// PrimaryMAC returns the MAC address of the first interface, if any.
func (n *Node) PrimaryMAC() (string, bool) {
	iface, ok := n.FirstInterface()
	if !ok {
		return "", false
	}
	return iface.MAC, true
}

// EdgeStatus is the administrative status of an [*Edge].
type EdgeStatus string

const (
	// EdgeUp means the edge carries traffic.
	EdgeUp = EdgeStatus("up")

	// EdgeDown means the edge carries no traffic.
	EdgeDown = EdgeStatus("down")
)

// Endpoint is one side of an [*Edge].
type Endpoint struct {
	NodeID      string `json:"nodeId"`
	InterfaceID string `json:"interfaceId"`
}

// Edge is an undirected link between two nodes.
type Edge struct {
	// ID uniquely identifies the edge.
	ID string `json:"id"`

	// From and To are the endpoints. Their order carries no meaning.
	From Endpoint `json:"from"`
	To   Endpoint `json:"to"`

	// Status is the edge status; only up edges carry traffic.
	Status EdgeStatus `json:"status"`
}

// IsUp returns whether the edge carries traffic.
func (e *Edge) IsUp() bool {
	return e.Status == EdgeUp
}

// Connects returns whether the edge joins a and b in either direction.
func (e *Edge) Connects(a, b string) bool {
	return (e.From.NodeID == a && e.To.NodeID == b) ||
		(e.From.NodeID == b && e.To.NodeID == a)
}

// Touches returns whether either endpoint is the given node.
func (e *Edge) Touches(nodeID string) bool {
	return e.From.NodeID == nodeID || e.To.NodeID == nodeID
}

// Peer returns the node at the other end of the edge, if the
// given node is one of the endpoints.
func (e *Edge) Peer(nodeID string) (string, bool) {
	switch nodeID {
	case e.From.NodeID:
		return e.To.NodeID, true
	case e.To.NodeID:
		return e.From.NodeID, true
	default:
		return "", false
	}
}
