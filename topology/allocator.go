// SPDX-License-Identifier: GPL-3.0-or-later

package topology

import (
	"fmt"

	"github.com/rbmk-project/protosim/idgen"
	"github.com/rbmk-project/protosim/netipx"
)

// DefaultSubnet is the /24 prefix used for allocated addresses.
const DefaultSubnet = "192.168.1"

// Allocator hands out identifiers, MAC and IP addresses, and labels
// for new devices. Each simulation context owns one allocator.
//
// Construct using [NewAllocator].
//
// This type IS NOT goroutine safe.
type Allocator struct {
	// IDs generates node, interface, and edge identifiers.
	IDs idgen.Source

	// Subnet is the first three octets of allocated IP addresses.
	Subnet string

	// hosts is the last allocated host octet.
	hosts int

	// macs is the number of allocated MAC addresses.
	macs int

	// nodes is the number of allocated nodes.
	nodes int

	// reserved contains the IP addresses NextIP must skip.
	reserved map[string]bool
}

// NewAllocator creates a new [*Allocator] using [DefaultSubnet]. The
// first allocated IP address is .2 and the first MAC ends in 00:00:01.
func NewAllocator(ids idgen.Source) *Allocator {
	return &Allocator{
		IDs:    ids,
		Subnet: DefaultSubnet,
		hosts:  1,
	}
}

// NextMAC returns the next locally administered MAC address.
func (a *Allocator) NextMAC() string {
	a.macs++
	v := a.macs & 0xffffff
	return fmt.Sprintf("AA:BB:CC:%02X:%02X:%02X", v>>16, (v>>8)&0xff, v&0xff)
}

// Reserve marks IP addresses as assigned elsewhere so that
// [*Allocator.NextIP] never returns them.
func (a *Allocator) Reserve(ips ...string) {
	if a.reserved == nil {
		a.reserved = map[string]bool{}
	}
	for _, ip := range ips {
		a.reserved[ip] = true
	}
}

// NextIP returns the next unreserved IP address inside the subnet.
func (a *Allocator) NextIP() string {
	for {
		a.hosts++
		ip := fmt.Sprintf("%s.%d", a.Subnet, a.hosts)
		if !a.reserved[ip] {
			return ip
		}
	}
}

// NewNode creates, without adding it to any graph, a node of the given
// kind with a single interface. All kinds but switches get an IP address
// with the [netipx.DefaultMask]. Switches get an empty MAC table and
// routers an empty routing table.
func (a *Allocator) NewNode(kind DeviceKind, x, y float64) *Node {
	return a.newNode(kind, x, y, "")
}

// NewNodeWithIP is like [*Allocator.NewNode] but assigns and reserves
// the given IP address instead of allocating one. The ip is ignored for
// kinds without an IP address.
func (a *Allocator) NewNodeWithIP(kind DeviceKind, x, y float64, ip string) *Node {
	a.Reserve(ip)
	return a.newNode(kind, x, y, ip)
}

func (a *Allocator) newNode(kind DeviceKind, x, y float64, ip string) *Node {
	a.nodes++
	nodeID := a.IDs.NewID()
	iface := Interface{
		ID:  a.IDs.NewID(),
		MAC: a.NextMAC(),
	}
	if kind.HasIP() {
		if ip == "" {
			ip = a.NextIP()
		}
		iface.IP = ip
		iface.SubnetMask = netipx.DefaultMask
	}
	node := &Node{
		ID:         nodeID,
		Kind:       kind,
		Label:      fmt.Sprintf("%s%d", kind.LabelPrefix(), a.nodes),
		X:          x,
		Y:          y,
		Interfaces: []Interface{iface},
		ARPTable:   map[string]string{},
	}
	switch kind {
	case KindSwitch:
		node.MACTable = map[string]string{}
	case KindRouter:
		node.RoutingTable = []RouteEntry{}
	}
	return node
}
