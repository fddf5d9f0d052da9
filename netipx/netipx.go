// SPDX-License-Identifier: GPL-3.0-or-later

// Package netipx contains [net/netip] extensions.
package netipx

import (
	"encoding/binary"
	"errors"
	"net/netip"
)

// DefaultMask is the subnet mask assigned to allocated interfaces.
const DefaultMask = "255.255.255.0"

// ErrNotIPv4 indicates that an address is not a valid IPv4 address.
var ErrNotIPv4 = errors.New("not an IPv4 address")

// ParseIPv4 parses an IPv4 address, rejecting IPv6 and IPv4-in-IPv6.
func ParseIPv4(s string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Addr{}, err
	}
	if !addr.Is4() {
		return netip.Addr{}, ErrNotIPv4
	}
	return addr, nil
}

// SameSubnet reports whether ip1 and ip2 share the network prefix
// selected by the dotted-quad mask. An empty mask means [DefaultMask].
//
// This is a flat comparison: the mask is not required to be contiguous
// and no CIDR semantics are implied. Unparsable inputs yield false.
func SameSubnet(ip1, ip2, mask string) bool {
	if mask == "" {
		mask = DefaultMask
	}
	a, err := ParseIPv4(ip1)
	if err != nil {
		return false
	}
	b, err := ParseIPv4(ip2)
	if err != nil {
		return false
	}
	m, err := ParseIPv4(mask)
	if err != nil {
		return false
	}
	mv := toUint32(m)
	return toUint32(a)&mv == toUint32(b)&mv
}

// toUint32 returns the big-endian integer value of an IPv4 address.
func toUint32(addr netip.Addr) uint32 {
	octets := addr.As4()
	return binary.BigEndian.Uint32(octets[:])
}
