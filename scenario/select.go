// SPDX-License-Identifier: GPL-3.0-or-later

package scenario

import (
	"fmt"

	"github.com/rbmk-project/protosim/idgen"
	"github.com/rbmk-project/protosim/packet"
	"github.com/rbmk-project/protosim/topology"
)

// Select chooses the source and destination of a scenario:
//
//   - [Ping]: the first two hosts or, with a single host, the
//     host and the first other node that is not a switch;
//
//   - [HTTPRequest] and [TCPClose]: the first host and the first web server;
//
//   - [DNSLookup]: the first host and the first DNS server.
//
// It returns [ErrInapplicable] when the devices are missing and
// [ErrUnknownScenario] for an unknown kind.
func Select(g *topology.Graph, kind Kind) (src, dst *topology.Node, err error) {
	var peerKind topology.DeviceKind
	switch kind {
	case Ping:
		return selectPing(g)
	case HTTPRequest, TCPClose:
		peerKind = topology.KindWebServer
	case DNSLookup:
		peerKind = topology.KindDNSServer
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownScenario, kind)
	}
	src, srcOK := g.FirstOfKind(topology.KindHost)
	dst, dstOK := g.FirstOfKind(peerKind)
	if !srcOK || !dstOK {
		return nil, nil, fmt.Errorf("%w: %s needs a host and a %s", ErrInapplicable, kind, peerKind)
	}
	return src, dst, nil
}

func selectPing(g *topology.Graph) (*topology.Node, *topology.Node, error) {
	hosts := g.NodesOfKind(topology.KindHost)
	switch {
	case len(hosts) >= 2:
		return hosts[0], hosts[1], nil
	case len(hosts) == 1:
		for _, node := range g.Nodes {
			if node.ID != hosts[0].ID && node.Kind != topology.KindSwitch {
				return hosts[0], node, nil
			}
		}
	}
	return nil, nil, fmt.Errorf("%w: ping needs a host and another non-switch device", ErrInapplicable)
}

// Build selects the endpoints with [Select] and returns the events of
// the scenario. It returns [ErrInapplicable] also when the selected
// nodes have no IP address.
func Build(g *topology.Graph, ids idgen.Source, kind Kind) ([]*packet.Event, error) {
	src, dst, err := Select(g, kind)
	if err != nil {
		return nil, err
	}
	var events []*packet.Event
	switch kind {
	case Ping:
		events = NewPing(ids, src, dst)
	case HTTPRequest:
		events = NewHTTPRequest(ids, src, dst)
	case DNSLookup:
		events = NewDNSLookup(ids, src, dst)
	case TCPClose:
		events = NewTCPClose(ids, src, dst)
	}
	if len(events) <= 0 {
		return nil, fmt.Errorf("%w: %s and %s need IP addresses", ErrInapplicable, src.Label, dst.Label)
	}
	return events, nil
}
