// SPDX-License-Identifier: GPL-3.0-or-later

package topology_test

import (
	"encoding/json"
	"testing"

	"github.com/rbmk-project/protosim/idgen"
	"github.com/rbmk-project/protosim/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocator(t *testing.T) {
	alloc := topology.NewAllocator(idgen.NewSequence("id"))

	host := alloc.NewNode(topology.KindHost, 10, 20)
	assert.Equal(t, "id1", host.ID)
	assert.Equal(t, "Host1", host.Label)
	assert.Equal(t, []topology.Interface{{
		ID:         "id2",
		MAC:        "AA:BB:CC:00:00:01",
		IP:         "192.168.1.2",
		SubnetMask: "255.255.255.0",
	}}, host.Interfaces)
	assert.Empty(t, host.ARPTable)
	assert.Nil(t, host.MACTable)
	assert.Nil(t, host.RoutingTable)

	sw := alloc.NewNode(topology.KindSwitch, 0, 0)
	assert.Equal(t, "Switch2", sw.Label)
	assert.Empty(t, sw.Interfaces[0].IP)
	assert.Equal(t, "AA:BB:CC:00:00:02", sw.Interfaces[0].MAC)
	assert.NotNil(t, sw.MACTable)

	router := alloc.NewNode(topology.KindRouter, 0, 0)
	assert.Equal(t, "Router3", router.Label)
	assert.Equal(t, "192.168.1.3", router.Interfaces[0].IP)
	assert.NotNil(t, router.RoutingTable)

	web := alloc.NewNode(topology.KindWebServer, 0, 0)
	assert.Equal(t, "Web Server4", web.Label)
}

func TestAllocatorReserve(t *testing.T) {
	alloc := topology.NewAllocator(idgen.NewSequence("id"))
	alloc.Reserve("192.168.1.2", "192.168.1.4")

	fixed := alloc.NewNodeWithIP(topology.KindDNSServer, 0, 0, "192.168.1.3")
	assert.Equal(t, "192.168.1.3", fixed.Interfaces[0].IP)
	assert.Equal(t, "255.255.255.0", fixed.Interfaces[0].SubnetMask)

	var got []string
	for range 2 {
		node := alloc.NewNode(topology.KindHost, 0, 0)
		got = append(got, node.Interfaces[0].IP)
	}
	assert.Equal(t, []string{"192.168.1.5", "192.168.1.6"}, got)

	sw := alloc.NewNodeWithIP(topology.KindSwitch, 0, 0, "192.168.1.9")
	assert.Empty(t, sw.Interfaces[0].IP)
}

func TestParseDeviceKind(t *testing.T) {
	kind, err := topology.ParseDeviceKind("dns-server")
	require.NoError(t, err)
	assert.Equal(t, topology.KindDNSServer, kind)

	_, err = topology.ParseDeviceKind("firewall")
	assert.Error(t, err)

	assert.Panics(t, func() { topology.MustParseDeviceKind("firewall") })
}

// newLab returns a graph with three hosts and the allocator's id source.
func newLab(t *testing.T) (*topology.Graph, idgen.Source, []*topology.Node) {
	ids := idgen.NewSequence("id")
	alloc := topology.NewAllocator(ids)
	g := topology.NewGraph()
	var nodes []*topology.Node
	for range 3 {
		node := alloc.NewNode(topology.KindHost, 0, 0)
		g.AddNode(node)
		nodes = append(nodes, node)
	}
	return g, ids, nodes
}

func TestGraphAddEdge(t *testing.T) {
	t.Run("connects first interfaces", func(t *testing.T) {
		g, ids, nodes := newLab(t)
		edge, err := g.AddEdge(ids, nodes[0].ID, nodes[1].ID)
		require.NoError(t, err)
		assert.Equal(t, topology.EdgeUp, edge.Status)
		assert.Equal(t, nodes[0].Interfaces[0].ID, edge.From.InterfaceID)
		assert.Equal(t, nodes[1].Interfaces[0].ID, edge.To.InterfaceID)
		assert.Len(t, g.Edges, 1)
	})

	t.Run("rejects duplicates in either direction", func(t *testing.T) {
		g, ids, nodes := newLab(t)
		_, err := g.AddEdge(ids, nodes[0].ID, nodes[1].ID)
		require.NoError(t, err)
		_, err = g.AddEdge(ids, nodes[1].ID, nodes[0].ID)
		assert.ErrorIs(t, err, topology.ErrDuplicateEdge)
		assert.Len(t, g.Edges, 1)
	})

	t.Run("rejects unknown nodes and self loops", func(t *testing.T) {
		g, ids, nodes := newLab(t)
		_, err := g.AddEdge(ids, nodes[0].ID, "missing")
		assert.ErrorIs(t, err, topology.ErrNodeNotFound)
		_, err = g.AddEdge(ids, nodes[0].ID, nodes[0].ID)
		assert.ErrorIs(t, err, topology.ErrSelfLoop)
	})

	t.Run("rejects nodes without interfaces", func(t *testing.T) {
		g, ids, nodes := newLab(t)
		nodes[2].Interfaces = nil
		_, err := g.AddEdge(ids, nodes[0].ID, nodes[2].ID)
		assert.ErrorIs(t, err, topology.ErrNoInterface)
	})
}

func TestGraphRemoveNode(t *testing.T) {
	g, ids, nodes := newLab(t)
	_, err := g.AddEdge(ids, nodes[0].ID, nodes[1].ID)
	require.NoError(t, err)
	_, err = g.AddEdge(ids, nodes[1].ID, nodes[2].ID)
	require.NoError(t, err)
	_, err = g.AddEdge(ids, nodes[0].ID, nodes[2].ID)
	require.NoError(t, err)

	assert.True(t, g.RemoveNode(nodes[1].ID))
	assert.False(t, g.RemoveNode(nodes[1].ID))
	assert.Len(t, g.Nodes, 2)
	require.Len(t, g.Edges, 1)
	assert.True(t, g.Edges[0].Connects(nodes[0].ID, nodes[2].ID))
	assert.NoError(t, g.Validate())
}

func TestGraphConnectedEdge(t *testing.T) {
	g, ids, nodes := newLab(t)
	first, err := g.AddEdge(ids, nodes[0].ID, nodes[1].ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, nodes[0].Interfaces[0].ConnectedEdgeID)
	assert.Equal(t, first.ID, nodes[1].Interfaces[0].ConnectedEdgeID)
	assert.Empty(t, nodes[2].Interfaces[0].ConnectedEdgeID)

	second, err := g.AddEdge(ids, nodes[0].ID, nodes[2].ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, nodes[0].Interfaces[0].ConnectedEdgeID, "keeps the existing edge")
	assert.Equal(t, second.ID, nodes[2].Interfaces[0].ConnectedEdgeID)

	require.True(t, g.RemoveEdge(first.ID))
	assert.Equal(t, second.ID, nodes[0].Interfaces[0].ConnectedEdgeID, "moves to a remaining edge")
	assert.Empty(t, nodes[1].Interfaces[0].ConnectedEdgeID)

	require.True(t, g.RemoveNode(nodes[2].ID))
	assert.Empty(t, nodes[0].Interfaces[0].ConnectedEdgeID)
}

func TestGraphEditing(t *testing.T) {
	g, ids, nodes := newLab(t)
	edge, err := g.AddEdge(ids, nodes[0].ID, nodes[1].ID)
	require.NoError(t, err)

	status, ok := g.ToggleEdge(edge.ID)
	assert.True(t, ok)
	assert.Equal(t, topology.EdgeDown, status)
	status, _ = g.ToggleEdge(edge.ID)
	assert.Equal(t, topology.EdgeUp, status)
	_, ok = g.ToggleEdge("missing")
	assert.False(t, ok)

	assert.True(t, g.MoveNode(nodes[2].ID, 5, 6))
	assert.Equal(t, 5.0, nodes[2].X)
	assert.False(t, g.MoveNode("missing", 1, 1))

	assert.True(t, g.RemoveEdge(edge.ID))
	assert.False(t, g.RemoveEdge(edge.ID))

	g.Clear()
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)
}

func TestGraphResetProtocolState(t *testing.T) {
	g, ids, nodes := newLab(t)
	_, err := g.AddEdge(ids, nodes[0].ID, nodes[1].ID)
	require.NoError(t, err)
	nodes[0].ARPTable["192.168.1.3"] = "AA:BB:CC:00:00:02"
	nodes[0].TCPState = topology.TCPEstablished
	nodes[1].TCPState = topology.TCPSynReceived
	before := *nodes[0]

	g.ResetProtocolState()

	for _, node := range g.Nodes {
		assert.Empty(t, node.ARPTable)
		assert.Equal(t, topology.TCPNone, node.TCPState)
	}
	assert.Equal(t, before.ID, nodes[0].ID)
	assert.Equal(t, before.Interfaces, nodes[0].Interfaces)
	assert.Len(t, g.Edges, 1)
}

func TestGraphValidate(t *testing.T) {
	g, ids, nodes := newLab(t)
	_, err := g.AddEdge(ids, nodes[0].ID, nodes[1].ID)
	require.NoError(t, err)
	g.Nodes = g.Nodes[1:] // bypass RemoveNode
	assert.ErrorIs(t, g.Validate(), topology.ErrDanglingEdge)
}

func TestNodeJSON(t *testing.T) {
	g, _, nodes := newLab(t)
	nodes[0].TCPState = topology.TCPSynSent
	data, err := json.Marshal(g.Nodes[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"host"`)
	assert.Contains(t, string(data), `"tcpState":"SYN-SENT"`)
	assert.Contains(t, string(data), `"arpTable":{}`)
}
