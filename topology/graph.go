// SPDX-License-Identifier: GPL-3.0-or-later

package topology

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rbmk-project/protosim/idgen"
)

var (
	// ErrNodeNotFound indicates that a node id does not exist.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNoInterface indicates that a node has no interface to attach an edge to.
	ErrNoInterface = errors.New("node has no interface")

	// ErrDuplicateEdge indicates that two nodes are already connected.
	ErrDuplicateEdge = errors.New("nodes are already connected")

	// ErrSelfLoop indicates an attempt to connect a node to itself.
	ErrSelfLoop = errors.New("cannot connect a node to itself")

	// ErrDanglingEdge indicates an edge referencing a missing node.
	ErrDanglingEdge = errors.New("edge references a missing node")
)

// Graph is the network topology: an ordered list of nodes and an
// ordered list of edges. Orders matter: routing and scenario selection
// enumerate nodes and edges in slice order.
//
// The zero value is ready to use.
//
// This type IS NOT goroutine safe.
type Graph struct {
	// Nodes contains the devices in insertion order.
	Nodes []*Node `json:"nodes"`

	// Edges contains the links in insertion order.
	Edges []*Edge `json:"edges"`
}

// NewGraph creates an empty [*Graph].
func NewGraph() *Graph {
	return &Graph{
		Nodes: []*Node{},
		Edges: []*Edge{},
	}
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	for _, node := range g.Nodes {
		if node.ID == id {
			return node, true
		}
	}
	return nil, false
}

// NodeByLabel returns the first node with the given label.
func (g *Graph) NodeByLabel(label string) (*Node, bool) {
	for _, node := range g.Nodes {
		if node.Label == label {
			return node, true
		}
	}
	return nil, false
}

// NodesOfKind returns the nodes of the given kind in graph order.
func (g *Graph) NodesOfKind(kind DeviceKind) []*Node {
	var out []*Node
	for _, node := range g.Nodes {
		if node.Kind == kind {
			out = append(out, node)
		}
	}
	return out
}

// FirstOfKind returns the first node of the given kind.
func (g *Graph) FirstOfKind(kind DeviceKind) (*Node, bool) {
	for _, node := range g.Nodes {
		if node.Kind == kind {
			return node, true
		}
	}
	return nil, false
}

// AddNode appends a node to the graph.
func (g *Graph) AddNode(node *Node) {
	g.Nodes = append(g.Nodes, node)
}

// RemoveNode removes a node along with all the edges referencing it.
func (g *Graph) RemoveNode(id string) bool {
	before := len(g.Nodes)
	g.Nodes = slices.DeleteFunc(g.Nodes, func(n *Node) bool { return n.ID == id })
	if len(g.Nodes) == before {
		return false
	}
	g.Edges = slices.DeleteFunc(g.Edges, func(e *Edge) bool { return e.Touches(id) })
	g.relinkInterfaces()
	return true
}

// MoveNode updates the position of a node.
func (g *Graph) MoveNode(id string, x, y float64) bool {
	node, found := g.Node(id)
	if !found {
		return false
	}
	node.X, node.Y = x, y
	return true
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id string) (*Edge, bool) {
	for _, edge := range g.Edges {
		if edge.ID == id {
			return edge, true
		}
	}
	return nil, false
}

// AddEdge connects the first interfaces of two nodes with a new up edge.
//
// At most one edge may exist between any unordered pair of nodes.
func (g *Graph) AddEdge(ids idgen.Source, fromID, toID string) (*Edge, error) {
	if fromID == toID {
		return nil, ErrSelfLoop
	}
	from, found := g.Node(fromID)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, fromID)
	}
	to, found := g.Node(toID)
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, toID)
	}
	fromIface, ok := from.FirstInterface()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoInterface, from.Label)
	}
	toIface, ok := to.FirstInterface()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoInterface, to.Label)
	}
	for _, edge := range g.Edges {
		if edge.Connects(fromID, toID) {
			return nil, fmt.Errorf("%w: %s and %s", ErrDuplicateEdge, from.Label, to.Label)
		}
	}
	edge := &Edge{
		ID:     ids.NewID(),
		From:   Endpoint{NodeID: fromID, InterfaceID: fromIface.ID},
		To:     Endpoint{NodeID: toID, InterfaceID: toIface.ID},
		Status: EdgeUp,
	}
	g.Edges = append(g.Edges, edge)
	g.relinkInterfaces()
	return edge, nil
}

// RemoveEdge removes the edge with the given id.
func (g *Graph) RemoveEdge(id string) bool {
	before := len(g.Edges)
	g.Edges = slices.DeleteFunc(g.Edges, func(e *Edge) bool { return e.ID == id })
	if len(g.Edges) == before {
		return false
	}
	g.relinkInterfaces()
	return true
}

// relinkInterfaces points the ConnectedEdgeID of every interface at an
// edge that still exists. An interface keeps its current edge while that
// edge exists and otherwise takes the oldest edge attached to it.
func (g *Graph) relinkInterfaces() {
	attached := make(map[string]string, 2*len(g.Edges))
	present := make(map[string]bool, len(g.Edges))
	for _, edge := range g.Edges {
		present[edge.ID] = true
		for _, ifaceID := range []string{edge.From.InterfaceID, edge.To.InterfaceID} {
			if _, found := attached[ifaceID]; !found {
				attached[ifaceID] = edge.ID
			}
		}
	}
	for _, node := range g.Nodes {
		for idx := range node.Interfaces {
			iface := &node.Interfaces[idx]
			if iface.ConnectedEdgeID != "" && present[iface.ConnectedEdgeID] {
				continue
			}
			iface.ConnectedEdgeID = attached[iface.ID]
		}
	}
}

// ToggleEdge flips an edge between up and down and returns the new status.
func (g *Graph) ToggleEdge(id string) (EdgeStatus, bool) {
	edge, found := g.Edge(id)
	if !found {
		return "", false
	}
	if edge.IsUp() {
		edge.Status = EdgeDown
	} else {
		edge.Status = EdgeUp
	}
	return edge.Status, true
}

// Clear removes all nodes and edges.
func (g *Graph) Clear() {
	g.Nodes = []*Node{}
	g.Edges = []*Edge{}
}

// ResetProtocolState empties every ARP table and clears every TCP state
// while leaving identities, positions, interfaces, and edges untouched.
func (g *Graph) ResetProtocolState() {
	for _, node := range g.Nodes {
		node.ARPTable = map[string]string{}
		node.TCPState = TCPNone
	}
}

// Validate checks referential integrity: every edge must reference
// existing nodes. All the violations are joined in the returned error.
func (g *Graph) Validate() error {
	var errv []error
	for _, edge := range g.Edges {
		for _, id := range []string{edge.From.NodeID, edge.To.NodeID} {
			if _, found := g.Node(id); !found {
				errv = append(errv, fmt.Errorf("%w: edge %s references %s", ErrDanglingEdge, edge.ID, id))
			}
		}
	}
	return errors.Join(errv...)
}
