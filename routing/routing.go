// SPDX-License-Identifier: GPL-3.0-or-later

/*
Package routing provides read-only queries over a [*topology.Graph].

None of these functions modify their inputs. Only edges whose status
is up are considered.

# Enumeration Order

Results are deterministic given the graph: [Neighbors] lists peers in
edge order, and [ShortestPath] builds its adjacency lists by walking
the edges in slice order, so among equal-length paths it returns the
first one discovered by FIFO expansion in that order.
*/
package routing

import (
	"slices"

	"github.com/rbmk-project/protosim/topology"
)

// DirectEdge returns the first up edge connecting a and b in either direction.
func DirectEdge(g *topology.Graph, a, b string) (*topology.Edge, bool) {
	for _, edge := range g.Edges {
		if edge.IsUp() && edge.Connects(a, b) {
			return edge, true
		}
	}
	return nil, false
}

// Neighbors returns the ids of the nodes reachable from nodeID through
// exactly one up edge, without duplicates, in edge order.
func Neighbors(g *topology.Graph, nodeID string) []string {
	var out []string
	for _, edge := range g.Edges {
		if !edge.IsUp() {
			continue
		}
		peer, ok := edge.Peer(nodeID)
		if !ok || peer == nodeID || slices.Contains(out, peer) {
			continue
		}
		out = append(out, peer)
	}
	return out
}

// ShortestPath returns the node ids from a to b inclusive along a
// minimum-hop path of up edges, or false when b is unreachable. Edges
// referencing nodes that are not in the graph are ignored.
func ShortestPath(g *topology.Graph, a, b string) ([]string, bool) {
	adjacency := make(map[string][]string, len(g.Nodes))
	for _, node := range g.Nodes {
		adjacency[node.ID] = []string{}
	}
	if _, found := adjacency[a]; !found {
		return nil, false
	}
	for _, edge := range g.Edges {
		if !edge.IsUp() {
			continue
		}
		from, to := edge.From.NodeID, edge.To.NodeID
		_, hasFrom := adjacency[from]
		_, hasTo := adjacency[to]
		if !hasFrom || !hasTo {
			continue
		}
		adjacency[from] = append(adjacency[from], to)
		adjacency[to] = append(adjacency[to], from)
	}

	parent := map[string]string{}
	visited := map[string]bool{a: true}
	queue := []string{a}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if current == b {
			return reconstruct(parent, a, b), true
		}
		for _, next := range adjacency[current] {
			if visited[next] {
				continue
			}
			visited[next] = true
			parent[next] = current
			queue = append(queue, next)
		}
	}
	return nil, false
}

// reconstruct walks the parent links back from b to a.
func reconstruct(parent map[string]string, a, b string) []string {
	path := []string{b}
	for node := b; node != a; {
		node = parent[node]
		path = append(path, node)
	}
	slices.Reverse(path)
	return path
}
