// SPDX-License-Identifier: GPL-3.0-or-later

package topofile_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rbmk-project/protosim/idgen"
	"github.com/rbmk-project/protosim/topofile"
	"github.com/rbmk-project/protosim/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *topofile.Store {
	return &topofile.Store{Path: filepath.Join(t.TempDir(), "topology.json")}
}

func TestStore(t *testing.T) {
	ids := idgen.NewSequence("id")
	alloc := topology.NewAllocator(ids)
	g := topology.NewGraph()
	h := alloc.NewNode(topology.KindHost, 120, 80)
	sw := alloc.NewNode(topology.KindSwitch, 240, 80)
	g.AddNode(h)
	g.AddNode(sw)
	edge, err := g.AddEdge(ids, h.ID, sw.ID)
	require.NoError(t, err)
	edge.Status = topology.EdgeDown
	h.ARPTable["192.168.1.9"] = "AA:BB:CC:00:00:09"

	t.Run("load before save", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Load()
		require.ErrorIs(t, err, topofile.ErrNotSaved)
	})

	t.Run("save and load", func(t *testing.T) {
		store := newStore(t)
		now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
		require.NoError(t, store.Save(g, now))

		saved, err := store.Load()
		require.NoError(t, err)
		assert.True(t, now.Equal(saved.SavedAt))
		require.Len(t, saved.Nodes, 2)
		assert.Equal(t, h.ID, saved.Nodes[0].ID)
		assert.Equal(t, h.Interfaces, saved.Nodes[0].Interfaces)
		assert.Equal(t, h.ARPTable, saved.Nodes[0].ARPTable)
		assert.Equal(t, 120.0, saved.Nodes[0].X)
		require.Len(t, saved.Edges, 1)
		assert.Equal(t, *edge, *saved.Edges[0])

		loaded := saved.Graph()
		node, ok := loaded.NodeByLabel("Switch2")
		require.True(t, ok)
		assert.Equal(t, topology.KindSwitch, node.Kind)
		assert.Empty(t, node.Interfaces[0].IP)
		assert.False(t, loaded.Edges[0].IsUp())
	})

	t.Run("the document uses camel case keys", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Save(g, time.Unix(0, 0)))
		data, err := os.ReadFile(store.Path)
		require.NoError(t, err)
		for _, key := range []string{`"savedAt"`, `"arpTable"`, `"nodeId"`, `"type": "host"`} {
			assert.Contains(t, string(data), key)
		}
		assert.Contains(t, string(data), fmt.Sprintf(`"connectedEdgeId": %q`, edge.ID))
	})

	t.Run("peek", func(t *testing.T) {
		store := newStore(t)
		_, err := store.Peek()
		require.ErrorIs(t, err, topofile.ErrNotSaved)

		now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
		require.NoError(t, store.Save(g, now))
		summary, err := store.Peek()
		require.NoError(t, err)
		assert.True(t, now.Equal(summary.SavedAt))
		assert.Equal(t, 2, summary.Nodes)
		assert.Equal(t, 1, summary.Edges)
	})

	t.Run("clear", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Clear(), "clearing nothing is fine")
		require.NoError(t, store.Save(g, time.Now()))
		require.NoError(t, store.Clear())
		_, err := store.Load()
		require.ErrorIs(t, err, topofile.ErrNotSaved)
	})
}

func TestLoadCorrupt(t *testing.T) {
	cases := map[string]string{
		"not json":      `{"nodes": [`,
		"dangling edge": `{"nodes": [], "edges": [{"id": "e1", "from": {"nodeId": "x"}, "to": {"nodeId": "y"}, "status": "up"}]}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			store := newStore(t)
			require.NoError(t, os.WriteFile(store.Path, []byte(content), 0600))
			_, err := store.Load()
			require.ErrorIs(t, err, topofile.ErrCorrupt)
		})
	}

	t.Run("peek at garbage", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, os.WriteFile(store.Path, []byte("not json"), 0600))
		_, err := store.Peek()
		require.ErrorIs(t, err, topofile.ErrCorrupt)
	})
}

func TestLoadFillsARPTables(t *testing.T) {
	store := newStore(t)
	content := `{"nodes": [{"id": "n1", "type": "host", "label": "Host1", "interfaces": []}], "edges": [], "savedAt": "2024-01-01T00:00:00Z"}`
	require.NoError(t, os.WriteFile(store.Path, []byte(content), 0600))
	saved, err := store.Load()
	require.NoError(t, err)
	require.Len(t, saved.Nodes, 1)
	assert.NotNil(t, saved.Nodes[0].ARPTable)
}
