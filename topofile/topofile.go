// SPDX-License-Identifier: GPL-3.0-or-later

/*
Package topofile persists a topology as a JSON document containing
the nodes, the edges, and the time of the save.

Reads and writes go through [lockedfile], so concurrent processes
sharing a file never observe a partial write.
*/
package topofile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/rbmk-project/protosim/topology"
	"github.com/rogpeppe/go-internal/lockedfile"
	"github.com/tidwall/gjson"
)

// DefaultPath is the default file name.
const DefaultPath = "network-simulator-topology.json"

var (
	// ErrNotSaved indicates that no topology has been saved yet.
	ErrNotSaved = errors.New("topofile: no saved topology")

	// ErrCorrupt indicates a file that does not contain a valid topology.
	ErrCorrupt = errors.New("topofile: corrupt topology file")
)

// Saved is the persisted form of a topology.
type Saved struct {
	// Nodes contains the devices.
	Nodes []*topology.Node `json:"nodes"`

	// Edges contains the links.
	Edges []*topology.Edge `json:"edges"`

	// SavedAt is when the topology was saved.
	SavedAt time.Time `json:"savedAt"`
}

// Graph returns a [*topology.Graph] sharing the saved nodes and edges.
func (s *Saved) Graph() *topology.Graph {
	g := topology.NewGraph()
	g.Nodes = append(g.Nodes, s.Nodes...)
	g.Edges = append(g.Edges, s.Edges...)
	return g
}

// Store saves and loads a topology at a given path.
//
// The zero value uses [DefaultPath] in the current directory.
type Store struct {
	// Path is the optional file path. If empty, we use [DefaultPath].
	Path string
}

func (s *Store) path() string {
	if s.Path != "" {
		return s.Path
	}
	return DefaultPath
}

// Save writes the nodes and edges of g, stamped with now.
func (s *Store) Save(g *topology.Graph, now time.Time) error {
	saved := &Saved{
		Nodes:   g.Nodes,
		Edges:   g.Edges,
		SavedAt: now.UTC().Truncate(time.Millisecond),
	}
	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return err
	}
	return lockedfile.Write(s.path(), bytes.NewReader(data), 0600)
}

// Load reads the saved topology. It returns [ErrNotSaved] when there
// is no file and [ErrCorrupt] when the file cannot be parsed or an
// edge references a node that does not exist.
func (s *Store) Load() (*Saved, error) {
	data, err := lockedfile.Read(s.path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotSaved
	}
	if err != nil {
		return nil, err
	}
	var saved Saved
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	for _, node := range saved.Nodes {
		if node.ARPTable == nil {
			node.ARPTable = map[string]string{}
		}
	}
	if err := saved.Graph().Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return &saved, nil
}

// Summary describes a saved topology without decoding it.
type Summary struct {
	SavedAt time.Time
	Nodes   int
	Edges   int
}

// Peek returns the [Summary] of the saved topology. Like [*Store.Load],
// it returns [ErrNotSaved] when there is no file and [ErrCorrupt] when
// the file is not a JSON document.
func (s *Store) Peek() (Summary, error) {
	data, err := lockedfile.Read(s.path())
	if errors.Is(err, fs.ErrNotExist) {
		return Summary{}, ErrNotSaved
	}
	if err != nil {
		return Summary{}, err
	}
	if !gjson.ValidBytes(data) {
		return Summary{}, ErrCorrupt
	}
	fields := gjson.GetManyBytes(data, "savedAt", "nodes.#", "edges.#")
	summary := Summary{
		SavedAt: fields[0].Time(),
		Nodes:   int(fields[1].Int()),
		Edges:   int(fields[2].Int()),
	}
	return summary, nil
}

// Clear removes the saved topology, if any.
func (s *Store) Clear() error {
	err := os.Remove(s.path())
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
