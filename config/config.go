// SPDX-License-Identifier: GPL-3.0-or-later

/*
Package config loads the YAML description of a lab: the devices, the
links between them, and the simulation settings.

A minimal lab looks like this:

	simulation:
	  speed: 2
	  scenario: ping
	devices:
	  - name: Alice
	    kind: host
	  - name: Bob
	    kind: host
	    ip: 192.168.1.50
	links:
	  - from: Alice
	    to: Bob

Devices without an explicit IP address get the next one from the
[*topology.Allocator], skipping the addresses claimed explicitly. All
the MAC addresses come from the allocator.
*/
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/rbmk-project/common/runtimex"
	"github.com/rbmk-project/protosim/netipx"
	"github.com/rbmk-project/protosim/scenario"
	"github.com/rbmk-project/protosim/scheduler"
	"github.com/rbmk-project/protosim/topology"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by all the validation errors.
var ErrInvalid = errors.New("config: invalid lab")

// Config is a lab description.
type Config struct {
	// Simulation contains the simulation settings.
	Simulation Simulation `yaml:"simulation"`

	// Devices contains the devices in topology order.
	Devices []Device `yaml:"devices"`

	// Links contains the links in topology order.
	Links []Link `yaml:"links"`
}

// Simulation contains the simulation settings. Zero values
// select the scheduler defaults.
type Simulation struct {
	// Speed is the animation speed multiplier.
	Speed float64 `yaml:"speed"`

	// AnimationDuration is the per-hop animation duration at speed 1.
	AnimationDuration time.Duration `yaml:"animationDuration"`

	// EventGap is the pause between events.
	EventGap time.Duration `yaml:"eventGap"`

	// Scenario is the optional scenario to run.
	Scenario string `yaml:"scenario"`
}

// Device is a device of the lab.
type Device struct {
	// Name is the unique label of the device.
	Name string `yaml:"name"`

	// Kind is the device kind, e.g., "host".
	Kind string `yaml:"kind"`

	// IP optionally overrides the allocated IPv4 address.
	IP string `yaml:"ip"`

	// X and Y are the position on the canvas.
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// Link is a link between two devices, referenced by name.
type Link struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`

	// Down creates the link in the down state.
	Down bool `yaml:"down"`
}

// Parse parses and validates a YAML lab.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load reads, parses, and validates the YAML lab at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// MustLoad is like [Load] but panics on error.
func MustLoad(path string) *Config {
	return runtimex.Try1(Load(path))
}

// Validate returns all the problems of the lab joined together.
func (c *Config) Validate() error {
	var errv []error
	invalid := func(format string, args ...any) {
		errv = append(errv, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if speed := c.Simulation.Speed; math.IsNaN(speed) || math.IsInf(speed, 0) {
		invalid("non-finite speed %v", speed)
	} else if speed < 0 {
		invalid("negative speed %v", speed)
	}
	if c.Simulation.AnimationDuration < 0 {
		invalid("negative animationDuration %s", c.Simulation.AnimationDuration)
	}
	if c.Simulation.EventGap < 0 {
		invalid("negative eventGap %s", c.Simulation.EventGap)
	}
	if name := c.Simulation.Scenario; name != "" {
		if _, err := scenario.ParseKind(name); err != nil {
			invalid("%s", err)
		}
	}

	names := map[string]bool{}
	owners := map[string]string{}
	for idx, dev := range c.Devices {
		if dev.Name == "" {
			invalid("device #%d has no name", idx)
		} else if names[dev.Name] {
			invalid("duplicate device %q", dev.Name)
		}
		names[dev.Name] = true
		kind, err := topology.ParseDeviceKind(dev.Kind)
		if err != nil {
			invalid("device %q: %s", dev.Name, err)
			continue
		}
		if dev.IP == "" {
			continue
		}
		if !kind.HasIP() {
			invalid("device %q: a %s has no IP address", dev.Name, kind)
			continue
		}
		addr, err := netipx.ParseIPv4(dev.IP)
		if err != nil {
			invalid("device %q: %s", dev.Name, err)
			continue
		}
		if owner, found := owners[addr.String()]; found {
			invalid("device %q: IP %s already assigned to %q", dev.Name, addr, owner)
			continue
		}
		owners[addr.String()] = dev.Name
	}

	type pair struct{ a, b string }
	seen := map[pair]bool{}
	for _, link := range c.Links {
		for _, name := range []string{link.From, link.To} {
			if !names[name] {
				invalid("link %s-%s: unknown device %q", link.From, link.To, name)
			}
		}
		if link.From == link.To {
			invalid("link %s-%s: self loop", link.From, link.To)
			continue
		}
		if seen[pair{link.From, link.To}] || seen[pair{link.To, link.From}] {
			invalid("link %s-%s: duplicate link", link.From, link.To)
		}
		seen[pair{link.From, link.To}] = true
	}

	return errors.Join(errv...)
}

// Build validates the lab and creates the corresponding topology
// using alloc for identifiers and addresses.
func (c *Config) Build(alloc *topology.Allocator) (*topology.Graph, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	g := topology.NewGraph()
	for _, dev := range c.Devices {
		if dev.IP != "" {
			alloc.Reserve(canonicalIP(dev.IP))
		}
	}
	byName := make(map[string]*topology.Node, len(c.Devices))
	for _, dev := range c.Devices {
		kind := topology.MustParseDeviceKind(dev.Kind)
		var node *topology.Node
		if dev.IP != "" {
			node = alloc.NewNodeWithIP(kind, dev.X, dev.Y, canonicalIP(dev.IP))
		} else {
			node = alloc.NewNode(kind, dev.X, dev.Y)
		}
		node.Label = dev.Name
		g.AddNode(node)
		byName[dev.Name] = node
	}
	for _, link := range c.Links {
		edge, err := g.AddEdge(alloc.IDs, byName[link.From].ID, byName[link.To].ID)
		if err != nil {
			return nil, err
		}
		if link.Down {
			edge.Status = topology.EdgeDown
		}
	}
	return g, nil
}

// canonicalIP returns the canonical form of an already validated address.
func canonicalIP(ip string) string {
	return runtimex.Try1(netipx.ParseIPv4(ip)).String()
}

// Configure applies the simulation settings to sched.
func (c *Config) Configure(sched *scheduler.Scheduler) error {
	sched.AnimationDuration = c.Simulation.AnimationDuration
	sched.EventGap = c.Simulation.EventGap
	if c.Simulation.Speed > 0 {
		return sched.SetSpeed(c.Simulation.Speed)
	}
	return nil
}
