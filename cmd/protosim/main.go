// SPDX-License-Identifier: GPL-3.0-or-later

// Command protosim runs a protocol scenario over a simulated topology
// and prints the resulting log along with the final ARP and TCP state.
//
// Usage:
//
//	protosim [-config lab.yaml | -load topology.json] [-scenario name]
//	         [-speed N] [-realtime] [-save topology.json] [-v] [-logfile file]
//	         [-metrics file.prom]
//
// Without -config and -load, protosim uses a built-in lab consisting
// of two hosts, a DNS server, and a web server attached to a switch.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rbmk-project/protosim/config"
	"github.com/rbmk-project/protosim/idgen"
	"github.com/rbmk-project/protosim/metrics"
	"github.com/rbmk-project/protosim/scenario"
	"github.com/rbmk-project/protosim/scheduler"
	"github.com/rbmk-project/protosim/topofile"
	"github.com/rbmk-project/protosim/topology"
	"gopkg.in/natefinch/lumberjack.v2"
)

// defaultLab is the lab used when none is given.
const defaultLab = `
simulation:
  scenario: ping
devices:
  - {name: Host1, kind: host, x: 100, y: 100}
  - {name: Host2, kind: host, x: 100, y: 300}
  - {name: Switch, kind: switch, x: 300, y: 200}
  - {name: DNS, kind: dns-server, x: 500, y: 100}
  - {name: Web, kind: web-server, x: 500, y: 300}
links:
  - {from: Host1, to: Host2}
  - {from: Host1, to: Switch}
  - {from: Host2, to: Switch}
  - {from: Host1, to: DNS}
  - {from: Host1, to: Web}
`

const (
	// frameInterval is the frame interval of real-time runs.
	frameInterval = 16 * time.Millisecond

	// maxFrames bounds headless runs.
	maxFrames = 1 << 20
)

// options contains the command line options.
type options struct {
	configPath string
	loadPath   string
	savePath   string
	scenario   string
	speed      float64
	logFile    string
	metrics    string
	realtime   bool
	verbose    bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "read the lab from the given YAML `file`")
	flag.StringVar(&opts.loadPath, "load", "", "read the topology from the given saved JSON `file`")
	flag.StringVar(&opts.savePath, "save", "", "save the topology to the given JSON `file` when done")
	flag.StringVar(&opts.scenario, "scenario", "", "run the named scenario (ping, http-request, dns-lookup, tcp-close)")
	flag.Float64Var(&opts.speed, "speed", 0, "animation speed multiplier")
	flag.BoolVar(&opts.realtime, "realtime", false, "pace animations using the wall clock")
	flag.BoolVar(&opts.verbose, "v", false, "emit debug diagnostics")
	flag.StringVar(&opts.logFile, "logfile", "", "write diagnostics to the given rotated `file` instead of stderr")
	flag.StringVar(&opts.metrics, "metrics", "", "write Prometheus metrics in text format to the given `file` when done")
	flag.Parse()

	logger := newLogger(opts)
	if err := run(opts, logger, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "protosim: %s\n", err)
		os.Exit(1)
	}
}

// newLogger creates the diagnostics logger.
func newLogger(opts options) *slog.Logger {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	var w io.Writer = os.Stderr
	if opts.logFile != "" {
		w = &lumberjack.Logger{
			Filename:   opts.logFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
		}
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// run loads the topology, runs the scenario, and prints the outcome to w.
func run(opts options, logger *slog.Logger, w io.Writer) error {
	if opts.configPath != "" && opts.loadPath != "" {
		return errors.New("-config and -load are mutually exclusive")
	}

	ids := idgen.NewSequence("id")
	cfg, g, err := loadTopology(opts, ids, logger)
	if err != nil {
		return err
	}

	kindName := opts.scenario
	if kindName == "" {
		kindName = cfg.Simulation.Scenario
	}
	if kindName == "" {
		kindName = string(scenario.Ping)
	}
	kind, err := scenario.ParseKind(kindName)
	if err != nil {
		return err
	}
	events, err := scenario.Build(g, ids, kind)
	if err != nil {
		return err
	}

	sched := scheduler.New(g)
	sched.IDs = ids
	sched.Logger = logger
	reg := prometheus.NewRegistry()
	sched.Observer = metrics.NewRecorder(reg)
	if err := cfg.Configure(sched); err != nil {
		return err
	}
	if opts.speed != 0 {
		if err := sched.SetSpeed(opts.speed); err != nil {
			return err
		}
	}
	sched.Enqueue(events...)

	if err := drive(sched, opts.realtime); err != nil {
		return err
	}
	printOutcome(w, sched)

	if opts.metrics != "" {
		if err := prometheus.WriteToTextfile(opts.metrics, reg); err != nil {
			return err
		}
	}

	if opts.savePath != "" {
		store := &topofile.Store{Path: opts.savePath}
		if err := store.Save(g, time.Now()); err != nil {
			return err
		}
		logger.Info("topologySave", slog.String("path", opts.savePath))
	}
	return nil
}

// loadTopology returns the lab settings and the topology to simulate.
func loadTopology(opts options, ids idgen.Source, logger *slog.Logger) (*config.Config, *topology.Graph, error) {
	if opts.loadPath != "" {
		store := &topofile.Store{Path: opts.loadPath}
		summary, err := store.Peek()
		if err != nil {
			return nil, nil, err
		}
		logger.Info(
			"topologyLoad",
			slog.String("path", opts.loadPath),
			slog.Time("savedAt", summary.SavedAt),
			slog.Int("nodes", summary.Nodes),
			slog.Int("edges", summary.Edges),
		)
		saved, err := store.Load()
		if err != nil {
			return nil, nil, err
		}
		return &config.Config{}, saved.Graph(), nil
	}
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.Load(opts.configPath)
	} else {
		cfg, err = config.Parse([]byte(defaultLab))
	}
	if err != nil {
		return nil, nil, err
	}
	g, err := cfg.Build(topology.NewAllocator(ids))
	if err != nil {
		return nil, nil, err
	}
	return cfg, g, nil
}

// drive runs the simulation until it stops.
func drive(sched *scheduler.Scheduler, realtime bool) error {
	if realtime {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		ticker := time.NewTicker(frameInterval)
		defer ticker.Stop()
		sched.Start()
		return sched.Run(ctx, ticker.C)
	}
	clock := scheduler.NewManualClock(time.Now())
	sched.Clock = clock
	sched.Start()
	return sched.Drain(clock, frameInterval, maxFrames)
}

// printOutcome prints the log and the per-node protocol state.
func printOutcome(w io.Writer, sched *scheduler.Scheduler) {
	for _, entry := range sched.Logs() {
		fmt.Fprintln(w, entry)
	}
	fmt.Fprintln(w)
	for _, node := range sched.Graph().Nodes {
		state := string(node.TCPState)
		if state == "" {
			state = "-"
		}
		fmt.Fprintf(w, "%-12s tcp=%s", node.Label, state)
		ips := make([]string, 0, len(node.ARPTable))
		for ip := range node.ARPTable {
			ips = append(ips, ip)
		}
		sort.Strings(ips)
		for _, ip := range ips {
			fmt.Fprintf(w, " arp[%s]=%s", ip, node.ARPTable[ip])
		}
		fmt.Fprintln(w)
	}
}
