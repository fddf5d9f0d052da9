// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/rbmk-project/protosim/topofile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunDefaultLab(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(options{}, discard(), &out))

	text := out.String()
	assert.Contains(t, text, "[t=0] [ARP] Host1 broadcasts: Who has 192.168.1.3? Tell 192.168.1.2")
	assert.Contains(t, text, "[t=5] [ICMP] Host2 → Host1: Echo Reply (pong)")
	assert.Contains(t, text, "Host1        tcp=- arp[192.168.1.3]=AA:BB:CC:00:00:02")
}

func TestRunScenarios(t *testing.T) {
	cases := map[string]string{
		"http-request": "[HTTP] Web → Host1: 200 OK",
		"dns-lookup":   `[DNS] DNS → Host1: Response "www.example.com → 192.168.1.5 (TTL 3600)"`,
		"tcp-close":    "[TCP] Web → Host1: FIN (connection closed)",
	}
	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, run(options{scenario: name, speed: 4}, discard(), &out))
			assert.Contains(t, out.String(), want)
		})
	}
}

func TestRunErrors(t *testing.T) {
	cases := map[string]options{
		"both sources":     {configPath: "a.yaml", loadPath: "b.json"},
		"unknown scenario": {scenario: "traceroute"},
		"bad speed":        {speed: -1},
		"missing config":   {configPath: filepath.Join(t.TempDir(), "missing.yaml")},
		"missing topology": {loadPath: filepath.Join(t.TempDir(), "missing.json")},
	}
	for name, opts := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, run(opts, discard(), io.Discard))
		})
	}
}

func TestNewLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "protosim.log")
	logger := newLogger(options{logFile: path, verbose: true})
	require.NoError(t, run(options{}, logger, io.Discard))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "msg=eventStart")
	assert.Contains(t, string(data), "msg=stateChange")
}

func TestRunSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "topology.json")
	require.NoError(t, run(options{savePath: path}, discard(), io.Discard))

	saved, err := (&topofile.Store{Path: path}).Load()
	require.NoError(t, err)
	assert.Len(t, saved.Nodes, 5)

	var out bytes.Buffer
	require.NoError(t, run(options{loadPath: path, scenario: "dns-lookup"}, discard(), &out))
	assert.Contains(t, out.String(), `[DNS] Host1 → DNS: Query "www.example.com"`)
}

func TestRunWritesMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "protosim.prom")
	require.NoError(t, run(options{metrics: path}, discard(), io.Discard))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `protosim_events_processed_total{protocol="icmp-echo"} 1`)
	assert.Contains(t, text, `protosim_state{state="idle"} 1`)
	assert.Contains(t, text, "# TYPE protosim_animation_duration_seconds histogram")
}
