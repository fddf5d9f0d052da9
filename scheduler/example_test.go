// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler_test

import (
	"fmt"
	"log"
	"time"

	"github.com/rbmk-project/protosim/idgen"
	"github.com/rbmk-project/protosim/scenario"
	"github.com/rbmk-project/protosim/scheduler"
	"github.com/rbmk-project/protosim/topology"
)

// This example shows how to run a ping between two hosts
// without waiting for the animations in real time.
func Example_ping() {
	// Create the topology.
	ids := idgen.NewSequence("id")
	alloc := topology.NewAllocator(ids)
	g := topology.NewGraph()
	client := alloc.NewNode(topology.KindHost, 100, 100)
	server := alloc.NewNode(topology.KindHost, 300, 100)
	g.AddNode(client)
	g.AddNode(server)
	if _, err := g.AddEdge(ids, client.ID, server.ID); err != nil {
		log.Fatal(err)
	}

	// Create a scheduler driven by a manual clock.
	clock := scheduler.NewManualClock(time.Now())
	sched := scheduler.New(g)
	sched.Clock = clock
	sched.IDs = ids

	// Seed the queue and run until idle.
	sched.Enqueue(scenario.NewPing(ids, client, server)...)
	sched.Start()
	if err := sched.Drain(clock, 50*time.Millisecond, 10000); err != nil {
		log.Fatal(err)
	}

	for _, entry := range sched.Logs() {
		fmt.Println(entry)
	}
	fmt.Println(sched.State(), client.ARPTable)

	// Output:
	// [t=0] [ARP] Host1 broadcasts: Who has 192.168.1.3? Tell 192.168.1.2
	// [t=1] [ARP] Host2 replies to Host1: 192.168.1.3 is at AA:BB:CC:00:00:02
	// [t=3] [ICMP] Host1 → Host2: Echo Request (ping)
	// [t=5] [ICMP] Host2 → Host1: Echo Reply (pong)
	// idle map[192.168.1.3:AA:BB:CC:00:00:02]
}
