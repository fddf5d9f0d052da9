// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics exports the scheduler activity as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rbmk-project/protosim/packet"
	"github.com/rbmk-project/protosim/scheduler"
)

// Recorder is a [scheduler.Observer] updating Prometheus metrics.
//
// Construct using [NewRecorder].
type Recorder struct {
	events      *prometheus.CounterVec
	started     prometheus.Counter
	arrived     prometheus.Counter
	hopDuration prometheus.Histogram
	transitions *prometheus.CounterVec
	state       *prometheus.GaugeVec
}

var _ scheduler.Observer = &Recorder{}

// NewRecorder creates a [*Recorder] and registers its metrics with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "protosim_events_processed_total",
			Help: "Total number of simulation events processed, by protocol",
		}, []string{"protocol"}),
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "protosim_animations_started_total",
			Help: "Total number of packet hops put in flight",
		}),
		arrived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "protosim_animations_completed_total",
			Help: "Total number of packet hops that reached their destination",
		}),
		hopDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "protosim_animation_duration_seconds",
			Help:    "Configured duration of completed packet hops",
			Buckets: []float64{0.1, 0.3, 0.6, 1.2, 2.4, 4.8},
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "protosim_state_transitions_total",
			Help: "Total number of scheduler state transitions, by target state",
		}, []string{"to"}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "protosim_state",
			Help: "One for the current scheduler state, zero otherwise",
		}, []string{"state"}),
	}
	reg.MustRegister(r.events, r.started, r.arrived, r.hopDuration, r.transitions, r.state)
	for _, st := range []scheduler.State{scheduler.Idle, scheduler.Running, scheduler.Paused, scheduler.Stepping} {
		r.state.WithLabelValues(st.String()).Set(0)
	}
	r.state.WithLabelValues(scheduler.Idle.String()).Set(1)
	return r
}

// ObserveEvent implements [scheduler.Observer].
func (r *Recorder) ObserveEvent(ev *packet.Event, animations int) {
	r.events.WithLabelValues(ev.Type.String()).Inc()
	r.started.Add(float64(animations))
}

// ObserveAnimation implements [scheduler.Observer].
func (r *Recorder) ObserveAnimation(ap *scheduler.AnimatedPacket) {
	r.arrived.Inc()
	r.hopDuration.Observe(ap.Duration.Seconds())
}

// ObserveState implements [scheduler.Observer].
func (r *Recorder) ObserveState(from, to scheduler.State) {
	r.transitions.WithLabelValues(to.String()).Inc()
	r.state.WithLabelValues(from.String()).Set(0)
	r.state.WithLabelValues(to.String()).Set(1)
}
