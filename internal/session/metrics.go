package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricStateTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "podium_session_state_transitions_total",
		Help: "Session lifecycle transitions",
	}, []string{"from", "to"})

	metricEventsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "podium_transport_events_processed_total",
		Help: "Transport events processed while a session was active",
	})

	metricDroppedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "podium_transport_events_dropped_total",
		Help: "Transport events dropped because the session was not active",
	})

	metricStaleEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "podium_transport_events_stale_total",
		Help: "Lifecycle events discarded as stale (e.g. call-start after stop)",
	})

	metricSpeakerChanges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "podium_speaker_changes_total",
		Help: "Committed current-speaker changes",
	})

	metricAutoPasses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "podium_idle_auto_passes_total",
		Help: "Floor auto-passes after the idle window expired",
	})

	metricPhaseAdvances = promauto.NewCounter(prometheus.CounterOpts{
		Name: "podium_phase_advances_total",
		Help: "Agenda phase advances",
	})
)
