// Package observability exposes the relay's prometheus metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_relay_active_sessions",
			Help: "Sessions currently attached to a room",
		},
	)

	ActiveRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_relay_active_rooms",
			Help: "Rooms with at least one live subscriber",
		},
	)

	BroadcastsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_relay_broadcasts_total",
			Help: "Events re-broadcast to room subscribers",
		},
	)

	FanoutDrops = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_relay_fanout_drops_total",
			Help: "Payloads dropped for lagging subscribers",
		},
	)

	MalformedFrames = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_relay_malformed_frames_total",
			Help: "Inbound frames that failed to decode",
		},
	)

	LogAppends = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_relay_log_appends_total",
			Help: "Durable event log appends",
		},
		[]string{"partition"},
	)

	LogAppendFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_relay_log_append_failures_total",
			Help: "Durable event log appends that failed",
		},
		[]string{"partition"},
	)

	WorkerDispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_relay_worker_dispatches_total",
			Help: "Events dispatched to the message store",
		},
		[]string{"partition"},
	)

	WorkerDispatchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_relay_worker_dispatch_failures_total",
			Help: "Message store operations that failed",
		},
		[]string{"partition"},
	)

	WorkerTicksSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_relay_worker_ticks_skipped_total",
			Help: "Drain ticks skipped after a log read failure",
		},
		[]string{"partition"},
	)

	ProcessMemoryBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_relay_process_memory_bytes",
			Help: "Resident memory of the relay process",
		},
	)

	ProcessCPUPercent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_relay_process_cpu_percent",
			Help: "CPU usage of the relay process",
		},
	)
)
