// Package observability exposes the process metrics of the classroom server.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "classroom"

// Drop reasons for inbound events that produce no broadcast,
// and for outbound events a connection could not take.
const (
	ReasonUnauthorized     = "unauthorized"
	ReasonNotFound         = "entity_not_found"
	ReasonMalformed        = "malformed_input"
	ReasonRoomNotFound     = "room_not_found"
	ReasonSinkFull         = "sink_full"
	ReasonConnectionClosed = "connection_closed"
)

// Metrics gathers every collector of the server.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	eventsTotal       *prometheus.CounterVec
	droppedTotal      *prometheus.CounterVec
	broadcastMessages prometheus.Counter
	activeConnections prometheus.Gauge
	activeSessions    prometheus.Gauge
	rooms             prometheus.Gauge
	processCPU        prometheus.Gauge
	processRSS        prometheus.Gauge
}

func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Total number of inbound client events processed",
		}, []string{"event"}),

		droppedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Inbound events that produced no broadcast",
		}, []string{"reason"}),

		broadcastMessages: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcast_messages_total",
			Help:      "Outbound messages handed to connection sinks",
		}),

		activeConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_connections",
			Help:      "Number of open transport connections",
		}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of connections joined to a classroom",
		}),

		rooms: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms",
			Help:      "Number of classrooms created",
		}),

		processCPU: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_cpu_percent",
			Help:      "CPU usage of the server process",
		}),

		processRSS: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_rss_bytes",
			Help:      "Resident memory of the server process",
		}),
	}
}

func (m *Metrics) IncrEvent(name string) {
	if m == nil {
		return
	}
	m.eventsTotal.WithLabelValues(name).Inc()
}

func (m *Metrics) IncrDropped(reason string) {
	if m == nil {
		return
	}
	m.droppedTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) AddBroadcast(n int) {
	if m == nil {
		return
	}
	m.broadcastMessages.Add(float64(n))
}

func (m *Metrics) SetPresence(connections, sessions int) {
	if m == nil {
		return
	}
	m.activeConnections.Set(float64(connections))
	m.activeSessions.Set(float64(sessions))
}

func (m *Metrics) SetRooms(n int) {
	if m == nil {
		return
	}
	m.rooms.Set(float64(n))
}

func (m *Metrics) SetProcess(cpuPercent float64, rssBytes uint64) {
	if m == nil {
		return
	}
	m.processCPU.Set(cpuPercent)
	m.processRSS.Set(float64(rssBytes))
}
