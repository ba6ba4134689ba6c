// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Kestrel Aerospace

// Package observability bundles the ground station's Prometheus
// metrics.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles Prometheus metrics for the link, dispatcher, and
// operator gateway. A nil *Collector is valid and records nothing, so
// callers never need to branch on whether metrics are enabled.
type Collector struct {
	gatherer prometheus.Gatherer

	FramesTotal      *prometheus.CounterVec
	FramingErrors    prometheus.Counter
	PacketsSent      *prometheus.CounterVec
	UnknownResponses prometheus.Counter
	CommandsTotal    *prometheus.CounterVec
	PendingRequests  prometheus.Gauge
	OperatorSessions prometheus.Gauge
}

// NewCollector registers ground-station metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	frames := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "groundlink_frames_total",
		Help: "Frames extracted from the satellite link, labeled by kind (text, binary).",
	}, []string{"kind"})
	if err := reg.Register(frames); err != nil {
		return nil, err
	}

	framingErrors := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "groundlink_framing_errors_total",
		Help: "Frames dropped by the reader (oversize).",
	})
	if err := reg.Register(framingErrors); err != nil {
		return nil, err
	}

	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "groundlink_packets_sent_total",
		Help: "Packets encoded and written to the link, labeled by response type.",
	}, []string{"type"})
	if err := reg.Register(sent); err != nil {
		return nil, err
	}

	unknown := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "groundlink_unknown_responses_total",
		Help: "Inbound packets with a response type outside the registry.",
	})
	if err := reg.Register(unknown); err != nil {
		return nil, err
	}

	commands := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "groundlink_commands_total",
		Help: "Operator text commands handled, labeled by command word.",
	}, []string{"command"})
	if err := reg.Register(commands); err != nil {
		return nil, err
	}

	pending := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "groundlink_pending_requests",
		Help: "Outstanding correlation IDs awaiting a terminal reply.",
	})
	if err := reg.Register(pending); err != nil {
		return nil, err
	}

	sessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "groundlink_operator_sessions",
		Help: "Currently connected operator sessions.",
	})
	if err := reg.Register(sessions); err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:         gatherer,
		FramesTotal:      frames,
		FramingErrors:    framingErrors,
		PacketsSent:      sent,
		UnknownResponses: unknown,
		CommandsTotal:    commands,
		PendingRequests:  pending,
		OperatorSessions: sessions,
	}, nil
}

// Handler returns an HTTP handler exposing the registered metrics.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// ObserveFrame counts one extracted frame.
func (c *Collector) ObserveFrame(kind string) {
	if c == nil {
		return
	}
	c.FramesTotal.WithLabelValues(kind).Inc()
}

// ObserveFramingError counts one dropped frame.
func (c *Collector) ObserveFramingError() {
	if c == nil {
		return
	}
	c.FramingErrors.Inc()
}

// ObservePacketSent counts one outbound packet.
func (c *Collector) ObservePacketSent(packetType string) {
	if c == nil {
		return
	}
	c.PacketsSent.WithLabelValues(packetType).Inc()
}

// ObserveUnknownResponse counts one unclassifiable inbound packet.
func (c *Collector) ObserveUnknownResponse() {
	if c == nil {
		return
	}
	c.UnknownResponses.Inc()
}

// ObserveCommand counts one operator command.
func (c *Collector) ObserveCommand(command string) {
	if c == nil {
		return
	}
	c.CommandsTotal.WithLabelValues(command).Inc()
}

// SetPendingRequests tracks the correlator's outstanding entries.
func (c *Collector) SetPendingRequests(n int) {
	if c == nil {
		return
	}
	c.PendingRequests.Set(float64(n))
}

// SetOperatorSessions tracks the gateway's active session count.
func (c *Collector) SetOperatorSessions(n int) {
	if c == nil {
		return
	}
	c.OperatorSessions.Set(float64(n))
}
