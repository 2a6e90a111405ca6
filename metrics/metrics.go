// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics registers the Prometheus collectors an operator of
// this module would scrape in production: certificate-type counts,
// finalization latency, dropped-message counts, and active-partition
// gauges. Grounded directly on this codebase's per-component metrics
// constructor shape (protocol/nova/metrics.go's newMetrics): a struct
// of prometheus.Collector fields built once and registered against a
// caller-supplied prometheus.Registerer, returning an error on the
// first failed registration. The core never requires this package —
// every constructor that accepts an events.Sink works identically
// with events.NoopSink{} — so metrics stay an optional, external
// collaborator per spec.md Non-goals for "metric exporters".
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/alpenglow/events"
	"github.com/luxfi/alpenglow/idx"
)

// Collector implements events.Sink, translating the protocol's event
// stream into Prometheus observations, plus a couple of counters/
// gauges the event stream alone can't drive (dropped messages,
// bandwidth in use), exposed as plain methods callers invoke directly.
type Collector struct {
	certificatesByType *prometheus.CounterVec
	finalizationLatency *prometheus.HistogramVec
	viewAdvances       prometheus.Counter
	activePartitions   prometheus.Gauge
	droppedMessages    prometheus.Counter
	bandwidthInUse     prometheus.Gauge
}

// NewCollector builds and registers every collector against
// registerer, returning on the first registration failure (mirroring
// the teacher's newMetrics error-propagation style).
func NewCollector(registerer prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		certificatesByType: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "alpenglow_certificates_total",
			Help: "Number of certificates by type: fast and slow when they finalize a block, skip when generated",
		}, []string{"type"}),
		finalizationLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "alpenglow_finalization_latency_ticks",
			Help:    "Finalization latency in clock ticks, by certificate type",
			Buckets: prometheus.DefBuckets,
		}, []string{"type"}),
		viewAdvances: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alpenglow_view_advances_total",
			Help: "Number of view advances across all validators",
		}),
		activePartitions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "alpenglow_active_partitions",
			Help: "Number of currently active network partitions",
		}),
		droppedMessages: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alpenglow_dropped_messages_total",
			Help: "Number of messages dropped before delivery",
		}),
		bandwidthInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "alpenglow_bandwidth_shreds_in_use",
			Help: "Shreds relayed so far against the configured bandwidth limit",
		}),
	}

	collectors := []prometheus.Collector{
		c.certificatesByType,
		c.finalizationLatency,
		c.viewAdvances,
		c.activePartitions,
		c.droppedMessages,
		c.bandwidthInUse,
	}
	for _, col := range collectors {
		if err := registerer.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Emit implements events.Sink, updating the collectors driven
// directly by the protocol's event stream.
func (c *Collector) Emit(e events.Event) {
	switch e.Kind {
	case events.BlockFinalized:
		if e.Certificate == nil || e.Block == nil {
			return
		}
		c.certificatesByType.WithLabelValues(e.Certificate.CertType.String()).Inc()
		if e.Timestamp >= e.Block.Timestamp {
			latency := e.Timestamp - e.Block.Timestamp
			c.finalizationLatency.WithLabelValues(e.Certificate.CertType.String()).Observe(float64(latency))
		}
	case events.CertificateGenerated:
		if e.Certificate != nil && e.Certificate.CertType.String() == "skip" {
			c.certificatesByType.WithLabelValues("skip").Inc()
		}
	case events.ViewAdvanced:
		c.viewAdvances.Inc()
	case events.NetworkPartitionChanged:
		if e.Created {
			c.activePartitions.Inc()
		} else {
			c.activePartitions.Dec()
		}
	}
}

// IncDroppedMessages records one more dropped message (spec.md §3
// "dropped-message counter"). Called directly by callers of
// network.Network.DropMessage, since a drop is not itself one of the
// five Event variants.
func (c *Collector) IncDroppedMessages() {
	c.droppedMessages.Inc()
}

// SetBandwidthInUse records the current total shreds relayed across
// every validator's Rotor store (spec.md §3 RotorState
// "bandwidth_usage counter").
func (c *Collector) SetBandwidthInUse(total int) {
	c.bandwidthInUse.Set(float64(total))
}

// TotalBandwidthUsage sums a single validator's per-relay bandwidth
// usage map, a small helper for callers wiring SetBandwidthInUse from
// rotor.Store.BandwidthUsageByRelay.
func TotalBandwidthUsage(usage map[idx.ValidatorID]int) int {
	var total int
	for _, n := range usage {
		total += n
	}
	return total
}
