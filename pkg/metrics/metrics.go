// Copyright 2025 The axfor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pollstore"

// Metrics holds all Prometheus metrics of the poll server. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	// Protocol request metrics
	RequestDuration *prometheus.HistogramVec
	RequestTotal    *prometheus.CounterVec
	RequestInFlight prometheus.Gauge

	// Connection metrics
	ActiveConnections prometheus.Gauge
	TotalConnections  prometheus.Counter
	RateLimitWaits    prometheus.Counter

	// Store metrics
	Items              *prometheus.GaugeVec
	ResponsesRecorded  *prometheus.CounterVec
	PersistenceErrors  *prometheus.CounterVec
	PersistenceLatency *prometheus.HistogramVec

	PanicsRecovered *prometheus.CounterVec
}

// New creates and registers all metrics on registry.
func New(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)
	return &Metrics{
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "protocol",
				Name:      "request_duration_seconds",
				Help:      "Histogram of request handling latencies",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"command", "result"},
		),
		RequestTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "protocol",
				Name:      "requests_total",
				Help:      "Total number of requests by command and result",
			},
			[]string{"command", "result"},
		),
		RequestInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "protocol",
				Name:      "requests_in_flight",
				Help:      "Current number of requests being handled",
			},
		),

		ActiveConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "server",
				Name:      "active_connections",
				Help:      "Current number of open client connections",
			},
		),
		TotalConnections: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "server",
				Name:      "connections_total",
				Help:      "Total number of connections accepted",
			},
		),
		RateLimitWaits: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "server",
				Name:      "rate_limit_waits_total",
				Help:      "Total number of requests delayed by the per-connection rate limiter",
			},
		),

		Items: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "items",
				Help:      "Number of items held in memory",
			},
			[]string{"kind"},
		),
		ResponsesRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "responses_recorded_total",
				Help:      "Total number of responses recorded",
			},
			[]string{"kind"},
		),
		PersistenceErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "persistence_errors_total",
				Help:      "Total number of failed record writes",
			},
			[]string{"kind"},
		),
		PersistenceLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "persistence_duration_seconds",
				Help:      "Histogram of record write latencies",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"kind"},
		),

		PanicsRecovered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "server",
				Name:      "panics_recovered_total",
				Help:      "Total number of panics recovered",
			},
			[]string{"goroutine"},
		),
	}
}

// RecordRequest records a handled request.
func (m *Metrics) RecordRequest(command, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(command, result).Observe(duration.Seconds())
	m.RequestTotal.WithLabelValues(command, result).Inc()
}

// ConnectionOpened records an accepted connection.
func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.TotalConnections.Inc()
	m.ActiveConnections.Inc()
}

// ConnectionClosed records a released connection.
func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.ActiveConnections.Dec()
}

// RecordRateLimitWait records a request that had to wait for a token.
func (m *Metrics) RecordRateLimitWait() {
	if m == nil {
		return
	}
	m.RateLimitWaits.Inc()
}

// SetItems sets the item gauge of a kind.
func (m *Metrics) SetItems(kind string, n int) {
	if m == nil {
		return
	}
	m.Items.WithLabelValues(kind).Set(float64(n))
}

// RecordResponse records an accepted response to an item.
func (m *Metrics) RecordResponse(kind string) {
	if m == nil {
		return
	}
	m.ResponsesRecorded.WithLabelValues(kind).Inc()
}

// RecordPersistence records a record write and whether it failed.
func (m *Metrics) RecordPersistence(kind string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.PersistenceLatency.WithLabelValues(kind).Observe(duration.Seconds())
	if err != nil {
		m.PersistenceErrors.WithLabelValues(kind).Inc()
	}
}

// RecordPanicRecovered records a recovered panic.
func (m *Metrics) RecordPanicRecovered(goroutine string) {
	if m == nil {
		return
	}
	m.PanicsRecovered.WithLabelValues(goroutine).Inc()
}
