// Package metrics exposes Prometheus collectors for runs, nodes and snapshots.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	runsTotal       *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	runsInFlight    prometheus.Gauge
	nodeDuration    *prometheus.HistogramVec
	snapshotBytes   *prometheus.CounterVec
	cleanupDeleted  prometheus.Counter
	publishFailures *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowdeck_runs_total",
				Help: "Finished workflow runs by terminal status",
			},
			[]string{"status"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flowdeck_run_duration_seconds",
				Help:    "Wall time of workflow runs by terminal status",
				Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
			},
			[]string{"status"},
		),
		runsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "flowdeck_runs_in_flight",
			Help: "Workflow runs currently executing",
		}),
		nodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flowdeck_node_duration_seconds",
				Help:    "Node execution time by node type and outcome",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"node_type", "status"},
		),
		snapshotBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowdeck_snapshot_bytes_total",
				Help: "Bytes written by the snapshot store, before and after compression",
			},
			[]string{"kind"},
		),
		cleanupDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flowdeck_retention_deleted_total",
			Help: "Snapshots removed by retention cleanups",
		}),
		publishFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowdeck_event_publish_failures_total",
				Help: "Execution events that could not be published",
			},
			[]string{"event_type"},
		),
	}

	reg.MustRegister(
		m.runsTotal,
		m.runDuration,
		m.runsInFlight,
		m.nodeDuration,
		m.snapshotBytes,
		m.cleanupDeleted,
		m.publishFailures,
	)

	return m
}

func (m *Metrics) RunStarted() {
	if m == nil {
		return
	}

	m.runsInFlight.Inc()
}

func (m *Metrics) RunFinished(status string, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.runsInFlight.Dec()
	m.runsTotal.WithLabelValues(status).Inc()
	m.runDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}

func (m *Metrics) NodeFinished(nodeType, status string, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.nodeDuration.WithLabelValues(nodeType, status).Observe(elapsed.Seconds())
}

func (m *Metrics) SnapshotWritten(originalSize, storedSize int64) {
	if m == nil {
		return
	}

	m.snapshotBytes.WithLabelValues("original").Add(float64(originalSize))
	m.snapshotBytes.WithLabelValues("stored").Add(float64(storedSize))
}

func (m *Metrics) SnapshotsDeleted(count int) {
	if m == nil {
		return
	}

	m.cleanupDeleted.Add(float64(count))
}

func (m *Metrics) PublishFailed(eventType string) {
	if m == nil {
		return
	}

	m.publishFailures.WithLabelValues(eventType).Inc()
}
