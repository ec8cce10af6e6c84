package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_RunLifecycle(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RunStarted()
	m.RunStarted()
	assert.InDelta(t, 2, testutil.ToFloat64(m.runsInFlight), 0)

	m.RunFinished("completed", 10*time.Millisecond)
	assert.InDelta(t, 1, testutil.ToFloat64(m.runsInFlight), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.runsTotal.WithLabelValues("completed")), 0)

	m.SnapshotWritten(100, 40)
	assert.InDelta(t, 100, testutil.ToFloat64(m.snapshotBytes.WithLabelValues("original")), 0)
	assert.InDelta(t, 40, testutil.ToFloat64(m.snapshotBytes.WithLabelValues("stored")), 0)

	m.SnapshotsDeleted(3)
	assert.InDelta(t, 3, testutil.ToFloat64(m.cleanupDeleted), 0)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RunStarted()
		m.RunFinished("failed", time.Second)
		m.NodeFinished("http", "completed", time.Second)
		m.SnapshotWritten(1, 1)
		m.SnapshotsDeleted(1)
		m.PublishFailed("execution.started")
	})
}
