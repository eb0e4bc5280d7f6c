package prometheus

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ocrflow "github.com/ChinaCraig/DocManage-sub000"
)

type staticProvider struct {
	snapshot ocrflow.StatsSnapshot
}

func (s staticProvider) Snapshot() ocrflow.StatsSnapshot { return s.snapshot }

func TestSnapshotPoller_ExportsGauges(t *testing.T) {
	reg := prom.NewRegistry()
	p, err := NewSnapshotPoller(reg, 5*time.Millisecond)
	require.NoError(t, err)

	p.RegisterManager("docs", staticProvider{snapshot: ocrflow.StatsSnapshot{
		ActiveTasks:        2,
		MaxConcurrentTasks: 4,
		CurrentMemoryMB:    512,
		MaxMemoryMB:        2048,
		MemoryUsagePercent: 25,
		CPUPercent:         12.5,
		Tasks: ocrflow.TaskStats{
			Total:          100,
			TimedOut:       3,
			MemoryRejected: 1,
		},
	}})

	p.Start()
	defer p.Stop()

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(p.tasksTotal.WithLabelValues("docs")) == 100
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.activeTasks.WithLabelValues("docs")))
	assert.Equal(t, 4.0, testutil.ToFloat64(p.maxTasks.WithLabelValues("docs")))
	assert.Equal(t, 512.0, testutil.ToFloat64(p.memoryMB.WithLabelValues("docs")))
	assert.Equal(t, 2048.0, testutil.ToFloat64(p.memoryLimitMB.WithLabelValues("docs")))
	assert.Equal(t, 25.0, testutil.ToFloat64(p.memoryPercent.WithLabelValues("docs")))
	assert.Equal(t, 12.5, testutil.ToFloat64(p.cpuPercent.WithLabelValues("docs")))
	assert.Equal(t, 3.0, testutil.ToFloat64(p.tasksTimedOut.WithLabelValues("docs")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.tasksMemReject.WithLabelValues("docs")))
}

func TestSnapshotPoller_UnregisterStopsUpdates(t *testing.T) {
	reg := prom.NewRegistry()
	p, err := NewSnapshotPoller(reg, 5*time.Millisecond)
	require.NoError(t, err)

	p.RegisterManager("m", staticProvider{snapshot: ocrflow.StatsSnapshot{ActiveTasks: 1}})
	p.Start()
	defer p.Stop()

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(p.activeTasks.WithLabelValues("m")) == 1
	}, time.Second, 5*time.Millisecond)

	p.UnregisterManager("m")
	p.RegisterManager("m2", staticProvider{snapshot: ocrflow.StatsSnapshot{ActiveTasks: 7}})

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(p.activeTasks.WithLabelValues("m2")) == 7
	}, time.Second, 5*time.Millisecond)

	// The stale series keeps its last value but is no longer driven.
	assert.Equal(t, 1.0, testutil.ToFloat64(p.activeTasks.WithLabelValues("m")))
}

func TestSnapshotPoller_StartStopIdempotent(t *testing.T) {
	reg := prom.NewRegistry()
	p, err := NewSnapshotPoller(reg, time.Millisecond)
	require.NoError(t, err)

	p.Start()
	p.Start()
	p.Stop()
	p.Stop()

	// Restart after a stop works.
	p.Start()
	p.Stop()
}

func TestSnapshotPoller_DefaultInterval(t *testing.T) {
	p, err := NewSnapshotPoller(prom.NewRegistry(), 0)
	require.NoError(t, err)
	assert.Equal(t, time.Second, p.interval)
}
