package resource

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_SamplesAndStops(t *testing.T) {
	m := NewMonitor(MonitorConfig{
		Interval: 10 * time.Millisecond,
		ReadSample: func() (Sample, error) {
			return Sample{RSSBytes: 64 * 1024 * 1024}, nil
		},
	})

	m.Start()
	assert.InDelta(t, 64.0, m.MemoryMB(), 0.01, "first reading primed at Start")

	stopStart := time.Now()
	m.Stop()
	assert.Less(t, time.Since(stopStart), 100*time.Millisecond,
		"stop must be observed within one interval")
}

func TestMonitor_ReclaimsOverLimit(t *testing.T) {
	m := NewMonitor(MonitorConfig{
		Interval:    5 * time.Millisecond,
		MaxMemoryMB: 10,
		ReadSample: func() (Sample, error) {
			return Sample{RSSBytes: 100 * 1024 * 1024}, nil // 100MB, over limit
		},
	})

	m.Start()
	defer m.Stop()

	require.Eventually(t, func() bool {
		return m.Reclaims() > 0
	}, time.Second, 5*time.Millisecond, "monitor should force a reclamation pass")
}

func TestMonitor_SamplingErrorsSwallowed(t *testing.T) {
	m := NewMonitor(MonitorConfig{
		Interval: 5 * time.Millisecond,
		ReadSample: func() (Sample, error) {
			return Sample{}, errors.New("boom")
		},
	})

	m.Start()
	time.Sleep(30 * time.Millisecond)
	m.Stop() // loop must still be alive to observe the stop

	assert.Equal(t, 0.0, m.MemoryMB())
}

func TestMonitor_CPUPercent(t *testing.T) {
	cpu := time.Duration(0)
	m := NewMonitor(MonitorConfig{
		Interval: 10 * time.Millisecond,
		ReadSample: func() (Sample, error) {
			cpu += 5 * time.Millisecond // ~50% of a 10ms interval
			return Sample{RSSBytes: 1, CPUTime: cpu}, nil
		},
	})

	m.Start()
	defer m.Stop()

	require.Eventually(t, func() bool {
		return m.CPUPercent() > 0
	}, time.Second, 5*time.Millisecond)
	assert.Less(t, m.CPUPercent(), 100.0)
}

func TestMonitor_ForceReclaimWithoutStart(t *testing.T) {
	m := NewMonitor(MonitorConfig{Interval: time.Hour})
	m.ForceReclaim()
	assert.Equal(t, int64(1), m.Reclaims())
	m.Stop() // safe on a never-started monitor
}

func TestReadSample(t *testing.T) {
	s, err := ReadSample()
	require.NoError(t, err)
	assert.Greater(t, s.RSSBytes, int64(0))
	assert.Greater(t, s.RSSMB(), 0.0)
}
