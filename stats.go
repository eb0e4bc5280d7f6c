package ocrflow

import "sync/atomic"

// taskStats holds the process-wide counters. Each field is updated
// atomically; the accounting classes are mutually exclusive and exhaustive
// at the point of counting, so after all outcomes are collected
// Successful+Failed+TimedOut+MemoryRejected == Total.
type taskStats struct {
	total          atomic.Int64
	successful     atomic.Int64
	failed         atomic.Int64
	timedOut       atomic.Int64
	memoryRejected atomic.Int64
}

func (s *taskStats) record(out Outcome) {
	switch {
	case out.Success:
		s.successful.Add(1)
	case out.ErrorKind == KindTimeout:
		s.timedOut.Add(1)
	case out.ErrorKind == KindMemoryLimit:
		s.memoryRejected.Add(1)
	default:
		s.failed.Add(1)
	}
}

func (s *taskStats) reset() {
	s.total.Store(0)
	s.successful.Store(0)
	s.failed.Store(0)
	s.timedOut.Store(0)
	s.memoryRejected.Store(0)
}

func (s *taskStats) snapshot() TaskStats {
	return TaskStats{
		Total:          s.total.Load(),
		Successful:     s.successful.Load(),
		Failed:         s.failed.Load(),
		TimedOut:       s.timedOut.Load(),
		MemoryRejected: s.memoryRejected.Load(),
	}
}

// TaskStats is a snapshot of the task counters.
type TaskStats struct {
	Total          int64
	Successful     int64
	Failed         int64
	TimedOut       int64
	MemoryRejected int64
}

// StatsSnapshot is a read-only view of manager state.
type StatsSnapshot struct {
	// ActiveTasks is the number of tasks currently holding a slot.
	ActiveTasks int64

	// MaxConcurrentTasks is the configured admission limit.
	MaxConcurrentTasks int64

	// CurrentMemoryMB is the most recent process memory reading.
	CurrentMemoryMB float64

	// MaxMemoryMB is the configured memory ceiling.
	MaxMemoryMB int64

	// MemoryUsagePercent is CurrentMemoryMB relative to MaxMemoryMB.
	MemoryUsagePercent float64

	// CPUPercent is the CPU utilization estimated over the last monitor
	// interval. Zero when monitoring is disabled.
	CPUPercent float64

	// Tasks holds the task counters.
	Tasks TaskStats
}
