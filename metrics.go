package ocrflow

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives operational events from a Manager. Implement it
// to integrate with monitoring systems; see observability/prometheus for a
// ready-made exporter.
type MetricsCollector interface {
	// RecordTask is called after every task outcome. kind is KindNone for
	// successes.
	RecordTask(kind ErrorKind, duration time.Duration)

	// RecordBatch is called after each batch completes. requested is the
	// caller's item count before truncation.
	RecordBatch(requested, executed, failed int, duration time.Duration)

	// RecordTruncation is called when a batch is cut down to the
	// configured maximum; dropped is the number of items discarded.
	RecordTruncation(dropped int)

	// RecordFallback is called when a task succeeded on a non-primary
	// provider.
	RecordFallback(engine, original string)

	// RecordMemoryReclaim is called after a forced reclamation pass.
	RecordMemoryReclaim()
}

// NoopMetricsCollector discards all events.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordTask(ErrorKind, time.Duration)      {}
func (NoopMetricsCollector) RecordBatch(int, int, int, time.Duration) {}
func (NoopMetricsCollector) RecordTruncation(int)                     {}
func (NoopMetricsCollector) RecordFallback(string, string)            {}
func (NoopMetricsCollector) RecordMemoryReclaim()                     {}

// BasicMetricsCollector provides simple in-memory metrics collection,
// useful for debugging without external dependencies.
type BasicMetricsCollector struct {
	TaskCount      atomic.Int64
	TaskErrors     atomic.Int64
	TaskTotalNanos atomic.Int64
	BatchCount     atomic.Int64
	BatchItems     atomic.Int64
	BatchFailed    atomic.Int64
	TruncatedItems atomic.Int64
	FallbackCount  atomic.Int64
	MemoryReclaims atomic.Int64
}

// RecordTask implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTask(kind ErrorKind, duration time.Duration) {
	b.TaskCount.Add(1)
	b.TaskTotalNanos.Add(duration.Nanoseconds())
	if kind != KindNone {
		b.TaskErrors.Add(1)
	}
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(requested, executed, failed int, duration time.Duration) {
	b.BatchCount.Add(1)
	b.BatchItems.Add(int64(executed))
	b.BatchFailed.Add(int64(failed))
}

// RecordTruncation implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTruncation(dropped int) {
	b.TruncatedItems.Add(int64(dropped))
}

// RecordFallback implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFallback(engine, original string) {
	b.FallbackCount.Add(1)
}

// RecordMemoryReclaim implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMemoryReclaim() {
	b.MemoryReclaims.Add(1)
}

// AvgTaskNanos returns the mean task duration in nanoseconds.
func (b *BasicMetricsCollector) AvgTaskNanos() int64 {
	count := b.TaskCount.Load()
	if count == 0 {
		return 0
	}
	return b.TaskTotalNanos.Load() / count
}
