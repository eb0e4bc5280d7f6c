// Package prometheus adapts ocrflow metrics to Prometheus collectors.
package prometheus

import (
	"errors"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	ocrflow "github.com/ChinaCraig/DocManage-sub000"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
}

// Exporter implements ocrflow.MetricsCollector on top of Prometheus
// collectors.
type Exporter struct {
	taskTotal           *prom.CounterVec
	taskDurationSeconds prom.Histogram
	batchItemsTotal     prom.Counter
	batchFailedTotal    prom.Counter
	truncatedTotal      prom.Counter
	fallbackTotal       *prom.CounterVec
	reclaimTotal        prom.Counter
}

var _ ocrflow.MetricsCollector = (*Exporter)(nil)

// NewExporter creates and registers Prometheus collectors for manager
// metrics. If reg is nil, the default registerer is used.
func NewExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*Exporter, error) {
	if namespace == "" {
		namespace = "ocrflow"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	taskTotal := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_total",
		Help:      "Total number of tasks by outcome kind.",
	}, []string{"kind"})
	taskDuration := prom.NewHistogram(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Task execution duration in seconds.",
		Buckets:   buckets,
	})
	batchItems := prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "batch_items_total",
		Help:      "Total number of batch items executed.",
	})
	batchFailed := prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "batch_failed_total",
		Help:      "Total number of failed batch items.",
	})
	truncated := prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "batch_truncated_items_total",
		Help:      "Total number of batch items dropped by truncation.",
	})
	fallback := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "engine_fallback_total",
		Help:      "Total number of tasks that succeeded on a non-primary engine.",
	}, []string{"engine", "original"})
	reclaim := prom.NewCounter(prom.CounterOpts{
		Namespace: namespace,
		Name:      "memory_reclaim_total",
		Help:      "Total number of forced memory reclamation passes.",
	})

	var err error
	if taskTotal, err = registerCollector(reg, taskTotal); err != nil {
		return nil, err
	}
	if taskDuration, err = registerCollector(reg, taskDuration); err != nil {
		return nil, err
	}
	if batchItems, err = registerCollector(reg, batchItems); err != nil {
		return nil, err
	}
	if batchFailed, err = registerCollector(reg, batchFailed); err != nil {
		return nil, err
	}
	if truncated, err = registerCollector(reg, truncated); err != nil {
		return nil, err
	}
	if fallback, err = registerCollector(reg, fallback); err != nil {
		return nil, err
	}
	if reclaim, err = registerCollector(reg, reclaim); err != nil {
		return nil, err
	}

	return &Exporter{
		taskTotal:           taskTotal,
		taskDurationSeconds: taskDuration,
		batchItemsTotal:     batchItems,
		batchFailedTotal:    batchFailed,
		truncatedTotal:      truncated,
		fallbackTotal:       fallback,
		reclaimTotal:        reclaim,
	}, nil
}

// RecordTask implements ocrflow.MetricsCollector.
func (e *Exporter) RecordTask(kind ocrflow.ErrorKind, duration time.Duration) {
	if e == nil {
		return
	}
	e.taskTotal.WithLabelValues(kind.String()).Inc()
	e.taskDurationSeconds.Observe(duration.Seconds())
}

// RecordBatch implements ocrflow.MetricsCollector.
func (e *Exporter) RecordBatch(requested, executed, failed int, duration time.Duration) {
	if e == nil {
		return
	}
	e.batchItemsTotal.Add(float64(executed))
	e.batchFailedTotal.Add(float64(failed))
}

// RecordTruncation implements ocrflow.MetricsCollector.
func (e *Exporter) RecordTruncation(dropped int) {
	if e == nil {
		return
	}
	e.truncatedTotal.Add(float64(dropped))
}

// RecordFallback implements ocrflow.MetricsCollector.
func (e *Exporter) RecordFallback(engine, original string) {
	if e == nil {
		return
	}
	e.fallbackTotal.WithLabelValues(engine, original).Inc()
}

// RecordMemoryReclaim implements ocrflow.MetricsCollector.
func (e *Exporter) RecordMemoryReclaim() {
	if e == nil {
		return
	}
	e.reclaimTotal.Inc()
}

func registerCollector[T prom.Collector](reg prom.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		are := prom.AlreadyRegisteredError{}
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, err
	}
	return c, nil
}
