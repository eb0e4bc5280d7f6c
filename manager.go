package ocrflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/ChinaCraig/DocManage-sub000/engine"
	"github.com/ChinaCraig/DocManage-sub000/internal/resource"
	"github.com/ChinaCraig/DocManage-sub000/internal/worker"
)

// Manager is the bounded-concurrency execution engine for recognition work.
// Construct one at application start with New, pass it to call sites, and
// Close it during teardown. All methods are safe for concurrent use.
type Manager struct {
	cfg     Config
	gate    *resource.Gate
	monitor *resource.Monitor
	pool    *worker.Pool
	limiter *rate.Limiter

	stats   taskStats
	logger  *Logger
	metrics MetricsCollector

	closed    atomic.Bool
	closeOnce sync.Once
}

// New creates a Manager from cfg. The configuration is validated and copied;
// it cannot change for the manager's lifetime. When cfg.MonitoringEnabled is
// set, the background memory monitor starts immediately and runs until
// Close.
func New(cfg Config, optFns ...Option) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := options{
		logger:  NewLogger(nil),
		metrics: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	m := &Manager{
		cfg:     cfg,
		logger:  opts.logger,
		metrics: opts.metrics,
	}

	m.monitor = resource.NewMonitor(resource.MonitorConfig{
		Interval:    cfg.MonitorInterval,
		MaxMemoryMB: cfg.MaxMemoryMB,
		Logger:      opts.logger.Logger,
	})

	memoryMB := func() float64 {
		return m.memoryMB()
	}
	m.gate = resource.NewGate(resource.GateConfig{
		MaxConcurrent: int64(cfg.MaxConcurrentTasks),
		MaxMemoryMB:   cfg.MaxMemoryMB,
		MemoryMB:      memoryMB,
	})

	m.pool = worker.NewPool(cfg.WorkerCount)

	if opts.rateLimit > 0 {
		m.limiter = rate.NewLimiter(opts.rateLimit, opts.rateBurst)
	}

	if cfg.MonitoringEnabled {
		m.monitor.Start()
	}

	m.logger.Info("recognition manager started",
		"max_concurrent_tasks", cfg.MaxConcurrentTasks,
		"single_task_timeout", cfg.SingleTaskTimeout,
		"max_memory_mb", cfg.MaxMemoryMB,
		"monitoring", cfg.MonitoringEnabled,
	)

	return m, nil
}

// RunSingle executes one task under the manager's admission and deadline
// rules. It blocks until the task produces an Outcome, at most
// SingleTaskTimeout plus bounded overhead. It never panics and never
// returns an error: every failure mode is a typed Outcome.
func (m *Manager) RunSingle(ctx context.Context, task Task) Outcome {
	return m.execute(ctx, task)
}

// RunBatch executes tasks concurrently and returns one Outcome per
// (possibly truncated) input item, in input order. Oversized batches are cut
// to MaxItemsPerBatch; callers detect truncation by comparing the returned
// count with the requested count. A failure of one item never affects any
// sibling's outcome.
func (m *Manager) RunBatch(ctx context.Context, tasks []Task) []Outcome {
	requested := len(tasks)
	if requested == 0 {
		return nil
	}

	if m.closed.Load() {
		outcomes := make([]Outcome, 0, requested)
		for _, task := range tasks {
			m.stats.total.Add(1)
			outcomes = append(outcomes, m.finish(ctx, task.label(), time.Now(), Outcome{
				ErrorKind:    KindResourceLimit,
				ErrorMessage: ErrClosed.Error(),
			}))
		}
		return outcomes
	}

	if requested > m.cfg.MaxItemsPerBatch {
		tasks = tasks[:m.cfg.MaxItemsPerBatch]
		m.logger.LogTruncation(ctx, requested, len(tasks))
		m.metrics.RecordTruncation(requested - len(tasks))
	}

	start := time.Now()
	outcomes := make([]Outcome, len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		err := m.pool.Submit(ctx, func() {
			defer wg.Done()
			outcomes[i] = m.execute(ctx, task)
		})
		if err != nil {
			// The worker crashed out of coordination; the item still
			// gets a typed outcome.
			wg.Done()
			m.stats.total.Add(1)
			outcomes[i] = m.finish(ctx, task.label(), start, Outcome{
				ErrorKind:    KindBatchError,
				ErrorMessage: fmt.Sprintf("batch submission failed: %v", err),
			})
		}
	}
	wg.Wait()

	failed := FailureCount(outcomes)
	m.logger.LogBatch(ctx, requested, len(outcomes), failed)
	m.metrics.RecordBatch(requested, len(outcomes), failed, time.Since(start))

	return outcomes
}

// Recognize runs one recognition input through a fallback chain under the
// manager's admission and deadline rules. Provider availability is checked
// before a slot is committed: when no provider is usable the outcome is
// KindNoEngine and no admission is attempted.
func (m *Manager) Recognize(ctx context.Context, chain *engine.FallbackChain, in engine.Input) Outcome {
	start := time.Now()
	name := in.ID
	if name == "" {
		name = "recognition"
	}

	if chain == nil {
		m.stats.total.Add(1)
		return m.finish(ctx, name, start, Outcome{
			ErrorKind:    KindExecutionError,
			ErrorMessage: "nil fallback chain",
		})
	}
	if !chain.HasAvailable(ctx) {
		m.stats.total.Add(1)
		return m.finish(ctx, name, start, Outcome{
			ErrorKind:    KindNoEngine,
			ErrorMessage: engine.ErrNoEngineAvailable.Error(),
		})
	}

	return m.RunSingle(ctx, Task{
		Name: name,
		Run: func(ctx context.Context) (any, error) {
			return chain.Recognize(ctx, in)
		},
	})
}

// RecognizeBatch runs inputs through a fallback chain with RunBatch
// semantics. Like Recognize, provider availability is checked before any
// admission: when no provider is usable every item gets a KindNoEngine
// outcome and no slots are consumed.
func (m *Manager) RecognizeBatch(ctx context.Context, chain *engine.FallbackChain, inputs []engine.Input) []Outcome {
	if len(inputs) == 0 {
		return nil
	}
	if chain == nil {
		outcomes := make([]Outcome, 0, len(inputs))
		for range inputs {
			m.stats.total.Add(1)
			outcomes = append(outcomes, m.finish(ctx, "recognition", time.Now(), Outcome{
				ErrorKind:    KindExecutionError,
				ErrorMessage: "nil fallback chain",
			}))
		}
		return outcomes
	}
	if !chain.HasAvailable(ctx) {
		outcomes := make([]Outcome, 0, len(inputs))
		for _, in := range inputs {
			name := in.ID
			if name == "" {
				name = "recognition"
			}
			m.stats.total.Add(1)
			outcomes = append(outcomes, m.finish(ctx, name, time.Now(), Outcome{
				ErrorKind:    KindNoEngine,
				ErrorMessage: engine.ErrNoEngineAvailable.Error(),
			}))
		}
		return outcomes
	}

	tasks := make([]Task, 0, len(inputs))
	for _, in := range inputs {
		tasks = append(tasks, Task{
			Name: in.ID,
			Run: func(ctx context.Context) (any, error) {
				return chain.Recognize(ctx, in)
			},
		})
	}
	return m.RunBatch(ctx, tasks)
}

// Snapshot returns a read-only view of current manager state.
func (m *Manager) Snapshot() StatsSnapshot {
	memMB := m.memoryMB()
	pct := 0.0
	if m.cfg.MaxMemoryMB > 0 {
		pct = memMB / float64(m.cfg.MaxMemoryMB) * 100
	}
	return StatsSnapshot{
		ActiveTasks:        m.gate.Active(),
		MaxConcurrentTasks: m.gate.Max(),
		CurrentMemoryMB:    memMB,
		MaxMemoryMB:        m.cfg.MaxMemoryMB,
		MemoryUsagePercent: pct,
		CPUPercent:         m.monitor.CPUPercent(),
		Tasks:              m.stats.snapshot(),
	}
}

// OptimizeMemory forces an immediate reclamation pass.
func (m *Manager) OptimizeMemory() {
	m.monitor.ForceReclaim()
	m.metrics.RecordMemoryReclaim()
}

// ResetStats zeroes the task counters. Subsequent tasks count from zero.
func (m *Manager) ResetStats() {
	m.stats.reset()
	m.logger.Info("task statistics reset")
}

// Close shuts the manager down: new admissions are refused immediately, the
// memory monitor stops within one interval, and the worker pool drains.
// In-flight tasks run to completion or timeout, whichever comes first.
// Close is idempotent.
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		m.closed.Store(true)
		m.gate.Close()
		m.monitor.Stop()
		m.pool.Close()
		m.logger.Info("recognition manager closed")
	})
	return nil
}

// execute runs one task end to end: counting, admission, deadline
// enforcement, outcome typing, recording. Nothing escapes it.
func (m *Manager) execute(ctx context.Context, task Task) Outcome {
	start := time.Now()
	m.stats.total.Add(1)
	return m.finish(ctx, task.label(), start, m.attempt(ctx, task, start))
}

// finish stamps the duration, records the outcome in stats/metrics/logs and
// hands it back.
func (m *Manager) finish(ctx context.Context, name string, start time.Time, out Outcome) Outcome {
	out.Duration = time.Since(start)
	m.stats.record(out)
	m.metrics.RecordTask(out.ErrorKind, out.Duration)
	if out.FallbackUsed {
		m.metrics.RecordFallback(out.EngineUsed, out.OriginalEngine)
	}
	m.logger.LogTask(ctx, name, out)
	return out
}

func (m *Manager) attempt(ctx context.Context, task Task, start time.Time) Outcome {
	if task.Run == nil {
		return Outcome{
			ErrorKind:    KindExecutionError,
			ErrorMessage: "nil task capability",
		}
	}
	if m.closed.Load() {
		return Outcome{
			ErrorKind:    KindResourceLimit,
			ErrorMessage: ErrClosed.Error(),
		}
	}

	// Hard deadline measured from submission, so time spent waiting for a
	// token or an admission slot counts against the budget.
	deadline := start.Add(m.cfg.SingleTaskTimeout)
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			// Wait fails fast with its own error when the reservation
			// cannot complete before the effective deadline. That is a
			// timeout when the task budget is the binding constraint, a
			// cancellation when a caller-supplied deadline is earlier.
			if errors.Is(err, context.Canceled) {
				return m.deadlineOutcome(ctx, task, deadline, err)
			}
			if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
				return Outcome{
					ErrorKind:    KindExecutionError,
					ErrorMessage: fmt.Sprintf("task %q cancelled: %v", task.label(), err),
				}
			}
			return Outcome{
				ErrorKind:    KindTimeout,
				ErrorMessage: fmt.Sprintf("task %q exceeded %s", task.label(), m.cfg.SingleTaskTimeout),
			}
		}
	}

	permit, err := m.gate.Acquire(ctx)
	if err != nil {
		switch {
		case errors.Is(err, resource.ErrMemorySoftLimit):
			return Outcome{
				ErrorKind:    KindMemoryLimit,
				ErrorMessage: fmt.Sprintf("task %q rejected: %v", task.label(), err),
			}
		case errors.Is(err, resource.ErrGateClosed):
			return Outcome{
				ErrorKind:    KindResourceLimit,
				ErrorMessage: ErrClosed.Error(),
			}
		default:
			return m.deadlineOutcome(ctx, task, deadline, err)
		}
	}

	type capResult struct {
		data any
		err  error
	}
	resCh := make(chan capResult, 1)

	// The capability runs on its own goroutine so the caller can proceed
	// on deadline regardless of whether it ever returns. The permit is
	// released by that goroutine: an abandoned capability keeps its slot
	// until it actually stops, so admission accounting stays truthful.
	go func() {
		defer permit.Release()
		defer func() {
			if r := recover(); r != nil {
				resCh <- capResult{err: fmt.Errorf("task panicked: %v", r)}
			}
		}()
		data, err := task.Run(ctx)
		resCh <- capResult{data: data, err: err}
	}()

	select {
	case res := <-resCh:
		if res.err != nil {
			return m.classify(task, res.err)
		}
		out := Outcome{Success: true, Data: res.data}
		if r, ok := res.data.(engine.Result); ok {
			out.EngineUsed = r.Engine
			out.FallbackUsed = r.Fallback
			out.OriginalEngine = r.OriginalEngine
		}
		return out
	case <-ctx.Done():
		return m.deadlineOutcome(ctx, task, deadline, ctx.Err())
	}
}

// classify maps a capability error to an outcome kind.
func (m *Manager) classify(task Task, err error) Outcome {
	var allFailed *engine.AllEnginesFailedError
	switch {
	case errors.Is(err, engine.ErrNoEngineAvailable):
		return Outcome{ErrorKind: KindNoEngine, ErrorMessage: err.Error()}
	case errors.As(err, &allFailed):
		return Outcome{ErrorKind: KindAllEnginesFailed, ErrorMessage: err.Error()}
	case errors.Is(err, context.DeadlineExceeded):
		return Outcome{
			ErrorKind:    KindTimeout,
			ErrorMessage: fmt.Sprintf("task %q exceeded %s", task.label(), m.cfg.SingleTaskTimeout),
		}
	default:
		return Outcome{ErrorKind: KindExecutionError, ErrorMessage: err.Error()}
	}
}

// deadlineOutcome distinguishes the task budget from caller cancellation.
// A DeadlineExceeded that fires before the task's own deadline comes from an
// earlier caller-supplied deadline and counts as cancellation, not timeout.
func (m *Manager) deadlineOutcome(ctx context.Context, task Task, deadline time.Time, err error) Outcome {
	expired := errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded)
	if expired && !time.Now().Before(deadline) {
		return Outcome{
			ErrorKind:    KindTimeout,
			ErrorMessage: fmt.Sprintf("task %q exceeded %s", task.label(), m.cfg.SingleTaskTimeout),
		}
	}
	return Outcome{
		ErrorKind:    KindExecutionError,
		ErrorMessage: fmt.Sprintf("task %q cancelled: %v", task.label(), err),
	}
}

func (m *Manager) memoryMB() float64 {
	if m.cfg.MonitoringEnabled {
		return m.monitor.MemoryMB()
	}
	s, err := resource.ReadSample()
	if err != nil {
		return 0
	}
	return s.RSSMB()
}
