package resource

import (
	"io"
	"log/slog"
	"math"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// MonitorConfig holds settings for the background memory monitor.
type MonitorConfig struct {
	// Interval is the sampling period. If <= 0, defaults to 30s.
	Interval time.Duration

	// MaxMemoryMB is the ceiling above which a reclamation pass is
	// triggered. If 0, the monitor only samples.
	MaxMemoryMB int64

	// Logger receives monitor events. If nil, logging is disabled.
	Logger *slog.Logger

	// ReadSample overrides the platform sampler. Used in tests.
	ReadSample func() (Sample, error)
}

// Monitor periodically samples process memory and forces a garbage
// collection pass when usage exceeds the configured ceiling. It also keeps
// the most recent memory reading and a CPU utilization estimate derived from
// CPU-time deltas between samples.
//
// The monitor never propagates sampling failures; they are logged and the
// loop keeps running.
type Monitor struct {
	interval time.Duration
	limitMB  float64
	logger   *slog.Logger
	sample   func() (Sample, error)

	memBits atomic.Uint64 // float64 bits, last sampled RSS in MB
	cpuBits atomic.Uint64 // float64 bits, last CPU percent

	reclaims atomic.Int64

	mu     sync.Mutex
	lastAt time.Time
	last   Sample

	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	done      chan struct{}
}

// NewMonitor creates a stopped monitor. Call Start to begin sampling.
func NewMonitor(cfg MonitorConfig) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.ReadSample == nil {
		cfg.ReadSample = ReadSample
	}
	return &Monitor{
		interval: cfg.Interval,
		limitMB:  float64(cfg.MaxMemoryMB),
		logger:   cfg.Logger,
		sample:   cfg.ReadSample,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the sampling loop. Subsequent calls are no-ops.
func (m *Monitor) Start() {
	m.startOnce.Do(func() {
		m.observe() // prime the readings before the first tick
		go m.loop()
	})
}

// Stop terminates the sampling loop and waits for it to exit. The loop
// observes the stop signal within one interval. Stop is idempotent and safe
// to call on a monitor that was never started.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopCh)
	})
	m.startOnce.Do(func() {
		close(m.done) // never started, nothing to wait for
	})
	<-m.done
}

// MemoryMB returns the most recently sampled RSS in megabytes.
func (m *Monitor) MemoryMB() float64 {
	return math.Float64frombits(m.memBits.Load())
}

// CPUPercent returns the CPU utilization estimated over the last interval.
func (m *Monitor) CPUPercent() float64 {
	return math.Float64frombits(m.cpuBits.Load())
}

// Reclaims returns the number of forced reclamation passes so far.
func (m *Monitor) Reclaims() int64 {
	return m.reclaims.Load()
}

// ForceReclaim runs an immediate garbage collection pass and returns memory
// to the OS.
func (m *Monitor) ForceReclaim() {
	before := m.MemoryMB()
	runtime.GC()
	debug.FreeOSMemory()
	m.reclaims.Add(1)
	m.observe()
	m.logger.Info("memory reclamation pass",
		"before_mb", before,
		"after_mb", m.MemoryMB(),
	)
}

func (m *Monitor) loop() {
	defer close(m.done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.observe()
			if m.limitMB > 0 && m.MemoryMB() > m.limitMB {
				m.logger.Warn("memory ceiling exceeded",
					"memory_mb", m.MemoryMB(),
					"limit_mb", m.limitMB,
				)
				m.ForceReclaim()
			}
		}
	}
}

func (m *Monitor) observe() {
	s, err := m.sample()
	if err != nil {
		m.logger.Debug("resource sample failed", "error", err)
		return
	}

	m.memBits.Store(math.Float64bits(s.RSSMB()))

	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if !m.lastAt.IsZero() && s.CPUTime > 0 {
		wall := now.Sub(m.lastAt)
		if wall > 0 {
			pct := float64(s.CPUTime-m.last.CPUTime) / float64(wall) * 100
			if pct < 0 {
				pct = 0
			}
			m.cpuBits.Store(math.Float64bits(pct))
		}
	}
	m.lastAt = now
	m.last = s
}
