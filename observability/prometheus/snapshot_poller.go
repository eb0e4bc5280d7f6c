package prometheus

import (
	"context"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	ocrflow "github.com/ChinaCraig/DocManage-sub000"
)

// SnapshotProvider provides current manager state snapshots.
type SnapshotProvider interface {
	Snapshot() ocrflow.StatsSnapshot
}

// SnapshotPoller periodically exports manager Snapshot() readings into
// Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	providersMu sync.RWMutex
	providers   map[string]SnapshotProvider

	activeTasks    *prom.GaugeVec
	maxTasks       *prom.GaugeVec
	memoryMB       *prom.GaugeVec
	memoryLimitMB  *prom.GaugeVec
	memoryPercent  *prom.GaugeVec
	cpuPercent     *prom.GaugeVec
	tasksTotal     *prom.GaugeVec
	tasksTimedOut  *prom.GaugeVec
	tasksMemReject *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a poller and registers its collectors. If reg is
// nil, the default registerer is used.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	labels := []string{"manager"}
	gauge := func(name, help string) *prom.GaugeVec {
		return prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "ocrflow",
			Name:      name,
			Help:      help,
		}, labels)
	}

	p := &SnapshotPoller{
		interval:       interval,
		providers:      make(map[string]SnapshotProvider),
		activeTasks:    gauge("active_tasks", "Number of tasks currently holding an execution slot."),
		maxTasks:       gauge("max_concurrent_tasks", "Configured admission limit."),
		memoryMB:       gauge("memory_mb", "Most recent process memory reading in MB."),
		memoryLimitMB:  gauge("memory_limit_mb", "Configured memory ceiling in MB."),
		memoryPercent:  gauge("memory_usage_percent", "Memory usage relative to the ceiling."),
		cpuPercent:     gauge("cpu_percent", "CPU utilization over the last monitor interval."),
		tasksTotal:     gauge("tasks_total_snapshot", "Task counter snapshot: total."),
		tasksTimedOut:  gauge("tasks_timed_out_snapshot", "Task counter snapshot: timed out."),
		tasksMemReject: gauge("tasks_memory_rejected_snapshot", "Task counter snapshot: memory rejected."),
	}

	var err error
	if p.activeTasks, err = registerCollector(reg, p.activeTasks); err != nil {
		return nil, err
	}
	if p.maxTasks, err = registerCollector(reg, p.maxTasks); err != nil {
		return nil, err
	}
	if p.memoryMB, err = registerCollector(reg, p.memoryMB); err != nil {
		return nil, err
	}
	if p.memoryLimitMB, err = registerCollector(reg, p.memoryLimitMB); err != nil {
		return nil, err
	}
	if p.memoryPercent, err = registerCollector(reg, p.memoryPercent); err != nil {
		return nil, err
	}
	if p.cpuPercent, err = registerCollector(reg, p.cpuPercent); err != nil {
		return nil, err
	}
	if p.tasksTotal, err = registerCollector(reg, p.tasksTotal); err != nil {
		return nil, err
	}
	if p.tasksTimedOut, err = registerCollector(reg, p.tasksTimedOut); err != nil {
		return nil, err
	}
	if p.tasksMemReject, err = registerCollector(reg, p.tasksMemReject); err != nil {
		return nil, err
	}

	return p, nil
}

// RegisterManager adds a manager under the given label. Replacing an
// existing name is allowed.
func (p *SnapshotPoller) RegisterManager(name string, provider SnapshotProvider) {
	p.providersMu.Lock()
	defer p.providersMu.Unlock()
	p.providers[name] = provider
}

// UnregisterManager removes a manager from polling.
func (p *SnapshotPoller) UnregisterManager(name string) {
	p.providersMu.Lock()
	defer p.providersMu.Unlock()
	delete(p.providers, name)
}

// Start launches the polling loop. No-op when already running.
func (p *SnapshotPoller) Start() {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	if p.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.running = true
	p.cancel = cancel
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.poll()
			}
		}
	}()
}

// Stop terminates the polling loop and waits for it to exit.
func (p *SnapshotPoller) Stop() {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	if !p.running {
		return
	}
	p.cancel()
	<-p.done
	p.running = false
}

func (p *SnapshotPoller) poll() {
	p.providersMu.RLock()
	defer p.providersMu.RUnlock()

	for name, provider := range p.providers {
		s := provider.Snapshot()
		p.activeTasks.WithLabelValues(name).Set(float64(s.ActiveTasks))
		p.maxTasks.WithLabelValues(name).Set(float64(s.MaxConcurrentTasks))
		p.memoryMB.WithLabelValues(name).Set(s.CurrentMemoryMB)
		p.memoryLimitMB.WithLabelValues(name).Set(float64(s.MaxMemoryMB))
		p.memoryPercent.WithLabelValues(name).Set(s.MemoryUsagePercent)
		p.cpuPercent.WithLabelValues(name).Set(s.CPUPercent)
		p.tasksTotal.WithLabelValues(name).Set(float64(s.Tasks.Total))
		p.tasksTimedOut.WithLabelValues(name).Set(float64(s.Tasks.TimedOut))
		p.tasksMemReject.WithLabelValues(name).Set(float64(s.Tasks.MemoryRejected))
	}
}
