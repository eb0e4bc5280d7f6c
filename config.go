package ocrflow

import "time"

// Config holds the resource tunables for a Manager. The value is copied at
// construction and immutable for the manager's lifetime.
type Config struct {
	// MaxConcurrentTasks bounds how many tasks may execute at once.
	MaxConcurrentTasks int

	// SingleTaskTimeout is the hard wall-clock deadline per task, measured
	// from submission (not from admission).
	SingleTaskTimeout time.Duration

	// MaxMemoryMB is the process memory ceiling. Admission is refused when
	// usage is above 80% of it; the background monitor forces a
	// reclamation pass when usage exceeds it.
	MaxMemoryMB int64

	// MaxItemsPerBatch truncates oversized batches.
	MaxItemsPerBatch int

	// MonitorInterval is the memory monitor sampling period.
	MonitorInterval time.Duration

	// MonitoringEnabled starts the background memory monitor.
	MonitoringEnabled bool

	// WorkerCount sizes the goroutine pool carrying batch work. It is
	// independent of MaxConcurrentTasks, which governs admission. If 0,
	// GOMAXPROCS is used.
	WorkerCount int
}

// DefaultConfig returns the baseline tunables for mixed recognition
// workloads.
func DefaultConfig() Config {
	return Config{
		MaxConcurrentTasks: 4,
		SingleTaskTimeout:  2 * time.Minute,
		MaxMemoryMB:        2048,
		MaxItemsPerBatch:   20,
		MonitorInterval:    30 * time.Second,
		MonitoringEnabled:  true,
	}
}

// Profile selects a workload-specific configuration preset. The host system
// resolves per-document-type budgets from its configuration source; these
// presets mirror the shipped defaults.
type Profile string

const (
	// ProfileImage suits single-image recognition: short tasks, modest
	// memory.
	ProfileImage Profile = "image"

	// ProfileDocument suits multi-page scanned documents: longer
	// deadlines, larger memory budget, smaller batches.
	ProfileDocument Profile = "document"
)

// ConfigForProfile returns the preset for a workload profile. Unknown
// profiles fall back to DefaultConfig.
func ConfigForProfile(p Profile) Config {
	cfg := DefaultConfig()
	switch p {
	case ProfileImage:
		cfg.SingleTaskTimeout = 30 * time.Second
		cfg.MaxMemoryMB = 1024
		cfg.MaxItemsPerBatch = 50
	case ProfileDocument:
		cfg.SingleTaskTimeout = 5 * time.Minute
		cfg.MaxMemoryMB = 4096
		cfg.MaxItemsPerBatch = 10
	}
	return cfg
}

// Validate checks the configuration for contract violations.
func (c Config) Validate() error {
	if c.MaxConcurrentTasks <= 0 {
		return &ConfigError{Field: "MaxConcurrentTasks", Reason: "must be positive"}
	}
	if c.SingleTaskTimeout <= 0 {
		return &ConfigError{Field: "SingleTaskTimeout", Reason: "must be positive"}
	}
	if c.MaxMemoryMB <= 0 {
		return &ConfigError{Field: "MaxMemoryMB", Reason: "must be positive"}
	}
	if c.MaxItemsPerBatch <= 0 {
		return &ConfigError{Field: "MaxItemsPerBatch", Reason: "must be positive"}
	}
	if c.MonitoringEnabled && c.MonitorInterval <= 0 {
		return &ConfigError{Field: "MonitorInterval", Reason: "must be positive when monitoring is enabled"}
	}
	return nil
}
