package resource

import "time"

// Sample is one point-in-time reading of process resource usage.
type Sample struct {
	// RSSBytes is the resident set size of the process.
	RSSBytes int64

	// CPUTime is the cumulative user+system CPU time consumed by the
	// process. Zero on platforms where it cannot be read.
	CPUTime time.Duration
}

// RSSMB returns the resident set size in megabytes.
func (s Sample) RSSMB() float64 {
	return float64(s.RSSBytes) / (1024 * 1024)
}
