//go:build !unix

package resource

import "runtime"

// ReadSample falls back to Go heap statistics on platforms without rusage.
// CPU time is unavailable and reported as zero.
func ReadSample() (Sample, error) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return Sample{RSSBytes: int64(ms.HeapSys)}, nil
}
