//go:build linux

package resource

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// ReadSample reads current process memory from /proc/self/statm and CPU time
// from rusage.
func ReadSample() (Sample, error) {
	data, err := os.ReadFile("/proc/self/statm")
	if err != nil {
		return Sample{}, fmt.Errorf("read statm: %w", err)
	}

	// statm: size resident shared text lib data dt (in pages)
	var size, resident int64
	if _, err := fmt.Sscanf(string(data), "%d %d", &size, &resident); err != nil {
		return Sample{}, fmt.Errorf("parse statm: %w", err)
	}

	s := Sample{RSSBytes: resident * int64(os.Getpagesize())}

	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err == nil {
		s.CPUTime = timevalDuration(ru.Utime) + timevalDuration(ru.Stime)
	}
	return s, nil
}

func timevalDuration(tv unix.Timeval) time.Duration {
	return time.Duration(tv.Sec)*time.Second + time.Duration(tv.Usec)*time.Microsecond
}
