//go:build unix && !linux

package resource

import (
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sys/unix"
)

// ReadSample reads process resource usage via rusage. Maxrss is a high-water
// mark rather than the instantaneous RSS, which is close enough for the
// soft-limit check on platforms without /proc.
func ReadSample() (Sample, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return Sample{}, fmt.Errorf("getrusage: %w", err)
	}

	rss := int64(ru.Maxrss)
	// darwin reports Maxrss in bytes, the BSDs in kilobytes.
	if runtime.GOOS != "darwin" {
		rss *= 1024
	}

	return Sample{
		RSSBytes: rss,
		CPUTime:  timevalDuration(ru.Utime) + timevalDuration(ru.Stime),
	}, nil
}

func timevalDuration(tv unix.Timeval) time.Duration {
	return time.Duration(tv.Sec)*time.Second + time.Duration(tv.Usec)*time.Microsecond
}
