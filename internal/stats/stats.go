// Package stats collects a best-effort snapshot of the host for the stats
// command and the periodic health log line. Values that cannot be read on
// the current platform are left zero rather than failing the snapshot.
package stats

import (
	"strconv"
	"strings"
	"time"
)

// Snapshot is one point-in-time reading.
type Snapshot struct {
	// Uptime is how long the launcher has been running.
	Uptime time.Duration

	// Load1 is the 1-minute load average (0 where unsupported).
	Load1 float64

	// MemTotal and MemAvailable are in bytes (0 where unsupported).
	MemTotal     uint64
	MemAvailable uint64

	// DiskTotal and DiskFree are for the filesystem holding the download
	// directory, in bytes.
	DiskTotal uint64
	DiskFree  uint64
}

// Collector takes snapshots relative to its creation time.
type Collector struct {
	start time.Time
}

// New returns a Collector whose uptime starts now.
func New() *Collector {
	return &Collector{start: time.Now()}
}

// Collect reads the current snapshot. dir selects the filesystem for the
// disk figures.
func (c *Collector) Collect(dir string) Snapshot {
	s := Snapshot{Uptime: time.Since(c.start)}
	s.Load1 = readLoad1()
	s.MemTotal, s.MemAvailable = readMemory()
	s.DiskTotal, s.DiskFree = diskUsage(dir)
	return s
}

// parseLoad1 extracts the 1-minute average from /proc/loadavg content
// ("0.52 0.58 0.59 1/467 12345").
func parseLoad1(content string) float64 {
	fields := strings.Fields(content)
	if len(fields) == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0
	}
	return v
}

// parseMemInfo extracts MemTotal and MemAvailable (bytes) from
// /proc/meminfo content. The kernel reports kB.
func parseMemInfo(content string) (total, available uint64) {
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		v, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			total = v * 1024
		case "MemAvailable:":
			available = v * 1024
		}
	}
	return total, available
}
