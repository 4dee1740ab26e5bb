//go:build linux

package stats

import (
	"os"

	"golang.org/x/sys/unix"
)

func readLoad1() float64 {
	data, err := os.ReadFile("/proc/loadavg")
	if err != nil {
		return 0
	}
	return parseLoad1(string(data))
}

func readMemory() (total, available uint64) {
	data, err := os.ReadFile("/proc/meminfo")
	if err != nil {
		return 0, 0
	}
	return parseMemInfo(string(data))
}

// diskUsage reports total and free bytes of the filesystem holding path.
// Bavail counts blocks available to unprivileged users.
func diskUsage(path string) (total, free uint64) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, 0
	}
	bsize := uint64(st.Bsize)
	return st.Blocks * bsize, st.Bavail * bsize
}
