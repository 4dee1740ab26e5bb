//go:build !windows

package cmd

import (
	"os"
	"syscall"
)

// isProcessRunning reports whether a process with the given PID exists.
// Signal 0 performs the existence check without delivering anything.
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
