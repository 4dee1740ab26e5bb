//go:build windows

package cmd

import (
	"golang.org/x/sys/windows"
)

// isProcessRunning reports whether a process with the given PID exists.
// SYNCHRONIZE is the minimal access right that lets us probe it.
func isProcessRunning(pid int) bool {
	handle, err := windows.OpenProcess(windows.SYNCHRONIZE, false, uint32(pid))
	if err != nil {
		return false
	}
	windows.CloseHandle(handle)
	return true
}
