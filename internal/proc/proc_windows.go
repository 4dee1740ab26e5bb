//go:build windows

package proc

import (
	"os"
	"syscall"
)

// sysProcAttr creates the child in a new process group so console control
// events do not propagate between launcher and child.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP}
}

// setNice is a no-op on Windows; priority classes are not mapped.
func setNice(pid, nice int) error {
	return nil
}

// terminate has no graceful equivalent for console-less children on
// Windows, so it kills the process directly.
func terminate(pid int) error {
	return kill(pid)
}

func kill(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}
