//go:build !windows

package proc

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// sysProcAttr detaches the child into its own process group so signals
// sent to it do not reach the launcher, and vice versa.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// setNice lowers the scheduling priority of the whole process group.
func setNice(pid, nice int) error {
	return unix.Setpriority(unix.PRIO_PGRP, pid, nice)
}

// terminate sends SIGTERM to the process group.
func terminate(pid int) error {
	return unix.Kill(-pid, unix.SIGTERM)
}

// kill sends SIGKILL to the process group.
func kill(pid int) error {
	return unix.Kill(-pid, unix.SIGKILL)
}
