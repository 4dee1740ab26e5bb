//go:build windows

package cmd

import (
	"fmt"
	"os"
	"os/exec"
)

// spawnLauncher starts "up" as a background process, forwarding extra
// arguments.
func spawnLauncher(extra []string) error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	args := append([]string{"up"}, extra...)
	cmd := exec.Command(executable, args...)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start launcher: %w", err)
	}

	_ = cmd.Process.Release()

	return nil
}
