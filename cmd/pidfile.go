package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/subgrab/subgrab/internal/config"
)

const pidFileName = "launcher.pid"

func pidFilePath(cfg *config.Config) string {
	return filepath.Join(cfg.BaseDir, pidFileName)
}

// writePidFile records the current process ID under the base directory.
func writePidFile(cfg *config.Config) error {
	pid := os.Getpid()
	return os.WriteFile(pidFilePath(cfg), []byte(strconv.Itoa(pid)), 0o644)
}

// readPidFile reads and validates the recorded launcher PID.
func readPidFile(cfg *config.Config) (int, error) {
	data, err := os.ReadFile(pidFilePath(cfg))
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID in file: %w", err)
	}
	if pid <= 0 {
		return 0, fmt.Errorf("invalid PID: %d", pid)
	}
	return pid, nil
}

func removePidFile(cfg *config.Config) error {
	err := os.Remove(pidFilePath(cfg))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
