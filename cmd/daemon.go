package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli"

	"github.com/subgrab/subgrab/internal/config"
)

const (
	spawnTimeout      = 5 * time.Second
	spawnPollInterval = 100 * time.Millisecond
)

// daemon starts the launcher detached from the terminal. All arguments
// after "daemon" are forwarded to the background "up" invocation.
func daemon(ctx *cli.Context) error {
	cfg, err := config.New()
	if err != nil {
		printRuntimeErr(ctx, "daemon", "load_config", err)
		return nil
	}

	if pid, err := readPidFile(cfg); err == nil && isProcessRunning(pid) {
		fmt.Printf("A launcher is already running (pid %d)\n", pid)
		return nil
	}

	if err := spawnLauncher(ctx.Args()); err != nil {
		printRuntimeErr(ctx, "daemon", "spawn", err)
		return nil
	}

	// The background process writes its pidfile once it is up.
	deadline := time.Now().Add(spawnTimeout)
	for time.Now().Before(deadline) {
		if pid, err := readPidFile(cfg); err == nil && isProcessRunning(pid) {
			fmt.Printf("Launcher started (pid %d)\n", pid)
			return nil
		}
		time.Sleep(spawnPollInterval)
	}
	fmt.Println("Launcher did not come up; check the logs with \"subgrab up\"")
	return nil
}
