package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/subgrab/subgrab/internal/config"
	"github.com/subgrab/subgrab/internal/rpc"
)

func stop(ctx *cli.Context) error {
	cfg, err := config.New()
	if err != nil {
		printRuntimeErr(ctx, "stop", "load_config", err)
		return nil
	}

	pid, err := readPidFile(cfg)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Println("Launcher is not running (PID file not found)")
			return stopOrphanDaemon(cfg)
		}
		fmt.Fprintf(os.Stderr, "Error reading PID file: %v\n", err)
		return nil
	}

	fmt.Printf("Stopping launcher (PID %d)...\n", pid)

	if err := killLauncher(pid); err != nil {
		fmt.Fprintf(os.Stderr, "Error stopping launcher: %v\n", err)
		return nil
	}

	// PID file is removed by the launcher's deferred cleanup
	fmt.Println("Launcher stopped successfully")
	return nil
}

// stopOrphanDaemon shuts a daemon down over RPC when no launcher is
// around to do it, e.g. after a launcher crash left the daemon behind.
func stopOrphanDaemon(cfg *config.Config) error {
	resolveRPCSecret(cfg)

	dialCtx, cancel := context.WithTimeout(context.Background(), DEF_DIAL_TIMEOUT)
	defer cancel()

	client, err := rpc.Dial(dialCtx, cfg.RPCEndpoint(), cfg.RPCSecret)
	if err != nil {
		return nil
	}
	defer client.Close()

	fmt.Println("Found an orphaned daemon, shutting it down over RPC...")
	if err := client.Shutdown(dialCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error shutting down daemon: %v\n", err)
		return nil
	}
	fmt.Println("Daemon shutdown requested")
	return nil
}
