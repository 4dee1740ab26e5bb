package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli"

	"github.com/subgrab/subgrab/internal/config"
	"github.com/subgrab/subgrab/internal/rpc"
)

func status(ctx *cli.Context) error {
	cfg, err := config.New()
	if err != nil {
		printRuntimeErr(ctx, "status", "load_config", err)
		return nil
	}

	if pid, err := readPidFile(cfg); err == nil && isProcessRunning(pid) {
		fmt.Printf("Launcher\t: running (pid %d)\n", pid)
	} else {
		fmt.Println("Launcher\t: not running")
	}

	resolveRPCSecret(cfg)

	dialCtx, cancel := context.WithTimeout(context.Background(), DEF_DIAL_TIMEOUT)
	defer cancel()
	client, err := rpc.Dial(dialCtx, cfg.RPCEndpoint(), cfg.RPCSecret)
	if err != nil {
		fmt.Printf("Daemon\t\t: unreachable (%s)\n", cfg.RPCEndpoint())
		return nil
	}
	defer client.Close()

	v, err := client.GetVersion(dialCtx)
	if err != nil {
		printRuntimeErr(ctx, "status", "get_version", err)
		return nil
	}
	fmt.Printf("Daemon\t\t: running, version %s\n", v.Version)

	stat, err := client.GlobalStat(dialCtx)
	if err != nil {
		printRuntimeErr(ctx, "status", "global_stat", err)
		return nil
	}
	fmt.Printf("Active\t\t: %d\n", stat.NumActive)
	fmt.Printf("Waiting\t\t: %d\n", stat.NumWaiting)
	fmt.Printf("Stopped\t\t: %d\n", stat.NumStopped)
	fmt.Printf("Down speed\t: %s/s\n", humanize.IBytes(uint64(stat.DownloadSpeed)))
	fmt.Printf("Up speed\t: %s/s\n", humanize.IBytes(uint64(stat.UploadSpeed)))
	return nil
}
