package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli"

	"github.com/subgrab/subgrab/internal/config"
	"github.com/subgrab/subgrab/internal/stats"
)

func statsCmd(ctx *cli.Context) error {
	cfg, err := config.New()
	if err != nil {
		printRuntimeErr(ctx, "stats", "load_config", err)
		return nil
	}

	snap := stats.New().Collect(cfg.DownloadDir)

	fmt.Printf("Load (1m)\t: %.2f\n", snap.Load1)
	if snap.MemTotal > 0 {
		fmt.Printf("Memory\t\t: %s available of %s\n",
			humanize.IBytes(snap.MemAvailable), humanize.IBytes(snap.MemTotal))
	}
	if snap.DiskTotal > 0 {
		fmt.Printf("Disk (%s)\t: %s free of %s\n",
			cfg.DownloadDir,
			humanize.IBytes(snap.DiskFree), humanize.IBytes(snap.DiskTotal))
	}
	return nil
}
