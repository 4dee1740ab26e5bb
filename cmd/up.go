package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/urfave/cli"

	"github.com/subgrab/subgrab/internal/bootstrap"
	"github.com/subgrab/subgrab/internal/config"
	"github.com/subgrab/subgrab/internal/journal"
	"github.com/subgrab/subgrab/pkg/keyring"
	"github.com/subgrab/subgrab/pkg/logger"
)

const crashFileName = "last-crash.log"

// loadConfig resolves the launcher configuration: defaults, then
// environment, then flags.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, err
	}
	if botCmd != "" {
		cfg.BotCommand = strings.Fields(botCmd)
	}
	if daemonBin != "" {
		cfg.DaemonBin = daemonBin
	}
	if downloadDir != "" {
		cfg.DownloadDir = downloadDir
	}
	if rpcPort != 0 {
		cfg.RPCPort = rpcPort
	}
	if purgeCron != "" {
		cfg.PurgeCron = purgeCron
	}
	if sessionCron != "" {
		cfg.SessionCron = sessionCron
	}
	if healthCron != "" {
		cfg.HealthCron = healthCron
	}
	if restartMax > 0 {
		cfg.RestartMax = restartMax
	}
	if args := daemonArgs.Value(); len(args) > 0 {
		cfg.ExtraDaemonArgs = args
	}
	cfg.WatchConf = watchConf
	if debugMode {
		cfg.Debug = true
	}
	if secureRPC {
		secret, err := keyring.New().EnsureSecret()
		if err != nil {
			return nil, fmt.Errorf("failed to prepare rpc secret: %w", err)
		}
		cfg.RPCSecret = secret
	}
	return cfg, nil
}

func up(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		printRuntimeErr(ctx, "up", "load_config", err)
		return nil
	}
	if err := cfg.Validate(); err != nil {
		if ctx.Command.Name != "" {
			return printErrWithCmdHelp(ctx, err)
		}
		return printErrWithHelp(ctx, err)
	}
	if err := os.MkdirAll(cfg.BaseDir, 0o755); err != nil {
		printRuntimeErr(ctx, "up", "base_dir", err)
		return nil
	}

	if pid, err := readPidFile(cfg); err == nil && isProcessRunning(pid) {
		fmt.Printf("A launcher is already running (pid %d)\n", pid)
		return nil
	}
	if err := writePidFile(cfg); err != nil {
		printRuntimeErr(ctx, "up", "pidfile", err)
		return nil
	}
	defer removePidFile(cfg)

	ring := logger.NewRingLogger(logger.DefaultRingCapacity)
	lg := logger.NewMultiLogger(
		logger.NewStandardLogger(log.New(os.Stderr, "", log.LstdFlags)),
		ring,
	)
	defer lg.Close()

	jrn, err := journal.Open(cfg.JournalPath())
	if err != nil {
		lg.Warning("journal disabled: %v", err)
		jrn = nil
	} else {
		defer jrn.Close()
	}

	runCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	launcher := bootstrap.New(cfg, lg, &bootstrap.Deps{Journal: jrn})
	err = launcher.Run(runCtx)
	if err == nil || errors.Is(err, context.Canceled) {
		lg.Info("shutdown complete")
		return nil
	}
	dumpCrashLog(cfg, ring)
	return err
}

// dumpCrashLog writes the in-memory log tail next to the journal so an
// abnormal exit can be diagnosed after the process is gone.
func dumpCrashLog(cfg *config.Config, ring *logger.RingLogger) {
	lines := ring.Lines()
	if len(lines) == 0 {
		return
	}
	path := filepath.Join(cfg.BaseDir, crashFileName)
	_ = os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
}
