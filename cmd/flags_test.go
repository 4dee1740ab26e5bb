package cmd

import (
	"reflect"
	"testing"

	"github.com/urfave/cli"

	"github.com/subgrab/subgrab/internal/config"
)

// resetFlags clears the flag destination vars after a test so tests do
// not leak into each other.
func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		botCmd = ""
		daemonBin = ""
		downloadDir = ""
		rpcPort = 0
		secureRPC = false
		watchConf = false
		purgeCron = ""
		sessionCron = ""
		healthCron = ""
		restartMax = 0
		daemonArgs = cli.StringSlice{}
		debugMode = false
	})
}

func TestLoadConfigDefaults(t *testing.T) {
	resetFlags(t)
	t.Setenv(config.BaseDirEnv, t.TempDir())

	cfg, err := loadConfig(nil)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.DaemonBin != config.DefaultDaemonBin {
		t.Errorf("DaemonBin = %q, want %q", cfg.DaemonBin, config.DefaultDaemonBin)
	}
	if cfg.WatchConf {
		t.Error("WatchConf enabled without flag")
	}
	if len(cfg.ExtraDaemonArgs) != 0 {
		t.Errorf("ExtraDaemonArgs = %v, want empty", cfg.ExtraDaemonArgs)
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	resetFlags(t)
	t.Setenv(config.BaseDirEnv, t.TempDir())

	botCmd = "python3 bot.py --token x"
	daemonBin = "/opt/bin/aria2c"
	downloadDir = "/data/downloads"
	rpcPort = 7000
	purgeCron = "*/5 * * * *"
	sessionCron = "*/2 * * * *"
	restartMax = 3
	watchConf = true
	daemonArgs = cli.StringSlice{"--max-connection-per-server=8"}
	debugMode = true

	cfg, err := loadConfig(nil)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if want := []string{"python3", "bot.py", "--token", "x"}; !reflect.DeepEqual(cfg.BotCommand, want) {
		t.Errorf("BotCommand = %v, want %v", cfg.BotCommand, want)
	}
	if cfg.DaemonBin != "/opt/bin/aria2c" {
		t.Errorf("DaemonBin = %q", cfg.DaemonBin)
	}
	if cfg.DownloadDir != "/data/downloads" {
		t.Errorf("DownloadDir = %q", cfg.DownloadDir)
	}
	if cfg.RPCPort != 7000 {
		t.Errorf("RPCPort = %d", cfg.RPCPort)
	}
	if cfg.PurgeCron != "*/5 * * * *" || cfg.SessionCron != "*/2 * * * *" {
		t.Errorf("crons = %q, %q", cfg.PurgeCron, cfg.SessionCron)
	}
	if cfg.RestartMax != 3 {
		t.Errorf("RestartMax = %d", cfg.RestartMax)
	}
	if !cfg.WatchConf {
		t.Error("WatchConf not applied")
	}
	if want := []string{"--max-connection-per-server=8"}; !reflect.DeepEqual(cfg.ExtraDaemonArgs, want) {
		t.Errorf("ExtraDaemonArgs = %v, want %v", cfg.ExtraDaemonArgs, want)
	}
	if !cfg.Debug {
		t.Error("Debug not applied")
	}
}
