package cmd

import (
	"github.com/urfave/cli"

	"github.com/subgrab/subgrab/internal/config"
)

var (
	botCmd      string
	daemonBin   string
	downloadDir string
	rpcPort     int
	secureRPC   bool
	watchConf   bool
	purgeCron   string
	sessionCron string
	healthCron  string
	restartMax  int
	daemonArgs  cli.StringSlice
	debugMode   bool

	historyLimit int
)

var upFlags = []cli.Flag{
	cli.StringFlag{
		Name:        "bot, b",
		Usage:       "bot command line, started once the daemon is ready",
		Destination: &botCmd,
		EnvVar:      config.BotCmdEnv,
	},
	cli.StringFlag{
		Name:        "daemon-bin",
		Usage:       "download daemon executable name or path",
		Destination: &daemonBin,
		EnvVar:      config.DaemonBinEnv,
	},
	cli.StringFlag{
		Name:        "download-dir, d",
		Usage:       "directory downloads are saved into",
		Destination: &downloadDir,
		EnvVar:      config.DownloadDirEnv,
	},
	cli.IntFlag{
		Name:        "rpc-port, p",
		Usage:       "daemon RPC port",
		Destination: &rpcPort,
		EnvVar:      config.RPCPortEnv,
	},
	cli.BoolFlag{
		Name:        "secure-rpc",
		Usage:       "generate and store an RPC secret in the system keyring",
		Destination: &secureRPC,
	},
	cli.BoolFlag{
		Name:        "watch-conf",
		Usage:       "restart the daemon when its conf file changes",
		Destination: &watchConf,
	},
	cli.StringFlag{
		Name:        "purge-cron",
		Usage:       "cron expression for purging finished download results",
		Destination: &purgeCron,
	},
	cli.StringFlag{
		Name:        "session-cron",
		Usage:       "cron expression for saving the daemon session file",
		Destination: &sessionCron,
	},
	cli.StringFlag{
		Name:        "health-cron",
		Usage:       "cron expression for the periodic health log line",
		Destination: &healthCron,
	},
	cli.IntFlag{
		Name:        "restart-max",
		Usage:       "consecutive restarts tolerated before giving up",
		Destination: &restartMax,
	},
	cli.StringSliceFlag{
		Name:  "daemon-arg",
		Usage: "extra argument appended to the daemon command line (repeatable)",
		Value: &daemonArgs,
	},
	cli.BoolFlag{
		Name:        "debug",
		Usage:       "verbose logging",
		Destination: &debugMode,
		EnvVar:      config.DebugEnv,
	},
}

var historyFlags = []cli.Flag{
	cli.IntFlag{
		Name:        "limit, n",
		Usage:       "maximum number of sessions to list",
		Value:       DEF_HISTORY_LIM,
		Destination: &historyLimit,
	},
}
