package config

// Environment variable names recognized by the launcher. Flags take
// precedence over these, and these take precedence over built-in defaults.
const (
	// BaseDirEnv overrides the launcher base directory (conf file,
	// pidfile, journal database and daemon session live under it).
	BaseDirEnv = "SUBGRAB_BASE_DIR"

	// DownloadDirEnv overrides the scratch directory downloads land in.
	DownloadDirEnv = "SUBGRAB_DOWNLOAD_DIR"

	// DaemonBinEnv overrides the download daemon executable name/path.
	DaemonBinEnv = "SUBGRAB_DAEMON_BIN"

	// RPCPortEnv overrides the daemon RPC port.
	RPCPortEnv = "SUBGRAB_RPC_PORT"

	// RPCSecretEnv supplies an RPC secret without touching the keyring.
	RPCSecretEnv = "SUBGRAB_RPC_SECRET"

	// BotCmdEnv overrides the bot command line (whitespace separated).
	BotCmdEnv = "SUBGRAB_BOT_CMD"

	// DebugEnv enables debug logging when set to a non-empty value.
	DebugEnv = "SUBGRAB_DEBUG"
)
