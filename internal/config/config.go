// Package config resolves the launcher configuration: directories, the
// daemon binary and its RPC endpoint, the bot command line and the
// supervision/maintenance knobs. Resolution order is flags > environment >
// defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adhocore/gronx"
)

// Defaults for the daemon side of the stack.
const (
	DefaultDaemonBin = "aria2c"
	DefaultRPCHost   = "127.0.0.1"
	DefaultRPCPort   = 6800

	// DefaultStartTimeout bounds the RPC readiness probe after the daemon
	// is spawned. The bot is not started until the probe succeeds.
	DefaultStartTimeout = 15 * time.Second

	// DefaultStopGrace is how long a process gets between SIGTERM and
	// SIGKILL during shutdown.
	DefaultStopGrace = 5 * time.Second

	// DefaultRestartMax caps consecutive automatic restarts of a crashed
	// process before the launcher gives up.
	DefaultRestartMax = 5
)

// Maintenance defaults: purge finished download results hourly, persist
// the daemon session every ten minutes.
const (
	DefaultPurgeCron   = "0 * * * *"
	DefaultSessionCron = "*/10 * * * *"
	DefaultHealthCron  = "*/30 * * * *"
)

const (
	confFileName    = "daemon.conf"
	journalFileName = "journal.db"
	sessionFileName = "daemon.session"
)

var (
	ErrNoBotCommand = errors.New("no bot command configured")
	ErrBadPort      = errors.New("rpc port out of range")
)

// Config is the fully resolved launcher configuration.
type Config struct {
	// BaseDir holds the conf file, pidfile, journal and session file.
	BaseDir string

	// DownloadDir is the scratch directory the daemon downloads into.
	// It is created before the daemon starts.
	DownloadDir string

	// DaemonBin is the download daemon executable (name or path).
	DaemonBin string

	// ConfPath is the daemon configuration file passed via --conf-path.
	ConfPath string

	// RPCHost and RPCPort locate the daemon RPC endpoint. The daemon
	// itself listens on all interfaces; the launcher connects locally.
	RPCHost string
	RPCPort int

	// RPCSecret is the RPC token. Empty by default, matching the stack's
	// historical posture; set via env or secure RPC mode.
	RPCSecret string

	// ExtraDaemonArgs are appended verbatim after the standard flag set.
	ExtraDaemonArgs []string

	// BotCommand is the opaque bot argv, exec'd once the daemon is ready.
	BotCommand []string

	// NiceLevel is applied to spawned processes on platforms that allow it.
	NiceLevel int

	StartTimeout time.Duration
	StopGrace    time.Duration
	RestartMax   int

	// PurgeCron, SessionCron and HealthCron drive the maintenance
	// scheduler. Empty disables the respective job.
	PurgeCron   string
	SessionCron string
	HealthCron  string

	// WatchConf restarts the daemon when the conf file changes on disk.
	WatchConf bool

	Debug bool
}

// New returns a Config populated with defaults and environment overrides.
func New() (*Config, error) {
	base := os.Getenv(BaseDirEnv)
	if base == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config dir: %w", err)
		}
		base = filepath.Join(dir, "subgrab")
	}

	c := &Config{
		BaseDir:      base,
		DownloadDir:  filepath.Join(base, "downloads"),
		DaemonBin:    DefaultDaemonBin,
		ConfPath:     filepath.Join(base, confFileName),
		RPCHost:      DefaultRPCHost,
		RPCPort:      DefaultRPCPort,
		NiceLevel:    19,
		StartTimeout: DefaultStartTimeout,
		StopGrace:    DefaultStopGrace,
		RestartMax:   DefaultRestartMax,
		PurgeCron:    DefaultPurgeCron,
		SessionCron:  DefaultSessionCron,
		HealthCron:   DefaultHealthCron,
	}

	if dir := os.Getenv(DownloadDirEnv); dir != "" {
		c.DownloadDir = dir
	}
	if bin := os.Getenv(DaemonBinEnv); bin != "" {
		c.DaemonBin = bin
	}
	if port := os.Getenv(RPCPortEnv); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", RPCPortEnv, err)
		}
		c.RPCPort = p
	}
	if secret := os.Getenv(RPCSecretEnv); secret != "" {
		c.RPCSecret = secret
	}
	if cmd := os.Getenv(BotCmdEnv); cmd != "" {
		c.BotCommand = strings.Fields(cmd)
	}
	if os.Getenv(DebugEnv) != "" {
		c.Debug = true
	}
	return c, nil
}

// Validate checks the parts of the configuration that would otherwise fail
// deep inside the bootstrap sequence.
func (c *Config) Validate() error {
	if len(c.BotCommand) == 0 {
		return ErrNoBotCommand
	}
	if c.RPCPort <= 0 || c.RPCPort > 65535 {
		return fmt.Errorf("%w: %d", ErrBadPort, c.RPCPort)
	}
	if err := validateCron(c.PurgeCron); err != nil {
		return fmt.Errorf("purge schedule: %w", err)
	}
	if err := validateCron(c.SessionCron); err != nil {
		return fmt.Errorf("session schedule: %w", err)
	}
	if err := validateCron(c.HealthCron); err != nil {
		return fmt.Errorf("health schedule: %w", err)
	}
	return nil
}

// validateCron accepts an empty expression (job disabled) or a 5-field
// cron expression. gronx.IsValid alone also accepts the 6-field seconds
// variant, so the field count is checked first.
func validateCron(expr string) error {
	if expr == "" {
		return nil
	}
	if len(strings.Fields(expr)) != 5 {
		return fmt.Errorf("invalid cron expression %q, expected 5-field format (minute hour day-of-month month day-of-week)", expr)
	}
	if !gronx.IsValid(expr) {
		return fmt.Errorf("invalid cron expression %q, expected 5-field format (minute hour day-of-month month day-of-week)", expr)
	}
	return nil
}

// JournalPath is the sqlite journal location under the base dir.
func (c *Config) JournalPath() string {
	return filepath.Join(c.BaseDir, journalFileName)
}

// SessionPath is the daemon session file referenced from the generated
// conf and by the aria2.saveSession maintenance job.
func (c *Config) SessionPath() string {
	return filepath.Join(c.BaseDir, sessionFileName)
}

// RPCEndpoint returns the websocket URL of the daemon JSON-RPC endpoint.
func (c *Config) RPCEndpoint() string {
	return fmt.Sprintf("ws://%s:%d/jsonrpc", c.RPCHost, c.RPCPort)
}
