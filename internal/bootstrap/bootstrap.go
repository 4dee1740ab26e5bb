// Package bootstrap brings the two-process stack up and keeps it up: it
// prepares the working directories, starts the download daemon with its
// standard flag set, waits until the daemon answers RPC, then starts the
// bot. After that it supervises both processes, restarting crashed ones
// with capped backoff, and runs the daemon maintenance schedule.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"

	"github.com/subgrab/subgrab/internal/config"
	"github.com/subgrab/subgrab/internal/journal"
	"github.com/subgrab/subgrab/internal/proc"
	"github.com/subgrab/subgrab/internal/rpc"
	"github.com/subgrab/subgrab/internal/scheduler"
	"github.com/subgrab/subgrab/internal/stats"
	"github.com/subgrab/subgrab/pkg/logger"
)

var (
	// ErrDaemonUnstable is returned when the daemon keeps crashing past
	// the restart budget.
	ErrDaemonUnstable = errors.New("daemon restart limit exceeded")

	// ErrBotUnstable is returned when the bot keeps crashing past the
	// restart budget.
	ErrBotUnstable = errors.New("bot restart limit exceeded")
)

// A run of stableRunThreshold or longer resets the consecutive restart
// counter of a process.
const stableRunThreshold = 30 * time.Second

const maxBackoff = 30 * time.Second

// Maintenance job names fired by the scheduler.
const (
	jobPurge   = "purge"
	jobSession = "session"
	jobHealth  = "health"
)

// Process is the slice of proc.Process the supervisor needs. Tests
// substitute fakes.
type Process interface {
	Start() error
	Stop(grace time.Duration) error
	Done() <-chan struct{}
	ExitErr() error
	PID() int
}

// Client is the slice of rpc.Client the supervisor needs.
type Client interface {
	GetVersion(ctx context.Context) (*rpc.VersionResult, error)
	PurgeDownloadResult(ctx context.Context) error
	SaveSession(ctx context.Context) error
	Shutdown(ctx context.Context) error
	Notifications() <-chan rpc.Notification
	Close() error
}

// Deps are the external collaborators of the Launcher. Zero fields get
// production defaults, mirroring how the daemon runner injects listeners.
type Deps struct {
	// Fs is the filesystem used for directory and conf preparation.
	Fs afero.Fs

	// NewProcess builds a supervised process from an argv.
	NewProcess func(name string, argv []string, opts *proc.Options) Process

	// WaitReady blocks until the daemon RPC endpoint answers, returning
	// a connected client.
	WaitReady func(ctx context.Context, endpoint, secret string, timeout time.Duration) (Client, error)

	// Journal records sessions and events. Nil disables journaling.
	Journal *journal.Journal

	// BackoffBase scales restart backoff. Zero means one second.
	BackoffBase time.Duration
}

func (d *Deps) applyDefaults() {
	if d.Fs == nil {
		d.Fs = afero.NewOsFs()
	}
	if d.NewProcess == nil {
		d.NewProcess = func(name string, argv []string, opts *proc.Options) Process {
			return proc.New(name, argv, opts)
		}
	}
	if d.WaitReady == nil {
		d.WaitReady = func(ctx context.Context, endpoint, secret string, timeout time.Duration) (Client, error) {
			return rpc.WaitReady(ctx, endpoint, secret, timeout)
		}
	}
	if d.BackoffBase <= 0 {
		d.BackoffBase = time.Second
	}
}

// Launcher owns one running stack.
type Launcher struct {
	cfg   *config.Config
	deps  Deps
	log   logger.Logger
	stats *stats.Collector

	mu      sync.Mutex
	client  Client
	daemon  Process
	bot     Process
	session string
}

// New creates a Launcher. deps may be nil for production defaults.
func New(cfg *config.Config, log logger.Logger, deps *Deps) *Launcher {
	if deps == nil {
		deps = &Deps{}
	}
	deps.applyDefaults()
	return &Launcher{cfg: cfg, deps: *deps, log: log, stats: stats.New()}
}

// Run executes the bootstrap sequence and then supervises until ctx is
// cancelled (returning ctx.Err()) or a process exceeds its restart budget.
func (l *Launcher) Run(ctx context.Context) error {
	if err := l.Prepare(); err != nil {
		return err
	}

	if l.deps.Journal != nil {
		id, err := l.deps.Journal.BeginSession()
		if err != nil {
			l.log.Warning("journal unavailable: %v", err)
		} else {
			l.session = id
			defer func() {
				if err := l.deps.Journal.EndSession(id); err != nil {
					l.log.Warning("failed to close journal session: %v", err)
				}
			}()
		}
	}

	daemon, err := l.startDaemon(ctx)
	if err != nil {
		return err
	}
	l.setDaemon(daemon)

	bot, err := l.startBot()
	if err != nil {
		l.stopDaemon(ctx, daemon)
		return err
	}
	l.setBot(bot)

	schedCtx, cancelSched := context.WithCancel(ctx)
	defer cancelSched()
	l.startMaintenance(schedCtx)

	confChanged, stopWatch := l.watchConf()
	defer stopWatch()

	err = l.supervise(ctx, confChanged)

	if bot := l.currentBot(); bot != nil {
		l.record(journal.KindBotExit, "shutdown")
		bot.Stop(l.cfg.StopGrace)
	}
	if daemon := l.currentDaemon(); daemon != nil {
		l.stopDaemon(context.Background(), daemon)
	}
	return err
}

// Prepare creates the base and download directories and a default daemon
// conf file when none exists. The directories exist before the daemon is
// spawned.
func (l *Launcher) Prepare() error {
	for _, dir := range []string{l.cfg.BaseDir, l.cfg.DownloadDir} {
		if err := l.deps.Fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	created, err := l.cfg.EnsureConfFile(l.deps.Fs)
	if err != nil {
		return err
	}
	if created {
		l.log.Info("wrote default daemon conf to %s", l.cfg.ConfPath)
	}
	return nil
}

// startDaemon spawns the daemon, waits for RPC readiness and starts the
// notification pump. The bot is never started before this returns nil.
func (l *Launcher) startDaemon(ctx context.Context) (Process, error) {
	argv := append([]string{l.cfg.DaemonBin}, l.cfg.DaemonArgs()...)
	p := l.deps.NewProcess("daemon", argv, &proc.Options{Nice: l.cfg.NiceLevel})
	if err := p.Start(); err != nil {
		return nil, fmt.Errorf("failed to start daemon: %w", err)
	}
	l.log.Info("daemon started (pid %d)", p.PID())
	l.record(journal.KindDaemonStart, fmt.Sprintf("pid %d", p.PID()))

	client, err := l.deps.WaitReady(ctx, l.cfg.RPCEndpoint(), l.cfg.RPCSecret, l.cfg.StartTimeout)
	if err != nil {
		p.Stop(l.cfg.StopGrace)
		l.record(journal.KindDaemonExit, "failed readiness probe")
		return nil, err
	}

	if v, err := client.GetVersion(ctx); err == nil {
		l.log.Info("daemon ready, version %s", v.Version)
		if l.deps.Journal != nil && l.session != "" {
			if err := l.deps.Journal.SetDaemonVersion(l.session, v.Version); err != nil {
				l.log.Warning("failed to record daemon version: %v", err)
			}
		}
	}

	l.setClient(client)
	go l.pumpNotifications(client)
	return p, nil
}

func (l *Launcher) startBot() (Process, error) {
	p := l.deps.NewProcess("bot", l.cfg.BotCommand, &proc.Options{Nice: l.cfg.NiceLevel})
	if err := p.Start(); err != nil {
		return nil, fmt.Errorf("failed to start bot: %w", err)
	}
	l.log.Info("bot started (pid %d)", p.PID())
	l.record(journal.KindBotStart, fmt.Sprintf("pid %d", p.PID()))
	return p, nil
}

// supervise restarts crashed processes until ctx is cancelled or a
// restart budget runs out. A conf change restarts the daemon without
// touching the restart budget.
func (l *Launcher) supervise(ctx context.Context, confChanged <-chan struct{}) error {
	daemon, bot := l.currentDaemon(), l.currentBot()
	daemonRestarts, botRestarts := 0, 0
	daemonSince, botSince := time.Now(), time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-confChanged:
			l.log.Info("daemon conf changed, restarting daemon")
			l.stopDaemon(ctx, daemon)
			p, err := l.startDaemon(ctx)
			if err != nil {
				return err
			}
			daemon = p
			l.setDaemon(p)
			daemonSince = time.Now()

		case <-daemon.Done():
			l.record(journal.KindDaemonExit, exitDetail(daemon))
			l.log.Warning("daemon exited: %v", daemon.ExitErr())
			l.closeClient()

			if time.Since(daemonSince) >= stableRunThreshold {
				daemonRestarts = 0
			}
			daemonRestarts++
			if daemonRestarts > l.cfg.RestartMax {
				return ErrDaemonUnstable
			}
			if err := l.sleepBackoff(ctx, daemonRestarts); err != nil {
				return err
			}

			l.log.Info("restarting daemon (attempt %d/%d)", daemonRestarts, l.cfg.RestartMax)
			l.record(journal.KindDaemonRestart, fmt.Sprintf("attempt %d", daemonRestarts))
			p, err := l.startDaemon(ctx)
			if err != nil {
				return err
			}
			daemon = p
			l.setDaemon(p)
			daemonSince = time.Now()

		case <-bot.Done():
			l.record(journal.KindBotExit, exitDetail(bot))
			l.log.Warning("bot exited: %v", bot.ExitErr())

			if time.Since(botSince) >= stableRunThreshold {
				botRestarts = 0
			}
			botRestarts++
			if botRestarts > l.cfg.RestartMax {
				return ErrBotUnstable
			}
			if err := l.sleepBackoff(ctx, botRestarts); err != nil {
				return err
			}

			l.log.Info("restarting bot (attempt %d/%d)", botRestarts, l.cfg.RestartMax)
			l.record(journal.KindBotRestart, fmt.Sprintf("attempt %d", botRestarts))
			p, err := l.startBot()
			if err != nil {
				return err
			}
			bot = p
			l.setBot(p)
			botSince = time.Now()
		}
	}
}

// sleepBackoff waits attempt-scaled exponential backoff, capped, unless
// ctx ends first.
func (l *Launcher) sleepBackoff(ctx context.Context, attempt int) error {
	d := l.deps.BackoffBase << (attempt - 1)
	if d > maxBackoff {
		d = maxBackoff
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// stopDaemon asks the daemon to exit via RPC first, then escalates to
// signals through the process handle.
func (l *Launcher) stopDaemon(ctx context.Context, p Process) {
	client := l.takeClient()
	if client != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := client.Shutdown(shutdownCtx); err != nil {
			l.log.Warning("rpc shutdown failed: %v", err)
		}
		cancel()
		client.Close()
	}

	select {
	case <-p.Done():
	case <-time.After(l.cfg.StopGrace):
		p.Stop(l.cfg.StopGrace)
	}
	l.record(journal.KindDaemonExit, "shutdown")
	l.log.Info("daemon stopped")
}

// startMaintenance schedules the configured daemon upkeep jobs.
func (l *Launcher) startMaintenance(ctx context.Context) {
	hasJob := l.cfg.PurgeCron != "" || l.cfg.SessionCron != "" || l.cfg.HealthCron != ""
	if !hasJob {
		return
	}
	sched := scheduler.New(ctx, func(name string) { l.runMaintenance(ctx, name) })
	if l.cfg.PurgeCron != "" {
		sched.Add(scheduler.Job{Name: jobPurge, CronExpr: l.cfg.PurgeCron})
	}
	if l.cfg.SessionCron != "" {
		sched.Add(scheduler.Job{Name: jobSession, CronExpr: l.cfg.SessionCron})
	}
	if l.cfg.HealthCron != "" {
		sched.Add(scheduler.Job{Name: jobHealth, CronExpr: l.cfg.HealthCron})
	}
}

func (l *Launcher) runMaintenance(ctx context.Context, name string) {
	if name == jobHealth {
		l.logHealth()
		return
	}
	client := l.currentClient()
	if client == nil {
		return
	}
	callCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var err error
	switch name {
	case jobPurge:
		err = client.PurgeDownloadResult(callCtx)
	case jobSession:
		err = client.SaveSession(callCtx)
	}
	if err != nil {
		l.log.Warning("maintenance job %s failed: %v", name, err)
	} else {
		l.log.Info("maintenance job %s completed", name)
	}
}

// logHealth emits a periodic host snapshot so long-running logs show how
// the box is doing between download events.
func (l *Launcher) logHealth() {
	s := l.stats.Collect(l.cfg.DownloadDir)
	l.log.Info("health: up %s, load %.2f, mem %s free, disk %s free",
		s.Uptime.Round(time.Second), s.Load1,
		humanize.IBytes(s.MemAvailable), humanize.IBytes(s.DiskFree))
}

// pumpNotifications forwards daemon push events to the log and journal.
// It exits when the client's notification channel closes.
func (l *Launcher) pumpNotifications(client Client) {
	for n := range client.Notifications() {
		switch n.Event {
		case rpc.EventDownloadStart:
			l.record(journal.KindDownloadStart, "gid "+n.GID)
			l.log.Info("download started: %s", n.GID)
		case rpc.EventDownloadComplete:
			l.record(journal.KindDownloadComplete, "gid "+n.GID)
			l.log.Info("download complete: %s", n.GID)
		case rpc.EventDownloadError:
			l.record(journal.KindDownloadError, "gid "+n.GID)
			l.log.Warning("download failed: %s", n.GID)
		case rpc.EventDownloadStop:
			l.record(journal.KindDownloadStop, "gid "+n.GID)
		}
	}
}

func (l *Launcher) record(kind, detail string) {
	if l.deps.Journal == nil || l.session == "" {
		return
	}
	if err := l.deps.Journal.Record(l.session, kind, detail); err != nil {
		l.log.Warning("journal write failed: %v", err)
	}
}

func (l *Launcher) setDaemon(p Process) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.daemon = p
}

func (l *Launcher) currentDaemon() Process {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.daemon
}

func (l *Launcher) setBot(p Process) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bot = p
}

func (l *Launcher) currentBot() Process {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bot
}

func (l *Launcher) setClient(c Client) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.client = c
}

func (l *Launcher) currentClient() Client {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.client
}

// takeClient detaches the current client so exactly one caller closes it.
func (l *Launcher) takeClient() Client {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := l.client
	l.client = nil
	return c
}

func (l *Launcher) closeClient() {
	if c := l.takeClient(); c != nil {
		c.Close()
	}
}

func exitDetail(p Process) string {
	if err := p.ExitErr(); err != nil {
		return err.Error()
	}
	return "exit status 0"
}
