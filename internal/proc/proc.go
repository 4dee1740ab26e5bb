// Package proc runs and stops the external processes the launcher
// supervises. Processes are started in their own process group so that
// stopping one takes its children with it, and termination escalates from
// a polite signal to a hard kill after a grace period.
package proc

import (
	"errors"
	"os/exec"
	"sync"
	"time"
)

var (
	ErrAlreadyStarted = errors.New("process already started")
	ErrNotStarted     = errors.New("process not started")
)

// Options tune how a Process is spawned.
type Options struct {
	// Dir is the working directory. Empty means inherit.
	Dir string

	// Nice lowers the scheduling priority on platforms that support it.
	// Zero leaves the priority untouched.
	Nice int

	// Env is the environment. Nil means inherit.
	Env []string
}

// Process is a single supervised OS process.
type Process struct {
	name string
	argv []string
	opts Options

	mu      sync.Mutex
	cmd     *exec.Cmd
	started bool
	done    chan struct{}
	exitErr error
}

// New prepares a process. argv[0] is the executable.
func New(name string, argv []string, opts *Options) *Process {
	if opts == nil {
		opts = &Options{}
	}
	return &Process{
		name: name,
		argv: argv,
		opts: *opts,
		done: make(chan struct{}),
	}
}

// Name returns the supervisor-facing label of the process.
func (p *Process) Name() string { return p.name }

// Start spawns the process detached into its own group and begins
// monitoring it. It does not block.
func (p *Process) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return ErrAlreadyStarted
	}

	cmd := exec.Command(p.argv[0], p.argv[1:]...)
	cmd.Dir = p.opts.Dir
	cmd.Env = p.opts.Env
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = sysProcAttr()

	if err := cmd.Start(); err != nil {
		return err
	}
	p.cmd = cmd
	p.started = true

	if p.opts.Nice != 0 {
		// Priority failures are non-fatal; the process keeps running at
		// its inherited priority.
		_ = setNice(cmd.Process.Pid, p.opts.Nice)
	}

	go p.wait()
	return nil
}

// wait collects the process exit status and closes the done channel.
func (p *Process) wait() {
	err := p.cmd.Wait()
	p.mu.Lock()
	p.exitErr = err
	p.mu.Unlock()
	close(p.done)
}

// PID returns the process id, or 0 if not started.
func (p *Process) PID() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.started {
		return 0
	}
	return p.cmd.Process.Pid
}

// Done is closed when the process exits for any reason.
func (p *Process) Done() <-chan struct{} { return p.done }

// ExitErr returns the exit error once Done is closed. Nil means a zero
// exit status.
func (p *Process) ExitErr() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitErr
}

// Alive reports whether the process has started and not yet exited.
func (p *Process) Alive() bool {
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if !started {
		return false
	}
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

// Stop terminates the process group: first a termination signal, then a
// kill once the grace period elapses. It returns after the process has
// exited.
func (p *Process) Stop(grace time.Duration) error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return ErrNotStarted
	}
	pid := p.cmd.Process.Pid
	p.mu.Unlock()

	select {
	case <-p.done:
		return nil
	default:
	}

	if err := terminate(pid); err != nil {
		// Group may already be gone; fall through to the wait below.
		select {
		case <-p.done:
			return nil
		default:
		}
	}

	select {
	case <-p.done:
		return nil
	case <-time.After(grace):
	}

	_ = kill(pid)
	<-p.done
	return nil
}
