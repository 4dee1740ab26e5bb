package logger

import (
	"fmt"
	"sync"
	"time"
)

// DefaultRingCapacity is the number of lines a RingLogger retains when
// created with capacity <= 0.
const DefaultRingCapacity = 512

// RingLogger keeps the most recent log lines in a bounded in-memory ring.
// The launcher attaches one next to the console logger so "status -v" can
// show recent activity without a log file. Older lines are dropped once
// the capacity is reached.
type RingLogger struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
	now   func() time.Time
}

// NewRingLogger creates a RingLogger retaining at most capacity lines.
func NewRingLogger(capacity int) *RingLogger {
	if capacity <= 0 {
		capacity = DefaultRingCapacity
	}
	return &RingLogger{
		lines: make([]string, capacity),
		now:   time.Now,
	}
}

func (r *RingLogger) Info(format string, args ...interface{}) {
	r.append("INFO", format, args...)
}

func (r *RingLogger) Warning(format string, args ...interface{}) {
	r.append("WARNING", format, args...)
}

func (r *RingLogger) Error(format string, args ...interface{}) {
	r.append("ERROR", format, args...)
}

// Close is a no-op; the ring lives until the logger is garbage collected.
func (r *RingLogger) Close() error {
	return nil
}

func (r *RingLogger) append(level, format string, args ...interface{}) {
	line := fmt.Sprintf("%s [%s] %s",
		r.now().Format("2006/01/02 15:04:05"), level, fmt.Sprintf(format, args...))

	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines[r.next] = line
	r.next++
	if r.next == len(r.lines) {
		r.next = 0
		r.full = true
	}
}

// Lines returns the retained lines, oldest first.
func (r *RingLogger) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.full {
		out := make([]string, r.next)
		copy(out, r.lines[:r.next])
		return out
	}
	out := make([]string, 0, len(r.lines))
	out = append(out, r.lines[r.next:]...)
	out = append(out, r.lines[:r.next]...)
	return out
}

var _ Logger = (*RingLogger)(nil)
