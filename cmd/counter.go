package cmd

import (
	"sync"
	"time"

	"github.com/vbauerster/mpb/v8"
)

// SpeedCounter batches byte deltas and feeds them to an mpb bar on a
// fixed cycle so the EWMA speed decorator stays smooth.
type SpeedCounter struct {
	ticker *time.Ticker
	// refresh rate
	refreshRate time.Duration

	mu sync.Mutex
	// bytes per cycle
	bpc int64
	bar *mpb.Bar

	quit     chan struct{}
	stopOnce sync.Once
	// closed when the worker goroutine has returned
	stopped chan struct{}
}

func NewSpeedCounter(refreshRate time.Duration) *SpeedCounter {
	return &SpeedCounter{
		ticker:      time.NewTicker(refreshRate),
		refreshRate: refreshRate,
		quit:        make(chan struct{}),
		stopped:     make(chan struct{}),
	}
}

func (s *SpeedCounter) SetBar(bar *mpb.Bar) {
	s.mu.Lock()
	s.bar = bar
	s.mu.Unlock()
}

func (s *SpeedCounter) Start() {
	go s.worker()
}

func (s *SpeedCounter) IncrBy(n int) {
	s.mu.Lock()
	s.bpc += int64(n)
	s.mu.Unlock()
}

// Stop ends the worker goroutine. Safe to call more than once.
func (s *SpeedCounter) Stop() {
	s.stopOnce.Do(func() {
		s.ticker.Stop()
		close(s.quit)
	})
}

func (s *SpeedCounter) worker() {
	defer close(s.stopped)
	for {
		select {
		case <-s.quit:
			return
		case <-s.ticker.C:
		}
		s.mu.Lock()
		if s.bpc != 0 && s.bar != nil {
			s.bar.EwmaIncrInt64(s.bpc, s.refreshRate)
			s.bpc = 0
		}
		s.mu.Unlock()
	}
}
