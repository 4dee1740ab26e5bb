// Package scheduler fires recurring daemon maintenance jobs (purging
// finished download results, persisting the daemon session) at times
// given by cron expressions.
package scheduler

import (
	"container/heap"
	"context"
	"time"

	"github.com/adhocore/gronx"
)

// maxSleepCap bounds how long the run loop sleeps in one stretch, so
// wall-clock jumps (suspend/resume) are noticed within a minute.
const maxSleepCap = 60 * time.Second

// nextTick computes the next cron occurrence. Stubbed in tests.
var nextTick = gronx.NextTickAfter

// Scheduler manages maintenance jobs using a min-heap and a single
// background goroutine that sleeps until the next job is due.
type Scheduler struct {
	addChan    chan Job
	removeChan chan string
	ctx        context.Context
}

// New creates and starts a Scheduler. onFire is invoked with the job name
// each time a job comes due. The goroutine exits when ctx is cancelled.
func New(ctx context.Context, onFire func(string)) *Scheduler {
	s := &Scheduler{
		addChan:    make(chan Job, 16),
		removeChan: make(chan string, 16),
		ctx:        ctx,
	}
	go s.run(onFire)
	return s
}

// Add enqueues a job. The first trigger time is computed from the cron
// expression; jobs with invalid expressions are dropped silently, so
// validate before Add (config.Validate does).
func (s *Scheduler) Add(job Job) {
	select {
	case s.addChan <- job:
	case <-s.ctx.Done():
	}
}

// Remove cancels a job by name.
func (s *Scheduler) Remove(name string) {
	select {
	case s.removeChan <- name:
	case <-s.ctx.Done():
	}
}

// run is the scheduler goroutine. It keeps the job heap ordered by next
// trigger time and re-queues each job after it fires.
func (s *Scheduler) run(onFire func(string)) {
	h := &jobHeap{}
	heap.Init(h)

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	resetTimer := func() <-chan time.Time {
		if timer != nil {
			timer.Stop()
		}
		if h.Len() == 0 {
			// Nothing queued; block on the channels only.
			return nil
		}
		dur := time.Until((*h)[0].nextAt)
		if dur > maxSleepCap {
			dur = maxSleepCap
		}
		if dur < 0 {
			dur = 0
		}
		timer = time.NewTimer(dur)
		return timer.C
	}

	timerCh := resetTimer()

	for {
		select {
		case <-s.ctx.Done():
			return

		case job := <-s.addChan:
			next, err := nextTick(job.CronExpr, time.Now(), false)
			if err == nil {
				job.nextAt = next
				heapPush(h, job)
			}
			timerCh = resetTimer()

		case name := <-s.removeChan:
			heapRemoveByName(h, name)
			timerCh = resetTimer()

		case <-timerCh:
			now := time.Now()
			for h.Len() > 0 && !(*h)[0].nextAt.After(now) {
				job := heapPop(h)
				onFire(job.Name)
				next, err := nextTick(job.CronExpr, time.Now(), false)
				if err == nil {
					job.nextAt = next
					heapPush(h, job)
				}
			}
			timerCh = resetTimer()
		}
	}
}
