package scheduler

import (
	"container/heap"
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// stubNextTick makes every job due shortly after "now" so loop behavior is
// testable without waiting for real cron boundaries.
func stubNextTick(t *testing.T, delay time.Duration) {
	t.Helper()
	orig := nextTick
	nextTick = func(expr string, from time.Time, incl bool) (time.Time, error) {
		if expr == "bad" {
			return time.Time{}, errors.New("invalid expression")
		}
		return from.Add(delay), nil
	}
	t.Cleanup(func() { nextTick = orig })
}

func TestAddAndFire(t *testing.T) {
	stubNextTick(t, 50*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	fired := make(map[string]int)
	s := New(ctx, func(name string) {
		mu.Lock()
		fired[name]++
		mu.Unlock()
	})

	s.Add(Job{Name: "purge", CronExpr: "0 * * * *"})

	time.Sleep(300 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if fired["purge"] == 0 {
		t.Fatal("expected purge to fire")
	}
	// Jobs recur: with a 50ms tick the job must have fired more than once.
	if fired["purge"] < 2 {
		t.Errorf("fired %d times, expected recurrence", fired["purge"])
	}
}

func TestRemoveBeforeFire(t *testing.T) {
	stubNextTick(t, 150*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	fired := 0
	s := New(ctx, func(string) {
		mu.Lock()
		fired++
		mu.Unlock()
	})

	s.Add(Job{Name: "session", CronExpr: "*/10 * * * *"})
	s.Remove("session")

	time.Sleep(400 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if fired != 0 {
		t.Errorf("fired %d times after Remove, want 0", fired)
	}
}

func TestInvalidExpressionDropped(t *testing.T) {
	stubNextTick(t, 30*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fired := make(chan string, 8)
	s := New(ctx, func(name string) { fired <- name })

	s.Add(Job{Name: "broken", CronExpr: "bad"})
	s.Add(Job{Name: "ok", CronExpr: "0 * * * *"})

	select {
	case name := <-fired:
		if name != "ok" {
			t.Errorf("fired %q, want ok", name)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("valid job never fired")
	}
}

func TestContextCancelStops(t *testing.T) {
	stubNextTick(t, 30*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	fired := 0
	s := New(ctx, func(string) {
		mu.Lock()
		fired++
		mu.Unlock()
	})
	s.Add(Job{Name: "purge", CronExpr: "0 * * * *"})

	time.Sleep(100 * time.Millisecond)
	cancel()
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	before := fired
	mu.Unlock()

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	after := fired
	mu.Unlock()
	if after != before {
		t.Errorf("scheduler kept firing after cancel: %d -> %d", before, after)
	}

	// Add after cancel must not block.
	done := make(chan struct{})
	go func() {
		s.Add(Job{Name: "late", CronExpr: "0 * * * *"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Add blocked after context cancel")
	}
}

func TestHeapOrdering(t *testing.T) {
	h := &jobHeap{}
	heap.Init(h)

	now := time.Now()
	heapPush(h, Job{Name: "c", nextAt: now.Add(3 * time.Hour)})
	heapPush(h, Job{Name: "a", nextAt: now.Add(time.Hour)})
	heapPush(h, Job{Name: "b", nextAt: now.Add(2 * time.Hour)})

	for _, want := range []string{"a", "b", "c"} {
		if got := heapPop(h).Name; got != want {
			t.Errorf("heapPop() = %q, want %q", got, want)
		}
	}
}

func TestHeapRemoveByName(t *testing.T) {
	h := &jobHeap{}
	heap.Init(h)
	heapPush(h, Job{Name: "a", nextAt: time.Now()})
	heapPush(h, Job{Name: "b", nextAt: time.Now().Add(time.Minute)})

	if !heapRemoveByName(h, "a") {
		t.Error("heapRemoveByName(a) = false, want true")
	}
	if heapRemoveByName(h, "missing") {
		t.Error("heapRemoveByName(missing) = true, want false")
	}
	if h.Len() != 1 || (*h)[0].Name != "b" {
		t.Errorf("heap after remove = %v", *h)
	}
}
