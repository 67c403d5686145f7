package engine

import (
	"sync"
	"testing"
	"time"
)

func TestStep_FiresAtInterval(t *testing.T) {
	base := time.Unix(1000, 0)
	s := NewScheduler(nil)
	s.SetClock(func() time.Time { return base })

	fired := 0
	s.Every(60*time.Second, "sweep", func() { fired++ })

	s.Step(base) // before the first deadline
	if fired != 0 {
		t.Fatalf("fired %d times before the first interval", fired)
	}

	s.Step(base.Add(60 * time.Second))
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}

	// Same instant again: deadline already pushed forward.
	s.Step(base.Add(61 * time.Second))
	if fired != 1 {
		t.Fatalf("fired = %d after 61s, want 1", fired)
	}

	s.Step(base.Add(121 * time.Second))
	if fired != 2 {
		t.Fatalf("fired = %d after 121s, want 2", fired)
	}
}

func TestStep_IndependentIntervals(t *testing.T) {
	base := time.Unix(0, 0)
	s := NewScheduler(nil)
	s.SetClock(func() time.Time { return base })

	var fast, slow int
	s.Every(time.Minute, "fast", func() { fast++ })
	s.Every(time.Hour, "slow", func() { slow++ })

	for i := 1; i <= 60; i++ {
		s.Step(base.Add(time.Duration(i) * time.Minute))
	}
	if fast != 60 {
		t.Errorf("fast fired %d times, want 60", fast)
	}
	if slow != 1 {
		t.Errorf("slow fired %d times, want 1", slow)
	}
}

func TestRun_StopsFromAnotherGoroutine(t *testing.T) {
	s := NewScheduler(nil)
	s.Interval = time.Millisecond

	done := make(chan struct{})
	go func() {
		s.Run()
		close(done)
	}()

	for i := 0; !s.Running() && i < 1000; i++ {
		time.Sleep(time.Millisecond)
	}
	s.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
	if s.Running() {
		t.Error("Running still true after the loop exited")
	}
}

func TestStep_SerializesThroughLock(t *testing.T) {
	var mu sync.Mutex
	s := NewScheduler(&mu)
	base := time.Unix(0, 0)
	s.SetClock(func() time.Time { return base })

	ran := false
	s.Every(time.Second, "locked", func() {
		// The shared lock is held while the task runs.
		if mu.TryLock() {
			t.Error("task ran without the shared lock held")
			mu.Unlock()
		}
		ran = true
	})

	s.Step(base.Add(2 * time.Second))
	if !ran {
		t.Fatal("task did not run")
	}
}
