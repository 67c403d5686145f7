// Package engine provides the single-goroutine periodic scheduler. All
// scheduled work runs under one shared lock, so sweeps never overlap a
// game-event evaluation.
package engine

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// task is one recurring job.
type task struct {
	name     string
	interval time.Duration
	fn       func()
	next     time.Time
}

// Scheduler drives the periodic sweeps. The loop wakes once per base
// interval and runs every task whose deadline has passed.
type Scheduler struct {
	Interval time.Duration // base tick interval (default 1 second)

	mu      *sync.Mutex // shared with the event path
	tasks   []*task
	now     func() time.Time
	running atomic.Bool // Stop is called from the signal goroutine
}

// NewScheduler creates a scheduler serializing through mu. mu may be nil
// for callers that do their own serialization.
func NewScheduler(mu *sync.Mutex) *Scheduler {
	return &Scheduler{Interval: time.Second, mu: mu, now: time.Now}
}

// SetClock overrides the scheduler clock. Tests only.
func (s *Scheduler) SetClock(now func() time.Time) { s.now = now }

// Every registers fn to run every d, first firing one full interval from
// now.
func (s *Scheduler) Every(d time.Duration, name string, fn func()) {
	s.tasks = append(s.tasks, &task{
		name:     name,
		interval: d,
		fn:       fn,
		next:     s.now().Add(d),
	})
}

// Run starts the loop. Blocks until Stop is called.
func (s *Scheduler) Run() {
	s.running.Store(true)
	slog.Info("scheduler started", "tasks", len(s.tasks), "interval", s.Interval)

	for s.running.Load() {
		start := time.Now()

		s.Step(s.now())

		elapsed := time.Since(start)
		if elapsed < s.Interval {
			time.Sleep(s.Interval - elapsed)
		}
	}

	slog.Info("scheduler stopped")
}

// Stop halts the loop after the current iteration. Safe to call from any
// goroutine.
func (s *Scheduler) Stop() {
	s.running.Store(false)
}

// Running reports whether the loop is active.
func (s *Scheduler) Running() bool {
	return s.running.Load()
}

// Step runs every task due at now. Exposed so tests and shutdown paths can
// drive the schedule without the sleep loop.
func (s *Scheduler) Step(now time.Time) {
	for _, t := range s.tasks {
		if now.Before(t.next) {
			continue
		}
		t.next = now.Add(t.interval)
		s.runTask(t)
	}
}

func (s *Scheduler) runTask(t *task) {
	if s.mu != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	started := time.Now()
	t.fn()
	if d := time.Since(started); d > time.Second {
		slog.Warn("slow scheduled task", "task", t.name, "took", d)
	}
}
