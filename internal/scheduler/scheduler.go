// Package scheduler queues the delayed follow-up steps of a round (dealer
// draws, opponent replies, reel ticks) as named, cancellable effects.
//
// Effects are armed on a quartz clock so production code waits on real time
// while tests either advance a mock clock or step the queue directly with
// RunNext. An effect that has been cancelled or already run never runs again:
// ownership is re-checked under the scheduler lock right before execution.
package scheduler

import (
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// Executor runs a due effect. Timer-fired effects go through it so the owner
// can serialise them with its own actions.
type Executor func(fn func())

// Task is a pending effect.
type Task struct {
	id    uint64
	owner string
	name  string
	due   time.Time
	fn    func()
	timer *quartz.Timer
}

// Name returns the effect name, e.g. "dealer-draw".
func (t *Task) Name() string { return t.name }

// Owner returns the engine that scheduled the effect.
func (t *Task) Owner() string { return t.owner }

// Due returns when the effect fires on the scheduler clock.
func (t *Task) Due() time.Time { return t.due }

// Scheduler holds pending effects keyed by owner.
type Scheduler struct {
	clock  quartz.Clock
	logger *log.Logger
	exec   Executor

	mu    sync.Mutex
	seq   uint64
	tasks map[uint64]*Task
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithExecutor wraps timer-fired effects, typically in the session lock.
func WithExecutor(exec Executor) Option {
	return func(s *Scheduler) { s.exec = exec }
}

// New creates a scheduler on clock.
func New(clock quartz.Clock, logger *log.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:  clock,
		logger: logger.WithPrefix("scheduler"),
		exec:   func(fn func()) { fn() },
		tasks:  make(map[uint64]*Task),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Clock returns the clock effects are armed on.
func (s *Scheduler) Clock() quartz.Clock {
	return s.clock
}

// Schedule arms fn to run after delay on behalf of owner.
func (s *Scheduler) Schedule(owner, name string, delay time.Duration, fn func()) *Task {
	s.mu.Lock()
	s.seq++
	t := &Task{
		id:    s.seq,
		owner: owner,
		name:  name,
		due:   s.clock.Now().Add(delay),
		fn:    fn,
	}
	s.tasks[t.id] = t
	s.mu.Unlock()

	t.timer = s.clock.AfterFunc(delay, func() { s.fire(t.id) }, owner, name)
	s.logger.Debug("Scheduled", "owner", owner, "effect", name, "delay", delay)
	return t
}

// Cancel drops every pending effect of owner and returns how many were dropped.
func (s *Scheduler) Cancel(owner string) int {
	s.mu.Lock()
	var dropped []*Task
	for id, t := range s.tasks {
		if t.owner == owner {
			delete(s.tasks, id)
			dropped = append(dropped, t)
		}
	}
	s.mu.Unlock()

	for _, t := range dropped {
		if t.timer != nil {
			t.timer.Stop()
		}
	}
	if len(dropped) > 0 {
		s.logger.Debug("Cancelled", "owner", owner, "effects", len(dropped))
	}
	return len(dropped)
}

// Pending lists the names of owner's effects in firing order.
func (s *Scheduler) Pending(owner string) []string {
	var names []string
	for _, t := range s.ordered(owner) {
		names = append(names, t.name)
	}
	return names
}

// HasPending reports whether owner has any effect waiting.
func (s *Scheduler) HasPending(owner string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.owner == owner {
			return true
		}
	}
	return false
}

// Len returns the number of pending effects across all owners.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// RunNext runs the earliest pending effect immediately, ignoring its due
// time. The caller must already hold whatever lock serialises the owners.
func (s *Scheduler) RunNext() bool {
	all := s.ordered("")
	if len(all) == 0 {
		return false
	}
	t := all[0]
	if !s.claim(t.id) {
		return false
	}
	if t.timer != nil {
		t.timer.Stop()
	}
	s.logger.Debug("Running", "owner", t.owner, "effect", t.name)
	t.fn()
	return true
}

// Drain runs pending effects in order until none remain or limit effects
// have run (limit <= 0 means no limit). It returns the number run.
func (s *Scheduler) Drain(limit int) int {
	n := 0
	for limit <= 0 || n < limit {
		if !s.RunNext() {
			break
		}
		n++
	}
	return n
}

func (s *Scheduler) fire(id uint64) {
	s.exec(func() {
		s.mu.Lock()
		t, ok := s.tasks[id]
		s.mu.Unlock()
		if !ok || !s.claim(id) {
			return
		}
		s.logger.Debug("Firing", "owner", t.owner, "effect", t.name)
		t.fn()
	})
}

func (s *Scheduler) claim(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return false
	}
	delete(s.tasks, id)
	return true
}

func (s *Scheduler) ordered(owner string) []*Task {
	s.mu.Lock()
	out := make([]*Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if owner == "" || t.owner == owner {
			out = append(out, t)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].due.Equal(out[j].due) {
			return out[i].due.Before(out[j].due)
		}
		return out[i].id < out[j].id
	})
	return out
}
