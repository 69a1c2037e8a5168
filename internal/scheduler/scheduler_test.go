package scheduler

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T, opts ...Option) (*Scheduler, *quartz.Mock) {
	t.Helper()
	clock := quartz.NewMock(t)
	return New(clock, log.New(io.Discard), opts...), clock
}

func TestRunNextOrdersByDueTimeThenSequence(t *testing.T) {
	s, _ := newTestScheduler(t)

	var order []string
	s.Schedule("a", "late", 2*time.Second, func() { order = append(order, "late") })
	s.Schedule("a", "early", time.Second, func() { order = append(order, "early") })
	s.Schedule("b", "early-too", time.Second, func() { order = append(order, "early-too") })

	assert.Equal(t, []string{"early", "late"}, s.Pending("a"))
	assert.Equal(t, 3, s.Drain(0))
	assert.Equal(t, []string{"early", "early-too", "late"}, order)
	assert.False(t, s.RunNext())
	assert.Zero(t, s.Len())
}

func TestEffectsScheduledByEffectsRunInDrain(t *testing.T) {
	s, _ := newTestScheduler(t)

	steps := 0
	var step func()
	step = func() {
		steps++
		if steps < 4 {
			s.Schedule("dealer", "draw", time.Second, step)
		}
	}
	s.Schedule("dealer", "draw", time.Second, step)

	assert.Equal(t, 4, s.Drain(0))
	assert.Equal(t, 4, steps)
	assert.False(t, s.HasPending("dealer"))
}

func TestDrainLimit(t *testing.T) {
	s, _ := newTestScheduler(t)
	for i := 0; i < 5; i++ {
		s.Schedule("slots", "tick", time.Duration(i+1)*100*time.Millisecond, func() {})
	}
	assert.Equal(t, 2, s.Drain(2))
	assert.Len(t, s.Pending("slots"), 3)
}

func TestCancelDropsOnlyOwner(t *testing.T) {
	s, _ := newTestScheduler(t)
	ran := map[string]bool{}
	s.Schedule("roulette", "spin", 3*time.Second, func() { ran["roulette"] = true })
	s.Schedule("poker", "ai", time.Second, func() { ran["poker"] = true })

	assert.Equal(t, 1, s.Cancel("roulette"))
	assert.Zero(t, s.Cancel("roulette"))
	assert.False(t, s.HasPending("roulette"))
	assert.True(t, s.HasPending("poker"))

	s.Drain(0)
	assert.False(t, ran["roulette"])
	assert.True(t, ran["poker"])
}

func TestTimerFiresThroughExecutor(t *testing.T) {
	var mu sync.Mutex
	var wrapped atomic.Int32
	s, clock := newTestScheduler(t, WithExecutor(func(fn func()) {
		mu.Lock()
		defer mu.Unlock()
		wrapped.Add(1)
		fn()
	}))

	var fired atomic.Bool
	s.Schedule("blackjack", "dealer-draw", time.Second, func() { fired.Store(true) })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	d, w := clock.AdvanceNext()
	assert.Equal(t, time.Second, d)
	w.MustWait(ctx)

	require.Eventually(t, fired.Load, time.Second, time.Millisecond)
	assert.EqualValues(t, 1, wrapped.Load())
	assert.False(t, s.HasPending("blackjack"))
}

func TestCancelledEffectNeverRunsWhenTimerFires(t *testing.T) {
	s, _ := newTestScheduler(t)

	var fired atomic.Bool
	task := s.Schedule("maze", "tick", time.Second, func() { fired.Store(true) })
	assert.Equal(t, "tick", task.Name())
	assert.Equal(t, "maze", task.Owner())

	s.Cancel("maze")

	// The stopped timer is gone from the mock, so firing it by hand
	// exercises the ownership re-check.
	s.fire(task.id)
	assert.False(t, fired.Load())
	assert.Zero(t, s.Len())
}

func TestRunNextStopsTimer(t *testing.T) {
	s, clock := newTestScheduler(t)

	var runs atomic.Int32
	s.Schedule("slots", "resolve", time.Second, func() { runs.Add(1) })
	require.True(t, s.RunNext())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	clock.Advance(2 * time.Second).MustWait(ctx)

	assert.EqualValues(t, 1, runs.Load())
}
