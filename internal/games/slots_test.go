package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/minicasino/internal/randutil"
)

func TestSlotsMultiplier(t *testing.T) {
	tests := []struct {
		reels [3]Symbol
		want  int
	}{
		{[3]Symbol{Seven, Seven, Seven}, 100},
		{[3]Symbol{Diamond, Diamond, Diamond}, 50},
		{[3]Symbol{Star, Star, Star}, 25},
		{[3]Symbol{Cherry, Cherry, Cherry}, 10},
		{[3]Symbol{Grape, Grape, Grape}, 10},
		{[3]Symbol{Seven, Seven, Cherry}, 2},
		{[3]Symbol{Lemon, Orange, Lemon}, 2},
		{[3]Symbol{Cherry, Star, Star}, 2},
		{[3]Symbol{Cherry, Lemon, Orange}, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SlotsMultiplier(tt.reels), "%v", tt.reels)
	}
}

func symbolValue(s Symbol) float64 {
	return randutil.ForIndex(int(s), len(Symbols))
}

func TestSlotsSpinAnimatesThenResolves(t *testing.T) {
	v := symbolValue(Seven)
	f := newFixture(t, 1000, v, v, v)
	g := NewSlots(f.deps)

	require.NoError(t, g.Spin(10))
	assert.Equal(t, 990, f.balance())
	assert.Equal(t, Spinning, g.Phase())
	require.ErrorIs(t, g.Spin(10), ErrIllegalAction)

	require.Equal(t, 5, f.sched.Drain(5))
	assert.Equal(t, Spinning, g.Phase())
	assert.Zero(t, f.seq.Consumed(), "ticks do not consume randomness")

	f.drain()
	assert.Equal(t, Idle, g.Phase())
	assert.Equal(t, 3, f.seq.Consumed())
	assert.Equal(t, [3]Symbol{Seven, Seven, Seven}, g.Reels())
	assert.Equal(t, 990+1000, f.balance())
}

func TestSlotsTickCount(t *testing.T) {
	f := newFixture(t, 1000)
	g := NewSlots(f.deps)
	require.NoError(t, g.Spin(10))
	assert.Equal(t, DefaultDelays().SlotsTicks, f.drain())
}

func TestSlotsLosingSpin(t *testing.T) {
	f := newFixture(t, 1000, symbolValue(Cherry), symbolValue(Lemon), symbolValue(Star))
	g := NewSlots(f.deps)
	require.NoError(t, g.Spin(50))
	f.drain()
	assert.Equal(t, 950, f.balance())
	res, ok := g.LastResult()
	require.True(t, ok)
	assert.Zero(t, res.Payout)
	assert.Equal(t, "cherry | lemon | star", res.Outcome)
}

func TestSlotsRejectsBadBets(t *testing.T) {
	f := newFixture(t, 100)
	g := NewSlots(f.deps)
	require.ErrorIs(t, g.Spin(0), ErrInvalidBet)
	require.ErrorIs(t, g.Spin(101), ErrInsufficientFunds)
	assert.Equal(t, 100, f.balance())
	assert.False(t, f.sched.HasPending(string(Slots)))
}

func TestSlotsResetMidSpin(t *testing.T) {
	f := newFixture(t, 1000)
	g := NewSlots(f.deps)
	require.NoError(t, g.Spin(10))
	f.sched.Drain(3)
	g.Reset()
	assert.Zero(t, f.drain())
	assert.Equal(t, 990, f.balance())
	assert.Zero(t, f.seq.Consumed())
}
