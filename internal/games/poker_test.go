package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Deal order: player hole, opponent hole, flop, turn, river.
const pokerAcesVsNothing = "As Ad 2c 7d Ah 9s 4c Kd 3h"

func TestPokerDealAntesBothSeats(t *testing.T) {
	f := newFixture(t, 1000)
	f.stack(pokerAcesVsNothing)
	g := NewPoker(f.deps)

	require.NoError(t, g.Deal(50))
	assert.Equal(t, 900, f.balance())
	assert.Equal(t, 100, g.Pot())
	assert.Equal(t, Preflop, g.Street())
	assert.Equal(t, mustCards(t, "As Ad"), g.PlayerHand())
	assert.Equal(t, mustCards(t, "2c 7d"), g.Opponent())
	assert.Equal(t, PlayerTurn, g.Phase())
}

func TestPokerAnteNeedsDoubleBalance(t *testing.T) {
	f := newFixture(t, 1000)
	g := NewPoker(f.deps)
	require.ErrorIs(t, g.Deal(501), ErrInsufficientFunds)
	// 2 × this ante wraps negative in int64.
	require.ErrorIs(t, g.Deal(4611686018427387904), ErrInsufficientFunds)
	require.ErrorIs(t, g.Deal(0), ErrInvalidBet)
	assert.Zero(t, g.Pot())
	assert.Equal(t, 1000, f.balance())
	require.NoError(t, g.Deal(500))
	assert.Zero(t, f.balance())
}

func TestPokerCheckThroughToShowdown(t *testing.T) {
	f := newFixture(t, 1000, 0.1)
	f.stack(pokerAcesVsNothing)
	g := NewPoker(f.deps)
	require.NoError(t, g.Deal(50))

	for _, want := range []Street{Flop, Turn, River} {
		require.NoError(t, g.Check())
		assert.Equal(t, want, g.Street())
		assert.Equal(t, OpponentTurn, g.Phase())
		require.ErrorIs(t, g.Check(), ErrIllegalAction, "player waits for the opponent")

		require.True(t, f.sched.RunNext())
		assert.Equal(t, PlayerTurn, g.Phase())
		assert.Equal(t, "AI checks", f.lastNote().Text)
	}
	assert.Equal(t, mustCards(t, "Ah 9s 4c Kd 3h"), g.Board())
	assert.Equal(t, 100, g.Pot())

	require.NoError(t, g.Check())
	assert.Equal(t, Idle, g.Phase())
	assert.Equal(t, 1000, f.balance(), "trips win the 100 chip pot")
	res, _ := g.LastResult()
	assert.Equal(t, "win Three of a Kind", res.Outcome)
}

func TestPokerOpponentBetsOnCoinFlip(t *testing.T) {
	f := newFixture(t, 1000, 0.9)
	f.stack(pokerAcesVsNothing)
	g := NewPoker(f.deps)
	require.NoError(t, g.Deal(50))

	require.NoError(t, g.Check())
	require.True(t, f.sched.RunNext())
	assert.Equal(t, 150, g.Pot())
	assert.Equal(t, 900, f.balance(), "opponent chips do not come from the wallet")
	assert.Equal(t, "AI bets 50", f.lastNote().Text)
}

func TestPokerStrongOpponentBetsWithoutCoinFlip(t *testing.T) {
	// Opponent holds quads on the flop.
	f := newFixture(t, 1000, 0.0)
	f.stack("2c 3d 9c 9d 9h 9s 4c")
	g := NewPoker(f.deps)
	require.NoError(t, g.Deal(10))
	require.NoError(t, g.Check())
	require.True(t, f.sched.RunNext())
	assert.Equal(t, 30, g.Pot())
	assert.Zero(t, f.seq.Consumed())
}

func TestPokerBetCalled(t *testing.T) {
	f := newFixture(t, 1000, 0.9, 0.1)
	f.stack(pokerAcesVsNothing)
	g := NewPoker(f.deps)
	require.NoError(t, g.Deal(50))

	require.NoError(t, g.Bet())
	assert.Equal(t, 850, f.balance())
	assert.Equal(t, 150, g.Pot())
	assert.Equal(t, OpponentTurn, g.Phase())
	require.ErrorIs(t, g.Fold(), ErrIllegalAction)

	require.True(t, f.sched.RunNext())
	assert.Equal(t, 200, g.Pot())
	assert.Equal(t, Flop, g.Street(), "a call advances like a check")
	assert.Equal(t, []string{"ai-action"}, f.sched.Pending(string(Poker)))
	assert.Equal(t, 200, g.Wager())
}

func TestPokerBetFolded(t *testing.T) {
	f := newFixture(t, 1000, 0.2)
	f.stack(pokerAcesVsNothing)
	g := NewPoker(f.deps)
	require.NoError(t, g.Deal(50))
	require.NoError(t, g.Bet())

	require.True(t, f.sched.RunNext())
	assert.Equal(t, Idle, g.Phase())
	assert.Equal(t, 850+150, f.balance())
	res, _ := g.LastResult()
	assert.Equal(t, "opponent fold", res.Outcome)
	assert.Equal(t, 150, res.Payout)
}

func TestPokerBetNeedsFunds(t *testing.T) {
	f := newFixture(t, 100)
	f.stack(pokerAcesVsNothing)
	g := NewPoker(f.deps)
	require.NoError(t, g.Deal(50))
	assert.Zero(t, f.balance())

	require.ErrorIs(t, g.Bet(), ErrInsufficientFunds)
	assert.Equal(t, 100, g.Pot())
	assert.Equal(t, PlayerTurn, g.Phase())
}

func TestPokerFold(t *testing.T) {
	f := newFixture(t, 1000)
	f.stack(pokerAcesVsNothing)
	g := NewPoker(f.deps)
	require.NoError(t, g.Deal(50))
	require.NoError(t, g.Fold())
	assert.Equal(t, 900, f.balance())
	assert.Equal(t, Idle, g.Phase())
}

func TestPokerTieSplitsPot(t *testing.T) {
	f := newFixture(t, 1000, 0.1)
	// Both play the pair of kings on the board.
	f.stack("2c 3d 2h 3s Ks Kd 9h 8c 6s")
	g := NewPoker(f.deps)
	require.NoError(t, g.Deal(25))
	for i := 0; i < 3; i++ {
		require.NoError(t, g.Check())
		require.True(t, f.sched.RunNext())
	}
	require.NoError(t, g.Check())
	assert.Equal(t, 950+25, f.balance())
	res, _ := g.LastResult()
	assert.Equal(t, "tie Pair", res.Outcome)
}

func TestPokerOpponentWins(t *testing.T) {
	f := newFixture(t, 1000, 0.1)
	f.stack("2c 7d As Ad Ah 9s 4c Kd 3h")
	g := NewPoker(f.deps)
	require.NoError(t, g.Deal(50))
	for i := 0; i < 3; i++ {
		require.NoError(t, g.Check())
		require.True(t, f.sched.RunNext())
	}
	require.NoError(t, g.Check())
	assert.Equal(t, 900, f.balance())
	assert.Contains(t, g.Status(), "A♠", "opponent cards are shown after showdown")
}

func TestPokerResetDropsPendingResponse(t *testing.T) {
	f := newFixture(t, 1000, 0.2)
	f.stack(pokerAcesVsNothing)
	g := NewPoker(f.deps)
	require.NoError(t, g.Deal(50))
	require.NoError(t, g.Bet())

	g.Reset()
	assert.Zero(t, f.drain())
	assert.Equal(t, 850, f.balance())
	assert.Zero(t, g.Pot())
}
