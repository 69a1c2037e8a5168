package games

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/minicasino/cards"
	"github.com/lox/minicasino/internal/ledger"
	"github.com/lox/minicasino/internal/randutil"
)

// Column tops are dealt at indexes 0, 2, 5, ... so this leaves As alone in
// column 1, 2s over a face down 3s in column 2, and Kd on top of column 3.
const solitaireStack = "As 3s 2s 4h 5h Kd"

func TestSolitaireLayout(t *testing.T) {
	f := newFixture(t, 1000)
	g := NewSolitaire(f.deps)
	require.NoError(t, g.Start(100))
	assert.Equal(t, 900, f.balance())
	assert.Equal(t, PlayerTurn, g.Phase())

	dealt := 0
	for col := 0; col < tableauColumns; col++ {
		column := g.Column(col)
		require.Len(t, column, col+1)
		for row, c := range column {
			assert.Equal(t, row == col, c.FaceUp, "column %d row %d", col, row)
		}
		dealt += len(column)
	}
	assert.Equal(t, 28, dealt)
	assert.Equal(t, 24, g.StockSize())
	assert.Nil(t, g.Column(-1))
	assert.Nil(t, g.Column(tableauColumns))
	assert.Zero(t, g.WasteSize())
	assert.Zero(t, g.Moves())
}

func TestSolitaireDrawAndRecycle(t *testing.T) {
	f := newFixture(t, 1000)
	g := NewSolitaire(f.deps)
	require.NoError(t, g.Start(100))

	reference := cards.NewShuffledDeck(randutil.NewSequence())
	_, err := reference.DrawN(28)
	require.NoError(t, err)
	next, err := reference.Draw()
	require.NoError(t, err)

	require.NoError(t, g.DrawFromStock())
	top, ok := g.WasteTop()
	require.True(t, ok)
	assert.Equal(t, next, top, "stock deals in deck order")
	assert.Equal(t, 1, g.Moves())

	for g.StockSize() > 0 {
		require.NoError(t, g.DrawFromStock())
	}
	assert.Equal(t, 24, g.WasteSize())
	assert.Equal(t, 24, g.Moves())

	require.NoError(t, g.DrawFromStock())
	assert.Equal(t, 24, g.StockSize(), "recycling turns the waste back over")
	assert.Zero(t, g.WasteSize())
	assert.Equal(t, 24, g.Moves(), "recycling is not a move")

	require.NoError(t, g.DrawFromStock())
	top, _ = g.WasteTop()
	assert.Equal(t, next, top)
}

func TestSolitaireDrawWithNothingLeft(t *testing.T) {
	f := newFixture(t, 1000)
	g := NewSolitaire(f.deps)
	require.NoError(t, g.Start(100))
	g.stock, g.waste = nil, nil
	require.ErrorIs(t, g.DrawFromStock(), ErrIllegalAction)
}

func TestSolitaireFoundationMoves(t *testing.T) {
	f := newFixture(t, 1000)
	f.stack(solitaireStack)
	g := NewSolitaire(f.deps)
	require.NoError(t, g.Start(100))

	require.False(t, g.Column(1)[0].FaceUp)
	require.NoError(t, g.MoveColumnToFoundation(0))
	require.NoError(t, g.MoveColumnToFoundation(1))
	assert.True(t, g.Column(1)[0].FaceUp, "3s turns up once 2s leaves")
	require.NoError(t, g.MoveColumnToFoundation(1))

	assert.Empty(t, g.Column(0))
	assert.Empty(t, g.Column(1))
	assert.Equal(t, 3, g.FoundationCount())
	assert.Equal(t, 3, g.Moves())
	assert.Contains(t, g.Status(), "[3♠]")
}

func TestSolitaireIllegalMoves(t *testing.T) {
	f := newFixture(t, 1000)
	f.stack(solitaireStack)
	g := NewSolitaire(f.deps)
	require.ErrorIs(t, g.MoveColumnToFoundation(0), ErrIllegalAction, "not started")
	require.NoError(t, g.Start(100))

	require.ErrorIs(t, g.MoveColumnToFoundation(2), ErrIllegalAction, "Kd has nowhere to go")
	require.ErrorIs(t, g.MoveColumnToFoundation(7), ErrIllegalAction)
	require.ErrorIs(t, g.MoveColumnToFoundation(-1), ErrIllegalAction)
	require.ErrorIs(t, g.MoveWasteToFoundation(), ErrIllegalAction, "waste is empty")
	require.ErrorIs(t, g.MoveColumnToFoundation(1), ErrIllegalAction, "2s needs the ace first")
	assert.Len(t, g.Column(2), 3)
	assert.Zero(t, g.Moves())
}

func TestSolitaireWinPaysTriple(t *testing.T) {
	f := newFixture(t, 1000)
	g := NewSolitaire(f.deps)
	require.NoError(t, g.Start(100))

	ascending := append([]cards.Rank{cards.Ace}, cards.Ranks[:12]...)
	g.tableau = [tableauColumns][]PlacedCard{}
	g.stock = nil
	for i, suit := range cards.Suits {
		g.foundation[i] = nil
		for _, r := range ascending {
			g.foundation[i] = append(g.foundation[i], cards.Card{Rank: r, Suit: suit})
		}
	}
	g.foundation[0] = g.foundation[0][:12]
	g.waste = []PlacedCard{{Card: cards.Card{Rank: cards.King, Suit: cards.Spades}, FaceUp: true}}

	require.NoError(t, g.MoveWasteToFoundation())
	assert.Equal(t, Idle, g.Phase())
	assert.Equal(t, 900+300, f.balance())
	res, ok := g.LastResult()
	require.True(t, ok)
	assert.Equal(t, "win", res.Outcome)
}

func TestSolitaireGiveUpRefundsPlacedShare(t *testing.T) {
	f := newFixture(t, 1000)
	f.stack(solitaireStack)
	g := NewSolitaire(f.deps)
	require.NoError(t, g.Start(100))
	require.NoError(t, g.MoveColumnToFoundation(0))
	require.NoError(t, g.MoveColumnToFoundation(1))

	require.NoError(t, g.GiveUp())
	assert.Equal(t, 900+3, f.balance(), "floor(100 × 2/52)")
	assert.Equal(t, Idle, g.Phase())
	require.ErrorIs(t, g.GiveUp(), ErrIllegalAction)
}

func TestSolitaireGiveUpWithNothingPlaced(t *testing.T) {
	f := newFixture(t, 1000)
	g := NewSolitaire(f.deps)
	require.NoError(t, g.Start(100))
	require.NoError(t, g.GiveUp())
	assert.Equal(t, 900, f.balance())
	res, _ := g.LastResult()
	assert.Zero(t, res.Payout)
}

func TestSolitaireRemainingNeedsUpgrade(t *testing.T) {
	f := newFixture(t, 1000)
	f.stack(solitaireStack)
	g := NewSolitaire(f.deps)
	require.NoError(t, g.Start(100))

	_, err := g.Remaining()
	require.ErrorIs(t, err, ErrIllegalAction)

	require.NoError(t, f.ledger.PurchaseUpgrade(ledger.CardCounter, 0))
	require.NoError(t, g.MoveColumnToFoundation(0))
	counts, err := g.Remaining()
	require.NoError(t, err)
	total := 0
	for _, n := range counts {
		total += n
	}
	assert.Equal(t, 51, total)
	assert.Equal(t, 3, counts[cards.Ace])
}

func TestSolitaireResetClearsTable(t *testing.T) {
	f := newFixture(t, 1000)
	g := NewSolitaire(f.deps)
	require.NoError(t, g.Start(100))
	g.Reset()
	assert.Equal(t, Idle, g.Phase())
	assert.Zero(t, g.StockSize())
	assert.Contains(t, g.Status(), "start")
	assert.Equal(t, 900, f.balance())
}
