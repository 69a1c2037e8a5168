package cards

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/minicasino/internal/randutil"
)

func TestNewDeckHasEveryCardOnce(t *testing.T) {
	d := NewDeck()
	require.Equal(t, DeckSize, d.Remaining())

	seen := make(map[Card]bool)
	for _, c := range d.Cards() {
		require.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
	}
	assert.Len(t, seen, DeckSize)
}

func TestShuffleIsPermutation(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		d := NewDeck()
		before := d.Cards()
		d.Shuffle(randutil.New(seed))
		after := d.Cards()

		require.Len(t, after, DeckSize)
		assert.ElementsMatch(t, before, after, "seed %d", seed)
	}
}

func TestShuffleFisherYatesOrder(t *testing.T) {
	// With every float at 0 each position i swaps with index 0, which rotates
	// the original first card to the end of the deck.
	d := NewDeck()
	first := d.Cards()[0]
	d.Shuffle(randutil.NewSequence(0))
	got := d.Cards()
	assert.Equal(t, first, got[len(got)-1])

	// Floats close to 1 pick j == i each time, leaving the deck untouched.
	d = NewDeck()
	before := d.Cards()
	d.Shuffle(randutil.NewSequence(0.999999))
	assert.Equal(t, before, d.Cards())
}

func TestShuffleIsReproducible(t *testing.T) {
	a := NewShuffledDeck(randutil.New(7))
	b := NewShuffledDeck(randutil.New(7))
	assert.Equal(t, a.Cards(), b.Cards())
}

func TestDrawUntilEmpty(t *testing.T) {
	d := NewDeckFrom(MustParseCards("As Kh 2c"))

	c, err := d.Draw()
	require.NoError(t, err)
	assert.Equal(t, NewCard(Ace, Spades), c)

	rest, err := d.DrawN(2)
	require.NoError(t, err)
	assert.Equal(t, MustParseCards("Kh 2c"), rest)

	assert.True(t, d.IsEmpty())
	_, err = d.Draw()
	assert.ErrorIs(t, err, ErrDeckEmpty)
}

func TestDrawNIsAllOrNothing(t *testing.T) {
	d := NewDeckFrom(MustParseCards("As Kh"))
	_, err := d.DrawN(3)
	require.ErrorIs(t, err, ErrDeckEmpty)
	assert.Equal(t, 2, d.Remaining())
}
