package cards

import (
	"errors"

	"github.com/lox/minicasino/internal/randutil"
)

// ErrDeckEmpty is returned when drawing from an exhausted deck.
var ErrDeckEmpty = errors.New("deck exhausted")

// DeckSize is the number of cards in a standard deck.
const DeckSize = 52

// Deck is an ordered pile of cards consumed from the end.
type Deck struct {
	cards []Card
}

// NewDeck creates an unshuffled 52-card deck, every rank of every suit once.
func NewDeck() *Deck {
	d := &Deck{cards: make([]Card, 0, DeckSize)}
	for _, suit := range Suits {
		for _, rank := range Ranks {
			d.cards = append(d.cards, NewCard(rank, suit))
		}
	}
	return d
}

// NewDeckFrom builds a deck whose next draws return cards in the given order.
func NewDeckFrom(order []Card) *Deck {
	d := &Deck{cards: make([]Card, len(order))}
	for i, c := range order {
		d.cards[len(order)-1-i] = c
	}
	return d
}

// NewShuffledDeck creates a full deck and shuffles it with src.
func NewShuffledDeck(src randutil.Source) *Deck {
	d := NewDeck()
	d.Shuffle(src)
	return d
}

// Shuffle permutes the remaining cards in place using Fisher-Yates.
func (d *Deck) Shuffle(src randutil.Source) {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := randutil.Intn(src, i+1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the next card.
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrDeckEmpty
	}
	last := len(d.cards) - 1
	c := d.cards[last]
	d.cards = d.cards[:last]
	return c, nil
}

// DrawN draws n cards or none at all.
func (d *Deck) DrawN(n int) ([]Card, error) {
	if n > len(d.cards) {
		return nil, ErrDeckEmpty
	}
	out := make([]Card, 0, n)
	for range n {
		c, _ := d.Draw()
		out = append(out, c)
	}
	return out, nil
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// IsEmpty returns true if the deck has no cards left
func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}

// Cards returns a copy of the remaining cards, last element drawn first.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}
