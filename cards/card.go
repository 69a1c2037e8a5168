package cards

import (
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit int

const (
	Spades Suit = iota
	Hearts
	Diamonds
	Clubs
)

// Suits lists every suit in deck construction order.
var Suits = [...]Suit{Spades, Hearts, Diamonds, Clubs}

// String returns the symbol for a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return "?"
	}
}

// Letter returns the single-letter code used by ParseCard.
func (s Suit) Letter() string {
	switch s {
	case Spades:
		return "s"
	case Hearts:
		return "h"
	case Diamonds:
		return "d"
	case Clubs:
		return "c"
	default:
		return "?"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank. The numeric value is Ace-high (Two=2 .. Ace=14);
// games that value the Ace low use Low.
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Ranks lists every rank from Two to Ace.
var Ranks = [...]Rank{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

// String returns the display form of a rank ("10" for ten).
func (r Rank) String() string {
	switch {
	case r >= Two && r <= Ten:
		return fmt.Sprintf("%d", int(r))
	case r == Jack:
		return "J"
	case r == Queen:
		return "Q"
	case r == King:
		return "K"
	case r == Ace:
		return "A"
	default:
		return "?"
	}
}

// Low returns the Ace-low value: Ace=1, Two=2 .. King=13.
func (r Rank) Low() int {
	if r == Ace {
		return 1
	}
	return int(r)
}

// Valid reports whether r is one of the thirteen ranks.
func (r Rank) Valid() bool {
	return r >= Two && r <= Ace
}

// ParseRank parses "A", "K", "Q", "J", "T"/"10" and "2".."9".
func ParseRank(s string) (Rank, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A", "1":
		return Ace, nil
	case "K":
		return King, nil
	case "Q":
		return Queen, nil
	case "J":
		return Jack, nil
	case "T", "10":
		return Ten, nil
	case "9":
		return Nine, nil
	case "8":
		return Eight, nil
	case "7":
		return Seven, nil
	case "6":
		return Six, nil
	case "5":
		return Five, nil
	case "4":
		return Four, nil
	case "3":
		return Three, nil
	case "2":
		return Two, nil
	default:
		return 0, fmt.Errorf("invalid rank %q", s)
	}
}

func parseSuit(s string) (Suit, error) {
	switch strings.ToLower(s) {
	case "s", "♠":
		return Spades, nil
	case "h", "♥":
		return Hearts, nil
	case "d", "♦":
		return Diamonds, nil
	case "c", "♣":
		return Clubs, nil
	default:
		return 0, fmt.Errorf("invalid suit %q", s)
	}
}

// Card is an immutable rank and suit pair
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a new card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// String returns the display form of a card (e.g. "A♠", "10♥")
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Code returns the compact two-character form (e.g. "As", "Th").
func (c Card) Code() string {
	r := c.Rank.String()
	if c.Rank == Ten {
		r = "T"
	}
	return r + c.Suit.Letter()
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// ParseCard parses a single card such as "As", "Th", "10d" or "7♣".
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) < 2 {
		return Card{}, fmt.Errorf("invalid card %q", s)
	}
	rank, err := ParseRank(string(runes[:len(runes)-1]))
	if err != nil {
		return Card{}, fmt.Errorf("card %q: %w", s, err)
	}
	suit, err := parseSuit(string(runes[len(runes)-1]))
	if err != nil {
		return Card{}, fmt.Errorf("card %q: %w", s, err)
	}
	return NewCard(rank, suit), nil
}

// ParseCards parses a whitespace separated list of cards ("As Kh 10d").
func ParseCards(s string) ([]Card, error) {
	fields := strings.Fields(s)
	out := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// MustParseCards is ParseCards for fixtures; it panics on malformed input.
func MustParseCards(s string) []Card {
	out, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return out
}
