package cards

// HandType enumerates the categories recognised by EvaluateHand, ordered from
// weakest to strongest. Straights are not detected; Straight keeps its slot so
// the ordinals stay stable if it is ever added.
type HandType uint8

const (
	HighCard     HandType = 0
	Pair         HandType = 1
	TwoPair      HandType = 2
	ThreeOfAKind HandType = 3
	Straight     HandType = 4
	Flush        HandType = 5
	FullHouse    HandType = 6
	FourOfAKind  HandType = 7
)

// String returns a human-readable hand description.
func (ht HandType) String() string {
	switch ht {
	case HighCard:
		return "High Card"
	case Pair:
		return "Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	default:
		return "Unknown"
	}
}

// HandRank is the result of EvaluateHand. Ordinal totally orders categories;
// two hands of the same category tie, kickers are not compared.
type HandRank struct {
	Type HandType
}

// Ordinal returns the comparable strength of the hand.
func (hr HandRank) Ordinal() int {
	return int(hr.Type)
}

// Compare returns 1 if hr beats other, -1 if it loses and 0 on a tie.
func (hr HandRank) Compare(other HandRank) int {
	switch {
	case hr.Ordinal() > other.Ordinal():
		return 1
	case hr.Ordinal() < other.Ordinal():
		return -1
	default:
		return 0
	}
}

func (hr HandRank) String() string {
	return hr.Type.String()
}

// EvaluateHand classifies any number of cards (typically hole plus community)
// from rank and suit multiplicities alone.
func EvaluateHand(cards ...Card) HandRank {
	var rankCounts [Ace + 1]int
	var suitCounts [len(Suits)]int
	for _, c := range cards {
		if c.Rank.Valid() {
			rankCounts[c.Rank]++
		}
		if c.Suit >= Spades && c.Suit <= Clubs {
			suitCounts[c.Suit]++
		}
	}

	// Highest and second highest multiplicity across ranks.
	first, second := 0, 0
	for _, n := range rankCounts {
		switch {
		case n > first:
			first, second = n, first
		case n > second:
			second = n
		}
	}

	flush := false
	for _, n := range suitCounts {
		if n >= 5 {
			flush = true
			break
		}
	}

	switch {
	case first >= 4:
		return HandRank{Type: FourOfAKind}
	case first == 3 && second == 2:
		return HandRank{Type: FullHouse}
	case flush:
		return HandRank{Type: Flush}
	case first == 3:
		return HandRank{Type: ThreeOfAKind}
	case first == 2 && second == 2:
		return HandRank{Type: TwoPair}
	case first == 2:
		return HandRank{Type: Pair}
	default:
		return HandRank{Type: HighCard}
	}
}
