package games

import (
	"fmt"
	"strings"

	"github.com/lox/minicasino/cards"
	"github.com/lox/minicasino/internal/ledger"
)

const (
	tableauColumns  = 7
	foundationPiles = 4
	solitaireWin    = 3
)

// PlacedCard is a card with its facing.
type PlacedCard struct {
	cards.Card
	FaceUp bool
}

// SolitaireGame is Klondike with foundation-only moves: cards go from the
// waste or a column top straight to a foundation.
type SolitaireGame struct {
	base
	tableau    [tableauColumns][]PlacedCard
	foundation [foundationPiles][]cards.Card
	stock      []PlacedCard
	waste      []PlacedCard
	moves      int
}

func NewSolitaire(deps Deps) *SolitaireGame {
	return &SolitaireGame{base: newBase(Solitaire, deps)}
}

// Start stakes bet and deals column i with i+1 cards, only the last face up.
func (g *SolitaireGame) Start(bet int) error {
	if err := g.requirePhase(Idle, "start"); err != nil {
		return err
	}
	if err := g.stake(bet); err != nil {
		return err
	}

	g.clearTable()
	deck := g.deps.Decks(g.deps.Rand)
	for col := 0; col < tableauColumns; col++ {
		for row := 0; row <= col; row++ {
			drawn, err := g.draw(deck, 1)
			if err != nil {
				g.settle(bet, "misdeal", "Misdeal, bet returned")
				return err
			}
			g.tableau[col] = append(g.tableau[col], PlacedCard{Card: drawn[0], FaceUp: row == col})
		}
	}
	// The stock top is the card the deck would have dealt next.
	for _, c := range deck.Cards() {
		g.stock = append(g.stock, PlacedCard{Card: c})
	}
	g.phase = PlayerTurn
	return nil
}

// DrawFromStock turns the top stock card onto the waste. An empty stock is
// refilled from the waste, reversed and face down.
func (g *SolitaireGame) DrawFromStock() error {
	if err := g.requirePhase(PlayerTurn, "draw"); err != nil {
		return err
	}
	switch {
	case len(g.stock) > 0:
		c := g.stock[len(g.stock)-1]
		g.stock = g.stock[:len(g.stock)-1]
		c.FaceUp = true
		g.waste = append(g.waste, c)
		g.moves++
	case len(g.waste) > 0:
		g.stock = make([]PlacedCard, 0, len(g.waste))
		for i := len(g.waste) - 1; i >= 0; i-- {
			c := g.waste[i]
			c.FaceUp = false
			g.stock = append(g.stock, c)
		}
		g.waste = nil
	default:
		return g.reject(illegal("stock and waste are both empty"))
	}
	return nil
}

// MoveWasteToFoundation plays the top waste card.
func (g *SolitaireGame) MoveWasteToFoundation() error {
	if err := g.requirePhase(PlayerTurn, "move"); err != nil {
		return err
	}
	if len(g.waste) == 0 {
		return g.reject(illegal("waste is empty"))
	}
	top := g.waste[len(g.waste)-1].Card
	return g.place(top, func() { g.waste = g.waste[:len(g.waste)-1] })
}

// MoveColumnToFoundation plays the top card of tableau column col (0-6) and
// turns up the card beneath it.
func (g *SolitaireGame) MoveColumnToFoundation(col int) error {
	if err := g.requirePhase(PlayerTurn, "move"); err != nil {
		return err
	}
	if col < 0 || col >= tableauColumns {
		return g.reject(illegal("no column %d", col+1))
	}
	pile := g.tableau[col]
	if len(pile) == 0 {
		return g.reject(illegal("column %d is empty", col+1))
	}
	top := pile[len(pile)-1]
	if !top.FaceUp {
		return g.reject(illegal("top of column %d is face down", col+1))
	}
	return g.place(top.Card, func() {
		g.tableau[col] = g.tableau[col][:len(g.tableau[col])-1]
		if n := len(g.tableau[col]); n > 0 {
			g.tableau[col][n-1].FaceUp = true
		}
	})
}

// place puts c on the first foundation that accepts it and runs remove.
func (g *SolitaireGame) place(c cards.Card, remove func()) error {
	for i, pile := range g.foundation {
		if !accepts(pile, c) {
			continue
		}
		remove()
		g.foundation[i] = append(g.foundation[i], c)
		g.moves++
		if g.FoundationCount() == cards.DeckSize {
			win := g.wager * solitaireWin
			g.settle(win, "win", fmt.Sprintf("Solitaire won! %d chips!", win))
		}
		return nil
	}
	return g.reject(illegal("cannot move %s to a foundation", c))
}

func accepts(pile []cards.Card, c cards.Card) bool {
	if len(pile) == 0 {
		return c.Rank == cards.Ace
	}
	top := pile[len(pile)-1]
	return top.Suit == c.Suit && top.Rank.Low()+1 == c.Rank.Low()
}

// GiveUp ends the game, refunding floor(bet × placed/52).
func (g *SolitaireGame) GiveUp() error {
	if err := g.requirePhase(PlayerTurn, "give up"); err != nil {
		return err
	}
	placed := g.FoundationCount()
	refund := g.wager * placed / cards.DeckSize
	if refund > 0 {
		g.settle(refund, "gave up", fmt.Sprintf("%d cards placed. Returned %d chips", placed, refund))
	} else {
		g.settle(0, "gave up", fmt.Sprintf("Game over. Lost %d chips", g.wager))
	}
	return nil
}

// FoundationCount returns the number of cards on the foundations.
func (g *SolitaireGame) FoundationCount() int {
	n := 0
	for _, pile := range g.foundation {
		n += len(pile)
	}
	return n
}

// Moves returns the move counter.
func (g *SolitaireGame) Moves() int { return g.moves }

// Column returns a copy of tableau column col (0-6), bottom card first. Any
// other col yields nil.
func (g *SolitaireGame) Column(col int) []PlacedCard {
	if col < 0 || col >= tableauColumns {
		return nil
	}
	return append([]PlacedCard(nil), g.tableau[col]...)
}

// StockSize and WasteSize report the pile sizes.
func (g *SolitaireGame) StockSize() int { return len(g.stock) }
func (g *SolitaireGame) WasteSize() int { return len(g.waste) }

// WasteTop returns the playable waste card.
func (g *SolitaireGame) WasteTop() (cards.Card, bool) {
	if len(g.waste) == 0 {
		return cards.Card{}, false
	}
	return g.waste[len(g.waste)-1].Card, true
}

// Remaining counts the cards not yet on a foundation by rank. It needs the
// cardCounter upgrade.
func (g *SolitaireGame) Remaining() (map[cards.Rank]int, error) {
	if !g.deps.Wallet.HasUpgrade(ledger.CardCounter) {
		return nil, g.reject(illegal("card counts need the %s upgrade", ledger.CardCounter))
	}
	counts := make(map[cards.Rank]int)
	add := func(pile []PlacedCard) {
		for _, c := range pile {
			counts[c.Rank]++
		}
	}
	add(g.stock)
	add(g.waste)
	for _, col := range g.tableau {
		add(col)
	}
	return counts, nil
}

func (g *SolitaireGame) clearTable() {
	g.tableau = [tableauColumns][]PlacedCard{}
	g.foundation = [foundationPiles][]cards.Card{}
	g.stock = nil
	g.waste = nil
	g.moves = 0
}

func (g *SolitaireGame) Reset() {
	g.abandon()
	g.clearTable()
}

func (g *SolitaireGame) Status() string {
	if g.phase == Idle && g.FoundationCount() == 0 && len(g.stock) == 0 {
		return "Solitaire: stake with 'start <amount>'"
	}
	var b strings.Builder
	b.WriteString("Foundations:")
	for _, pile := range g.foundation {
		if len(pile) == 0 {
			b.WriteString(" [  ]")
		} else {
			fmt.Fprintf(&b, " [%s]", pile[len(pile)-1])
		}
	}
	waste := "--"
	if top, ok := g.WasteTop(); ok {
		waste = top.String()
	}
	fmt.Fprintf(&b, "\nStock: %d  Waste: %s (%d)\n", len(g.stock), waste, len(g.waste))
	for i, col := range g.tableau {
		fmt.Fprintf(&b, "%d:", i+1)
		for _, c := range col {
			if c.FaceUp {
				fmt.Fprintf(&b, " %s", c.Card)
			} else {
				b.WriteString(" ##")
			}
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Bet: %d  Moves: %d  [%s]", g.wager, g.moves, g.phase)
	return b.String()
}
