package games

import (
	"fmt"
	"strings"

	"github.com/lox/minicasino/cards"
	"github.com/lox/minicasino/internal/ledger"
)

// DealerStandsOn is the total at which the dealer stops drawing.
const DealerStandsOn = 17

// BlackjackValue totals a hand, counting aces as 11 and demoting them to 1
// one at a time while the total is over 21.
func BlackjackValue(hand []cards.Card) int {
	total, aces := 0, 0
	for _, c := range hand {
		switch {
		case c.Rank == cards.Ace:
			total += 11
			aces++
		case c.Rank >= cards.Jack:
			total += 10
		default:
			total += int(c.Rank)
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

// IsNatural reports whether hand is a two card 21.
func IsNatural(hand []cards.Card) bool {
	return len(hand) == 2 && BlackjackValue(hand) == 21
}

// BlackjackTable plays one player against the dealer.
type BlackjackTable struct {
	base
	deck     *cards.Deck
	player   []cards.Card
	dealer   []cards.Card
	revealed bool
}

func NewBlackjack(deps Deps) *BlackjackTable {
	return &BlackjackTable{base: newBase(Blackjack, deps)}
}

// Deal stakes bet and deals two cards each, player first.
func (g *BlackjackTable) Deal(bet int) error {
	if err := g.requirePhase(Idle, "deal"); err != nil {
		return err
	}
	if err := g.stake(bet); err != nil {
		return err
	}

	g.deck = g.deps.Decks(g.deps.Rand)
	g.revealed = false
	hands, err := g.draw(g.deck, 4)
	if err != nil {
		g.settle(bet, "misdeal", "Misdeal, bet returned")
		return err
	}
	g.player = []cards.Card{hands[0], hands[1]}
	g.dealer = []cards.Card{hands[2], hands[3]}
	g.phase = PlayerTurn
	g.logger.Debug("Dealt", "player", g.player, "dealer_up", g.dealer[0])

	if IsNatural(g.player) {
		g.say("Blackjack!")
		g.phase = DealerTurn
		g.after("natural-stand", g.deps.Delays.NaturalStand, g.reveal)
	}
	return nil
}

// Hit draws one card. A bust settles immediately and 21 stands automatically.
func (g *BlackjackTable) Hit() error {
	if err := g.requirePhase(PlayerTurn, "hit"); err != nil {
		return err
	}
	drawn, err := g.draw(g.deck, 1)
	if err != nil {
		return g.reject(err)
	}
	g.player = append(g.player, drawn[0])

	switch v := BlackjackValue(g.player); {
	case v > 21:
		g.revealed = true
		g.settle(0, "bust", fmt.Sprintf("Bust with %d! Dealer wins", v))
	case v == 21:
		g.phase = DealerTurn
		g.reveal()
	}
	return nil
}

// Stand ends the player's turn; the dealer then draws one card per step.
func (g *BlackjackTable) Stand() error {
	if err := g.requirePhase(PlayerTurn, "stand"); err != nil {
		return err
	}
	g.phase = DealerTurn
	g.reveal()
	return nil
}

// Hint reveals whether the dealer already stands. Needs the dealerTell upgrade.
func (g *BlackjackTable) Hint() (bool, error) {
	if !g.deps.Wallet.HasUpgrade(ledger.DealerTell) {
		return false, g.reject(illegal("hint needs the %s upgrade", ledger.DealerTell))
	}
	if err := g.requirePhase(PlayerTurn, "hint"); err != nil {
		return false, err
	}
	stands := BlackjackValue(g.dealer) >= DealerStandsOn
	if stands {
		g.say("Dealer tell: the dealer stands")
	} else {
		g.say("Dealer tell: the dealer will draw")
	}
	return stands, nil
}

func (g *BlackjackTable) reveal() {
	g.revealed = true
	g.after("dealer-draw", g.deps.Delays.DealerDraw, g.dealerStep)
}

func (g *BlackjackTable) dealerStep() {
	if BlackjackValue(g.dealer) >= DealerStandsOn {
		g.finish()
		return
	}
	drawn, err := g.draw(g.deck, 1)
	if err != nil {
		g.logger.Error("Dealer could not draw", "error", err)
		g.finish()
		return
	}
	g.dealer = append(g.dealer, drawn[0])
	g.after("dealer-draw", g.deps.Delays.DealerDraw, g.dealerStep)
}

func (g *BlackjackTable) finish() {
	bet := g.wager
	player, dealer := BlackjackValue(g.player), BlackjackValue(g.dealer)
	switch {
	case dealer > 21 || player > dealer:
		if IsNatural(g.player) {
			win := bet * 5 / 2
			g.settle(win, "blackjack", fmt.Sprintf("BLACKJACK! You win %d chips!", win))
			return
		}
		g.settle(bet*2, "win", fmt.Sprintf("You win %d chips!", bet*2))
	case player < dealer:
		g.settle(0, "lose", fmt.Sprintf("Dealer wins with %d", dealer))
	default:
		g.settle(bet, "push", "Push! Bet returned")
	}
}

// Reset clears the table. A staked bet is forfeited.
func (g *BlackjackTable) Reset() {
	g.abandon()
	g.deck = nil
	g.player = nil
	g.dealer = nil
	g.revealed = false
}

// PlayerHand returns a copy of the player's cards.
func (g *BlackjackTable) PlayerHand() []cards.Card {
	return append([]cards.Card(nil), g.player...)
}

// DealerHand returns the dealer's cards; the hole card is withheld until the
// dealer's turn.
func (g *BlackjackTable) DealerHand() []cards.Card {
	if g.revealed || len(g.dealer) < 2 {
		return append([]cards.Card(nil), g.dealer...)
	}
	return []cards.Card{g.dealer[0]}
}

func (g *BlackjackTable) Status() string {
	if len(g.player) == 0 {
		return "Blackjack: place a bet with 'deal <amount>'"
	}
	var b strings.Builder
	if g.revealed {
		fmt.Fprintf(&b, "Dealer: %s (%d)\n", formatCards(g.dealer), BlackjackValue(g.dealer))
	} else {
		fmt.Fprintf(&b, "Dealer: %s ??\n", g.dealer[0])
	}
	fmt.Fprintf(&b, "You:    %s (%d)\n", formatCards(g.player), BlackjackValue(g.player))
	fmt.Fprintf(&b, "Bet: %d  [%s]", g.wager, g.phase)
	return b.String()
}
