package games

import (
	"fmt"
	"strings"

	"github.com/lox/minicasino/cards"
)

// Opponent policy thresholds.
const (
	aiBetOrdinal   = 5   // bets outright above a Flush
	aiBetCoinFlip  = 0.5 // otherwise bets when the draw exceeds this
	aiCallFoldLine = 0.3 // calls a player bet when the draw exceeds this
)

// Street is the community card stage.
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
)

func (s Street) String() string {
	switch s {
	case Preflop:
		return "pre-flop"
	case Flop:
		return "flop"
	case Turn:
		return "turn"
	case River:
		return "river"
	}
	return "unknown"
}

// PokerTable plays heads-up hold'em against one computer opponent.
type PokerTable struct {
	base
	deck       *cards.Deck
	player     []cards.Card
	opponent   []cards.Card
	board      []cards.Card
	pot        int
	currentBet int
	showdown   bool
}

func NewPoker(deps Deps) *PokerTable {
	return &PokerTable{base: newBase(Poker, deps)}
}

// Deal antes for both seats (the player covers 2×ante) and deals hole cards.
func (g *PokerTable) Deal(ante int) error {
	if err := g.requirePhase(Idle, "deal"); err != nil {
		return err
	}
	if err := g.checkBet(ante); err != nil {
		return err
	}
	if err := g.checkStake(ante, 2); err != nil {
		return err
	}
	if err := g.stake(ante * 2); err != nil {
		return err
	}

	g.currentBet = ante
	g.pot = ante * 2
	g.board = nil
	g.showdown = false
	g.deck = g.deps.Decks(g.deps.Rand)
	hole, err := g.draw(g.deck, 4)
	if err != nil {
		g.settle(g.pot, "misdeal", "Misdeal, ante returned")
		return err
	}
	g.player = []cards.Card{hole[0], hole[1]}
	g.opponent = []cards.Card{hole[2], hole[3]}
	g.phase = PlayerTurn
	g.say("Pre-flop: check or bet?")
	return nil
}

// Check deals the next street, or goes to showdown once the river is out.
func (g *PokerTable) Check() error {
	if err := g.requirePhase(PlayerTurn, "check"); err != nil {
		return err
	}
	return g.advance()
}

// Bet puts the current bet in the pot; the opponent answers after a pause.
func (g *PokerTable) Bet() error {
	if err := g.requirePhase(PlayerTurn, "bet"); err != nil {
		return err
	}
	if err := g.raise(g.currentBet); err != nil {
		return err
	}
	g.pot += g.currentBet
	g.phase = OpponentTurn
	g.after("ai-response", g.deps.Delays.AIResponse, g.respond)
	return nil
}

// Fold concedes the pot.
func (g *PokerTable) Fold() error {
	if err := g.requirePhase(PlayerTurn, "fold"); err != nil {
		return err
	}
	g.settle(0, "fold", "You folded. AI wins!")
	return nil
}

// Street reports how far the board has been dealt.
func (g *PokerTable) Street() Street {
	switch len(g.board) {
	case 0:
		return Preflop
	case 3:
		return Flop
	case 4:
		return Turn
	default:
		return River
	}
}

// Pot returns the chips in the middle.
func (g *PokerTable) Pot() int { return g.pot }

func (g *PokerTable) Board() []cards.Card {
	return append([]cards.Card(nil), g.board...)
}

func (g *PokerTable) PlayerHand() []cards.Card {
	return append([]cards.Card(nil), g.player...)
}

func (g *PokerTable) advance() error {
	if len(g.board) >= 5 {
		g.finish()
		return nil
	}
	n := 1
	if len(g.board) == 0 {
		n = 3
	}
	drawn, err := g.draw(g.deck, n)
	if err != nil {
		return g.reject(err)
	}
	g.board = append(g.board, drawn...)
	g.say("Dealt the %s: %s", g.Street(), formatCards(drawn))

	g.phase = OpponentTurn
	strength := cards.EvaluateHand(append(g.Opponent(), g.board...)...)
	g.after("ai-action", g.deps.Delays.AITurn, func() { g.opponentAct(strength) })
	return nil
}

func (g *PokerTable) opponentAct(strength cards.HandRank) {
	if strength.Ordinal() > aiBetOrdinal || g.deps.Rand.Float64() > aiBetCoinFlip {
		g.pot += g.currentBet
		g.say("AI bets %d", g.currentBet)
	} else {
		g.say("AI checks")
	}
	g.phase = PlayerTurn
}

func (g *PokerTable) respond() {
	if g.deps.Rand.Float64() > aiCallFoldLine {
		g.pot += g.currentBet
		g.say("AI calls your bet")
		g.phase = PlayerTurn
		if err := g.advance(); err != nil {
			g.logger.Error("Could not advance after call", "error", err)
		}
		return
	}
	g.settle(g.pot, "opponent fold", fmt.Sprintf("AI folds. You win %d chips!", g.pot))
}

func (g *PokerTable) finish() {
	g.showdown = true
	mine := cards.EvaluateHand(append(g.PlayerHand(), g.board...)...)
	theirs := cards.EvaluateHand(append(g.Opponent(), g.board...)...)

	switch mine.Compare(theirs) {
	case 1:
		g.settle(g.pot, "win "+mine.String(), fmt.Sprintf("You win %d chips with %s!", g.pot, mine))
	case -1:
		g.settle(0, "lose "+theirs.String(), fmt.Sprintf("AI wins with %s", theirs))
	default:
		split := g.pot / 2
		g.settle(split, "tie "+mine.String(), fmt.Sprintf("Tie with %s, %d chips returned", mine, split))
	}
}

// Opponent returns the computer's hole cards.
func (g *PokerTable) Opponent() []cards.Card {
	return append([]cards.Card(nil), g.opponent...)
}

func (g *PokerTable) Reset() {
	g.abandon()
	g.deck = nil
	g.player = nil
	g.opponent = nil
	g.board = nil
	g.pot = 0
	g.currentBet = 0
	g.showdown = false
}

func (g *PokerTable) Status() string {
	if len(g.player) == 0 {
		return "Poker: ante with 'deal <amount>'"
	}
	var b strings.Builder
	if g.showdown {
		fmt.Fprintf(&b, "AI:    %s (%s)\n", formatCards(g.opponent), cards.EvaluateHand(append(g.Opponent(), g.board...)...))
	} else {
		b.WriteString("AI:    ?? ??\n")
	}
	fmt.Fprintf(&b, "Board: %s\n", formatCards(g.board))
	fmt.Fprintf(&b, "You:   %s (%s)\n", formatCards(g.player), cards.EvaluateHand(append(g.PlayerHand(), g.board...)...))
	fmt.Fprintf(&b, "Pot: %d  Bet: %d  [%s, %s]", g.pot, g.currentBet, g.Street(), g.phase)
	return b.String()
}
