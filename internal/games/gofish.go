package games

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lox/minicasino/cards"
	"github.com/lox/minicasino/internal/randutil"
)

const (
	fishSeats     = 4
	fishHandSize  = 7
	fishBookCount = 13
	bookSize      = 4
)

// FishHand is one seat at the GoFish table.
type FishHand struct {
	Name  string
	Cards []cards.Card
	Books []cards.Rank
}

// Holds reports whether the hand contains rank.
func (h *FishHand) Holds(rank cards.Rank) bool {
	return slices.ContainsFunc(h.Cards, func(c cards.Card) bool { return c.Rank == rank })
}

// Ranks returns the distinct ranks held, lowest first.
func (h *FishHand) Ranks() []cards.Rank {
	var out []cards.Rank
	for _, c := range h.Cards {
		if !slices.Contains(out, c.Rank) {
			out = append(out, c.Rank)
		}
	}
	slices.Sort(out)
	return out
}

// give removes and returns every card of rank.
func (h *FishHand) give(rank cards.Rank) []cards.Card {
	var taken, kept []cards.Card
	for _, c := range h.Cards {
		if c.Rank == rank {
			taken = append(taken, c)
		} else {
			kept = append(kept, c)
		}
	}
	h.Cards = kept
	return taken
}

// CollectBooks moves every complete set of four into Books and returns the
// ranks collected. Other cards are left in place.
func (h *FishHand) CollectBooks() []cards.Rank {
	counts := make(map[cards.Rank]int)
	for _, c := range h.Cards {
		counts[c.Rank]++
	}
	var collected []cards.Rank
	for _, r := range cards.Ranks {
		if counts[r] == bookSize {
			h.give(r)
			h.Books = append(h.Books, r)
			collected = append(collected, r)
		}
	}
	return collected
}

// GoFishTable seats the player (seat 0) against three computer players.
type GoFishTable struct {
	base
	deck   *cards.Deck
	seats  [fishSeats]*FishHand
	turn   int
	pot    int
	winner int
}

func NewGoFish(deps Deps) *GoFishTable {
	g := &GoFishTable{base: newBase(GoFish, deps)}
	g.clearSeats()
	return g
}

func (g *GoFishTable) clearSeats() {
	g.seats[0] = &FishHand{Name: "You"}
	for i := 1; i < fishSeats; i++ {
		g.seats[i] = &FishHand{Name: fmt.Sprintf("AI %d", i)}
	}
	g.winner = -1
}

// Start antes for all four seats (ante×4 from the player) and deals seven
// cards each.
func (g *GoFishTable) Start(ante int) error {
	if err := g.requirePhase(Idle, "start"); err != nil {
		return err
	}
	if err := g.checkBet(ante); err != nil {
		return err
	}
	if err := g.checkStake(ante, fishSeats); err != nil {
		return err
	}
	if err := g.stake(ante * fishSeats); err != nil {
		return err
	}

	g.pot = ante * fishSeats
	g.clearSeats()
	g.deck = g.deps.Decks(g.deps.Rand)
	for i := 0; i < fishHandSize; i++ {
		for _, seat := range g.seats {
			drawn, err := g.draw(g.deck, 1)
			if err != nil {
				g.settle(g.pot, "misdeal", "Misdeal, ante returned")
				return err
			}
			seat.Cards = append(seat.Cards, drawn[0])
		}
	}
	for i := range g.seats {
		g.collect(i)
	}
	g.turn = 0
	g.phase = PlayerTurn
	g.say("Your turn! Ask an AI for a rank you hold")
	return nil
}

// Ask requests every card of rank from seat target (1-3). A hit lets the
// player ask again; a miss draws from the deck and passes the turn.
func (g *GoFishTable) Ask(rank cards.Rank, target int) error {
	if err := g.requirePhase(PlayerTurn, "ask"); err != nil {
		return err
	}
	if target < 1 || target >= fishSeats {
		return g.reject(illegal("no player %d to ask", target))
	}
	me, them := g.seats[0], g.seats[target]
	if !me.Holds(rank) {
		return g.reject(illegal("you must hold a %s to ask for it", rank))
	}
	if len(them.Cards) == 0 {
		return g.reject(illegal("%s has no cards", them.Name))
	}

	if taken := them.give(rank); len(taken) > 0 {
		me.Cards = append(me.Cards, taken...)
		g.say("Got %d %s(s) from %s!", len(taken), rank, them.Name)
		g.collect(0)
		if g.over() {
			g.finish()
			return nil
		}
		g.refill(0)
		if len(me.Cards) == 0 || len(g.targets(0)) == 0 {
			g.pass()
		}
		return nil
	}

	g.say("Go Fish! %s has no %s", them.Name, rank)
	g.fish(0)
	g.pass()
	return nil
}

// pass hands the turn on after the go-fish pause.
func (g *GoFishTable) pass() {
	g.phase = OpponentTurn
	g.after("next-turn", g.deps.Delays.FishPause, g.nextTurn)
}

func (g *GoFishTable) nextTurn() {
	for {
		if g.over() {
			g.finish()
			return
		}
		g.turn = (g.turn + 1) % fishSeats
		g.refill(g.turn)
		if len(g.seats[g.turn].Cards) > 0 {
			break
		}
		g.logger.Debug("Skipping empty seat", "seat", g.turn)
	}

	if g.turn == 0 {
		if len(g.targets(0)) == 0 {
			g.say("Nobody left to ask. Go Fish!")
			g.fish(0)
			g.pass()
			return
		}
		g.phase = PlayerTurn
		g.say("Your turn!")
		return
	}
	g.phase = OpponentTurn
	g.after("ai-turn", g.deps.Delays.FishAITurn, g.aiTurn)
}

func (g *GoFishTable) aiTurn() {
	seat := g.seats[g.turn]
	ranks := seat.Ranks()
	if len(ranks) == 0 {
		g.nextTurn()
		return
	}

	targets := g.targets(g.turn)
	if len(targets) == 0 {
		g.fish(g.turn)
		g.after("next-turn", g.deps.Delays.FishPause, g.nextTurn)
		return
	}

	rank := ranks[randutil.Intn(g.deps.Rand, len(ranks))]
	target := g.seats[targets[randutil.Intn(g.deps.Rand, len(targets))]]

	if taken := target.give(rank); len(taken) > 0 {
		seat.Cards = append(seat.Cards, taken...)
		g.say("%s got %d %s(s) from %s", seat.Name, len(taken), rank, target.Name)
		g.collect(g.turn)
		if g.over() {
			g.finish()
			return
		}
		g.after("ai-turn", g.deps.Delays.FishPause, g.aiTurn)
		return
	}

	g.say("%s asked %s for %s. Go Fish!", seat.Name, target.Name, rank)
	g.fish(g.turn)
	g.after("next-turn", g.deps.Delays.FishPause, g.nextTurn)
}

// targets lists the seats other than seat that still hold cards.
func (g *GoFishTable) targets(seat int) []int {
	var out []int
	for i, other := range g.seats {
		if i != seat && len(other.Cards) > 0 {
			out = append(out, i)
		}
	}
	return out
}

// fish draws one card for seat if the deck has any.
func (g *GoFishTable) fish(seat int) {
	if g.deck.IsEmpty() {
		return
	}
	drawn, err := g.draw(g.deck, 1)
	if err != nil {
		g.logger.Error("Draw failed", "error", err)
		return
	}
	g.seats[seat].Cards = append(g.seats[seat].Cards, drawn[0])
	g.collect(seat)
}

// refill gives an empty handed seat one card to play with.
func (g *GoFishTable) refill(seat int) {
	if len(g.seats[seat].Cards) == 0 {
		g.fish(seat)
	}
}

func (g *GoFishTable) collect(seat int) {
	for _, r := range g.seats[seat].CollectBooks() {
		g.say("%s completed a book of %ss", g.seats[seat].Name, r)
	}
}

func (g *GoFishTable) books() int {
	n := 0
	for _, s := range g.seats {
		n += len(s.Books)
	}
	return n
}

func (g *GoFishTable) over() bool {
	if g.books() == fishBookCount {
		return true
	}
	if !g.deck.IsEmpty() {
		return false
	}
	for _, s := range g.seats {
		if len(s.Cards) > 0 {
			return false
		}
	}
	return true
}

// finish pays the pot to the player only if they hold the most books; ties
// go to the lowest seat, which favours the player.
func (g *GoFishTable) finish() {
	best := 0
	for i, s := range g.seats {
		if len(s.Books) > len(g.seats[best].Books) {
			best = i
		}
	}
	g.winner = best
	w := g.seats[best]
	if best == 0 {
		g.settle(g.pot, "win", fmt.Sprintf("You win with %d books! Won %d chips!", len(w.Books), g.pot))
		return
	}
	g.settle(0, w.Name+" wins", fmt.Sprintf("%s wins with %d books", w.Name, len(w.Books)))
}

// Seat returns a copy of seat i (0-3); 0 is the player. Any other i yields
// an empty hand.
func (g *GoFishTable) Seat(i int) FishHand {
	if i < 0 || i >= len(g.seats) {
		return FishHand{}
	}
	s := g.seats[i]
	return FishHand{
		Name:  s.Name,
		Cards: slices.Clone(s.Cards),
		Books: slices.Clone(s.Books),
	}
}

// Turn returns the seat whose turn it is.
func (g *GoFishTable) Turn() int { return g.turn }

// Winner returns the winning seat of the last finished game.
func (g *GoFishTable) Winner() (int, bool) {
	return g.winner, g.winner >= 0
}

func (g *GoFishTable) Pot() int { return g.pot }

func (g *GoFishTable) Reset() {
	g.abandon()
	g.deck = nil
	g.clearSeats()
	g.turn = 0
	g.pot = 0
}

func (g *GoFishTable) Status() string {
	if g.deck == nil {
		return "Go Fish: ante with 'start <amount>'"
	}
	var b strings.Builder
	for i, s := range g.seats {
		marker := " "
		if i == g.turn && g.Active() {
			marker = ">"
		}
		if i == 0 {
			fmt.Fprintf(&b, "%s %-5s %s", marker, s.Name, formatCards(sortedByRank(s.Cards)))
		} else {
			fmt.Fprintf(&b, "%s %-5s %d cards", marker, s.Name, len(s.Cards))
		}
		fmt.Fprintf(&b, "  books: %d\n", len(s.Books))
	}
	fmt.Fprintf(&b, "Deck: %d  Pot: %d  [%s]", g.deck.Remaining(), g.pot, g.phase)
	return b.String()
}

func sortedByRank(in []cards.Card) []cards.Card {
	out := slices.Clone(in)
	slices.SortStableFunc(out, func(a, b cards.Card) int { return int(a.Rank) - int(b.Rank) })
	return out
}
