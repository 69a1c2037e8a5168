package games

import (
	"fmt"
	"strings"

	"github.com/lox/minicasino/internal/randutil"
)

// Symbol is a reel symbol.
type Symbol int

const (
	Cherry Symbol = iota
	Lemon
	Orange
	Grape
	Diamond
	Seven
	Star
)

// Symbols lists the reel strip.
var Symbols = [...]Symbol{Cherry, Lemon, Orange, Grape, Diamond, Seven, Star}

func (s Symbol) String() string {
	switch s {
	case Cherry:
		return "cherry"
	case Lemon:
		return "lemon"
	case Orange:
		return "orange"
	case Grape:
		return "grape"
	case Diamond:
		return "diamond"
	case Seven:
		return "seven"
	case Star:
		return "star"
	}
	return "?"
}

// SlotsMultiplier returns the payout multiple for a final reel line.
func SlotsMultiplier(reels [3]Symbol) int {
	a, b, c := reels[0], reels[1], reels[2]
	switch {
	case a == b && b == c:
		switch a {
		case Seven:
			return 100
		case Diamond:
			return 50
		case Star:
			return 25
		}
		return 10
	case a == b || b == c || a == c:
		return 2
	}
	return 0
}

// SlotMachine is a three reel slot.
type SlotMachine struct {
	base
	reels [3]Symbol
	ticks int
}

func NewSlots(deps Deps) *SlotMachine {
	return &SlotMachine{base: newBase(Slots, deps)}
}

// Spin stakes bet and starts the reels. The line is only drawn when the
// animation finishes.
func (g *SlotMachine) Spin(bet int) error {
	if err := g.requirePhase(Idle, "spin"); err != nil {
		return err
	}
	if err := g.stake(bet); err != nil {
		return err
	}
	g.phase = Spinning
	g.ticks = 0
	g.after("reel-tick", g.deps.Delays.SlotsTick, g.tick)
	return nil
}

func (g *SlotMachine) tick() {
	g.ticks++
	for i := range g.reels {
		g.reels[i] = Symbol((int(g.reels[i]) + i + 1) % len(Symbols))
	}
	if g.ticks < g.deps.Delays.SlotsTicks {
		g.after("reel-tick", g.deps.Delays.SlotsTick, g.tick)
		return
	}
	g.resolve()
}

func (g *SlotMachine) resolve() {
	for i := range g.reels {
		g.reels[i] = Symbols[randutil.Intn(g.deps.Rand, len(Symbols))]
	}
	line := g.line()
	mult := SlotsMultiplier(g.reels)
	if mult == 0 {
		g.settle(0, line, fmt.Sprintf("%s. No match, try again!", line))
		return
	}
	win := g.wager * mult
	g.settle(win, line, fmt.Sprintf("%s pays %dx! Won %d chips!", line, mult, win))
}

// Reels returns the symbols currently showing.
func (g *SlotMachine) Reels() [3]Symbol {
	return g.reels
}

func (g *SlotMachine) line() string {
	names := make([]string, len(g.reels))
	for i, s := range g.reels {
		names[i] = s.String()
	}
	return strings.Join(names, " | ")
}

func (g *SlotMachine) Reset() {
	g.abandon()
	g.reels = [3]Symbol{}
	g.ticks = 0
}

func (g *SlotMachine) Status() string {
	if g.phase == Spinning {
		return fmt.Sprintf("[ %s ] spinning (%d/%d)", g.line(), g.ticks, g.deps.Delays.SlotsTicks)
	}
	return fmt.Sprintf("[ %s ]", g.line())
}
