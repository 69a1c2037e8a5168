package games

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/lox/minicasino/internal/randutil"
)

// WheelPockets is the number of pockets on a single-zero wheel.
const WheelPockets = 37

var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true, 14: true, 16: true, 18: true,
	19: true, 21: true, 23: true, 25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

// PocketColor returns "green" for 0, otherwise "red" or "black".
func PocketColor(n int) string {
	switch {
	case n == 0:
		return "green"
	case redNumbers[n]:
		return "red"
	default:
		return "black"
	}
}

// BetType groups roulette selections.
type BetType string

const (
	NumberBet  BetType = "number"
	ColorBet   BetType = "color"
	EvenOddBet BetType = "evenodd"
	RangeBet   BetType = "range"
)

// RouletteBet is one selection on the layout, e.g. {ColorBet, "red"} or
// {NumberBet, "17"}.
type RouletteBet struct {
	Type  BetType
	Value string
}

func (b RouletteBet) String() string {
	if b.Type == NumberBet {
		return "#" + b.Value
	}
	return b.Value
}

// ParseRouletteBet reads a selection: a pocket number 0-36 or one of red,
// black, green, even, odd, low, high.
func ParseRouletteBet(s string) (RouletteBet, error) {
	v := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "#"))
	switch v {
	case "red", "black", "green":
		return RouletteBet{ColorBet, v}, nil
	case "even", "odd":
		return RouletteBet{EvenOddBet, v}, nil
	case "low", "high":
		return RouletteBet{RangeBet, v}, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n >= WheelPockets {
		return RouletteBet{}, illegal("no such roulette bet %q", s)
	}
	return RouletteBet{NumberBet, strconv.Itoa(n)}, nil
}

// RoulettePayout is what one selection of unit chips returns on result.
// Zero loses every even/odd and low/high selection.
func RoulettePayout(bet RouletteBet, unit, result int) int {
	switch bet.Type {
	case NumberBet:
		if n, err := strconv.Atoi(bet.Value); err == nil && n == result {
			return unit * 36
		}
	case ColorBet:
		if bet.Value == PocketColor(result) {
			if result == 0 {
				return unit * 36
			}
			return unit * 2
		}
	case EvenOddBet:
		if result == 0 {
			return 0
		}
		if (bet.Value == "even") == (result%2 == 0) {
			return unit * 2
		}
	case RangeBet:
		if result == 0 {
			return 0
		}
		if (bet.Value == "low") == (result <= 18) {
			return unit * 2
		}
	}
	return 0
}

// RouletteWheel takes any number of selections at the same unit stake.
type RouletteWheel struct {
	base
	selected []RouletteBet
	unit     int
	result   int
	spun     bool
}

func NewRoulette(deps Deps) *RouletteWheel {
	return &RouletteWheel{base: newBase(Roulette, deps)}
}

// Select toggles a selection: choosing an already selected bet removes it.
func (g *RouletteWheel) Select(bet RouletteBet) error {
	if err := g.requirePhase(Idle, "change bets"); err != nil {
		return err
	}
	if i := slices.Index(g.selected, bet); i >= 0 {
		g.selected = slices.Delete(g.selected, i, i+1)
		return nil
	}
	g.selected = append(g.selected, bet)
	return nil
}

// ClearSelections drops every selection.
func (g *RouletteWheel) ClearSelections() error {
	if err := g.requirePhase(Idle, "change bets"); err != nil {
		return err
	}
	g.selected = nil
	return nil
}

// Selections returns the current selections in the order they were made.
func (g *RouletteWheel) Selections() []RouletteBet {
	return slices.Clone(g.selected)
}

// Spin stakes unit on every selection and sets the wheel turning.
func (g *RouletteWheel) Spin(unit int) error {
	if err := g.requirePhase(Idle, "spin"); err != nil {
		return err
	}
	if len(g.selected) == 0 {
		return g.reject(illegal("select at least one bet"))
	}
	if err := g.checkBet(unit); err != nil {
		return err
	}
	if err := g.checkStake(unit, len(g.selected)); err != nil {
		return err
	}
	if err := g.stake(unit * len(g.selected)); err != nil {
		return err
	}
	g.unit = unit
	g.phase = Spinning
	g.after("spin", g.deps.Delays.RouletteSpin, g.resolve)
	return nil
}

func (g *RouletteWheel) resolve() {
	g.result = randutil.Intn(g.deps.Rand, WheelPockets)
	g.spun = true

	total := 0
	for _, bet := range g.selected {
		total += RoulettePayout(bet, g.unit, g.result)
	}
	g.selected = nil

	landed := fmt.Sprintf("%d %s", g.result, PocketColor(g.result))
	if total > 0 {
		g.settle(total, landed, fmt.Sprintf("%s! Won %d chips!", landed, total))
		return
	}
	g.settle(0, landed, fmt.Sprintf("%s. Better luck next time!", landed))
}

// LastSpin returns the pocket of the last resolved spin.
func (g *RouletteWheel) LastSpin() (int, bool) {
	return g.result, g.spun
}

func (g *RouletteWheel) Reset() {
	g.abandon()
	g.selected = nil
	g.unit = 0
}

func (g *RouletteWheel) Status() string {
	var b strings.Builder
	if len(g.selected) == 0 {
		b.WriteString("Roulette: no bets selected")
	} else {
		names := make([]string, len(g.selected))
		for i, s := range g.selected {
			names[i] = s.String()
		}
		fmt.Fprintf(&b, "Roulette bets: %s", strings.Join(names, ", "))
	}
	if g.phase == Spinning {
		fmt.Fprintf(&b, "\nSpinning... %d per bet", g.unit)
	} else if g.spun {
		fmt.Fprintf(&b, "\nLast result: %d (%s)", g.result, PocketColor(g.result))
	}
	return b.String()
}
