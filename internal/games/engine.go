package games

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/lox/minicasino/cards"
	"github.com/lox/minicasino/internal/ledger"
	"github.com/lox/minicasino/internal/notify"
	"github.com/lox/minicasino/internal/randutil"
	"github.com/lox/minicasino/internal/scheduler"
)

// Kind names one of the games.
type Kind string

const (
	Blackjack Kind = "blackjack"
	Roulette  Kind = "roulette"
	Slots     Kind = "slots"
	Poker     Kind = "poker"
	GoFish    Kind = "gofish"
	Solitaire Kind = "solitaire"
	Maze      Kind = "maze"
)

// Kinds lists every game in menu order.
var Kinds = []Kind{Blackjack, Roulette, Slots, Poker, GoFish, Solitaire, Maze}

// ParseKind accepts a game name case-insensitively ("go-fish" and "go fish"
// are accepted for GoFish).
func ParseKind(s string) (Kind, error) {
	norm := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(s))
	for _, k := range Kinds {
		if string(k) == norm {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGame, s)
}

// Phase is the round state of an engine.
type Phase string

const (
	Idle         Phase = "idle"
	PlayerTurn   Phase = "player_turn"
	DealerTurn   Phase = "dealer_turn"
	Spinning     Phase = "spinning"
	OpponentTurn Phase = "opponent_turn"
	Running      Phase = "running"
)

// Engine is the contract every game satisfies. Game specific actions live
// on the concrete types.
type Engine interface {
	Kind() Kind
	Phase() Phase
	// Active reports whether a round is in progress.
	Active() bool
	// Reset abandons the current round without touching the wallet and
	// cancels any pending follow-up steps.
	Reset()
	// Status renders the visible round state as text.
	Status() string
}

// Wallet is the part of the ledger the engines use.
type Wallet interface {
	Balance() int
	Credit(amount int) error
	Debit(amount int) error
	HasUpgrade(name ledger.Upgrade) bool
}

// Result describes a settled round.
type Result struct {
	RoundID   uuid.UUID
	Game      Kind
	Wager     int
	Payout    int
	Outcome   string
	SettledAt time.Time
}

// Net is the chip change caused by the round.
func (r Result) Net() int {
	return r.Payout - r.Wager
}

// Recorder stores settled rounds.
type Recorder interface {
	RecordRound(Result) error
}

// DeckFactory builds the deck for a new round.
type DeckFactory func(src randutil.Source) *cards.Deck

// Delays are the pauses before each scheduled follow-up step.
type Delays struct {
	DealerDraw   time.Duration
	NaturalStand time.Duration
	RouletteSpin time.Duration
	SlotsTick    time.Duration
	SlotsTicks   int
	AIResponse   time.Duration
	AITurn       time.Duration
	FishPause    time.Duration
	FishAITurn   time.Duration
}

// DefaultDelays returns the standard pacing.
func DefaultDelays() Delays {
	return Delays{
		DealerDraw:   time.Second,
		NaturalStand: time.Second,
		RouletteSpin: 3 * time.Second,
		SlotsTick:    100 * time.Millisecond,
		SlotsTicks:   20,
		AIResponse:   time.Second,
		AITurn:       time.Second,
		FishPause:    2 * time.Second,
		FishAITurn:   1500 * time.Millisecond,
	}
}

// Deps are the collaborators shared by every engine of a session.
type Deps struct {
	Wallet    Wallet
	Rand      randutil.Source
	Scheduler *scheduler.Scheduler
	Clock     quartz.Clock
	Notifier  notify.Notifier
	Logger    *log.Logger
	Recorder  Recorder
	Decks     DeckFactory
	Delays    Delays
}

func (d Deps) withDefaults() Deps {
	if d.Wallet == nil {
		panic("wallet is required")
	}
	if d.Rand == nil {
		panic("random source is required")
	}
	if d.Scheduler == nil {
		panic("scheduler is required")
	}
	if d.Clock == nil {
		d.Clock = d.Scheduler.Clock()
	}
	if d.Notifier == nil {
		d.Notifier = notify.Discard
	}
	if d.Logger == nil {
		d.Logger = log.Default()
	}
	if d.Decks == nil {
		d.Decks = cards.NewShuffledDeck
	}
	if d.Delays == (Delays{}) {
		d.Delays = DefaultDelays()
	}
	return d
}

// base carries the round bookkeeping shared by the engines.
type base struct {
	kind   Kind
	deps   Deps
	logger *log.Logger

	phase Phase
	round uuid.UUID
	wager int
	last  *Result
}

func newBase(kind Kind, deps Deps) base {
	deps = deps.withDefaults()
	return base{
		kind:   kind,
		deps:   deps,
		logger: deps.Logger.WithPrefix(string(kind)),
		phase:  Idle,
	}
}

func (b *base) Kind() Kind { return b.kind }

func (b *base) Phase() Phase { return b.phase }

func (b *base) Active() bool { return b.phase != Idle }

// Wager is the total staked in the current or last round.
func (b *base) Wager() int { return b.wager }

// Round identifies the current round.
func (b *base) Round() uuid.UUID { return b.round }

// LastResult returns the most recently settled round.
func (b *base) LastResult() (Result, bool) {
	if b.last == nil {
		return Result{}, false
	}
	return *b.last, true
}

// reject notifies the failure and hands the error back to the caller.
func (b *base) reject(err error) error {
	b.logger.Debug("Action rejected", "error", err)
	b.deps.Notifier.Notify(err.Error(), notify.Error)
	return err
}

func (b *base) say(format string, args ...any) {
	b.deps.Notifier.Notify(fmt.Sprintf(format, args...), notify.Success)
}

func (b *base) requirePhase(want Phase, action string) error {
	if b.phase != want {
		return b.reject(illegal("cannot %s while %s", action, b.phase))
	}
	return nil
}

func (b *base) checkBet(amount int) error {
	if amount <= 0 {
		return b.reject(fmt.Errorf("%w: %d", ErrInvalidBet, amount))
	}
	return nil
}

func (b *base) checkFunds(amount int) error {
	if balance := b.deps.Wallet.Balance(); amount > balance {
		return b.reject(fmt.Errorf("%w: need %d, have %d", ErrInsufficientFunds, amount, balance))
	}
	return nil
}

// checkStake rejects a wager of n units of unit the wallet cannot cover.
// It divides the balance so an oversized unit cannot wrap the product.
func (b *base) checkStake(unit, n int) error {
	if balance := b.deps.Wallet.Balance(); unit > balance/n {
		return b.reject(fmt.Errorf("%w: %d x %d exceeds %d", ErrInsufficientFunds, n, unit, balance))
	}
	return nil
}

// stake validates and debits the opening wager, then starts a new round.
func (b *base) stake(amount int) error {
	if err := b.checkBet(amount); err != nil {
		return err
	}
	if err := b.checkFunds(amount); err != nil {
		return err
	}
	if err := b.deps.Wallet.Debit(amount); err != nil {
		return b.reject(err)
	}
	b.begin(amount)
	return nil
}

// raise debits an additional wager inside the current round.
func (b *base) raise(amount int) error {
	if err := b.checkFunds(amount); err != nil {
		return err
	}
	if err := b.deps.Wallet.Debit(amount); err != nil {
		return b.reject(err)
	}
	b.wager += amount
	return nil
}

func (b *base) begin(wager int) {
	b.round = uuid.New()
	b.wager = wager
	b.logger.Debug("Round started", "round", b.round, "wager", wager)
}

// settle credits payout, records the round and returns the engine to idle.
func (b *base) settle(payout int, outcome, message string) {
	if payout > 0 {
		if err := b.deps.Wallet.Credit(payout); err != nil {
			b.logger.Error("Failed to credit payout", "error", err, "payout", payout)
		}
	}
	res := Result{
		RoundID:   b.round,
		Game:      b.kind,
		Wager:     b.wager,
		Payout:    payout,
		Outcome:   outcome,
		SettledAt: b.deps.Clock.Now(),
	}
	b.last = &res
	b.phase = Idle
	b.deps.Scheduler.Cancel(string(b.kind))

	b.logger.Info("Round settled", "round", res.RoundID, "wager", res.Wager, "payout", payout, "outcome", outcome)
	if b.deps.Recorder != nil {
		if err := b.deps.Recorder.RecordRound(res); err != nil {
			b.logger.Error("Failed to record round", "error", err, "round", res.RoundID)
		}
	}

	kind := notify.Success
	if payout == 0 {
		kind = notify.Error
	}
	b.deps.Notifier.Notify(message, kind)
}

// after schedules fn as a follow-up of the current round. The step is
// dropped if the round has ended or been replaced by the time it runs.
func (b *base) after(name string, delay time.Duration, fn func()) {
	round := b.round
	b.deps.Scheduler.Schedule(string(b.kind), name, delay, func() {
		if b.phase == Idle || b.round != round {
			b.logger.Debug("Dropped stale step", "step", name, "round", round)
			return
		}
		fn()
	})
}

// abandon cancels pending steps and returns to idle. The wager stays lost.
func (b *base) abandon() {
	if n := b.deps.Scheduler.Cancel(string(b.kind)); n > 0 {
		b.logger.Debug("Cancelled pending steps", "count", n)
	}
	if b.phase != Idle {
		b.logger.Info("Round abandoned", "round", b.round, "wager", b.wager)
	}
	b.phase = Idle
	b.round = uuid.Nil
	b.wager = 0
}

func (b *base) draw(deck *cards.Deck, n int) ([]cards.Card, error) {
	drawn, err := deck.DrawN(n)
	if err != nil {
		return nil, fmt.Errorf("%w: wanted %d, %d left", ErrDeckExhausted, n, deck.Remaining())
	}
	return drawn, nil
}
