// Package session is the single object a player talks to. It owns the
// ledger, the scheduler and one engine per game, keeps at most one game
// active, and interprets the text commands shared by every front-end.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/minicasino/internal/games"
	"github.com/lox/minicasino/internal/ledger"
	"github.com/lox/minicasino/internal/notify"
	"github.com/lox/minicasino/internal/randutil"
	"github.com/lox/minicasino/internal/scheduler"
)

var ErrUnknownCommand = errors.New("unknown command")

// History lists settled rounds, newest first.
type History interface {
	Recent(ctx context.Context, limit int) ([]games.Result, error)
}

// Options wires a Session. Ledger is required.
type Options struct {
	Ledger   *ledger.Ledger
	Clock    quartz.Clock
	Rand     randutil.Source
	Notifier notify.Notifier
	Logger   *log.Logger
	Recorder games.Recorder
	History  History
	Delays   games.Delays
	Decks    games.DeckFactory
	// Prices overrides catalog prices by upgrade.
	Prices map[ledger.Upgrade]int
}

// Session dispatches commands to the active game. Every command and every
// timer-fired follow-up runs under one lock.
type Session struct {
	mu      sync.Mutex
	ledger  *ledger.Ledger
	sched   *scheduler.Scheduler
	history History
	prices  map[ledger.Upgrade]int
	logger  *log.Logger
	notify  notify.Notifier

	engines map[games.Kind]games.Engine
	current games.Kind

	blackjack *games.BlackjackTable
	roulette  *games.RouletteWheel
	slots     *games.SlotMachine
	poker     *games.PokerTable
	gofish    *games.GoFishTable
	solitaire *games.SolitaireGame
	maze      *games.MazeRun
}

// New builds a session and one engine per game.
func New(opts Options) (*Session, error) {
	if opts.Ledger == nil {
		return nil, fmt.Errorf("session needs a ledger")
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Rand == nil {
		opts.Rand = randutil.Locked(randutil.New(opts.Clock.Now().UnixNano()))
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	s := &Session{
		ledger:  opts.Ledger,
		history: opts.History,
		prices:  make(map[ledger.Upgrade]int),
		logger:  opts.Logger.WithPrefix("session"),
		notify:  opts.Notifier,
		engines: make(map[games.Kind]games.Engine),
	}
	for _, item := range ledger.Catalog {
		s.prices[item.Upgrade] = item.Price
	}
	for name, price := range opts.Prices {
		if _, known := s.prices[name]; !known {
			return nil, fmt.Errorf("%w: %s", ledger.ErrUnknownUpgrade, name)
		}
		s.prices[name] = price
	}

	s.sched = scheduler.New(opts.Clock, opts.Logger, scheduler.WithExecutor(s.locked))
	deps := games.Deps{
		Wallet:    opts.Ledger,
		Rand:      opts.Rand,
		Scheduler: s.sched,
		Clock:     opts.Clock,
		Notifier:  opts.Notifier,
		Logger:    opts.Logger,
		Recorder:  opts.Recorder,
		Decks:     opts.Decks,
		Delays:    opts.Delays,
	}
	s.blackjack = games.NewBlackjack(deps)
	s.roulette = games.NewRoulette(deps)
	s.slots = games.NewSlots(deps)
	s.poker = games.NewPoker(deps)
	s.gofish = games.NewGoFish(deps)
	s.solitaire = games.NewSolitaire(deps)
	s.maze = games.NewMaze(deps)
	for _, e := range []games.Engine{s.blackjack, s.roulette, s.slots, s.poker, s.gofish, s.solitaire, s.maze} {
		s.engines[e.Kind()] = e
	}
	return s, nil
}

func (s *Session) locked(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// Execute runs one command line and returns the text reply.
func (s *Session) Execute(ctx context.Context, line string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.execute(ctx, line)
}

// Current returns the game being played, or "" in the lobby.
func (s *Session) Current() games.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Play makes kind the current game, resetting whatever was current before.
func (s *Session) Play(kind games.Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.play(kind)
}

func (s *Session) play(kind games.Kind) error {
	if _, ok := s.engines[kind]; !ok {
		return fmt.Errorf("%w: %q", games.ErrUnknownGame, kind)
	}
	if s.current != "" && s.current != kind {
		s.leave()
	}
	s.current = kind
	s.logger.Debug("Switched game", "game", kind)
	return nil
}

// leave resets the current game. A staked round is forfeited.
func (s *Session) leave() {
	if e := s.engine(); e != nil {
		if e.Active() {
			s.logger.Info("Leaving an active round", "game", e.Kind())
		}
		e.Reset()
	}
	s.current = ""
}

func (s *Session) engine() games.Engine {
	if s.current == "" {
		return nil
	}
	return s.engines[s.current]
}

// Active lists the games with a round in progress. It never holds more
// than one entry.
func (s *Session) Active() []games.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []games.Kind
	for _, k := range games.Kinds {
		if s.engines[k].Active() {
			out = append(out, k)
		}
	}
	return out
}

// Balance returns the ledger balance.
func (s *Session) Balance() int {
	return s.ledger.Balance()
}

// Status renders the current game, or the lobby.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status()
}

func (s *Session) status() string {
	if e := s.engine(); e != nil {
		return e.Status()
	}
	return fmt.Sprintf("Lobby. Balance: %d chips. Type 'games' to list games.", s.ledger.Balance())
}

// RunPending runs up to limit scheduled follow-ups immediately, in due
// order, and returns how many ran. It lets tests and the line front-end
// step through animations without waiting.
func (s *Session) RunPending(limit int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sched.Drain(limit)
}

// Pending reports whether any follow-up is waiting.
func (s *Session) Pending() bool {
	return s.sched.Len() > 0
}

// Close abandons the current round and cancels its follow-ups.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leave()
}
