package games

import (
	"io"
	"slices"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"

	"github.com/lox/minicasino/cards"
	"github.com/lox/minicasino/internal/ledger"
	"github.com/lox/minicasino/internal/notify"
	"github.com/lox/minicasino/internal/randutil"
	"github.com/lox/minicasino/internal/scheduler"
)

type roundLog struct {
	results []Result
}

func (r *roundLog) RecordRound(res Result) error {
	r.results = append(r.results, res)
	return nil
}

// walletSpy wraps the ledger and remembers the lowest balance seen.
type walletSpy struct {
	*ledger.Ledger
	debits, credits int
	lowest          int
}

func (w *walletSpy) Debit(amount int) error {
	if err := w.Ledger.Debit(amount); err != nil {
		return err
	}
	w.debits += amount
	w.lowest = min(w.lowest, w.Balance())
	return nil
}

func (w *walletSpy) Credit(amount int) error {
	if err := w.Ledger.Credit(amount); err != nil {
		return err
	}
	w.credits += amount
	return nil
}

type fixture struct {
	t      *testing.T
	ledger *ledger.Ledger
	wallet *walletSpy
	clock  *quartz.Mock
	sched  *scheduler.Scheduler
	notes  *notify.Recorder
	rounds *roundLog
	seq    *randutil.Sequence
	deps   Deps
}

func newFixture(t *testing.T, chips int, values ...float64) *fixture {
	t.Helper()
	logger := log.New(io.Discard)
	l, err := ledger.New(ledger.NewMemoryStoreWithChips(chips), logger)
	require.NoError(t, err)

	clock := quartz.NewMock(t)
	f := &fixture{
		t:      t,
		ledger: l,
		wallet: &walletSpy{Ledger: l, lowest: chips},
		clock:  clock,
		sched:  scheduler.New(clock, logger),
		notes:  &notify.Recorder{},
		rounds: &roundLog{},
		seq:    randutil.NewSequence(values...),
	}
	f.deps = Deps{
		Wallet:    f.wallet,
		Rand:      f.seq,
		Scheduler: f.sched,
		Clock:     clock,
		Notifier:  f.notes,
		Logger:    logger,
		Recorder:  f.rounds,
	}
	return f
}

// stack makes every new round deal the listed cards first, followed by the
// rest of the deck.
func (f *fixture) stack(codes string) {
	f.t.Helper()
	prefix, err := cards.ParseCards(codes)
	require.NoError(f.t, err)
	order := slices.Clone(prefix)
	for _, c := range cards.NewDeck().Cards() {
		if !slices.Contains(prefix, c) {
			order = append(order, c)
		}
	}
	require.Len(f.t, order, cards.DeckSize, "stacked cards must be unique")
	f.deps.Decks = func(randutil.Source) *cards.Deck {
		return cards.NewDeckFrom(order)
	}
}

func (f *fixture) balance() int {
	return f.ledger.Balance()
}

func (f *fixture) lastNote() notify.Message {
	f.t.Helper()
	msg, ok := f.notes.Last()
	require.True(f.t, ok, "expected a notification")
	return msg
}

func (f *fixture) drain() int {
	return f.sched.Drain(1000)
}

func mustCards(t *testing.T, codes string) []cards.Card {
	t.Helper()
	cs, err := cards.ParseCards(codes)
	require.NoError(t, err)
	return cs
}
