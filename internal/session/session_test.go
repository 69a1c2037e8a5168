package session

import (
	"context"
	"io"
	"slices"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/minicasino/cards"
	"github.com/lox/minicasino/internal/games"
	"github.com/lox/minicasino/internal/ledger"
	"github.com/lox/minicasino/internal/notify"
	"github.com/lox/minicasino/internal/randutil"
	"github.com/lox/minicasino/internal/store"
)

type harness struct {
	t       *testing.T
	s       *Session
	ledger  *ledger.Ledger
	clock   *quartz.Mock
	notes   *notify.Recorder
	backend *store.Memory
}

func newHarness(t *testing.T, chips int, opts ...func(*Options)) *harness {
	t.Helper()
	logger := log.New(io.Discard)
	l, err := ledger.New(ledger.NewMemoryStoreWithChips(chips), logger)
	require.NoError(t, err)

	h := &harness{
		t:       t,
		ledger:  l,
		clock:   quartz.NewMock(t),
		notes:   &notify.Recorder{},
		backend: store.NewMemory(),
	}
	o := Options{
		Ledger:   l,
		Clock:    h.clock,
		Rand:     randutil.NewSequence(),
		Notifier: h.notes,
		Logger:   logger,
		Recorder: h.backend,
		History:  h.backend,
	}
	for _, opt := range opts {
		opt(&o)
	}
	h.s, err = New(o)
	require.NoError(t, err)
	return h
}

// stacked deals codes first on every new deck.
func stacked(codes string) func(*Options) {
	return func(o *Options) {
		prefix := cards.MustParseCards(codes)
		order := slices.Clone(prefix)
		for _, c := range cards.NewDeck().Cards() {
			if !slices.Contains(prefix, c) {
				order = append(order, c)
			}
		}
		o.Decks = func(randutil.Source) *cards.Deck { return cards.NewDeckFrom(order) }
	}
}

func (h *harness) run(line string) string {
	h.t.Helper()
	out, err := h.s.Execute(context.Background(), line)
	require.NoError(h.t, err, line)
	return out
}

func (h *harness) fail(line string) error {
	h.t.Helper()
	_, err := h.s.Execute(context.Background(), line)
	require.Error(h.t, err, line)
	return err
}

func TestNewNeedsLedger(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

func TestNewRejectsUnknownPriceOverride(t *testing.T) {
	l, err := ledger.New(ledger.NewMemoryStore(), log.New(io.Discard))
	require.NoError(t, err)
	_, err = New(Options{Ledger: l, Prices: map[ledger.Upgrade]int{"jetpack": 1}})
	require.ErrorIs(t, err, ledger.ErrUnknownUpgrade)
}

func TestLobbyCommands(t *testing.T) {
	h := newHarness(t, 1000)
	assert.Contains(t, h.run("status"), "Lobby")
	assert.Equal(t, "Balance: 1000 chips", h.run("balance"))
	assert.Contains(t, h.run("games"), "gofish")
	assert.Contains(t, h.run("help"), "play <game>")
	assert.NotContains(t, h.run("help"), "deal <bet>")

	require.ErrorIs(t, h.fail("hit"), ErrUnknownCommand, "game verbs need a game")
	require.ErrorIs(t, h.fail("play baccarat"), games.ErrUnknownGame)
	require.ErrorIs(t, h.fail("reset"), games.ErrIllegalAction)
}

func TestPlaySwitchesAndForfeitsActiveRound(t *testing.T) {
	h := newHarness(t, 1000, stacked("Ts 9h 7c 6d"))
	h.run("play blackjack")
	assert.Equal(t, games.Blackjack, h.s.Current())
	assert.Contains(t, h.run("help"), "deal <bet>")

	h.run("deal 100")
	h.run("stand")
	assert.True(t, h.s.Pending())
	assert.Equal(t, []games.Kind{games.Blackjack}, h.s.Active())

	h.run("play go fish")
	assert.Equal(t, games.GoFish, h.s.Current())
	assert.Empty(t, h.s.Active(), "the blackjack round was abandoned")
	assert.False(t, h.s.Pending(), "its dealer steps were cancelled")
	assert.Zero(t, h.s.RunPending(0))
	assert.Equal(t, 900, h.s.Balance())

	h.run("start 10")
	assert.Equal(t, []games.Kind{games.GoFish}, h.s.Active())

	h.run("leave")
	assert.Empty(t, h.s.Active())
	assert.Equal(t, games.Kind(""), h.s.Current())
}

func TestBlackjackThroughCommands(t *testing.T) {
	h := newHarness(t, 1000, stacked("Ts 9h 7c 6d 5s"))
	h.run("play blackjack")
	require.ErrorIs(t, h.fail("deal"), games.ErrIllegalAction)
	require.ErrorIs(t, h.fail("deal lots"), games.ErrInvalidBet)

	out := h.run("deal 100")
	assert.Contains(t, out, "(19)")
	h.run("stand")
	assert.Equal(t, 2, h.s.RunPending(0))
	assert.Equal(t, 1100, h.s.Balance())

	rounds, err := h.backend.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	assert.Equal(t, "win", rounds[0].Outcome)
	assert.Contains(t, h.run("history"), "blackjack")
}

func TestTimerEffectsRunUnderSessionLock(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	h := newHarness(t, 1000, stacked("Ts 9h 7c 6d 5s"))
	h.run("play blackjack")
	h.run("deal 100")
	h.run("stand")

	for i := 0; i < 2; i++ {
		_, w := h.clock.AdvanceNext()
		w.MustWait(ctx)
		require.Eventually(t, func() bool { return h.s.Pending() == (i == 0) }, time.Second, 5*time.Millisecond)
	}
	require.Eventually(t, func() bool { return len(h.s.Active()) == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1100, h.s.Balance())
}

func TestShop(t *testing.T) {
	h := newHarness(t, 1000, func(o *Options) {
		o.Prices = map[ledger.Upgrade]int{ledger.DealerTell: 100}
	})
	out := h.run("shop")
	assert.Contains(t, out, "dealerTell")
	assert.Contains(t, out, "100 chips")
	assert.Contains(t, out, "5000 chips")

	assert.Equal(t, "Purchased dealerTell for 100 chips", h.run("buy dealer-tell"))
	assert.Equal(t, 900, h.s.Balance())
	assert.Equal(t, notify.Success, h.notes.Messages()[0].Kind)
	assert.Contains(t, h.run("shop"), "owned")

	require.ErrorIs(t, h.fail("buy dealerTell"), ledger.ErrAlreadyOwned)
	require.ErrorIs(t, h.fail("buy card counter"), ledger.ErrInsufficientFunds)
	require.ErrorIs(t, h.fail("buy jetpack"), ledger.ErrUnknownUpgrade)
	last, _ := h.notes.Last()
	assert.Equal(t, notify.Error, last.Kind)
	assert.Equal(t, 900, h.s.Balance())
}

func TestHintNeedsPurchase(t *testing.T) {
	h := newHarness(t, 1000, stacked("Ts 7h Kc 9d"), func(o *Options) {
		o.Prices = map[ledger.Upgrade]int{ledger.DealerTell: 10}
	})
	h.run("play blackjack")
	h.run("deal 100")
	require.ErrorIs(t, h.fail("hint"), games.ErrIllegalAction)
	h.run("buy dealertell")
	assert.Equal(t, "The dealer already stands", h.run("hint"))
}

func TestRouletteCommands(t *testing.T) {
	h := newHarness(t, 1000, func(o *Options) {
		o.Rand = randutil.NewSequence(randutil.ForIndex(17, games.WheelPockets))
	})
	h.run("play roulette")
	require.ErrorIs(t, h.fail("select purple"), games.ErrIllegalAction)
	h.run("select 17 black")
	h.run("spin 10")
	assert.Equal(t, 980, h.s.Balance())
	assert.Equal(t, 1, h.s.RunPending(0))
	assert.Equal(t, 980+360+20, h.s.Balance())
}

func TestMalformedBetsNotify(t *testing.T) {
	h := newHarness(t, 1000)
	h.run("play slots")
	for _, line := range []string{"spin lots", "spin 0", "spin -5"} {
		h.notes.Reset()
		require.ErrorIs(t, h.fail(line), games.ErrInvalidBet, line)
		last, ok := h.notes.Last()
		require.True(t, ok, line)
		assert.Equal(t, notify.Error, last.Kind, line)
		assert.Contains(t, last.Text, "invalid bet", line)
	}
	assert.Equal(t, 1000, h.s.Balance())
}

func TestRouletteHugeUnitRejected(t *testing.T) {
	h := newHarness(t, 1000)
	h.run("play roulette")
	h.run("select even")
	h.run("select low")
	h.run("select red")
	require.ErrorIs(t, h.fail("spin 6148914691236517206"), games.ErrInsufficientFunds)
	assert.Equal(t, 1000, h.s.Balance())
	assert.Zero(t, h.s.RunPending(0))
}

func TestSlotsCommands(t *testing.T) {
	h := newHarness(t, 1000)
	h.run("play slots")
	h.run("spin 10")
	assert.Equal(t, games.DefaultDelays().SlotsTicks, h.s.RunPending(0))
	assert.Empty(t, h.s.Active())
}

func TestPokerCommands(t *testing.T) {
	h := newHarness(t, 1000, stacked("As Ad 2c 7d Ah 9s 4c Kd 3h"))
	h.run("play poker")
	h.run("deal 50")
	h.run("fold")
	assert.Equal(t, 900, h.s.Balance())
	require.ErrorIs(t, h.fail("check"), games.ErrIllegalAction)
}

func TestGoFishAskParsing(t *testing.T) {
	h := newHarness(t, 1000)
	h.run("play gofish")
	h.run("start 10")
	require.ErrorIs(t, h.fail("ask"), games.ErrIllegalAction)
	require.ErrorIs(t, h.fail("ask z 1"), games.ErrIllegalAction)
	require.ErrorIs(t, h.fail("ask 2 nobody"), games.ErrIllegalAction)

	rank := h.s.gofish.Seat(0).Ranks()[0]
	_, err := h.s.Execute(context.Background(), "ask "+rank.String()+" ai2")
	require.NoError(t, err)
}

func TestSolitaireCommands(t *testing.T) {
	h := newHarness(t, 1000, stacked("As 3s 2s 4h 5h Kd"))
	h.run("play solitaire")
	h.run("start 100")
	h.run("move 1")
	h.run("move 2")
	require.ErrorIs(t, h.fail("move 3"), games.ErrIllegalAction)
	require.ErrorIs(t, h.fail("move sideways"), games.ErrIllegalAction)
	h.run("draw")
	require.ErrorIs(t, h.fail("count"), games.ErrIllegalAction)

	require.NoError(t, h.ledger.PurchaseUpgrade(ledger.CardCounter, 0))
	assert.Contains(t, h.run("count"), "A:3")
	h.run("giveup")
	assert.Equal(t, 903, h.s.Balance())
}

func TestMazeDirections(t *testing.T) {
	h := newHarness(t, 1000)
	h.run("play maze")
	require.ErrorIs(t, h.fail("start impossible"), games.ErrIllegalAction)
	h.run("start easy")
	assert.Equal(t, "Blocked", h.run("up"))
	assert.Equal(t, "Blocked", h.run("move left"))
	require.ErrorIs(t, h.fail("move sideways"), games.ErrIllegalAction)
}

func TestCloseAbandonsCurrentRound(t *testing.T) {
	h := newHarness(t, 1000)
	h.run("play slots")
	h.run("spin 10")
	h.s.Close()
	assert.False(t, h.s.Pending())
	assert.Equal(t, 990, h.s.Balance())
}

func TestStatsSummarisesHistory(t *testing.T) {
	h := newHarness(t, 1000, stacked("Ts 9h 7c 6d 5s"))
	assert.Equal(t, "No rounds played yet", h.run("stats"))

	h.run("play blackjack")
	h.run("deal 100")
	h.run("stand")
	h.s.RunPending(0)

	out := h.run("stats")
	assert.Contains(t, out, "blackjack")
	assert.Contains(t, out, "+100")
	assert.Contains(t, out, "total")
}
