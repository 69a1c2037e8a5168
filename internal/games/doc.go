// Package games implements the casino's game engines: Blackjack, Roulette,
// Slots, heads-up Poker, Go Fish, Solitaire and the Maze reward game.
//
// Every engine embeds the same round bookkeeping and satisfies Engine. An
// engine is built from a Deps value holding the collaborators of a session:
//
//	deps := games.Deps{
//	    Wallet:    ledger,
//	    Rand:      randutil.New(42),
//	    Scheduler: scheduler.New(quartz.NewReal(), logger),
//	    Notifier:  notifier,
//	    Logger:    logger,
//	}
//	bj := games.NewBlackjack(deps)
//	if err := bj.Deal(50); err != nil {
//	    // rejected: nothing was debited
//	}
//
// # Wagers
//
// A round starts by staking its wager, which is debited before any card is
// dealt or random value consumed. Every rejected action (ErrInvalidBet,
// ErrInsufficientFunds, ErrIllegalAction, ErrDeckExhausted) emits an error
// notification and leaves both the engine and the wallet untouched. The
// terminal step of a round credits the payout, records a Result and returns
// the engine to Idle.
//
// # Follow-up steps
//
// Dealer draws, opponent replies, reel ticks and Go Fish turns are scheduled
// on the session's Scheduler under the engine's Kind. Reset cancels them,
// and a step that outlives its round is dropped before it runs. Tests step
// through a round with Scheduler.RunNext instead of waiting.
//
// # Deterministic testing
//
// Randomness only comes from Deps.Rand. Supply randutil.NewSequence values
// to force outcomes, and Deps.Decks to stack the deck:
//
//	deps.Decks = func(randutil.Source) *cards.Deck {
//	    return cards.NewDeckFrom(cards.MustParseCards("As Kd 9c 7h"))
//	}
package games
