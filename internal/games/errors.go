package games

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/minicasino/cards"
	"github.com/lox/minicasino/internal/ledger"
)

// Every rejected action returns one of these (possibly wrapped) and leaves
// the engine and the wallet untouched.
var (
	ErrInvalidBet        = errors.New("invalid bet")
	ErrIllegalAction     = errors.New("illegal action")
	ErrUnknownGame       = errors.New("unknown game")
	ErrInsufficientFunds = ledger.ErrInsufficientFunds
	ErrAlreadyOwned      = ledger.ErrAlreadyOwned
	ErrDeckExhausted     = cards.ErrDeckEmpty
)

func illegal(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrIllegalAction, fmt.Sprintf(format, args...))
}

// ParseBet parses a wager typed by the player. Non-numeric and non-positive
// input is ErrInvalidBet.
func ParseBet(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidBet, s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %d must be positive", ErrInvalidBet, n)
	}
	return n, nil
}
