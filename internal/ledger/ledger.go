// Package ledger owns the chip balance and purchased upgrades. It is the only
// state shared between games; every mutation is persisted immediately.
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// DefaultStartingChips is the balance of a player with no persisted state.
const DefaultStartingChips = 1000

var (
	ErrInsufficientFunds = errors.New("insufficient chips")
	ErrAlreadyOwned      = errors.New("upgrade already owned")
	ErrUnknownUpgrade    = errors.New("unknown upgrade")
	ErrNegativeAmount    = errors.New("amount must not be negative")
)

// Persistence stores the ledger between runs. Load methods report found=false
// when nothing has been saved yet.
type Persistence interface {
	LoadChips() (chips int, found bool, err error)
	SaveChips(chips int) error
	LoadUpgrades() (upgrades Upgrades, found bool, err error)
	SaveUpgrades(upgrades Upgrades) error
}

// Ledger is the single source of truth for chips and upgrade flags.
type Ledger struct {
	mu       sync.RWMutex
	chips    int
	upgrades Upgrades
	store    Persistence
	logger   *log.Logger
}

// Option configures a Ledger
type Option func(*Ledger)

// WithStartingChips overrides the balance used when nothing is persisted.
func WithStartingChips(chips int) Option {
	return func(l *Ledger) { l.chips = chips }
}

// New loads the ledger from store, default-initialising absent state.
func New(store Persistence, logger *log.Logger, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		chips:    DefaultStartingChips,
		upgrades: NewUpgrades(),
		store:    store,
		logger:   logger.WithPrefix("ledger"),
	}
	for _, opt := range opts {
		opt(l)
	}

	chips, found, err := store.LoadChips()
	if err != nil {
		return nil, fmt.Errorf("load chips: %w", err)
	}
	if found {
		l.chips = chips
	}

	upgrades, found, err := store.LoadUpgrades()
	if err != nil {
		return nil, fmt.Errorf("load upgrades: %w", err)
	}
	if found {
		for name, owned := range upgrades {
			if _, known := l.upgrades[name]; known {
				l.upgrades[name] = owned
			}
		}
	}

	l.logger.Debug("Ledger loaded", "chips", l.chips, "upgrades", l.upgrades.Owned())
	return l, nil
}

// Balance returns the current chip count.
func (l *Ledger) Balance() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.chips
}

// Credit adds amount chips.
func (l *Ledger) Credit(amount int) error {
	if amount < 0 {
		return fmt.Errorf("credit %d: %w", amount, ErrNegativeAmount)
	}
	l.mu.Lock()
	l.chips += amount
	chips := l.chips
	l.mu.Unlock()

	l.logger.Debug("Credit", "amount", amount, "balance", chips)
	l.persistChips(chips)
	return nil
}

// Debit removes amount chips. Callers must check affordability first; the
// ledger does not refuse an overdraw.
func (l *Ledger) Debit(amount int) error {
	if amount < 0 {
		return fmt.Errorf("debit %d: %w", amount, ErrNegativeAmount)
	}
	l.mu.Lock()
	l.chips -= amount
	chips := l.chips
	l.mu.Unlock()

	if chips < 0 {
		l.logger.Warn("Balance went negative", "amount", amount, "balance", chips)
	}
	l.logger.Debug("Debit", "amount", amount, "balance", chips)
	l.persistChips(chips)
	return nil
}

// CanAfford reports whether amount can be debited without going negative.
func (l *Ledger) CanAfford(amount int) bool {
	return amount <= l.Balance()
}

// HasUpgrade reports whether the named upgrade has been purchased.
func (l *Ledger) HasUpgrade(name Upgrade) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.upgrades[name]
}

// Upgrades returns a copy of every known upgrade flag.
func (l *Ledger) Upgrades() Upgrades {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.upgrades.Clone()
}

// PurchaseUpgrade debits cost and sets the flag, or does nothing at all.
func (l *Ledger) PurchaseUpgrade(name Upgrade, cost int) error {
	if cost < 0 {
		return fmt.Errorf("purchase %s: %w", name, ErrNegativeAmount)
	}

	l.mu.Lock()
	owned, known := l.upgrades[name]
	switch {
	case !known:
		l.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownUpgrade, name)
	case owned:
		l.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyOwned, name)
	case cost > l.chips:
		l.mu.Unlock()
		return fmt.Errorf("%w: %s costs %d", ErrInsufficientFunds, name, cost)
	}
	l.chips -= cost
	l.upgrades[name] = true
	chips := l.chips
	upgrades := l.upgrades.Clone()
	l.mu.Unlock()

	l.logger.Info("Upgrade purchased", "upgrade", name, "cost", cost, "balance", chips)
	l.persistChips(chips)
	if err := l.store.SaveUpgrades(upgrades); err != nil {
		l.logger.Error("Failed to persist upgrades", "error", err)
	}
	return nil
}

func (l *Ledger) persistChips(chips int) {
	if err := l.store.SaveChips(chips); err != nil {
		l.logger.Error("Failed to persist chips", "error", err, "chips", chips)
	}
}
