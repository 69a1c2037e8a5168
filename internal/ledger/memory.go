package ledger

import "sync"

// MemoryStore keeps ledger state in process. It is the default backend and
// the one used by tests.
type MemoryStore struct {
	mu           sync.Mutex
	chips        *int
	upgrades     Upgrades
	ChipSaves    int
	UpgradeSaves int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreWithChips returns a store that already holds a balance.
func NewMemoryStoreWithChips(chips int) *MemoryStore {
	return &MemoryStore{chips: &chips}
}

func (m *MemoryStore) LoadChips() (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.chips == nil {
		return 0, false, nil
	}
	return *m.chips, true, nil
}

func (m *MemoryStore) SaveChips(chips int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chips = &chips
	m.ChipSaves++
	return nil
}

func (m *MemoryStore) LoadUpgrades() (Upgrades, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upgrades == nil {
		return nil, false, nil
	}
	return m.upgrades.Clone(), true, nil
}

func (m *MemoryStore) SaveUpgrades(upgrades Upgrades) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upgrades = upgrades.Clone()
	m.UpgradeSaves++
	return nil
}
