package ledger

import (
	"fmt"
	"sort"
	"strings"
)

// Upgrade names a purchasable flag. The string form is the persisted key.
type Upgrade string

const (
	CardCounter Upgrade = "cardCounter"
	DealerTell  Upgrade = "dealerTell"
	LuckyCharm  Upgrade = "luckyCharm"
)

// Catalog lists the upgrades and their default prices.
var Catalog = []Item{
	{Upgrade: CardCounter, Price: 5000, Description: "Shows remaining cards by rank in Solitaire"},
	{Upgrade: DealerTell, Price: 3000, Description: "Hints whether the Blackjack dealer already stands"},
	{Upgrade: LuckyCharm, Price: 2000, Description: "A charm for luck. Purely cosmetic"},
}

// Item is one entry of the shop catalog.
type Item struct {
	Upgrade     Upgrade
	Price       int
	Description string
}

// ParseUpgrade accepts the persisted key or a dashed form ("card-counter").
func ParseUpgrade(s string) (Upgrade, error) {
	norm := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(s))
	for _, item := range Catalog {
		if strings.ToLower(string(item.Upgrade)) == norm {
			return item.Upgrade, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownUpgrade, s)
}

// Upgrades maps every known upgrade to whether it is owned.
type Upgrades map[Upgrade]bool

// NewUpgrades returns a map with every catalog upgrade set to false.
func NewUpgrades() Upgrades {
	u := make(Upgrades, len(Catalog))
	for _, item := range Catalog {
		u[item.Upgrade] = false
	}
	return u
}

// Clone copies the map.
func (u Upgrades) Clone() Upgrades {
	out := make(Upgrades, len(u))
	for k, v := range u {
		out[k] = v
	}
	return out
}

// Owned returns the owned upgrade names in sorted order.
func (u Upgrades) Owned() []Upgrade {
	var out []Upgrade
	for k, v := range u {
		if v {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
