package games

import (
	"strings"

	"github.com/lox/minicasino/cards"
)

func formatCards(cs []cards.Card) string {
	if len(cs) == 0 {
		return "--"
	}
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}
