package tui

import (
	"regexp"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/minicasino/internal/notify"
)

// Static styles for content elements
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true)

	CommandStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	BalanceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	RedCardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

var redCard = regexp.MustCompile(`(?:10|[2-9JQKA])[♥♦]`)

// colorCards highlights red cards inside engine output.
func colorCards(text string) string {
	return redCard.ReplaceAllStringFunc(text, func(card string) string {
		return RedCardStyle.Render(card)
	})
}

func notificationStyle(kind notify.Kind) lipgloss.Style {
	if kind == notify.Error {
		return ErrorStyle
	}
	return SuccessStyle
}
