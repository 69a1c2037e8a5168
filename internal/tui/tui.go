// Package tui is the terminal front-end: a bubbletea model with a scrolling
// log and a command prompt, plus a plain line mode for dumb terminals.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/minicasino/internal/games"
	"github.com/lox/minicasino/internal/notify"
)

const (
	refreshInterval = 250 * time.Millisecond
	sidebarWidth    = 28
	maxLogLines     = 1000
)

// Session is the part of session.Session the front-ends drive.
type Session interface {
	Execute(ctx context.Context, line string) (string, error)
	Status() string
	Balance() int
	Current() games.Kind
}

// NotificationMsg carries one engine notification into the model.
type NotificationMsg notify.Message

type refreshMsg struct{}

// Notifications is a notify.Notifier that feeds the TUI. Notify never
// blocks; if the model falls behind, notifications are dropped.
type Notifications struct {
	ch chan NotificationMsg
}

// NewNotifications creates a notifier with room for buffer pending messages.
func NewNotifications(buffer int) *Notifications {
	return &Notifications{ch: make(chan NotificationMsg, buffer)}
}

func (n *Notifications) Notify(message string, kind notify.Kind) {
	select {
	case n.ch <- NotificationMsg{Text: message, Kind: kind}:
	default:
	}
}

func (n *Notifications) wait() tea.Cmd {
	return func() tea.Msg {
		return <-n.ch
	}
}

// TUIModel represents the Bubble Tea model for the casino
type TUIModel struct {
	session Session
	notes   *Notifications
	logger  *log.Logger
	ctx     context.Context

	// UI components
	logViewport viewport.Model
	input       textinput.Model

	// State
	gameLog     []string
	quitting    bool
	focusedPane int // 0 = log, 1 = input
	status      string
	balance     int
	game        games.Kind

	// Dimensions
	width  int
	height int
}

// NewTUIModel creates a model driving sess. notes may be nil.
func NewTUIModel(ctx context.Context, sess Session, notes *Notifications, logger *log.Logger) *TUIModel {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "Type a command (help, games, play blackjack, deal 10...)"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = CommandStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	m := &TUIModel{
		session:     sess,
		notes:       notes,
		logger:      logger.WithPrefix("tui"),
		ctx:         ctx,
		logViewport: vp,
		input:       ti,
		focusedPane: 1,
	}
	m.refresh()
	m.AddLogEntry(HeaderStyle.Render(" Mini Casino ") + " " + InfoStyle.Render("Type 'help' for commands, 'quit' to leave."))
	return m
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, tick()}
	if m.notes != nil {
		cmds = append(cmds, m.notes.wait())
	}
	return tea.Batch(cmds...)
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case NotificationMsg:
		m.AddLogEntry(notificationStyle(msg.Kind).Render(msg.Text))
		m.refresh()
		if m.notes != nil {
			cmds = append(cmds, m.notes.wait())
		}

	case refreshMsg:
		m.refresh()
		cmds = append(cmds, tick())

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.input.Focus()
			} else {
				m.focusedPane = 0
				m.input.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				line := strings.TrimSpace(m.input.Value())
				m.input.SetValue("")
				if cmd := m.submit(line); cmd != nil {
					return m, cmd
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup", "b":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown", "f":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit runs one command line. It returns tea.Quit for quit/exit.
func (m *TUIModel) submit(line string) tea.Cmd {
	switch strings.ToLower(line) {
	case "":
		return nil
	case "quit", "exit":
		m.quitting = true
		return tea.Quit
	case "clear":
		m.ClearLog()
		return nil
	}

	m.AddLogEntry(CommandStyle.Render("> " + line))
	out, err := m.session.Execute(m.ctx, line)
	if err != nil {
		m.logger.Debug("Command failed", "command", line, "error", err)
		m.AddLogEntry(ErrorStyle.Render(err.Error()))
	} else if out != "" {
		m.AddLogEntry(colorCards(out))
	}
	m.refresh()
	return nil
}

func (m *TUIModel) refresh() {
	m.status = m.session.Status()
	m.balance = m.session.Balance()
	m.game = m.session.Current()
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	inputContent := m.renderInputPane()
	inputHeight := lipgloss.Height(inputContent)
	inputStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(max(m.width-2, 1)).
		Height(max(inputHeight, 1))
	if m.focusedPane == 1 {
		inputStyle = inputStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	inputPane := inputStyle.Render(inputContent)

	paneHeight := max(m.height-inputHeight-4, 1)
	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(m.renderSidebar())

	m.logViewport.Width = max(m.width-sidebarWidth-4, 1)
	m.logViewport.Height = paneHeight

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(m.logViewport.Width).
		Height(paneHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, inputPane)
}

func (m *TUIModel) renderSidebar() string {
	var b strings.Builder
	b.WriteString(BalanceStyle.Render(fmt.Sprintf("Chips: %d", m.balance)))
	b.WriteString("\n")
	game := "lobby"
	if m.game != "" {
		game = string(m.game)
	}
	b.WriteString(InfoStyle.Render("Game: " + game))
	b.WriteString("\n\n")
	b.WriteString(colorCards(m.status))
	return b.String()
}

func (m *TUIModel) renderInputPane() string {
	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.focusedPane == 0 {
		b.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"))
	} else {
		b.WriteString(InfoStyle.Render("Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	}
	return b.String()
}

// AddLogEntry appends entry to the log and scrolls to it.
func (m *TUIModel) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, strings.Split(entry, "\n")...)
	if over := len(m.gameLog) - maxLogLines; over > 0 {
		m.gameLog = m.gameLog[over:]
	}
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// ClearLog clears the game log
func (m *TUIModel) ClearLog() {
	m.gameLog = nil
	m.logViewport.SetContent("")
}

// Log returns the log lines, styling included.
func (m *TUIModel) Log() []string {
	out := make([]string, len(m.gameLog))
	copy(out, m.gameLog)
	return out
}

// Run starts the full-screen program and blocks until the player quits.
func Run(ctx context.Context, sess Session, notes *Notifications, logger *log.Logger) error {
	m := NewTUIModel(ctx, sess, notes, logger)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
