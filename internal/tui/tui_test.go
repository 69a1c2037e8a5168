package tui

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/minicasino/internal/ledger"
	"github.com/lox/minicasino/internal/notify"
	"github.com/lox/minicasino/internal/randutil"
	"github.com/lox/minicasino/internal/session"
)

func newSession(t *testing.T, notifier notify.Notifier) *session.Session {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
	l, err := ledger.New(ledger.NewMemoryStore(), logger)
	require.NoError(t, err)
	sess, err := session.New(session.Options{
		Ledger:   l,
		Clock:    quartz.NewMock(t),
		Rand:     randutil.NewSequence(),
		Notifier: notifier,
		Logger:   logger,
	})
	require.NoError(t, err)
	return sess
}

func enter(m *TUIModel, line string) tea.Cmd {
	m.input.SetValue(line)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return cmd
}

func logText(m *TUIModel) string {
	return strings.Join(m.Log(), "\n")
}

func TestModelRunsCommands(t *testing.T) {
	notes := NewNotifications(8)
	sess := newSession(t, notes)
	m := NewTUIModel(context.Background(), sess, notes, log.New(io.Discard))

	assert.Equal(t, "Loading...", m.View())
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	enter(m, "balance")
	assert.Contains(t, logText(m), "Balance: 1000 chips")

	enter(m, "play baccarat")
	assert.Contains(t, logText(m), "unknown game")

	enter(m, "play slots")
	enter(m, "spin 10")
	view := m.View()
	assert.Contains(t, view, "Chips: 990")
	assert.Contains(t, view, "Game: slots")
}

func TestModelShowsNotifications(t *testing.T) {
	notes := NewNotifications(8)
	sess := newSession(t, notes)
	m := NewTUIModel(context.Background(), sess, notes, log.New(io.Discard))

	notes.Notify("You won 50 chips", notify.Success)
	msg := notes.wait()()
	_, cmd := m.Update(msg)
	assert.NotNil(t, cmd, "the model keeps listening")
	assert.Contains(t, logText(m), "You won 50 chips")
}

func TestModelQuitAndClear(t *testing.T) {
	sess := newSession(t, nil)
	m := NewTUIModel(context.Background(), sess, nil, log.New(io.Discard))
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	before := len(m.Log())
	enter(m, "")
	assert.Len(t, m.Log(), before, "blank lines are ignored")
	enter(m, "games")
	require.NotEmpty(t, m.Log())
	enter(m, "clear")
	assert.Empty(t, m.Log())

	assert.NotNil(t, enter(m, "quit"))
	assert.Empty(t, m.View())
}

func TestTabMovesFocus(t *testing.T) {
	m := NewTUIModel(context.Background(), newSession(t, nil), nil, log.New(io.Discard))
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 0, m.focusedPane)

	m.input.SetValue("balance")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotContains(t, logText(m), "Balance:", "enter does nothing while the log is focused")

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, m.focusedPane)
}

func TestNotificationsDropWhenFull(t *testing.T) {
	notes := NewNotifications(1)
	notes.Notify("first", notify.Success)
	notes.Notify("second", notify.Error)

	msg := notes.wait()().(NotificationMsg)
	assert.Equal(t, "first", msg.Text)
	assert.Empty(t, notes.ch)
}

func TestColorCardsKeepsText(t *testing.T) {
	out := colorCards("Player: 10♥ K♠ A♦")
	assert.Contains(t, out, "10♥")
	assert.Contains(t, out, "K♠")
	assert.Contains(t, out, "A♦")
}

func TestRunPlain(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, termenv.Ascii)
	sess := newSession(t, p)

	in := strings.NewReader("balance\n\nplay slots\nspin 10\nbogus\nquit\nbalance\n")
	require.NoError(t, RunPlain(context.Background(), sess, in, p))

	text := out.String()
	assert.Contains(t, text, "Mini Casino")
	assert.Contains(t, text, "Balance: 1000 chips")
	assert.Contains(t, text, "unknown command")
	assert.NotContains(t, text, "Balance: 990", "input after quit is ignored")
	assert.Equal(t, 990, sess.Balance())
}

func TestRunPlainStopsAtEOF(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, termenv.Ascii)
	require.NoError(t, RunPlain(context.Background(), newSession(t, p), strings.NewReader("games\n"), p))
	assert.Contains(t, out.String(), "blackjack")
}

func TestPrinterNotify(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, termenv.Ascii)
	p.Notify("Not enough chips", notify.Error)
	p.Notify("Purchased luckyCharm", notify.Success)
	assert.Contains(t, out.String(), "! Not enough chips")
	assert.Contains(t, out.String(), "+ Purchased luckyCharm")
}
