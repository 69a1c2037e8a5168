package server

import (
	"errors"
	"time"

	"github.com/lox/minicasino/internal/games"
	"github.com/lox/minicasino/internal/ledger"
	"github.com/lox/minicasino/internal/notify"
	"github.com/lox/minicasino/internal/session"
)

// MessageType represents a WebSocket message type
type MessageType string

const (
	MessageTypeResult       MessageType = "result"
	MessageTypeError        MessageType = "error"
	MessageTypeNotification MessageType = "notification"
	MessageTypeWelcome      MessageType = "welcome"
)

func (mt MessageType) String() string {
	return string(mt)
}

// Request is the only message a client sends: one command line.
type Request struct {
	Command   string `json:"command"`
	RequestID string `json:"requestId,omitempty"`
}

// Message is everything the server sends. Fields unused by a type are
// omitted.
type Message struct {
	Type      MessageType `json:"type"`
	RequestID string      `json:"requestId,omitempty"`
	Output    string      `json:"output,omitempty"`
	Code      string      `json:"code,omitempty"`
	Error     string      `json:"error,omitempty"`
	Kind      notify.Kind `json:"kind,omitempty"`
	Text      string      `json:"text,omitempty"`
	Game      string      `json:"game,omitempty"`
	Balance   int         `json:"balance"`
	Timestamp time.Time   `json:"timestamp"`
}

// StatusResponse is served by /api/status.
type StatusResponse struct {
	Game    string   `json:"game,omitempty"`
	Active  []string `json:"active"`
	Balance int      `json:"balance"`
	Status  string   `json:"status"`
	Pending bool     `json:"pending"`
}

// RoundResponse is one entry of /api/history.
type RoundResponse struct {
	RoundID   string    `json:"roundId"`
	Game      string    `json:"game"`
	Wager     int       `json:"wager"`
	Payout    int       `json:"payout"`
	Net       int       `json:"net"`
	Outcome   string    `json:"outcome"`
	SettledAt time.Time `json:"settledAt"`
}

func roundResponse(r games.Result) RoundResponse {
	return RoundResponse{
		RoundID:   r.RoundID.String(),
		Game:      string(r.Game),
		Wager:     r.Wager,
		Payout:    r.Payout,
		Net:       r.Net(),
		Outcome:   r.Outcome,
		SettledAt: r.SettledAt,
	}
}

var errorCodes = []struct {
	err  error
	code string
}{
	{games.ErrInvalidBet, "invalid_bet"},
	{ledger.ErrInsufficientFunds, "insufficient_funds"},
	{ledger.ErrAlreadyOwned, "already_owned"},
	{ledger.ErrUnknownUpgrade, "unknown_upgrade"},
	{games.ErrDeckExhausted, "deck_exhausted"},
	{games.ErrUnknownGame, "unknown_game"},
	{session.ErrUnknownCommand, "unknown_command"},
	{games.ErrIllegalAction, "illegal_action"},
}

// ErrorCode maps a command error onto a stable wire code.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "internal"
}
