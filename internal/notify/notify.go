// Package notify carries one-way, user-visible messages from the engines to
// whatever presentation layer is attached.
package notify

import (
	"sync"

	"github.com/charmbracelet/log"
)

// Kind classifies a notification
type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
)

// Notifier receives fire-and-forget notifications. Implementations must not
// block the caller for long; nothing is returned to the engine.
type Notifier interface {
	Notify(message string, kind Kind)
}

// Func adapts a plain function to Notifier.
type Func func(message string, kind Kind)

func (f Func) Notify(message string, kind Kind) { f(message, kind) }

// Discard drops every notification.
var Discard Notifier = Func(func(string, Kind) {})

// Message is a single recorded notification.
type Message struct {
	Text string
	Kind Kind
}

// Recorder keeps every notification in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
}

func (r *Recorder) Notify(message string, kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, Message{Text: message, Kind: kind})
}

// Messages returns a copy of everything recorded so far.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return Message{}, false
	}
	return r.messages[len(r.messages)-1], true
}

// Reset forgets recorded notifications.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}

// Logger writes notifications to a charm logger.
type Logger struct {
	logger *log.Logger
}

// NewLogger returns a Notifier backed by logger.
func NewLogger(logger *log.Logger) *Logger {
	return &Logger{logger: logger.WithPrefix("notify")}
}

func (l *Logger) Notify(message string, kind Kind) {
	if kind == Error {
		l.logger.Warn(message)
		return
	}
	l.logger.Info(message)
}

// Multi fans a notification out to several notifiers in order.
type Multi []Notifier

func (m Multi) Notify(message string, kind Kind) {
	for _, n := range m {
		if n != nil {
			n.Notify(message, kind)
		}
	}
}
