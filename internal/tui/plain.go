package tui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lox/minicasino/internal/notify"
)

// Printer writes lines to a terminal. It is safe for concurrent use, so
// timer-fired notifications can interleave with command output.
type Printer struct {
	mu       sync.Mutex
	out      io.Writer
	renderer *lipgloss.Renderer
}

// NewPrinter detects the color profile of out. Pass termenv.Ascii as
// profile to force plain text.
func NewPrinter(out io.Writer, profile ...termenv.Profile) *Printer {
	r := lipgloss.NewRenderer(out)
	if len(profile) > 0 {
		r.SetColorProfile(profile[0])
	} else {
		r.SetColorProfile(termenv.NewOutput(out).EnvColorProfile())
	}
	return &Printer{out: out, renderer: r}
}

func (p *Printer) println(style lipgloss.Style, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintln(p.out, p.renderer.NewStyle().Inherit(style).Render(text))
}

// Notify implements notify.Notifier.
func (p *Printer) Notify(message string, kind notify.Kind) {
	prefix := "+ "
	if kind == notify.Error {
		prefix = "! "
	}
	p.println(notificationStyle(kind), prefix+message)
}

// RunPlain reads commands from in, one per line, until EOF, "quit" or ctx
// is cancelled.
func RunPlain(ctx context.Context, sess Session, in io.Reader, p *Printer) error {
	p.println(HeaderStyle, " Mini Casino ")
	p.println(InfoStyle, "Type 'help' for commands, 'quit' to leave.")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-errc:
					return err
				default:
					return nil
				}
			}
			line = strings.TrimSpace(line)
			switch strings.ToLower(line) {
			case "":
				continue
			case "quit", "exit":
				return nil
			}
			out, err := sess.Execute(ctx, line)
			if err != nil {
				p.println(ErrorStyle, err.Error())
				continue
			}
			if out != "" {
				p.println(lipgloss.NewStyle(), out)
			}
		}
	}
}
