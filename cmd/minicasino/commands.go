package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lox/minicasino/internal/games"
	"github.com/lox/minicasino/internal/notify"
	"github.com/lox/minicasino/internal/server"
	"github.com/lox/minicasino/internal/tui"
)

const shutdownTimeout = 5 * time.Second

// PlayCmd runs the terminal front-end.
type PlayCmd struct {
	Plain bool   `help:"Use a line prompt instead of the full-screen UI"`
	Game  string `arg:"" optional:"" help:"Game to open straight away"`
}

func (c *PlayCmd) Run(g *Globals) error {
	// The full-screen UI owns the terminal, so logs go nowhere unless a
	// log file is configured.
	var logOut io.Writer = io.Discard
	if c.Plain {
		logOut = os.Stderr
	}

	casino, err := g.open(context.Background(), logOut)
	if err != nil {
		return err
	}
	defer casino.Close()

	ctx, cancel := setupSignalHandler(casino.logger)
	defer cancel()

	var (
		printer *tui.Printer
		notes   *tui.Notifications
		sink    notify.Notifier
	)
	if c.Plain {
		printer = tui.NewPrinter(os.Stdout)
		sink = printer
	} else {
		notes = tui.NewNotifications(64)
		sink = notes
	}

	sess, err := casino.newSession(notify.Multi{sink, notify.NewLogger(casino.logger)})
	if err != nil {
		return err
	}
	defer sess.Close()

	if c.Game != "" {
		kind, err := games.ParseKind(c.Game)
		if err != nil {
			return err
		}
		if err := sess.Play(kind); err != nil {
			return err
		}
	}

	casino.logger.Info("Opening the casino", "balance", sess.Balance(), "plain", c.Plain)
	if c.Plain {
		return tui.RunPlain(ctx, sess, os.Stdin, printer)
	}
	return tui.Run(ctx, sess, notes, casino.logger)
}

// ServeCmd exposes one session over websockets.
type ServeCmd struct {
	Addr string `short:"a" help:"Server address to bind to (overrides config)"`
}

func (c *ServeCmd) Run(g *Globals) error {
	casino, err := g.open(context.Background(), os.Stderr)
	if err != nil {
		return err
	}
	defer casino.Close()

	addr := casino.cfg.ListenAddr()
	if c.Addr != "" {
		addr = c.Addr
	}

	srv := server.NewServer(addr, casino.logger)
	sess, err := casino.newSession(notify.Multi{srv, notify.NewLogger(casino.logger)})
	if err != nil {
		return err
	}
	defer sess.Close()
	srv.SetSession(sess, casino.backend)

	ctx, cancel := setupSignalHandler(casino.logger)
	defer cancel()

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(srv.Start)
	eg.Go(func() error {
		<-egCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	})

	casino.logger.Info("Serving the casino",
		"addr", addr,
		"store", casino.cfg.Store.Driver,
		"balance", sess.Balance())
	return eg.Wait()
}

// BalanceCmd prints the persisted balance.
type BalanceCmd struct{}

func (c *BalanceCmd) Run(g *Globals) error {
	return g.runOnce("balance")
}

// ShopCmd lists the shop, or buys one upgrade.
type ShopCmd struct {
	Buy string `arg:"" optional:"" help:"Upgrade to buy (cardCounter, dealerTell, luckyCharm)"`
}

func (c *ShopCmd) Run(g *Globals) error {
	if strings.TrimSpace(c.Buy) == "" {
		return g.runOnce("shop")
	}
	return g.runOnce("buy " + c.Buy)
}

// HistoryCmd lists settled rounds, newest first.
type HistoryCmd struct {
	Limit int `short:"n" default:"10" help:"Number of rounds to show"`
}

func (c *HistoryCmd) Run(g *Globals) error {
	if c.Limit <= 0 {
		return fmt.Errorf("limit must be positive")
	}
	return g.runOnce(fmt.Sprintf("history %d", c.Limit))
}

// StatsCmd summarises every recorded round.
type StatsCmd struct{}

func (c *StatsCmd) Run(g *Globals) error {
	return g.runOnce("stats")
}
