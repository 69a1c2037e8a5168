package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/minicasino/internal/config"
	"github.com/lox/minicasino/internal/ledger"
	"github.com/lox/minicasino/internal/notify"
	"github.com/lox/minicasino/internal/randutil"
	"github.com/lox/minicasino/internal/session"
	"github.com/lox/minicasino/internal/store"
)

// Globals are flags shared by every command. Each can also be set from the
// environment or a .env file.
type Globals struct {
	Config    string `short:"c" default:"${config_file}" env:"MINICASINO_CONFIG" help:"Path to HCL configuration file"`
	Seed      *int64 `env:"MINICASINO_SEED" help:"Deterministic RNG seed (overrides config)"`
	LogLevel  string `short:"l" env:"MINICASINO_LOG_LEVEL" help:"Log level: debug, info, warn, error (overrides config)"`
	LogFile   string `env:"MINICASINO_LOG_FILE" help:"Write logs to this file (overrides config)"`
	Store     string `env:"MINICASINO_STORE" help:"Store driver: memory, sqlite or redis (overrides config)"`
	DBPath    string `name:"db" env:"MINICASINO_DB" help:"SQLite database path (overrides config)"`
	RedisAddr string `env:"MINICASINO_REDIS_ADDR" help:"Redis address (overrides config)"`
}

// loadConfig reads the config file and applies flag overrides.
func (g *Globals) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if g.Seed != nil {
		cfg.Seed = *g.Seed
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}
	if g.LogFile != "" {
		cfg.LogFile = g.LogFile
	}
	if g.Store != "" {
		cfg.Store.Driver = g.Store
	}
	if g.DBPath != "" {
		cfg.Store.Path = g.DBPath
	}
	if g.RedisAddr != "" {
		cfg.Store.Addr = g.RedisAddr
	}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setupLogger logs to cfg.LogFile when set and to fallback otherwise.
func setupLogger(cfg *config.Config, fallback io.Writer) (*log.Logger, func(), error) {
	out := fallback
	closer := func() {}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		closer = func() { _ = f.Close() }
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
	switch cfg.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}
	return logger, closer, nil
}

// casino is everything a command needs before it builds a session.
type casino struct {
	cfg      *config.Config
	logger   *log.Logger
	backend  store.Backend
	ledger   *ledger.Ledger
	closeLog func()
}

// open loads config, logging, the store and the ledger. logOut receives
// logs when no log file is configured.
func (g *Globals) open(ctx context.Context, logOut io.Writer) (*casino, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, closeLog, err := setupLogger(cfg, logOut)
	if err != nil {
		return nil, err
	}

	backend, err := store.Open(ctx, cfg.StoreOptions(), logger)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("opening store: %w", err)
	}
	l, err := ledger.New(backend, logger, ledger.WithStartingChips(cfg.StartingChips))
	if err != nil {
		_ = backend.Close()
		closeLog()
		return nil, fmt.Errorf("loading ledger: %w", err)
	}

	logger.Debug("Casino opened", "store", cfg.Store.Driver, "chips", l.Balance())
	return &casino{
		cfg:      cfg,
		logger:   logger,
		backend:  backend,
		ledger:   l,
		closeLog: closeLog,
	}, nil
}

func (c *casino) newSession(notifier notify.Notifier) (*session.Session, error) {
	delays, err := c.cfg.GameDelays()
	if err != nil {
		return nil, err
	}

	seed := c.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	} else {
		c.logger.Info("Using deterministic seed", "seed", seed)
	}

	return session.New(session.Options{
		Ledger:   c.ledger,
		Rand:     randutil.Locked(randutil.New(seed)),
		Notifier: notifier,
		Logger:   c.logger,
		Recorder: c.backend,
		History:  c.backend,
		Delays:   delays,
		Prices:   c.cfg.Prices(),
	})
}

func (c *casino) Close() {
	if err := c.backend.Close(); err != nil {
		c.logger.Error("Failed to close store", "error", err)
	}
	c.closeLog()
}

// runOnce executes a single session command and prints the reply.
func (g *Globals) runOnce(line string) error {
	ctx := context.Background()
	c, err := g.open(ctx, os.Stderr)
	if err != nil {
		return err
	}
	defer c.Close()

	sess, err := c.newSession(notify.NewLogger(c.logger))
	if err != nil {
		return err
	}
	defer sess.Close()

	out, err := sess.Execute(ctx, line)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

// setupSignalHandler returns a context cancelled on interrupt signals.
func setupSignalHandler(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Received signal, shutting down gracefully", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}
