// Package store provides the durable backends behind the ledger and the
// round history.
package store

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/minicasino/internal/games"
	"github.com/lox/minicasino/internal/ledger"
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Backend persists the ledger and records settled rounds.
type Backend interface {
	ledger.Persistence
	games.Recorder
	// Recent returns up to limit rounds, newest first.
	Recent(ctx context.Context, limit int) ([]games.Result, error)
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Driver    string
	Path      string
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// Open returns the backend named by opts.Driver. An empty driver is memory.
func Open(ctx context.Context, opts Options, logger *log.Logger) (Backend, error) {
	switch strings.ToLower(opts.Driver) {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		return OpenSQLite(opts.Path, logger)
	case DriverRedis:
		return OpenRedis(ctx, opts, logger)
	}
	return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
}

// Memory keeps everything in process and forgets it on exit.
type Memory struct {
	*ledger.MemoryStore

	mu     sync.Mutex
	rounds []games.Result
}

func NewMemory() *Memory {
	return &Memory{MemoryStore: ledger.NewMemoryStore()}
}

func (m *Memory) RecordRound(res games.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounds = append(m.rounds, res)
	return nil
}

func (m *Memory) Recent(_ context.Context, limit int) ([]games.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := slices.Clone(m.rounds)
	slices.Reverse(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }
