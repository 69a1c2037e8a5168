package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/lox/minicasino/internal/games"
	"github.com/lox/minicasino/internal/ledger"
)

// SQLite stores the ledger and round history in a single database file.
type SQLite struct {
	db     *sql.DB
	logger *log.Logger
}

// OpenSQLite opens (creating if needed) the database at path and migrates it.
func OpenSQLite(path string, logger *log.Logger) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite store needs a path")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer keeps the single-row wallet updates ordered.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	s := &SQLite{db: db, logger: logger.WithPrefix("sqlite")}
	if err := s.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.logger.Debug("Opened database", "path", path)
	return s, nil
}

// Migrate creates the tables and indexes. It is safe to run repeatedly.
func (s *SQLite) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS wallet (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			chips INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS upgrades (
			name TEXT PRIMARY KEY,
			owned INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS rounds (
			id TEXT PRIMARY KEY,
			game TEXT NOT NULL,
			wager INTEGER NOT NULL,
			payout INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			settled_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_settled_at ON rounds(settled_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_rounds_game ON rounds(game, settled_at DESC)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) LoadChips() (int, bool, error) {
	var chips int
	err := s.db.QueryRow(`SELECT chips FROM wallet WHERE id = 1`).Scan(&chips)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to load chips: %w", err)
	}
	return chips, true, nil
}

func (s *SQLite) SaveChips(chips int) error {
	_, err := s.db.Exec(`INSERT INTO wallet (id, chips, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET chips = excluded.chips, updated_at = excluded.updated_at`,
		chips, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save chips: %w", err)
	}
	return nil
}

func (s *SQLite) LoadUpgrades() (ledger.Upgrades, bool, error) {
	rows, err := s.db.Query(`SELECT name, owned FROM upgrades`)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load upgrades: %w", err)
	}
	defer rows.Close()

	upgrades := ledger.Upgrades{}
	for rows.Next() {
		var name string
		var owned bool
		if err := rows.Scan(&name, &owned); err != nil {
			return nil, false, fmt.Errorf("failed to scan upgrade: %w", err)
		}
		upgrades[ledger.Upgrade(name)] = owned
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to load upgrades: %w", err)
	}
	return upgrades, len(upgrades) > 0, nil
}

func (s *SQLite) SaveUpgrades(upgrades ledger.Upgrades) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for name, owned := range upgrades {
		_, err := tx.Exec(`INSERT INTO upgrades (name, owned) VALUES (?, ?)
			ON CONFLICT(name) DO UPDATE SET owned = excluded.owned`, string(name), owned)
		if err != nil {
			return fmt.Errorf("failed to save upgrade %s: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upgrades: %w", err)
	}
	return nil
}

// RecordRound stores one settled round.
func (s *SQLite) RecordRound(res games.Result) error {
	_, err := s.db.Exec(`INSERT INTO rounds (id, game, wager, payout, outcome, settled_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		res.RoundID.String(), string(res.Game), res.Wager, res.Payout, res.Outcome, res.SettledAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to record round %s: %w", res.RoundID, err)
	}
	return nil
}

func (s *SQLite) Recent(ctx context.Context, limit int) ([]games.Result, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, game, wager, payout, outcome, settled_at
		FROM rounds ORDER BY settled_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds: %w", err)
	}
	defer rows.Close()

	var out []games.Result
	for rows.Next() {
		var (
			id, game string
			settled  int64
			res      games.Result
		)
		if err := rows.Scan(&id, &game, &res.Wager, &res.Payout, &res.Outcome, &settled); err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		if res.RoundID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("round %q has a bad id: %w", id, err)
		}
		res.Game = games.Kind(game)
		res.SettledAt = time.Unix(0, settled).UTC()
		out = append(out, res)
	}
	return out, rows.Err()
}
