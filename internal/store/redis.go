package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/lox/minicasino/internal/games"
	"github.com/lox/minicasino/internal/ledger"
)

// historyLimit caps the round list kept in Redis.
const historyLimit = 1000

const defaultKeyPrefix = "minicasino:"

// Redis keeps the ledger in plain keys and the history in a capped list.
type Redis struct {
	client *redis.Client
	prefix string
	logger *log.Logger
}

// OpenRedis connects to opts.Addr and checks the server answers.
func OpenRedis(ctx context.Context, opts Options, logger *log.Logger) (*Redis, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis store needs an address")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", opts.Addr, err)
	}
	return NewRedis(client, opts.KeyPrefix, logger), nil
}

// NewRedis wraps an existing client. An empty prefix uses "minicasino:".
func NewRedis(client *redis.Client, prefix string, logger *log.Logger) *Redis {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &Redis{client: client, prefix: prefix, logger: logger.WithPrefix("redis")}
}

func (r *Redis) key(name string) string { return r.prefix + name }

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) LoadChips() (int, bool, error) {
	val, err := r.client.Get(context.Background(), r.key("chips")).Result()
	if err == redis.Nil {
		return 0, false, nil
	} else if err != nil {
		return 0, false, fmt.Errorf("failed to load chips: %w", err)
	}
	chips, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("stored chips %q: %w", val, err)
	}
	return chips, true, nil
}

func (r *Redis) SaveChips(chips int) error {
	if err := r.client.Set(context.Background(), r.key("chips"), chips, 0).Err(); err != nil {
		return fmt.Errorf("failed to save chips: %w", err)
	}
	return nil
}

func (r *Redis) LoadUpgrades() (ledger.Upgrades, bool, error) {
	vals, err := r.client.HGetAll(context.Background(), r.key("upgrades")).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to load upgrades: %w", err)
	}
	if len(vals) == 0 {
		return nil, false, nil
	}
	upgrades := make(ledger.Upgrades, len(vals))
	for name, v := range vals {
		upgrades[ledger.Upgrade(name)] = v == "1"
	}
	return upgrades, true, nil
}

func (r *Redis) SaveUpgrades(upgrades ledger.Upgrades) error {
	fields := make(map[string]any, len(upgrades))
	for name, owned := range upgrades {
		v := "0"
		if owned {
			v = "1"
		}
		fields[string(name)] = v
	}
	if len(fields) == 0 {
		return nil
	}
	if err := r.client.HSet(context.Background(), r.key("upgrades"), fields).Err(); err != nil {
		return fmt.Errorf("failed to save upgrades: %w", err)
	}
	return nil
}

type roundRecord struct {
	ID        string `json:"id"`
	Game      string `json:"game"`
	Wager     int    `json:"wager"`
	Payout    int    `json:"payout"`
	Outcome   string `json:"outcome"`
	SettledAt int64  `json:"settled_at"`
}

// RecordRound pushes the round onto the history list, newest first.
func (r *Redis) RecordRound(res games.Result) error {
	data, err := json.Marshal(roundRecord{
		ID:        res.RoundID.String(),
		Game:      string(res.Game),
		Wager:     res.Wager,
		Payout:    res.Payout,
		Outcome:   res.Outcome,
		SettledAt: res.SettledAt.UnixNano(),
	})
	if err != nil {
		return err
	}
	ctx := context.Background()
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, r.key("rounds"), data)
		pipe.LTrim(ctx, r.key("rounds"), 0, historyLimit-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record round %s: %w", res.RoundID, err)
	}
	return nil
}

func (r *Redis) Recent(ctx context.Context, limit int) ([]games.Result, error) {
	stop := int64(limit - 1)
	if limit <= 0 {
		stop = -1
	}
	vals, err := r.client.LRange(ctx, r.key("rounds"), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load rounds: %w", err)
	}

	out := make([]games.Result, 0, len(vals))
	for _, v := range vals {
		var rec roundRecord
		if err := json.Unmarshal([]byte(v), &rec); err != nil {
			r.logger.Warn("Skipping unreadable round", "error", err)
			continue
		}
		id, err := uuid.Parse(rec.ID)
		if err != nil {
			r.logger.Warn("Skipping round with bad id", "id", rec.ID)
			continue
		}
		out = append(out, games.Result{
			RoundID:   id,
			Game:      games.Kind(rec.Game),
			Wager:     rec.Wager,
			Payout:    rec.Payout,
			Outcome:   rec.Outcome,
			SettledAt: time.Unix(0, rec.SettledAt).UTC(),
		})
	}
	return out, nil
}

// Clear deletes every key this store owns.
func (r *Redis) Clear(ctx context.Context) error {
	err := r.client.Del(ctx, r.key("chips"), r.key("upgrades"), r.key("rounds")).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}
