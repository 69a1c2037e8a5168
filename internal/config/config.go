// Package config loads the casino's HCL configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/minicasino/internal/games"
	"github.com/lox/minicasino/internal/ledger"
	"github.com/lox/minicasino/internal/store"
)

// DefaultFile is read when no path is given.
const DefaultFile = "minicasino.hcl"

// Config is the complete configuration
type Config struct {
	StartingChips int             `hcl:"starting_chips,optional"`
	Seed          int64           `hcl:"seed,optional"`
	LogLevel      string          `hcl:"log_level,optional"`
	LogFile       string          `hcl:"log_file,optional"`
	Store         *StoreConfig    `hcl:"store,block"`
	Server        *ServerConfig   `hcl:"server,block"`
	Delays        *DelayConfig    `hcl:"delays,block"`
	Upgrades      []UpgradeConfig `hcl:"upgrade,block"`
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Driver    string `hcl:"driver,optional"`
	Path      string `hcl:"path,optional"`
	Addr      string `hcl:"addr,optional"`
	Password  string `hcl:"password,optional"`
	DB        int    `hcl:"db,optional"`
	KeyPrefix string `hcl:"key_prefix,optional"`
}

// ServerConfig is used by the serve command
type ServerConfig struct {
	Address string `hcl:"address,optional"`
	Port    int    `hcl:"port,optional"`
}

// DelayConfig holds the follow-up delays as Go duration strings ("1.5s").
type DelayConfig struct {
	DealerDraw   string `hcl:"dealer_draw,optional"`
	NaturalStand string `hcl:"natural_stand,optional"`
	RouletteSpin string `hcl:"roulette_spin,optional"`
	SlotsTick    string `hcl:"slots_tick,optional"`
	SlotsTicks   int    `hcl:"slots_ticks,optional"`
	AIResponse   string `hcl:"ai_response,optional"`
	AITurn       string `hcl:"ai_turn,optional"`
	FishPause    string `hcl:"fish_pause,optional"`
	FishAITurn   string `hcl:"fish_ai_turn,optional"`
}

// UpgradeConfig overrides the price of one shop item
type UpgradeConfig struct {
	Name  string `hcl:"name,label"`
	Price int    `hcl:"price"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	d := games.DefaultDelays()
	return &Config{
		StartingChips: ledger.DefaultStartingChips,
		LogLevel:      "info",
		Store: &StoreConfig{
			Driver: store.DriverMemory,
		},
		Server: &ServerConfig{
			Address: "localhost",
			Port:    8080,
		},
		Delays: &DelayConfig{
			DealerDraw:   d.DealerDraw.String(),
			NaturalStand: d.NaturalStand.String(),
			RouletteSpin: d.RouletteSpin.String(),
			SlotsTick:    d.SlotsTick.String(),
			SlotsTicks:   d.SlotsTicks,
			AIResponse:   d.AIResponse.String(),
			AITurn:       d.AITurn.String(),
			FishPause:    d.FishPause.String(),
			FishAITurn:   d.FishAITurn.String(),
		},
	}
}

// Load reads filename. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.ApplyDefaults()
	return &config, nil
}

// ApplyDefaults fills unset values. It is safe to call again after overrides.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.StartingChips == 0 {
		c.StartingChips = defaults.StartingChips
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}

	if c.Store == nil {
		c.Store = defaults.Store
	}
	if c.Store.Driver == "" {
		c.Store.Driver = defaults.Store.Driver
	}
	if c.Store.Driver == store.DriverSQLite && c.Store.Path == "" {
		c.Store.Path = "minicasino.db"
	}
	if c.Store.Driver == store.DriverRedis && c.Store.Addr == "" {
		c.Store.Addr = "localhost:6379"
	}

	if c.Server == nil {
		c.Server = defaults.Server
	}
	if c.Server.Address == "" {
		c.Server.Address = defaults.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaults.Server.Port
	}

	if c.Delays == nil {
		c.Delays = defaults.Delays
		return
	}
	d := c.Delays
	for _, f := range []struct {
		v   *string
		def string
	}{
		{&d.DealerDraw, defaults.Delays.DealerDraw},
		{&d.NaturalStand, defaults.Delays.NaturalStand},
		{&d.RouletteSpin, defaults.Delays.RouletteSpin},
		{&d.SlotsTick, defaults.Delays.SlotsTick},
		{&d.AIResponse, defaults.Delays.AIResponse},
		{&d.AITurn, defaults.Delays.AITurn},
		{&d.FishPause, defaults.Delays.FishPause},
		{&d.FishAITurn, defaults.Delays.FishAITurn},
	} {
		if *f.v == "" {
			*f.v = f.def
		}
	}
	if d.SlotsTicks == 0 {
		d.SlotsTicks = defaults.Delays.SlotsTicks
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.StartingChips < 0 {
		return fmt.Errorf("starting chips cannot be negative")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}

	switch c.Store.Driver {
	case store.DriverMemory, store.DriverSQLite, store.DriverRedis:
	default:
		return fmt.Errorf("invalid store driver: %s", c.Store.Driver)
	}
	if c.Store.DB < 0 {
		return fmt.Errorf("redis db cannot be negative")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if _, err := c.GameDelays(); err != nil {
		return err
	}

	seen := make(map[ledger.Upgrade]bool)
	for _, u := range c.Upgrades {
		name, err := ledger.ParseUpgrade(u.Name)
		if err != nil {
			return err
		}
		if seen[name] {
			return fmt.Errorf("upgrade %s configured twice", name)
		}
		seen[name] = true
		if u.Price < 0 {
			return fmt.Errorf("upgrade %s price cannot be negative", name)
		}
	}
	return nil
}

// GameDelays parses the delays block.
func (c *Config) GameDelays() (games.Delays, error) {
	d := c.Delays
	var out games.Delays
	for _, f := range []struct {
		name string
		in   string
		out  *time.Duration
	}{
		{"dealer_draw", d.DealerDraw, &out.DealerDraw},
		{"natural_stand", d.NaturalStand, &out.NaturalStand},
		{"roulette_spin", d.RouletteSpin, &out.RouletteSpin},
		{"slots_tick", d.SlotsTick, &out.SlotsTick},
		{"ai_response", d.AIResponse, &out.AIResponse},
		{"ai_turn", d.AITurn, &out.AITurn},
		{"fish_pause", d.FishPause, &out.FishPause},
		{"fish_ai_turn", d.FishAITurn, &out.FishAITurn},
	} {
		v, err := time.ParseDuration(f.in)
		if err != nil {
			return games.Delays{}, fmt.Errorf("invalid delay %s: %w", f.name, err)
		}
		if v < 0 {
			return games.Delays{}, fmt.Errorf("delay %s cannot be negative", f.name)
		}
		*f.out = v
	}
	if d.SlotsTicks <= 0 {
		return games.Delays{}, fmt.Errorf("slots_ticks must be positive")
	}
	out.SlotsTicks = d.SlotsTicks
	return out, nil
}

// Prices returns the configured price overrides.
func (c *Config) Prices() map[ledger.Upgrade]int {
	out := make(map[ledger.Upgrade]int, len(c.Upgrades))
	for _, u := range c.Upgrades {
		if name, err := ledger.ParseUpgrade(u.Name); err == nil {
			out[name] = u.Price
		}
	}
	return out
}

// StoreOptions converts the store block for store.Open.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Driver:    c.Store.Driver,
		Path:      c.Store.Path,
		Addr:      c.Store.Addr,
		Password:  c.Store.Password,
		DB:        c.Store.DB,
		KeyPrefix: c.Store.KeyPrefix,
	}
}

// ListenAddr is the serve command's listen address.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
