package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ChainConfig is the per-chain execution endpoint configuration. Not every
// field applies to every chain: nova uses contract+denom+gas_price, evm uses
// contract+gas_limit, solana uses program.
type ChainConfig struct {
	Enabled  bool   `toml:"enabled"`
	RPCURL   string `toml:"rpc_url"`
	Contract string `toml:"contract"`
	Program  string `toml:"program"`
	Denom    string `toml:"denom"`

	// Currency labels the fee quote (e.g. "UNOVA", "ETH", "SOL").
	Currency string `toml:"currency"`

	// FallbackFee is the conservative static quote used when cost
	// simulation fails. Estimation failures are never fatal.
	FallbackFee float64 `toml:"fallback_fee"`

	GasPrice float64 `toml:"gas_price"`
	GasLimit uint64  `toml:"gas_limit"`
}

type Config struct {
	App struct {
		Symbol       string `toml:"symbol"`
		TradeWindow  int    `toml:"trade_window"`
		CandleWindow int    `toml:"candle_window"`
	} `toml:"app"`

	Fees struct {
		DebounceMs int `toml:"debounce_ms"`
		RefreshMs  int `toml:"refresh_ms"`
	} `toml:"fees"`

	Market struct {
		RestURL string `toml:"rest_url"`
		WsURL   string `toml:"ws_url"`
	} `toml:"market"`

	Chains map[string]ChainConfig `toml:"chains"`

	Storage struct {
		Driver      string `toml:"driver"` // memory | sqlite | postgres | redis
		Path        string `toml:"path"`
		DSN         string `toml:"dsn"`
		RedisAddr   string `toml:"redis_addr"`
		RedisPrefix string `toml:"redis_prefix"`
		RedisTTLMin int    `toml:"redis_ttl_min"`
	} `toml:"storage"`

	Relay struct {
		Enabled bool   `toml:"enabled"`
		NatsURL string `toml:"nats_url"`
	} `toml:"relay"`
}

func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.TradeWindow <= 0 {
		cfg.App.TradeWindow = 100
	}
	if cfg.App.CandleWindow <= 0 {
		cfg.App.CandleWindow = 500
	}
	if cfg.Fees.DebounceMs <= 0 {
		cfg.Fees.DebounceMs = 500
	}
	if cfg.Fees.RefreshMs <= 0 {
		cfg.Fees.RefreshMs = 5000
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "memory"
	}
	if cfg.Storage.RedisPrefix == "" {
		cfg.Storage.RedisPrefix = "novatrade"
	}
	if cfg.Relay.NatsURL == "" {
		cfg.Relay.NatsURL = "nats://localhost:4222"
	}
}

func validate(cfg *Config) error {
	cfg.App.Symbol = strings.ToUpper(strings.TrimSpace(cfg.App.Symbol))
	if cfg.App.Symbol == "" {
		return errors.New("app.symbol is empty")
	}
	if strings.TrimSpace(cfg.Market.RestURL) == "" {
		return errors.New("market.rest_url is empty")
	}
	if strings.TrimSpace(cfg.Market.WsURL) == "" {
		return errors.New("market.ws_url is empty")
	}

	for name, ch := range cfg.Chains {
		if ch.Enabled && strings.TrimSpace(ch.RPCURL) == "" {
			return fmt.Errorf("chains.%s.rpc_url empty but enabled", name)
		}
	}

	switch cfg.Storage.Driver {
	case "memory", "sqlite", "postgres", "redis":
	default:
		return fmt.Errorf("unknown storage.driver %q", cfg.Storage.Driver)
	}
	if cfg.Storage.Driver == "sqlite" && strings.TrimSpace(cfg.Storage.Path) == "" {
		return errors.New("storage.path required for sqlite")
	}
	if cfg.Storage.Driver == "postgres" && strings.TrimSpace(cfg.Storage.DSN) == "" {
		return errors.New("storage.dsn required for postgres")
	}
	if cfg.Storage.Driver == "redis" && strings.TrimSpace(cfg.Storage.RedisAddr) == "" {
		return errors.New("storage.redis_addr required for redis")
	}
	return nil
}

// FeeDebounce returns the quiet period before a fee recompute.
func (c *Config) FeeDebounce() time.Duration {
	return time.Duration(c.Fees.DebounceMs) * time.Millisecond
}

// FeeRefresh returns the periodic re-quote interval.
func (c *Config) FeeRefresh() time.Duration {
	return time.Duration(c.Fees.RefreshMs) * time.Millisecond
}

// EnabledChains returns the names of chains with enabled=true.
func (c *Config) EnabledChains() []string {
	var out []string
	for name, ch := range c.Chains {
		if ch.Enabled {
			out = append(out, name)
		}
	}
	return out
}
