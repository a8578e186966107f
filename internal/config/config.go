package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config mirrors the JSON config layout shared by the server and
// worker binaries.
type Config struct {
	// Mode selects intake's execution strategy: "sync" settles inline,
	// "async" publishes to the event log.
	Mode     string         `json:"mode"`
	HTTPAddr string         `json:"httpAddr"`
	Store    StoreConfig    `json:"store"`
	EventLog EventLogConfig `json:"eventLog"`
	Cache    CacheConfig    `json:"cache"`
	Quotes   []QuoteSeed    `json:"quotes"`

	// RateLimitMs is the minimum spacing between requests per client
	// in milliseconds; zero disables the limiter.
	RateLimitMs int64 `json:"rateLimitIntervalMs"`
}

type StoreConfig struct {
	Backend     string `json:"backend"` // "memory" | "postgres"
	PostgresURL string `json:"postgresUrl"`
}

type EventLogConfig struct {
	Backend    string `json:"backend"` // "memory" | "redis"
	RedisAddr  string `json:"redisAddr"`
	RedisPass  string `json:"redisPassword"`
	RedisDB    int    `json:"redisDb"`
	Stream     string `json:"stream"`
	Group      string `json:"group"`
	Consumer   string `json:"consumer"`
	Partitions int    `json:"partitions"`
}

type CacheConfig struct {
	Backend    string `json:"backend"` // "none" | "memory" | "redis"
	RedisAddr  string `json:"redisAddr"`
	RedisPass  string `json:"redisPassword"`
	RedisDB    int    `json:"redisDb"`
	TTLSeconds int    `json:"ttlSeconds"`
}

func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

func (c *Config) RateLimitInterval() time.Duration {
	return time.Duration(c.RateLimitMs) * time.Millisecond
}

// QuoteSeed preloads the quote source with a tradable instrument.
type QuoteSeed struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

func defaults() Config {
	return Config{
		Mode:     "sync",
		HTTPAddr: ":8080",
		Store:    StoreConfig{Backend: "memory"},
		EventLog: EventLogConfig{
			Backend:    "memory",
			RedisAddr:  "localhost:6379",
			Stream:     "orders.placed",
			Group:      "order-settlement",
			Partitions: 4,
		},
		Cache: CacheConfig{Backend: "memory", TTLSeconds: 300},
		Quotes: []QuoteSeed{
			{Symbol: "AAPL", Price: "221.15"},
			{Symbol: "GOOGL", Price: "207.60"},
			{Symbol: "MSFT", Price: "508.92"},
		},
	}
}

// Load reads the JSON config at path, applying defaults for anything
// unset. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		var file fileConfig
		if err := json.Unmarshal(raw, &file); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		file.apply(&cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Mode {
	case "sync", "async":
	default:
		return fmt.Errorf("config: invalid mode %q", c.Mode)
	}
	switch c.Store.Backend {
	case "memory", "postgres":
	default:
		return fmt.Errorf("config: invalid store backend %q", c.Store.Backend)
	}
	switch c.EventLog.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("config: invalid event log backend %q", c.EventLog.Backend)
	}
	switch c.Cache.Backend {
	case "none", "memory", "redis":
	default:
		return fmt.Errorf("config: invalid cache backend %q", c.Cache.Backend)
	}
	if c.Store.Backend == "postgres" && c.Store.PostgresURL == "" {
		return fmt.Errorf("config: postgres store requires postgresUrl")
	}
	if c.EventLog.Partitions <= 0 {
		return fmt.Errorf("config: partitions must be positive")
	}
	return nil
}

// fileConfig distinguishes unset fields from zero values so partial
// config files only override what they mention.
type fileConfig struct {
	Mode        *string         `json:"mode"`
	HTTPAddr    *string         `json:"httpAddr"`
	Store       *StoreConfig    `json:"store"`
	EventLog    *EventLogConfig `json:"eventLog"`
	Cache       *CacheConfig    `json:"cache"`
	Quotes      []QuoteSeed     `json:"quotes"`
	RateLimitMs *int64          `json:"rateLimitIntervalMs"`
}

func (f *fileConfig) apply(cfg *Config) {
	if f.Mode != nil {
		cfg.Mode = *f.Mode
	}
	if f.HTTPAddr != nil {
		cfg.HTTPAddr = *f.HTTPAddr
	}
	if f.Store != nil {
		cfg.Store = *f.Store
	}
	if f.EventLog != nil {
		el := *f.EventLog
		if el.Stream == "" {
			el.Stream = cfg.EventLog.Stream
		}
		if el.Group == "" {
			el.Group = cfg.EventLog.Group
		}
		if el.Partitions == 0 {
			el.Partitions = cfg.EventLog.Partitions
		}
		if el.RedisAddr == "" {
			el.RedisAddr = cfg.EventLog.RedisAddr
		}
		cfg.EventLog = el
	}
	if f.Cache != nil {
		cache := *f.Cache
		if cache.TTLSeconds == 0 {
			cache.TTLSeconds = cfg.Cache.TTLSeconds
		}
		cfg.Cache = cache
	}
	if f.Quotes != nil {
		cfg.Quotes = f.Quotes
	}
	if f.RateLimitMs != nil {
		cfg.RateLimitMs = *f.RateLimitMs
	}
}
