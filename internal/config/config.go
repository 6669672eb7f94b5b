package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Dictionary storage backends
const (
	DictionaryStorageMemory = "memory"
	DictionaryStorageRedis  = "redis"
)

// Config is the server configuration, read from the environment at startup
type Config struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// DictionaryPath is a word list file, one word per line. When empty the
	// cached list (redis) or the built-in list is used.
	DictionaryPath    string `env:"DICTIONARY_PATH"`
	DictionaryStorage string `env:"DICTIONARY_STORAGE" envDefault:"memory"`
	RedisURL          string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`

	RoomMaxAge        time.Duration `env:"ROOM_MAX_AGE" envDefault:"1h"`
	RoomSweepInterval time.Duration `env:"ROOM_SWEEP_INTERVAL" envDefault:"5m"`

	WSAllowedOrigins []string `env:"WS_ALLOWED_ORIGINS" envSeparator:","`
}

// Load parses the configuration from environment variables
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values the environment parser cannot
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	switch c.DictionaryStorage {
	case DictionaryStorageMemory, DictionaryStorageRedis:
	default:
		return fmt.Errorf("invalid DICTIONARY_STORAGE %q: must be %q or %q",
			c.DictionaryStorage, DictionaryStorageMemory, DictionaryStorageRedis)
	}
	if c.RoomMaxAge <= 0 {
		return fmt.Errorf("invalid ROOM_MAX_AGE %s", c.RoomMaxAge)
	}
	if c.RoomSweepInterval <= 0 {
		return fmt.Errorf("invalid ROOM_SWEEP_INTERVAL %s", c.RoomSweepInterval)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// SlogLevel returns the configured log level, falling back to info
func (c Config) SlogLevel() slog.Level {
	level, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLogLevel maps debug, info, warn and error to slog levels
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
	return level, nil
}
