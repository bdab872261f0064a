/*
Package config loads server settings from the environment.

PURPOSE:
  One place that knows every environment variable the server reads.
  An optional .env file in the working directory is loaded first
  (godotenv); variables already set in the environment win.

VARIABLES:
  PORT             HTTP port (default 8080)
  DB_DRIVER        sqlite | postgres | memory (default sqlite)
  DB_PATH          SQLite file (default snowball.db, ":memory:" allowed)
  DATABASE_URL     Postgres DSN, required when DB_DRIVER=postgres
  REDIS_ADDR       host:port of Redis; empty disables the preview cache
  CACHE_TTL        preview cache TTL (Go duration, default 10m)
  RABBITMQ_URL     amqp:// URL; empty disables event publishing
  EVENTS_EXCHANGE  topic exchange name (default projection_events)
  LOG_LEVEL        zerolog level (default info)
  MAX_MONTHS       projection month ceiling (default 1200)

SEE ALSO:
  - cmd/server/main.go: flags override PORT, DB_DRIVER and DB_PATH
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/warp/debt-engine/finance"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the complete server configuration.
type Config struct {
	Port           int
	DBDriver       string
	DBPath         string
	DatabaseURL    string
	RedisAddr      string
	CacheTTL       time.Duration
	RabbitMQURL    string
	EventsExchange string
	LogLevel       string
	MaxMonths      int
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Port:           8080,
		DBDriver:       DriverSQLite,
		DBPath:         "snowball.db",
		CacheTTL:       10 * time.Minute,
		EventsExchange: "projection_events",
		LogLevel:       "info",
		MaxMonths:      finance.DefaultMaxMonths,
	}
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an arbitrary variable source.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("PORT: %w", err)
		}
		cfg.Port = port
	}
	if v, ok := lookup("DB_DRIVER"); ok && v != "" {
		cfg.DBDriver = v
	}
	if v, ok := lookup("DB_PATH"); ok && v != "" {
		cfg.DBPath = v
	}
	if v, ok := lookup("DATABASE_URL"); ok {
		cfg.DatabaseURL = v
	}
	if v, ok := lookup("REDIS_ADDR"); ok {
		cfg.RedisAddr = v
	}
	if v, ok := lookup("CACHE_TTL"); ok && v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("CACHE_TTL: %w", err)
		}
		cfg.CacheTTL = ttl
	}
	if v, ok := lookup("RABBITMQ_URL"); ok {
		cfg.RabbitMQURL = v
	}
	if v, ok := lookup("EVENTS_EXCHANGE"); ok && v != "" {
		cfg.EventsExchange = v
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup("MAX_MONTHS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("MAX_MONTHS: %w", err)
		}
		cfg.MaxMonths = n
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q (want sqlite, postgres or memory)", c.DBDriver)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.MaxMonths <= 0 {
		return fmt.Errorf("MAX_MONTHS must be positive")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

// Level returns the parsed log level, info when unparseable.
func (c Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.InfoLevel
	}
	return level
}
