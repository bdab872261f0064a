/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the debt snowball projection server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load config (.env + environment), apply flags
  2. Initialize run store (sqlite, postgres or memory)
  3. Connect optional Redis preview cache and RabbitMQ publisher
  4. Create API handler and router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PORT)
  -driver  sqlite | postgres | memory (overrides DB_DRIVER)
  -db      SQLite database path (overrides DB_PATH)
           Use ":memory:" for in-memory database

OPTIONAL SERVICES:
  Redis and RabbitMQ are optional. When REDIS_ADDR / RABBITMQ_URL are unset
  or unreachable the server logs a warning and runs without them.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Flush queued events
  4. Close connections
  5. Exit

EXAMPLES:
  ./server -db="./data/snowball.db"
  ./server -driver=memory -port=3000
  DB_DRIVER=postgres DATABASE_URL=postgres://... REDIS_ADDR=localhost:6379 ./server

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/warp/debt-engine/api"
	"github.com/warp/debt-engine/cache"
	"github.com/warp/debt-engine/config"
	"github.com/warp/debt-engine/events"
	"github.com/warp/debt-engine/finance"
	"github.com/warp/debt-engine/finance/store"
	"github.com/warp/debt-engine/store/postgres"
	"github.com/warp/debt-engine/store/sqlite"
)

type closableStore interface {
	finance.RunStore
	Close() error
}

type memoryStore struct{ *store.Memory }

func (memoryStore) Close() error { return nil }

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Flags override environment
	port := flag.Int("port", cfg.Port, "HTTP server port")
	driver := flag.String("driver", cfg.DBDriver, "Run store: sqlite, postgres or memory")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()
	cfg.Port, cfg.DBDriver, cfg.DBPath = *port, *driver, *dbPath
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	zerolog.SetGlobalLevel(cfg.Level())
	ctx := context.Background()

	// Initialize store
	runs, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("Failed to initialize run store")
	}
	defer runs.Close()
	log.Info().Str("driver", cfg.DBDriver).Msg("Run store ready")

	// Initialize handler
	engine := finance.NewProjectionEngine()
	engine.MaxMonths = cfg.MaxMonths

	handler := api.NewHandler(runs, engine, log.Logger)
	handler.CacheTTL = cfg.CacheTTL

	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisAddr)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, preview cache disabled")
		} else {
			defer redisCache.Close()
			handler.Cache = redisCache
			log.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis")
		}
	}

	var publisher events.Publisher = events.LogPublisher{Logger: log.Logger}
	if cfg.RabbitMQURL != "" {
		rabbit, err := events.DialRabbitMQ(cfg.RabbitMQURL, cfg.EventsExchange)
		if err != nil {
			log.Warn().Err(err).Msg("RabbitMQ unavailable, events go to the log only")
		} else {
			defer rabbit.Close()
			publisher = rabbit
			log.Info().Str("exchange", cfg.EventsExchange).Msg("Connected to RabbitMQ")
		}
	}
	handler.Events = api.NewEventDispatcher(publisher, log.Logger)
	handler.Events.Start()

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server starting on http://localhost:%d", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	handler.Events.Stop()

	log.Info().Msg("Server stopped")
}

func openStore(ctx context.Context, cfg config.Config) (closableStore, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.DatabaseURL)
	case config.DriverMemory:
		return memoryStore{store.NewMemory()}, nil
	default:
		return sqlite.New(cfg.DBPath)
	}
}
