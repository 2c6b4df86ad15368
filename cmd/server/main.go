package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/text-to-sql-chat/internal/api"
	"github.com/Rrens/text-to-sql-chat/internal/config"
	"github.com/Rrens/text-to-sql-chat/internal/datasource"
	"github.com/Rrens/text-to-sql-chat/internal/datasource/drivers"
	"github.com/Rrens/text-to-sql-chat/internal/domain"
	"github.com/Rrens/text-to-sql-chat/internal/logger"
	"github.com/Rrens/text-to-sql-chat/internal/repository/postgres"
	"github.com/Rrens/text-to-sql-chat/internal/repository/redis"
	"github.com/Rrens/text-to-sql-chat/internal/repository/sqlite"
	"github.com/Rrens/text-to-sql-chat/internal/service"
)

func main() {
	// Load .env file - try multiple locations
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logCloser, err := logger.Setup(cfg.Logging, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Str("store", cfg.Store.Driver).
		Msg("Starting chat backend")

	ctx := context.Background()

	history, err := openHistory(ctx, cfg.Store)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history store")
	}
	defer history.Close()

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer redisClient.Close()
	}

	var runner service.QueryRunner
	if cfg.DataSource.Enabled() {
		executor, err := datasource.NewExecutor(ctx, drivers.NewRouter(), cfg.DataSource)
		if err != nil {
			log.Fatal().Err(err).Str("driver", cfg.DataSource.Driver).Msg("Failed to connect to data source")
		}
		defer executor.Close()
		runner = executor
		log.Info().Str("driver", cfg.DataSource.Driver).Msg("Fixture SQL will run against the data source")
	}

	router, err := api.NewRouter(cfg, history, redisClient, runner)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build router")
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// openHistory opens the configured history store, applying migrations first
func openHistory(ctx context.Context, cfg config.StoreConfig) (domain.HistoryRepository, error) {
	switch cfg.Driver {
	case "sqlite", "":
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "postgres":
		repo, err := postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
