package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/telemetry"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		Timestamp: true,
		Caller:    !config.IsProduction(),
		Output:    os.Stderr,
	})
	logging.Info().Str("environment", config.GetEnvironment().String()).Msg("configuration loaded")

	shutdownTracing, err := telemetry.Init(cfg.TraceExporter, cfg.TraceSampleRatio)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to initialize tracing")
	}

	db, err := database.Open(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if cfg.AutoMigrate {
		if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
			logging.Fatal().Err(err).Msg("failed to run migrations")
		}
	}

	rdb, err := database.NewRedisClient(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if rdb == nil {
		logging.Warn().Msg("redis not configured: token revocation and rate limiting disabled")
	}

	store, err := server.NewImageStore(context.Background(), cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to configure image storage")
	}

	srv := server.New(cfg, db, rdb, store)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logging.Fatal().Err(err).Msg("server error")
		}
	case sig := <-quit:
		logging.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("server shutdown error")
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logging.Warn().Err(err).Msg("failed to close redis client")
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if err := shutdownTracing(ctx); err != nil {
		logging.Warn().Err(err).Msg("failed to flush traces")
	}
	logging.Info().Msg("server stopped")
}
