// Package main provides the API server entry point for the valuation service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ibor-valuation/internal/api"
	"github.com/ibor-valuation/internal/circuitbreaker"
	"github.com/ibor-valuation/internal/config"
	"github.com/ibor-valuation/internal/logging"
	"github.com/ibor-valuation/internal/retry"
	"github.com/ibor-valuation/internal/service"
	"github.com/ibor-valuation/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logging.InitGlobalLogger(logging.ParseLogLevel(cfg.Logging.Level), logging.ParseLogFormat(cfg.Logging.Format))
	logger := logging.GetGlobalLogger()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logging.WithLogger(ctx, logger)

	logger.Info("Connecting to databases...")
	connectCfg := retry.DefaultConfig()

	postgres, err := retry.Value(ctx, connectCfg, "connect postgres", func(ctx context.Context) (*storage.PostgresDB, error) {
		return storage.NewPostgresDB(ctx, &cfg.Database.Postgres)
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer postgres.Close()

	clickhouse, err := retry.Value(ctx, connectCfg, "connect clickhouse", func(ctx context.Context) (*storage.ClickHouseDB, error) {
		return storage.NewClickHouseDB(ctx, &cfg.Database.ClickHouse)
	})
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to ClickHouse")
	}
	defer clickhouse.Close()

	health := map[string]api.Pinger{
		"postgres":   postgres,
		"clickhouse": clickhouse,
	}

	// Dimensions come from Postgres, optionally behind the Redis cache.
	var dimensions storage.DimensionReader = storage.NewDimensionRepository(postgres)
	if cfg.Cache.Enabled {
		redis, err := retry.Value(ctx, connectCfg, "connect redis", func(ctx context.Context) (*storage.RedisCache, error) {
			return storage.NewRedisCache(ctx, &cfg.Database.Redis)
		})
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer redis.Close()

		health["redis"] = redis
		dimensions = storage.NewCachedDimensions(dimensions, storage.NewCacheService(redis, cfg.Cache.TTL), logger)
		logger.WithField("ttl", cfg.Cache.TTL.String()).Info("Dimension cache enabled")
	}

	logger.Info("Database connections established")

	store := storage.NewFactStore(
		dimensions,
		storage.NewPositionRepository(postgres),
		storage.NewCashEventRepository(postgres),
		storage.NewGuardedMarketData(
			storage.NewMarketDataRepository(clickhouse),
			circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig("clickhouse"), logger),
		),
	)

	engine := service.NewEngine(store, service.Options{
		PreferredPriceSource: cfg.Valuation.PreferredPriceSource,
		PivotCurrency:        cfg.Valuation.PivotCurrency,
		DefaultPageSize:      cfg.Valuation.DefaultPageSize,
		MaxPageSize:          cfg.Valuation.MaxPageSize,
		MaxParallel:          cfg.Valuation.MaxParallel,
		DefaultCashHorizon:   cfg.Valuation.DefaultCashHorizon,
		MaxPriceRangeDays:    cfg.Valuation.MaxPriceRangeDays,
	})

	services := api.Services{
		Positions:   service.NewPositionService(engine, store, nil),
		Prices:      service.NewPriceService(engine, store),
		Instruments: service.NewInstrumentService(engine),
		Cash:        service.NewCashService(engine, store, nil),
	}

	serverConfig := &api.ServerConfig{
		Host:              cfg.Server.Host,
		Port:              cfg.Server.Port,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
	}

	server := api.NewServer(serverConfig, services, health, logger)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		logger.WithError(err).Fatal("Server failed")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
