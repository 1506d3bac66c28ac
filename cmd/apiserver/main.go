// The apiserver binary serves the market intelligence HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rentscope/geointel/internal/application/market"
	"github.com/rentscope/geointel/internal/config"
	"github.com/rentscope/geointel/internal/domain/aggregation"
	"github.com/rentscope/geointel/internal/domain/clustering"
	"github.com/rentscope/geointel/internal/infrastructure/cache"
	"github.com/rentscope/geointel/internal/infrastructure/database/postgres"
	"github.com/rentscope/geointel/internal/infrastructure/database/redis"
	"github.com/rentscope/geointel/internal/infrastructure/monitoring/logging"
	"github.com/rentscope/geointel/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/rentscope/geointel/internal/interfaces/http"
	"github.com/rentscope/geointel/internal/interfaces/http/handlers"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	port := flag.Int("port", 0, "HTTP port (overrides config)")
	migrationsPath := flag.String("migrations", "file://migrations", "migrations source URL")
	skipMigrations := flag.Bool("skip-migrations", false, "do not apply migrations on startup")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config file unavailable, using environment: %v\n", err)
		cfg, err = config.LoadFromEnv()
		if err != nil {
			fmt.Fprintf(os.Stderr, "loading configuration: %v\n", err)
			os.Exit(1)
		}
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	logger, err := logging.NewLogger(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetDefault(logger)
	logger.Info("starting geointel api server",
		logging.String("version", Version),
		logging.Int("port", cfg.Server.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !*skipMigrations {
		if err := postgres.Migrate(postgres.DSN(cfg.Database), *migrationsPath); err != nil {
			logger.Fatal("applying migrations", logging.Err(err))
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("connecting to postgres", logging.Err(err))
	}
	defer pool.Close()
	store := postgres.NewStore(pool, logger)

	metrics := prometheus.NewMetrics()

	cacheOpts := []cache.Option{
		cache.WithTTL(cfg.Cache.DefaultTTL),
		cache.WithObserver(metrics),
	}
	probes := map[string]handlers.Pinger{
		"postgres": handlers.PingerFunc(pool.Ping),
	}
	if cfg.Redis.Addr != "" {
		redisClient, err := redis.NewClient(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Fatal("connecting to redis", logging.Err(err))
		}
		defer redisClient.Close()
		cacheOpts = append(cacheOpts, cache.WithRemote(redisClient, cfg.Redis.KeyPrefix))
	}
	tiered := cache.NewTieredCache(logger, cacheOpts...)
	probes["cache"] = handlers.PingerFunc(tiered.Ping)

	svc := market.NewService(market.Deps{
		Clusterer: clustering.NewEngine(clustering.Options{
			MaxIterations: cfg.Clustering.MaxIterations,
			Epsilon:       cfg.Clustering.Epsilon,
			MinRadiusKM:   cfg.Clustering.MinRadiusKM,
		}, logger),
		Aggregator:   aggregation.NewAggregator(store, store, logger),
		Points:       store,
		Cache:        tiered,
		Metrics:      metrics,
		Logger:       logger,
		HotDistricts: cfg.Cache.HotDistricts,
	})

	if warmed := svc.WarmupHotDistricts(ctx); warmed > 0 {
		logger.Info("initial cache warmup complete", logging.Int("entries", warmed))
	}

	router := httpserver.NewRouter(httpserver.RouterDeps{
		Service:         svc,
		Metrics:         metrics,
		Logger:          logger,
		Version:         Version,
		ReadinessProbes: probes,
		Mode:            cfg.Server.Mode,
	})

	server := httpserver.NewServer(cfg.Server, router, logger)
	if err := server.Run(ctx); err != nil {
		logger.Fatal("http server failed", logging.Err(err))
	}
	logger.Info("shutdown complete")
}
