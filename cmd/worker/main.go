// The worker binary keeps the shared cache warm: it periodically
// recomputes the aggregates for the configured hot districts so API
// instances serve them without a cold miss.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rentscope/geointel/internal/application/market"
	"github.com/rentscope/geointel/internal/config"
	"github.com/rentscope/geointel/internal/domain/aggregation"
	"github.com/rentscope/geointel/internal/infrastructure/cache"
	"github.com/rentscope/geointel/internal/infrastructure/database/postgres"
	"github.com/rentscope/geointel/internal/infrastructure/database/redis"
	"github.com/rentscope/geointel/internal/infrastructure/monitoring/logging"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
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

	logger, err := logging.NewLogger(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing logger: %v\n", err)
		os.Exit(1)
	}
	logger = logger.Named("worker")

	if len(cfg.Cache.HotDistricts) == 0 {
		logger.Warn("no hot districts configured, worker has nothing to do")
		return
	}
	if cfg.Redis.Addr == "" {
		logger.Warn("no redis configured; warmup would only fill this process's memory")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("connecting to postgres", logging.Err(err))
	}
	defer pool.Close()
	store := postgres.NewStore(pool, logger)

	redisClient, err := redis.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("connecting to redis", logging.Err(err))
	}
	defer redisClient.Close()

	tiered := cache.NewTieredCache(logger,
		cache.WithTTL(cfg.Cache.DefaultTTL),
		cache.WithRemote(redisClient, cfg.Redis.KeyPrefix),
	)

	svc := market.NewService(market.Deps{
		Aggregator:   aggregation.NewAggregator(store, store, logger),
		Points:       store,
		Cache:        tiered,
		Logger:       logger,
		HotDistricts: cfg.Cache.HotDistricts,
	})

	interval := cfg.Cache.WarmupInterval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	logger.Info("warmup worker started",
		logging.Int("hot_districts", len(cfg.Cache.HotDistricts)),
		logging.Duration("interval", interval),
	)

	svc.WarmupHotDistricts(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("warmup worker stopping")
			return
		case <-ticker.C:
			// The warmup refreshes expired entries only; live ones hit the
			// cache and cost nothing.
			svc.WarmupHotDistricts(ctx)
		}
	}
}
