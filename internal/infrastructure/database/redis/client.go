// Package redis builds the go-redis client backing the shared cache tier.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rentscope/geointel/internal/config"
	"github.com/rentscope/geointel/internal/infrastructure/monitoring/logging"
	"github.com/rentscope/geointel/pkg/errors"
)

// NewClient connects to Redis and verifies the connection.  Callers should
// treat a nil cfg.Addr as "tier disabled" and not call this at all.
func NewClient(ctx context.Context, cfg config.RedisConfig, log logging.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "redis connection failed")
	}

	log.Info("connected to redis",
		logging.String("addr", cfg.Addr),
		logging.Int("db", cfg.DB),
	)
	return client, nil
}
