package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rentscope/geointel/pkg/errors"
)

// remoteTier is the shared Redis tier.  Every operation is best-effort from
// the tiered cache's point of view: a Redis outage degrades to memory-only
// behavior instead of failing requests.
type remoteTier struct {
	client redis.UniversalClient
	prefix string
}

func newRemoteTier(client redis.UniversalClient, prefix string) *remoteTier {
	if prefix == "" {
		prefix = "geointel:"
	}
	return &remoteTier{client: client, prefix: prefix}
}

func (r *remoteTier) fullKey(key string) string {
	return r.prefix + key
}

// get returns (nil, false, nil) on a miss.
func (r *remoteTier) get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.fullKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeCacheError, "redis get")
	}
	return data, true, nil
}

func (r *remoteTier) set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.fullKey(key), data, ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "redis set")
	}
	return nil
}

// invalidate scans the prefix keyspace and deletes keys covered by the
// scope.  SCAN keeps this safe on shared instances where KEYS would block.
func (r *remoteTier) invalidate(ctx context.Context, city, district string) (int64, error) {
	var deleted int64
	var cursor uint64
	match := r.prefix + "*"
	for {
		keys, next, err := r.client.Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "redis scan")
		}
		var victims []string
		for _, full := range keys {
			if parseKey(full[len(r.prefix):]).coveredBy(city, district) {
				victims = append(victims, full)
			}
		}
		if len(victims) > 0 {
			n, err := r.client.Del(ctx, victims...).Result()
			if err != nil {
				return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "redis del")
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

func (r *remoteTier) flush(ctx context.Context) error {
	_, err := r.invalidate(ctx, "", "")
	return err
}

func (r *remoteTier) ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "redis ping")
	}
	return nil
}
