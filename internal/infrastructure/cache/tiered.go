package cache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/rentscope/geointel/internal/infrastructure/monitoring/logging"
	"github.com/rentscope/geointel/pkg/errors"
)

// ComputeFunc produces the value for a missing key.  It runs at most once
// per key per process at any moment, however many callers are waiting.
type ComputeFunc func(ctx context.Context) (interface{}, error)

// Observer receives cache events for external instrumentation.
type Observer interface {
	ObserveCache(hit bool)
	ObserveCacheComputeError()
}

// TieredCache layers an in-process memory tier over an optional shared
// Redis tier.  Reads fall through memory, then Redis, then the compute
// function; computed values populate both tiers.  Compute failures are
// never cached.
type TieredCache struct {
	memory *memoryStore
	remote *remoteTier
	ttl    time.Duration
	group  singleflight.Group
	logger logging.Logger
	now    func() time.Time

	observer Observer

	hits          atomic.Int64
	misses        atomic.Int64
	computations  atomic.Int64
	computeErrors atomic.Int64
}

// Option configures a TieredCache.
type Option func(*TieredCache)

// WithRemote enables the shared Redis tier.  prefix namespaces the keys so
// one instance can serve several deployments; empty means "geointel:".
func WithRemote(client redis.UniversalClient, prefix string) Option {
	return func(t *TieredCache) { t.remote = newRemoteTier(client, prefix) }
}

// WithObserver forwards cache events to an external collector.
func WithObserver(o Observer) Option {
	return func(t *TieredCache) { t.observer = o }
}

// WithTTL overrides the default entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(t *TieredCache) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// NewTieredCache constructs a memory-only cache with a 15 minute TTL;
// options add the Redis tier and tune the TTL.
func NewTieredCache(log logging.Logger, opts ...Option) *TieredCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	t := &TieredCache{
		memory: newMemoryStore(),
		ttl:    15 * time.Minute,
		logger: log.Named("cache"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// GetOrCompute resolves key into dest.  On a miss the compute function runs
// under single-flight and its result is written to every tier before any
// waiter unblocks.  A compute error is returned as a cache compute failure
// and leaves no entry behind, so the next caller retries.
func (t *TieredCache) GetOrCompute(ctx context.Context, key Key, dest interface{}, compute ComputeFunc) error {
	k := key.String()

	if data, ok := t.memory.get(k, t.now()); ok {
		t.recordLookup(true)
		return t.decode(data, dest)
	}

	if t.remote != nil {
		data, ok, err := t.remote.get(ctx, k)
		if err != nil {
			t.logger.Warn("remote cache read failed", logging.String("key", k), logging.Err(err))
		} else if ok {
			t.recordLookup(true)
			t.memory.set(k, data, t.ttl, t.now())
			return t.decode(data, dest)
		}
	}

	t.recordLookup(false)
	v, err, _ := t.group.Do(k, func() (interface{}, error) {
		// A concurrent flight may have filled the memory tier between our
		// miss and acquiring the flight.
		if data, ok := t.memory.get(k, t.now()); ok {
			return data, nil
		}

		t.computations.Add(1)
		value, err := compute(ctx)
		if err != nil {
			t.computeErrors.Add(1)
			if t.observer != nil {
				t.observer.ObserveCacheComputeError()
			}
			return nil, err
		}
		data, err := json.Marshal(value)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "encoding cache entry")
		}

		t.memory.set(k, data, t.ttl, t.now())
		if t.remote != nil {
			if err := t.remote.set(ctx, k, data, t.ttl); err != nil {
				t.logger.Warn("remote cache write failed", logging.String("key", k), logging.Err(err))
			}
		}
		return data, nil
	})
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeSerialization) {
			return err
		}
		return errors.CacheComputeFailure(err)
	}
	return t.decode(v.([]byte), dest)
}

// Invalidate drops every entry covered by the (city, district) scope from
// both tiers, including the wildcard aggregates that contain it.  Empty
// arguments widen the scope, so Invalidate("", "") equals FlushAll.
func (t *TieredCache) Invalidate(ctx context.Context, city, district string) {
	dropped := t.memory.invalidate(city, district)
	if t.remote != nil {
		if _, err := t.remote.invalidate(ctx, city, district); err != nil {
			t.logger.Warn("remote cache invalidation failed",
				logging.String("city", city),
				logging.String("district", district),
				logging.Err(err),
			)
		}
	}
	t.logger.Info("cache invalidated",
		logging.String("city", city),
		logging.String("district", district),
		logging.Int("memory_dropped", dropped),
	)
}

// FlushAll empties both tiers.
func (t *TieredCache) FlushAll(ctx context.Context) {
	t.memory.flush()
	if t.remote != nil {
		if err := t.remote.flush(ctx); err != nil {
			t.logger.Warn("remote cache flush failed", logging.Err(err))
		}
	}
}

// WarmupEntry pairs a key with its compute function for pre-population.
type WarmupEntry struct {
	Key     Key
	Compute ComputeFunc
}

// Warmup computes each entry that is not already cached.  Individual
// failures are logged and skipped so one bad entry cannot abort the batch;
// the return value counts successful fills.
func (t *TieredCache) Warmup(ctx context.Context, entries []WarmupEntry) int {
	warmed := 0
	for _, e := range entries {
		var sink json.RawMessage
		if err := t.GetOrCompute(ctx, e.Key, &sink, e.Compute); err != nil {
			t.logger.Warn("cache warmup entry failed",
				logging.String("key", e.Key.String()),
				logging.Err(err),
			)
			continue
		}
		warmed++
	}
	return warmed
}

// Stats snapshots the counters.  HitRate is 0 until the first lookup.
func (t *TieredCache) Stats() Stats {
	hits := t.hits.Load()
	misses := t.misses.Load()
	s := Stats{
		Hits:          hits,
		Misses:        misses,
		Computations:  t.computations.Load(),
		ComputeErrors: t.computeErrors.Load(),
		MemoryEntries: t.memory.len(),
		RemoteEnabled: t.remote != nil,
		DefaultTTL:    t.ttl,
	}
	if total := hits + misses; total > 0 {
		s.HitRate = float64(hits) / float64(total)
	}
	return s
}

// Ping verifies the Redis tier is reachable.  A memory-only cache is always
// healthy.
func (t *TieredCache) Ping(ctx context.Context) error {
	if t.remote == nil {
		return nil
	}
	return t.remote.ping(ctx)
}

func (t *TieredCache) recordLookup(hit bool) {
	if hit {
		t.hits.Add(1)
	} else {
		t.misses.Add(1)
	}
	if t.observer != nil {
		t.observer.ObserveCache(hit)
	}
}

func (t *TieredCache) decode(data []byte, dest interface{}) error {
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "decoding cache entry")
	}
	return nil
}
