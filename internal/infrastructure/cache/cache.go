// Package cache provides the tiered result cache in front of the expensive
// market computations: an in-process memory tier backed by an optional
// shared Redis tier, with single-flight protection so a cold key is computed
// exactly once per process regardless of concurrent demand.
package cache

import (
	"strings"
	"time"
)

// ScopeAll is the wildcard segment used when a key dimension is unbounded.
const ScopeAll = "all"

// Key identifies one cached result.  Dataset names the computation family
// ("aggregate", "heatmap", ...); City and District scope it, with empty
// values widening to the "all" wildcard.
type Key struct {
	Dataset  string
	City     string
	District string
}

// String renders the canonical cache key "dataset:city:district".
func (k Key) String() string {
	city := k.City
	if city == "" {
		city = ScopeAll
	}
	district := k.District
	if district == "" {
		district = ScopeAll
	}
	return k.Dataset + ":" + city + ":" + district
}

// coveredBy reports whether invalidating (city, district) must drop this
// key.  Wildcard segments aggregate every scope beneath them, so an "all"
// entry is stale whenever any of its members changes.
func (k Key) coveredBy(city, district string) bool {
	kc := k.City
	if kc == "" {
		kc = ScopeAll
	}
	kd := k.District
	if kd == "" {
		kd = ScopeAll
	}
	cityMatch := kc == ScopeAll || city == "" || kc == city
	districtMatch := kd == ScopeAll || district == "" || kd == district
	return cityMatch && districtMatch
}

// parseKey reverses Key.String.  Malformed strings come back zero-valued and
// are treated as covered by every invalidation.
func parseKey(s string) Key {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return Key{}
	}
	return Key{Dataset: parts[0], City: parts[1], District: parts[2]}
}

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Hits          int64         `json:"hits"`
	Misses        int64         `json:"misses"`
	Computations  int64         `json:"computations"`
	ComputeErrors int64         `json:"compute_errors"`
	HitRate       float64       `json:"hit_rate"`
	MemoryEntries int           `json:"memory_entries"`
	RemoteEnabled bool          `json:"remote_enabled"`
	DefaultTTL    time.Duration `json:"default_ttl"`
}
