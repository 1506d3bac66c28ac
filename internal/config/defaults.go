package config

import "time"

const (
	DefaultServerPort = 8080
	DefaultServerMode = "debug"

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "geointel"
	DefaultDBMaxConns = 25

	DefaultRedisKeyPrefix = "geointel:"

	DefaultCacheTTL       = 15 * time.Minute
	DefaultWarmupInterval = 30 * time.Minute

	DefaultClusteringMaxIterations = 100
	DefaultClusteringEpsilon       = 1e-6
	DefaultMinRadiusKM             = 0.1

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills every zero-value field in cfg with the engine default.
// Fields already set by the caller are left unchanged so that explicit
// configuration always wins.  It must be called after unmarshalling and
// before Validate() so that optional-but-defaulted fields are never seen as
// missing.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}

	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}

	if cfg.Cache.DefaultTTL == 0 {
		cfg.Cache.DefaultTTL = DefaultCacheTTL
	}
	if cfg.Cache.WarmupInterval == 0 {
		cfg.Cache.WarmupInterval = DefaultWarmupInterval
	}

	if cfg.Clustering.MaxIterations == 0 {
		cfg.Clustering.MaxIterations = DefaultClusteringMaxIterations
	}
	if cfg.Clustering.Epsilon == 0 {
		cfg.Clustering.Epsilon = DefaultClusteringEpsilon
	}
	if cfg.Clustering.MinRadiusKM == 0 {
		cfg.Clustering.MinRadiusKM = DefaultMinRadiusKM
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}
