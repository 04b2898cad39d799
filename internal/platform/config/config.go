package config

import (
	"os"
	"strconv"
	"time"
)

// Config captures agent-level configuration.
type Config struct {
	Addr       string
	BackendURL string
	Region     string

	// Period and cycle arithmetic. Diagnosis-key batches are published per
	// period; the submission cycle is a fixed number of days.
	HoursPerPeriod     int
	MaxLookbackPeriods int
	CycleDays          int
	ReconcileInterval  time.Duration

	// SecureStoreKey is the base64 32-byte secretbox key sealing submission
	// credentials at rest. Empty means the in-memory secure store.
	SecureStoreKey  string
	SecureStorePath string

	Redis RedisConfig
}

// RedisConfig holds connection settings for the optional Redis persistence
// adapter. An empty URL means the in-memory adapter.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Addr:               envOr("SHIELD_ADDR", ":8443"),
		BackendURL:         envOr("SHIELD_BACKEND_URL", "http://localhost:8000"),
		Region:             envOr("SHIELD_REGION", "302"),
		HoursPerPeriod:     envInt("SHIELD_HOURS_PER_PERIOD", 24),
		MaxLookbackPeriods: envInt("SHIELD_MAX_LOOKBACK_PERIODS", 14),
		CycleDays:          envInt("SHIELD_CYCLE_DAYS", 14),
		ReconcileInterval:  envDuration("SHIELD_RECONCILE_INTERVAL", 4*time.Hour),
		SecureStoreKey:     os.Getenv("SHIELD_SECURE_STORE_KEY"),
		SecureStorePath:    envOr("SHIELD_SECURE_STORE_PATH", "secure.bin"),
		Redis: RedisConfig{
			URL:          os.Getenv("SHIELD_REDIS_URL"),
			PoolSize:     envInt("SHIELD_REDIS_POOL_SIZE", 4),
			MinIdleConns: envInt("SHIELD_REDIS_MIN_IDLE_CONNS", 1),
			DialTimeout:  envDuration("SHIELD_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("SHIELD_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("SHIELD_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
