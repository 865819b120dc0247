package config

import (
	"os"
	"time"
)

// Config captures process-level configuration for the storefront gateway.
type Config struct {
	Addr string

	// APIBaseURL is the upstream storefront REST API, e.g.
	// "https://store.example.com". The "/api" prefix is appended by the
	// client.
	APIBaseURL string

	// DeviceID keys locally persisted state (preferences, credential).
	DeviceID string

	// RedisURL enables the Redis-backed preference and credential stores.
	// Empty means in-memory stores.
	RedisURL string

	// CredentialKey is the hex-encoded 32-byte key used to encrypt the
	// session credential at rest in Redis. Required when RedisURL is set.
	CredentialKey string

	RequestTimeout time.Duration
}

// RedisConfig carries tuning for the shared Redis client.
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
	addr := os.Getenv("STOREFRONT_ADDR")
	if addr == "" {
		addr = ":8090"
	}

	apiBase := os.Getenv("STOREFRONT_API_URL")
	if apiBase == "" {
		apiBase = "http://localhost:3001"
	}

	deviceID := os.Getenv("STOREFRONT_DEVICE_ID")
	if deviceID == "" {
		deviceID = "default"
	}

	timeout := 15 * time.Second
	if v := os.Getenv("STOREFRONT_REQUEST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			timeout = d
		}
	}

	return Config{
		Addr:           addr,
		APIBaseURL:     apiBase,
		DeviceID:       deviceID,
		RedisURL:       os.Getenv("STOREFRONT_REDIS_URL"),
		CredentialKey:  os.Getenv("STOREFRONT_CREDENTIAL_KEY"),
		RequestTimeout: timeout,
	}
}

// Redis derives the Redis client configuration with pool defaults.
func (c Config) Redis() RedisConfig {
	return RedisConfig{
		URL:          c.RedisURL,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}
