package session

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"atrium/cmd/security/token"
)

const (
	// DefaultTTL is how long a freshly issued session stays valid.
	DefaultTTL = 30 * 24 * time.Hour

	// DefaultReapInterval is how often the background reaper deletes
	// expired session rows.
	DefaultReapInterval = time.Hour
)

// Config carries the tunables of the session service.
type Config struct {
	// TTL is the lifetime of a newly issued session.
	TTL time.Duration

	// TokenBytes is the entropy, in bytes, of an issued session token.
	TokenBytes int

	// MaxConcurrentHashes bounds how many argon2id computations may run
	// at once. Each computation pins the configured memory cost for its
	// duration, so this limit caps the aggregate hashing memory.
	MaxConcurrentHashes int

	// ReapInterval is the period of the expired-session reaper.
	ReapInterval time.Duration
}

// DefaultConfig returns the session configuration used when no
// environment overrides are present.
func DefaultConfig() Config {
	maxHashes := runtime.NumCPU()
	if maxHashes < 1 {
		maxHashes = 1
	}
	if maxHashes > 8 {
		maxHashes = 8
	}
	return Config{
		TTL:                 DefaultTTL,
		TokenBytes:          token.DefaultTokenBytes,
		MaxConcurrentHashes: maxHashes,
		ReapInterval:        DefaultReapInterval,
	}
}

// LoadConfigFromEnv builds a Config from defaults overridden by
// ATRIUM_SESSION_* environment variables.
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("ATRIUM_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: ATRIUM_SESSION_TTL: %v", ErrConfig, err)
		}
		cfg.TTL = d
	}
	if v := os.Getenv("ATRIUM_SESSION_TOKEN_BYTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: ATRIUM_SESSION_TOKEN_BYTES: %v", ErrConfig, err)
		}
		cfg.TokenBytes = n
	}
	if v := os.Getenv("ATRIUM_SESSION_MAX_CONCURRENT_HASHES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: ATRIUM_SESSION_MAX_CONCURRENT_HASHES: %v", ErrConfig, err)
		}
		cfg.MaxConcurrentHashes = n
	}
	if v := os.Getenv("ATRIUM_SESSION_REAP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: ATRIUM_SESSION_REAP_INTERVAL: %v", ErrConfig, err)
		}
		cfg.ReapInterval = d
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations that would issue unusable or unsafe
// sessions.
func (c Config) Validate() error {
	if c.TTL <= 0 {
		return fmt.Errorf("%w: TTL must be positive, got %s", ErrConfig, c.TTL)
	}
	if c.TokenBytes < 16 {
		return fmt.Errorf("%w: TokenBytes must be at least 16, got %d", ErrConfig, c.TokenBytes)
	}
	if c.MaxConcurrentHashes < 1 {
		return fmt.Errorf("%w: MaxConcurrentHashes must be at least 1, got %d", ErrConfig, c.MaxConcurrentHashes)
	}
	if c.ReapInterval <= 0 {
		return fmt.Errorf("%w: ReapInterval must be positive, got %s", ErrConfig, c.ReapInterval)
	}
	return nil
}
