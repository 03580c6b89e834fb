// Package config loads and validates process configuration. All knobs come
// from the environment (a .env file is honored when present) and are
// resolved eagerly into one struct so missing settings fail at startup,
// not mid-fetch.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/borkprotocol/bork-wallet-sdk/pkg/cache"
	"github.com/borkprotocol/bork-wallet-sdk/pkg/fetch"
	"github.com/joho/godotenv"
)

// Default endpoints for the mainnet network.
const (
	DefaultNetwork         = "mainnet"
	DefaultGraphQLEndpoint = "https://sui-mainnet.mystenlabs.com/graphql"
)

// Config carries everything the fetchers and adapters need.
type Config struct {
	WalletAddress string
	Network       string

	GraphQLEndpoint   string
	PriceEndpoint     string
	MetadataEndpoint  string
	MetadataAPIKey    string
	KioskEndpoint     string
	ProtocolsEndpoint string

	NFTConcurrency int
	CacheTTL       time.Duration
	PageDelay      time.Duration
	Retry          fetch.Policy

	Redis cache.RedisConfig
}

// Load reads the environment (and .env if present) into a validated Config.
func Load() (*Config, error) {
	_ = godotenv.Load() // Load .env if present

	cfg := &Config{
		WalletAddress:     os.Getenv("WALLET_ADDRESS"),
		Network:           envOr("SUI_NETWORK", DefaultNetwork),
		GraphQLEndpoint:   envOr("SUI_GRAPHQL_ENDPOINT", DefaultGraphQLEndpoint),
		PriceEndpoint:     os.Getenv("PRICE_ENDPOINT"),
		MetadataEndpoint:  os.Getenv("METADATA_ENDPOINT"),
		MetadataAPIKey:    os.Getenv("METADATA_API_KEY"),
		KioskEndpoint:     os.Getenv("KIOSK_ENDPOINT"),
		ProtocolsEndpoint: os.Getenv("PROTOCOLS_ENDPOINT"),
		NFTConcurrency:    envInt("NFT_CONCURRENCY", 4),
		CacheTTL:          envDuration("CACHE_TTL_MS", 5*time.Minute),
		PageDelay:         envDuration("PAGE_DELAY_MS", 1500*time.Millisecond),
		Retry: fetch.Policy{
			MaxAttempts:    envInt("RETRY_MAX_ATTEMPTS", fetch.DefaultPolicy().MaxAttempts),
			InitialDelay:   envDuration("RETRY_INITIAL_DELAY_MS", fetch.DefaultPolicy().InitialDelay),
			RateLimitAbort: envInt("RETRY_RATE_LIMIT_ABORT", fetch.DefaultPolicy().RateLimitAbort),
		},
		Redis: cache.RedisConfig{
			Address:   os.Getenv("REDIS_ADDRESS"),
			Username:  os.Getenv("REDIS_USERNAME"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        envInt("REDIS_DB", 0),
			KeyPrefix: os.Getenv("REDIS_KEY_PREFIX"),
			UseTLS:    envBool("REDIS_USE_TLS"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.GraphQLEndpoint == "" {
		return fmt.Errorf("graphql endpoint is required")
	}
	if c.MetadataEndpoint != "" && c.MetadataAPIKey == "" {
		return fmt.Errorf("METADATA_API_KEY is required when METADATA_ENDPOINT is set")
	}
	if c.NFTConcurrency < 1 {
		return fmt.Errorf("NFT_CONCURRENCY must be at least 1, got %d", c.NFTConcurrency)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	return nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	ms, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func envBool(key string) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && value
}
