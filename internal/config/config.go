// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ericfisherdev/mywrap/internal/vault"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	EncryptionKey    []byte
	SessionSecret    []byte
	ListenAddr       string
	DBPath           string
	ProviderTimeout  time.Duration
	FetchConcurrency int
}

// Load reads configuration from environment variables and returns a validated
// Config. Required: MYWRAP_ENCRYPTION_KEY (64 hex chars, the 256-bit AES key)
// and MYWRAP_SESSION_SECRET (HMAC key for session token verification).
// Optional with defaults: MYWRAP_LISTEN_ADDR (127.0.0.1:8080),
// MYWRAP_DB_PATH (mywrap.db), MYWRAP_PROVIDER_TIMEOUT (15s),
// MYWRAP_FETCH_CONCURRENCY (4).
func Load() (*Config, error) {
	keyHex := os.Getenv("MYWRAP_ENCRYPTION_KEY")
	if keyHex == "" {
		return nil, fmt.Errorf("MYWRAP_ENCRYPTION_KEY is required")
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("MYWRAP_ENCRYPTION_KEY is not valid hex: %w", err)
	}
	if len(key) != vault.KeySize {
		return nil, fmt.Errorf("MYWRAP_ENCRYPTION_KEY must decode to %d bytes, got %d", vault.KeySize, len(key))
	}

	secret := os.Getenv("MYWRAP_SESSION_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("MYWRAP_SESSION_SECRET is required")
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("MYWRAP_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "mywrap.db"
	if v, ok := os.LookupEnv("MYWRAP_DB_PATH"); ok {
		dbPath = v
	}

	providerTimeout := 15 * time.Second
	if v, ok := os.LookupEnv("MYWRAP_PROVIDER_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("MYWRAP_PROVIDER_TIMEOUT has invalid duration %q: %w", v, err)
		}
		providerTimeout = parsed
	}

	fetchConcurrency := 4
	if v, ok := os.LookupEnv("MYWRAP_FETCH_CONCURRENCY"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return nil, fmt.Errorf("MYWRAP_FETCH_CONCURRENCY has invalid value %q", v)
		}
		fetchConcurrency = parsed
	}

	return &Config{
		EncryptionKey:    key,
		SessionSecret:    []byte(secret),
		ListenAddr:       listenAddr,
		DBPath:           dbPath,
		ProviderTimeout:  providerTimeout,
		FetchConcurrency: fetchConcurrency,
	}, nil
}
