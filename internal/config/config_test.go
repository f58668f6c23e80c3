package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validKey = "000102030405060708090a0b0c0d0e0f000102030405060708090a0b0c0d0e0f"

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("MYWRAP_ENCRYPTION_KEY", validKey)
	t.Setenv("MYWRAP_SESSION_SECRET", "test-session-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Len(t, cfg.EncryptionKey, 32)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, "mywrap.db", cfg.DBPath)
	assert.Equal(t, 15*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 4, cfg.FetchConcurrency)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("MYWRAP_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("MYWRAP_DB_PATH", "/data/wrap.db")
	t.Setenv("MYWRAP_PROVIDER_TIMEOUT", "30s")
	t.Setenv("MYWRAP_FETCH_CONCURRENCY", "8")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, "/data/wrap.db", cfg.DBPath)
	assert.Equal(t, 30*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 8, cfg.FetchConcurrency)
}

func TestLoad_MissingEncryptionKey(t *testing.T) {
	t.Setenv("MYWRAP_ENCRYPTION_KEY", "")
	t.Setenv("MYWRAP_SESSION_SECRET", "secret")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MYWRAP_ENCRYPTION_KEY")
}

func TestLoad_BadEncryptionKey(t *testing.T) {
	t.Setenv("MYWRAP_SESSION_SECRET", "secret")

	for name, key := range map[string]string{
		"not hex":   strings.Repeat("zz", 32),
		"too short": "deadbeef",
		"too long":  validKey + "00",
	} {
		t.Run(name, func(t *testing.T) {
			t.Setenv("MYWRAP_ENCRYPTION_KEY", key)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingSessionSecret(t *testing.T) {
	t.Setenv("MYWRAP_ENCRYPTION_KEY", validKey)
	t.Setenv("MYWRAP_SESSION_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MYWRAP_SESSION_SECRET")
}

func TestLoad_InvalidTimeout(t *testing.T) {
	setRequired(t)
	t.Setenv("MYWRAP_PROVIDER_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidConcurrency(t *testing.T) {
	setRequired(t)
	t.Setenv("MYWRAP_FETCH_CONCURRENCY", "0")

	_, err := Load()
	assert.Error(t, err)
}
