package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{
		"RELAY_JWT_SECRET", "JWT_SECRET", "RELAY_CLIENT_SECRET", "CLIENT_SECRET",
		"RELAY_ALLOWED_ORIGINS", "RELAY_RESULT_STORE", "PORT", "RELAY_RESULT_TTL",
	} {
		t.Setenv(k, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "n8n-converter-backend", cfg.Issuer)
	assert.Equal(t, "memory", cfg.ResultStore)
	assert.Equal(t, 30*time.Minute, cfg.ResultTTL)
	assert.Equal(t, 25*time.Second, cfg.SSEKeepAlive)
	assert.Equal(t, 5*time.Minute, cfg.HousekeepingInterval)
	assert.Equal(t, DefaultAllowedOrigins, cfg.AllowedOrigins)
	assert.Empty(t, cfg.JWTSecret)
}

func TestLoadConfigAliases(t *testing.T) {
	t.Setenv("RELAY_JWT_SECRET", "")
	t.Setenv("JWT_SECRET", "legacy-jwt")
	t.Setenv("RELAY_CLIENT_SECRET", "relay-secret")
	t.Setenv("CLIENT_SECRET", "legacy-secret")

	cfg := LoadConfig()

	assert.Equal(t, "legacy-jwt", cfg.JWTSecret)
	assert.Equal(t, "relay-secret", cfg.ClientSecret, "RELAY_ prefix wins over the alias")
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("RELAY_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("RELAY_RESULT_STORE", "SQLite")
	t.Setenv("RELAY_RESULT_TTL", "90")
	t.Setenv("RELAY_SSE_KEEPALIVE", "10s")
	t.Setenv("PORT", "not-a-number")

	cfg := LoadConfig()

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "sqlite", cfg.ResultStore)
	assert.Equal(t, 90*time.Second, cfg.ResultTTL)
	assert.Equal(t, 10*time.Second, cfg.SSEKeepAlive)
	assert.Equal(t, 3000, cfg.Port)
}

func testConfig(t *testing.T) Config {
	t.Helper()

	return Config{
		JWTSecret:            "0123456789abcdef0123456789abcdef",
		ClientSecret:         "s3cr3t",
		Issuer:               "n8n-converter-backend",
		WebhookURL:           "http://engine.invalid/webhook",
		AllowedOrigins:       DefaultAllowedOrigins,
		ResultStore:          "memory",
		ResultTTL:            time.Minute,
		LogLevel:             "error",
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Minute,
	}
}

func TestNewWiresStores(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		app, err := New(testConfig(t))
		require.NoError(t, err)
		require.NotNil(t, app.Handler())
		require.NoError(t, app.db.Close())
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.ResultStore = "sqlite"
		cfg.DatabaseFile = t.TempDir() + "/relay.db"

		app, err := New(cfg)
		require.NoError(t, err)
		require.NoError(t, app.db.Ping(t.Context()))
		require.NoError(t, app.db.Close())
	})

	t.Run("unknown store", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.ResultStore = "redis"

		_, err := New(cfg)
		require.ErrorContains(t, err, "unknown result store")
	})

	t.Run("bad secret hash", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.ClientSecretHash = "plaintext"

		_, err := New(cfg)
		require.ErrorContains(t, err, "RELAY_CLIENT_SECRET_HASH")
	})
}
