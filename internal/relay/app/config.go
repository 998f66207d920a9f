package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultAllowedOrigins are the front-ends allowed to call the relay from a
// browser when RELAY_ALLOWED_ORIGINS is unset.
var DefaultAllowedOrigins = []string{
	"https://n8nuivercelv1.vercel.app",
	"https://n8nuivercelv1-git-main-ardaklc0s-projects.vercel.app",
	"http://localhost:5500",
	"http://127.0.0.1:5500",
	"https://ardaklc0.github.io",
}

type Config struct {
	JWTSecret        string // Required: HMAC secret for client and engine tokens (RELAY_JWT_SECRET or JWT_SECRET)
	ClientSecret     string // Shared client secret, hashed at startup (RELAY_CLIENT_SECRET or CLIENT_SECRET)
	ClientSecretHash string // Optional: precomputed argon2id hash, wins over ClientSecret
	Issuer           string // Issuer claim for tokens (default: n8n-converter-backend)

	WebhookURL     string        // Required: n8n workflow webhook (N8N_WEBHOOK_URL)
	EngineTimeout  time.Duration // Timeout for the synchronous engine call (default: 30s)
	PublicBaseURL  string        // Optional: external origin used to build the callback URL
	AllowedOrigins []string      // CORS allow list (default: DefaultAllowedOrigins)
	StaticDir      string        // Optional: directory served at /

	ResultStore  string        // Result store driver (memory, sqlite) (default: memory)
	DatabaseFile string        // SQLite database file when ResultStore is sqlite (default: relay.db)
	ResultTTL    time.Duration // How long an unread result is kept (default: 30m)
	SSEKeepAlive time.Duration // Comment interval on idle event streams (default: 25s)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 3000)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Result sweep interval (default: 5m)
}

func LoadConfig() Config {
	cfg := Config{
		JWTSecret:        getEnvOrDefault("RELAY_JWT_SECRET", os.Getenv("JWT_SECRET")),
		ClientSecret:     getEnvOrDefault("RELAY_CLIENT_SECRET", os.Getenv("CLIENT_SECRET")),
		ClientSecretHash: os.Getenv("RELAY_CLIENT_SECRET_HASH"),
		Issuer:           getEnvOrDefault("RELAY_ISSUER", "n8n-converter-backend"),

		WebhookURL:     os.Getenv("N8N_WEBHOOK_URL"),
		EngineTimeout:  getEnvDurationOrDefault("RELAY_ENGINE_TIMEOUT", 30*time.Second),
		PublicBaseURL:  os.Getenv("RELAY_PUBLIC_BASE_URL"),
		AllowedOrigins: getEnvListOrDefault("RELAY_ALLOWED_ORIGINS", DefaultAllowedOrigins),
		StaticDir:      os.Getenv("RELAY_STATIC_DIR"),

		ResultStore:  strings.ToLower(getEnvOrDefault("RELAY_RESULT_STORE", "memory")),
		DatabaseFile: getEnvOrDefault("RELAY_DATABASE_FILE", "relay.db"),
		ResultTTL:    getEnvDurationOrDefault("RELAY_RESULT_TTL", 30*time.Minute),
		SSEKeepAlive: getEnvDurationOrDefault("RELAY_SSE_KEEPALIVE", 25*time.Second),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 3000),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 5*time.Minute),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds.
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}

// getEnvListOrDefault splits a comma separated value, dropping blanks.
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for item := range strings.SplitSeq(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
