package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds lane-service configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string

	TaxRateBps int

	// Pricing service endpoint. PricingURL, when set, is used verbatim;
	// otherwise PricingBaseURL plus the fixed basket suffix applies.
	PricingURL            string
	PricingBaseURL        string
	PricingConnectTimeout time.Duration
	PricingRequestTimeout time.Duration

	// Log collector. Shipping is disabled when the host is empty.
	LogCollectorHost        string
	LogCollectorPort        int
	LogCollectorDialTimeout time.Duration

	PricebookCacheTTL time.Duration
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:             valueOrDefault(k.String("APP_ENV"), "development"),
		Port:               valueOrDefault(k.String("PORT"), "8081"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		TaxRateBps: parseInt(k.String("TAX_RATE_BPS"), 700),

		PricingURL:            strings.TrimSpace(k.String("PRICING_URL")),
		PricingBaseURL:        strings.TrimSpace(k.String("PRICING_BASE_URL")),
		PricingConnectTimeout: parseDuration(k.String("PRICING_CONNECT_TIMEOUT"), "3s"),
		PricingRequestTimeout: parseDuration(k.String("PRICING_REQUEST_TIMEOUT"), "8s"),

		LogCollectorHost:        strings.TrimSpace(k.String("LOG_COLLECTOR_HOST")),
		LogCollectorPort:        parseInt(k.String("LOG_COLLECTOR_PORT"), 9020),
		LogCollectorDialTimeout: parseDuration(k.String("LOG_COLLECTOR_DIAL_TIMEOUT"), "3s"),

		PricebookCacheTTL: parseDuration(k.String("PRICEBOOK_CACHE_TTL"), "5m"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.TaxRateBps < 0 {
		return nil, errors.New("TAX_RATE_BPS must not be negative")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8081"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return fallback
	}
	return n
}
