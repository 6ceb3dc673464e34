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

	"github.com/freshkart/backend-cart/internal/money"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	DatabaseURL        string
	RedisURL           string
	CORSAllowedOrigins []string

	PromoServiceURL      string
	PromoRequestTimeout  time.Duration
	PromoRevalidateDelay time.Duration
	PromoApplyPerMinute  int

	DefaultDeliveryCharge money.Money
	FreeDeliveryThreshold money.Money
	StandardFeeCap        money.Money
	TaxRateBps            int32

	SessionTTL   time.Duration
	CartTTL      time.Duration
	FeeRuleTTL   time.Duration
	CatalogTTL   time.Duration
	CurrencyCode string

	LogLevel  string
	LogFormat string

	MetricsNamespace   string
	HTTPMetricsBuckets string

	TracingEnabled     bool
	TracingEndpoint    string
	TracingSampleRatio float64
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
		Port:               valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:        k.String("DATABASE_URL"),
		RedisURL:           k.String("REDIS_URL"),
		CORSAllowedOrigins: splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),

		PromoServiceURL:      k.String("PROMO_SERVICE_URL"),
		PromoRequestTimeout:  parseDuration(k.String("PROMO_REQUEST_TIMEOUT"), "3s"),
		PromoRevalidateDelay: parseDuration(k.String("PROMO_REVALIDATE_DELAY"), "500ms"),
		PromoApplyPerMinute:  parseInt(k.String("PROMO_APPLY_PER_MINUTE"), 10),

		DefaultDeliveryCharge: parseRupees(k.String("DEFAULT_DELIVERY_CHARGE"), 29),
		FreeDeliveryThreshold: parseRupees(k.String("FREE_DELIVERY_THRESHOLD"), 299),
		StandardFeeCap:        parseRupees(k.String("STANDARD_FEE_CAP"), 29),
		TaxRateBps:            int32(parseInt(k.String("TAX_RATE_BPS"), 0)),

		SessionTTL:   parseDuration(k.String("SESSION_TTL"), "30m"),
		CartTTL:      parseDuration(k.String("CART_TTL"), "168h"),
		FeeRuleTTL:   parseDuration(k.String("FEE_RULE_CACHE_TTL"), "5m"),
		CatalogTTL:   parseDuration(k.String("CATALOG_CACHE_TTL"), "60s"),
		CurrencyCode: valueOrDefault(k.String("CURRENCY_CODE"), "INR"),

		LogLevel:  valueOrDefault(k.String("LOG_LEVEL"), "info"),
		LogFormat: valueOrDefault(k.String("LOG_FORMAT"), "json"),

		MetricsNamespace:   valueOrDefault(k.String("METRICS_NAMESPACE"), "freshkart_cart"),
		HTTPMetricsBuckets: k.String("HTTP_METRICS_BUCKETS_MS"),

		TracingEnabled:     parseBool(k.String("TRACING_ENABLED"), false),
		TracingEndpoint:    k.String("TRACING_OTLP_ENDPOINT"),
		TracingSampleRatio: parseFloat(k.String("TRACING_SAMPLE_RATIO"), 1),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}
	if cfg.PromoServiceURL == "" {
		return nil, errors.New("PROMO_SERVICE_URL is required")
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
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

func parseBool(value string, fallback bool) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	b, err := strconv.ParseBool(trimmed)
	if err != nil {
		return fallback
	}
	return b
}

func parseFloat(value string, fallback float64) float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return fallback
	}
	return f
}

func parseRupees(value string, fallback float64) money.Money {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return money.FromRupees(fallback)
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return money.FromRupees(fallback)
	}
	return money.FromRupees(v)
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
