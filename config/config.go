package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Environment string
	AppURL      string

	// Redis configuration, optional. Without it the event cache, brand lock
	// and rate limits are disabled.
	RedisURL      string
	RedisPoolSize int

	// PubNub configuration
	PubNubPublishKey    string
	PubNubSubscribeKey  string
	PubNubSecretKey     string
	PubNubUserID        string
	PaymentChannel      string
	EnableGateFeed      bool
	EnablePaymentNotify bool

	// Payments
	WebhookSecret   string
	ReferencePrefix string

	// Redis-backed features
	EventCacheTTL  time.Duration
	BrandLockTTL   time.Duration
	GateRateLimit  int
	ApplyRateLimit int
	RateWindow     time.Duration

	// Monitoring
	EnableMetrics   bool
	MetricsInterval time.Duration
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// LoadConfig reads settings from the environment. A .env file in the working
// directory, if present, is loaded first and never overrides real variables.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Error loading .env file: %v", err)
	}

	return &Config{
		// Server
		Environment: getEnv("ENVIRONMENT", "production"),
		AppURL:      getEnv("APP_URL", "http://localhost:8090"),

		// Redis
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPoolSize: getEnvAsInt("REDIS_POOL_SIZE", 50),

		// PubNub
		PubNubPublishKey:    getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey:  getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:     getEnv("PUBNUB_SECRET_KEY", ""),
		PubNubUserID:        getEnv("PUBNUB_USER_ID", "nightmarket-server"),
		PaymentChannel:      getEnv("PUBNUB_PAYMENT_CHANNEL", "payment-notifications"),
		EnableGateFeed:      getEnvAsBool("ENABLE_GATE_FEED", true),
		EnablePaymentNotify: getEnvAsBool("ENABLE_PAYMENT_NOTIFICATIONS", false),

		// Payments
		WebhookSecret:   getEnv("PAYMENT_WEBHOOK_SECRET", ""),
		ReferencePrefix: getEnv("REFERENCE_PREFIX", "NM"),

		// Redis-backed features
		EventCacheTTL:  getEnvAsDuration("EVENT_CACHE_TTL", "30s"),
		BrandLockTTL:   getEnvAsDuration("BRAND_LOCK_TTL", "10s"),
		GateRateLimit:  getEnvAsInt("GATE_RATE_LIMIT", 120),
		ApplyRateLimit: getEnvAsInt("APPLY_RATE_LIMIT", 5),
		RateWindow:     getEnvAsDuration("RATE_WINDOW", "1m"),

		// Monitoring
		EnableMetrics:   getEnvAsBool("ENABLE_METRICS", true),
		MetricsInterval: getEnvAsDuration("METRICS_INTERVAL", "30s"),
	}
}

func (c *Config) PubNubEnabled() bool {
	return c.PubNubSubscribeKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
