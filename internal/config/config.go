// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN. Empty means in-memory stores only
	// (single-instance deployments); set it to persist challenge, cooldown,
	// and audit state.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// ProviderBaseURL is the base URL of the identity authority's auth API
	// (e.g. https://auth.example.com/auth/v1). Required by cmd/server.
	ProviderBaseURL string `mapstructure:"PROVIDER_BASE_URL"`
	// ProviderAPIKey is the API key sent with every provider request.
	ProviderAPIKey string `mapstructure:"PROVIDER_API_KEY"`
	// ProviderTimeout is the per-call provider deadline (e.g. "15s").
	ProviderTimeout string `mapstructure:"PROVIDER_TIMEOUT"`
	// ResendCooldown is the minimum interval between accepted code resends
	// for the same email (e.g. "60s").
	ResendCooldown string `mapstructure:"RESEND_COOLDOWN"`
	// CORSOrigins is a comma-separated list of allowed origins.
	CORSOrigins string `mapstructure:"CORS_ORIGINS"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// Telemetry (optional). When OTLPEndpoint is set, OTel providers export
	// traces, metrics, and logs; when Kafka brokers are set, the server
	// emits request events to Kafka for the worker to push to Loki.
	// OTLPEndpoint is the OTLP gRPC collector endpoint (e.g. localhost:4317).
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// TelemetryKafkaBrokers is a comma-separated list of Kafka broker addresses.
	TelemetryKafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// TelemetryKafkaTopic is the Kafka topic for telemetry events.
	TelemetryKafkaTopic string `mapstructure:"TELEMETRY_KAFKA_TOPIC"`

	// Worker-only: Loki URL for the telemetry worker to push logs.
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the telemetry worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("PROVIDER_BASE_URL", "")
	v.SetDefault("PROVIDER_API_KEY", "")
	v.SetDefault("PROVIDER_TIMEOUT", "15s")
	v.SetDefault("RESEND_COOLDOWN", "60s")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("TELEMETRY_KAFKA_TOPIC", "accounts-telemetry")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "accounts-telemetry-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if d, err := time.ParseDuration(cfg.ResendCooldown); err == nil && d <= 0 {
		return nil, errors.New("config: RESEND_COOLDOWN must be positive")
	}

	return &cfg, nil
}

// ProviderCallTimeout parses ProviderTimeout as a time.Duration. Returns 15s if unset or invalid.
func (c *Config) ProviderCallTimeout() time.Duration {
	d, err := time.ParseDuration(c.ProviderTimeout)
	if err != nil || d <= 0 {
		return 15 * time.Second
	}
	return d
}

// ResendCooldownWindow parses ResendCooldown as a time.Duration. Returns 60s if unset or invalid.
func (c *Config) ResendCooldownWindow() time.Duration {
	d, err := time.ParseDuration(c.ResendCooldown)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// CORSOriginsList returns allowed origins from the comma-separated config.
func (c *Config) CORSOriginsList() string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return strings.Join(out, ", ")
}

// TelemetryKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if Kafka telemetry is enabled (non-empty list) and to create the producer.
func (c *Config) TelemetryKafkaBrokersList() []string {
	if c == nil || c.TelemetryKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.TelemetryKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
