package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.ResendCooldownWindow() != 60*time.Second {
		t.Errorf("ResendCooldownWindow() = %v, want 60s", cfg.ResendCooldownWindow())
	}
	if cfg.ProviderCallTimeout() != 15*time.Second {
		t.Errorf("ProviderCallTimeout() = %v, want 15s", cfg.ProviderCallTimeout())
	}
	if cfg.TelemetryKafkaTopic != "accounts-telemetry" {
		t.Errorf("TelemetryKafkaTopic = %q, want %q", cfg.TelemetryKafkaTopic, "accounts-telemetry")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("PROVIDER_TIMEOUT", "3s")
	t.Setenv("RESEND_COOLDOWN", "90s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.ProviderCallTimeout() != 3*time.Second {
		t.Errorf("ProviderCallTimeout() = %v, want 3s", cfg.ProviderCallTimeout())
	}
	if cfg.ResendCooldownWindow() != 90*time.Second {
		t.Errorf("ResendCooldownWindow() = %v, want 90s", cfg.ResendCooldownWindow())
	}
}

func TestConfig_InvalidDurationsFallBack(t *testing.T) {
	cfg := &Config{ProviderTimeout: "soon", ResendCooldown: "later"}
	if cfg.ProviderCallTimeout() != 15*time.Second {
		t.Errorf("ProviderCallTimeout() = %v, want default 15s", cfg.ProviderCallTimeout())
	}
	if cfg.ResendCooldownWindow() != 60*time.Second {
		t.Errorf("ResendCooldownWindow() = %v, want default 60s", cfg.ResendCooldownWindow())
	}
}

func TestConfig_CORSOriginsList(t *testing.T) {
	cfg := &Config{CORSOrigins: " http://a.example.com, http://b.example.com ,"}
	got := cfg.CORSOriginsList()
	want := "http://a.example.com, http://b.example.com"
	if got != want {
		t.Errorf("CORSOriginsList() = %q, want %q", got, want)
	}
}

func TestConfig_TelemetryKafkaBrokersList(t *testing.T) {
	cfg := &Config{}
	if got := cfg.TelemetryKafkaBrokersList(); got != nil {
		t.Errorf("TelemetryKafkaBrokersList() = %v, want nil when unset", got)
	}

	cfg.TelemetryKafkaBrokers = "broker1:9092, broker2:9092"
	got := cfg.TelemetryKafkaBrokersList()
	if len(got) != 2 || got[0] != "broker1:9092" || got[1] != "broker2:9092" {
		t.Errorf("TelemetryKafkaBrokersList() = %v, want two trimmed brokers", got)
	}
}
