package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
service:
  id: "test-relay"
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
dispatch:
  timeout_seconds: 30
  runtime: "sequential"
subscriptions:
  - topic: "devices/+/events"
    qos: 1
journal:
  enabled: true
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.ID != "test-relay" {
		t.Errorf("Service.ID = %q, want %q", cfg.Service.ID, "test-relay")
	}
	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}
	if cfg.Dispatch.Timeout() != 30*time.Second {
		t.Errorf("Dispatch.Timeout() = %v, want 30s", cfg.Dispatch.Timeout())
	}
	if cfg.Dispatch.Runtime != RuntimeSequential {
		t.Errorf("Dispatch.Runtime = %q, want %q", cfg.Dispatch.Runtime, RuntimeSequential)
	}
	if len(cfg.Subscriptions) != 1 || cfg.Subscriptions[0].Topic != "devices/+/events" {
		t.Errorf("Subscriptions = %+v, want one devices/+/events entry", cfg.Subscriptions)
	}
	if !cfg.Journal.Enabled || cfg.Journal.Path != "/tmp/test.db" {
		t.Errorf("Journal = %+v, want enabled with /tmp/test.db", cfg.Journal)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	cfg, err := Load(writeConfig(t, `service: {id: "test-relay"}`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Dispatch.TimeoutSeconds != 100 {
		t.Errorf("Dispatch.TimeoutSeconds = %d, want default 100", cfg.Dispatch.TimeoutSeconds)
	}
	if cfg.Dispatch.Runtime != RuntimeGoroutine {
		t.Errorf("Dispatch.Runtime = %q, want default %q", cfg.Dispatch.Runtime, RuntimeGoroutine)
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("MQTT.Broker.Port = %d, want default 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want default info", cfg.Logging.Level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GRAYDISPATCH_MQTT_HOST", "broker.example.com")
	t.Setenv("GRAYDISPATCH_METRICS_TOKEN", "secret-token")

	cfg, err := Load(writeConfig(t, `service: {id: "test-relay"}`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "broker.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want env override", cfg.MQTT.Broker.Host)
	}
	if cfg.Metrics.Token != "secret-token" {
		t.Errorf("Metrics.Token = %q, want env override", cfg.Metrics.Token)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return defaultConfig()
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing service id",
			mutate:  func(c *Config) { c.Service.ID = "" },
			wantErr: true,
		},
		{
			name:    "qos out of range",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "zero dispatch timeout",
			mutate:  func(c *Config) { c.Dispatch.TimeoutSeconds = 0 },
			wantErr: true,
		},
		{
			name:    "unknown runtime",
			mutate:  func(c *Config) { c.Dispatch.Runtime = "fibers" },
			wantErr: true,
		},
		{
			name: "empty subscription topic",
			mutate: func(c *Config) {
				c.Subscriptions = []SubscriptionConfig{{Topic: "", QoS: 1}}
			},
			wantErr: true,
		},
		{
			name: "subscription qos out of range",
			mutate: func(c *Config) {
				c.Subscriptions = []SubscriptionConfig{{Topic: "a/b", QoS: 5}}
			},
			wantErr: true,
		},
		{
			name: "journal enabled without path",
			mutate: func(c *Config) {
				c.Journal.Enabled = true
				c.Journal.Path = ""
			},
			wantErr: true,
		},
		{
			name: "metrics enabled without url",
			mutate: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.Org = "org"
				c.Metrics.Bucket = "bucket"
			},
			wantErr: true,
		},
		{
			name: "metrics fully configured",
			mutate: func(c *Config) {
				c.Metrics.Enabled = true
				c.Metrics.URL = "http://localhost:8086"
				c.Metrics.Org = "org"
				c.Metrics.Bucket = "bucket"
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
