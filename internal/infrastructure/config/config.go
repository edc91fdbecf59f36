package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Gray Dispatch.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Service       ServiceConfig        `yaml:"service"`
	MQTT          MQTTConfig           `yaml:"mqtt"`
	Dispatch      DispatchConfig       `yaml:"dispatch"`
	Subscriptions []SubscriptionConfig `yaml:"subscriptions"`
	Journal       JournalConfig        `yaml:"journal"`
	Metrics       MetricsConfig        `yaml:"metrics"`
	Logging       LoggingConfig        `yaml:"logging"`
}

// ServiceConfig identifies this relay instance.
type ServiceConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	ManualAck bool                `yaml:"manual_ack"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// DispatchConfig contains dispatch bridge settings.
type DispatchConfig struct {
	// TimeoutSeconds is the wait ceiling for each dispatch call: how long
	// the delivering goroutine blocks before abandoning a handler task.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// Runtime selects the invocation runtime: "goroutine" runs each
	// handler invocation on its own goroutine, "sequential" serializes
	// all invocations on one worker.
	Runtime string `yaml:"runtime"`
}

// Timeout returns the wait ceiling as a duration.
func (d DispatchConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// SubscriptionConfig describes one topic subscription served by a bridge.
type SubscriptionConfig struct {
	Topic string `yaml:"topic"`
	QoS   int    `yaml:"qos"`
}

// JournalConfig contains dispatch journal (SQLite) settings.
type JournalConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MetricsConfig contains InfluxDB dispatch telemetry settings.
type MetricsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Runtime mode names accepted by dispatch.runtime.
const (
	RuntimeGoroutine  = "goroutine"
	RuntimeSequential = "sequential"
)

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GRAYDISPATCH_SECTION_KEY
// For example: GRAYDISPATCH_MQTT_HOST, GRAYDISPATCH_JOURNAL_PATH
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			ID:   "relay-001",
			Name: "Gray Dispatch",
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "graydispatch",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Dispatch: DispatchConfig{
			TimeoutSeconds: 100,
			Runtime:        RuntimeGoroutine,
		},
		Journal: JournalConfig{
			Enabled:     false,
			Path:        "./data/graydispatch.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GRAYDISPATCH_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// MQTT
	if v := os.Getenv("GRAYDISPATCH_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("GRAYDISPATCH_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GRAYDISPATCH_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Journal
	if v := os.Getenv("GRAYDISPATCH_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}

	// Metrics
	if v := os.Getenv("GRAYDISPATCH_METRICS_TOKEN"); v != "" {
		cfg.Metrics.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Service validation
	if c.Service.ID == "" {
		errs = append(errs, "service.id is required")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}

	// Dispatch validation
	if c.Dispatch.TimeoutSeconds < 1 {
		errs = append(errs, "dispatch.timeout_seconds must be at least 1")
	}
	switch c.Dispatch.Runtime {
	case RuntimeGoroutine, RuntimeSequential:
	default:
		errs = append(errs, `dispatch.runtime must be "goroutine" or "sequential"`)
	}

	// Subscription validation
	for i, sub := range c.Subscriptions {
		if sub.Topic == "" {
			errs = append(errs, fmt.Sprintf("subscriptions[%d].topic is required", i))
		}
		if sub.QoS < 0 || sub.QoS > 2 {
			errs = append(errs, fmt.Sprintf("subscriptions[%d].qos must be 0, 1, or 2", i))
		}
	}

	// Journal validation
	if c.Journal.Enabled && c.Journal.Path == "" {
		errs = append(errs, "journal.path is required when journal is enabled")
	}

	// Metrics validation
	if c.Metrics.Enabled {
		if c.Metrics.URL == "" {
			errs = append(errs, "metrics.url is required when metrics are enabled")
		}
		if c.Metrics.Org == "" {
			errs = append(errs, "metrics.org is required when metrics are enabled")
		}
		if c.Metrics.Bucket == "" {
			errs = append(errs, "metrics.bucket is required when metrics are enabled")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
