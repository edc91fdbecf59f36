package mqtt

import (
	"testing"

	"github.com/nerrad567/gray-dispatch/internal/infrastructure/config"
)

func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "graydispatch-test",
			TLS:      false,
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// =============================================================================
// Option Building Tests
// =============================================================================

func TestBuildClientOptions_BrokerURL(t *testing.T) {
	opts := buildClientOptions(testConfig())

	if len(opts.Servers) != 1 {
		t.Fatalf("got %d servers, want 1", len(opts.Servers))
	}
	got := opts.Servers[0].String()
	want := "tcp://127.0.0.1:1883"
	if got != want {
		t.Errorf("broker URL = %q, want %q", got, want)
	}
}

func TestBuildClientOptions_TLSScheme(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true
	cfg.Broker.Port = 8883

	opts := buildClientOptions(cfg)

	got := opts.Servers[0].String()
	want := "ssl://127.0.0.1:8883"
	if got != want {
		t.Errorf("broker URL = %q, want %q", got, want)
	}
	if opts.TLSConfig == nil {
		t.Error("TLSConfig is nil, want configured")
	}
}

func TestBuildClientOptions_ClientID(t *testing.T) {
	opts := buildClientOptions(testConfig())

	if opts.ClientID != "graydispatch-test" {
		t.Errorf("ClientID = %q, want %q", opts.ClientID, "graydispatch-test")
	}
}

func TestBuildClientOptions_Credentials(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Username = "relay"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg)

	if opts.Username != "relay" || opts.Password != "secret" {
		t.Errorf("credentials = %q/%q, want relay/secret", opts.Username, opts.Password)
	}
}

func TestBuildClientOptions_ManualAck(t *testing.T) {
	cfg := testConfig()
	if opts := buildClientOptions(cfg); opts.AutoAckDisabled {
		t.Error("AutoAckDisabled = true without manual_ack")
	}

	cfg.ManualAck = true
	if opts := buildClientOptions(cfg); !opts.AutoAckDisabled {
		t.Error("AutoAckDisabled = false with manual_ack")
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testConfig())
	configureLWT(opts, "graydispatch-test")

	if !opts.WillEnabled {
		t.Fatal("WillEnabled = false, want true")
	}
	if opts.WillTopic != (Topics{}).SystemStatus() {
		t.Errorf("WillTopic = %q, want %q", opts.WillTopic, Topics{}.SystemStatus())
	}
	if !opts.WillRetained {
		t.Error("WillRetained = false, want true")
	}
}

// =============================================================================
// Acknowledger Tests
// =============================================================================

func TestAcknowledger_AutoAckMode(t *testing.T) {
	c := &Client{manualAck: false}

	ack := c.acknowledger(nil)
	if _, ok := ack.(noopAck); !ok {
		t.Errorf("acknowledger = %T, want noopAck in auto-ack mode", ack)
	}
	if err := ack.Ack(); err != nil {
		t.Errorf("noop Ack() error = %v", err)
	}
}

// =============================================================================
// Topic Tests
// =============================================================================

func TestTopics_SystemStatus(t *testing.T) {
	got := Topics{}.SystemStatus()
	want := "graydispatch/system/status"
	if got != want {
		t.Errorf("SystemStatus() = %q, want %q", got, want)
	}
}
