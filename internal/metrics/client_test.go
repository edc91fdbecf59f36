package metrics_test

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/nerrad567/gray-dispatch/internal/dispatch"
	"github.com/nerrad567/gray-dispatch/internal/infrastructure/config"
	"github.com/nerrad567/gray-dispatch/internal/metrics"
)

// testConfig returns a configuration for the local dev InfluxDB.
func testConfig() config.MetricsConfig {
	return config.MetricsConfig{
		Enabled:       true,
		URL:           "http://127.0.0.1:8086",
		Token:         "graydispatch-dev-token",
		Org:           "graydispatch",
		Bucket:        "dispatch",
		BatchSize:     100,
		FlushInterval: 1, // 1 second for faster test feedback
	}
}

// skipIfNoInfluxDB skips the test if InfluxDB is not running.
func skipIfNoInfluxDB(t *testing.T) {
	t.Helper()
	if os.Getenv("RUN_INTEGRATION") == "" {
		cfg := testConfig()
		client, err := metrics.Connect(cfg)
		if err != nil {
			t.Skip("InfluxDB not available, skipping integration test")
		}
		client.Close()
	}
}

// =============================================================================
// Connection Tests
// =============================================================================

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	_, err := metrics.Connect(cfg)
	if err == nil {
		t.Fatal("Connect() should return error when disabled")
	}
	if !errors.Is(err, metrics.ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_InvalidURL(t *testing.T) {
	cfg := testConfig()
	cfg.URL = "http://127.0.0.1:59999" // Non-existent port

	_, err := metrics.Connect(cfg)
	if err == nil {
		t.Fatal("Connect() should return error for invalid URL")
	}
}

func TestConnect(t *testing.T) {
	skipIfNoInfluxDB(t)
	cfg := testConfig()

	client, err := metrics.Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect()")
	}
}

// =============================================================================
// Observer Tests
// =============================================================================

func TestDispatchDone_WritesOutcome(t *testing.T) {
	skipIfNoInfluxDB(t)
	cfg := testConfig()

	client, err := metrics.Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	var writeErr error
	client.SetOnError(func(err error) {
		writeErr = err
	})

	client.DispatchDone(dispatch.Outcome{
		ID:      "dsp-test0001",
		Topic:   "devices/alpha/state",
		Handler: dispatch.HandlerOnMessage,
		Result:  dispatch.ResultInvoked,
		Wait:    42 * time.Millisecond,
		At:      time.Now(),
	})
	client.Flush()

	time.Sleep(100 * time.Millisecond)

	if writeErr != nil {
		t.Errorf("Write error = %v", writeErr)
	}
}

func TestDispatchDone_NoOpAfterClose(t *testing.T) {
	skipIfNoInfluxDB(t)
	cfg := testConfig()

	client, err := metrics.Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Must not panic or enqueue after disconnect.
	client.DispatchDone(dispatch.Outcome{
		Handler: dispatch.HandlerOnMessage,
		Result:  dispatch.ResultInvoked,
	})
	client.Flush()

	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
}
