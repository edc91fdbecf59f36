// Gray Dispatch - MQTT Handler Dispatch Relay
//
// This is the main entry point for the Gray Dispatch daemon. It connects
// to an MQTT broker, binds a dispatch bridge to each configured topic
// subscription, and routes every delivered message through the bridge's
// capability-checked handler invocation with a bounded blocking wait.
//
// Settled dispatch calls are optionally recorded to a SQLite journal and
// an InfluxDB metrics bucket.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/nerrad567/gray-dispatch/migrations"

	"github.com/nerrad567/gray-dispatch/internal/dispatch"
	"github.com/nerrad567/gray-dispatch/internal/infrastructure/config"
	"github.com/nerrad567/gray-dispatch/internal/infrastructure/logging"
	"github.com/nerrad567/gray-dispatch/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-dispatch/internal/journal"
	"github.com/nerrad567/gray-dispatch/internal/metrics"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Gray Dispatch",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open dispatch journal (optional)
	var jnl *journal.Journal
	if cfg.Journal.Enabled {
		jnl, err = journal.Open(cfg.Journal)
		if err != nil {
			return fmt.Errorf("opening journal: %w", err)
		}
		defer func() {
			log.Info("closing journal")
			if closeErr := jnl.Close(); closeErr != nil {
				log.Error("error closing journal", "error", closeErr)
			}
		}()
		jnl.SetLogger(log)

		if migrateErr := jnl.Migrate(ctx); migrateErr != nil {
			return fmt.Errorf("running journal migrations: %w", migrateErr)
		}
		log.Info("journal ready", "path", cfg.Journal.Path)
	} else {
		log.Info("journal disabled")
	}

	// Connect to InfluxDB metrics (optional)
	var metricsClient *metrics.Client
	if cfg.Metrics.Enabled {
		metricsClient, err = metrics.Connect(cfg.Metrics)
		if err != nil {
			return fmt.Errorf("connecting to metrics: %w", err)
		}
		defer func() {
			log.Info("closing metrics connection")
			if closeErr := metricsClient.Close(); closeErr != nil {
				log.Error("error closing metrics", "error", closeErr)
			}
		}()
		log.Info("metrics connected",
			"url", cfg.Metrics.URL,
			"org", cfg.Metrics.Org,
			"bucket", cfg.Metrics.Bucket,
		)

		metricsClient.SetOnError(func(err error) {
			log.Error("metrics write error", "error", err)
		})
	} else {
		log.Info("metrics disabled")
	}

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
		"manual_ack", cfg.MQTT.ManualAck,
	)

	// Build the shared observer chain: log line + journal + metrics.
	observer := buildObserver(log, jnl, metricsClient)

	// Build the invocation runtime
	rt, stopRuntime := buildRuntime(cfg.Dispatch)
	defer stopRuntime()
	log.Info("dispatch runtime ready",
		"mode", cfg.Dispatch.Runtime,
		"timeout", cfg.Dispatch.Timeout(),
	)

	// Bind one bridge per configured subscription
	for _, sub := range cfg.Subscriptions {
		bridge, bridgeErr := dispatch.New(
			relayService(log),
			rt,
			dispatch.WithTimeout(cfg.Dispatch.Timeout()),
			dispatch.WithLogger(log),
			dispatch.WithObserver(observer),
		)
		if bridgeErr != nil {
			return fmt.Errorf("creating bridge for %q: %w", sub.Topic, bridgeErr)
		}
		defer bridge.Close()

		// #nosec G115 -- QoS validated to 0..2 by config.Validate
		if serveErr := mqttClient.Serve(sub.Topic, byte(sub.QoS), bridge); serveErr != nil {
			return fmt.Errorf("serving %q: %w", sub.Topic, serveErr)
		}
		log.Info("subscription served", "topic", sub.Topic, "qos", sub.QoS)
	}

	if mqttClient.SubscriptionCount() == 0 {
		log.Warn("no subscriptions configured, relay is idle")
	}

	// Verify all connections are healthy
	if err := healthCheck(ctx, mqttClient, jnl, metricsClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. Bridges (interrupt in-flight waits)
	// 2. Runtime (drain queued invocations in sequential mode)
	// 3. MQTT
	// 4. Metrics (if enabled)
	// 5. Journal (if enabled)

	log.Info("Gray Dispatch stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GRAYDISPATCH_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GRAYDISPATCH_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// buildRuntime constructs the invocation runtime selected by config.
// The returned stop function drains and stops a sequential runtime; for
// the goroutine runtime it is a no-op.
func buildRuntime(cfg config.DispatchConfig) (dispatch.Runtime, func()) {
	if cfg.Runtime == config.RuntimeSequential {
		rt := dispatch.NewSequentialRuntime(0)
		return rt, rt.Close
	}
	return dispatch.GoRuntime{}, func() {}
}

// buildObserver assembles the outcome sinks that are actually enabled.
func buildObserver(log *logging.Logger, jnl *journal.Journal, metricsClient *metrics.Client) dispatch.Observer {
	obs := dispatch.MultiObserver{logObserver{log: log}}
	if jnl != nil {
		obs = append(obs, jnl)
	}
	if metricsClient != nil {
		obs = append(obs, metricsClient)
	}
	return obs
}

// relayService is the built-in handler set: it logs each delivered message
// and acknowledges it when a caller handle is provided. Delivery errors
// (disconnects, protocol faults, missing handlers) are logged via onError.
func relayService(log *logging.Logger) dispatch.Service {
	return dispatch.Service{
		OnMessageWithCaller: func(_ context.Context, msg dispatch.Message, caller *dispatch.Caller) error {
			log.Info("message relayed",
				"message_id", msg.MessageID,
				"qos", msg.QoS,
				"retained", msg.Retained,
				"duplicate", msg.Duplicate,
				"payload_bytes", len(msg.Payload),
			)
			if err := caller.Ack(); err != nil {
				return fmt.Errorf("acknowledging message %d: %w", caller.MessageID(), err)
			}
			return nil
		},
		OnError: func(_ context.Context, derr dispatch.DeliveryError) error {
			log.Error("delivery error",
				"kind", string(derr.Kind),
				"error", derr,
			)
			return nil
		},
	}
}

// logObserver emits one log line per settled dispatch call.
type logObserver struct {
	log *logging.Logger
}

// DispatchDone implements dispatch.Observer.
func (o logObserver) DispatchDone(out dispatch.Outcome) {
	o.log.Debug("dispatch settled",
		"dispatch_id", out.ID,
		"topic", out.Topic,
		"handler", out.Handler,
		"result", string(out.Result),
		"wait_ms", out.Wait.Milliseconds(),
	)
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - mqttClient: MQTT client to check
//   - jnl: Journal to check (may be nil if disabled)
//   - metricsClient: Metrics client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, mqttClient *mqtt.Client, jnl *journal.Journal, metricsClient *metrics.Client) error {
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if jnl != nil {
		if err := jnl.HealthCheck(ctx); err != nil {
			return fmt.Errorf("journal: %w", err)
		}
	}

	if metricsClient != nil {
		if err := metricsClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	return nil
}
