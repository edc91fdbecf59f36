package mqtt

import (
	"context"
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/gray-dispatch/internal/dispatch"
	"github.com/nerrad567/gray-dispatch/internal/infrastructure/config"
)

// Client wraps paho.mqtt.golang with Gray Dispatch-specific functionality.
//
// It provides connection management, bridge-backed topic subscriptions,
// and automatic reconnection with exponential backoff.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Subscriptions are automatically restored on reconnection.
type Client struct {
	client    pahomqtt.Client
	options   *pahomqtt.ClientOptions
	cfg       config.MQTTConfig
	manualAck bool

	// subscriptions tracks bridge-backed subscriptions for restoration
	// on reconnect and for disconnect routing.
	subscriptions map[string]subscription
	subMu         sync.RWMutex

	// connected tracks current connection state.
	connected bool
	connMu    sync.RWMutex

	// logger for error/panic logging (optional, set via SetLogger).
	logger   Logger
	loggerMu sync.RWMutex
}

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// subscription holds subscription details for restoration on reconnect.
type subscription struct {
	topic  string
	qos    byte
	bridge *dispatch.Bridge
}

// Connect establishes a connection to the MQTT broker.
//
// It performs the following setup:
//  1. Builds connection options from config (broker URL, auth, TLS, ack mode)
//  2. Configures Last Will and Testament (LWT) for offline detection
//  3. Sets up auto-reconnect with exponential backoff
//  4. Attempts initial connection with timeout
//  5. Publishes online status to graydispatch/system/status
//
// Parameters:
//   - cfg: MQTT configuration from config.yaml
//
// Returns:
//   - *Client: Connected client ready for use
//   - error: If initial connection fails within timeout
func Connect(cfg config.MQTTConfig) (*Client, error) {
	opts := buildClientOptions(cfg)
	configureLWT(opts, cfg.Broker.ClientID)

	c := &Client{
		cfg:           cfg,
		options:       opts,
		manualAck:     cfg.ManualAck,
		subscriptions: make(map[string]subscription),
	}

	// Set up connection callbacks
	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.handleConnect()
	})

	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.handleDisconnect(err)
	})

	// Create and connect
	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return nil, fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, defaultConnectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	// Set connected state immediately after successful connection.
	// The OnConnectHandler callback runs asynchronously and may not have
	// executed yet, so we set it here to ensure IsConnected() returns true.
	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	return c, nil
}

// handleConnect is called when the connection is established.
func (c *Client) handleConnect() {
	c.connMu.Lock()
	c.connected = true
	c.connMu.Unlock()

	// Restore subscriptions
	c.restoreSubscriptions()

	// Publish online status
	c.publishOnlineStatus()
}

// handleDisconnect is called when the connection is lost. The reason is
// routed to every attached bridge's error path, one bridge at a time;
// bridges block, so routing is as serial as message delivery.
func (c *Client) handleDisconnect(err error) {
	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	c.subMu.RLock()
	bridges := make([]*dispatch.Bridge, 0, len(c.subscriptions))
	for _, sub := range c.subscriptions {
		bridges = append(bridges, sub.bridge)
	}
	c.subMu.RUnlock()

	for _, bridge := range bridges {
		bridge.HandleDisconnect(err)
	}
}

// restoreSubscriptions re-subscribes all tracked bridges after reconnect.
// A failed restore is a protocol-level fault: reported to the affected
// bridge's error path, not fatal to the connection.
func (c *Client) restoreSubscriptions() {
	c.subMu.RLock()
	subs := make([]subscription, 0, len(c.subscriptions))
	for _, sub := range c.subscriptions {
		subs = append(subs, sub)
	}
	c.subMu.RUnlock()

	for _, sub := range subs {
		token := c.client.Subscribe(sub.topic, sub.qos, c.route(sub.bridge))
		if token.WaitTimeout(defaultOpTimeout) && token.Error() != nil {
			sub.bridge.HandleError(fmt.Errorf("restoring subscription %q: %w", sub.topic, token.Error()))
		}
	}
}

// route adapts one bridge to a paho message handler. The bridge blocks
// this callback until the dispatch settles; paho's ordered mode therefore
// delivers the next message only after the current dispatch is done.
func (c *Client) route(bridge *dispatch.Bridge) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				if logger := c.getLogger(); logger != nil {
					logger.Error("MQTT dispatch panic recovered",
						"topic", msg.Topic(),
						"panic", r,
					)
				}
			}
		}()

		bridge.HandleMessage(msg.Topic(), msg, c.acknowledger(msg))
	}
}

// acknowledger returns the acknowledgment hook for one delivered message.
// With automatic acks the hook is a no-op; with manual acks it completes
// the message against the client.
func (c *Client) acknowledger(msg pahomqtt.Message) dispatch.Acknowledger {
	if !c.manualAck {
		return noopAck{}
	}
	return messageAck{msg: msg}
}

// messageAck acknowledges one delivered message against the client.
type messageAck struct {
	msg pahomqtt.Message
}

// Ack completes the message. paho guards the underlying acknowledgment
// with a once, so repeated calls are safe.
func (a messageAck) Ack() error {
	a.msg.Ack()
	return nil
}

// noopAck satisfies caller handles when the client auto-acknowledges.
type noopAck struct{}

func (noopAck) Ack() error { return nil }

// publishOnlineStatus publishes the relay's online status to the system status topic.
func (c *Client) publishOnlineStatus() {
	topic := Topics{}.SystemStatus()
	payload := buildOnlinePayload(c.cfg.Broker.ClientID)
	c.client.Publish(topic, byte(c.cfg.QoS), true, payload)
}

// Close gracefully disconnects from the MQTT broker.
//
// It performs:
//  1. Publishes graceful offline status (different from LWT crash status)
//  2. Waits for pending operations
//  3. Disconnects from broker
//
// Returns:
//   - error: If disconnect fails (connection already closed is not an error)
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	// Check if connected before trying to publish
	if c.IsConnected() {
		topic := Topics{}.SystemStatus()
		payload := buildOfflinePayload(c.cfg.Broker.ClientID)
		token := c.client.Publish(topic, byte(c.cfg.QoS), true, payload)
		token.WaitTimeout(defaultOpTimeout)
	}

	// Disconnect with quiesce period for pending operations
	c.client.Disconnect(defaultDisconnectQuiesce)

	c.connMu.Lock()
	c.connected = false
	c.connMu.Unlock()

	return nil
}

// HealthCheck verifies the MQTT connection is alive and functioning.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (c *Client) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("mqtt health check: %w", ctx.Err())
	default:
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	return nil
}

// IsConnected returns the current connection state.
//
// Note: This reflects the last known state. For reliability,
// use HealthCheck which can perform an active test.
func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected && c.client.IsConnected()
}

// SetLogger sets a logger for error and panic logging.
// If not set, routing faults are silently ignored.
func (c *Client) SetLogger(logger Logger) {
	c.loggerMu.Lock()
	c.logger = logger
	c.loggerMu.Unlock()
}

// getLogger returns the current logger (may be nil).
func (c *Client) getLogger() Logger {
	c.loggerMu.RLock()
	defer c.loggerMu.RUnlock()
	return c.logger
}
