package mqtt

import (
	"fmt"

	"github.com/nerrad567/gray-dispatch/internal/dispatch"
)

// Serve binds a dispatch bridge to a topic subscription.
//
// Topics can include MQTT wildcards:
//   - + (single-level): "devices/+/events" matches any device
//   - # (multi-level): "devices/#" matches the whole subtree
//
// Every message delivered on the topic is handed to the bridge, which
// blocks the router goroutine until the handler invocation settles. One
// bridge serves one subscription; to tear the subscription down, call
// Unsubscribe and then close the bridge.
//
// Subscriptions are automatically restored if the connection is lost and
// reconnected (tracked internally).
//
// Parameters:
//   - topic: The topic pattern to subscribe to
//   - qos: Maximum QoS level for received messages (0, 1, or 2)
//   - bridge: The dispatch bridge receiving deliveries
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (c *Client) Serve(topic string, qos byte, bridge *dispatch.Bridge) error {
	// Validate inputs
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if bridge == nil {
		return fmt.Errorf("%w: bridge cannot be nil", ErrSubscribeFailed)
	}

	// Check connection state
	if !c.IsConnected() {
		return ErrNotConnected
	}

	// Track subscription for reconnection restoration
	c.subMu.Lock()
	c.subscriptions[topic] = subscription{
		topic:  topic,
		qos:    qos,
		bridge: bridge,
	}
	c.subMu.Unlock()

	// Subscribe with the routing handler (includes panic recovery)
	token := c.client.Subscribe(topic, qos, c.route(bridge))
	if !token.WaitTimeout(defaultOpTimeout) {
		// Remove from tracking since subscription failed
		c.subMu.Lock()
		delete(c.subscriptions, topic)
		c.subMu.Unlock()
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, defaultOpTimeout)
	}
	if err := token.Error(); err != nil {
		// Remove from tracking since subscription failed
		c.subMu.Lock()
		delete(c.subscriptions, topic)
		c.subMu.Unlock()
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}

	return nil
}

// Unsubscribe removes a subscription and stops routing messages for a topic.
//
// After unsubscribing, the bound bridge no longer receives deliveries on
// this topic. Any messages in flight may still be dispatched.
//
// Parameters:
//   - topic: The exact topic pattern that was served
//
// Returns:
//   - error: nil on success, or wrapped error describing the failure
func (c *Client) Unsubscribe(topic string) error {
	// Validate inputs
	if topic == "" {
		return ErrInvalidTopic
	}

	// Check connection state
	if !c.IsConnected() {
		return ErrNotConnected
	}

	// Remove from tracking
	c.subMu.Lock()
	delete(c.subscriptions, topic)
	c.subMu.Unlock()

	// Unsubscribe from broker
	token := c.client.Unsubscribe(topic)
	if !token.WaitTimeout(defaultOpTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrUnsubscribeFailed, defaultOpTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnsubscribeFailed, err)
	}

	return nil
}

// SubscriptionCount returns the number of active bridge-backed subscriptions.
//
// This can be useful for monitoring and debugging.
func (c *Client) SubscriptionCount() int {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	return len(c.subscriptions)
}

// HasSubscription checks if a subscription exists for the given topic.
//
// Note: This checks only the exact topic string, not pattern matching.
func (c *Client) HasSubscription(topic string) bool {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	_, exists := c.subscriptions[topic]
	return exists
}
