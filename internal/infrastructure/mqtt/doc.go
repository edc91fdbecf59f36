// Package mqtt provides MQTT client connectivity for Gray Dispatch.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Binding dispatch bridges to topic subscriptions
//   - Manual acknowledgment plumbing for caller-capable handlers
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The paho library delivers each incoming message on its router goroutine
// (ordered mode, the default). Serve binds a dispatch.Bridge to a topic:
// every delivered message is handed to the bridge, which blocks the router
// goroutine until the handler invocation settles. That blocking is what
// serializes deliveries on one connection:
//
//	broker → paho router goroutine → dispatch.Bridge → handler runtime
//
// Connection-lost events are routed to every attached bridge's error path.
// Transport events with no handler boundary (connect-complete, delivery
// confirmations) are logged and intentionally not dispatched.
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	bridge, _ := dispatch.New(svc, dispatch.GoRuntime{})
//	if err := client.Serve("devices/+/events", 1, bridge); err != nil {
//	    log.Fatal(err)
//	}
package mqtt
