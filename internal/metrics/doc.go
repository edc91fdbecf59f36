// Package metrics provides InfluxDB dispatch telemetry for Gray Dispatch.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, batched non-blocking writes, and health monitoring. Every
// settled dispatch call becomes one time-series point, so broker-side
// dashboards can track invocation rates, fallback routing, and handler
// wait times without touching the message path.
//
// # Usage
//
//	cfg := config.MetricsConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "graydispatch",
//	    Bucket: "dispatch",
//	}
//
//	client, err := metrics.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	bridge, err := dispatch.New(svc, rt, dispatch.WithObserver(client))
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are delivered via a
// callback. Connection and health check errors are returned directly.
package metrics
