package metrics

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/gray-dispatch/internal/dispatch"
)

// DispatchDone implements dispatch.Observer: it records one settled
// dispatch call as a time-series point.
//
// The write is non-blocking; points are batched and sent asynchronously,
// so the delivering goroutine is never held up by the metrics backend.
func (c *Client) DispatchDone(o dispatch.Outcome) {
	if !c.IsConnected() {
		return
	}

	at := o.At
	if at.IsZero() {
		at = time.Now()
	}

	point := write.NewPoint(
		"dispatch_outcome",
		map[string]string{
			"topic":   o.Topic,
			"handler": o.Handler,
			"result":  string(o.Result),
		},
		map[string]interface{}{
			"wait_ms": o.Wait.Milliseconds(),
		},
		at,
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for measurements that don't fit the dispatch outcome shape,
// such as broker connectivity events.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
