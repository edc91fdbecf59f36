// Package dispatch bridges an MQTT client's network callbacks to
// consumer-registered handlers.
//
// This package manages:
//   - Capability discovery (which optional handlers a service registers)
//   - Envelope construction from raw delivered messages
//   - Caller handle construction for acknowledgment-capable handlers
//   - The dispatch state machine with a bounded blocking wait
//
// # Architecture
//
// The transport client (internal/infrastructure/mqtt) delivers each network
// event serially on its own goroutine. The Bridge translates every event
// into at most one handler invocation, submits it to a Runtime, and blocks
// the delivering goroutine until the invocation settles or the wait ceiling
// elapses:
//
//	network goroutine → Bridge → Runtime → handler
//	                      ↑ blocks until completion signal or timeout
//
// Because the delivering goroutine blocks for the full duration of each
// dispatch, events from one connection are handled strictly one at a time,
// in delivery order. No ordering is guaranteed across bridges.
//
// # Failure Semantics
//
// Nothing escapes this package upward into the transport layer. A missing
// onMessage handler routes a synthesized error through the onError path; a
// missing onError handler degrades to a local log entry; a timed-out wait
// is logged and the handler task abandoned; a handler fault (error return
// or panic) is logged and recorded but never re-dispatched. A misbehaving
// or missing handler must never destabilize the underlying connection.
//
// # Usage
//
//	svc := dispatch.Service{
//	    OnMessage: func(ctx context.Context, msg dispatch.Message) error {
//	        log.Printf("received %d bytes", len(msg.Payload))
//	        return nil
//	    },
//	    OnError: func(ctx context.Context, derr dispatch.DeliveryError) error {
//	        log.Printf("delivery error: %v", derr)
//	        return nil
//	    },
//	}
//
//	bridge, err := dispatch.New(svc, dispatch.GoRuntime{},
//	    dispatch.WithTimeout(30*time.Second))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer bridge.Close()
package dispatch
