package dispatch

import (
	"time"

	"github.com/google/uuid"
)

// Result classifies the terminal outcome of one dispatch call.
type Result string

// Dispatch results.
const (
	// ResultInvoked means the handler ran and signalled completion
	// within the wait ceiling. The handler may still have returned an
	// error; see Outcome.HandlerErr.
	ResultInvoked Result = "invoked"

	// ResultFallback means no matching handler was registered and the
	// event degraded to local reporting.
	ResultFallback Result = "fallback"

	// ResultTimeout means the wait ceiling elapsed before the handler
	// signalled completion. The handler task was abandoned, not killed.
	ResultTimeout Result = "timeout"

	// ResultInterrupted means the bridge was closed while waiting.
	// Treated as a normal, non-fatal termination of that one dispatch.
	ResultInterrupted Result = "interrupted"
)

// Outcome describes one settled dispatch call.
//
// A message delivered with no onMessage handler produces two outcomes: the
// fallback for the message dispatch itself, then the outcome of the
// synthesized error dispatch it routes into.
type Outcome struct {
	// ID uniquely identifies the dispatch call.
	ID string

	// Topic is the topic the triggering event arrived on; empty for
	// connection-level error events.
	Topic string

	// Handler is the logical handler name the call targeted
	// (HandlerOnMessage or HandlerOnError).
	Handler string

	// Result is the terminal outcome.
	Result Result

	// Wait is how long the delivering goroutine was blocked.
	Wait time.Duration

	// HandlerErr is the error returned (or panic raised) by the handler
	// body, if any. It is recorded here, never propagated.
	HandlerErr error

	// At is when the dispatch settled.
	At time.Time
}

// Observer receives terminal dispatch outcomes. Implementations must be
// fast and must never panic; they run on the delivering goroutine between
// dispatches.
type Observer interface {
	DispatchDone(o Outcome)
}

// MultiObserver fans one outcome out to several observers in order.
type MultiObserver []Observer

// DispatchDone implements Observer.
func (m MultiObserver) DispatchDone(o Outcome) {
	for _, obs := range m {
		if obs != nil {
			obs.DispatchDone(o)
		}
	}
}

// newDispatchID returns a short unique identifier for one dispatch call,
// used for log correlation and journal rows.
func newDispatchID() string {
	return "dsp-" + uuid.NewString()[:8]
}
