package dispatch

import "context"

// Logical handler names used in capability queries and dispatch outcomes.
const (
	HandlerOnMessage = "onMessage"
	HandlerOnError   = "onError"
)

// Service describes the handlers a consumer registers for one subscription.
//
// Every field is optional; a nil field means the handler is absent, which
// is legal and tolerated by the Bridge. At most one of OnMessage and
// OnMessageWithCaller may be set; declaring both is rejected by New.
//
// The context passed to each handler is per-dispatch. It is cancelled when
// the dispatch settles, including when the wait ceiling elapses, so a
// cooperative handler can stop early after it has been abandoned.
type Service struct {
	// OnMessage handles a delivered message (envelope only).
	OnMessage func(ctx context.Context, msg Message) error

	// OnMessageWithCaller handles a delivered message and receives a
	// Caller handle for acknowledgment-style operations. Setting this
	// field is how a service requests the two-argument form.
	OnMessageWithCaller func(ctx context.Context, msg Message, caller *Caller) error

	// OnError handles a transport-reported or synthesized delivery error.
	OnError func(ctx context.Context, derr DeliveryError) error
}

// Capabilities records whether and how a Service implements each optional
// handler. It is recomputed from the Service on every callback: the Service
// is supplied externally and inspected lazily, so no immutability is
// assumed across the lifetime of a bridge.
type Capabilities struct {
	// HasOnMessage reports whether either message handler form is set.
	HasOnMessage bool

	// HasOnError reports whether the error handler is set.
	HasOnError bool

	// OnMessageArity is the declared message-handler argument count
	// beyond the context: 1 (envelope only), 2 (envelope and caller),
	// or 0 when absent.
	OnMessageArity int
}

// capabilitiesOf derives the capability record for a service.
func capabilitiesOf(svc Service) Capabilities {
	caps := Capabilities{
		HasOnError: svc.OnError != nil,
	}
	switch {
	case svc.OnMessageWithCaller != nil:
		caps.HasOnMessage = true
		caps.OnMessageArity = 2
	case svc.OnMessage != nil:
		caps.HasOnMessage = true
		caps.OnMessageArity = 1
	}
	return caps
}

// HasHandler reports whether a handler with the given logical name exists.
// Unknown names report false; a service with no matching handler is not an
// error.
func (c Capabilities) HasHandler(name string) bool {
	switch name {
	case HandlerOnMessage:
		return c.HasOnMessage
	case HandlerOnError:
		return c.HasOnError
	default:
		return false
	}
}

// HandlerArity returns the declared argument count for the named handler,
// or 0 if the handler is absent.
func (c Capabilities) HandlerArity(name string) int {
	switch name {
	case HandlerOnMessage:
		return c.OnMessageArity
	case HandlerOnError:
		if c.HasOnError {
			return 1
		}
		return 0
	default:
		return 0
	}
}
