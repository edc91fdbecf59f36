package dispatch

import (
	"errors"
	"fmt"
)

// Domain-specific errors for dispatch operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrHandlerNotFound is the cause of the error synthesized when a
	// message arrives and no onMessage handler is registered.
	ErrHandlerNotFound = errors.New("dispatch: onMessage handler not found")

	// ErrServiceConflict is returned by New when a service declares both
	// OnMessage and OnMessageWithCaller.
	ErrServiceConflict = errors.New("dispatch: service declares both OnMessage and OnMessageWithCaller")

	// ErrNoAcknowledger is returned by Caller.Ack when the handle was
	// constructed without an acknowledger.
	ErrNoAcknowledger = errors.New("dispatch: caller has no acknowledger")
)

// ErrorKind classifies the origin of a DeliveryError.
type ErrorKind string

// Delivery error kinds.
const (
	// KindDisconnect marks an unexpected disconnection reported by the
	// transport.
	KindDisconnect ErrorKind = "disconnect"

	// KindProtocol marks a protocol-level error reported by the transport.
	KindProtocol ErrorKind = "protocol"

	// KindHandlerNotFound marks the internal error synthesized when a
	// message is delivered with no onMessage handler registered.
	KindHandlerNotFound ErrorKind = "handler_not_found"
)

// DeliveryError is the immutable error value passed to onError handlers.
// One is created per disconnect, protocol-error, or handler-not-found
// event. The wrapped cause chain is reachable through Unwrap.
type DeliveryError struct {
	// Kind classifies the failure origin.
	Kind ErrorKind

	// Cause is the underlying failure, possibly with its own nested
	// causes. May be nil when the transport reports no reason.
	Cause error
}

// Error implements the error interface.
func (e DeliveryError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("dispatch: %s error", e.Kind)
	}
	return fmt.Sprintf("dispatch: %s error: %v", e.Kind, e.Cause)
}

// Unwrap exposes the cause chain to errors.Is and errors.As.
func (e DeliveryError) Unwrap() error {
	return e.Cause
}
