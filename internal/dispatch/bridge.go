package dispatch

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultTimeout is the wait ceiling applied when no WithTimeout option is
// given: how long a dispatch call blocks the delivering goroutine before
// abandoning the handler task.
const DefaultTimeout = 100 * time.Second

// Logger interface for optional logging support.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithTimeout sets the wait ceiling for each dispatch call. Values <= 0
// keep DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.timeout = d
		}
	}
}

// WithLogger sets the logger for local failure reporting. Without one,
// fallback and timeout events settle silently.
func WithLogger(logger Logger) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// WithObserver sets the sink that receives one record per settled dispatch
// call. Combine several sinks with MultiObserver.
func WithObserver(obs Observer) Option {
	return func(b *Bridge) {
		b.observer = obs
	}
}

// Bridge translates native callback events into capability-checked handler
// invocations with a bounded blocking wait.
//
// One Bridge serves one subscription: created at subscription setup,
// closed at teardown, outliving all individual dispatch calls. The service
// and runtime references are read-only from the bridge's perspective.
//
// Thread Safety:
//   - Handle methods are safe for concurrent use, but the ordering
//     guarantee (one dispatch at a time, in delivery order) holds only
//     when a single goroutine delivers events, as the transport does.
type Bridge struct {
	svc      Service
	rt       Runtime
	timeout  time.Duration
	logger   Logger
	observer Observer

	// closed interrupts in-flight waits at subscription teardown.
	closed    chan struct{}
	closeOnce sync.Once
}

// New creates a Bridge for one subscription.
//
// Parameters:
//   - svc: the handler-bearing service; all handlers optional
//   - rt: the invocation runtime; nil selects GoRuntime
//   - opts: timeout, logger, observer configuration
//
// Returns:
//   - *Bridge: ready to receive callbacks
//   - error: ErrServiceConflict if svc declares both message handler forms
func New(svc Service, rt Runtime, opts ...Option) (*Bridge, error) {
	if svc.OnMessage != nil && svc.OnMessageWithCaller != nil {
		return nil, ErrServiceConflict
	}
	if rt == nil {
		rt = GoRuntime{}
	}

	b := &Bridge{
		svc:     svc,
		rt:      rt,
		timeout: DefaultTimeout,
		closed:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Close interrupts any in-flight wait and marks the bridge torn down.
// Subsequent callbacks still dispatch; their waits settle immediately as
// interrupted. Safe to call more than once.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() {
		close(b.closed)
	})
}

// Timeout returns the configured wait ceiling.
func (b *Bridge) Timeout() time.Duration {
	return b.timeout
}

// HandleMessage dispatches one delivered message and blocks the caller
// until the handler signals completion, no handler exists, or the wait
// ceiling elapses.
//
// If no onMessage handler is registered, an internal handler-not-found
// error is synthesized and routed through the onError path instead; the
// message is never silently dropped.
//
// If the service declared OnMessageWithCaller, a Caller bound to the
// message's packet identifier and QoS is constructed from ack and passed
// as the second argument; ownership of the handle transfers to the
// handler. ack may be nil, in which case the handle reports
// ErrNoAcknowledger on use.
//
// A fault inside a successfully invoked handler (error return or panic) is
// logged and recorded but not routed to onError and never propagated to
// the caller.
func (b *Bridge) HandleMessage(topic string, raw RawMessage, ack Acknowledger) {
	caps := capabilitiesOf(b.svc)
	if !caps.HasOnMessage {
		b.observe(Outcome{
			ID:      newDispatchID(),
			Topic:   topic,
			Handler: HandlerOnMessage,
			Result:  ResultFallback,
		})
		b.dispatchError(topic, DeliveryError{
			Kind:  KindHandlerNotFound,
			Cause: fmt.Errorf("%w: topic %q", ErrHandlerNotFound, topic),
		})
		return
	}

	msg := newMessage(raw)

	var invoke func(context.Context) error
	if caps.OnMessageArity == 2 {
		fn := b.svc.OnMessageWithCaller
		caller := newCaller(ack, msg.MessageID, msg.QoS)
		invoke = func(ctx context.Context) error {
			return fn(ctx, msg, caller)
		}
	} else {
		fn := b.svc.OnMessage
		invoke = func(ctx context.Context) error {
			return fn(ctx, msg)
		}
	}

	b.await(topic, HandlerOnMessage, invoke)
}

// HandleDisconnect dispatches an unexpected-disconnection event to the
// onError handler, blocking as for messages. With no onError handler the
// event degrades to a local log entry.
func (b *Bridge) HandleDisconnect(reason error) {
	b.dispatchError("", DeliveryError{Kind: KindDisconnect, Cause: reason})
}

// HandleError dispatches a protocol-error event to the onError handler,
// blocking as for messages. With no onError handler the event degrades to
// a local log entry.
func (b *Bridge) HandleError(cause error) {
	b.dispatchError("", DeliveryError{Kind: KindProtocol, Cause: cause})
}

// dispatchError is the shared error path for transport-reported and
// synthesized errors. Handler absence here is terminal: report locally,
// never retry, never raise upward.
func (b *Bridge) dispatchError(topic string, derr DeliveryError) {
	caps := capabilitiesOf(b.svc)
	if !caps.HasOnError {
		if b.logger != nil {
			b.logger.Error("no onError handler registered, delivery error dropped to log",
				"kind", string(derr.Kind),
				"error", derr,
			)
		}
		b.observe(Outcome{
			ID:      newDispatchID(),
			Topic:   topic,
			Handler: HandlerOnError,
			Result:  ResultFallback,
		})
		return
	}

	fn := b.svc.OnError
	b.await(topic, HandlerOnError, func(ctx context.Context) error {
		return fn(ctx, derr)
	})
}

// await submits the invocation to the runtime and blocks until its one-shot
// completion signal, the wait ceiling, or bridge teardown. On timeout the
// handler task is abandoned, not killed: its context is cancelled so
// cooperative handlers can stop, but the bridge stops waiting either way.
func (b *Bridge) await(topic, handler string, invoke func(context.Context) error) {
	id := newDispatchID()
	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Buffered so a completion arriving after the timeout neither blocks
	// the handler goroutine nor unblocks a dispatch that already settled.
	completion := make(chan error, 1)
	b.rt.Submit(func() {
		completion <- runInvocation(ctx, invoke)
	})

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()

	select {
	case err := <-completion:
		if err != nil && b.logger != nil {
			b.logger.Warn("handler fault",
				"dispatch_id", id,
				"handler", handler,
				"topic", topic,
				"error", err,
			)
		}
		b.observe(Outcome{
			ID:         id,
			Topic:      topic,
			Handler:    handler,
			Result:     ResultInvoked,
			Wait:       time.Since(start),
			HandlerErr: err,
		})

	case <-timer.C:
		if b.logger != nil {
			b.logger.Warn("dispatch wait ceiling elapsed, abandoning handler task",
				"dispatch_id", id,
				"handler", handler,
				"topic", topic,
				"timeout", b.timeout,
			)
		}
		b.observe(Outcome{
			ID:      id,
			Topic:   topic,
			Handler: handler,
			Result:  ResultTimeout,
			Wait:    time.Since(start),
		})

	case <-b.closed:
		if b.logger != nil {
			b.logger.Warn("dispatch interrupted by bridge teardown",
				"dispatch_id", id,
				"handler", handler,
				"topic", topic,
			)
		}
		b.observe(Outcome{
			ID:      id,
			Topic:   topic,
			Handler: handler,
			Result:  ResultInterrupted,
			Wait:    time.Since(start),
		})
	}
}

// runInvocation executes the handler body, converting a panic into an
// error so the completion signal fires exactly once per call.
func runInvocation(ctx context.Context, invoke func(context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return invoke(ctx)
}

// observe reports a settled dispatch to the configured observer.
func (b *Bridge) observe(o Outcome) {
	if b.observer == nil {
		return
	}
	if o.At.IsZero() {
		o.At = time.Now().UTC()
	}
	b.observer.DispatchDone(o)
}
