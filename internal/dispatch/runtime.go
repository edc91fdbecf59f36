package dispatch

import "sync"

// Runtime is the invocation facility that executes handler code
// independently of the goroutine delivering network events. The bridge
// requires only that Submit runs the task asynchronously relative to the
// caller; scheduling, pooling, and any serialization across bridges are
// the runtime's concern.
//
// The bridge wraps every submitted task so its completion signal fires
// exactly once, whether the handler returns, errors, or panics. Runtimes
// must run every accepted task eventually; dropping a task would leave a
// dispatch call blocked until its wait ceiling.
type Runtime interface {
	Submit(task func())
}

// GoRuntime runs each invocation on its own goroutine. The zero value is
// ready to use.
type GoRuntime struct{}

// Submit starts the task on a new goroutine.
func (GoRuntime) Submit(task func()) {
	go task()
}

// SequentialRuntime runs invocations one at a time on a single worker
// goroutine, in submission order. Use it when handlers share state that
// must never be touched by two invocations at once, even across bridges.
type SequentialRuntime struct {
	tasks chan func()
	quit  chan struct{}
	done  chan struct{}

	closeOnce sync.Once
}

// NewSequentialRuntime creates a runtime with the given task buffer and
// starts its worker. A buffer of 0 makes Submit hand off synchronously to
// the worker.
func NewSequentialRuntime(buffer int) *SequentialRuntime {
	if buffer < 0 {
		buffer = 0
	}
	r := &SequentialRuntime{
		tasks: make(chan func(), buffer),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go r.worker()
	return r
}

// worker drains the task queue until Close, then finishes any buffered
// tasks so their completion signals still fire.
func (r *SequentialRuntime) worker() {
	defer close(r.done)
	for {
		select {
		case task := <-r.tasks:
			task()
		case <-r.quit:
			for {
				select {
				case task := <-r.tasks:
					task()
				default:
					return
				}
			}
		}
	}
}

// Submit enqueues the task for the worker. After Close the task is run on
// its own goroutine instead, preserving the never-drop guarantee at the
// cost of ordering.
func (r *SequentialRuntime) Submit(task func()) {
	select {
	case r.tasks <- task:
	case <-r.quit:
		go task()
	}
}

// Close stops the worker after it finishes buffered tasks. Safe to call
// more than once; blocks until the worker has exited.
func (r *SequentialRuntime) Close() {
	r.closeOnce.Do(func() {
		close(r.quit)
	})
	<-r.done
}
