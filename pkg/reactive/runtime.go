package reactive

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Observer receives lifecycle notifications from a Runtime.
// Implementations must be cheap; they are called on hot paths.
type Observer interface {
	EffectCreated()
	EffectRun()
	EffectDestroyed()
}

type nopObserver struct{}

func (nopObserver) EffectCreated()   {}
func (nopObserver) EffectRun()       {}
func (nopObserver) EffectDestroyed() {}

// Runtime is the reactive scheduler. It holds the current-effect slot,
// batch state and the microtask queue for one reactive graph.
//
// A Runtime is not safe for concurrent use. Signals, computeds and effects
// created on one Runtime must only be touched from the goroutine driving it.
type Runtime struct {
	// current is the subscriber tracking reads right now.
	// nil means reads do not create subscriptions.
	current subscriber

	batchDepth int
	pending    []subscriber

	microtasks []func()
	flushing   bool

	observer Observer
	logger   *slog.Logger

	alive int
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithObserver reports effect lifecycle events to o.
func WithObserver(o Observer) Option {
	return func(rt *Runtime) {
		if o != nil {
			rt.observer = o
		}
	}
}

// WithLogger sets the logger used for recovered microtask panics.
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		if l != nil {
			rt.logger = l
		}
	}
}

// New creates an isolated Runtime.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		observer: nopObserver{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

var (
	defaultRuntime     *Runtime
	defaultRuntimeOnce sync.Once
)

// Default returns the process-wide Runtime used when nil is passed to a
// constructor.
func Default() *Runtime {
	defaultRuntimeOnce.Do(func() {
		defaultRuntime = New()
	})
	return defaultRuntime
}

func orDefault(rt *Runtime) *Runtime {
	if rt == nil {
		return Default()
	}
	return rt
}

// enter makes s the current subscriber and returns the previous one.
// Every enter must be paired with a leave of the returned value.
func (rt *Runtime) enter(s subscriber) subscriber {
	prev := rt.current
	rt.current = s
	return prev
}

func (rt *Runtime) leave(prev subscriber) {
	rt.current = prev
}

// Tracking reports whether a read right now would create a subscription.
func (rt *Runtime) Tracking() bool {
	return rt.current != nil
}

// Untracked runs fn with no current effect.
func (rt *Runtime) Untracked(fn func()) {
	prev := rt.enter(nil)
	defer rt.leave(prev)
	fn()
}

// Batch groups signal writes. Effects notified inside fn are queued,
// deduplicated and run once when the outermost batch returns.
//
//	rt.Batch(func() {
//	    first.Set("Ada")
//	    last.Set("Lovelace")
//	})
func (rt *Runtime) Batch(fn func()) {
	rt.batchDepth++
	defer func() {
		rt.batchDepth--
		if rt.batchDepth == 0 {
			rt.drainPending()
		}
	}()
	fn()
}

func (rt *Runtime) drainPending() {
	for len(rt.pending) > 0 {
		queued := rt.pending
		rt.pending = nil

		seen := make(map[uint64]bool, len(queued))
		for _, sub := range queued {
			if seen[sub.id()] {
				continue
			}
			seen[sub.id()] = true
			sub.notify()
		}
	}
}

// QueueMicrotask schedules fn to run on the next Flush.
func (rt *Runtime) QueueMicrotask(fn func()) {
	if fn == nil {
		return
	}
	rt.microtasks = append(rt.microtasks, fn)
}

// Pending returns the number of queued microtasks.
func (rt *Runtime) Pending() int {
	return len(rt.microtasks)
}

// Flush runs queued microtasks until the queue is empty, including
// microtasks queued while flushing. A panicking microtask is logged and
// does not prevent the others from running.
func (rt *Runtime) Flush() {
	if rt.flushing {
		return
	}
	rt.flushing = true
	defer func() { rt.flushing = false }()

	for len(rt.microtasks) > 0 {
		task := rt.microtasks[0]
		rt.microtasks[0] = nil
		rt.microtasks = rt.microtasks[1:]
		rt.runMicrotask(task)
	}
	rt.microtasks = nil
}

func (rt *Runtime) runMicrotask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			rt.logger.Error("reactive: microtask panicked", "panic", fmt.Sprint(r))
		}
	}()
	task()
}

// ActiveEffects returns the number of effects created on this runtime that
// have not been destroyed.
func (rt *Runtime) ActiveEffects() int {
	return rt.alive
}

// globalIDCounter is the source of unique IDs for reactive nodes.
var globalIDCounter uint64

func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}
