package reactive

// Effect is a side-effecting function that re-runs whenever a signal or
// computed it read during its most recent run changes.
//
// Subscriptions are rebuilt on every run: only what was actually read last
// time keeps the effect subscribed.
type Effect struct {
	eid       uint64
	rt        *Runtime
	fn        func()
	sources   []*source
	destroyed bool
	manual    bool
	name      string
	runs      int
}

// EffectOption configures an Effect.
type EffectOption func(*Effect)

// ManualCleanup marks an effect whose creator is responsible for calling
// Destroy. It is informational; no owner tears it down implicitly.
func ManualCleanup() EffectOption {
	return func(e *Effect) {
		e.manual = true
	}
}

// EffectName labels the effect for debugging.
func EffectName(name string) EffectOption {
	return func(e *Effect) {
		e.name = name
	}
}

// NewEffect creates an effect on rt (or the default runtime when rt is nil)
// and runs fn immediately with the effect as the current subscriber.
func NewEffect(rt *Runtime, fn func(), opts ...EffectOption) *Effect {
	rt = orDefault(rt)
	e := &Effect{
		eid: nextID(),
		rt:  rt,
		fn:  fn,
	}
	for _, opt := range opts {
		opt(e)
	}
	rt.alive++
	rt.observer.EffectCreated()
	e.run()
	return e
}

// Destroy makes the effect inert. Later notifications are ignored. A run
// already in progress is not interrupted.
func (e *Effect) Destroy() {
	if e == nil || e.destroyed {
		return
	}
	e.destroyed = true
	e.rt.alive--
	e.rt.observer.EffectDestroyed()
}

// Destroyed reports whether Destroy has been called.
func (e *Effect) Destroyed() bool {
	return e.destroyed
}

// Runs returns how many times the effect function has executed.
func (e *Effect) Runs() int {
	return e.runs
}

// Manual reports whether the effect was created with ManualCleanup.
func (e *Effect) Manual() bool {
	return e.manual
}

// Name returns the label set with EffectName.
func (e *Effect) Name() string {
	return e.name
}

func (e *Effect) run() {
	if e.destroyed {
		return
	}
	for _, src := range e.sources {
		src.unsubscribe(e)
	}
	e.sources = e.sources[:0]

	prev := e.rt.enter(e)
	defer e.rt.leave(prev)

	e.runs++
	e.rt.observer.EffectRun()
	e.fn()
}

func (e *Effect) id() uint64 { return e.eid }

func (e *Effect) inert() bool { return e.destroyed }

func (e *Effect) addSource(src *source) {
	e.sources = append(e.sources, src)
}

func (e *Effect) notify() {
	if e.destroyed {
		return
	}
	e.run()
}
