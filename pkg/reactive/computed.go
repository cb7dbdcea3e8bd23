package reactive

// Computed is a cached derived value. It is computed once on creation and
// then only when read after an upstream change.
//
// A computed subscribes to its own dependencies as a synthetic effect. When
// one of them changes it is marked dirty and its readers are notified, but
// the computation itself waits for the next Get.
type Computed[T any] struct {
	base    source
	cid     uint64
	fn      func() T
	value   T
	dirty   bool
	running bool
	equal   func(a, b T) bool
	sources []*source
}

// NewComputed creates a computed value on rt (or the default runtime when
// rt is nil) and evaluates fn immediately.
func NewComputed[T any](rt *Runtime, fn func() T, opts ...ValueOption[T]) *Computed[T] {
	o := applyValueOptions(opts)
	c := &Computed[T]{
		base:  source{rt: orDefault(rt)},
		cid:   nextID(),
		fn:    fn,
		equal: o.equal,
	}
	c.recompute()
	return c
}

// Get returns the value, recomputing first if a dependency changed, and
// subscribes the current effect.
func (c *Computed[T]) Get() T {
	c.base.track()
	if c.dirty {
		c.recompute()
	}
	return c.value
}

// Peek returns the value without subscribing. It still recomputes when
// dirty.
func (c *Computed[T]) Peek() T {
	if c.dirty {
		c.recompute()
	}
	return c.value
}

// GetAny implements Source.
func (c *Computed[T]) GetAny() any {
	return c.Get()
}

// ID returns the unique identifier for this computed.
func (c *Computed[T]) ID() uint64 {
	return c.cid
}

func (c *Computed[T]) recompute() {
	if c.running {
		// Circular read: serve the stale value.
		return
	}
	c.running = true
	defer func() { c.running = false }()

	c.dropSources()
	rt := c.base.rt
	prev := rt.enter(c)
	defer rt.leave(prev)

	next := c.fn()
	if !c.equal(c.value, next) {
		c.value = next
	}
	c.dirty = false
}

func (c *Computed[T]) dropSources() {
	for _, src := range c.sources {
		src.unsubscribe(c)
	}
	c.sources = c.sources[:0]
}

func (c *Computed[T]) id() uint64 { return c.cid }

func (c *Computed[T]) inert() bool { return false }

func (c *Computed[T]) addSource(src *source) {
	c.sources = append(c.sources, src)
}

// notify marks the computed dirty and propagates to its readers.
func (c *Computed[T]) notify() {
	if c.dirty {
		return
	}
	c.dirty = true
	c.base.notifySubscribers()
}
