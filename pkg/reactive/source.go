package reactive

// subscriber is anything that can be notified by a source: effects and
// computeds (which are synthetic subscribers of their own dependencies).
type subscriber interface {
	id() uint64
	notify()
	addSource(src *source)
	inert() bool
}

// source provides type-erased subscriber management.
// It is embedded in Signal[T] and Computed[T].
type source struct {
	rt   *Runtime
	subs []subscriber
}

// track subscribes the runtime's current subscriber, if any.
func (s *source) track() {
	cur := s.rt.current
	if cur == nil {
		return
	}
	if s.subscribe(cur) {
		cur.addSource(s)
	}
}

// subscribe adds sub, deduplicating by identity. It reports whether sub
// was newly added.
func (s *source) subscribe(sub subscriber) bool {
	for _, existing := range s.subs {
		if existing == sub {
			return false
		}
	}
	s.subs = append(s.subs, sub)
	return true
}

// unsubscribe removes sub while preserving insertion order.
func (s *source) unsubscribe(sub subscriber) {
	for i, existing := range s.subs {
		if existing == sub {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			return
		}
	}
}

// notifySubscribers notifies a snapshot of the current subscribers in
// insertion order. Subscribers added during notification are not entered.
// Destroyed effects are pruned rather than called.
func (s *source) notifySubscribers() {
	if len(s.subs) == 0 {
		return
	}
	snapshot := make([]subscriber, len(s.subs))
	copy(snapshot, s.subs)

	live := s.subs[:0]
	for _, sub := range s.subs {
		if !sub.inert() {
			live = append(live, sub)
		}
	}
	for i := len(live); i < len(s.subs); i++ {
		s.subs[i] = nil
	}
	s.subs = live

	for _, sub := range snapshot {
		if s.rt.batchDepth > 0 {
			if e, ok := sub.(*Effect); ok {
				s.rt.pending = append(s.rt.pending, e)
				continue
			}
		}
		sub.notify()
	}
}

// subscriberCount is used by tests.
func (s *source) subscriberCount() int {
	return len(s.subs)
}

// Source is a type-erased reactive value. Reading it inside an effect
// subscribes the effect, like calling Get on the typed value.
type Source interface {
	GetAny() any
}

// Writable is a type-erased writable reactive value.
type Writable interface {
	Source
	SetAny(v any) error
}
