package dom

// Event is dispatched to a target and bubbles through its ancestors.
type Event struct {
	Type string

	// Detail is the payload of a custom event.
	Detail any

	// Custom marks events created with NewCustomEvent.
	Custom bool

	Target        *Node
	CurrentTarget *Node

	bubbles          bool
	stopped          bool
	defaultPrevented bool
}

// NewEvent creates a bubbling native event.
func NewEvent(typ string) *Event {
	return &Event{Type: typ, bubbles: true}
}

// NewCustomEvent creates a bubbling custom event carrying detail.
func NewCustomEvent(typ string, detail any) *Event {
	return &Event{Type: typ, Detail: detail, Custom: true, bubbles: true}
}

// StopPropagation prevents the event from reaching further ancestors.
func (e *Event) StopPropagation() { e.stopped = true }

// PreventDefault marks the event as cancelled.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

type listener struct {
	fn func(*Event)
}

// AddEventListener registers fn for events of typ and returns a function
// that removes it.
func (n *Node) AddEventListener(typ string, fn func(*Event)) func() {
	if n.listeners == nil {
		n.listeners = make(map[string][]*listener)
	}
	l := &listener{fn: fn}
	n.listeners[typ] = append(n.listeners[typ], l)
	return func() {
		list := n.listeners[typ]
		for i, existing := range list {
			if existing == l {
				n.listeners[typ] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

// ListenerCount returns the number of listeners registered for typ.
func (n *Node) ListenerCount(typ string) int {
	return len(n.listeners[typ])
}

// DispatchEvent delivers ev to n and, while it bubbles, to each ancestor.
// Bubbling crosses shadow roots to their host. It reports whether the
// default action is still allowed.
func (n *Node) DispatchEvent(ev *Event) bool {
	ev.Target = n
	for cur := n; cur != nil; {
		ev.CurrentTarget = cur
		for _, l := range append([]*listener(nil), cur.listeners[ev.Type]...) {
			l.fn(ev)
		}
		if ev.stopped || !ev.bubbles {
			break
		}
		if cur.parent == nil && cur.host != nil {
			cur = cur.host
			continue
		}
		cur = cur.parent
	}
	ev.CurrentTarget = nil
	return !ev.defaultPrevented
}
