package meta

import "github.com/vango-dev/lumen/pkg/dom"

// OnInit is called once inputs are first set.
type OnInit interface {
	OnInit()
}

// AfterViewInit is called on the microtask after the first render.
type AfterViewInit interface {
	AfterViewInit()
}

// OnDestroy is called when the instance is torn down.
type OnDestroy interface {
	OnDestroy()
}

// ElementAware instances receive the element they are attached to.
type ElementAware interface {
	SetNativeElement(el *dom.Node)
}

// EventEmitter is an output. Once bound to an element, every Emit
// dispatches a custom event carrying the value.
type EventEmitter struct {
	el   *dom.Node
	name string
	subs []*emitterSub
}

type emitterSub struct {
	fn func(any)
}

// NewEventEmitter creates an unbound emitter.
func NewEventEmitter() *EventEmitter {
	return &EventEmitter{}
}

// Bind dispatches later emissions as name events on el.
func (e *EventEmitter) Bind(el *dom.Node, name string) {
	e.el, e.name = el, name
}

// Subscribe registers fn and returns a function removing it.
func (e *EventEmitter) Subscribe(fn func(any)) func() {
	s := &emitterSub{fn: fn}
	e.subs = append(e.subs, s)
	return func() {
		for i, existing := range e.subs {
			if existing == s {
				e.subs = append(e.subs[:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

// Emit notifies subscribers, then dispatches a custom event if bound.
func (e *EventEmitter) Emit(v any) {
	for _, s := range append([]*emitterSub(nil), e.subs...) {
		s.fn(v)
	}
	if e.el != nil {
		e.el.DispatchEvent(dom.NewCustomEvent(e.name, v))
	}
}
