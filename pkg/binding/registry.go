package binding

import (
	"strings"

	"github.com/vango-dev/lumen/pkg/dom"
	"github.com/vango-dev/lumen/pkg/reactive"
)

// Disposer is torn down with the node it is registered on.
type Disposer interface {
	Dispose()
}

// DisposerFunc adapts a function to Disposer.
type DisposerFunc func()

// Dispose calls f.
func (f DisposerFunc) Dispose() { f() }

type record struct {
	effects   []*reactive.Effect
	disposers []Disposer
	context   *Context
	inputs    map[string]*reactive.Signal[any]
	bound     bool
}

// Registry holds per-node binding state for one document: effects,
// disposers, attached contexts and custom element input signals.
// Like the reactive runtime it is confined to one goroutine.
type Registry struct {
	rt    *reactive.Runtime
	nodes map[*dom.Node]*record
}

// NewRegistry creates an empty registry whose input signals live on rt.
func NewRegistry(rt *reactive.Runtime) *Registry {
	if rt == nil {
		rt = reactive.Default()
	}
	return &Registry{rt: rt, nodes: make(map[*dom.Node]*record)}
}

// Runtime returns the runtime input signals are created on.
func (r *Registry) Runtime() *reactive.Runtime {
	return r.rt
}

func (r *Registry) get(n *dom.Node) *record {
	rec, ok := r.nodes[n]
	if !ok {
		rec = &record{}
		r.nodes[n] = rec
	}
	return rec
}

// Attach attaches ctx to n. Expressions on n and its descendants resolve
// against it unless a nearer node carries its own context.
func (r *Registry) Attach(n *dom.Node, ctx *Context) {
	r.get(n).context = ctx
}

// ContextOf returns the context attached directly to n.
func (r *Registry) ContextOf(n *dom.Node) *Context {
	if rec, ok := r.nodes[n]; ok {
		return rec.context
	}
	return nil
}

// Resolve returns the nearest context attached to n or an ancestor,
// falling back to base.
func (r *Registry) Resolve(n *dom.Node, base *Context) *Context {
	for p := n; p != nil; p = p.Parent() {
		if rec, ok := r.nodes[p]; ok && rec.context != nil {
			return rec.context
		}
	}
	return base
}

// AddEffect registers e for teardown with n.
func (r *Registry) AddEffect(n *dom.Node, e *reactive.Effect) {
	rec := r.get(n)
	rec.effects = append(rec.effects, e)
}

// Effects returns the effects registered on n.
func (r *Registry) Effects(n *dom.Node) []*reactive.Effect {
	if rec, ok := r.nodes[n]; ok {
		return append([]*reactive.Effect(nil), rec.effects...)
	}
	return nil
}

// AddDisposer registers d for teardown with n.
func (r *Registry) AddDisposer(n *dom.Node, d Disposer) {
	rec := r.get(n)
	rec.disposers = append(rec.disposers, d)
}

// RemoveDisposer unregisters d from n without disposing it.
func (r *Registry) RemoveDisposer(n *dom.Node, d Disposer) {
	rec, ok := r.nodes[n]
	if !ok {
		return
	}
	for i, existing := range rec.disposers {
		if existing == d {
			rec.disposers = append(rec.disposers[:i], rec.disposers[i+1:]...)
			return
		}
	}
}

// MarkBound records that the bindings of n have been wired.
func (r *Registry) MarkBound(n *dom.Node) {
	r.get(n).bound = true
}

// Bound reports whether MarkBound was called for n since its last
// teardown.
func (r *Registry) Bound(n *dom.Node) bool {
	rec, ok := r.nodes[n]
	return ok && rec.bound
}

// Input returns the input signal stored on a custom element for name.
// Names are case-insensitive.
func (r *Registry) Input(n *dom.Node, name string) (*reactive.Signal[any], bool) {
	rec, ok := r.nodes[n]
	if !ok || rec.inputs == nil {
		return nil, false
	}
	s, ok := rec.inputs[strings.ToLower(name)]
	return s, ok
}

// SetInput creates or updates the input signal for name on n.
func (r *Registry) SetInput(n *dom.Node, name string, value any) *reactive.Signal[any] {
	rec := r.get(n)
	key := strings.ToLower(name)
	if rec.inputs == nil {
		rec.inputs = make(map[string]*reactive.Signal[any])
	}
	s, ok := rec.inputs[key]
	if !ok {
		s = reactive.NewSignal[any](r.rt, value)
		rec.inputs[key] = s
		return s
	}
	s.Set(value)
	return s
}

// InputNames returns the lower-cased names of the inputs set on n.
func (r *Registry) InputNames(n *dom.Node) []string {
	rec, ok := r.nodes[n]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(rec.inputs))
	for name := range rec.inputs {
		names = append(names, name)
	}
	return names
}

// EffectCount returns the number of effects currently registered.
func (r *Registry) EffectCount() int {
	n := 0
	for _, rec := range r.nodes {
		n += len(rec.effects)
	}
	return n
}

// DisposerCount returns the number of disposers currently registered.
func (r *Registry) DisposerCount() int {
	n := 0
	for _, rec := range r.nodes {
		n += len(rec.disposers)
	}
	return n
}

// DestroySubtree tears down root and every descendant: effects are
// destroyed, disposers run and attached contexts and inputs are dropped.
func (r *Registry) DestroySubtree(root *dom.Node) {
	r.teardown(root)
	r.DestroyDescendants(root)
}

// DestroyDescendants tears down every descendant of root but leaves root's
// own registrations in place.
func (r *Registry) DestroyDescendants(root *dom.Node) {
	for _, n := range root.Descendants() {
		r.teardown(n)
	}
}

// Teardown destroys the effects and disposers registered directly on n and
// forgets n.
func (r *Registry) Teardown(n *dom.Node) {
	r.teardown(n)
}

func (r *Registry) teardown(n *dom.Node) {
	rec, ok := r.nodes[n]
	if !ok {
		return
	}
	delete(r.nodes, n)
	for _, e := range rec.effects {
		e.Destroy()
	}
	for _, d := range rec.disposers {
		d.Dispose()
	}
}
