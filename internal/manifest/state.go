package manifest

import (
	"fmt"
	"sort"

	"github.com/vango-dev/lumen/pkg/expr"
	"github.com/vango-dev/lumen/pkg/meta"
	"github.com/vango-dev/lumen/pkg/reactive"
)

// State is the instance behind a manifest component, directive or service.
// Every field is a signal, so templates re-render when a field is assigned.
// Methods are expressions evaluated against the state with the call
// arguments bound to $args.
type State struct {
	name    string
	rt      *reactive.Runtime
	fields  map[string]*reactive.Signal[any]
	values  map[string]any
	methods map[string]*expr.Program
}

// NewState creates a state with one signal per entry of fields.
func NewState(rt *reactive.Runtime, name string, fields map[string]any) *State {
	s := &State{
		name:    name,
		rt:      rt,
		fields:  make(map[string]*reactive.Signal[any], len(fields)),
		values:  make(map[string]any),
		methods: make(map[string]*expr.Program),
	}
	for k, v := range fields {
		s.fields[k] = reactive.NewSignal[any](rt, v)
	}
	return s
}

// Name returns the definition name the state was created for.
func (s *State) Name() string { return s.name }

// Lookup implements expr.Scope. Reading a field subscribes the running
// effect.
func (s *State) Lookup(name string) (any, bool) {
	if sig, ok := s.fields[name]; ok {
		return sig.Get(), true
	}
	if v, ok := s.values[name]; ok {
		return v, true
	}
	if prog, ok := s.methods[name]; ok {
		return method{state: s, prog: prog}, true
	}
	return nil, false
}

// Assign implements expr.Scope. Unknown names become new fields; provided
// values and methods are read-only.
func (s *State) Assign(name string, value any) bool {
	if sig, ok := s.fields[name]; ok {
		sig.Set(value)
		return true
	}
	if _, ok := s.values[name]; ok {
		return false
	}
	if _, ok := s.methods[name]; ok {
		return false
	}
	s.fields[name] = reactive.NewSignal[any](s.rt, value)
	return true
}

// Signal returns the signal backing field name.
func (s *State) Signal(name string) (*reactive.Signal[any], bool) {
	sig, ok := s.fields[name]
	return sig, ok
}

// Provide binds a read-only value such as an injected service.
func (s *State) Provide(name string, v any) {
	s.values[name] = v
}

// Output returns the emitter for an output, creating it on first use.
func (s *State) Output(name string) *meta.EventEmitter {
	if em, ok := s.values[name].(*meta.EventEmitter); ok {
		return em
	}
	em := meta.NewEventEmitter()
	s.values[name] = em
	return em
}

// Define compiles src as method name.
func (s *State) Define(name, src string) error {
	prog, err := expr.Compile(src)
	if err != nil {
		return fmt.Errorf("method %s: %w", name, err)
	}
	s.methods[name] = prog
	return nil
}

// Fields returns the field names in order.
func (s *State) Fields() []string {
	names := make([]string, 0, len(s.fields))
	for k := range s.fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns the current field values without subscribing.
func (s *State) Snapshot() map[string]any {
	out := make(map[string]any, len(s.fields))
	for k, sig := range s.fields {
		out[k] = sig.Peek()
	}
	return out
}

type method struct {
	state *State
	prog  *expr.Program
}

// Call implements expr.Callable.
func (m method) Call(args ...any) (any, error) {
	if args == nil {
		args = []any{}
	}
	return m.prog.Eval(expr.Env{Scope: expr.Layer(m.state, expr.MapScope{"$args": args})})
}
