package expr

// Scope resolves identifiers during evaluation.
type Scope interface {
	// Lookup returns the value bound to name.
	Lookup(name string) (any, bool)
	// Assign writes value to the binding that owns name. It reports false
	// when no binding accepts the write.
	Assign(name string, value any) bool
}

// MapScope is a Scope over a plain map. Assign always succeeds.
type MapScope map[string]any

func (s MapScope) Lookup(name string) (any, bool) {
	v, ok := s[name]
	return v, ok
}

func (s MapScope) Assign(name string, value any) bool {
	if s == nil {
		return false
	}
	s[name] = value
	return true
}

// ValueScope resolves names as members of v, so a struct pointer exposes
// its fields and methods to expressions.
func ValueScope(v any) Scope {
	return valueScope{v: v}
}

type valueScope struct {
	v any
}

func (s valueScope) Lookup(name string) (any, bool) {
	return Member(s.v, name)
}

func (s valueScope) Assign(name string, value any) bool {
	return SetMember(s.v, name, value) == nil
}

// Layer returns a Scope that consults vars before parent. Assignments to
// names in vars stay in vars; all others go to parent.
func Layer(parent Scope, vars MapScope) Scope {
	return layer{parent: parent, vars: vars}
}

type layer struct {
	parent Scope
	vars   MapScope
}

func (l layer) Lookup(name string) (any, bool) {
	if v, ok := l.vars[name]; ok {
		return v, true
	}
	if l.parent == nil {
		return nil, false
	}
	return l.parent.Lookup(name)
}

func (l layer) Assign(name string, value any) bool {
	if _, ok := l.vars[name]; ok {
		l.vars[name] = value
		return true
	}
	if l.parent == nil {
		return false
	}
	return l.parent.Assign(name, value)
}
