package binding

import "github.com/vango-dev/lumen/pkg/expr"

// Context is one frame of an immutable context chain. The chain is shared
// structurally: With returns a new frame pointing at its parent, and
// nothing ever mutates the links.
type Context struct {
	parent   *Context
	vars     map[string]any
	instance any
	depth    int
}

// Root returns the base frame for a component instance. Names not found
// in any frame resolve as members of instance, or through instance itself
// when it implements expr.Scope.
func Root(instance any) *Context {
	return &Context{instance: instance}
}

// With returns a child frame binding name to value.
func (c *Context) With(name string, value any) *Context {
	return c.WithVars(map[string]any{name: value})
}

// WithVars returns a child frame holding a copy of vars.
func (c *Context) WithVars(vars map[string]any) *Context {
	own := make(map[string]any, len(vars))
	for k, v := range vars {
		own[k] = v
	}
	return &Context{parent: c, vars: own, instance: c.instance, depth: c.depth + 1}
}

// Parent returns the enclosing frame, or nil for a root.
func (c *Context) Parent() *Context {
	return c.parent
}

// Depth returns the number of frames above the root.
func (c *Context) Depth() int {
	return c.depth
}

// Instance returns the component instance at the base of the chain.
func (c *Context) Instance() any {
	return c.instance
}

// Lookup resolves name in the most specific frame that binds it.
func (c *Context) Lookup(name string) (any, bool) {
	for f := c; f != nil; f = f.parent {
		if v, ok := f.vars[name]; ok {
			return v, true
		}
	}
	if s, ok := c.instance.(expr.Scope); ok {
		return s.Lookup(name)
	}
	return expr.Member(c.instance, name)
}

// Assign writes through to the frame that binds name, or to the instance.
func (c *Context) Assign(name string, value any) bool {
	for f := c; f != nil; f = f.parent {
		if _, ok := f.vars[name]; ok {
			f.vars[name] = value
			return true
		}
	}
	if s, ok := c.instance.(expr.Scope); ok {
		return s.Assign(name, value)
	}
	return expr.SetMember(c.instance, name, value) == nil
}
