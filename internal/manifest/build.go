package manifest

import (
	"fmt"

	"github.com/vango-dev/lumen/internal/errors"
	"github.com/vango-dev/lumen/pkg/expr"
	"github.com/vango-dev/lumen/pkg/inject"
	"github.com/vango-dev/lumen/pkg/meta"
	"github.com/vango-dev/lumen/pkg/reactive"
)

// Bundle is a manifest compiled into definitions and the injector that
// creates their instances.
type Bundle struct {
	// Root is the selector of the component to mount.
	Root string

	// Components holds every component definition in manifest order.
	Components []*meta.ComponentDef

	// Injector creates component, directive, pipe and service instances.
	Injector *inject.Registry

	bySelector map[string]*meta.ComponentDef
}

// Definitions returns the components as bootstrap definitions.
func (b *Bundle) Definitions() []meta.Definition {
	defs := make([]meta.Definition, len(b.Components))
	for i, c := range b.Components {
		defs[i] = c
	}
	return defs
}

// Component returns the definition for selector.
func (b *Bundle) Component(selector string) (*meta.ComponentDef, bool) {
	c, ok := b.bySelector[selector]
	return c, ok
}

// Token returns the injector token for a manifest entry.
func Token(kind, name string) meta.Token {
	return kind + ":" + name
}

// Build compiles m. State signals are created on rt.
func (m *Manifest) Build(rt *reactive.Runtime) (*Bundle, error) {
	b := &Bundle{
		Root:       m.Root,
		Injector:   inject.New(),
		bySelector: make(map[string]*meta.ComponentDef),
	}
	if b.Root == "" && len(m.Components) > 0 {
		b.Root = m.Components[0].Selector
	}
	refs := make(map[string]meta.Definition)

	for _, s := range m.Services {
		s := s
		if err := checkMethods(s.Name, s.Methods); err != nil {
			return nil, err
		}
		b.Injector.Provide(Token("service", s.Name), func(...any) (any, error) {
			return newState(rt, s.Name, s.State, s.Methods, nil, nil, nil)
		})
	}

	for _, p := range m.Pipes {
		prog, err := expr.Compile(p.Expr)
		if err != nil {
			return nil, errors.New("L002").WithHint(fmt.Sprintf("pipe %q", p.Name)).Wrap(err)
		}
		def := &meta.PipeDef{Name: p.Name, Type: Token("pipe", p.Name)}
		b.Injector.ProvideValue(def.Type, exprPipe{prog: prog})
		refs[p.Name] = def
	}

	for _, d := range m.Directives {
		d := d
		if err := checkMethods(d.Name, d.Methods); err != nil {
			return nil, err
		}
		def := &meta.DirectiveDef{
			Type:     Token("directive", d.Name),
			Selector: d.Selector,
			Inputs:   d.Inputs,
			Outputs:  d.Outputs,
			Host:     d.Host,
		}
		b.Injector.Provide(def.Type, func(deps ...any) (any, error) {
			return newState(rt, d.Name, d.State, d.Methods, d.Inject, deps, d.Outputs)
		}, serviceTokens(d.Inject)...)
		refs[d.Name] = def
	}

	for _, c := range m.Components {
		c := c
		if err := checkMethods(c.Selector, c.Methods); err != nil {
			return nil, err
		}
		enc, err := meta.ParseEncapsulation(c.Encapsulation)
		if err != nil {
			return nil, errors.New("L002").WithHint(fmt.Sprintf("component %q", c.Selector)).Wrap(err)
		}
		def := &meta.ComponentDef{
			Type:          Token("component", c.Selector),
			Selector:      c.Selector,
			Template:      c.Template,
			Style:         c.Style,
			Encapsulation: enc,
			ScopeID:       c.ScopeID,
			Inputs:        c.Inputs,
			Outputs:       c.Outputs,
			Providers:     serviceTokens(c.Providers),
		}
		b.Injector.Provide(def.Type, func(deps ...any) (any, error) {
			return newState(rt, c.Selector, c.State, c.Methods, c.Inject, deps, c.Outputs)
		}, serviceTokens(c.Inject)...)
		refs[c.Selector] = def
		b.bySelector[c.Selector] = def
		b.Components = append(b.Components, def)
	}

	for i, c := range m.Components {
		def := b.Components[i]
		for _, name := range c.Imports {
			ref, ok := refs[name]
			if !ok {
				return nil, errors.New("L003").WithHint(fmt.Sprintf("%s imports %q", c.Selector, name))
			}
			def.Imports = append(def.Imports, ref)
		}
	}
	return b, nil
}

func serviceTokens(names []string) []meta.Token {
	out := make([]meta.Token, len(names))
	for i, n := range names {
		out[i] = Token("service", n)
	}
	return out
}

func checkMethods(owner string, methods map[string]string) error {
	for name, src := range methods {
		if _, err := expr.Compile(src); err != nil {
			return errors.New("L002").WithHint(fmt.Sprintf("%s method %q", owner, name)).Wrap(err)
		}
	}
	return nil
}

func newState(rt *reactive.Runtime, name string, fields map[string]any, methods map[string]string, inject []string, deps []any, outputs []string) (*State, error) {
	s := NewState(rt, name, copyFields(fields))
	for i, svc := range inject {
		if i < len(deps) {
			s.Provide(svc, deps[i])
		}
	}
	for m, src := range methods {
		if err := s.Define(m, src); err != nil {
			return nil, err
		}
	}
	for _, o := range outputs {
		s.Output(o)
	}
	return s, nil
}

// copyFields deep-copies decoded values so instances do not share maps
// or slices.
func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyFields(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	}
	return v
}

type exprPipe struct {
	prog *expr.Program
}

// Transform implements expr.Pipe.
func (p exprPipe) Transform(v any, args ...any) (any, error) {
	if args == nil {
		args = []any{}
	}
	return p.prog.Eval(expr.Env{Scope: expr.MapScope{"$value": v, "$args": args}})
}
