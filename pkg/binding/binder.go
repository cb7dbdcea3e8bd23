package binding

import (
	"encoding/json"
	"log/slog"
	"reflect"
	"strings"

	"github.com/vango-dev/lumen/pkg/dom"
	"github.com/vango-dev/lumen/pkg/expr"
	"github.com/vango-dev/lumen/pkg/reactive"
)

// Binding kinds reported to an Observer.
const (
	KindAttr     = "attr"
	KindStyle    = "style"
	KindClass    = "class"
	KindProperty = "property"
	KindInput    = "input"
	KindEvent    = "event"
	KindText     = "text"
)

// Observer is told about swallowed expression failures.
type Observer interface {
	ExpressionFailed(kind string)
}

type nopObserver struct{}

func (nopObserver) ExpressionFailed(string) {}

// propertyAliases maps lower-cased attribute names back to DOM property
// names.
var propertyAliases = map[string]string{
	"innerhtml":       "innerHTML",
	"textcontent":     "textContent",
	"innertext":       "innerText",
	"readonly":        "readOnly",
	"tabindex":        "tabIndex",
	"classname":       "className",
	"htmlfor":         "htmlFor",
	"colspan":         "colSpan",
	"rowspan":         "rowSpan",
	"maxlength":       "maxLength",
	"contenteditable": "contentEditable",
}

// PropertyName returns the DOM property name for a lower-cased binding
// name.
func PropertyName(name string) string {
	if alias, ok := propertyAliases[strings.ToLower(name)]; ok {
		return alias
	}
	return name
}

// Binder wires binding attributes to effects.
type Binder struct {
	rt       *reactive.Runtime
	reg      *Registry
	pipes    expr.PipeResolver
	logger   *slog.Logger
	observer Observer
}

// Option configures a Binder.
type Option func(*Binder)

// WithPipes resolves pipe names before the built-in pipes.
func WithPipes(r expr.PipeResolver) Option {
	return func(b *Binder) {
		b.pipes = r
	}
}

// WithLogger sets the logger swallowed failures are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(b *Binder) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithObserver counts swallowed failures.
func WithObserver(o Observer) Option {
	return func(b *Binder) {
		if o != nil {
			b.observer = o
		}
	}
}

// NewBinder creates a binder registering its effects in reg.
func NewBinder(reg *Registry, opts ...Option) *Binder {
	b := &Binder{
		rt:       reg.Runtime(),
		reg:      reg,
		logger:   slog.Default(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Registry returns the registry effects are recorded in.
func (b *Binder) Registry() *Registry {
	return b.reg
}

// Runtime returns the reactive runtime effects are created on.
func (b *Binder) Runtime() *reactive.Runtime {
	return b.rt
}

// Eval evaluates src against ctx with optional extra locals.
func (b *Binder) Eval(ctx *Context, src string, locals expr.MapScope) (any, error) {
	prog, err := expr.Compile(src)
	if err != nil {
		return nil, err
	}
	var scope expr.Scope = ctx
	if len(locals) > 0 {
		scope = expr.Layer(ctx, locals)
	}
	return prog.Eval(expr.Env{Scope: scope, Pipes: b.pipes})
}

// Swallow records a failed binding evaluation.
func (b *Binder) Swallow(kind, src string, err error) {
	b.logger.Debug("binding: expression failed", "kind", kind, "expr", src, "err", err)
	b.observer.ExpressionFailed(kind)
}

// Effect creates an effect registered on n for teardown.
func (b *Binder) Effect(n *dom.Node, name string, fn func()) *reactive.Effect {
	e := b.newEffect(name, fn)
	b.reg.AddEffect(n, e)
	return e
}

// BindTree binds every unbound element and text node in root, in document
// order, resolving each against the nearest attached context or base.
func (b *Binder) BindTree(root *dom.Node, base *Context) {
	root.Walk(func(n *dom.Node) bool {
		switch n.Type {
		case dom.ElementNode:
			if !b.reg.Bound(n) {
				b.BindElement(n, b.reg.Resolve(n, base))
			}
		case dom.TextNode:
			if !b.reg.Bound(n) && strings.Contains(n.Data, "{{") {
				b.BindText(n, b.reg.Resolve(n, base))
			}
		}
		return true
	})
}

// BindElement wires every binding attribute of el against ctx and
// registers the resulting effects and listeners on el.
func (b *Binder) BindElement(el *dom.Node, ctx *Context) {
	b.reg.MarkBound(el)
	for _, attr := range el.Attributes() {
		e, d := b.bind(el, ctx, attr.Name, attr.Value)
		if e != nil {
			b.reg.AddEffect(el, e)
		}
		if d != nil {
			b.reg.AddDisposer(el, d)
		}
	}
}

// Bind wires a single binding key such as "[class.on]" or "(click)" on el
// against ctx without registering it. The returned Disposer tears it down.
// Keys that are not bindings yield a no-op Disposer.
func (b *Binder) Bind(el *dom.Node, ctx *Context, key, src string) Disposer {
	e, d := b.bind(el, ctx, key, src)
	return DisposerFunc(func() {
		e.Destroy()
		if d != nil {
			d.Dispose()
		}
	})
}

func (b *Binder) bind(el *dom.Node, ctx *Context, name, src string) (*reactive.Effect, Disposer) {
	switch {
	case strings.HasPrefix(name, "[attr.") && strings.HasSuffix(name, "]"):
		return b.bindAttr(el, ctx, name[len("[attr."):len(name)-1], src), nil
	case strings.HasPrefix(name, "[style.") && strings.HasSuffix(name, "]"):
		return b.bindStyle(el, ctx, name[len("[style."):len(name)-1], src), nil
	case strings.HasPrefix(name, "[class.") && strings.HasSuffix(name, "]"):
		return b.bindClass(el, ctx, name[len("[class."):len(name)-1], src), nil
	case strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]"):
		prop := name[1 : len(name)-1]
		if el.IsCustomTag() {
			return b.bindInput(el, ctx, prop, src), nil
		}
		return b.bindProperty(el, ctx, prop, src), nil
	case strings.HasPrefix(name, "(") && strings.HasSuffix(name, ")"):
		return nil, b.bindEvent(el, ctx, name[1:len(name)-1], src)
	}
	return nil, nil
}

func (b *Binder) newEffect(name string, fn func()) *reactive.Effect {
	return reactive.NewEffect(b.rt, fn, reactive.EffectName(name))
}

func (b *Binder) bindAttr(el *dom.Node, ctx *Context, name, src string) *reactive.Effect {
	return b.newEffect("attr."+name, func() {
		v, err := b.Eval(ctx, src, nil)
		if err != nil {
			b.Swallow(KindAttr, src, err)
			return
		}
		value, ok := AttrValue(v)
		if !ok {
			el.RemoveAttribute(name)
			return
		}
		el.SetAttribute(name, value)
	})
}

// AttrValue converts a binding result to an attribute value. The second
// result is false when the attribute should be removed.
func AttrValue(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case bool:
		return "", x
	case string:
		return x, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return "", false
	}
	switch reflect.Indirect(rv).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		data, err := json.Marshal(v)
		if err != nil {
			return expr.ToString(v), true
		}
		return string(data), true
	}
	return expr.ToString(v), true
}

func (b *Binder) bindStyle(el *dom.Node, ctx *Context, name, src string) *reactive.Effect {
	prop, unit := name, ""
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		prop, unit = name[:i], name[i+1:]
	}
	return b.newEffect("style."+name, func() {
		v, err := b.Eval(ctx, src, nil)
		if err != nil {
			b.Swallow(KindStyle, src, err)
			return
		}
		if on, ok := v.(bool); v == nil || (ok && !on) {
			el.Style().RemoveProperty(prop)
			return
		}
		el.Style().SetProperty(prop, expr.ToString(v)+unit)
	})
}

func (b *Binder) bindClass(el *dom.Node, ctx *Context, name, src string) *reactive.Effect {
	return b.newEffect("class."+name, func() {
		v, err := b.Eval(ctx, src, nil)
		if err != nil {
			b.Swallow(KindClass, src, err)
			return
		}
		el.ClassList().Toggle(name, expr.Truthy(v))
	})
}

func (b *Binder) bindProperty(el *dom.Node, ctx *Context, name, src string) *reactive.Effect {
	prop := PropertyName(name)
	return b.newEffect("prop."+prop, func() {
		v, err := b.Eval(ctx, src, nil)
		if err != nil {
			b.Swallow(KindProperty, src, err)
			return
		}
		if err := el.SetProperty(prop, v); err != nil {
			b.Swallow(KindProperty, src, err)
		}
	})
}

func (b *Binder) bindInput(el *dom.Node, ctx *Context, name, src string) *reactive.Effect {
	return b.newEffect("input."+name, func() {
		v, err := b.Eval(ctx, src, nil)
		if err != nil {
			b.Swallow(KindInput, src, err)
			return
		}
		b.reg.SetInput(el, name, v)
	})
}

func (b *Binder) bindEvent(el *dom.Node, ctx *Context, name, src string) Disposer {
	remove := el.AddEventListener(name, func(ev *dom.Event) {
		var arg any = ev
		if ev.Custom {
			arg = ev.Detail
		}
		b.rt.Untracked(func() {
			if _, err := b.Eval(ctx, src, expr.MapScope{"$event": arg}); err != nil {
				b.Swallow(KindEvent, src, err)
			}
		})
	})
	return DisposerFunc(remove)
}
