package directive

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vango-dev/lumen/pkg/binding"
	"github.com/vango-dev/lumen/pkg/dom"
	"github.com/vango-dev/lumen/pkg/expr"
	"github.com/vango-dev/lumen/pkg/meta"
	"github.com/vango-dev/lumen/pkg/reactive"
)

// Observer is told when directive instances are created and destroyed.
type Observer interface {
	DirectiveCreated()
	DirectiveDestroyed()
}

type nopObserver struct{}

func (nopObserver) DirectiveCreated()   {}
func (nopObserver) DirectiveDestroyed() {}

// Applier matches directive definitions against rendered elements.
type Applier struct {
	binder   *binding.Binder
	reg      *binding.Registry
	injector meta.Injector
	logger   *slog.Logger
	observer Observer

	instances map[*dom.Node][]*Instance
	selectors map[string]*dom.Selector
}

// Option configures an Applier.
type Option func(*Applier)

// WithLogger sets the logger for instantiation failures.
func WithLogger(l *slog.Logger) Option {
	return func(a *Applier) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithObserver reports instance lifecycle events to o.
func WithObserver(o Observer) Option {
	return func(a *Applier) {
		if o != nil {
			a.observer = o
		}
	}
}

// NewApplier creates an applier whose instances come from injector.
func NewApplier(binder *binding.Binder, injector meta.Injector, opts ...Option) *Applier {
	a := &Applier{
		binder:    binder,
		reg:       binder.Registry(),
		injector:  injector,
		logger:    slog.Default(),
		observer:  nopObserver{},
		instances: make(map[*dom.Node][]*Instance),
		selectors: make(map[string]*dom.Selector),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Apply binds defs to the matching elements below root. contentAttr is the
// scope attribute of the owning component, or empty when its content is
// unscoped. Expressions on matched elements resolve against base.
// Instantiation failures are joined into the returned error; other matches
// are still applied.
func (a *Applier) Apply(root *dom.Node, contentAttr string, base *binding.Context, defs []*meta.DirectiveDef) error {
	a.prune(root)

	var errs []error
	for _, def := range defs {
		sel, err := a.selector(def.Selector, contentAttr)
		if err != nil {
			errs = append(errs, fmt.Errorf("directive %s: %w", meta.TokenName(def.Type), err))
			continue
		}
		for _, el := range root.QueryAll(sel) {
			if a.has(el, def) {
				continue
			}
			if _, err := a.attach(root, el, base, def); err != nil {
				a.logger.Error("directive: instantiation failed", "directive", meta.TokenName(def.Type), "err", err)
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Instances returns the live instances attached to el.
func (a *Applier) Instances(el *dom.Node) []*Instance {
	return append([]*Instance(nil), a.instances[el]...)
}

// Count returns the number of live instances.
func (a *Applier) Count() int {
	n := 0
	for _, list := range a.instances {
		n += len(list)
	}
	return n
}

// prune destroys instances applied under root whose element is no longer
// inside it.
func (a *Applier) prune(root *dom.Node) {
	for el, list := range a.instances {
		if root.Contains(el) {
			continue
		}
		for _, inst := range append([]*Instance(nil), list...) {
			if inst.root == root {
				inst.Destroy()
			}
		}
	}
}

func (a *Applier) selector(sel, contentAttr string) (*dom.Selector, error) {
	key := sel + "\x00" + contentAttr
	if s, ok := a.selectors[key]; ok {
		return s, nil
	}
	s, err := ScopedSelector(sel, contentAttr)
	if err != nil {
		return nil, err
	}
	a.selectors[key] = s
	return s, nil
}

func (a *Applier) has(el *dom.Node, def *meta.DirectiveDef) bool {
	for _, inst := range a.instances[el] {
		if inst.def.Type == def.Type {
			return true
		}
	}
	return false
}

func (a *Applier) attach(root, el *dom.Node, base *binding.Context, def *meta.DirectiveDef) (*Instance, error) {
	v, err := a.injector.CreateInstance(def.Type, def.Providers)
	if err != nil {
		return nil, err
	}
	inst := &Instance{def: def, value: v, el: el, root: root, applier: a}

	if aware, ok := v.(meta.ElementAware); ok {
		aware.SetNativeElement(el)
	}
	a.wireInputs(inst, a.reg.Resolve(el, base))
	for _, name := range def.Outputs {
		if em, ok := Output(v, name); ok {
			em.Bind(el, name)
		}
	}
	self := binding.Root(v)
	for _, key := range def.HostKeys() {
		inst.disposers = append(inst.disposers, a.binder.Bind(el, self, key, def.Host[key]))
	}

	a.instances[el] = append(a.instances[el], inst)
	a.reg.AddDisposer(el, inst)
	a.observer.DirectiveCreated()

	if hook, ok := v.(meta.OnInit); ok {
		hook.OnInit()
	}
	return inst, nil
}

// wireInputs sets each declared input from a bound [name] attribute
// (reactively), or once from a plain name or data-kebab-name attribute.
func (a *Applier) wireInputs(inst *Instance, ctx *binding.Context) {
	el := inst.el
	for _, name := range inst.def.Inputs {
		lower := strings.ToLower(name)
		if src, ok := el.GetAttribute("[" + lower + "]"); ok {
			input := name
			e := reactive.NewEffect(a.binder.Runtime(), func() {
				v, err := a.binder.Eval(ctx, src, nil)
				if err != nil {
					a.binder.Swallow(binding.KindInput, src, err)
					return
				}
				if err := SetInput(inst.value, input, v); err != nil {
					a.binder.Swallow(binding.KindInput, src, err)
				}
			}, reactive.EffectName("directive input "+name))
			inst.disposers = append(inst.disposers, binding.DisposerFunc(e.Destroy))
			continue
		}
		for _, attr := range []string{lower, "data-" + Kebab(name)} {
			if v, ok := el.GetAttribute(attr); ok {
				if err := SetInput(inst.value, name, v); err != nil {
					a.logger.Debug("directive: input not assignable", "input", name, "err", err)
				}
				break
			}
		}
	}
}

// SetInput writes an input on target. A field holding a reactive.Writable
// is set through it; anything else is assigned reflectively.
func SetInput(target any, name string, v any) error {
	if cur, ok := expr.Member(target, name); ok {
		if w, ok := cur.(reactive.Writable); ok {
			return w.SetAny(v)
		}
	}
	return expr.SetMember(target, name, v)
}

// Output returns the *meta.EventEmitter held in v's output field name,
// installing a new one when the field is nil.
func Output(v any, name string) (*meta.EventEmitter, bool) {
	cur, ok := expr.Member(v, name)
	if !ok {
		return nil, false
	}
	em, ok := cur.(*meta.EventEmitter)
	if ok && em != nil {
		return em, true
	}
	em = meta.NewEventEmitter()
	if expr.SetMember(v, name, em) != nil {
		return nil, false
	}
	return em, true
}

func (a *Applier) forget(inst *Instance) {
	list := a.instances[inst.el]
	for i, existing := range list {
		if existing == inst {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(a.instances, inst.el)
		return
	}
	a.instances[inst.el] = list
}
