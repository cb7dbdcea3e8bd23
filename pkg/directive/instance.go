package directive

import (
	"github.com/vango-dev/lumen/pkg/binding"
	"github.com/vango-dev/lumen/pkg/dom"
	"github.com/vango-dev/lumen/pkg/meta"
)

// Instance is a directive attached to one element.
type Instance struct {
	def     *meta.DirectiveDef
	value   any
	el      *dom.Node
	root    *dom.Node
	applier *Applier

	disposers []binding.Disposer
	destroyed bool
}

// Value returns the directive object created by the injector.
func (i *Instance) Value() any { return i.value }

// Element returns the element the directive is attached to.
func (i *Instance) Element() *dom.Node { return i.el }

// Def returns the directive definition.
func (i *Instance) Def() *meta.DirectiveDef { return i.def }

// Destroyed reports whether Destroy has been called.
func (i *Instance) Destroyed() bool { return i.destroyed }

// Dispose implements binding.Disposer.
func (i *Instance) Dispose() { i.Destroy() }

// Destroy tears down the instance's bindings and calls OnDestroy. It is
// idempotent.
func (i *Instance) Destroy() {
	if i.destroyed {
		return
	}
	i.destroyed = true
	for _, d := range i.disposers {
		d.Dispose()
	}
	i.disposers = nil
	if hook, ok := i.value.(meta.OnDestroy); ok {
		hook.OnDestroy()
	}
	i.applier.reg.RemoveDisposer(i.el, i)
	i.applier.forget(i)
	i.applier.observer.DirectiveDestroyed()
}
