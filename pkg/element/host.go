package element

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/lumen/pkg/binding"
	"github.com/vango-dev/lumen/pkg/directive"
	"github.com/vango-dev/lumen/pkg/dom"
	"github.com/vango-dev/lumen/pkg/meta"
	"github.com/vango-dev/lumen/pkg/reactive"
	"github.com/vango-dev/lumen/pkg/template"
)

// State is the lifecycle position of a Host.
type State int

const (
	Created State = iota
	Attached
	Initialized
	Rendered
	Destroyed
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Attached:
		return "attached"
	case Initialized:
		return "initialized"
	case Rendered:
		return "rendered"
	case Destroyed:
		return "destroyed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Host is the custom element instance backing one component element.
type Host struct {
	app  *Application
	def  *meta.ComponentDef
	el   *dom.Node
	root *dom.Node

	state    State
	instance any
	ctx      *binding.Context
	err      error

	scopeID string
	style   *dom.Node

	render *reactive.Effect
	inputs []*reactive.Effect

	initialized bool
	onInit      bool
	viewInit    bool
	dirty       bool
	renders     int
}

func newHost(app *Application, def *meta.ComponentDef, el *dom.Node) *Host {
	return &Host{app: app, def: def, el: el}
}

// Element returns the host element.
func (h *Host) Element() *dom.Node { return h.el }

// Root returns the node the template renders into: the shadow root in
// ShadowTree mode, the host element otherwise.
func (h *Host) Root() *dom.Node { return h.root }

// Instance returns the component instance, or nil before it exists.
func (h *Host) Instance() any { return h.instance }

// State returns the lifecycle state.
func (h *Host) State() State { return h.state }

// Err returns the instantiation error, if any.
func (h *Host) Err() error { return h.err }

// ScopeID returns the runtime scope id in Emulated mode.
func (h *Host) ScopeID() string { return h.scopeID }

// Renders returns the number of completed render passes.
func (h *Host) Renders() int { return h.renders }

// ConnectedCallback implements dom.CustomElement.
func (h *Host) ConnectedCallback() {
	h.app.rt.Untracked(h.connect)
}

// DisconnectedCallback implements dom.CustomElement.
func (h *Host) DisconnectedCallback() {
	h.app.rt.Untracked(h.Destroy)
}

func (h *Host) connect() {
	if h.state != Created && h.state != Destroyed {
		return
	}
	h.state = Attached
	h.app.hosts[h.el] = h
	if h.instance == nil {
		v, err := h.app.injector.CreateInstance(h.def.Type, h.def.Providers)
		if err != nil {
			h.err = fmt.Errorf("%w: %s: %w", ErrInstantiation, h.def.Selector, err)
			h.app.report(h.err)
			return
		}
		h.instance = v
		h.ctx = binding.Root(v)
		if aware, ok := v.(meta.ElementAware); ok {
			aware.SetNativeElement(h.el)
		}
		for _, name := range h.def.Outputs {
			if em, ok := directive.Output(v, name); ok {
				em.Bind(h.el, name)
			}
		}
	}
	h.wireInputs()
	if !h.onInit {
		h.onInit = true
		if hook, ok := h.instance.(meta.OnInit); ok {
			hook.OnInit()
		}
	}
	h.initialize()
	h.renderComponent()
}

// wireInputs reads each declared input from the input signal a parent
// binding created on the host element, or once from a static attribute.
func (h *Host) wireInputs() {
	reg := h.app.reg
	for _, name := range h.def.Inputs {
		lower := strings.ToLower(name)
		if sig, ok := reg.Input(h.el, lower); ok {
			input := name
			e := reactive.NewEffect(h.app.rt, func() {
				if err := directive.SetInput(h.instance, input, sig.Get()); err != nil {
					h.app.binder.Swallow(binding.KindInput, input, err)
				}
			}, reactive.EffectName("input "+name))
			h.inputs = append(h.inputs, e)
			continue
		}
		for _, attr := range []string{lower, "data-" + directive.Kebab(name)} {
			if v, ok := h.el.GetAttribute(attr); ok {
				if err := directive.SetInput(h.instance, name, v); err != nil {
					h.app.logger.Debug("element: input not assignable", "component", h.def.Selector, "input", name, "err", err)
				}
				break
			}
		}
	}
}

// initialize sets up encapsulation once per host.
func (h *Host) initialize() {
	if h.initialized {
		h.state = Initialized
		return
	}
	switch h.def.Encapsulation {
	case meta.ShadowTree:
		h.root = h.el.AttachShadow()
		h.style = h.styleElement(h.def.Style)
	case meta.None:
		h.root = h.el
		h.style = h.styleElement(h.def.Style)
	default:
		h.root = h.el
		compiled := h.def.ScopeID
		if compiled == "" {
			compiled = scopeFromSelector(h.def.Selector)
		}
		h.scopeID = h.app.scopes.Runtime(compiled)
		h.el.SetAttribute(HostAttr(h.scopeID), "")
		if h.def.Style != "" {
			h.app.scopes.InjectStyle(h.app.doc, h.scopeID, ScopeStyle(h.def.Style, compiled, h.scopeID))
		}
	}
	h.initialized = true
	h.state = Initialized
}

func (h *Host) styleElement(css string) *dom.Node {
	if css == "" {
		return nil
	}
	el := h.app.doc.CreateElement("style")
	el.SetTextContent(css)
	return el
}

func (h *Host) options() template.Options {
	o := template.Options{OnRegion: h.applyDirectives}
	if h.scopeID == "" {
		return o
	}
	o.ContentAttr = ContentAttr(h.scopeID)
	compiled := h.def.ScopeID
	if compiled != "" && compiled != h.scopeID {
		o.Rename = map[string]string{
			ContentAttr(compiled): ContentAttr(h.scopeID),
			HostAttr(compiled):    HostAttr(h.scopeID),
		}
	}
	return o
}

// renderComponent replaces the render effect. Everything the template
// reads while rendering outside nested bindings subscribes it.
func (h *Host) renderComponent() {
	h.render.Destroy()
	h.render = reactive.NewEffect(h.app.rt, h.renderOnce,
		reactive.ManualCleanup(),
		reactive.EffectName("render "+h.def.Selector))
}

// Rerender renders the template again outside the effect machinery.
func (h *Host) Rerender() {
	if h.state != Initialized && h.state != Rendered {
		return
	}
	h.app.rt.Untracked(h.renderOnce)
}

// MarkDirty schedules one Rerender on a microtask. Calls made before it
// runs are coalesced.
func (h *Host) MarkDirty() {
	if h.dirty || h.state == Destroyed {
		return
	}
	h.dirty = true
	h.app.rt.QueueMicrotask(func() {
		if !h.dirty {
			return
		}
		h.dirty = false
		h.Rerender()
	})
}

func (h *Host) renderOnce() {
	if h.state == Destroyed {
		return
	}
	_, span := h.app.tracer.Start(context.Background(), "lumen.render",
		trace.WithAttributes(
			attribute.String("lumen.selector", h.def.Selector),
			attribute.String("lumen.encapsulation", h.def.Encapsulation.String()),
			attribute.Int("lumen.render", h.renders+1),
		))
	defer span.End()

	start := time.Now()
	err := h.app.renderer.Render(h.root, h.def.Template, h.ctx, h.options())
	if err == nil && h.style != nil {
		if ierr := h.root.InsertBefore(h.style, h.root.FirstChild()); ierr != nil {
			err = ierr
		}
	}
	h.app.observer.RenderCompleted(h.def.Selector, time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.app.report(fmt.Errorf("element: render %s: %w", h.def.Selector, err))
		return
	}
	span.SetStatus(codes.Ok, "")

	h.renders++
	h.state = Rendered
	if !h.viewInit {
		h.viewInit = true
		if hook, ok := h.instance.(meta.AfterViewInit); ok {
			h.app.rt.QueueMicrotask(hook.AfterViewInit)
		}
	}
	h.app.rt.QueueMicrotask(h.applyDirectives)
}

func (h *Host) applyDirectives() {
	defs := h.app.directives[h.def]
	if len(defs) == 0 || h.state != Rendered {
		return
	}
	attr := ""
	if h.scopeID != "" {
		attr = ContentAttr(h.scopeID)
	}
	if err := h.app.applier.Apply(h.root, attr, h.ctx, defs); err != nil {
		h.app.report(fmt.Errorf("element: directives of %s: %w", h.def.Selector, err))
	}
}

// Destroy tears the component down: OnDestroy, the render and input
// effects, every binding and directive instance below the root, and the
// rendered content. A later connection renders again.
func (h *Host) Destroy() {
	if h.state == Destroyed || h.state == Created {
		return
	}
	if hook, ok := h.instance.(meta.OnDestroy); ok {
		hook.OnDestroy()
	}
	h.render.Destroy()
	h.render = nil
	for _, e := range h.inputs {
		e.Destroy()
	}
	h.inputs = nil
	if h.root != nil {
		h.app.reg.DestroyDescendants(h.root)
		h.root.Clear()
	}
	h.dirty = false
	h.state = Destroyed
	delete(h.app.hosts, h.el)
	h.app.observer.HostDestroyed(h.def.Selector)
}

// scopeFromSelector derives a scope id for definitions compiled without
// one.
func scopeFromSelector(sel string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' {
			return r
		}
		return -1
	}, strings.ToLower(sel))
}
