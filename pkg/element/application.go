package element

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/lumen/pkg/binding"
	"github.com/vango-dev/lumen/pkg/directive"
	"github.com/vango-dev/lumen/pkg/dom"
	"github.com/vango-dev/lumen/pkg/expr"
	"github.com/vango-dev/lumen/pkg/meta"
	"github.com/vango-dev/lumen/pkg/reactive"
	"github.com/vango-dev/lumen/pkg/template"
)

const defaultTracerName = "lumen"

var (
	// ErrInstantiation wraps injector failures while creating a component.
	ErrInstantiation = errors.New("lumen: component instantiation failed")

	// ErrUnknownComponent is returned by Mount for undefined selectors.
	ErrUnknownComponent = errors.New("lumen: unknown component")

	// ErrInvalidSelector is returned by Bootstrap for component selectors
	// that are not custom element names.
	ErrInvalidSelector = errors.New("lumen: component selector must be a custom element name")
)

// Observer receives render and teardown notifications. An Observer that
// also implements binding.Observer or directive.Observer receives those
// notifications too.
type Observer interface {
	RenderCompleted(selector string, took time.Duration, err error)
	HostDestroyed(selector string)
}

type nopObserver struct{}

func (nopObserver) RenderCompleted(string, time.Duration, error) {}
func (nopObserver) HostDestroyed(string)                         {}

// Application owns the binding registry, renderer and directive applier
// shared by every component it bootstraps into one document.
type Application struct {
	doc      *dom.Document
	injector meta.Injector
	rt       *reactive.Runtime
	reg      *binding.Registry
	binder   *binding.Binder
	renderer *template.Renderer
	applier  *directive.Applier
	scopes   *Scopes

	logger     *slog.Logger
	observer   Observer
	tracer     trace.Tracer
	tracerName string
	pool       *IDPool
	onError    func(error)

	components map[string]*meta.ComponentDef
	directives map[*meta.ComponentDef][]*meta.DirectiveDef
	pipes      map[string]*meta.PipeDef
	pipeCache  map[string]expr.Pipe
	hosts      map[*dom.Node]*Host
}

// Option configures an Application.
type Option func(*Application)

// WithRuntime sets the reactive runtime. The default runtime is used
// otherwise.
func WithRuntime(rt *reactive.Runtime) Option {
	return func(a *Application) {
		a.rt = rt
	}
}

// WithLogger sets the logger shared by the renderer, binder and applier.
func WithLogger(l *slog.Logger) Option {
	return func(a *Application) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithObserver reports renders and teardown to o.
func WithObserver(o Observer) Option {
	return func(a *Application) {
		if o != nil {
			a.observer = o
		}
	}
}

// WithIDPool draws runtime scope ids from pool instead of the process-wide
// pool.
func WithIDPool(pool *IDPool) Option {
	return func(a *Application) {
		a.pool = pool
	}
}

// WithTracerName sets the OpenTelemetry tracer name for render spans.
func WithTracerName(name string) Option {
	return func(a *Application) {
		a.tracerName = name
	}
}

// WithErrorHandler receives instantiation, render and directive errors.
// They are logged otherwise.
func WithErrorHandler(fn func(error)) Option {
	return func(a *Application) {
		a.onError = fn
	}
}

// NewApplication creates an application for doc whose components and
// directives are created by injector.
func NewApplication(doc *dom.Document, injector meta.Injector, opts ...Option) *Application {
	a := &Application{
		doc:        doc,
		injector:   injector,
		logger:     slog.Default(),
		observer:   nopObserver{},
		tracerName: defaultTracerName,
		components: make(map[string]*meta.ComponentDef),
		directives: make(map[*meta.ComponentDef][]*meta.DirectiveDef),
		pipes:      make(map[string]*meta.PipeDef),
		pipeCache:  make(map[string]expr.Pipe),
		hosts:      make(map[*dom.Node]*Host),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.rt == nil {
		a.rt = reactive.Default()
	}
	a.tracer = otel.Tracer(a.tracerName)
	a.scopes = NewScopes(a.pool)
	a.reg = binding.NewRegistry(a.rt)

	bopts := []binding.Option{binding.WithPipes(a.pipe), binding.WithLogger(a.logger)}
	if o, ok := a.observer.(binding.Observer); ok {
		bopts = append(bopts, binding.WithObserver(o))
	}
	a.binder = binding.NewBinder(a.reg, bopts...)
	a.renderer = template.New(doc, a.binder, template.WithLogger(a.logger))

	dopts := []directive.Option{directive.WithLogger(a.logger)}
	if o, ok := a.observer.(directive.Observer); ok {
		dopts = append(dopts, directive.WithObserver(o))
	}
	a.applier = directive.NewApplier(a.binder, injector, dopts...)
	return a
}

// Document returns the document components are defined in.
func (a *Application) Document() *dom.Document { return a.doc }

// Runtime returns the reactive runtime.
func (a *Application) Runtime() *reactive.Runtime { return a.rt }

// Registry returns the binding registry.
func (a *Application) Registry() *binding.Registry { return a.reg }

// Applier returns the directive applier.
func (a *Application) Applier() *directive.Applier { return a.applier }

// Bootstrap registers every component reachable from defs through their
// imports as a custom element. Directives imported by a component apply
// inside that component's template; pipes are available everywhere.
func (a *Application) Bootstrap(defs ...meta.Definition) error {
	var comps []*meta.ComponentDef
	seen := make(map[meta.Definition]bool)
	var visit func(d meta.Definition)
	visit = func(d meta.Definition) {
		if d == nil || seen[d] {
			return
		}
		seen[d] = true
		switch def := d.(type) {
		case *meta.ComponentDef:
			comps = append(comps, def)
			for _, imp := range def.Imports {
				if dir, ok := imp.(*meta.DirectiveDef); ok {
					a.directives[def] = append(a.directives[def], dir)
				}
				visit(imp)
			}
		case *meta.PipeDef:
			a.pipes[def.Name] = def
		}
	}
	for _, d := range defs {
		visit(d)
	}

	var errs []error
	for _, def := range comps {
		tag := strings.ToLower(strings.TrimSpace(def.Selector))
		if !strings.Contains(tag, "-") || strings.ContainsAny(tag, " .#[]:,>") {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidSelector, def.Selector))
			continue
		}
		if _, ok := a.components[tag]; ok {
			continue
		}
		a.components[tag] = def
		def := def
		if err := a.doc.Define(tag, func(el *dom.Node) dom.CustomElement {
			return newHost(a, def, el)
		}); err != nil {
			delete(a.components, tag)
			errs = append(errs, err)
			continue
		}
		a.logger.Debug("element: defined", "selector", tag, "encapsulation", def.Encapsulation.String())
	}
	return errors.Join(errs...)
}

// Mount creates a component element and appends it to parent. The returned
// error is the host's instantiation error, if any.
func (a *Application) Mount(selector string, parent *dom.Node) (*dom.Node, error) {
	tag := strings.ToLower(selector)
	if _, ok := a.components[tag]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownComponent, selector)
	}
	el := a.doc.CreateElement(tag)
	parent.AppendChild(el)
	if h, ok := a.HostOf(el); ok && h.err != nil {
		return el, h.err
	}
	return el, nil
}

// HostOf returns the host of a component element upgraded by this
// application, connected or not.
func (a *Application) HostOf(el *dom.Node) (*Host, bool) {
	if el == nil {
		return nil, false
	}
	h, ok := el.CustomElement().(*Host)
	if !ok || h.app != a {
		return nil, false
	}
	return h, true
}

// Hosts returns the number of hosts currently connected. Destroyed hosts
// are dropped so detached subtrees can be collected.
func (a *Application) Hosts() int {
	return len(a.hosts)
}

func (a *Application) pipe(name string) (expr.Pipe, bool) {
	if p, ok := a.pipeCache[name]; ok {
		return p, true
	}
	def, ok := a.pipes[name]
	if !ok {
		return nil, false
	}
	v, err := a.injector.CreateInstance(def.Type, nil)
	if err != nil {
		a.report(fmt.Errorf("element: pipe %s: %w", name, err))
		return nil, false
	}
	p, ok := v.(expr.Pipe)
	if !ok {
		a.report(fmt.Errorf("element: pipe %s: %T has no Transform method", name, v))
		return nil, false
	}
	a.pipeCache[name] = p
	return p, true
}

func (a *Application) report(err error) {
	if a.onError != nil {
		a.onError(err)
		return
	}
	a.logger.Error("element: component error", "err", err)
}
