package dev

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vango-dev/lumen/internal/errors"
	"github.com/vango-dev/lumen/internal/manifest"
	"github.com/vango-dev/lumen/pkg/dom"
	"github.com/vango-dev/lumen/pkg/element"
	"github.com/vango-dev/lumen/pkg/expr"
	"github.com/vango-dev/lumen/pkg/reactive"
)

// ErrNotLoaded is returned when the session has no mounted root.
var ErrNotLoaded = stderrors.New("lumen: preview has no mounted root")

// SessionOptions configures a Session.
type SessionOptions struct {
	// Manifest is the manifest file to load.
	Manifest string

	// Root overrides the manifest's root selector.
	Root string

	// Logger receives session logs. Default: slog.Default().
	Logger *slog.Logger

	// Observer receives runtime, binding, directive and render
	// notifications, typically a *metrics.Collector.
	Observer element.Observer

	// TracerName names the tracer for render spans.
	TracerName string
}

// Session is one live preview document.
type Session struct {
	opts   SessionOptions
	rt     *reactive.Runtime
	loop   *reactive.Loop
	logger *slog.Logger

	// Owned by the loop goroutine.
	doc  *dom.Document
	app  *element.Application
	root *dom.Node

	mu      sync.RWMutex
	html    string
	version int
	subs    map[int]func(html string, version int)
	nextSub int
}

// NewSession creates a session. Nothing is loaded until Start.
func NewSession(opts SessionOptions) *Session {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	var rtOpts []reactive.Option
	if o, ok := opts.Observer.(reactive.Observer); ok {
		rtOpts = append(rtOpts, reactive.WithObserver(o))
	}
	rtOpts = append(rtOpts, reactive.WithLogger(opts.Logger))
	rt := reactive.New(rtOpts...)
	s := &Session{
		opts:   opts,
		rt:     rt,
		loop:   reactive.NewLoop(rt, 64),
		logger: opts.Logger,
		subs:   make(map[int]func(string, int)),
	}
	s.loop.OnTurn(s.snapshot)
	return s
}

// Start runs the loop until ctx is done and performs the first load. The
// loop keeps running when the first load fails so a later Reload can
// recover.
func (s *Session) Start(ctx context.Context) error {
	go func() {
		if err := s.loop.Run(ctx); err != nil && !stderrors.Is(err, context.Canceled) {
			s.logger.Error("dev: loop stopped", "err", err)
		}
	}()
	return s.Reload(ctx)
}

// Reload loads the manifest again and replaces the mounted root.
func (s *Session) Reload(ctx context.Context) error {
	return s.loop.Do(ctx, s.load)
}

func (s *Session) load() error {
	m, err := manifest.Load(s.opts.Manifest)
	if err != nil {
		return err
	}
	bundle, err := m.Build(s.rt)
	if err != nil {
		return errors.FromError(err, "L002").WithFile(s.opts.Manifest)
	}

	doc := dom.NewDocument()
	appOpts := []element.Option{
		element.WithRuntime(s.rt),
		element.WithIDPool(element.NewIDPool()),
		element.WithLogger(s.logger),
		element.WithErrorHandler(func(err error) {
			s.logger.Error("dev: component error", "err", err)
		}),
	}
	if s.opts.Observer != nil {
		appOpts = append(appOpts, element.WithObserver(s.opts.Observer))
	}
	if s.opts.TracerName != "" {
		appOpts = append(appOpts, element.WithTracerName(s.opts.TracerName))
	}
	app := element.NewApplication(doc, bundle.Injector, appOpts...)
	if err := app.Bootstrap(bundle.Definitions()...); err != nil {
		return errors.New("L020").WithFile(s.opts.Manifest).Wrap(err)
	}

	selector := s.opts.Root
	if selector == "" {
		selector = bundle.Root
	}
	root, err := app.Mount(selector, doc.Body())
	if err != nil {
		if root != nil {
			root.Remove()
		}
		return errors.New("L021").WithFile(s.opts.Manifest).Wrap(err)
	}
	if s.root != nil {
		s.root.Remove()
	}
	s.doc, s.app, s.root = doc, app, root
	s.logger.Info("dev: loaded", "manifest", s.opts.Manifest, "root", selector, "components", len(bundle.Components))
	return nil
}

// snapshot serializes the document after a loop turn and notifies
// subscribers when it changed.
func (s *Session) snapshot() {
	if s.doc == nil {
		return
	}
	html := s.doc.HTML()

	s.mu.Lock()
	if html == s.html {
		s.mu.Unlock()
		return
	}
	s.html = html
	s.version++
	version := s.version
	subs := make([]func(string, int), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(html, version)
	}
}

// HTML returns the latest serialized document and its version.
func (s *Session) HTML() (string, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.html, s.version
}

// Subscribe calls fn with every new document. It returns an unsubscribe
// function.
func (s *Session) Subscribe(fn func(html string, version int)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Session) rootScope() (expr.Scope, error) {
	if s.app == nil {
		return nil, ErrNotLoaded
	}
	h, ok := s.app.HostOf(s.root)
	if !ok || h.Instance() == nil {
		return nil, ErrNotLoaded
	}
	sc, ok := h.Instance().(expr.Scope)
	if !ok {
		return nil, fmt.Errorf("dev: root instance %T has no assignable state", h.Instance())
	}
	return sc, nil
}

// Set assigns name on the root component's state.
func (s *Session) Set(ctx context.Context, name string, value any) error {
	return s.loop.Do(ctx, func() error {
		sc, err := s.rootScope()
		if err != nil {
			return err
		}
		if !sc.Assign(name, value) {
			return fmt.Errorf("dev: %w: %s", expr.ErrNotAssignable, name)
		}
		return nil
	})
}

// Dispatch fires an event on every element matching selector.
func (s *Session) Dispatch(ctx context.Context, selector, event string, detail any) error {
	return s.loop.Do(ctx, func() error {
		if s.doc == nil {
			return ErrNotLoaded
		}
		targets, err := s.doc.QuerySelectorAll(selector)
		if err != nil {
			return err
		}
		if len(targets) == 0 {
			return fmt.Errorf("dev: no element matches %q", selector)
		}
		for _, el := range targets {
			if detail != nil {
				el.DispatchEvent(dom.NewCustomEvent(event, detail))
			} else {
				el.DispatchEvent(dom.NewEvent(event))
			}
		}
		return nil
	})
}

// State returns the root component's field values.
func (s *Session) State(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := s.loop.Do(ctx, func() error {
		sc, err := s.rootScope()
		if err != nil {
			return err
		}
		snap, ok := sc.(interface{ Snapshot() map[string]any })
		if !ok {
			return fmt.Errorf("dev: root state cannot be listed")
		}
		out = snap.Snapshot()
		return nil
	})
	return out, err
}
