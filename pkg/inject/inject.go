// Package inject is a small reference injector for component, directive
// and pipe instances.
//
//	reg := inject.New()
//	reg.ProvideValue("api", client)
//	reg.Provide(meta.TypeToken[*TodoList](), func(deps ...any) (any, error) {
//	    return &TodoList{api: deps[0].(*Client)}, nil
//	}, "api")
package inject

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vango-dev/lumen/pkg/meta"
)

var (
	// ErrNoProvider is returned when a token has no factory.
	ErrNoProvider = errors.New("lumen: no provider")

	// ErrCycle is returned when a token depends on itself.
	ErrCycle = errors.New("lumen: dependency cycle")
)

// Factory builds an instance from its resolved dependencies, in the order
// they were recorded with Provide.
type Factory func(deps ...any) (any, error)

type provider struct {
	factory Factory
	deps    []meta.Token
}

// Registry resolves tokens to instances. The requested token is always
// built fresh. Its dependencies are shared singletons, except those listed
// as local providers, which are built once per request.
type Registry struct {
	providers map[meta.Token]provider
	shared    map[meta.Token]any
}

var _ meta.Injector = (*Registry)(nil)

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		providers: make(map[meta.Token]provider),
		shared:    make(map[meta.Token]any),
	}
}

// Provide registers f for t. deps are resolved and passed to f.
func (r *Registry) Provide(t meta.Token, f Factory, deps ...meta.Token) {
	r.providers[t] = provider{factory: f, deps: deps}
	delete(r.shared, t)
}

// ProvideValue registers a ready-made shared value for t.
func (r *Registry) ProvideValue(t meta.Token, v any) {
	r.providers[t] = provider{factory: func(...any) (any, error) { return v, nil }}
	r.shared[t] = v
}

// Has reports whether t has a provider.
func (r *Registry) Has(t meta.Token) bool {
	_, ok := r.providers[t]
	return ok
}

// Get returns the shared instance for t, building it on first use.
func (r *Registry) Get(t meta.Token) (any, error) {
	res := &resolution{reg: r, local: map[meta.Token]any{}}
	return res.shared(t)
}

// CreateInstance builds a new instance of t. Dependencies named in
// providers are built for this instance only.
func (r *Registry) CreateInstance(t meta.Token, providers []meta.Token) (any, error) {
	res := &resolution{reg: r, local: make(map[meta.Token]any)}
	res.localSet = make(map[meta.Token]bool, len(providers))
	for _, p := range providers {
		res.localSet[p] = true
	}
	return res.build(t)
}

type resolution struct {
	reg      *Registry
	localSet map[meta.Token]bool
	local    map[meta.Token]any
	stack    []meta.Token
}

func (res *resolution) resolve(t meta.Token) (any, error) {
	if res.localSet[t] {
		if v, ok := res.local[t]; ok {
			return v, nil
		}
		v, err := res.build(t)
		if err != nil {
			return nil, err
		}
		res.local[t] = v
		return v, nil
	}
	return res.shared(t)
}

func (res *resolution) shared(t meta.Token) (any, error) {
	if v, ok := res.reg.shared[t]; ok {
		return v, nil
	}
	v, err := res.build(t)
	if err != nil {
		return nil, err
	}
	res.reg.shared[t] = v
	return v, nil
}

func (res *resolution) build(t meta.Token) (any, error) {
	for _, s := range res.stack {
		if s == t {
			return nil, fmt.Errorf("%w: %s", ErrCycle, res.path(t))
		}
	}
	p, ok := res.reg.providers[t]
	if !ok {
		if len(res.stack) > 0 {
			return nil, fmt.Errorf("%w for %s (required by %s)", ErrNoProvider, meta.TokenName(t), meta.TokenName(res.stack[len(res.stack)-1]))
		}
		return nil, fmt.Errorf("%w for %s", ErrNoProvider, meta.TokenName(t))
	}

	res.stack = append(res.stack, t)
	defer func() { res.stack = res.stack[:len(res.stack)-1] }()

	deps := make([]any, len(p.deps))
	for i, d := range p.deps {
		v, err := res.resolve(d)
		if err != nil {
			return nil, err
		}
		deps[i] = v
	}
	v, err := p.factory(deps...)
	if err != nil {
		return nil, fmt.Errorf("lumen: creating %s: %w", meta.TokenName(t), err)
	}
	return v, nil
}

func (res *resolution) path(t meta.Token) string {
	names := make([]string, 0, len(res.stack)+1)
	for _, s := range res.stack {
		names = append(names, meta.TokenName(s))
	}
	names = append(names, meta.TokenName(t))
	return strings.Join(names, " -> ")
}
