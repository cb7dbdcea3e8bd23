package element

import (
	"fmt"
	"sync"

	"github.com/vango-dev/lumen/pkg/dom"
)

// IDPool hands out runtime scope ids. The first claim of a compiled id
// keeps it; later claims get "<id>-<n>" from a counter shared by the pool.
type IDPool struct {
	mu      sync.Mutex
	claimed map[string]bool
	next    int
}

// NewIDPool creates an empty pool.
func NewIDPool() *IDPool {
	return &IDPool{claimed: make(map[string]bool)}
}

var defaultPool = NewIDPool()

// DefaultIDPool returns the process-wide pool.
func DefaultIDPool() *IDPool {
	return defaultPool
}

// Claim returns a runtime id for compiled that no earlier claim received.
func (p *IDPool) Claim(compiled string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.claimed[compiled] {
		p.claimed[compiled] = true
		return compiled
	}
	for {
		p.next++
		id := fmt.Sprintf("%s-%d", compiled, p.next)
		if !p.claimed[id] {
			p.claimed[id] = true
			return id
		}
	}
}

// Scopes maps compiled scope ids to runtime ids for one application and
// tracks the shared style element injected for each runtime id.
type Scopes struct {
	pool   *IDPool
	ids    map[string]string
	styles map[string]*dom.Node
}

// NewScopes creates a table drawing ids from pool, or the process-wide
// pool when pool is nil.
func NewScopes(pool *IDPool) *Scopes {
	if pool == nil {
		pool = defaultPool
	}
	return &Scopes{
		pool:   pool,
		ids:    make(map[string]string),
		styles: make(map[string]*dom.Node),
	}
}

// Runtime returns the runtime id for compiled, allocating it once.
func (s *Scopes) Runtime(compiled string) string {
	if id, ok := s.ids[compiled]; ok {
		return id
	}
	id := s.pool.Claim(compiled)
	s.ids[compiled] = id
	return id
}

// InjectStyle appends a <style> with css to the document head unless one
// was already injected for id. It returns the style element.
func (s *Scopes) InjectStyle(doc *dom.Document, id, css string) *dom.Node {
	if el, ok := s.styles[id]; ok {
		return el
	}
	el := doc.CreateElement("style")
	el.SetAttribute("data-scope", id)
	el.SetTextContent(css)
	doc.Head().AppendChild(el)
	s.styles[id] = el
	return el
}
