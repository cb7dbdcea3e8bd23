package template

import (
	"fmt"
	"log/slog"

	"github.com/vango-dev/lumen/pkg/binding"
	"github.com/vango-dev/lumen/pkg/dom"
	"github.com/vango-dev/lumen/pkg/expr"
)

const (
	attrIf  = "*ngif"
	attrFor = "*ngfor"

	tagContainer = "ng-container"
	tagTemplate  = "ng-template"
)

// Options control one render.
type Options struct {
	// ContentAttr is added to every rendered element when non-empty.
	ContentAttr string

	// Rename maps compiled attribute names to the names used at runtime.
	Rename map[string]string

	// OnRegion runs on a microtask after a repeater region is rebuilt.
	OnRegion func()
}

// Renderer renders templates for one document.
type Renderer struct {
	doc    *dom.Document
	binder *binding.Binder
	reg    *binding.Registry
	logger *slog.Logger

	parsed map[string]*dom.Node
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger for malformed structural directives.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a renderer for doc. Bindings are wired by binder.
func New(doc *dom.Document, binder *binding.Binder, opts ...Option) *Renderer {
	r := &Renderer{
		doc:    doc,
		binder: binder,
		reg:    binder.Registry(),
		logger: slog.Default(),
		parsed: make(map[string]*dom.Node),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Binder returns the binder used for bindings.
func (r *Renderer) Binder() *binding.Binder {
	return r.binder
}

// Parse returns a fresh detached fragment for src. Parsed templates are
// cached and cloned.
func (r *Renderer) Parse(src string) (*dom.Node, error) {
	tpl, ok := r.parsed[src]
	if !ok {
		frag, err := dom.ParseHTML(r.doc, src)
		if err != nil {
			return nil, fmt.Errorf("template: parse: %w", err)
		}
		tpl = frag
		r.parsed[src] = tpl
	}
	return tpl.CloneNode(true), nil
}

// Render replaces the content of target with src rendered against base.
// The previous content's effects are destroyed before it is removed.
func (r *Renderer) Render(target *dom.Node, src string, base *binding.Context, o Options) error {
	staged, err := r.Parse(src)
	if err != nil {
		return err
	}
	applyScope(staged, o)
	r.Expand(staged, base, o)
	r.binder.BindTree(staged, base)

	r.DestroyEffects(target)
	target.Clear()
	target.AppendChild(staged)
	return nil
}

// DestroyEffects tears down every binding below root.
func (r *Renderer) DestroyEffects(root *dom.Node) {
	r.reg.DestroyDescendants(root)
}

// applyScope renames compiled scope attributes and adds the content
// attribute to every element below root.
func applyScope(root *dom.Node, o Options) {
	if o.ContentAttr == "" && len(o.Rename) == 0 {
		return
	}
	for _, n := range root.Descendants() {
		if n.Type != dom.ElementNode {
			continue
		}
		for from, to := range o.Rename {
			if v, ok := n.GetAttribute(from); ok {
				n.RemoveAttribute(from)
				n.SetAttribute(to, v)
			}
		}
		if o.ContentAttr != "" {
			n.SetAttribute(o.ContentAttr, "")
		}
	}
}

// Expand expands the structural markers among the children of parent,
// depth-first, against ctx.
func (r *Renderer) Expand(parent *dom.Node, ctx *binding.Context, o Options) {
	children := parent.ChildNodes()
	for i := 0; i < len(children); i++ {
		n := children[i]
		switch n.Type {
		case dom.ElementNode:
			switch {
			case n.HasAttribute(attrIf):
				r.expandIf(n, ctx, o)
			case n.HasAttribute(attrFor):
				r.expandFor(n, ctx, o)
			case n.Tag == tagContainer:
				r.Expand(n, ctx, o)
				unwrap(n)
			case n.Tag == tagTemplate:
				n.Remove()
			default:
				r.Expand(n, ctx, o)
			}
		case dom.CommentNode:
			if !isLoopStart(n.Data) {
				continue
			}
			end := matchingEnd(children, i)
			if end < 0 {
				r.logger.Debug("template: loop marker without end", "marker", n.Data)
				continue
			}
			r.expandMarker(n, children[end], children[i+1:end], ctx, o)
			i = end
		}
	}
}

// matchingEnd returns the index of the /F comment closing the F: comment
// at start, honouring nesting, or -1.
func matchingEnd(nodes []*dom.Node, start int) int {
	depth := 0
	for j := start + 1; j < len(nodes); j++ {
		if nodes[j].Type != dom.CommentNode {
			continue
		}
		switch {
		case isLoopStart(nodes[j].Data):
			depth++
		case isLoopEnd(nodes[j].Data):
			if depth == 0 {
				return j
			}
			depth--
		}
	}
	return -1
}

func unwrap(n *dom.Node) {
	parent := n.Parent()
	if parent == nil {
		return
	}
	frag := n.OwnerDocument().CreateFragment()
	for _, c := range n.ChildNodes() {
		frag.AppendChild(c)
	}
	_ = parent.InsertBefore(frag, n)
	n.Remove()
}

// markers replaces n with a start and end comment and returns them.
func (r *Renderer) markers(n *dom.Node, label, src string) (*dom.Node, *dom.Node) {
	start := r.doc.CreateComment(label + ": " + src)
	end := r.doc.CreateComment("/" + label)
	parent := n.Parent()
	_ = parent.InsertBefore(start, n)
	_ = parent.InsertBefore(end, n)
	n.Remove()
	return start, end
}

// body detaches the content of a structural carrier: the element itself
// without its directive attribute, or the children of a container.
func body(n *dom.Node, attr string) []*dom.Node {
	n.RemoveAttribute(attr)
	if n.Tag == tagContainer || n.Tag == tagTemplate {
		return n.ChildNodes()
	}
	return []*dom.Node{n}
}

func (r *Renderer) expandIf(n *dom.Node, ctx *binding.Context, o Options) {
	src, _ := n.GetAttribute(attrIf)
	_, end := r.markers(n, "ngIf", src)

	cond, err := ParseCondition(src)
	if err != nil {
		r.logger.Debug("template: inert conditional", "expr", src, "err", err)
		return
	}
	v, err := r.binder.Eval(ctx, cond.Expr, nil)
	if err != nil {
		r.binder.Swallow("if", cond.Expr, err)
		return
	}
	if !expr.Truthy(v) {
		return
	}

	inner := ctx
	if cond.Alias != "" {
		inner = ctx.With(cond.Alias, v)
	}
	holder := r.doc.CreateFragment()
	for _, c := range body(n, attrIf) {
		holder.AppendChild(c)
	}
	r.Expand(holder, inner, o)
	if cond.Alias != "" {
		for _, c := range holder.ChildNodes() {
			if r.reg.ContextOf(c) == nil {
				r.reg.Attach(c, inner)
			}
		}
	}
	_ = end.Parent().InsertBefore(holder, end)
}

func (r *Renderer) expandFor(n *dom.Node, ctx *binding.Context, o Options) {
	src, _ := n.GetAttribute(attrFor)
	start, end := r.markers(n, "ngFor", src)

	loop, err := ParseLoop(src)
	if err != nil {
		r.logger.Debug("template: inert repeater", "expr", src, "err", err)
		return
	}
	tpl := r.doc.CreateFragment()
	for _, c := range body(n, attrFor) {
		tpl.AppendChild(c)
	}
	r.repeat(start, end, tpl, loop, ctx, o)
}

func (r *Renderer) expandMarker(start, end *dom.Node, between []*dom.Node, ctx *binding.Context, o Options) {
	tpl := r.doc.CreateFragment()
	for _, c := range between {
		tpl.AppendChild(c)
	}
	loop, err := ParseMarker(start.Data)
	if err != nil {
		r.logger.Debug("template: inert loop marker", "marker", start.Data, "err", err)
		return
	}
	r.repeat(start, end, tpl, loop, ctx, o)
}

// repeat installs the effect that keeps the region between start and end
// in sync with the loop's iterable. Every run rebuilds the whole region.
func (r *Renderer) repeat(start, end *dom.Node, tpl *dom.Node, loop Loop, ctx *binding.Context, o Options) {
	r.binder.Effect(start, "ngFor "+loop.Expr, func() {
		r.clearRegion(start, end)

		v, err := r.binder.Eval(ctx, loop.Expr, nil)
		if err != nil {
			r.binder.Swallow("for", loop.Expr, err)
			return
		}
		var items []any
		if loop.Keys {
			items, err = expr.Keys(v)
		} else {
			items, err = expr.Items(v)
		}
		if err != nil {
			r.binder.Swallow("for", loop.Expr, err)
			return
		}

		parent := end.Parent()
		if parent == nil {
			return
		}
		for i, item := range items {
			frame := ctx.WithVars(loopVars(loop, item, i, len(items)))
			holder := tpl.CloneNode(true)
			r.Expand(holder, frame, o)
			for _, c := range holder.ChildNodes() {
				if r.reg.ContextOf(c) == nil {
					r.reg.Attach(c, frame)
				}
			}
			r.binder.BindTree(holder, frame)
			_ = parent.InsertBefore(holder, end)
		}

		if o.OnRegion != nil {
			r.binder.Runtime().QueueMicrotask(o.OnRegion)
		}
	})
}

func loopVars(loop Loop, item any, i, count int) map[string]any {
	vars := map[string]any{loop.Var: item}
	for name, local := range loop.Locals {
		switch local {
		case "index":
			vars[name] = i
		case "first":
			vars[name] = i == 0
		case "last":
			vars[name] = i == count-1
		case "even":
			vars[name] = i%2 == 0
		case "odd":
			vars[name] = i%2 == 1
		case "count":
			vars[name] = count
		}
	}
	return vars
}

// clearRegion tears down and removes every node between start and end.
func (r *Renderer) clearRegion(start, end *dom.Node) {
	for n := start.NextSibling(); n != nil && n != end; {
		next := n.NextSibling()
		r.reg.DestroySubtree(n)
		n.Remove()
		n = next
	}
}
