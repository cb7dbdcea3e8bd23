package dom

import (
	"errors"
	"strings"
)

// NodeType discriminates node kinds.
type NodeType uint8

const (
	ElementNode NodeType = iota + 1
	TextNode
	CommentNode
	FragmentNode
	DocumentNode
)

// String returns the string representation of the NodeType.
func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "Element"
	case TextNode:
		return "Text"
	case CommentNode:
		return "Comment"
	case FragmentNode:
		return "Fragment"
	case DocumentNode:
		return "Document"
	default:
		return "Unknown"
	}
}

// ErrHierarchy is returned when an insertion would create a cycle or the
// reference node is not a child of the parent.
var ErrHierarchy = errors.New("lumen: invalid DOM hierarchy operation")

// Node is a node in a Document.
type Node struct {
	Type NodeType

	// Tag is the lower-cased tag name of an element.
	Tag string

	// Data holds the text of text and comment nodes.
	Data string

	doc      *Document
	parent   *Node
	children []*Node

	attrs []Attr
	props map[string]any
	style *Style

	listeners map[string][]*listener

	// shadow is the shadow root attached to an element; host is the
	// element owning a shadow root fragment.
	shadow *Node
	host   *Node

	connected bool
	custom    CustomElement
}

// OwnerDocument returns the document that created the node.
func (n *Node) OwnerDocument() *Document {
	return n.doc
}

// Parent returns the parent node, or nil.
func (n *Node) Parent() *Node {
	return n.parent
}

// ChildNodes returns a copy of the node's children.
func (n *Node) ChildNodes() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Children returns the element children of the node.
func (n *Node) Children() []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.Type == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

// LastChild returns the last child, or nil.
func (n *Node) LastChild() *Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[len(n.children)-1]
}

// NextSibling returns the following sibling, or nil.
func (n *Node) NextSibling() *Node {
	if n.parent == nil {
		return nil
	}
	i := n.parent.indexOf(n)
	if i < 0 || i+1 >= len(n.parent.children) {
		return nil
	}
	return n.parent.children[i+1]
}

// PreviousSibling returns the preceding sibling, or nil.
func (n *Node) PreviousSibling() *Node {
	if n.parent == nil {
		return nil
	}
	i := n.parent.indexOf(n)
	if i <= 0 {
		return nil
	}
	return n.parent.children[i-1]
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// Contains reports whether other is n or a descendant of n.
func (n *Node) Contains(other *Node) bool {
	for p := other; p != nil; p = p.parent {
		if p == n {
			return true
		}
	}
	return false
}

// IsConnected reports whether the node is in its document's tree,
// including through shadow roots.
func (n *Node) IsConnected() bool {
	return n.connected
}

// AppendChild appends child, moving it from its current parent. Appending
// a fragment moves the fragment's children instead.
func (n *Node) AppendChild(child *Node) *Node {
	if err := n.InsertBefore(child, nil); err != nil {
		panic(err)
	}
	return child
}

// InsertBefore inserts child before ref; a nil ref appends.
func (n *Node) InsertBefore(child, ref *Node) error {
	if child == nil {
		return ErrHierarchy
	}
	if ref != nil && ref.parent != n {
		return ErrHierarchy
	}
	if child.Contains(n) {
		return ErrHierarchy
	}

	var nodes []*Node
	if child.Type == FragmentNode && child.host == nil {
		nodes = child.ChildNodes()
		for _, c := range nodes {
			child.detach(c)
		}
	} else {
		if child == ref {
			return nil
		}
		if child.parent != nil {
			child.parent.RemoveChild(child)
		}
		nodes = []*Node{child}
	}

	for _, c := range nodes {
		c.parent = n
		if ref == nil {
			n.children = append(n.children, c)
			continue
		}
		i := n.indexOf(ref)
		n.children = append(n.children, nil)
		copy(n.children[i+1:], n.children[i:])
		n.children[i] = c
	}

	if n.connected {
		for _, c := range nodes {
			n.doc.connect(c)
		}
	}
	return nil
}

// RemoveChild removes child from n. It is a no-op when child is not a
// child of n.
func (n *Node) RemoveChild(child *Node) *Node {
	if child == nil || child.parent != n {
		return child
	}
	n.detach(child)
	if child.connected {
		n.doc.disconnect(child)
	}
	return child
}

func (n *Node) detach(child *Node) {
	if i := n.indexOf(child); i >= 0 {
		n.children = append(n.children[:i], n.children[i+1:]...)
	}
	child.parent = nil
}

// Remove detaches n from its parent.
func (n *Node) Remove() {
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
}

// Clear removes every child of n.
func (n *Node) Clear() {
	for len(n.children) > 0 {
		n.RemoveChild(n.children[len(n.children)-1])
	}
}

// CloneNode copies the node. Attributes and text are copied; properties,
// listeners, shadow roots and custom element instances are not.
func (n *Node) CloneNode(deep bool) *Node {
	c := &Node{
		Type: n.Type,
		Tag:  n.Tag,
		Data: n.Data,
		doc:  n.doc,
	}
	if len(n.attrs) > 0 {
		c.attrs = make([]Attr, len(n.attrs))
		copy(c.attrs, n.attrs)
	}
	if deep {
		for _, child := range n.children {
			cc := child.CloneNode(true)
			cc.parent = c
			c.children = append(c.children, cc)
		}
	}
	return c
}

// Walk visits n and its descendants in document order. Returning false
// from fn skips the node's children. Shadow roots are not entered.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.ChildNodes() {
		c.Walk(fn)
	}
}

// Descendants returns every descendant of n in document order.
func (n *Node) Descendants() []*Node {
	var out []*Node
	for _, c := range n.children {
		c.Walk(func(d *Node) bool {
			out = append(out, d)
			return true
		})
	}
	return out
}

// Comments returns the comment nodes below n in document order.
func (n *Node) Comments() []*Node {
	var out []*Node
	for _, d := range n.Descendants() {
		if d.Type == CommentNode {
			out = append(out, d)
		}
	}
	return out
}

// TextContent returns the concatenated text of n and its descendants.
func (n *Node) TextContent() string {
	switch n.Type {
	case TextNode, CommentNode:
		return n.Data
	}
	var b strings.Builder
	n.Walk(func(d *Node) bool {
		if d.Type == TextNode {
			b.WriteString(d.Data)
		}
		return true
	})
	return b.String()
}

// SetTextContent replaces the children of n with a single text node.
func (n *Node) SetTextContent(text string) {
	switch n.Type {
	case TextNode, CommentNode:
		n.Data = text
		return
	}
	n.Clear()
	if text != "" {
		n.AppendChild(n.doc.CreateTextNode(text))
	}
}

// AttachShadow attaches an open shadow root to an element and returns it.
// Attaching twice returns the existing root.
func (n *Node) AttachShadow() *Node {
	if n.shadow != nil {
		return n.shadow
	}
	root := &Node{Type: FragmentNode, doc: n.doc, host: n, connected: n.connected}
	n.shadow = root
	return root
}

// ShadowRoot returns the attached shadow root, or nil.
func (n *Node) ShadowRoot() *Node {
	return n.shadow
}

// Host returns the element owning this shadow root, or nil.
func (n *Node) Host() *Node {
	return n.host
}

// IsCustomTag reports whether the element's tag name contains a hyphen.
func (n *Node) IsCustomTag() bool {
	return n.Type == ElementNode && strings.Contains(n.Tag, "-")
}

// CustomElement returns the upgraded custom element instance, or nil.
func (n *Node) CustomElement() CustomElement {
	return n.custom
}
