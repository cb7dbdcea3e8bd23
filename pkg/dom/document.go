package dom

import (
	"errors"
	"fmt"
	"strings"
)

// CustomElement is the lifecycle contract of an upgraded custom element.
type CustomElement interface {
	ConnectedCallback()
	DisconnectedCallback()
}

// Constructor creates the custom element instance for an element.
type Constructor func(el *Node) CustomElement

// ErrAlreadyDefined is returned when a tag is defined twice.
var ErrAlreadyDefined = errors.New("lumen: custom element already defined")

// ErrInvalidName is returned for custom element names without a hyphen.
var ErrInvalidName = errors.New("lumen: custom element name must contain a hyphen")

// Document is the root of a node tree.
type Document struct {
	root *Node
	html *Node
	head *Node
	body *Node

	definitions map[string]Constructor
}

// NewDocument creates an empty document with html, head and body elements.
func NewDocument() *Document {
	d := &Document{definitions: make(map[string]Constructor)}
	d.root = &Node{Type: DocumentNode, doc: d, connected: true}
	d.html = d.CreateElement("html")
	d.head = d.CreateElement("head")
	d.body = d.CreateElement("body")
	d.html.AppendChild(d.head)
	d.html.AppendChild(d.body)
	d.root.AppendChild(d.html)
	return d
}

// Root returns the document node.
func (d *Document) Root() *Node { return d.root }

// Head returns the head element.
func (d *Document) Head() *Node { return d.head }

// Body returns the body element.
func (d *Document) Body() *Node { return d.body }

// CreateElement creates a detached element.
func (d *Document) CreateElement(tag string) *Node {
	return &Node{Type: ElementNode, Tag: strings.ToLower(tag), doc: d}
}

// CreateTextNode creates a detached text node.
func (d *Document) CreateTextNode(text string) *Node {
	return &Node{Type: TextNode, Data: text, doc: d}
}

// CreateComment creates a detached comment node.
func (d *Document) CreateComment(text string) *Node {
	return &Node{Type: CommentNode, Data: text, doc: d}
}

// CreateFragment creates an empty document fragment.
func (d *Document) CreateFragment() *Node {
	return &Node{Type: FragmentNode, doc: d}
}

// Define registers a custom element constructor for tag. Elements already
// connected with that tag are upgraded immediately.
func (d *Document) Define(tag string, ctor Constructor) error {
	tag = strings.ToLower(tag)
	if !strings.Contains(tag, "-") {
		return fmt.Errorf("%w: %q", ErrInvalidName, tag)
	}
	if _, ok := d.definitions[tag]; ok {
		return fmt.Errorf("%w: %q", ErrAlreadyDefined, tag)
	}
	d.definitions[tag] = ctor

	var pending []*Node
	d.root.walkComposed(func(n *Node) {
		if n.Type == ElementNode && n.Tag == tag && n.custom == nil {
			pending = append(pending, n)
		}
	})
	for _, n := range pending {
		n.custom = ctor(n)
		n.custom.ConnectedCallback()
	}
	return nil
}

// Defined reports whether tag has a custom element definition.
func (d *Document) Defined(tag string) bool {
	_, ok := d.definitions[strings.ToLower(tag)]
	return ok
}

// QuerySelectorAll matches selector against every element in the document.
func (d *Document) QuerySelectorAll(selector string) ([]*Node, error) {
	return d.root.QuerySelectorAll(selector)
}

// walkComposed visits n and its descendants including shadow trees.
func (n *Node) walkComposed(fn func(*Node)) {
	fn(n)
	if n.shadow != nil {
		n.shadow.walkComposed(fn)
	}
	for _, c := range n.ChildNodes() {
		c.walkComposed(fn)
	}
}

// connect marks the subtree rooted at n connected and runs connected
// callbacks for custom elements, upgrading defined ones first. The set of
// elements is captured before any callback runs, so nodes inserted by a
// callback are connected by their own insertion.
func (d *Document) connect(n *Node) {
	var elements []*Node
	n.walkComposed(func(c *Node) {
		if c.connected {
			return
		}
		c.connected = true
		if c.IsCustomTag() {
			elements = append(elements, c)
		}
	})
	for _, el := range elements {
		if !el.connected {
			continue
		}
		if el.custom == nil {
			ctor, ok := d.definitions[el.Tag]
			if !ok {
				continue
			}
			el.custom = ctor(el)
		}
		el.custom.ConnectedCallback()
	}
}

func (d *Document) disconnect(n *Node) {
	var elements []*Node
	n.walkComposed(func(c *Node) {
		if !c.connected {
			return
		}
		c.connected = false
		if c.custom != nil {
			elements = append(elements, c)
		}
	})
	for _, el := range elements {
		if el.connected {
			continue
		}
		el.custom.DisconnectedCallback()
	}
}
