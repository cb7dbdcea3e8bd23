package dom

import (
	"fmt"
	"strings"
)

// Attr is a single attribute. Names are lower-cased.
type Attr struct {
	Name  string
	Value string
}

// Attributes returns a copy of the element's attributes in source order.
func (n *Node) Attributes() []Attr {
	out := make([]Attr, len(n.attrs))
	copy(out, n.attrs)
	return out
}

// GetAttribute returns the attribute value and whether it is present.
func (n *Node) GetAttribute(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, a := range n.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttribute reports whether the attribute is present.
func (n *Node) HasAttribute(name string) bool {
	_, ok := n.GetAttribute(name)
	return ok
}

// SetAttribute sets an attribute, keeping its position when it exists.
func (n *Node) SetAttribute(name, value string) {
	name = strings.ToLower(name)
	for i := range n.attrs {
		if n.attrs[i].Name == name {
			n.attrs[i].Value = value
			n.attributeChanged(name)
			return
		}
	}
	n.attrs = append(n.attrs, Attr{Name: name, Value: value})
	n.attributeChanged(name)
}

// RemoveAttribute removes an attribute if present.
func (n *Node) RemoveAttribute(name string) {
	name = strings.ToLower(name)
	for i, a := range n.attrs {
		if a.Name == name {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			n.attributeChanged(name)
			return
		}
	}
}

func (n *Node) attributeChanged(name string) {
	if name == "style" && n.style != nil && !n.style.syncing {
		v, _ := n.GetAttribute("style")
		n.style.parse(v)
	}
}

// booleanProps reflect to presence attributes.
var booleanProps = map[string]string{
	"checked":  "checked",
	"disabled": "disabled",
	"hidden":   "hidden",
	"readOnly": "readonly",
	"required": "required",
	"selected": "selected",
}

// stringProps reflect to string attributes.
var stringProps = map[string]string{
	"id":        "id",
	"className": "class",
	"title":     "title",
	"htmlFor":   "for",
	"href":      "href",
	"src":       "src",
	"name":      "name",
	"type":      "type",
	"role":      "role",
	"lang":      "lang",
	"tabIndex":  "tabindex",
}

// SetProperty assigns a JS-style property. textContent and innerHTML
// replace children; reflected properties update their attribute; other
// values are stored on the node.
func (n *Node) SetProperty(name string, value any) error {
	switch name {
	case "textContent", "innerText":
		n.SetTextContent(stringify(value))
		return nil
	case "innerHTML":
		frag, err := ParseHTML(n.doc, stringify(value))
		if err != nil {
			return err
		}
		n.Clear()
		n.AppendChild(frag)
		return nil
	}
	if attr, ok := booleanProps[name]; ok {
		if truthy(value) {
			n.SetAttribute(attr, "")
		} else {
			n.RemoveAttribute(attr)
		}
	}
	if attr, ok := stringProps[name]; ok {
		if value == nil {
			n.RemoveAttribute(attr)
		} else {
			n.SetAttribute(attr, stringify(value))
		}
	}
	if n.props == nil {
		n.props = make(map[string]any)
	}
	n.props[name] = value
	return nil
}

// Property returns a JS-style property. Unset reflected properties fall
// back to their attribute.
func (n *Node) Property(name string) (any, bool) {
	switch name {
	case "textContent", "innerText":
		return n.TextContent(), true
	case "innerHTML":
		return InnerHTML(n), true
	}
	if v, ok := n.props[name]; ok {
		return v, true
	}
	if attr, ok := booleanProps[name]; ok {
		return n.HasAttribute(attr), true
	}
	if attr, ok := stringProps[name]; ok {
		return n.GetAttribute(attr)
	}
	return nil, false
}

// ClassList returns the class token list of an element.
func (n *Node) ClassList() ClassList {
	return ClassList{n: n}
}

// ClassList manipulates the class attribute.
type ClassList struct {
	n *Node
}

func (c ClassList) tokens() []string {
	v, _ := c.n.GetAttribute("class")
	return strings.Fields(v)
}

func (c ClassList) write(tokens []string) {
	if len(tokens) == 0 {
		c.n.RemoveAttribute("class")
		return
	}
	c.n.SetAttribute("class", strings.Join(tokens, " "))
}

// Contains reports whether the token is present.
func (c ClassList) Contains(token string) bool {
	for _, t := range c.tokens() {
		if t == token {
			return true
		}
	}
	return false
}

// Add adds tokens that are not present.
func (c ClassList) Add(tokens ...string) {
	current := c.tokens()
	for _, t := range tokens {
		if !c.Contains(t) {
			current = append(current, t)
			c.write(current)
		}
	}
}

// Remove removes tokens.
func (c ClassList) Remove(tokens ...string) {
	current := c.tokens()
	out := current[:0]
	for _, t := range current {
		keep := true
		for _, r := range tokens {
			if t == r {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, t)
		}
	}
	c.write(out)
}

// Toggle adds the token when force is true and removes it otherwise.
func (c ClassList) Toggle(token string, force bool) {
	if force {
		c.Add(token)
	} else {
		c.Remove(token)
	}
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case float64:
		return x != 0
	default:
		return true
	}
}
