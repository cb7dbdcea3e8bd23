package dom

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseHTML parses src as body content into a detached fragment owned by
// doc. HTML5 tree construction rules apply.
func ParseHTML(doc *Document, src string) (*Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), context)
	if err != nil {
		return nil, err
	}
	frag := doc.CreateFragment()
	for _, hn := range nodes {
		if n := fromHTML(doc, hn); n != nil {
			frag.AppendChild(n)
		}
	}
	return frag, nil
}

func fromHTML(doc *Document, hn *html.Node) *Node {
	var n *Node
	switch hn.Type {
	case html.ElementNode:
		n = doc.CreateElement(hn.Data)
		for _, a := range hn.Attr {
			name := a.Key
			if a.Namespace != "" {
				name = a.Namespace + ":" + a.Key
			}
			n.attrs = append(n.attrs, Attr{Name: strings.ToLower(name), Value: a.Val})
		}
	case html.TextNode:
		return doc.CreateTextNode(hn.Data)
	case html.CommentNode:
		return doc.CreateComment(hn.Data)
	default:
		return nil
	}
	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		if child := fromHTML(doc, c); child != nil {
			child.parent = n
			n.children = append(n.children, child)
		}
	}
	return n
}

func toHTML(n *Node) *html.Node {
	switch n.Type {
	case TextNode:
		return &html.Node{Type: html.TextNode, Data: n.Data}
	case CommentNode:
		return &html.Node{Type: html.CommentNode, Data: n.Data}
	case DocumentNode:
		hn := &html.Node{Type: html.DocumentNode}
		hn.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
		appendChildren(hn, n)
		return hn
	case FragmentNode:
		// Fragments have no HTML form; callers render their children.
		hn := &html.Node{Type: html.DocumentNode}
		appendChildren(hn, n)
		return hn
	}

	hn := &html.Node{Type: html.ElementNode, Data: n.Tag, DataAtom: atom.Lookup([]byte(n.Tag))}
	for _, a := range n.attrs {
		hn.Attr = append(hn.Attr, html.Attribute{Key: a.Name, Val: a.Value})
	}
	if n.shadow != nil {
		tmpl := &html.Node{
			Type:     html.ElementNode,
			Data:     "template",
			DataAtom: atom.Template,
			Attr:     []html.Attribute{{Key: "shadowrootmode", Val: "open"}},
		}
		appendChildren(tmpl, n.shadow)
		hn.AppendChild(tmpl)
	}
	appendChildren(hn, n)
	return hn
}

func appendChildren(hn *html.Node, n *Node) {
	for _, c := range n.children {
		hn.AppendChild(toHTML(c))
	}
}

// Render writes the HTML serialization of n to w. Fragments and shadow
// roots render their children.
func Render(w io.Writer, n *Node) error {
	if n.Type == FragmentNode {
		for _, c := range n.children {
			if err := html.Render(w, toHTML(c)); err != nil {
				return err
			}
		}
		return nil
	}
	return html.Render(w, toHTML(n))
}

// OuterHTML returns the serialization of n including itself.
func OuterHTML(n *Node) string {
	var buf bytes.Buffer
	if err := Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// InnerHTML returns the serialization of n's children.
func InnerHTML(n *Node) string {
	var buf bytes.Buffer
	for _, c := range n.children {
		if err := Render(&buf, c); err != nil {
			return ""
		}
	}
	return buf.String()
}

// HTML returns the serialization of the whole document.
func (d *Document) HTML() string {
	return OuterHTML(d.root)
}
