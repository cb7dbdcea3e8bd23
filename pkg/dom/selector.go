package dom

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrSelector is returned for selectors this package cannot parse.
var ErrSelector = errors.New("lumen: unsupported selector")

// selectorRegexp matches the pieces of a compound selector list:
// 1 ":not(", 2 tag/.class/#id with 3 its prefix, 4 attribute name with
// 5/6/7 its double-quoted, single-quoted or bare value, 8 ")", 9 ",".
var selectorRegexp = regexp.MustCompile(
	`(\:not\()|` +
		`(([\.\#]?)[-\w]+)|` +
		`(?:\[([-.\w*\\$]+)(?:=(?:"([^"]*)"|'([^']*)'|([^\]\s]+)))?\])|` +
		`(\))|` +
		`(\s*,\s*)`,
)

type attrMatch struct {
	name     string
	value    string
	hasValue bool
}

type compound struct {
	element string
	classes []string
	attrs   []attrMatch
	not     []*compound
}

// Selector is a comma-separated list of compound selectors. Descendant and
// child combinators are not supported.
type Selector struct {
	source string
	parts  []*compound
	bound  bool
}

// ParseSelector parses a selector list such as `button[type=submit], .x`.
func ParseSelector(s string) (*Selector, error) {
	src := strings.TrimSpace(s)
	if src == "" {
		return nil, fmt.Errorf("%w: empty selector", ErrSelector)
	}
	sel := &Selector{source: src}
	cur := &compound{}
	target := cur
	inNot := false
	last := 0

	for _, m := range selectorRegexp.FindAllStringSubmatchIndex(src, -1) {
		if m[0] != last {
			return nil, fmt.Errorf("%w: unexpected %q in %q", ErrSelector, src[last:m[0]], src)
		}
		last = m[1]
		group := func(i int) string {
			if m[2*i] < 0 {
				return ""
			}
			return src[m[2*i]:m[2*i+1]]
		}

		switch {
		case group(1) != "":
			if inNot {
				return nil, fmt.Errorf("%w: nested :not in %q", ErrSelector, src)
			}
			inNot = true
			target = &compound{}
			cur.not = append(cur.not, target)
		case group(2) != "":
			tok := group(2)
			switch group(3) {
			case "#":
				target.attrs = append(target.attrs, attrMatch{name: "id", value: tok[1:], hasValue: true})
			case ".":
				target.classes = append(target.classes, tok[1:])
			default:
				target.element = strings.ToLower(tok)
			}
		case group(4) != "":
			am := attrMatch{name: strings.ToLower(strings.ReplaceAll(group(4), `\$`, "$"))}
			for _, i := range []int{5, 6, 7} {
				if m[2*i] >= 0 {
					am.value = group(i)
					am.hasValue = true
				}
			}
			target.attrs = append(target.attrs, am)
		case group(8) != "":
			if !inNot {
				return nil, fmt.Errorf("%w: unbalanced ) in %q", ErrSelector, src)
			}
			inNot = false
			target = cur
		case group(9) != "":
			if inNot {
				return nil, fmt.Errorf("%w: , inside :not in %q", ErrSelector, src)
			}
			sel.parts = append(sel.parts, cur)
			cur = &compound{}
			target = cur
		}
	}
	if last != len(src) {
		return nil, fmt.Errorf("%w: unexpected %q in %q", ErrSelector, src[last:], src)
	}
	if inNot {
		return nil, fmt.Errorf("%w: unterminated :not in %q", ErrSelector, src)
	}
	sel.parts = append(sel.parts, cur)
	return sel, nil
}

// MustParseSelector is like ParseSelector but panics on error.
func MustParseSelector(s string) *Selector {
	sel, err := ParseSelector(s)
	if err != nil {
		panic(err)
	}
	return sel
}

// WithBoundForms returns a copy of the selector that also accepts the
// template binding form of attribute names: [name] matches an attribute
// written as [name]="...".
func (s *Selector) WithBoundForms() *Selector {
	cp := *s
	cp.bound = true
	return &cp
}

// String returns the selector source.
func (s *Selector) String() string {
	return s.source
}

// Match reports whether an element matches any part of the selector list.
func (s *Selector) Match(n *Node) bool {
	if n == nil || n.Type != ElementNode {
		return false
	}
	for _, c := range s.parts {
		if c.match(n, s.bound) {
			return true
		}
	}
	return false
}

func (c *compound) match(n *Node, bound bool) bool {
	if c.element != "" && c.element != "*" && c.element != n.Tag {
		return false
	}
	if len(c.classes) > 0 {
		cl := n.ClassList()
		for _, class := range c.classes {
			if !cl.Contains(class) {
				return false
			}
		}
	}
	for _, am := range c.attrs {
		v, ok := n.GetAttribute(am.name)
		if !ok && bound {
			v, ok = n.GetAttribute("[" + am.name + "]")
			if ok && am.hasValue {
				ok = false
			}
		}
		if !ok {
			return false
		}
		if am.hasValue && v != am.value {
			return false
		}
	}
	for _, not := range c.not {
		if not.match(n, bound) {
			return false
		}
	}
	return true
}

// Matches reports whether n matches selector.
func (n *Node) Matches(selector string) (bool, error) {
	sel, err := ParseSelector(selector)
	if err != nil {
		return false, err
	}
	return sel.Match(n), nil
}

// QuerySelectorAll returns the descendants of n matching selector in
// document order.
func (n *Node) QuerySelectorAll(selector string) ([]*Node, error) {
	sel, err := ParseSelector(selector)
	if err != nil {
		return nil, err
	}
	return n.QueryAll(sel), nil
}

// QueryAll is QuerySelectorAll for a parsed selector.
func (n *Node) QueryAll(sel *Selector) []*Node {
	var out []*Node
	for _, d := range n.Descendants() {
		if sel.Match(d) {
			out = append(out, d)
		}
	}
	return out
}

// QuerySelector returns the first matching descendant, or nil.
func (n *Node) QuerySelector(selector string) (*Node, error) {
	all, err := n.QuerySelectorAll(selector)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}
