package dom

import "strings"

// Style is an element's inline style declaration. Changes are written back
// to the style attribute.
type Style struct {
	n       *Node
	names   []string
	values  map[string]string
	syncing bool
}

// Style returns the inline style of an element.
func (n *Node) Style() *Style {
	if n.style == nil {
		n.style = &Style{n: n, values: make(map[string]string)}
		v, _ := n.GetAttribute("style")
		n.style.parse(v)
	}
	return n.style
}

func (s *Style) parse(text string) {
	s.names = s.names[:0]
	s.values = make(map[string]string)
	for _, decl := range strings.Split(text, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, exists := s.values[name]; !exists {
			s.names = append(s.names, name)
		}
		s.values[name] = strings.TrimSpace(value)
	}
}

// SetProperty sets a declaration. An empty value removes it.
func (s *Style) SetProperty(name, value string) {
	if value == "" {
		s.RemoveProperty(name)
		return
	}
	if _, exists := s.values[name]; !exists {
		s.names = append(s.names, name)
	}
	s.values[name] = value
	s.sync()
}

// RemoveProperty removes a declaration.
func (s *Style) RemoveProperty(name string) {
	if _, exists := s.values[name]; !exists {
		return
	}
	delete(s.values, name)
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			break
		}
	}
	s.sync()
}

// GetPropertyValue returns a declaration value or "".
func (s *Style) GetPropertyValue(name string) string {
	return s.values[name]
}

// Len returns the number of declarations.
func (s *Style) Len() int {
	return len(s.names)
}

// CSSText serializes the declarations.
func (s *Style) CSSText() string {
	parts := make([]string, 0, len(s.names))
	for _, name := range s.names {
		parts = append(parts, name+": "+s.values[name]+";")
	}
	return strings.Join(parts, " ")
}

func (s *Style) sync() {
	s.syncing = true
	defer func() { s.syncing = false }()
	if len(s.names) == 0 {
		s.n.RemoveAttribute("style")
		return
	}
	s.n.SetAttribute("style", s.CSSText())
}
