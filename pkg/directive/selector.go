package directive

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/vango-dev/lumen/pkg/dom"
)

var attrNameRegexp = regexp.MustCompile(`\[([A-Za-z][\w-]*)`)

// Kebab converts a camelCase name to kebab-case.
func Kebab(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// splitList splits a selector list on commas outside parentheses.
func splitList(s string) []string {
	var out []string
	depth, prev := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[prev:i]))
				prev = i + 1
			}
		}
	}
	return append(out, strings.TrimSpace(s[prev:]))
}

// ScopedSelector builds the selector matching sel inside a component
// rendered with content attribute attr. camelCase attribute selectors also
// match their data-kebab-case form. Bound attribute forms match too.
func ScopedSelector(sel, attr string) (*dom.Selector, error) {
	var parts []string
	for _, part := range splitList(sel) {
		if part == "" {
			continue
		}
		variants := []string{part}
		if kebab := attrNameRegexp.ReplaceAllStringFunc(part, func(m string) string {
			name := m[1:]
			if strings.ToLower(name) == name {
				return m
			}
			return "[data-" + Kebab(name)
		}); kebab != part {
			variants = append(variants, kebab)
		}
		for _, v := range variants {
			if attr != "" {
				v += "[" + attr + "]"
			}
			parts = append(parts, v)
		}
	}
	s, err := dom.ParseSelector(strings.Join(parts, ", "))
	if err != nil {
		return nil, err
	}
	return s.WithBoundForms(), nil
}
