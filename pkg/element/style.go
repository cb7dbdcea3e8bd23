package element

import (
	"regexp"
	"strings"
)

// colonHostRe matches :host, :host(sel) and :host-context(sel) together
// with the rest of the compound selector up to the next comma or block.
var colonHostRe = regexp.MustCompile(`:host(-context)?(?:\(((?:[^()]|\([^()]*\))+)\))?([^,{]*)`)

// HostAttr returns the host attribute name for a runtime scope id.
func HostAttr(id string) string { return "_nghost-" + id }

// ContentAttr returns the content attribute name for a runtime scope id.
func ContentAttr(id string) string { return "_ngcontent-" + id }

// ScopeStyle rewrites css for a component whose compiled scope id is
// compiled and whose runtime scope id is runtime. :host and a bare
// :host-context become the host attribute selector, and compiled
// _nghost-/_ngcontent- attribute names are remapped to the runtime id.
func ScopeStyle(css, compiled, runtime string) string {
	host := "[" + HostAttr(runtime) + "]"
	out := colonHostRe.ReplaceAllStringFunc(css, func(match string) string {
		m := colonHostRe.FindStringSubmatch(match)
		context, inner, rest := m[1] != "", m[2], m[3]
		if inner == "" {
			return host + rest
		}
		if context {
			var parts []string
			for _, sel := range splitTopLevel(inner) {
				parts = append(parts, sel+host+rest, sel+" "+host+rest)
			}
			return strings.Join(parts, ",")
		}
		var parts []string
		for _, sel := range splitTopLevel(inner) {
			parts = append(parts, host+sel+rest)
		}
		return strings.Join(parts, ",")
	})
	if compiled != "" && compiled != runtime {
		re := regexp.MustCompile(`(_ng(?:host|content)-)` + regexp.QuoteMeta(compiled) + `([^\w-]|$)`)
		out = re.ReplaceAllString(out, "${1}"+runtime+"${2}")
	}
	return out
}

// splitTopLevel splits on commas outside parentheses and trims each part.
func splitTopLevel(s string) []string {
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
				if p := strings.TrimSpace(s[prev:i]); p != "" {
					out = append(out, p)
				}
				prev = i + 1
			}
		}
	}
	if p := strings.TrimSpace(s[prev:]); p != "" {
		out = append(out, p)
	}
	return out
}
