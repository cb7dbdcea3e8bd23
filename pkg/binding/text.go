package binding

import (
	"strings"

	"github.com/vango-dev/lumen/pkg/dom"
	"github.com/vango-dev/lumen/pkg/expr"
)

type segment struct {
	text string
	expr string
}

// splitInterpolation splits text into literal and {{ expression }}
// segments. An unterminated {{ is kept as literal text.
func splitInterpolation(text string) []segment {
	var out []segment
	for {
		start := strings.Index(text, "{{")
		if start < 0 {
			break
		}
		end := strings.Index(text[start+2:], "}}")
		if end < 0 {
			break
		}
		if start > 0 {
			out = append(out, segment{text: text[:start]})
		}
		out = append(out, segment{expr: strings.TrimSpace(text[start+2 : start+2+end])})
		text = text[start+2+end+2:]
	}
	if text != "" {
		out = append(out, segment{text: text})
	}
	return out
}

// BindText wires a text node containing {{ }} interpolations. A failing
// segment renders as empty for that pass.
func (b *Binder) BindText(n *dom.Node, ctx *Context) {
	b.reg.MarkBound(n)
	segments := splitInterpolation(n.Data)
	dynamic := false
	for _, s := range segments {
		if s.expr != "" {
			dynamic = true
			break
		}
	}
	if !dynamic {
		return
	}
	b.Effect(n, "text", func() {
		var sb strings.Builder
		for _, s := range segments {
			if s.expr == "" {
				sb.WriteString(s.text)
				continue
			}
			v, err := b.Eval(ctx, s.expr, nil)
			if err != nil {
				b.Swallow(KindText, s.expr, err)
				continue
			}
			sb.WriteString(expr.ToString(v))
		}
		n.Data = sb.String()
	})
}
