package template

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrMalformed is returned for structural directives that cannot be parsed.
var ErrMalformed = errors.New("lumen: malformed structural directive")

// Condition is a parsed *ngIf value.
type Condition struct {
	Expr  string
	Alias string
}

// Loop is a parsed *ngFor value or comment marker.
type Loop struct {
	Var  string
	Expr string
	// Keys is set for `let k in expr`, which walks keys instead of values.
	Keys    bool
	TrackBy string
	// Locals maps template names to loop locals such as index or first.
	Locals map[string]string
}

var (
	identPattern = `[A-Za-z_$][\w$]*`
	asRegexp     = regexp.MustCompile(`^(.*\S)\s+as\s+(` + identPattern + `)$`)
	letRegexp    = regexp.MustCompile(`^let\s+(` + identPattern + `)(?:\s*=\s*(` + identPattern + `))?$`)
	forRegexp    = regexp.MustCompile(`^let\s+(` + identPattern + `)\s+(of|in)\s+(.+)$`)
	localAs      = regexp.MustCompile(`^(` + identPattern + `)\s+as\s+(` + identPattern + `)$`)
	trackRegexp  = regexp.MustCompile(`(?i)^trackBy\s*:\s*(.+)$`)
	identRegexp  = regexp.MustCompile(`^` + identPattern + `$`)
)

var loopLocals = map[string]bool{
	"index": true,
	"first": true,
	"last":  true,
	"even":  true,
	"odd":   true,
	"count": true,
}

func splitClauses(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ParseCondition parses `expr`, `expr; let v`, `expr as v` and
// `expr; let v = ngIf`.
func ParseCondition(s string) (Condition, error) {
	clauses := splitClauses(s)
	if len(clauses) == 0 {
		return Condition{}, fmt.Errorf("%w: empty condition", ErrMalformed)
	}
	c := Condition{Expr: clauses[0]}
	if m := asRegexp.FindStringSubmatch(c.Expr); m != nil {
		c.Expr, c.Alias = m[1], m[2]
	}
	for _, clause := range clauses[1:] {
		if strings.HasPrefix(clause, "else ") || strings.HasPrefix(clause, "else:") {
			continue
		}
		m := letRegexp.FindStringSubmatch(clause)
		if m == nil || (m[2] != "" && m[2] != "ngIf") {
			return Condition{}, fmt.Errorf("%w: %q", ErrMalformed, clause)
		}
		c.Alias = m[1]
	}
	return c, nil
}

// ParseLoop parses `let x of expr` or `let k in expr` followed by
// `trackBy: fn`, `let i = index` or `index as i` clauses.
func ParseLoop(s string) (Loop, error) {
	clauses := splitClauses(s)
	if len(clauses) == 0 {
		return Loop{}, fmt.Errorf("%w: empty loop", ErrMalformed)
	}
	m := forRegexp.FindStringSubmatch(clauses[0])
	if m == nil {
		return Loop{}, fmt.Errorf("%w: %q", ErrMalformed, clauses[0])
	}
	l := Loop{Var: m[1], Keys: m[2] == "in", Expr: strings.TrimSpace(m[3])}
	if m := asRegexp.FindStringSubmatch(l.Expr); m != nil {
		l.Expr = m[1]
		l.addLocal(m[2], "count")
	}

	for _, clause := range clauses[1:] {
		if m := trackRegexp.FindStringSubmatch(clause); m != nil {
			l.TrackBy = strings.TrimSpace(m[1])
			continue
		}
		if m := letRegexp.FindStringSubmatch(clause); m != nil && loopLocals[m[2]] {
			l.addLocal(m[1], m[2])
			continue
		}
		if m := localAs.FindStringSubmatch(clause); m != nil && loopLocals[m[1]] {
			l.addLocal(m[2], m[1])
			continue
		}
		return Loop{}, fmt.Errorf("%w: %q", ErrMalformed, clause)
	}
	return l, nil
}

func (l *Loop) addLocal(name, local string) {
	if l.Locals == nil {
		l.Locals = make(map[string]string)
	}
	l.Locals[name] = local
}

// ParseMarker parses the text of a select-safe comment marker,
// "F:var:expr".
func ParseMarker(data string) (Loop, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(data), "F:")
	if !ok {
		return Loop{}, fmt.Errorf("%w: not a loop marker", ErrMalformed)
	}
	name, src, ok := strings.Cut(rest, ":")
	name, src = strings.TrimSpace(name), strings.TrimSpace(src)
	if !ok || name == "" || src == "" || !identRegexp.MatchString(name) {
		return Loop{}, fmt.Errorf("%w: %q", ErrMalformed, data)
	}
	return Loop{Var: name, Expr: src}, nil
}

func isLoopStart(n string) bool {
	return strings.HasPrefix(strings.TrimSpace(n), "F:")
}

func isLoopEnd(n string) bool {
	return strings.TrimSpace(n) == "/F"
}
