package expr

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Pipe transforms a value in a `value | name:arg` expression.
type Pipe interface {
	Transform(value any, args ...any) (any, error)
}

// PipeFunc adapts a function to Pipe.
type PipeFunc func(value any, args ...any) (any, error)

// Transform calls f.
func (f PipeFunc) Transform(value any, args ...any) (any, error) {
	return f(value, args...)
}

// PipeResolver finds a pipe by name. Resolvers registered by an
// application shadow the built-in pipes.
type PipeResolver func(name string) (Pipe, bool)

var titleCaser = cases.Title(language.Und)

// Builtins are always available unless shadowed.
var Builtins = map[string]Pipe{
	"uppercase": PipeFunc(func(v any, _ ...any) (any, error) {
		return strings.ToUpper(ToString(v)), nil
	}),
	"lowercase": PipeFunc(func(v any, _ ...any) (any, error) {
		return strings.ToLower(ToString(v)), nil
	}),
	"titlecase": PipeFunc(func(v any, _ ...any) (any, error) {
		return titleCaser.String(ToString(v)), nil
	}),
	"json": PipeFunc(func(v any, _ ...any) (any, error) {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return string(b), nil
	}),
	"slice": PipeFunc(slicePipe),
}

func slicePipe(v any, args ...any) (any, error) {
	if v == nil {
		return nil, nil
	}
	var length int
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		length = len([]rune(rv.String()))
	case reflect.Slice, reflect.Array:
		length = rv.Len()
	default:
		return nil, fmt.Errorf("slice: unsupported value %T", v)
	}

	bound := func(i int, def int) int {
		if i >= len(args) || args[i] == nil {
			return def
		}
		n := int(ToNumber(args[i]))
		if n < 0 {
			n += length
		}
		return max(0, min(n, length))
	}
	start, end := bound(0, 0), bound(1, length)
	if end < start {
		end = start
	}

	if rv.Kind() == reflect.String {
		return string([]rune(rv.String())[start:end]), nil
	}
	out := make([]any, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, rv.Index(i).Interface())
	}
	return out, nil
}

func resolvePipe(r PipeResolver, name string) (Pipe, bool) {
	if r != nil {
		if p, ok := r(name); ok {
			return p, true
		}
	}
	p, ok := Builtins[name]
	return p, ok
}
