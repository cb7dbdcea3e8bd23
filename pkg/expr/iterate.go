package expr

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// Items returns the elements a repeater walks for `let x of v`: slice and
// array elements, the runes of a string, or the values of a map in key
// order. nil yields no items.
func Items(v any) ([]any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return x, nil
	case string:
		out := make([]any, 0, len(x))
		for _, r := range x {
			out = append(out, string(r))
		}
		return out, nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	case reflect.Map:
		keys := sortedKeys(rv)
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = rv.MapIndex(k).Interface()
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrNotIterable, v)
}

// Keys returns the keys a repeater walks for `let k in v`: sorted map
// keys, exported struct fields in declaration order, or slice indices.
func Keys(v any) ([]any, error) {
	if v == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		keys := sortedKeys(rv)
		out := make([]any, len(keys))
		for i, k := range keys {
			out[i] = k.Interface()
		}
		return out, nil
	case reflect.Struct:
		t := rv.Type()
		var out []any
		for i := 0; i < t.NumField(); i++ {
			if f := t.Field(i); f.IsExported() {
				out = append(out, f.Name)
			}
		}
		return out, nil
	case reflect.Slice, reflect.Array, reflect.String:
		n := rv.Len()
		if rv.Kind() == reflect.String {
			n = len([]rune(rv.String()))
		}
		out := make([]any, n)
		for i := range out {
			out[i] = strconv.Itoa(i)
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrNotIterable, v)
}

func sortedKeys(m reflect.Value) []reflect.Value {
	keys := m.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i].Interface(), keys[j].Interface()
		if isNumber(a) && isNumber(b) {
			return ToNumber(a) < ToNumber(b)
		}
		return ToString(a) < ToString(b)
	})
	return keys
}
