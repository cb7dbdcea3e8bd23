package expr

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/vango-dev/lumen/pkg/reactive"
)

// Callable is implemented by values that handle their own invocation.
type Callable interface {
	Call(args ...any) (any, error)
}

// Truthy reports whether v counts as true in a condition: nil, false, zero,
// NaN, the empty string and nil pointers, maps, slices and funcs are false.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0 && !math.IsNaN(x)
	case int:
		return x != 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.String:
		return rv.Len() > 0
	case reflect.Bool:
		return rv.Bool()
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return !rv.IsNil()
	}
	return true
}

// ToNumber converts v to a float64. Strings that do not parse yield NaN.
func ToNumber(v any) float64 {
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		return x
	case int:
		return float64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return ToNumber(rv.String())
	case reflect.Bool:
		return ToNumber(rv.Bool())
	}
	return math.NaN()
}

// ToString renders v the way an interpolation does. nil renders empty.
func ToString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return formatFloat(x)
	case int:
		return strconv.Itoa(x)
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return formatFloat(rv.Float())
	case reflect.String:
		return rv.String()
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = ToString(rv.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	case reflect.Pointer:
		if rv.IsNil() {
			return ""
		}
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func isNumber(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func isString(v any) bool {
	if v == nil {
		return false
	}
	return reflect.TypeOf(v).Kind() == reflect.String
}

// StrictEqual implements ===. Numbers of different Go types compare by
// value; everything else must have the same type and be identical.
func StrictEqual(a, b any) bool {
	if isNumber(a) && isNumber(b) {
		return ToNumber(a) == ToNumber(b)
	}
	return reactive.Identical[any](a, b)
}

// LooseEqual implements ==. nil only equals nil; numbers, strings and
// bools are compared numerically when their types differ.
func LooseEqual(a, b any) bool {
	if a == nil || b == nil {
		return isNil(a) && isNil(b)
	}
	if StrictEqual(a, b) {
		return true
	}
	primitive := func(v any) bool {
		if isNumber(v) || isString(v) {
			return true
		}
		_, ok := v.(bool)
		return ok
	}
	if primitive(a) && primitive(b) {
		if isString(a) && isString(b) {
			return ToString(a) == ToString(b)
		}
		return ToNumber(a) == ToNumber(b)
	}
	return false
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func nameCandidates(name string) []string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return []string{name}
	}
	return []string{name, string(unicode.ToUpper(r)) + name[size:]}
}

// Member reads obj.name. A Scope resolves the name itself. Map keys are
// consulted first, then exported struct fields and methods matched by
// exact name or with the first letter upper-cased. length is defined for strings, slices, arrays and
// maps. The second result is false when no such member exists.
func Member(obj any, name string) (any, bool) {
	switch o := obj.(type) {
	case nil:
		return nil, false
	case Scope:
		if isNil(o) {
			return nil, false
		}
		return o.Lookup(name)
	case map[string]any:
		if v, ok := o[name]; ok {
			return v, true
		}
		if name == "length" {
			return float64(len(o)), true
		}
		return nil, false
	case string:
		if name == "length" {
			return float64(utf8.RuneCountInString(o)), true
		}
		return nil, false
	case []any:
		if name == "length" {
			return float64(len(o)), true
		}
		return nil, false
	}

	rv := reflect.ValueOf(obj)
	v := rv
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}

	candidates := nameCandidates(name)
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() == reflect.String {
			mv := v.MapIndex(reflect.ValueOf(name).Convert(v.Type().Key()))
			if mv.IsValid() {
				return mv.Interface(), true
			}
		}
	case reflect.Struct:
		for _, n := range candidates {
			sf, ok := v.Type().FieldByName(n)
			if !ok || !sf.IsExported() {
				continue
			}
			f := v.FieldByIndex(sf.Index)
			if f.CanInterface() {
				return f.Interface(), true
			}
		}
	}

	for _, n := range candidates {
		if m := rv.MethodByName(n); m.IsValid() {
			return m.Interface(), true
		}
	}

	if name == "length" {
		switch v.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map:
			return float64(v.Len()), true
		case reflect.String:
			return float64(utf8.RuneCountInString(v.String())), true
		}
	}
	return nil, false
}

// SetMember writes obj.name = value. A Scope receives the write through
// Assign. Maps are written by key and struct
// fields must be reachable through a pointer. A field holding a
// reactive.Writable receives the value through SetAny when the value
// cannot be assigned to the field itself.
func SetMember(obj any, name string, value any) error {
	if sc, ok := obj.(Scope); ok && !isNil(obj) {
		if sc.Assign(name, value) {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrNotAssignable, name)
	}
	if m, ok := obj.(map[string]any); ok && m != nil {
		m[name] = value
		return nil
	}
	if isNil(obj) {
		return fmt.Errorf("%w: %s on nil", ErrNotAssignable, name)
	}

	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return fmt.Errorf("%w: %s on nil", ErrNotAssignable, name)
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			break
		}
		val, err := Convert(value, v.Type().Elem())
		if err != nil {
			return err
		}
		v.SetMapIndex(reflect.ValueOf(name).Convert(v.Type().Key()), val)
		return nil
	case reflect.Struct:
		for _, n := range nameCandidates(name) {
			sf, ok := v.Type().FieldByName(n)
			if !ok || !sf.IsExported() {
				continue
			}
			f := v.FieldByIndex(sf.Index)
			if !f.CanSet() {
				return fmt.Errorf("%w: field %s is not settable", ErrNotAssignable, n)
			}
			return assignField(f, value)
		}
	}
	return fmt.Errorf("%w: %T has no member %s", ErrNotAssignable, obj, name)
}

func assignField(f reflect.Value, value any) error {
	val, err := Convert(value, f.Type())
	if err == nil {
		f.Set(val)
		return nil
	}
	if f.CanInterface() {
		if w, ok := f.Interface().(reactive.Writable); ok && !isNil(w) {
			return w.SetAny(value)
		}
	}
	return err
}

// Convert converts v to a value of type t: nil becomes the zero value,
// numbers convert across numeric kinds and []any converts element-wise.
func Convert(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if isNumber(v) {
		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
			reflect.Float32, reflect.Float64:
			return rv.Convert(t), nil
		}
	}
	if rv.Kind() == reflect.String && t.Kind() == reflect.String {
		return rv.Convert(t), nil
	}
	if rv.Kind() == reflect.Slice && t.Kind() == reflect.Slice {
		out := reflect.MakeSlice(t, rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem, err := Convert(rv.Index(i).Interface(), t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(elem)
		}
		return out, nil
	}
	return reflect.Value{}, fmt.Errorf("%w: cannot use %T as %s", ErrNotAssignable, v, t)
}

// Index reads obj[key]. Slices, arrays and strings take numeric keys;
// anything else is treated as a member lookup by the key's string form.
func Index(obj any, key any) (any, bool) {
	if obj == nil {
		return nil, false
	}
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		i, ok := intKey(key)
		if !ok || i < 0 || i >= v.Len() {
			return nil, false
		}
		return v.Index(i).Interface(), true
	case reflect.String:
		i, ok := intKey(key)
		runes := []rune(v.String())
		if !ok || i < 0 || i >= len(runes) {
			return nil, false
		}
		return string(runes[i]), true
	case reflect.Map:
		kt := v.Type().Key()
		if kt.Kind() != reflect.String {
			k, err := Convert(key, kt)
			if err != nil {
				return nil, false
			}
			mv := v.MapIndex(k)
			if !mv.IsValid() {
				return nil, false
			}
			return mv.Interface(), true
		}
	}
	return Member(obj, ToString(key))
}

// SetIndex writes obj[key] = value.
func SetIndex(obj any, key any, value any) error {
	if isNil(obj) {
		return fmt.Errorf("%w: index on nil", ErrNotAssignable)
	}
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		i, ok := intKey(key)
		if !ok || i < 0 || i >= v.Len() {
			return fmt.Errorf("%w: index %v out of range", ErrNotAssignable, key)
		}
		elem := v.Index(i)
		if !elem.CanSet() {
			return fmt.Errorf("%w: element is not settable", ErrNotAssignable)
		}
		val, err := Convert(value, elem.Type())
		if err != nil {
			return err
		}
		elem.Set(val)
		return nil
	case reflect.Map:
		kt := v.Type().Key()
		if kt.Kind() != reflect.String {
			k, err := Convert(key, kt)
			if err != nil {
				return err
			}
			val, err := Convert(value, v.Type().Elem())
			if err != nil {
				return err
			}
			v.SetMapIndex(k, val)
			return nil
		}
	}
	return SetMember(obj, ToString(key), value)
}

func intKey(key any) (int, bool) {
	if isNumber(key) {
		f := ToNumber(key)
		if f != math.Trunc(f) {
			return 0, false
		}
		return int(f), true
	}
	if s, ok := key.(string); ok {
		i, err := strconv.Atoi(s)
		return i, err == nil
	}
	return 0, false
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Call invokes fn with args. A Callable handles its own call, a
// reactive.Source called with no arguments is read, and Go funcs are
// called through reflection. Missing arguments are zero values and
// surplus arguments are dropped. A trailing error result is returned as
// the error.
func Call(fn any, args ...any) (any, error) {
	switch f := fn.(type) {
	case Callable:
		return f.Call(args...)
	case reactive.Source:
		if len(args) == 0 {
			return f.GetAny(), nil
		}
	case func():
		f()
		return nil, nil
	case func() any:
		return f(), nil
	}

	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, fmt.Errorf("%w: %T", ErrNotCallable, fn)
	}
	ft := rv.Type()

	in := make([]reflect.Value, 0, len(args))
	fixed := ft.NumIn()
	if ft.IsVariadic() {
		fixed--
	}
	for i := 0; i < fixed; i++ {
		var arg any
		if i < len(args) {
			arg = args[i]
		}
		val, err := Convert(arg, ft.In(i))
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		in = append(in, val)
	}
	if ft.IsVariadic() {
		elem := ft.In(fixed).Elem()
		for i := fixed; i < len(args); i++ {
			val, err := Convert(args[i], elem)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i+1, err)
			}
			in = append(in, val)
		}
	}

	out := rv.Call(in)
	if n := len(out); n > 0 && ft.Out(n-1) == errorType {
		if errv := out[n-1]; !errv.IsNil() {
			return nil, errv.Interface().(error)
		}
		out = out[:n-1]
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0].Interface(), nil
}
