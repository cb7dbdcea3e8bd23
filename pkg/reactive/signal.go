package reactive

import (
	"fmt"
	"reflect"
)

// Signal is a reactive value container.
// Reading a Signal's value while an effect or computed is running subscribes
// it to later changes.
type Signal[T any] struct {
	base  source
	sid   uint64
	value T
	equal func(a, b T) bool
}

// ValueOption configures a Signal or Computed.
type ValueOption[T any] func(*valueOptions[T])

type valueOptions[T any] struct {
	equal func(a, b T) bool
}

// WithEqual replaces the default identity predicate. Set is a no-op when
// equal(current, next) holds.
func WithEqual[T any](fn func(a, b T) bool) ValueOption[T] {
	return func(o *valueOptions[T]) {
		o.equal = fn
	}
}

func applyValueOptions[T any](opts []ValueOption[T]) valueOptions[T] {
	var o valueOptions[T]
	for _, opt := range opts {
		opt(&o)
	}
	if o.equal == nil {
		o.equal = Identical[T]
	}
	return o
}

// NewSignal creates a signal on rt (or the default runtime when rt is nil).
func NewSignal[T any](rt *Runtime, initial T, opts ...ValueOption[T]) *Signal[T] {
	o := applyValueOptions(opts)
	return &Signal[T]{
		base:  source{rt: orDefault(rt)},
		sid:   nextID(),
		value: initial,
		equal: o.equal,
	}
}

// Get returns the current value and subscribes the current effect.
func (s *Signal[T]) Get() T {
	s.base.track()
	return s.value
}

// Peek returns the current value without subscribing.
func (s *Signal[T]) Peek() T {
	return s.value
}

// Set stores value and synchronously notifies subscribers, unless it is
// equal to the current value.
func (s *Signal[T]) Set(value T) {
	if s.equal(s.value, value) {
		return
	}
	s.value = value
	s.base.notifySubscribers()
}

// Update sets the signal to fn applied to the current value.
func (s *Signal[T]) Update(fn func(T) T) {
	s.Set(fn(s.value))
}

// AsReadonly returns a read-only view of the signal.
func (s *Signal[T]) AsReadonly() *Readonly[T] {
	return &Readonly[T]{s: s}
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.sid
}

// GetAny implements Source.
func (s *Signal[T]) GetAny() any {
	return s.Get()
}

// SetAny implements Writable. Numeric values are converted to T when
// possible.
func (s *Signal[T]) SetAny(v any) error {
	typed, err := convert[T](v)
	if err != nil {
		return err
	}
	s.Set(typed)
	return nil
}

func (s *Signal[T]) String() string {
	return fmt.Sprintf("Signal(%v)", s.value)
}

// Readonly is a read-only view of a Signal.
type Readonly[T any] struct {
	s *Signal[T]
}

// Get returns the current value and subscribes the current effect.
func (r *Readonly[T]) Get() T { return r.s.Get() }

// Peek returns the current value without subscribing.
func (r *Readonly[T]) Peek() T { return r.s.Peek() }

// GetAny implements Source.
func (r *Readonly[T]) GetAny() any { return r.s.Get() }

// Identical is the default equality predicate: == for comparable values,
// reference identity for slices, maps, funcs and channels.
func Identical[T any](a, b T) bool {
	av, bv := any(a), any(b)
	if av == nil || bv == nil {
		return av == nil && bv == nil
	}
	ra, rb := reflect.ValueOf(av), reflect.ValueOf(bv)
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Slice:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	case reflect.Map, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	}
	if ra.Type().Comparable() {
		defer func() { _ = recover() }()
		return av == bv
	}
	return false
}

func convert[T any](v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	if typed, ok := v.(T); ok {
		return typed, nil
	}
	target := reflect.TypeOf((*T)(nil)).Elem()
	rv := reflect.ValueOf(v)
	if isNumeric(rv.Kind()) && isNumeric(target.Kind()) {
		return rv.Convert(target).Interface().(T), nil
	}
	if rv.Type().AssignableTo(target) {
		out := reflect.New(target).Elem()
		out.Set(rv)
		return out.Interface().(T), nil
	}
	return zero, fmt.Errorf("%w: have %T, want %s", ErrTypeMismatch, v, target)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
