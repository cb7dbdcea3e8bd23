// Package binding connects template attributes to component state.
//
// A Context is a persistent chain of frames ending at the component
// instance. Loop and conditional frames are attached to DOM nodes in a
// Registry; an expression on an element resolves against the nearest
// attached frame and falls back to the instance.
//
// The Binder reads the binding attributes of an element and wires each
// one through its own reactive effect:
//
//	[attr.x]   attribute set or removed
//	[style.x]  style property set or removed
//	[class.x]  class token toggled by truthiness
//	[x]        DOM property, or input signal on a custom element
//	(x)        event listener with $event in scope
//	{{ e }}    text interpolation
//
// Expression failures never reach the caller. The binding is skipped for
// that pass and the failure is logged at debug level.
package binding
