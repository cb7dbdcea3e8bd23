// Package dom is a small in-process document model.
//
// It implements the subset of the DOM that the Lumen runtime drives: element,
// text, comment and fragment nodes; attributes, JS-style properties, inline
// style and class lists; bubbling events; custom-element definitions with
// connected/disconnected callbacks; open shadow roots; and compound CSS
// selector matching.
//
// Templates are parsed with golang.org/x/net/html, so the HTML5 tree
// construction rules apply (for example, <select> drops non-option element
// children). Documents serialize back to HTML through the same package,
// with shadow roots emitted as declarative <template shadowrootmode="open">
// children.
//
// The model is not safe for concurrent use.
package dom
