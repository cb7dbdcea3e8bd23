// Package expr evaluates template expressions.
//
// Expressions are tokenized, parsed with a Pratt parser into a small AST
// and interpreted against a Scope. Values are dynamic: numbers are float64
// after arithmetic, strings, bools, nil, []any and map[string]any literals,
// plus arbitrary Go values reached through the scope (structs, pointers,
// maps, slices, funcs and reactive sources).
//
// Identifiers and members resolve map keys first, then struct fields and
// methods by exact name or with the first letter upper-cased, so a template
// written as `user.name` reads the Name field of a Go struct. Calling a
// reactive source with no arguments reads it, which is how `count()`
// subscribes the running effect to a signal.
//
//	prog, err := expr.Compile("items().length > 0 ? first | uppercase : 'none'")
//	v, err := prog.Eval(expr.Env{Scope: scope})
package expr
