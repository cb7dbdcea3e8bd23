package expr

// Node is an expression AST node.
type Node interface {
	Pos() int
}

type (
	// Literal is a constant: nil, bool, float64 or string.
	Literal struct {
		At    int
		Value any
	}

	// Ident is a name resolved against the scope.
	Ident struct {
		At   int
		Name string
	}

	// MemberExpr is obj.name or obj?.name.
	MemberExpr struct {
		At     int
		Object Node
		Name   string
		Safe   bool
	}

	// IndexExpr is obj[key] or obj?.[key].
	IndexExpr struct {
		At     int
		Object Node
		Key    Node
		Safe   bool
	}

	// CallExpr is fn(args) or fn?.(args).
	CallExpr struct {
		At     int
		Callee Node
		Args   []Node
		Safe   bool
	}

	// Unary is a prefix operator: ! - +.
	Unary struct {
		At int
		Op string
		X  Node
	}

	// Binary is an infix operator including && || and ??.
	Binary struct {
		At    int
		Op    string
		Left  Node
		Right Node
	}

	// Conditional is cond ? then : else.
	Conditional struct {
		At   int
		Cond Node
		Then Node
		Else Node
	}

	// ArrayLit is [a, b, c].
	ArrayLit struct {
		At    int
		Elems []Node
	}

	// ObjectLit is {a: 1, 'b': 2}.
	ObjectLit struct {
		At     int
		Keys   []string
		Values []Node
	}

	// Assign is target = value. Targets are identifiers, members and
	// index expressions.
	Assign struct {
		At     int
		Target Node
		Value  Node
	}

	// PipeExpr is value | name:arg1:arg2.
	PipeExpr struct {
		At   int
		X    Node
		Name string
		Args []Node
	}

	// Sequence is a;b;c, evaluating to the last value.
	Sequence struct {
		At    int
		Exprs []Node
	}
)

func (n *Literal) Pos() int     { return n.At }
func (n *Ident) Pos() int       { return n.At }
func (n *MemberExpr) Pos() int  { return n.At }
func (n *IndexExpr) Pos() int   { return n.At }
func (n *CallExpr) Pos() int    { return n.At }
func (n *Unary) Pos() int       { return n.At }
func (n *Binary) Pos() int      { return n.At }
func (n *Conditional) Pos() int { return n.At }
func (n *ArrayLit) Pos() int    { return n.At }
func (n *ObjectLit) Pos() int   { return n.At }
func (n *Assign) Pos() int      { return n.At }
func (n *PipeExpr) Pos() int    { return n.At }
func (n *Sequence) Pos() int    { return n.At }
