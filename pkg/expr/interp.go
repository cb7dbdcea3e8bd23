package expr

import (
	"fmt"
	"math"
)

// Env is the evaluation environment of a Program.
type Env struct {
	Scope Scope
	Pipes PipeResolver
}

// Eval evaluates the program. Panics raised by Go code reached through the
// scope are returned as errors.
func (p *Program) Eval(env Env) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			if e, ok := r.(error); ok {
				err = wrapError(p.Src, -1, e)
				return
			}
			err = errorf(p.Src, -1, "panic: %v", r)
		}
	}()
	ev := &evaluator{env: env, src: p.Src}
	return ev.eval(p.Root)
}

// Eval compiles and evaluates src against scope.
func Eval(src string, scope Scope) (any, error) {
	prog, err := Compile(src)
	if err != nil {
		return nil, err
	}
	return prog.Eval(Env{Scope: scope})
}

type evaluator struct {
	env Env
	src string
}

// short is returned internally when a ?. hits nil so the remainder of the
// chain evaluates to nil.
type short struct{}

func (ev *evaluator) fail(n Node, err error) error {
	return wrapError(ev.src, n.Pos(), err)
}

func (ev *evaluator) eval(n Node) (any, error) {
	v, err := ev.evalChain(n)
	if _, ok := v.(short); ok {
		return nil, err
	}
	return v, err
}

// evalChain evaluates n, propagating the short-circuit marker through
// member, index and call chains.
func (ev *evaluator) evalChain(n Node) (any, error) {
	switch n := n.(type) {
	case *Literal:
		return n.Value, nil

	case *Ident:
		if ev.env.Scope != nil {
			if v, ok := ev.env.Scope.Lookup(n.Name); ok {
				return v, nil
			}
		}
		return nil, ev.fail(n, fmt.Errorf("%w: %s", ErrUndefined, n.Name))

	case *MemberExpr:
		obj, err := ev.evalChain(n.Object)
		if err != nil {
			return nil, err
		}
		if _, ok := obj.(short); ok {
			return obj, nil
		}
		if isNil(obj) {
			if n.Safe {
				return short{}, nil
			}
			return nil, ev.fail(n, fmt.Errorf("%w: reading %s", ErrNilReference, n.Name))
		}
		v, _ := Member(obj, n.Name)
		return v, nil

	case *IndexExpr:
		obj, err := ev.evalChain(n.Object)
		if err != nil {
			return nil, err
		}
		if _, ok := obj.(short); ok {
			return obj, nil
		}
		if isNil(obj) {
			if n.Safe {
				return short{}, nil
			}
			return nil, ev.fail(n, fmt.Errorf("%w: indexing", ErrNilReference))
		}
		key, err := ev.eval(n.Key)
		if err != nil {
			return nil, err
		}
		v, _ := Index(obj, key)
		return v, nil

	case *CallExpr:
		fn, err := ev.evalChain(n.Callee)
		if err != nil {
			return nil, err
		}
		if _, ok := fn.(short); ok {
			return fn, nil
		}
		if isNil(fn) && n.Safe {
			return short{}, nil
		}
		args, err := ev.evalList(n.Args)
		if err != nil {
			return nil, err
		}
		v, err := Call(fn, args...)
		if err != nil {
			return nil, ev.fail(n, err)
		}
		return v, nil

	case *Unary:
		x, err := ev.eval(n.X)
		if err != nil {
			return nil, err
		}
		switch n.Op {
		case "!":
			return !Truthy(x), nil
		case "-":
			return -ToNumber(x), nil
		default:
			return ToNumber(x), nil
		}

	case *Binary:
		return ev.binary(n)

	case *Conditional:
		cond, err := ev.eval(n.Cond)
		if err != nil {
			return nil, err
		}
		if Truthy(cond) {
			return ev.eval(n.Then)
		}
		return ev.eval(n.Else)

	case *ArrayLit:
		return ev.evalList(n.Elems)

	case *ObjectLit:
		obj := make(map[string]any, len(n.Keys))
		for i, key := range n.Keys {
			v, err := ev.eval(n.Values[i])
			if err != nil {
				return nil, err
			}
			obj[key] = v
		}
		return obj, nil

	case *Assign:
		return ev.assign(n)

	case *PipeExpr:
		x, err := ev.eval(n.X)
		if err != nil {
			return nil, err
		}
		args, err := ev.evalList(n.Args)
		if err != nil {
			return nil, err
		}
		pipe, ok := resolvePipe(ev.env.Pipes, n.Name)
		if !ok {
			return nil, ev.fail(n, fmt.Errorf("%w: %s", ErrUnknownPipe, n.Name))
		}
		v, err := pipe.Transform(x, args...)
		if err != nil {
			return nil, ev.fail(n, fmt.Errorf("pipe %s: %w", n.Name, err))
		}
		return v, nil

	case *Sequence:
		var last any
		for _, x := range n.Exprs {
			v, err := ev.eval(x)
			if err != nil {
				return nil, err
			}
			last = v
		}
		return last, nil
	}
	return nil, errorf(ev.src, n.Pos(), "unsupported node %T", n)
}

func (ev *evaluator) evalList(nodes []Node) ([]any, error) {
	out := make([]any, len(nodes))
	for i, x := range nodes {
		v, err := ev.eval(x)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (ev *evaluator) binary(n *Binary) (any, error) {
	left, err := ev.eval(n.Left)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "&&":
		if !Truthy(left) {
			return left, nil
		}
		return ev.eval(n.Right)
	case "||":
		if Truthy(left) {
			return left, nil
		}
		return ev.eval(n.Right)
	case "??":
		if !isNil(left) {
			return left, nil
		}
		return ev.eval(n.Right)
	}

	right, err := ev.eval(n.Right)
	if err != nil {
		return nil, err
	}
	switch n.Op {
	case "+":
		if isString(left) || isString(right) {
			return ToString(left) + ToString(right), nil
		}
		return ToNumber(left) + ToNumber(right), nil
	case "-":
		return ToNumber(left) - ToNumber(right), nil
	case "*":
		return ToNumber(left) * ToNumber(right), nil
	case "/":
		return ToNumber(left) / ToNumber(right), nil
	case "%":
		return math.Mod(ToNumber(left), ToNumber(right)), nil
	case "==":
		return LooseEqual(left, right), nil
	case "!=":
		return !LooseEqual(left, right), nil
	case "===":
		return StrictEqual(left, right), nil
	case "!==":
		return !StrictEqual(left, right), nil
	case "<", ">", "<=", ">=":
		return compare(n.Op, left, right), nil
	}
	return nil, errorf(ev.src, n.At, "unknown operator %q", n.Op)
}

func compare(op string, left, right any) bool {
	if isString(left) && isString(right) {
		a, b := ToString(left), ToString(right)
		switch op {
		case "<":
			return a < b
		case ">":
			return a > b
		case "<=":
			return a <= b
		default:
			return a >= b
		}
	}
	a, b := ToNumber(left), ToNumber(right)
	switch op {
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	default:
		return a >= b
	}
}

func (ev *evaluator) assign(n *Assign) (any, error) {
	value, err := ev.eval(n.Value)
	if err != nil {
		return nil, err
	}
	switch target := n.Target.(type) {
	case *Ident:
		if ev.env.Scope == nil || !ev.env.Scope.Assign(target.Name, value) {
			return nil, ev.fail(n, fmt.Errorf("%w: %s", ErrNotAssignable, target.Name))
		}
	case *MemberExpr:
		obj, err := ev.eval(target.Object)
		if err != nil {
			return nil, err
		}
		if err := SetMember(obj, target.Name, value); err != nil {
			return nil, ev.fail(n, err)
		}
	case *IndexExpr:
		obj, err := ev.eval(target.Object)
		if err != nil {
			return nil, err
		}
		key, err := ev.eval(target.Key)
		if err != nil {
			return nil, err
		}
		if err := SetIndex(obj, key, value); err != nil {
			return nil, ev.fail(n, err)
		}
	default:
		return nil, ev.fail(n, ErrNotAssignable)
	}
	return value, nil
}
