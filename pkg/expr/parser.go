package expr

import "sync"

// Program is a parsed expression ready for evaluation.
type Program struct {
	Src  string
	Root Node
}

var binaryPrecedence = map[string]int{
	"??":  1,
	"||":  2,
	"&&":  3,
	"==":  4,
	"!=":  4,
	"===": 4,
	"!==": 4,
	"<":   5,
	">":   5,
	"<=":  5,
	">=":  5,
	"+":   6,
	"-":   6,
	"*":   7,
	"/":   7,
	"%":   7,
}

type parser struct {
	src    string
	tokens []Token
	pos    int
}

// Parse parses src into a Program without consulting the cache.
func Parse(src string) (*Program, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, tokens: tokens}
	root, err := p.parseSequence()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Kind != TokenEOF {
		return nil, p.unexpected(tok)
	}
	return &Program{Src: src, Root: root}, nil
}

const maxCacheEntries = 4096

var (
	cacheMu sync.RWMutex
	cache   = make(map[string]*Program)
)

// Compile parses src, reusing a previously parsed Program for the same
// source. Parse errors are not cached.
func Compile(src string) (*Program, error) {
	cacheMu.RLock()
	prog, ok := cache[src]
	cacheMu.RUnlock()
	if ok {
		return prog, nil
	}

	prog, err := Parse(src)
	if err != nil {
		return nil, err
	}

	cacheMu.Lock()
	if len(cache) >= maxCacheEntries {
		cache = make(map[string]*Program)
	}
	cache[src] = prog
	cacheMu.Unlock()
	return prog, nil
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	tok := p.tokens[p.pos]
	if tok.Kind != TokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) isOp(text string) bool {
	tok := p.peek()
	return tok.Kind == TokenOperator && tok.Text == text
}

func (p *parser) accept(text string) bool {
	if p.isOp(text) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(text string) error {
	if !p.accept(text) {
		tok := p.peek()
		if tok.Kind == TokenEOF {
			return errorf(p.src, tok.Pos, "expected %q, got end of input", text)
		}
		return errorf(p.src, tok.Pos, "expected %q, got %q", text, tok.Text)
	}
	return nil
}

func (p *parser) unexpected(tok Token) error {
	if tok.Kind == TokenEOF {
		return errorf(p.src, tok.Pos, "unexpected end of input")
	}
	return errorf(p.src, tok.Pos, "unexpected token %q", tok.Text)
}

func (p *parser) parseSequence() (Node, error) {
	start := p.peek().Pos
	var exprs []Node
	for {
		for p.accept(";") {
		}
		if p.peek().Kind == TokenEOF {
			break
		}
		x, err := p.parsePipe()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, x)
		if !p.isOp(";") {
			break
		}
	}
	switch len(exprs) {
	case 0:
		return nil, errorf(p.src, start, "empty expression")
	case 1:
		return exprs[0], nil
	}
	return &Sequence{At: start, Exprs: exprs}, nil
}

func (p *parser) parsePipe() (Node, error) {
	x, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	for p.isOp("|") {
		at := p.next().Pos
		name := p.next()
		if name.Kind != TokenIdentifier {
			return nil, errorf(p.src, name.Pos, "expected pipe name")
		}
		pipe := &PipeExpr{At: at, X: x, Name: name.Text}
		for p.accept(":") {
			arg, err := p.parseConditional()
			if err != nil {
				return nil, err
			}
			pipe.Args = append(pipe.Args, arg)
		}
		x = pipe
	}
	return x, nil
}

func (p *parser) parseAssign() (Node, error) {
	left, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	if !p.isOp("=") {
		return left, nil
	}
	at := p.next().Pos
	switch left.(type) {
	case *Ident, *MemberExpr, *IndexExpr:
	default:
		return nil, errorf(p.src, at, "invalid assignment target")
	}
	right, err := p.parseAssign()
	if err != nil {
		return nil, err
	}
	return &Assign{At: at, Target: left, Value: right}, nil
}

func (p *parser) parseConditional() (Node, error) {
	cond, err := p.parseBinary(0)
	if err != nil {
		return nil, err
	}
	if !p.isOp("?") {
		return cond, nil
	}
	at := p.next().Pos
	then, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	els, err := p.parseConditional()
	if err != nil {
		return nil, err
	}
	return &Conditional{At: at, Cond: cond, Then: then, Else: els}, nil
}

func (p *parser) parseBinary(minPrec int) (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.Kind != TokenOperator {
			return left, nil
		}
		prec, ok := binaryPrecedence[tok.Text]
		if !ok || prec <= minPrec {
			return left, nil
		}
		p.next()
		right, err := p.parseBinary(prec)
		if err != nil {
			return nil, err
		}
		left = &Binary{At: tok.Pos, Op: tok.Text, Left: left, Right: right}
	}
}

func (p *parser) parseUnary() (Node, error) {
	tok := p.peek()
	if tok.Kind == TokenOperator && (tok.Text == "!" || tok.Text == "-" || tok.Text == "+") {
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{At: tok.Pos, Op: tok.Text, X: x}, nil
	}
	x, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parsePostfix(x)
}

func (p *parser) parsePostfix(x Node) (Node, error) {
	for {
		tok := p.peek()
		if tok.Kind != TokenOperator {
			return x, nil
		}
		switch tok.Text {
		case ".":
			p.next()
			name := p.next()
			if name.Kind != TokenIdentifier {
				return nil, errorf(p.src, name.Pos, "expected property name")
			}
			x = &MemberExpr{At: tok.Pos, Object: x, Name: name.Text}
		case "?.":
			p.next()
			switch {
			case p.isOp("["):
				p.next()
				key, err := p.parsePipe()
				if err != nil {
					return nil, err
				}
				if err := p.expect("]"); err != nil {
					return nil, err
				}
				x = &IndexExpr{At: tok.Pos, Object: x, Key: key, Safe: true}
			case p.isOp("("):
				p.next()
				args, err := p.parseArgs(")")
				if err != nil {
					return nil, err
				}
				x = &CallExpr{At: tok.Pos, Callee: x, Args: args, Safe: true}
			default:
				name := p.next()
				if name.Kind != TokenIdentifier {
					return nil, errorf(p.src, name.Pos, "expected property name")
				}
				x = &MemberExpr{At: tok.Pos, Object: x, Name: name.Text, Safe: true}
			}
		case "[":
			p.next()
			key, err := p.parsePipe()
			if err != nil {
				return nil, err
			}
			if err := p.expect("]"); err != nil {
				return nil, err
			}
			x = &IndexExpr{At: tok.Pos, Object: x, Key: key}
		case "(":
			p.next()
			args, err := p.parseArgs(")")
			if err != nil {
				return nil, err
			}
			x = &CallExpr{At: tok.Pos, Callee: x, Args: args}
		default:
			return x, nil
		}
	}
}

func (p *parser) parseArgs(closer string) ([]Node, error) {
	var args []Node
	if p.accept(closer) {
		return args, nil
	}
	for {
		arg, err := p.parsePipe()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.accept(closer) {
			return args, nil
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
		if p.accept(closer) {
			return args, nil
		}
	}
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.next()
	switch tok.Kind {
	case TokenNumber:
		return &Literal{At: tok.Pos, Value: tok.Num}, nil
	case TokenString:
		return &Literal{At: tok.Pos, Value: tok.Text}, nil
	case TokenIdentifier:
		switch tok.Text {
		case "true":
			return &Literal{At: tok.Pos, Value: true}, nil
		case "false":
			return &Literal{At: tok.Pos, Value: false}, nil
		case "null", "undefined":
			return &Literal{At: tok.Pos, Value: nil}, nil
		}
		return &Ident{At: tok.Pos, Name: tok.Text}, nil
	case TokenOperator:
		switch tok.Text {
		case "(":
			x, err := p.parsePipe()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return x, nil
		case "[":
			elems, err := p.parseArgs("]")
			if err != nil {
				return nil, err
			}
			return &ArrayLit{At: tok.Pos, Elems: elems}, nil
		case "{":
			return p.parseObject(tok.Pos)
		}
	}
	return nil, p.unexpected(tok)
}

func (p *parser) parseObject(at int) (Node, error) {
	obj := &ObjectLit{At: at}
	if p.accept("}") {
		return obj, nil
	}
	for {
		key := p.next()
		switch key.Kind {
		case TokenIdentifier, TokenString, TokenNumber:
		default:
			return nil, errorf(p.src, key.Pos, "expected object key")
		}
		var value Node
		if p.accept(":") {
			v, err := p.parsePipe()
			if err != nil {
				return nil, err
			}
			value = v
		} else if key.Kind == TokenIdentifier {
			value = &Ident{At: key.Pos, Name: key.Text}
		} else {
			return nil, errorf(p.src, key.Pos, "expected ':'")
		}
		obj.Keys = append(obj.Keys, key.Text)
		obj.Values = append(obj.Values, value)
		if p.accept("}") {
			return obj, nil
		}
		if err := p.expect(","); err != nil {
			return nil, err
		}
		if p.accept("}") {
			return obj, nil
		}
	}
}
