package expr

import (
	"strconv"
	"strings"
)

// TokenKind is the type of a token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenIdentifier
	TokenNumber
	TokenString
	TokenOperator
)

// String returns the string representation of the TokenKind.
func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "EOF"
	case TokenIdentifier:
		return "identifier"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	case TokenOperator:
		return "operator"
	default:
		return "unknown"
	}
}

// Token is a lexical token.
type Token struct {
	Kind TokenKind
	Pos  int
	Text string
	Num  float64
}

// operators are matched longest first.
var operators = []string{
	"===", "!==", "?.", "??", "==", "!=", "<=", ">=", "&&", "||",
	"+", "-", "*", "/", "%", "<", ">", "!", "=", "?", ":", ";", ",", ".",
	"(", ")", "[", "]", "{", "}", "|",
}

// Tokenize splits src into tokens. The final token is always TokenEOF.
func Tokenize(src string) ([]Token, error) {
	var tokens []Token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == 0xa0:
			i++
		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			tokens = append(tokens, Token{Kind: TokenIdentifier, Pos: start, Text: src[start:i]})
		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			start := i
			i = scanNumber(src, i)
			text := src[start:i]
			n, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, errorf(src, start, "invalid number %q", text)
			}
			tokens = append(tokens, Token{Kind: TokenNumber, Pos: start, Text: text, Num: n})
		case c == '\'' || c == '"':
			start := i
			text, next, err := scanString(src, i)
			if err != nil {
				return nil, err
			}
			i = next
			tokens = append(tokens, Token{Kind: TokenString, Pos: start, Text: text})
		default:
			op := matchOperator(src[i:])
			if op == "" {
				return nil, errorf(src, i, "unexpected character %q", c)
			}
			// "?." followed by a digit is a ternary and a number: a?.5:1
			if op == "?." && i+2 < len(src) && isDigit(src[i+2]) {
				op = "?"
			}
			tokens = append(tokens, Token{Kind: TokenOperator, Pos: i, Text: op})
			i += len(op)
		}
	}
	tokens = append(tokens, Token{Kind: TokenEOF, Pos: len(src)})
	return tokens, nil
}

func matchOperator(s string) string {
	for _, op := range operators {
		if strings.HasPrefix(s, op) {
			return op
		}
	}
	return ""
}

func scanNumber(src string, i int) int {
	for i < len(src) && isDigit(src[i]) {
		i++
	}
	if i < len(src) && src[i] == '.' {
		i++
		for i < len(src) && isDigit(src[i]) {
			i++
		}
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && isDigit(src[j]) {
			i = j
			for i < len(src) && isDigit(src[i]) {
				i++
			}
		}
	}
	return i
}

func scanString(src string, start int) (string, int, error) {
	quote := src[start]
	var b strings.Builder
	i := start + 1
	for i < len(src) {
		c := src[i]
		switch {
		case c == quote:
			return b.String(), i + 1, nil
		case c == '\\':
			if i+1 >= len(src) {
				return "", 0, errorf(src, i, "unterminated escape")
			}
			i++
			switch esc := src[i]; esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case 'u':
				if i+4 >= len(src) {
					return "", 0, errorf(src, i, "invalid unicode escape")
				}
				r, err := strconv.ParseUint(src[i+1:i+5], 16, 32)
				if err != nil {
					return "", 0, errorf(src, i, "invalid unicode escape")
				}
				b.WriteRune(rune(r))
				i += 4
			default:
				b.WriteByte(esc)
			}
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return "", 0, errorf(src, start, "unterminated string")
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
