// Package formula evaluates user-authored arithmetic expressions over a
// fixed variable vocabulary.
//
// The evaluator is a closed interpreter: tokenizer, recursive-descent
// parser, tagged AST, evaluation against a caller-supplied variable map.
// Nothing beyond + - * / ( ), numeric literals and the named variables
// can execute, which makes it safe on untrusted formula text. It fails
// closed: any lex, parse or evaluation problem returns an error, never a
// silent zero.
package formula

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Canonical variable names available to custom formulas.
const (
	VarTotalCost        = "totalCost"
	VarTotalConsumption = "totalConsumption"
	VarUnitConsumption  = "unitConsumption"
	VarOwnShare         = "ownShare"
	VarUnitArea         = "unitArea"
	VarTotalArea        = "totalArea"
	VarUnitResidents    = "unitResidents"
	VarTotalResidents   = "totalResidents"
)

// Evaluate parses and evaluates a formula against the supplied
// variables. Unknown identifiers and division by zero are errors.
func Evaluate(text string, vars map[string]float64) (float64, error) {
	node, err := Parse(text)
	if err != nil {
		return 0, err
	}
	return node.Eval(vars)
}

// Node is an evaluable AST node.
type Node interface {
	Eval(vars map[string]float64) (float64, error)
}

type literal struct {
	value float64
}

func (n literal) Eval(map[string]float64) (float64, error) {
	return n.value, nil
}

type variable struct {
	name string
}

func (n variable) Eval(vars map[string]float64) (float64, error) {
	v, ok := vars[n.name]
	if !ok {
		return 0, fmt.Errorf("unknown variable %q", n.name)
	}
	return v, nil
}

type binary struct {
	op          byte
	left, right Node
}

func (n binary) Eval(vars map[string]float64) (float64, error) {
	l, err := n.left.Eval(vars)
	if err != nil {
		return 0, err
	}
	r, err := n.right.Eval(vars)
	if err != nil {
		return 0, err
	}
	switch n.op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	case '/':
		if r == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return l / r, nil
	}
	return 0, fmt.Errorf("unknown operator %q", string(n.op))
}

type negate struct {
	operand Node
}

func (n negate) Eval(vars map[string]float64) (float64, error) {
	v, err := n.operand.Eval(vars)
	if err != nil {
		return 0, err
	}
	return -v, nil
}

// tokenKind discriminates lexer output.
type tokenKind int

const (
	tokNumber tokenKind = iota
	tokIdent
	tokOp    // + - * /
	tokLParen
	tokRParen
	tokEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func lex(input string) ([]token, error) {
	var tokens []token
	runes := []rune(input)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == '+' || r == '-' || r == '*' || r == '/':
			tokens = append(tokens, token{kind: tokOp, text: string(r), pos: i})
			i++
		case unicode.IsDigit(r):
			start := i
			seenSep := false
			for i < len(runes) && (unicode.IsDigit(runes[i]) || ((runes[i] == '.' || runes[i] == ',') && !seenSep)) {
				if runes[i] == '.' || runes[i] == ',' {
					seenSep = true
				}
				i++
			}
			text := strings.ReplaceAll(string(runes[start:i]), ",", ".")
			tokens = append(tokens, token{kind: tokNumber, text: text, pos: start})
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, text: string(runes[start:i]), pos: start})
		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", string(r), i)
		}
	}
	tokens = append(tokens, token{kind: tokEOF, pos: len(runes)})
	return tokens, nil
}

// Parse tokenizes and parses formula text into an AST.
func Parse(text string) (Node, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty formula")
	}
	tokens, err := lex(text)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokEOF {
		return nil, fmt.Errorf("unexpected %q at position %d", p.peek().text, p.peek().pos)
	}
	return node, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

// parseExpr handles + and -.
func (p *parser) parseExpr() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "+" && t.text != "-") {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binary{op: t.text[0], left: left, right: right}
	}
}

// parseTerm handles * and /.
func (p *parser) parseTerm() (Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp || (t.text != "*" && t.text != "/") {
			return left, nil
		}
		p.next()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = binary{op: t.text[0], left: left, right: right}
	}
}

// parseFactor handles literals, variables, parentheses and unary signs.
func (p *parser) parseFactor() (Node, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		v, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q at position %d", t.text, t.pos)
		}
		return literal{value: v}, nil
	case tokIdent:
		return variable{name: t.text}, nil
	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, fmt.Errorf("missing closing parenthesis at position %d", closing.pos)
		}
		return inner, nil
	case tokOp:
		if t.text == "-" {
			operand, err := p.parseFactor()
			if err != nil {
				return nil, err
			}
			return negate{operand: operand}, nil
		}
		if t.text == "+" {
			return p.parseFactor()
		}
	}
	return nil, fmt.Errorf("unexpected %q at position %d", t.text, t.pos)
}
