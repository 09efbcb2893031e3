package template

import (
	"fmt"
	"strings"

	"github.com/simonhull/firebird-suite/plume/internal/config"
)

// Condition is a compiled template directive expression.
//
// The grammar is deliberately tiny. Conditions test enumerated options
// against bare values and combine with boolean operators:
//
//	host == vercel
//	apiStyle != graphql
//	host in (vercel, heroku)
//	host == vercel && (apiStyle == trpc || database == postgres)
//
// Evaluation is pure: the same context always yields the same result.
// An option absent from the context (an omitted dependent option)
// evaluates as the empty value, so == is false and != is true.
type Condition struct {
	root condNode
	raw  string
}

// String returns the original expression text.
func (c *Condition) String() string {
	return c.raw
}

// Eval evaluates the condition against a resolved context.
func (c *Condition) Eval(ctx *config.Context) bool {
	return c.root.eval(ctx.Value)
}

// Problems validates every comparison against the option table: the
// option must exist, must be enumerated, and every compared value must
// be inside its domain. Returns one message per problem, empty when the
// condition is valid.
func (c *Condition) Problems() []string {
	var probs []string
	walkCond(c.root, func(n *cmpNode) {
		opt, ok := config.Lookup(n.option)
		if !ok {
			probs = append(probs, fmt.Sprintf("unknown option %q", n.option))
			return
		}
		if !opt.Enumerated() {
			probs = append(probs, fmt.Sprintf("option %q is not enumerated and cannot be tested", n.option))
			return
		}
		for _, v := range n.values {
			if !opt.Allows(v) {
				probs = append(probs, fmt.Sprintf("option %q has no value %q (allowed: %s)",
					n.option, v, strings.Join(opt.Values, ", ")))
			}
		}
	})
	return probs
}

// ParseCondition compiles an expression. Syntax errors describe the
// offending token; the caller adds file and line context.
func ParseCondition(input string) (*Condition, error) {
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("empty condition")
	}

	toks, err := lexCondition(input)
	if err != nil {
		return nil, err
	}

	p := &condParser{toks: toks}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tkEOF {
		return nil, fmt.Errorf("unexpected %q after expression", tok.text)
	}

	return &Condition{root: root, raw: input}, nil
}

// condNode is one node of the parsed expression tree.
type condNode interface {
	eval(get func(name string) string) bool
}

type orNode struct{ left, right condNode }

func (n *orNode) eval(get func(string) string) bool {
	return n.left.eval(get) || n.right.eval(get)
}

type andNode struct{ left, right condNode }

func (n *andNode) eval(get func(string) string) bool {
	return n.left.eval(get) && n.right.eval(get)
}

// cmpNode compares one option against one or more values. With negate
// unset and a single value it is ==; negate makes it !=; multiple
// values form an "in" membership test.
type cmpNode struct {
	option string
	negate bool
	values []string
}

func (n *cmpNode) eval(get func(string) string) bool {
	current := get(n.option)
	for _, v := range n.values {
		if current == v {
			return !n.negate
		}
	}
	return n.negate
}

func walkCond(n condNode, visit func(*cmpNode)) {
	switch node := n.(type) {
	case *orNode:
		walkCond(node.left, visit)
		walkCond(node.right, visit)
	case *andNode:
		walkCond(node.left, visit)
		walkCond(node.right, visit)
	case *cmpNode:
		visit(node)
	}
}

// Lexer.

type condTokenKind int

const (
	tkEOF condTokenKind = iota
	tkWord
	tkEq
	tkNeq
	tkAnd
	tkOr
	tkLParen
	tkRParen
	tkComma
)

type condToken struct {
	kind condTokenKind
	text string
}

func lexCondition(input string) ([]condToken, error) {
	var toks []condToken

	i := 0
	for i < len(input) {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t':
			i++
		case ch == '(':
			toks = append(toks, condToken{tkLParen, "("})
			i++
		case ch == ')':
			toks = append(toks, condToken{tkRParen, ")"})
			i++
		case ch == ',':
			toks = append(toks, condToken{tkComma, ","})
			i++
		case ch == '=':
			if i+1 < len(input) && input[i+1] == '=' {
				toks = append(toks, condToken{tkEq, "=="})
				i += 2
			} else {
				return nil, fmt.Errorf("expected == at offset %d", i)
			}
		case ch == '!':
			if i+1 < len(input) && input[i+1] == '=' {
				toks = append(toks, condToken{tkNeq, "!="})
				i += 2
			} else {
				return nil, fmt.Errorf("expected != at offset %d", i)
			}
		case ch == '&':
			if i+1 < len(input) && input[i+1] == '&' {
				toks = append(toks, condToken{tkAnd, "&&"})
				i += 2
			} else {
				return nil, fmt.Errorf("expected && at offset %d", i)
			}
		case ch == '|':
			if i+1 < len(input) && input[i+1] == '|' {
				toks = append(toks, condToken{tkOr, "||"})
				i += 2
			} else {
				return nil, fmt.Errorf("expected || at offset %d", i)
			}
		case isCondWordChar(ch):
			j := i
			for j < len(input) && isCondWordChar(input[j]) {
				j++
			}
			toks = append(toks, condToken{tkWord, input[i:j]})
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q at offset %d", string(ch), i)
		}
	}

	return append(toks, condToken{kind: tkEOF}), nil
}

func isCondWordChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_' || c == '.' || c == '@':
		return true
	}
	return false
}

// Parser.

type condParser struct {
	toks []condToken
	pos  int
}

func (p *condParser) peek() condToken {
	return p.toks[p.pos]
}

func (p *condParser) advance() condToken {
	tok := p.toks[p.pos]
	if tok.kind != tkEOF {
		p.pos++
	}
	return tok
}

func (p *condParser) parseOr() (condNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tkOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &orNode{left: left, right: right}
	}
	return left, nil
}

func (p *condParser) parseAnd() (condNode, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tkAnd {
		p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &andNode{left: left, right: right}
	}
	return left, nil
}

func (p *condParser) parseTerm() (condNode, error) {
	if p.peek().kind == tkLParen {
		p.advance()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tkRParen {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		p.advance()
		return expr, nil
	}
	return p.parseCmp()
}

func (p *condParser) parseCmp() (condNode, error) {
	tok := p.advance()
	if tok.kind != tkWord {
		return nil, fmt.Errorf("expected option name, got %q", tok.text)
	}
	option := tok.text

	op := p.advance()
	switch {
	case op.kind == tkEq || op.kind == tkNeq:
		value := p.advance()
		if value.kind != tkWord {
			return nil, fmt.Errorf("expected value after %q, got %q", op.text, value.text)
		}
		return &cmpNode{option: option, negate: op.kind == tkNeq, values: []string{value.text}}, nil

	case op.kind == tkWord && op.text == "in":
		if p.peek().kind != tkLParen {
			return nil, fmt.Errorf("expected ( after in")
		}
		p.advance()

		var values []string
		for {
			value := p.advance()
			if value.kind != tkWord {
				return nil, fmt.Errorf("expected value in list, got %q", value.text)
			}
			values = append(values, value.text)

			next := p.advance()
			if next.kind == tkComma {
				continue
			}
			if next.kind == tkRParen {
				break
			}
			return nil, fmt.Errorf("expected , or ) in value list, got %q", next.text)
		}
		return &cmpNode{option: option, values: values}, nil

	default:
		return nil, fmt.Errorf("expected ==, != or in after %q", option)
	}
}
