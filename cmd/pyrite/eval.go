// eval.go: the toy expression language of the REPL
//
// Just enough surface to poke at the runtime from a prompt: literals,
// names, attribute access and assignment, calls, unary minus and the
// three arithmetic operators. Everything else lives in the runtime
// package; this file only parses and delegates.
package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/pyrite-lang/pyrite"
)

type env map[string]any

func newEnv() env {
	e := env{
		"None":  pyrite.None,
		"True":  true,
		"False": false,
	}
	for _, t := range pyrite.Builtins() {
		e[t.Name()] = t
	}
	return e
}

// evalLine runs one REPL statement and reports the value to print, if
// any (assignments and deletions print nothing).
func evalLine(e env, src string) (any, bool, error) {
	p := &parser{src: src}
	p.next()

	if p.tok == tokName && p.lit == "del" {
		p.next()
		obj, name, isAttr, err := p.parseTarget(e)
		if err != nil {
			return nil, false, err
		}
		if err := p.expectEnd(); err != nil {
			return nil, false, err
		}
		if isAttr {
			return nil, false, pyrite.DelAttr(obj, name)
		}
		if _, ok := e[name]; !ok {
			return nil, false, fmt.Errorf("name '%s' is not defined", name)
		}
		delete(e, name)
		return nil, false, nil
	}

	// Try the line as an assignment first: parse a target, look for '='.
	save := *p
	if obj, name, isAttr, err := p.parseTarget(e); err == nil && p.tok == tokAssign {
		p.next()
		value, verr := p.parseExpr(e)
		if verr != nil {
			return nil, false, verr
		}
		if err := p.expectEnd(); err != nil {
			return nil, false, err
		}
		if isAttr {
			return nil, false, pyrite.SetAttr(obj, name, value)
		}
		e[name] = value
		return nil, false, nil
	}
	*p = save

	v, err := p.parseExpr(e)
	if err != nil {
		return nil, false, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// ---------------------------------------------------------------------
// Tokens

type token int

const (
	tokEOF token = iota
	tokName
	tokInt
	tokFloat
	tokString
	tokDot
	tokComma
	tokLParen
	tokRParen
	tokAssign
	tokPlus
	tokMinus
	tokStar
)

type parser struct {
	src string
	pos int
	tok token
	lit string
}

func (p *parser) next() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
	if p.pos >= len(p.src) {
		p.tok, p.lit = tokEOF, ""
		return
	}
	c := p.src[p.pos]
	switch {
	case c == '.':
		p.pos++
		p.tok = tokDot
	case c == ',':
		p.pos++
		p.tok = tokComma
	case c == '(':
		p.pos++
		p.tok = tokLParen
	case c == ')':
		p.pos++
		p.tok = tokRParen
	case c == '=':
		p.pos++
		p.tok = tokAssign
	case c == '+':
		p.pos++
		p.tok = tokPlus
	case c == '-':
		p.pos++
		p.tok = tokMinus
	case c == '*':
		p.pos++
		p.tok = tokStar
	case c == '"' || c == '\'':
		p.scanString(c)
	case c >= '0' && c <= '9':
		p.scanNumber()
	case c == '_' || unicode.IsLetter(rune(c)):
		start := p.pos
		for p.pos < len(p.src) {
			r := rune(p.src[p.pos])
			if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				break
			}
			p.pos++
		}
		p.tok, p.lit = tokName, p.src[start:p.pos]
	default:
		p.tok, p.lit = tokEOF, ""
		p.src = p.src[:p.pos] // force an "unexpected" later
	}
}

func (p *parser) scanString(quote byte) {
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) && p.src[p.pos] != quote {
		c := p.src[p.pos]
		if c == '\\' && p.pos+1 < len(p.src) {
			p.pos++
			switch p.src[p.pos] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(p.src[p.pos])
			}
		} else {
			b.WriteByte(c)
		}
		p.pos++
	}
	if p.pos < len(p.src) {
		p.pos++ // closing quote
	}
	p.tok, p.lit = tokString, b.String()
}

func (p *parser) scanNumber() {
	start := p.pos
	isFloat := false
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '.' && !isFloat {
			isFloat = true
		} else if c < '0' || c > '9' {
			break
		}
		p.pos++
	}
	p.lit = p.src[start:p.pos]
	if isFloat {
		p.tok = tokFloat
	} else {
		p.tok = tokInt
	}
}

func (p *parser) expectEnd() error {
	if p.tok != tokEOF {
		return errors.New("unexpected trailing input")
	}
	return nil
}

// ---------------------------------------------------------------------
// Parsing and evaluation, fused

func (p *parser) parseExpr(e env) (any, error) {
	v, err := p.parseTerm(e)
	if err != nil {
		return nil, err
	}
	for p.tok == tokPlus || p.tok == tokMinus {
		op := p.tok
		p.next()
		w, err := p.parseTerm(e)
		if err != nil {
			return nil, err
		}
		if op == tokPlus {
			v, err = pyrite.Add(v, w)
		} else {
			v, err = pyrite.Sub(v, w)
		}
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (p *parser) parseTerm(e env) (any, error) {
	v, err := p.parseUnary(e)
	if err != nil {
		return nil, err
	}
	for p.tok == tokStar {
		p.next()
		w, err := p.parseUnary(e)
		if err != nil {
			return nil, err
		}
		if v, err = pyrite.Mul(v, w); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (p *parser) parseUnary(e env) (any, error) {
	if p.tok == tokMinus {
		p.next()
		v, err := p.parseUnary(e)
		if err != nil {
			return nil, err
		}
		return pyrite.Neg(v)
	}
	return p.parsePostfix(e)
}

func (p *parser) parsePostfix(e env) (any, error) {
	v, err := p.parseAtom(e)
	if err != nil {
		return nil, err
	}
	for {
		switch p.tok {
		case tokDot:
			p.next()
			if p.tok != tokName {
				return nil, errors.New("expected attribute name after '.'")
			}
			name := p.lit
			p.next()
			if v, err = pyrite.GetAttr(v, name); err != nil {
				return nil, err
			}
		case tokLParen:
			args, err := p.parseArgs(e)
			if err != nil {
				return nil, err
			}
			if v, err = pyrite.Call(v, args, nil); err != nil {
				return nil, err
			}
		default:
			return v, nil
		}
	}
}

func (p *parser) parseArgs(e env) (pyrite.Args, error) {
	p.next() // past '('
	var args pyrite.Args
	if p.tok == tokRParen {
		p.next()
		return args, nil
	}
	for {
		v, err := p.parseExpr(e)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
		if p.tok == tokComma {
			p.next()
			continue
		}
		if p.tok == tokRParen {
			p.next()
			return args, nil
		}
		return nil, errors.New("expected ',' or ')' in call")
	}
}

func (p *parser) parseAtom(e env) (any, error) {
	switch p.tok {
	case tokInt:
		n, err := strconv.ParseInt(p.lit, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad integer literal %q", p.lit)
		}
		p.next()
		return n, nil
	case tokFloat:
		f, err := strconv.ParseFloat(p.lit, 64)
		if err != nil {
			return nil, fmt.Errorf("bad float literal %q", p.lit)
		}
		p.next()
		return f, nil
	case tokString:
		s := p.lit
		p.next()
		return s, nil
	case tokName:
		name := p.lit
		p.next()
		v, ok := e[name]
		if !ok {
			return nil, fmt.Errorf("name '%s' is not defined", name)
		}
		return v, nil
	case tokLParen:
		p.next()
		v, err := p.parseExpr(e)
		if err != nil {
			return nil, err
		}
		if p.tok != tokRParen {
			return nil, errors.New("expected ')'")
		}
		p.next()
		return v, nil
	default:
		return nil, errors.New("unexpected input")
	}
}

// parseTarget parses the left side of an assignment or a del statement:
// either a bare name or a postfix expression ending in an attribute.
func (p *parser) parseTarget(e env) (obj any, name string, isAttr bool, err error) {
	if p.tok != tokName {
		return nil, "", false, errors.New("expected a name")
	}
	name = p.lit
	p.next()
	if p.tok != tokDot {
		return nil, name, false, nil
	}
	obj, ok := e[name]
	if !ok {
		return nil, "", false, fmt.Errorf("name '%s' is not defined", name)
	}
	for p.tok == tokDot {
		p.next()
		if p.tok != tokName {
			return nil, "", false, errors.New("expected attribute name after '.'")
		}
		name = p.lit
		p.next()
		if p.tok != tokDot {
			break
		}
		if obj, err = pyrite.GetAttr(obj, name); err != nil {
			return nil, "", false, err
		}
	}
	return obj, name, true, nil
}
