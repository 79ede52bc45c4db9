package equation

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokImag
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

type lexer struct {
	src []rune
	pos int
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) && unicode.IsSpace(l.src[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF}, nil
	}
	r := l.src[l.pos]
	switch {
	case unicode.IsDigit(r) || r == '.':
		start := l.pos
		for l.pos < len(l.src) && (unicode.IsDigit(l.src[l.pos]) || l.src[l.pos] == '.') {
			l.pos++
		}
		// exponent part
		if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
			mark := l.pos
			l.pos++
			if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
				l.pos++
			}
			if l.pos < len(l.src) && unicode.IsDigit(l.src[l.pos]) {
				for l.pos < len(l.src) && unicode.IsDigit(l.src[l.pos]) {
					l.pos++
				}
			} else {
				l.pos = mark
			}
		}
		text := string(l.src[start:l.pos])
		if l.pos < len(l.src) && l.src[l.pos] == 'j' {
			l.pos++
			return token{kind: tokImag, text: text}, nil
		}
		return token{kind: tokNumber, text: text}, nil
	case unicode.IsLetter(r) || r == '_':
		start := l.pos
		for l.pos < len(l.src) && (unicode.IsLetter(l.src[l.pos]) || unicode.IsDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
			l.pos++
		}
		return token{kind: tokIdent, text: string(l.src[start:l.pos])}, nil
	case r == '(':
		l.pos++
		return token{kind: tokLParen, text: "("}, nil
	case r == ')':
		l.pos++
		return token{kind: tokRParen, text: ")"}, nil
	case strings.ContainsRune("+-*/^", r):
		l.pos++
		// ** is an alias for ^
		if r == '*' && l.pos < len(l.src) && l.src[l.pos] == '*' {
			l.pos++
			return token{kind: tokOp, text: "^"}, nil
		}
		return token{kind: tokOp, text: string(r)}, nil
	}
	return token{}, fmt.Errorf("unexpected character %q", string(r))
}

type parser struct {
	lex  *lexer
	tok  token
	err  error
	done bool
}

func parseExpr(src string) (Node, error) {
	p := &parser{lex: &lexer{src: []rune(src)}}
	p.advance()
	node := p.parseAdd()
	if p.err != nil {
		return nil, p.err
	}
	if p.tok.kind != tokEOF {
		return nil, fmt.Errorf("trailing input at %q", p.tok.text)
	}
	return node, nil
}

func (p *parser) advance() {
	if p.err != nil {
		return
	}
	tok, err := p.lex.next()
	if err != nil {
		p.err = err
		return
	}
	p.tok = tok
}

func (p *parser) parseAdd() Node {
	left := p.parseMul()
	for p.err == nil && p.tok.kind == tokOp && (p.tok.text == "+" || p.tok.text == "-") {
		op := p.tok.text[0]
		p.advance()
		right := p.parseMul()
		left = &Binary{Op: op, L: left, R: right}
	}
	return left
}

func (p *parser) parseMul() Node {
	left := p.parseUnary()
	for p.err == nil && p.tok.kind == tokOp && (p.tok.text == "*" || p.tok.text == "/") {
		op := p.tok.text[0]
		p.advance()
		right := p.parseUnary()
		left = &Binary{Op: op, L: left, R: right}
	}
	return left
}

func (p *parser) parseUnary() Node {
	if p.tok.kind == tokOp && p.tok.text == "-" {
		p.advance()
		return &Neg{X: p.parseUnary()}
	}
	if p.tok.kind == tokOp && p.tok.text == "+" {
		p.advance()
		return p.parseUnary()
	}
	return p.parsePow()
}

func (p *parser) parsePow() Node {
	base := p.parseAtom()
	if p.err == nil && p.tok.kind == tokOp && p.tok.text == "^" {
		p.advance()
		// right associative, and -x binds tighter in the exponent
		exp := p.parseUnary()
		return &Binary{Op: '^', L: base, R: exp}
	}
	return base
}

func (p *parser) parseAtom() Node {
	if p.err != nil {
		return &Num{}
	}
	switch p.tok.kind {
	case tokNumber:
		val, err := strconv.ParseFloat(p.tok.text, 64)
		if err != nil {
			p.err = fmt.Errorf("bad number %q", p.tok.text)
			return &Num{}
		}
		p.advance()
		return &Num{Val: complex(val, 0)}
	case tokImag:
		val, err := strconv.ParseFloat(p.tok.text, 64)
		if err != nil {
			p.err = fmt.Errorf("bad number %q", p.tok.text)
			return &Num{}
		}
		p.advance()
		return &Num{Val: complex(0, val)}
	case tokIdent:
		name := p.tok.text
		p.advance()
		if p.tok.kind == tokLParen {
			if _, ok := funcs[name]; !ok {
				p.err = fmt.Errorf("%w: %s", ErrUnknownFunc, name)
				return &Num{}
			}
			p.advance()
			arg := p.parseAdd()
			if p.tok.kind != tokRParen {
				p.err = fmt.Errorf("missing ')' after %s(...", name)
				return &Num{}
			}
			p.advance()
			return &Call{Fn: name, Arg: arg}
		}
		return &Var{Name: name}
	case tokLParen:
		p.advance()
		inner := p.parseAdd()
		if p.tok.kind != tokRParen {
			p.err = fmt.Errorf("missing ')'")
			return &Num{}
		}
		p.advance()
		return inner
	}
	p.err = fmt.Errorf("unexpected token %q", p.tok.text)
	return &Num{}
}
