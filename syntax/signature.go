package syntax

import (
	"strings"
)

// Param is one declared parameter of a foreign function.
type Param struct {
	Name string
	Type Type
}

// Signature is a parsed foreign function declaration. Return is nil for
// functions that return the unit type.
type Signature struct {
	Name   string
	Params []Param
	Return Type
}

func (s *Signature) String() string {
	var b strings.Builder
	b.WriteString("fn ")
	b.WriteString(s.Name)
	b.WriteString("(")
	for i, p := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		b.WriteString(": ")
		b.WriteString(p.Type.String())
	}
	b.WriteString(")")
	if s.Return != nil {
		b.WriteString(" -> ")
		b.WriteString(s.Return.String())
	}
	return b.String()
}

// ParseSignature parses a declaration such as
//
//	fn DrawString(x: i32, y: i32, s: &str, color: u32) -> i32
//
// Leading pub/unsafe/extern qualifiers and a trailing semicolon are
// accepted and dropped. Generic parameter lists, variadics and parameters
// bound to anything other than a plain identifier are rejected.
func ParseSignature(src string) (*Signature, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}

	if p.accept("pub") && p.is("(") {
		for !p.is(")") && p.peek().Kind != EOF {
			p.next()
		}
		if _, err := p.expect(")"); err != nil {
			return nil, err
		}
	}
	p.accept("unsafe")
	if p.accept("extern") && p.peek().Kind == String {
		p.next()
	}
	if _, err := p.expect("fn"); err != nil {
		return nil, err
	}

	name := p.peek()
	if name.Kind != Ident {
		return nil, p.errorf(name, "expected function name, found %s", describe(name))
	}
	p.next()
	sig := &Signature{Name: name.Text}

	if p.is("<") {
		return nil, p.errorf(p.peek(), "generic parameter lists are not supported; use impl Trait parameters")
	}
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	for !p.is(")") {
		param, err := p.parseParam()
		if err != nil {
			return nil, err
		}
		sig.Params = append(sig.Params, param)
		if !p.accept(",") {
			break
		}
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}

	if p.accept("->") {
		if p.is("!") {
			return nil, p.errorf(p.peek(), "diverging functions are not supported")
		}
		ret, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if !IsUnit(ret) {
			sig.Return = ret
		}
	}
	if p.is("where") {
		return nil, p.errorf(p.peek(), "where clauses are not supported")
	}
	p.accept(";")
	if err := p.expectEOF(); err != nil {
		return nil, err
	}
	return sig, nil
}

func (p *parser) parseParam() (Param, error) {
	if p.is("...") || p.is("..") {
		return Param{}, p.errorf(p.peek(), "variadic functions are not supported")
	}
	p.accept("mut")
	tok := p.peek()
	if tok.Kind != Ident || tok.Text == "_" || tok.Text == "self" || p.peekAt(1).Text != ":" {
		return Param{}, p.errorf(tok, "parameter binding must be a plain identifier, found %s", describe(tok))
	}
	p.next()
	p.next() // :
	t, err := p.parseType()
	if err != nil {
		return Param{}, err
	}
	return Param{Name: tok.Text, Type: t}, nil
}
